// Package geo provides coordinate math and travel-time heuristics.
package geo

import (
	"fmt"
	"math"
	"net/url"
	"strings"
)

const (
	// earthRadiusKm is the mean Earth radius used for haversine distance.
	earthRadiusKm = 6371.0

	// walkSpeedMetersPerMin is the assumed average walking speed (4.8 km/h).
	walkSpeedMetersPerMin = 80

	// driveSpeedMetersPerMin assumes ~30 km/h in urban traffic.
	driveSpeedMetersPerMin = 500

	// transitSpeedMetersPerMin assumes ~18 km/h including waiting time.
	transitSpeedMetersPerMin = 300
)

// Coordinates is an immutable latitude/longitude pair in degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the coordinates are within range and not the zero value.
func (c Coordinates) Valid() bool {
	if c.Lat == 0 && c.Lng == 0 {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// DistanceMeters returns the great-circle distance between two points in meters.
func DistanceMeters(a, b Coordinates) int {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLng/2)*math.Sin(dLng/2)
	d := 2 * earthRadiusKm * math.Asin(math.Sqrt(h))

	return int(d * 1000)
}

// WalkMinutes estimates walking time from a distance in meters.
// Floored at 3 minutes to absorb GPS and search-result noise.
func WalkMinutes(meters int) int {
	return max(3, int(math.Round(float64(meters)/walkSpeedMetersPerMin)))
}

// DriveMinutes estimates driving time from a distance in meters.
func DriveMinutes(meters int) int {
	return max(3, meters/driveSpeedMetersPerMin)
}

// TransitMinutes estimates public transport time from a distance in meters.
func TransitMinutes(meters int) int {
	return max(5, meters/transitSpeedMetersPerMin)
}

// DirectionsLink builds a Google Maps directions deep link from an origin
// label to a named destination. Place names route more reliably than raw
// coordinates for venues.
func DirectionsLink(originLabel, destName string) string {
	origin := strings.ReplaceAll(originLabel, " ", "+")
	return fmt.Sprintf("https://www.google.com/maps/dir/?api=1&origin=%s&destination=%s",
		origin, url.QueryEscape(destName))
}

// SearchLink builds a Google Maps search deep link for a place name,
// scoped to a city for disambiguation.
func SearchLink(name, city string) string {
	return "https://www.google.com/maps/search/" + url.QueryEscape(name+" "+city)
}
