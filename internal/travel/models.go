// Package travel resolves multi-modal travel times through a tiered
// provider cascade: a precision routing provider first, a simpler
// directions provider second, and a name-keyword distance estimator as
// the terminal tier. Travel time must never block a recommendation, so
// every tier failure degrades to the next and the last tier cannot fail.
package travel

import (
	"context"
	"errors"

	"github.com/sparehour/sparehour/internal/geo"
)

// Sentinel errors for travel-time resolution.
var (
	// ErrProviderUnavailable indicates the provider is down or its circuit is open.
	ErrProviderUnavailable = errors.New("travel provider unavailable")
	// ErrNoRouteFound indicates no route exists between the given places.
	ErrNoRouteFound = errors.New("no route found between the given places")
	// ErrRateLimitExceeded indicates the provider quota has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// Mode is a travel mode.
type Mode string

const (
	ModeWalk    Mode = "walk"
	ModeDrive   Mode = "drive"
	ModeTransit Mode = "transit"
)

// Modes lists every mode the cascade resolves, in acceptance order.
func Modes() []Mode {
	return []Mode{ModeWalk, ModeDrive, ModeTransit}
}

// Place identifies a routing endpoint by name and, when known, coordinates.
// Providers prefer coordinates; the estimator tier only uses the name.
type Place struct {
	Name   string
	Coords *geo.Coordinates
}

// RouteRequest asks a provider for a single-mode leg between two places.
type RouteRequest struct {
	Origin      Place
	Destination Place
	Mode        Mode
}

// Leg is one resolved origin→destination leg.
type Leg struct {
	DurationMin    int
	DistanceMeters int
}

// Provider is a single tier of the travel-time cascade.
type Provider interface {
	// Route resolves one mode between two places, or fails.
	Route(ctx context.Context, req RouteRequest) (*Leg, error)
	// Name returns the provider identifier for logging and health tracking.
	Name() string
}

// ModeTimes carries per-mode travel minutes and the straight-line or
// routed distance for one destination. This is what flows into the
// pipeline's travel-time filter.
type ModeTimes struct {
	WalkMin        int
	DriveMin       int
	TransitMin     int
	DistanceMeters int

	// Source names the tier that produced the result: a provider name,
	// "haversine", "estimate", or "default".
	Source string
}

// MinutesFor returns the minutes for the given mode.
func (m ModeTimes) MinutesFor(mode Mode) int {
	switch mode {
	case ModeWalk:
		return m.WalkMin
	case ModeDrive:
		return m.DriveMin
	case ModeTransit:
		return m.TransitMin
	default:
		return 0
	}
}

// Error provides detailed error information from a travel provider.
type Error struct {
	Provider string // provider that generated the error
	Code     string // provider error code
	Message  string // human-readable message
	Err      error  // underlying sentinel
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}
