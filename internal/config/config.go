// Package config loads immutable service configuration from the
// environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/sparehour/sparehour/internal/geo"
	"github.com/sparehour/sparehour/internal/weather"
)

// Config holds the full service configuration. Populated once in main
// and passed down; nothing mutates it afterwards.
type Config struct {
	// Port is the HTTP listen port.
	Port string

	// Environment is the deployment environment name.
	Environment string

	// OTLPEndpoint is the OpenTelemetry collector endpoint.
	OTLPEndpoint string

	// TelemetryEnabled turns OTLP export on.
	TelemetryEnabled bool

	// DefaultLocationLabel names the origin shown to users.
	DefaultLocationLabel string

	// DefaultCity scopes search queries and places lookups.
	DefaultCity string

	// DefaultCoords is the origin for travel-time resolution.
	DefaultCoords geo.Coordinates

	// DefaultWeather applies when no weather provider is configured or
	// the provider fails.
	DefaultWeather weather.Snapshot

	// SerpAPIKey enables the search provider when set.
	SerpAPIKey string

	// GoogleMapsAPIKey enables the routes, directions and places
	// clients when set.
	GoogleMapsAPIKey string

	// OpenWeatherMapAPIKey enables live weather when set.
	OpenWeatherMapAPIKey string

	// TravelCacheTTL bounds travel-time cache staleness.
	TravelCacheTTL time.Duration

	// PlacesCacheTTL bounds places lookup cache staleness.
	PlacesCacheTTL time.Duration

	// WeatherCacheTTL bounds weather cache staleness.
	WeatherCacheTTL time.Duration

	// TravelBatchSize is the travel-filter batch size.
	TravelBatchSize int

	// TravelBatchPause is the pause between travel-filter batches.
	TravelBatchPause time.Duration
}

// FromEnv builds a Config from environment variables, applying defaults
// for everything unset. The default context is the CCIB venue in
// Barcelona on a fair day.
func FromEnv() Config {
	return Config{
		Port:                 envOr("APP_PORT", "8080"),
		Environment:          envOr("APP_ENV", "development"),
		OTLPEndpoint:         envOr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		TelemetryEnabled:     os.Getenv("OTEL_ENABLED") == "true",
		DefaultLocationLabel: envOr("DEFAULT_LOCATION_LABEL", "CCIB, Barcelona"),
		DefaultCity:          envOr("DEFAULT_CITY", "Barcelona"),
		DefaultCoords: geo.Coordinates{
			Lat: envFloatOr("DEFAULT_LAT", 41.4095),
			Lng: envFloatOr("DEFAULT_LNG", 2.2184),
		},
		DefaultWeather: weather.Snapshot{
			Condition: weather.Condition(envOr("DEFAULT_WEATHER", string(weather.ConditionSunny))),
			TempC:     envFloatOr("DEFAULT_TEMP_C", 24),
		},
		SerpAPIKey:           os.Getenv("SERPAPI_KEY"),
		GoogleMapsAPIKey:     os.Getenv("GOOGLE_MAPS_API_KEY"),
		OpenWeatherMapAPIKey: os.Getenv("OPENWEATHERMAP_API_KEY"),
		TravelCacheTTL:       envDurationOr("TRAVEL_CACHE_TTL", 10*time.Minute),
		PlacesCacheTTL:       envDurationOr("PLACES_CACHE_TTL", 30*time.Minute),
		WeatherCacheTTL:      envDurationOr("WEATHER_CACHE_TTL", 10*time.Minute),
		TravelBatchSize:      envIntOr("TRAVEL_BATCH_SIZE", 5),
		TravelBatchPause:     envDurationOr("TRAVEL_BATCH_PAUSE", 500*time.Millisecond),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envFloatOr(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
