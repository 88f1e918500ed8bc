package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sparehour/sparehour/internal/weather"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "CCIB, Barcelona", cfg.DefaultLocationLabel)
	assert.Equal(t, "Barcelona", cfg.DefaultCity)
	assert.InDelta(t, 41.4095, cfg.DefaultCoords.Lat, 0.0001)
	assert.InDelta(t, 2.2184, cfg.DefaultCoords.Lng, 0.0001)
	assert.Equal(t, weather.ConditionSunny, cfg.DefaultWeather.Condition)
	assert.Equal(t, 24.0, cfg.DefaultWeather.TempC)
	assert.Equal(t, 5, cfg.TravelBatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.TravelBatchPause)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("DEFAULT_CITY", "Valencia")
	t.Setenv("DEFAULT_LAT", "39.47")
	t.Setenv("DEFAULT_WEATHER", "rain")
	t.Setenv("TRAVEL_BATCH_SIZE", "10")
	t.Setenv("TRAVEL_CACHE_TTL", "5m")

	cfg := FromEnv()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "Valencia", cfg.DefaultCity)
	assert.InDelta(t, 39.47, cfg.DefaultCoords.Lat, 0.0001)
	assert.Equal(t, weather.ConditionRain, cfg.DefaultWeather.Condition)
	assert.Equal(t, 10, cfg.TravelBatchSize)
	assert.Equal(t, 5*time.Minute, cfg.TravelCacheTTL)
}

func TestFromEnv_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("TRAVEL_BATCH_SIZE", "many")
	t.Setenv("DEFAULT_LAT", "north")
	t.Setenv("TRAVEL_CACHE_TTL", "soon")

	cfg := FromEnv()

	assert.Equal(t, 5, cfg.TravelBatchSize)
	assert.InDelta(t, 41.4095, cfg.DefaultCoords.Lat, 0.0001)
	assert.Equal(t, 10*time.Minute, cfg.TravelCacheTTL)
}
