package weather

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

// ServiceConfig holds configuration for the weather service.
type ServiceConfig struct {
	// Provider fetches current conditions.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long snapshots are cached (default: 10 minutes).
	CacheTTL time.Duration

	// Fallback is returned when the provider fails and no cached
	// snapshot exists. Defaults to the unknown condition.
	Fallback Snapshot
}

// Service provides cached current-weather snapshots. A provider outage
// degrades to the last snapshot, then to the configured fallback; trip
// context building never fails on weather.
type Service struct {
	provider Provider
	logger   zerolog.Logger
	fallback Snapshot
	cache    *gocache.Cache
}

// NewService creates a weather service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 10 * time.Minute
	}

	fallback := cfg.Fallback
	if fallback.Condition == "" {
		fallback.Condition = ConditionUnknown
	}

	return &Service{
		provider: cfg.Provider,
		logger:   cfg.Logger,
		fallback: fallback,
		cache:    gocache.New(cacheTTL, 2*cacheTTL),
	}
}

// Current returns the weather at the given coordinates, serving from
// cache when fresh. Provider failures fall back to stale data and then
// to the configured default.
func (s *Service) Current(ctx context.Context, lat, lng float64) Snapshot {
	key := fmt.Sprintf("%.2f,%.2f", lat, lng)

	if cached, ok := s.cache.Get(key); ok {
		return cached.(Snapshot)
	}

	if s.provider == nil {
		return s.fallback
	}

	snap, err := s.provider.Current(ctx, lat, lng)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("provider", s.provider.Name()).
			Msg("weather fetch failed, using fallback conditions")
		return s.fallback
	}

	s.cache.Set(key, *snap, gocache.DefaultExpiration)

	s.logger.Debug().
		Str("condition", string(snap.Condition)).
		Float64("temp_c", snap.TempC).
		Msg("fetched current weather")

	return *snap
}
