package travel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/sparehour/sparehour/internal/geo"
)

// errNoModeResolved marks a tier attempt where every mode failed.
var errNoModeResolved = errors.New("travel: no mode resolved")

// Metrics records provider call durations and cache outcomes.
// Satisfied by middleware.ProviderMetrics.
type Metrics interface {
	RecordRequest(provider, operation string, duration time.Duration, err error)
	RecordCacheHit(provider, operation string)
	RecordCacheMiss(provider, operation string)
}

// ServiceConfig holds configuration for the travel-time service.
type ServiceConfig struct {
	// Providers are the routing tiers, ordered best-first. May be empty.
	Providers []Provider

	// Estimator classifies destination names when no tier and no
	// coordinates can produce times. If nil, a default estimator over
	// DefaultKeywordTable is used.
	Estimator *Estimator

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long resolved times are cached (default: 10 minutes).
	CacheTTL time.Duration

	// ProviderTimeout bounds each per-mode provider call (default: 3s).
	ProviderTimeout time.Duration

	// Metrics records call durations and cache outcomes (optional).
	Metrics Metrics
}

// Service resolves per-mode travel times through the provider cascade.
// Results are cached per origin/destination pair.
type Service struct {
	providers       []Provider
	estimator       *Estimator
	logger          zerolog.Logger
	providerTimeout time.Duration
	cache           *gocache.Cache
	metrics         Metrics
}

// NewService creates a travel-time service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 10 * time.Minute
	}

	providerTimeout := cfg.ProviderTimeout
	if providerTimeout == 0 {
		providerTimeout = 3 * time.Second
	}

	estimator := cfg.Estimator
	if estimator == nil {
		estimator = NewEstimator(DefaultKeywordTable())
	}

	return &Service{
		providers:       cfg.Providers,
		estimator:       estimator,
		logger:          cfg.Logger,
		providerTimeout: providerTimeout,
		cache:           gocache.New(cacheTTL, 2*cacheTTL),
		metrics:         cfg.Metrics,
	}
}

// Times resolves walk, drive and transit minutes from the origin to the
// destination. It never fails: provider tiers are tried best-first, and
// when all of them fail the result falls back to the straight-line
// seed (when coordinates are known) or the keyword estimate.
func (s *Service) Times(ctx context.Context, origin Place, dest Place) ModeTimes {
	cacheKey := s.cacheKey(origin, dest)
	if cached, ok := s.cache.Get(cacheKey); ok {
		if s.metrics != nil {
			s.metrics.RecordCacheHit("travel", "times")
		}
		return cached.(ModeTimes)
	}
	if s.metrics != nil {
		s.metrics.RecordCacheMiss("travel", "times")
	}

	times := s.resolve(ctx, origin, dest)
	s.cache.Set(cacheKey, times, gocache.DefaultExpiration)
	return times
}

func (s *Service) resolve(ctx context.Context, origin Place, dest Place) ModeTimes {
	seed, haveCoords := s.seed(origin, dest)

	if haveCoords {
		for _, p := range s.providers {
			times, ok := s.tryProvider(ctx, p, origin, dest, seed)
			if ok {
				return times
			}
		}
	}

	if haveCoords {
		// Straight-line seed is better than a keyword guess.
		return seed
	}

	times := s.estimator.Estimate(dest.Name)
	s.logger.Debug().
		Str("destination", dest.Name).
		Str("band", string(s.estimator.Band(dest.Name))).
		Msg("estimated travel times from name keywords")
	return times
}

// seed computes the baseline times. With known coordinates it derives
// minutes from the straight-line distance; otherwise it returns the
// fixed unknown-distance defaults.
func (s *Service) seed(origin Place, dest Place) (ModeTimes, bool) {
	if origin.Coords == nil || dest.Coords == nil || !dest.Coords.Valid() {
		return DefaultTimes(), false
	}

	meters := geo.DistanceMeters(*origin.Coords, *dest.Coords)
	return ModeTimes{
		WalkMin:        geo.WalkMinutes(meters),
		DriveMin:       geo.DriveMinutes(meters),
		TransitMin:     geo.TransitMinutes(meters),
		DistanceMeters: meters,
		Source:         "haversine",
	}, true
}

// tryProvider resolves all three modes concurrently against one tier.
// A tier succeeds when at least one mode resolves; modes that failed
// keep their seeded values.
func (s *Service) tryProvider(ctx context.Context, p Provider, origin Place, dest Place, seed ModeTimes) (ModeTimes, bool) {
	started := time.Now()
	legs := make(map[Mode]*Leg, 3)
	results := make([]*Leg, 3)
	modes := Modes()

	g, gctx := errgroup.WithContext(ctx)
	for i, mode := range modes {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, s.providerTimeout)
			defer cancel()

			leg, err := p.Route(callCtx, RouteRequest{
				Origin:      origin,
				Destination: dest,
				Mode:        mode,
			})
			if err != nil {
				s.logger.Debug().Err(err).
					Str("provider", p.Name()).
					Str("mode", string(mode)).
					Str("destination", dest.Name).
					Msg("travel provider mode failed")
				return nil
			}
			results[i] = leg
			return nil
		})
	}
	// Goroutines only record failures, never return them.
	_ = g.Wait()

	for i, mode := range modes {
		if results[i] != nil {
			legs[mode] = results[i]
		}
	}

	if s.metrics != nil {
		var callErr error
		if len(legs) == 0 {
			callErr = errNoModeResolved
		}
		s.metrics.RecordRequest(p.Name(), "route", time.Since(started), callErr)
	}

	if len(legs) == 0 {
		return ModeTimes{}, false
	}

	times := seed
	times.Source = p.Name()
	if leg, ok := legs[ModeWalk]; ok {
		times.WalkMin = leg.DurationMin
		if leg.DistanceMeters > 0 {
			times.DistanceMeters = leg.DistanceMeters
		}
	}
	if leg, ok := legs[ModeDrive]; ok {
		times.DriveMin = leg.DurationMin
	}
	if leg, ok := legs[ModeTransit]; ok {
		times.TransitMin = leg.DurationMin
	}

	s.logger.Debug().
		Str("provider", p.Name()).
		Str("destination", dest.Name).
		Int("modes_resolved", len(legs)).
		Msg("resolved travel times")

	return times, true
}

// cacheKey builds a cache key from the origin coordinates and the
// destination identity. Destinations without coordinates key on name.
func (s *Service) cacheKey(origin Place, dest Place) string {
	var b strings.Builder
	if origin.Coords != nil {
		fmt.Fprintf(&b, "%.4f,%.4f", origin.Coords.Lat, origin.Coords.Lng)
	} else {
		b.WriteString(strings.ToLower(origin.Name))
	}
	b.WriteByte('|')
	if dest.Coords != nil && dest.Coords.Valid() {
		fmt.Fprintf(&b, "%.4f,%.4f", dest.Coords.Lat, dest.Coords.Lng)
	} else {
		b.WriteString(strings.ToLower(dest.Name))
	}
	return b.String()
}

// CacheStats reports the number of cached destination entries.
func (s *Service) CacheStats() int {
	return s.cache.ItemCount()
}
