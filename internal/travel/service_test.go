package travel

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/sparehour/sparehour/internal/geo"
)

// stubProvider returns a fixed leg per mode, or a fixed error.
type stubProvider struct {
	name  string
	legs  map[Mode]*Leg
	err   error
	calls atomic.Int32
}

func (p *stubProvider) Route(_ context.Context, req RouteRequest) (*Leg, error) {
	p.calls.Add(1)
	if p.err != nil {
		return nil, p.err
	}
	leg, ok := p.legs[req.Mode]
	if !ok {
		return nil, ErrNoRouteFound
	}
	return leg, nil
}

func (p *stubProvider) Name() string { return p.name }

var (
	ccib      = geo.Coordinates{Lat: 41.4095, Lng: 2.2184}
	nearbyLoc = geo.Coordinates{Lat: 41.4036, Lng: 2.1744}
)

func originPlace() Place {
	c := ccib
	return Place{Name: "CCIB", Coords: &c}
}

func TestService_FirstTierWins(t *testing.T) {
	primary := &stubProvider{
		name: "google-routes",
		legs: map[Mode]*Leg{
			ModeWalk:    {DurationMin: 12, DistanceMeters: 900},
			ModeDrive:   {DurationMin: 4, DistanceMeters: 1100},
			ModeTransit: {DurationMin: 8, DistanceMeters: 1000},
		},
	}
	secondary := &stubProvider{name: "google-directions"}

	svc := NewService(ServiceConfig{
		Providers: []Provider{primary, secondary},
		Logger:    zerolog.Nop(),
	})

	dest := nearbyLoc
	times := svc.Times(context.Background(), originPlace(), Place{Name: "Cafe Central", Coords: &dest})

	assert.Equal(t, 12, times.WalkMin)
	assert.Equal(t, 4, times.DriveMin)
	assert.Equal(t, 8, times.TransitMin)
	assert.Equal(t, 900, times.DistanceMeters)
	assert.Equal(t, "google-routes", times.Source)
	assert.Equal(t, int32(0), secondary.calls.Load(), "second tier must not be called when the first succeeds")
}

func TestService_FallsToSecondTier(t *testing.T) {
	primary := &stubProvider{name: "google-routes", err: ErrProviderUnavailable}
	secondary := &stubProvider{
		name: "google-directions",
		legs: map[Mode]*Leg{
			ModeWalk: {DurationMin: 18, DistanceMeters: 1400},
		},
	}

	svc := NewService(ServiceConfig{
		Providers: []Provider{primary, secondary},
		Logger:    zerolog.Nop(),
	})

	dest := nearbyLoc
	times := svc.Times(context.Background(), originPlace(), Place{Name: "Cafe Central", Coords: &dest})

	assert.Equal(t, "google-directions", times.Source)
	assert.Equal(t, 18, times.WalkMin)
	// Modes the tier did not resolve keep the straight-line seed.
	assert.Positive(t, times.DriveMin)
	assert.Positive(t, times.TransitMin)
}

func TestService_SeedWhenAllProvidersFail(t *testing.T) {
	failing := &stubProvider{name: "google-routes", err: ErrProviderUnavailable}

	svc := NewService(ServiceConfig{
		Providers: []Provider{failing},
		Logger:    zerolog.Nop(),
	})

	dest := nearbyLoc
	times := svc.Times(context.Background(), originPlace(), Place{Name: "Cafe Central", Coords: &dest})

	assert.Equal(t, "haversine", times.Source)
	assert.Positive(t, times.WalkMin)
	assert.Positive(t, times.DistanceMeters)
	assert.Greater(t, times.WalkMin, times.TransitMin)
}

func TestService_EstimatorWhenNoCoordinates(t *testing.T) {
	failing := &stubProvider{name: "google-routes", err: ErrProviderUnavailable}

	svc := NewService(ServiceConfig{
		Providers: []Provider{failing},
		Logger:    zerolog.Nop(),
	})

	times := svc.Times(context.Background(), originPlace(), Place{Name: "Tapas bar in the Gothic Quarter"})

	assert.Equal(t, EstimateSource, times.Source)
	assert.Equal(t, 60, times.WalkMin, "far keyword should map to the far band")
	assert.Equal(t, int32(0), failing.calls.Load(), "providers need coordinates")
}

func TestService_UnknownNameUsesDefaults(t *testing.T) {
	svc := NewService(ServiceConfig{Logger: zerolog.Nop()})

	times := svc.Times(context.Background(), originPlace(), Place{Name: "Bar Manolo"})

	assert.Equal(t, 25, times.WalkMin)
	assert.Equal(t, 8, times.DriveMin)
	assert.Equal(t, 15, times.TransitMin)
}

func TestService_CachesResolvedTimes(t *testing.T) {
	primary := &stubProvider{
		name: "google-routes",
		legs: map[Mode]*Leg{
			ModeWalk:    {DurationMin: 12, DistanceMeters: 900},
			ModeDrive:   {DurationMin: 4, DistanceMeters: 1100},
			ModeTransit: {DurationMin: 8, DistanceMeters: 1000},
		},
	}

	svc := NewService(ServiceConfig{
		Providers: []Provider{primary},
		Logger:    zerolog.Nop(),
	})

	dest := nearbyLoc
	destination := Place{Name: "Cafe Central", Coords: &dest}

	first := svc.Times(context.Background(), originPlace(), destination)
	callsAfterFirst := primary.calls.Load()
	second := svc.Times(context.Background(), originPlace(), destination)

	assert.Equal(t, first, second)
	assert.Equal(t, callsAfterFirst, primary.calls.Load(), "second lookup must hit the cache")
	assert.Equal(t, 1, svc.CacheStats())
}

// recordingMetrics counts metric calls without a meter provider.
type recordingMetrics struct {
	requests  atomic.Int32
	hits      atomic.Int32
	misses    atomic.Int32
	lastError error
}

func (m *recordingMetrics) RecordRequest(_, _ string, _ time.Duration, err error) {
	m.requests.Add(1)
	m.lastError = err
}

func (m *recordingMetrics) RecordCacheHit(_, _ string)  { m.hits.Add(1) }
func (m *recordingMetrics) RecordCacheMiss(_, _ string) { m.misses.Add(1) }

func TestService_RecordsMetrics(t *testing.T) {
	primary := &stubProvider{
		name: "google-routes",
		legs: map[Mode]*Leg{
			ModeWalk: {DurationMin: 12, DistanceMeters: 900},
		},
	}
	metrics := &recordingMetrics{}

	svc := NewService(ServiceConfig{
		Providers: []Provider{primary},
		Logger:    zerolog.Nop(),
		Metrics:   metrics,
	})

	dest := nearbyLoc
	destination := Place{Name: "Cafe Central", Coords: &dest}

	svc.Times(context.Background(), originPlace(), destination)
	svc.Times(context.Background(), originPlace(), destination)

	assert.Equal(t, int32(1), metrics.requests.Load())
	assert.NoError(t, metrics.lastError)
	assert.Equal(t, int32(1), metrics.misses.Load())
	assert.Equal(t, int32(1), metrics.hits.Load())
}
