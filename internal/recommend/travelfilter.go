package recommend

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sparehour/sparehour/internal/travel"
)

// Batch pacing for travel-time resolution. Small batches with a short
// pause between them keep the routing providers under their rate limits.
const (
	defaultTravelBatchSize  = 5
	defaultInterBatchPause  = 500 * time.Millisecond
	defaultTravelStageLimit = 45 * time.Second
)

// Travel fitness tiers. Walking is preferred, then transit, then
// driving; an item reachable by none within the window is rejected.
const (
	fitnessWalk    = 20
	fitnessTransit = 15
	fitnessDrive   = 10
)

// TravelTimes resolves multi-modal travel times. Implemented by
// travel.Service; never fails.
type TravelTimes interface {
	Times(ctx context.Context, origin travel.Place, dest travel.Place) travel.ModeTimes
}

// filterByTravelTime resolves travel times in paced batches and keeps
// only items reachable within the bucket's travel window. Surviving
// items carry their fitness tier and chosen travel time; relative input
// order is preserved.
func (p *Pipeline) filterByTravelTime(ctx context.Context, items []ActivityItem, trip TripContext, bucket TimeBucket) []ActivityItem {
	if len(items) == 0 {
		return items
	}

	maxTravel := bucket.Policy().MaxTravelMin

	stageCtx, cancel := context.WithTimeout(ctx, defaultTravelStageLimit)
	defer cancel()

	origin := travel.Place{Name: trip.LocationLabel, Coords: &trip.Coords}
	kept := make([]*ActivityItem, len(items))

	for start := 0; start < len(items); start += p.travelBatchSize {
		end := start + p.travelBatchSize
		if end > len(items) {
			end = len(items)
		}

		g, gctx := errgroup.WithContext(stageCtx)
		for i := start; i < end; i++ {
			item := &items[i]
			g.Go(func() error {
				dest := travel.Place{Name: item.Name + ", " + trip.City, Coords: item.Coords}
				times := p.travel.Times(gctx, origin, dest)

				item.WalkTimeMin = times.WalkMin
				item.DriveTimeMin = times.DriveMin
				item.TransitTimeMin = times.TransitMin
				item.DistanceMeters = times.DistanceMeters

				if accept(item, maxTravel) {
					kept[i] = item
				}
				return nil
			})
		}
		_ = g.Wait()

		if stageCtx.Err() != nil {
			// Aggregate timeout: keep what finished, stop issuing work.
			p.logger.Warn().
				Int("resolved", end).
				Int("total", len(items)).
				Msg("travel-time stage timed out, keeping completed batches")
			break
		}

		if end < len(items) {
			select {
			case <-time.After(p.interBatchPause):
			case <-stageCtx.Done():
			}
		}
	}

	out := make([]ActivityItem, 0, len(items))
	for _, item := range kept {
		if item != nil {
			out = append(out, *item)
		}
	}

	p.logger.Debug().
		Str("bucket", string(bucket)).
		Int("max_travel_min", maxTravel).
		Int("in", len(items)).
		Int("out", len(out)).
		Msg("travel-time filter complete")

	return out
}

// accept applies the mode preference ladder: walk, then transit, then
// drive. The first mode inside the window decides both the fitness tier
// and the item's travel time.
func accept(item *ActivityItem, maxTravel int) bool {
	switch {
	case item.WalkTimeMin <= maxTravel:
		item.TimeFitnessScore = fitnessWalk
		item.TravelTimeMin = item.WalkTimeMin
	case item.TransitTimeMin <= maxTravel:
		item.TimeFitnessScore = fitnessTransit
		item.TravelTimeMin = item.TransitTimeMin
	case item.DriveTimeMin <= maxTravel:
		item.TimeFitnessScore = fitnessDrive
		item.TravelTimeMin = item.DriveTimeMin
	default:
		return false
	}
	return true
}
