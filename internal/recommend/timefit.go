package recommend

import "github.com/sparehour/sparehour/internal/category"

// Time-fitness tuning. Overtime counts double, the tightest bucket gets
// hard caps on near-misses, and items whose location is only estimated
// lose an extra margin when they overshoot.
const (
	overtimePenaltyFactor = 2
	maxFitness            = 20

	quickBucketSoftOverMin = 5
	quickBucketSoftCap     = 8
	quickBucketHardOverMin = 10
	quickBucketHardCap     = 2

	noCoordsOvershootPenalty = 10
)

// classifyTimeFitness fills expected wait/dwell from category defaults
// and adjusts each item's fitness score against the bucket's total-time
// ceiling. Items are never rejected here; infeasibility was already
// decided by the travel filter.
func (p *Pipeline) classifyTimeFitness(items []ActivityItem, bucket TimeBucket) {
	ceiling := bucket.Policy().CeilingMin

	for i := range items {
		item := &items[i]

		defaults := category.DefaultsOf(item.Category)
		item.ExpectedWaitMin = defaults.WaitMin
		item.ExpectedDwellMin = defaults.DwellMin

		totalTime := item.TravelTimeMin + item.ExpectedWaitMin + item.ExpectedDwellMin

		if item.TimeFitnessScore == 0 {
			item.TimeFitnessScore = maxFitness
		}

		if ceiling == 0 || totalTime <= ceiling {
			continue
		}

		overtime := totalTime - ceiling
		penalty := overtime * overtimePenaltyFactor
		if penalty > maxFitness {
			penalty = maxFitness
		}
		score := item.TimeFitnessScore - penalty
		if score < 0 {
			score = 0
		}

		// The 30-minute bucket punishes near-misses harder than the
		// proportional penalty alone.
		if bucket == BucketQuick {
			switch {
			case overtime > quickBucketHardOverMin:
				if score > quickBucketHardCap {
					score = quickBucketHardCap
				}
			case overtime > quickBucketSoftOverMin:
				if score > quickBucketSoftCap {
					score = quickBucketSoftCap
				}
			}
		}

		if item.Coords == nil {
			score -= noCoordsOvershootPenalty
			if score < 0 {
				score = 0
			}
		}

		item.TimeFitnessScore = score

		p.logger.Debug().
			Str("item", item.Name).
			Int("total_min", totalTime).
			Int("overtime_min", overtime).
			Int("fitness", score).
			Msg("overtime penalty applied")
	}
}
