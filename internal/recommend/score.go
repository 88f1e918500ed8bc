package recommend

import (
	"math"
	"sort"

	"github.com/sparehour/sparehour/internal/category"
	"github.com/sparehour/sparehour/internal/weather"
)

// Sub-score weights. The total is clamped to [0,100].
const (
	distanceWeight       = 20.0
	distanceUnknownScore = 10.0
	distanceDecayMeters  = 1000.0

	budgetExactScore    = 15.0
	budgetAdjacentScore = 8.0
	budgetUnknownScore  = 7.0

	ratingWeight       = 15.0
	ratingUnknownScore = 7.0

	weatherRainIndoor  = 10.0
	weatherRainOutdoor = 2.0
	weatherRainMixed   = 7.0
	weatherFairBase    = 7.0
	weatherOutdoorBump = 3.0
	weatherCap         = 10.0

	themeBaseScore   = 6.0
	themeOverlapStep = 3.0
	themeCap         = 15.0

	localVibeBonus = 5.0
	closedPenalty  = 15.0
)

// scoreAndRank assigns every item its total score and sorts descending.
// The sort is stable so input order breaks ties deterministically.
func (p *Pipeline) scoreAndRank(items []ActivityItem, prefs Preferences, trip TripContext) {
	themes := prefs.themeSet()

	for i := range items {
		items[i].TotalScore = totalScore(&items[i], prefs, trip, themes)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].TotalScore > items[j].TotalScore
	})
}

func totalScore(item *ActivityItem, prefs Preferences, trip TripContext, themes map[string]bool) float64 {
	total := distanceScore(item.DistanceMeters) +
		float64(item.TimeFitnessScore) +
		budgetScore(item.PriceLevel, prefs.Budget) +
		ratingScore(item.Rating) +
		weatherScore(item.Exposure, trip.Weather.Condition) +
		themeScore(item, themes)

	if !item.LocaleHints.Chain {
		total += localVibeBonus
	}
	if item.OpenNow != nil && !*item.OpenNow {
		total -= closedPenalty
	}

	return math.Max(0, math.Min(100, total))
}

// distanceScore decays exponentially with distance, 20 points at zero
// meters falling to ~7.4 at two kilometers.
func distanceScore(meters int) float64 {
	if meters <= 0 {
		return distanceUnknownScore
	}
	return math.Min(distanceWeight, distanceWeight*math.Exp(-float64(meters)/distanceDecayMeters))
}

func budgetScore(item, user PriceLevel) float64 {
	if item == PriceUnknown {
		return budgetUnknownScore
	}
	if item == user {
		return budgetExactScore
	}

	itemIdx, userIdx := item.ordinal(), user.ordinal()
	if itemIdx >= 0 && userIdx >= 0 && abs(itemIdx-userIdx) == 1 {
		return budgetAdjacentScore
	}
	return 0
}

func ratingScore(rating float64) float64 {
	if rating <= 0 {
		return ratingUnknownScore
	}
	return (rating / 5.0) * ratingWeight
}

func weatherScore(exposure category.Exposure, condition weather.Condition) float64 {
	if condition == weather.ConditionRain {
		switch exposure {
		case category.Indoor:
			return weatherRainIndoor
		case category.Outdoor:
			return weatherRainOutdoor
		default:
			return weatherRainMixed
		}
	}

	score := weatherFairBase
	if exposure == category.Outdoor {
		score += weatherOutdoorBump
	}
	return math.Min(weatherCap, score)
}

func themeScore(item *ActivityItem, themes map[string]bool) float64 {
	overlap := 0
	for _, tag := range item.ThemeTags {
		if themes[tag] {
			overlap++
		}
	}
	if overlap == 0 {
		return themeBaseScore
	}
	return math.Min(themeCap, themeBaseScore+float64(overlap)*themeOverlapStep)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
