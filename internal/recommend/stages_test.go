package recommend

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparehour/sparehour/internal/category"
	"github.com/sparehour/sparehour/internal/geo"
	"github.com/sparehour/sparehour/internal/travel"
)

// stubTravel returns fixed times per destination name prefix, falling
// back to far-away defaults.
type stubTravel struct {
	times map[string]travel.ModeTimes
}

func (s *stubTravel) Times(_ context.Context, _ travel.Place, dest travel.Place) travel.ModeTimes {
	for prefix, times := range s.times {
		if len(dest.Name) >= len(prefix) && dest.Name[:len(prefix)] == prefix {
			return times
		}
	}
	return travel.ModeTimes{WalkMin: 90, DriveMin: 45, TransitMin: 70, DistanceMeters: 9000, Source: "stub"}
}

func newStagePipeline(t *stubTravel) *Pipeline {
	return NewPipeline(PipelineConfig{
		Travel:          t,
		Logger:          zerolog.Nop(),
		TravelBatchSize: 5,
		InterBatchPause: time.Millisecond,
	})
}

func TestFilterByTravelTime_ModeLadder(t *testing.T) {
	stub := &stubTravel{times: map[string]travel.ModeTimes{
		"Walkable":  {WalkMin: 8, DriveMin: 3, TransitMin: 6, DistanceMeters: 600},
		"Transit":   {WalkMin: 40, DriveMin: 25, TransitMin: 18, DistanceMeters: 3000},
		"Drivable":  {WalkMin: 50, DriveMin: 15, TransitMin: 30, DistanceMeters: 5000},
		"Unreached": {WalkMin: 90, DriveMin: 40, TransitMin: 60, DistanceMeters: 9000},
	}}
	p := newStagePipeline(stub)

	items := []ActivityItem{
		{Name: "Walkable Cafe"},
		{Name: "Transit Market"},
		{Name: "Drivable Museum"},
		{Name: "Unreached Castle"},
	}

	// 30-60 bucket: max travel 21 minutes.
	out := p.filterByTravelTime(context.Background(), items, sunnyTrip(), BucketShort)

	require.Len(t, out, 3)
	assert.Equal(t, "Walkable Cafe", out[0].Name)
	assert.Equal(t, fitnessWalk, out[0].TimeFitnessScore)
	assert.Equal(t, 8, out[0].TravelTimeMin)

	assert.Equal(t, "Transit Market", out[1].Name)
	assert.Equal(t, fitnessTransit, out[1].TimeFitnessScore)
	assert.Equal(t, 18, out[1].TravelTimeMin)

	assert.Equal(t, "Drivable Museum", out[2].Name)
	assert.Equal(t, fitnessDrive, out[2].TimeFitnessScore)
	assert.Equal(t, 15, out[2].TravelTimeMin)
}

func TestFilterByTravelTime_SurvivorsAlwaysWithinWindow(t *testing.T) {
	stub := &stubTravel{times: map[string]travel.ModeTimes{
		"A": {WalkMin: 5, DriveMin: 3, TransitMin: 4, DistanceMeters: 400},
		"B": {WalkMin: 30, DriveMin: 9, TransitMin: 15, DistanceMeters: 2500},
	}}
	p := newStagePipeline(stub)

	items := []ActivityItem{{Name: "A"}, {Name: "B"}, {Name: "C far away"}}
	out := p.filterByTravelTime(context.Background(), items, sunnyTrip(), BucketQuick)

	maxTravel := BucketQuick.Policy().MaxTravelMin
	for _, item := range out {
		within := item.WalkTimeMin <= maxTravel ||
			item.TransitTimeMin <= maxTravel ||
			item.DriveTimeMin <= maxTravel
		assert.True(t, within, "%s survived outside the travel window", item.Name)
	}
	require.Len(t, out, 2)
}

func TestClassifyTimeFitness_WithinCeilingKeepsTier(t *testing.T) {
	p := newStagePipeline(&stubTravel{})

	items := []ActivityItem{{
		Name:             "Quick Park",
		Category:         category.Park,
		TravelTimeMin:    8,
		TimeFitnessScore: fitnessWalk,
	}}
	p.classifyTimeFitness(items, BucketQuick)

	// park: wait 0, dwell 15 → total 23 ≤ 30.
	assert.Equal(t, 0, items[0].ExpectedWaitMin)
	assert.Equal(t, 15, items[0].ExpectedDwellMin)
	assert.Equal(t, fitnessWalk, items[0].TimeFitnessScore)
}

func TestClassifyTimeFitness_QuickBucketHardCap(t *testing.T) {
	p := newStagePipeline(&stubTravel{})

	// museum: wait 15, dwell 60 → total 10+15+60 = 85, overtime 55.
	coords := geo.Coordinates{Lat: 41.39, Lng: 2.18}
	items := []ActivityItem{{
		Name:             "Museu Picasso",
		Category:         category.Museum,
		Coords:           &coords,
		TravelTimeMin:    10,
		TimeFitnessScore: fitnessWalk,
	}}
	p.classifyTimeFitness(items, BucketQuick)

	assert.LessOrEqual(t, items[0].TimeFitnessScore, quickBucketHardCap,
		"more than 10 minutes over the 30-minute ceiling must cap at 2")
}

func TestClassifyTimeFitness_QuickBucketSoftCap(t *testing.T) {
	p := newStagePipeline(&stubTravel{})

	// cafe: wait 5, dwell 20 → total 12+5+20 = 37, overtime 7.
	coords := geo.Coordinates{Lat: 41.39, Lng: 2.18}
	items := []ActivityItem{{
		Name:             "Slow Cafe",
		Category:         category.Cafe,
		Coords:           &coords,
		TravelTimeMin:    12,
		TimeFitnessScore: fitnessWalk,
	}}
	p.classifyTimeFitness(items, BucketQuick)

	assert.LessOrEqual(t, items[0].TimeFitnessScore, quickBucketSoftCap)
	assert.Greater(t, items[0].TimeFitnessScore, quickBucketHardCap)
}

func TestClassifyTimeFitness_MissingCoordsOvershootPenalty(t *testing.T) {
	p := newStagePipeline(&stubTravel{})

	withCoords := geo.Coordinates{Lat: 41.39, Lng: 2.18}
	items := []ActivityItem{
		{Name: "Located", Category: category.Restaurant, Coords: &withCoords, TravelTimeMin: 7, TimeFitnessScore: fitnessWalk},
		{Name: "Unlocated", Category: category.Restaurant, TravelTimeMin: 7, TimeFitnessScore: fitnessWalk},
	}
	// restaurant: wait 10, dwell 45 → total 62, ceiling 60, overtime 2.
	p.classifyTimeFitness(items, BucketShort)

	assert.Equal(t, items[0].TimeFitnessScore-noCoordsOvershootPenalty, items[1].TimeFitnessScore)
}

func TestClassifyTimeFitness_UnboundedBucketNeverPenalizes(t *testing.T) {
	p := newStagePipeline(&stubTravel{})

	items := []ActivityItem{{
		Name:             "Long Museum Visit",
		Category:         category.Museum,
		TravelTimeMin:    60,
		TimeFitnessScore: fitnessDrive,
	}}
	p.classifyTimeFitness(items, BucketExtended)

	assert.Equal(t, fitnessDrive, items[0].TimeFitnessScore)
}

func TestSelectDiverse_CategoryCapAndChainDedup(t *testing.T) {
	p := newStagePipeline(&stubTravel{})

	items := []ActivityItem{
		{Name: "Cafe One", Category: category.Cafe, TotalScore: 90},
		{Name: "Cafe Two", Category: category.Cafe, TotalScore: 85},
		{Name: "Cafe Three", Category: category.Cafe, TotalScore: 80},
		{Name: "Starbucks", Category: category.Cafe, TotalScore: 78, LocaleHints: LocaleHints{Chain: true}},
		{Name: "STARBUCKS", Category: category.Cafe, TotalScore: 75, LocaleHints: LocaleHints{Chain: true}},
		{Name: "Park One", Category: category.Park, TotalScore: 70},
		{Name: "Market One", Category: category.Market, TotalScore: 65},
	}

	out := p.selectDiverse(items)

	require.Len(t, out, 4)
	counts := make(map[category.Category]int)
	for _, item := range out {
		counts[item.Category]++
	}
	assert.LessOrEqual(t, counts[category.Cafe], 2)
	assert.Equal(t, "Cafe One", out[0].Name)
	assert.Equal(t, "Cafe Two", out[1].Name)
	assert.Equal(t, "Park One", out[2].Name)
	assert.Equal(t, "Market One", out[3].Name)
}

func TestSelectDiverse_ChainNameDedupAcrossCategories(t *testing.T) {
	p := newStagePipeline(&stubTravel{})

	items := []ActivityItem{
		{Name: "Zara", Category: category.Shopping, TotalScore: 80, LocaleHints: LocaleHints{Chain: true}},
		{Name: "zara", Category: category.Shopping, TotalScore: 75, LocaleHints: LocaleHints{Chain: true}},
	}

	out := p.selectDiverse(items)
	require.Len(t, out, 1)
	assert.Equal(t, "Zara", out[0].Name)
}

func TestAugment_TopsUpToFour(t *testing.T) {
	p := newStagePipeline(&stubTravel{})
	prefs := Preferences{TimeBucket: BucketShort, Budget: PriceLow, Themes: []Theme{ThemeRelax}}

	existing := []ActivityItem{
		{Name: "Real Result", Category: category.Cafe, TotalScore: 88, TravelTimeMin: 6},
	}

	out, used := p.augment(existing, prefs, sunnyTrip())

	assert.True(t, used)
	require.Len(t, out, 4)
	assert.Equal(t, "Real Result", out[0].Name)
	for _, item := range out[1:] {
		assert.Equal(t, fallbackSource, item.Source)
		assert.NotEmpty(t, item.ReasonText)
		assert.Equal(t, PriceLow, item.PriceLevel)
	}
}

func TestAugment_NoopWhenFull(t *testing.T) {
	p := newStagePipeline(&stubTravel{})
	prefs := Preferences{TimeBucket: BucketShort, Budget: PriceLow, Themes: []Theme{ThemeRelax}}

	existing := make([]ActivityItem, 4)
	out, used := p.augment(existing, prefs, sunnyTrip())

	assert.False(t, used)
	assert.Len(t, out, 4)
}

func TestAugment_ThemePreferenceShapesOrder(t *testing.T) {
	p := newStagePipeline(&stubTravel{})

	relaxPrefs := Preferences{TimeBucket: BucketShort, Budget: PriceLow, Themes: []Theme{ThemeRelax}}
	out, _ := p.augment(nil, relaxPrefs, sunnyTrip())

	require.Len(t, out, 4)
	// Relax-tagged outdoor entries should float to the front on a sunny day.
	assert.Contains(t, out[0].ThemeTags, "relax")
}

func TestReasonText_Compact(t *testing.T) {
	p := newStagePipeline(&stubTravel{})
	prefs := Preferences{TimeBucket: BucketShort, Budget: PriceLow, Themes: []Theme{ThemeRelax}}

	item := ActivityItem{
		Name:          "Parc de la Ciutadella",
		Category:      category.Park,
		PriceLevel:    PriceLow,
		Rating:        4.4,
		TravelTimeMin: 12,
		ThemeTags:     []string{"relax"},
	}

	reason := p.reasonText(&item, prefs)

	assert.LessOrEqual(t, len(reason), 80)
	assert.Contains(t, reason, "[walk 12min]")
	assert.Contains(t, reason, "park")
	assert.Contains(t, reason, "4.4/5")
}
