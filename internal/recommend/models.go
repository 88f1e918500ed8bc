// Package recommend implements the candidate-to-recommendation
// pipeline: normalize, travel-time filter, time-fitness classify,
// score, diversity-select, fallback-augment.
package recommend

import (
	"errors"
	"fmt"

	"github.com/sparehour/sparehour/internal/category"
	"github.com/sparehour/sparehour/internal/geo"
	"github.com/sparehour/sparehour/internal/weather"
)

// TimeBucket is the traveler's remaining free time tier.
type TimeBucket string

const (
	BucketQuick    TimeBucket = "≤30"
	BucketShort    TimeBucket = "30-60"
	BucketMedium   TimeBucket = "60-120"
	BucketExtended TimeBucket = ">120"
)

// bucketPolicy holds the per-bucket thresholds: the total-time ceiling
// (0 means unbounded), the travel-time window used by the filter, and
// the candidate-search radius.
type bucketPolicy struct {
	CeilingMin   int
	MinTravelMin int
	MaxTravelMin int
	RadiusMeters int
}

var bucketPolicies = map[TimeBucket]bucketPolicy{
	BucketQuick:    {CeilingMin: 30, MinTravelMin: 8, MaxTravelMin: 10, RadiusMeters: 800},
	BucketShort:    {CeilingMin: 60, MinTravelMin: 15, MaxTravelMin: 21, RadiusMeters: 1500},
	BucketMedium:   {CeilingMin: 120, MinTravelMin: 30, MaxTravelMin: 42, RadiusMeters: 3000},
	BucketExtended: {CeilingMin: 0, MinTravelMin: 45, MaxTravelMin: 63, RadiusMeters: 5000},
}

// Valid reports whether the bucket is one of the four tiers.
func (b TimeBucket) Valid() bool {
	_, ok := bucketPolicies[b]
	return ok
}

// Policy returns the bucket's thresholds.
func (b TimeBucket) Policy() bucketPolicy {
	return bucketPolicies[b]
}

// PriceLevel is a budget tier.
type PriceLevel string

const (
	PriceLow     PriceLevel = "low"
	PriceMid     PriceLevel = "mid"
	PriceHigh    PriceLevel = "high"
	PriceUnknown PriceLevel = "unknown"
)

// Valid reports whether the level is a known tier.
func (p PriceLevel) Valid() bool {
	switch p {
	case PriceLow, PriceMid, PriceHigh, PriceUnknown:
		return true
	default:
		return false
	}
}

// ordinal returns the tier index for adjacency checks, -1 for unknown.
func (p PriceLevel) ordinal() int {
	switch p {
	case PriceLow:
		return 0
	case PriceMid:
		return 1
	case PriceHigh:
		return 2
	default:
		return -1
	}
}

// Theme is a user interest tag.
type Theme string

const (
	ThemeRelax    Theme = "relax"
	ThemeShopping Theme = "shopping"
	ThemeFood     Theme = "food"
	ThemeActivity Theme = "activity"
)

// Valid reports whether the theme is known.
func (t Theme) Valid() bool {
	switch t {
	case ThemeRelax, ThemeShopping, ThemeFood, ThemeActivity:
		return true
	default:
		return false
	}
}

// Preferences are the traveler's constraints for one request.
type Preferences struct {
	TimeBucket TimeBucket
	Budget     PriceLevel
	Themes     []Theme
	FreeText   string
}

// Validation errors. Invalid preferences are the only fatal input.
var (
	ErrInvalidTimeBucket = errors.New("invalid time bucket")
	ErrInvalidBudget     = errors.New("invalid budget level")
	ErrNoThemes          = errors.New("at least one theme is required")
	ErrInvalidTheme      = errors.New("invalid theme")
)

// Validate rejects malformed preferences at the boundary.
func (p Preferences) Validate() error {
	if !p.TimeBucket.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTimeBucket, p.TimeBucket)
	}
	if !p.Budget.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidBudget, p.Budget)
	}
	if len(p.Themes) == 0 {
		return ErrNoThemes
	}
	for _, t := range p.Themes {
		if !t.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidTheme, t)
		}
	}
	return nil
}

// themeSet returns the themes as a lookup set of plain strings.
func (p Preferences) themeSet() map[string]bool {
	set := make(map[string]bool, len(p.Themes))
	for _, t := range p.Themes {
		set[string(t)] = true
	}
	return set
}

// TripContext is the traveler's situation: where they are and what the
// sky is doing. Read-only for the pipeline's duration.
type TripContext struct {
	LocationLabel string
	City          string
	Coords        geo.Coordinates
	Weather       weather.Snapshot
}

// LocaleHints carry soft signals about a place's character.
type LocaleHints struct {
	LocalVibe bool
	Chain     bool
	NightSafe bool
}

// ActivityItem is the canonical unit flowing through the pipeline.
type ActivityItem struct {
	ID          string
	Name        string
	Category    category.Category
	PriceLevel  PriceLevel
	Rating      float64 // 0 when unknown
	ReviewCount int
	OpenNow     *bool // nil when unknown
	Exposure    category.Exposure
	Coords      *geo.Coordinates
	Address     string
	Description string

	// Travel metrics, filled by the travel-time filter.
	DistanceMeters int
	WalkTimeMin    int
	DriveTimeMin   int
	TransitTimeMin int
	TravelTimeMin  int // the mode chosen by the filter

	// Category-default expectations, filled by the time classifier.
	ExpectedWaitMin  int
	ExpectedDwellMin int

	ThemeTags   []string
	LocaleHints LocaleHints

	// Scores, populated during classification and ranking.
	TimeFitnessScore int
	TotalScore       float64

	ReasonText     string
	DirectionsLink string
	Source         string
	PlaceID        string
}

// hasTheme reports whether the item carries the given theme tag.
func (a *ActivityItem) hasTheme(tag string) bool {
	for _, t := range a.ThemeTags {
		if t == tag {
			return true
		}
	}
	return false
}

// Meta is the aggregate outcome of one pipeline run.
type Meta struct {
	SourceCounts  map[string]int
	FallbackUsed  bool
	ProviderError bool
	SearchedCount int
	FilteredCount int
	ElapsedMS     int64
}

// Result is the pipeline's output contract.
type Result struct {
	Items []ActivityItem
	Meta  Meta
}
