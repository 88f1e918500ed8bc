package recommend

import (
	"sort"

	"github.com/sparehour/sparehour/internal/category"
	"github.com/sparehour/sparehour/internal/geo"
	"github.com/sparehour/sparehour/internal/weather"
)

// Fallback scoring. The catalog scores below fresh search results on
// purpose: it only wins when search came up short.
const (
	fallbackBaseScore       = 60.0
	fallbackNearBonus       = 15.0 // within 500m
	fallbackMidBonus        = 10.0 // within 1km
	fallbackFarBonus        = 5.0
	fallbackThemeBonus      = 5.0
	fallbackRainIndoor      = 10.0
	fallbackRainOutdoor     = -5.0
	fallbackFairOutdoor     = 5.0
	fallbackDefaultDwellMin = 20
	fallbackSource          = "fallback"
)

// CatalogEntry is one pre-vetted, always-available public place.
type CatalogEntry struct {
	ID        string
	Name      string
	Category  category.Category
	Coords    geo.Coordinates
	Exposure  category.Exposure
	ThemeTags []string
}

// DefaultCatalog returns the Barcelona fallback catalog: free or cheap
// public places that are safe to recommend sight unseen.
func DefaultCatalog() []CatalogEntry {
	return []CatalogEntry{
		{
			ID:        "fallback-placa-catalunya",
			Name:      "Plaça de Catalunya",
			Category:  category.Park,
			Coords:    geo.Coordinates{Lat: 41.3874, Lng: 2.1686},
			Exposure:  category.Outdoor,
			ThemeTags: []string{"relax"},
		},
		{
			ID:        "fallback-passeig-gracia",
			Name:      "Passeig de Gràcia window shopping",
			Category:  category.Shopping,
			Coords:    geo.Coordinates{Lat: 41.3910, Lng: 2.1649},
			Exposure:  category.Mixed,
			ThemeTags: []string{"shopping"},
		},
		{
			ID:        "fallback-el-born",
			Name:      "El Born photo walk",
			Category:  category.Viewpoint,
			Coords:    geo.Coordinates{Lat: 41.3839, Lng: 2.1823},
			Exposure:  category.Outdoor,
			ThemeTags: []string{"activity"},
		},
		{
			ID:        "fallback-ciutadella",
			Name:      "Parc de la Ciutadella stroll",
			Category:  category.Park,
			Coords:    geo.Coordinates{Lat: 41.3888, Lng: 2.1872},
			Exposure:  category.Outdoor,
			ThemeTags: []string{"relax", "activity"},
		},
		{
			ID:        "fallback-boqueria",
			Name:      "Mercat de la Boqueria",
			Category:  category.Market,
			Coords:    geo.Coordinates{Lat: 41.3816, Lng: 2.1722},
			Exposure:  category.Indoor,
			ThemeTags: []string{"food", "shopping"},
		},
		{
			ID:        "fallback-gothic-quarter",
			Name:      "Gothic Quarter alleys",
			Category:  category.Landmark,
			Coords:    geo.Coordinates{Lat: 41.3828, Lng: 2.1761},
			Exposure:  category.Outdoor,
			ThemeTags: []string{"activity"},
		},
	}
}

// augment tops the selection up to the target count from the catalog.
// Returns the combined list and whether the catalog was used. Must not
// fail even over an empty selection.
func (p *Pipeline) augment(items []ActivityItem, prefs Preferences, trip TripContext) ([]ActivityItem, bool) {
	needed := targetCount - len(items)
	if needed <= 0 {
		return items, false
	}

	themes := prefs.themeSet()
	fallbacks := make([]ActivityItem, 0, len(p.catalog))
	for _, entry := range p.catalog {
		item := p.catalogItem(entry, trip)
		item.TotalScore = fallbackScore(&item, themes, trip.Weather.Condition)
		fallbacks = append(fallbacks, item)
	}

	sort.SliceStable(fallbacks, func(i, j int) bool {
		return fallbacks[i].TotalScore > fallbacks[j].TotalScore
	})

	if needed > len(fallbacks) {
		needed = len(fallbacks)
	}
	for _, fb := range fallbacks[:needed] {
		fb.ReasonText = p.reasonText(&fb, prefs)
		items = append(items, fb)
	}

	return items, needed > 0
}

// catalogItem builds a pipeline item from a catalog entry, with travel
// metrics derived from the straight-line distance.
func (p *Pipeline) catalogItem(entry CatalogEntry, trip TripContext) ActivityItem {
	coords := entry.Coords
	distance := geo.DistanceMeters(trip.Coords, coords)
	walkMin := geo.WalkMinutes(distance)
	openNow := true

	return ActivityItem{
		ID:               entry.ID,
		Name:             entry.Name,
		Category:         entry.Category,
		PriceLevel:       PriceLow,
		OpenNow:          &openNow,
		Exposure:         entry.Exposure,
		Coords:           &coords,
		DistanceMeters:   distance,
		WalkTimeMin:      walkMin,
		DriveTimeMin:     geo.DriveMinutes(distance),
		TransitTimeMin:   geo.TransitMinutes(distance),
		TravelTimeMin:    walkMin,
		ExpectedWaitMin:  0,
		ExpectedDwellMin: fallbackDefaultDwellMin,
		ThemeTags:        entry.ThemeTags,
		LocaleHints: LocaleHints{
			LocalVibe: true,
			Chain:     false,
			NightSafe: true,
		},
		DirectionsLink: geo.DirectionsLink(trip.LocationLabel, entry.Name),
		Source:         fallbackSource,
	}
}

// fallbackScore is a simplified formula for catalog entries only.
func fallbackScore(item *ActivityItem, themes map[string]bool, condition weather.Condition) float64 {
	score := fallbackBaseScore

	switch {
	case item.DistanceMeters <= 500:
		score += fallbackNearBonus
	case item.DistanceMeters <= 1000:
		score += fallbackMidBonus
	default:
		score += fallbackFarBonus
	}

	for _, tag := range item.ThemeTags {
		if themes[tag] {
			score += fallbackThemeBonus
		}
	}

	if condition == weather.ConditionRain {
		switch item.Exposure {
		case category.Indoor:
			score += fallbackRainIndoor
		case category.Outdoor:
			score += fallbackRainOutdoor
		}
	} else if item.Exposure == category.Outdoor {
		score += fallbackFairOutdoor
	}

	return score
}
