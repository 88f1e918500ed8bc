package recommend

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sparehour/sparehour/internal/category"
	"github.com/sparehour/sparehour/internal/geo"
	"github.com/sparehour/sparehour/internal/places"
	"github.com/sparehour/sparehour/internal/search"
)

// maxNormalized caps how many candidates enter the pipeline.
const maxNormalized = 15

// lookupConcurrency bounds parallel places lookups during normalization.
const lookupConcurrency = 5

// PlacesLookup resolves missing candidate details. Implemented by
// places.Lookup; failures yield the zero Details.
type PlacesLookup interface {
	Find(ctx context.Context, name, locality string) places.Details
}

// normalize converts raw candidates into ActivityItems. Title-less
// candidates are dropped. Candidates without coordinates go through a
// concurrent places lookup; a lookup miss leaves coordinates nil and
// the travel filter falls back to name-based estimation.
func (p *Pipeline) normalize(ctx context.Context, cands []search.Candidate, trip TripContext) []ActivityItem {
	// The same venue often comes back from several queries; keep the
	// first occurrence only.
	seen := make(map[string]bool, len(cands))
	unique := make([]search.Candidate, 0, len(cands))
	for _, cand := range cands {
		key := strings.ToLower(strings.TrimSpace(cand.Title))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, cand)
	}
	cands = unique

	if len(cands) > maxNormalized {
		cands = cands[:maxNormalized]
	}

	items := make([]*ActivityItem, len(cands))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)
	for i, cand := range cands {
		g.Go(func() error {
			item := p.normalizeOne(gctx, cand, trip)
			items[i] = item
			return nil
		})
	}
	// Workers never return errors; the group is used for bounded fan-out.
	_ = g.Wait()

	out := make([]ActivityItem, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, *item)
		}
	}
	return out
}

func (p *Pipeline) normalizeOne(ctx context.Context, cand search.Candidate, trip TripContext) *ActivityItem {
	classifyText := cand.Title + " " + cand.PlaceType + " " + cand.Description
	cat := category.FromText(classifyText)
	isChain := category.IsChain(cand.Title)

	item := &ActivityItem{
		ID:          cand.Source + ":" + uuid.NewString()[:8],
		Name:        cand.Title,
		Category:    cat,
		PriceLevel:  priceFromText(cand.Description),
		Rating:      cand.Rating,
		ReviewCount: cand.ReviewCount,
		OpenNow:     openNowFromState(cand.OpenState),
		Exposure:    category.ExposureOf(cat),
		Coords:      cand.Coords,
		Address:     cand.Address,
		Description: cand.Description,
		ThemeTags:   themeTags(classifyText, cat),
		LocaleHints: LocaleHints{
			LocalVibe: !isChain,
			Chain:     isChain,
			NightSafe: true,
		},
		Source:  cand.Source,
		PlaceID: cand.PlaceID,
	}

	// Fill in coordinates, rating and identity from the places lookup
	// when the search hit was thin.
	if (item.Coords == nil || item.Rating == 0) && p.places != nil {
		details := p.places.Find(ctx, cand.Title, trip.City)
		if details.Found() {
			if item.Coords == nil {
				item.Coords = details.Coords
			}
			if item.Rating == 0 {
				item.Rating = details.Rating
			}
			if item.ReviewCount == 0 {
				item.ReviewCount = details.ReviewCount
			}
			if item.PlaceID == "" {
				item.PlaceID = details.PlaceID
			}
			if item.Address == "" {
				item.Address = details.Address
			}
			if item.PriceLevel == PriceUnknown && details.PriceLevel >= 0 {
				item.PriceLevel = priceFromAPILevel(details.PriceLevel)
			}
		}
	}

	if item.Coords != nil {
		item.DirectionsLink = geo.DirectionsLink(trip.LocationLabel, item.Name)
	} else {
		item.DirectionsLink = geo.SearchLink(item.Name, trip.City)
	}

	return item
}

// themeTags merges category-derived tags with keyword hits in the
// candidate's text.
func themeTags(text string, cat category.Category) []string {
	set := make(map[string]bool)
	for _, tag := range category.ThemeTags(cat) {
		set[tag] = true
	}

	lower := strings.ToLower(text)
	keywordTags := []struct {
		tag   string
		words []string
	}{
		{"relax", []string{"quiet", "tranquil", "peaceful", "cozy"}},
		{"shopping", []string{"shop", "market", "store"}},
		{"food", []string{"food", "eat", "restaurant", "cafe"}},
		{"activity", []string{"museum", "gallery", "tour", "experience"}},
	}
	for _, kt := range keywordTags {
		for _, w := range kt.words {
			if strings.Contains(lower, w) {
				set[kt.tag] = true
				break
			}
		}
	}

	tags := make([]string, 0, len(set))
	// Fixed iteration order keeps output deterministic.
	for _, tag := range []string{"relax", "shopping", "food", "activity"} {
		if set[tag] {
			tags = append(tags, tag)
		}
	}
	return tags
}

// priceFromText infers a budget tier from euro markers in free text.
// Anything without an explicit marker stays unknown.
func priceFromText(text string) PriceLevel {
	switch {
	case strings.Contains(text, "€€€"):
		return PriceHigh
	case strings.Contains(text, "€€"):
		return PriceMid
	case strings.Contains(text, "€"):
		return PriceLow
	default:
		return PriceUnknown
	}
}

// priceFromAPILevel maps the Places API 0-4 price level onto tiers.
func priceFromAPILevel(level int) PriceLevel {
	switch {
	case level <= 1:
		return PriceLow
	case level == 2:
		return PriceMid
	case level >= 3:
		return PriceHigh
	default:
		return PriceUnknown
	}
}

// openNowFromState parses provider open-state strings ("Open now",
// "Closed", "Closes soon"). Unknown strings stay nil.
func openNowFromState(state string) *bool {
	if state == "" {
		return nil
	}
	open := strings.Contains(strings.ToLower(state), "open")
	return &open
}
