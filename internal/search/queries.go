package search

import (
	"fmt"
	"strings"
)

// Query-plan limits. Up to two Spanish and one English query per theme,
// capped at five queries overall with at least two guaranteed.
const (
	maxQueriesPerPlan   = 5
	maxSpanishPerTheme  = 2
	maxEnglishPerTheme  = 1
	minQueriesGuarantee = 2
)

// themeKeywords maps a theme to localized search phrases.
var themeKeywords = map[string]map[string][]string{
	"relax": {
		"es": {"cafe acogedor", "parque tranquilo", "mirador"},
		"en": {"cozy cafe", "quiet park", "viewpoint"},
	},
	"shopping": {
		"es": {"mercado local", "tienda vintage", "papelería"},
		"en": {"local market", "vintage shop", "stationery store"},
	},
	"food": {
		"es": {"comida barata", "bar de tapas", "panadería"},
		"en": {"cheap eats", "tapas bar", "bakery"},
	},
	"activity": {
		"es": {"museo pequeño", "galería de arte", "espectáculo callejero"},
		"en": {"small museum", "art gallery", "street performance"},
	},
}

// budgetKeywords maps a budget level to query qualifiers, Spanish first.
var budgetKeywords = map[string][]string{
	"low":  {"barato", "budget"},
	"mid":  {"moderado", "moderate"},
	"high": {"fino", "fine"},
}

// BuildInput carries everything the query builder needs.
type BuildInput struct {
	// Themes are the requested theme names ("relax", "food", ...).
	Themes []string

	// Budget is the budget level ("low", "mid", "high", "unknown").
	Budget string

	// Location is the human-readable origin label appended to every query.
	Location string

	// RadiusMeters is the bucket-derived search radius.
	RadiusMeters int
}

// BuildQueries expands themes into localized provider queries. Themes
// without a keyword entry are skipped; when nothing usable remains, the
// generic fallback queries keep the plan non-empty.
func BuildQueries(in BuildInput) []Query {
	var queries []Query
	seen := make(map[string]bool)

	add := func(text, locale string) {
		if len(queries) >= maxQueriesPerPlan || seen[text] {
			return
		}
		seen[text] = true
		queries = append(queries, Query{
			Text:         text,
			Locale:       locale,
			RadiusMeters: in.RadiusMeters,
		})
	}

	budgetWords := budgetKeywords[in.Budget]

	for _, theme := range in.Themes {
		words, ok := themeKeywords[strings.ToLower(theme)]
		if !ok {
			continue
		}

		for i, word := range words["es"] {
			if i >= maxSpanishPerTheme {
				break
			}
			hint := ""
			if len(budgetWords) > 0 {
				hint = budgetWords[0]
			}
			add(strings.TrimSpace(fmt.Sprintf("%s cerca de %s %s", word, in.Location, hint)), "es-ES")
		}

		for i, word := range words["en"] {
			if i >= maxEnglishPerTheme {
				break
			}
			hint := ""
			if len(budgetWords) > 1 {
				hint = budgetWords[1]
			}
			add(strings.TrimSpace(fmt.Sprintf("%s near %s %s", word, in.Location, hint)), "en")
		}
	}

	if len(queries) < minQueriesGuarantee {
		add(fmt.Sprintf("lugares interesantes cerca de %s", in.Location), "es-ES")
		add(fmt.Sprintf("things to do near %s", in.Location), "en")
	}

	return queries
}
