// Package category classifies free-text place signals into a closed
// category set with indoor/outdoor and theme metadata.
package category

import "strings"

// Category is the closed set of activity categories.
type Category string

const (
	Cafe       Category = "cafe"
	Park       Category = "park"
	Viewpoint  Category = "viewpoint"
	Market     Category = "market"
	Museum     Category = "museum"
	Shopping   Category = "shopping"
	Restaurant Category = "restaurant"
	Landmark   Category = "landmark"
	Other      Category = "other"
)

// All lists every category, in display order.
func All() []Category {
	return []Category{Cafe, Park, Viewpoint, Market, Museum, Shopping, Restaurant, Landmark, Other}
}

// Exposure indicates whether an activity happens indoors or outdoors.
type Exposure string

const (
	Indoor          Exposure = "indoor"
	Outdoor         Exposure = "outdoor"
	Mixed           Exposure = "mixed"
	UnknownExposure Exposure = "unknown"
)

// keywordTable maps text fragments to categories. Covers English, Spanish
// and Catalan venue terms seen in provider results. Order matters: the
// slice is scanned front to back and the first match wins, so more
// specific fragments come before generic ones.
var keywordTable = []struct {
	fragment string
	cat      Category
}{
	{"coffee", Cafe},
	{"cafeter", Cafe}, // cafetería / cafeteria
	{"cafe", Cafe},
	{"cafè", Cafe},
	{"bakery", Cafe},
	{"pasteler", Cafe},

	{"parque", Park},
	{"park", Park},
	{"garden", Park},
	{"jardin", Park},
	{"jardines", Park},
	{"plaza", Park},
	{"plaça", Park},
	{"square", Park},

	{"viewpoint", Viewpoint},
	{"mirador", Viewpoint},
	{"bunkers", Viewpoint},
	{"overlook", Viewpoint},

	{"mercado", Market},
	{"mercat", Market},
	{"market", Market},
	{"flea", Market},

	{"vintage", Shopping},
	{"shopping", Shopping},
	{"shop", Shopping},
	{"tienda", Shopping},
	{"botiga", Shopping},

	{"museum", Museum},
	{"museo", Museum},
	{"museu", Museum},
	{"galer", Museum}, // galería / galeria
	{"gallery", Museum},

	{"restaurant", Restaurant},
	{"tapas", Restaurant},
	{"bar", Restaurant},
	{"food", Restaurant},
	{"comida", Restaurant},

	{"landmark", Landmark},
	{"monument", Landmark},
	{"cathedral", Landmark},
	{"catedral", Landmark},
	{"basilica", Landmark},
	{"basílica", Landmark},
}

// chainKeywords flags multi-location commercial brands. Chains are
// deduplicated by name and lose the local-vibe scoring bonus.
var chainKeywords = []string{
	"starbucks", "mcdonald", "burger king", "kfc", "subway",
	"h&m", "zara", "uniqlo", "nike", "adidas",
	"seven eleven", "family mart",
}

// FromText maps a free-text signal (title, provider type, description)
// to a category. Unmatched text classifies as Other.
func FromText(text string) Category {
	lower := strings.ToLower(text)
	for _, kw := range keywordTable {
		if strings.Contains(lower, kw.fragment) {
			return kw.cat
		}
	}
	return Other
}

// IsChain reports whether the name matches a known chain establishment.
func IsChain(name string) bool {
	lower := strings.ToLower(name)
	for _, chain := range chainKeywords {
		if strings.Contains(lower, chain) {
			return true
		}
	}
	return false
}

// ExposureOf returns the typical indoor/outdoor exposure for a category.
func ExposureOf(cat Category) Exposure {
	switch cat {
	case Cafe, Museum, Shopping, Restaurant:
		return Indoor
	case Park:
		return Outdoor
	case Viewpoint, Market, Landmark:
		return Mixed
	default:
		return UnknownExposure
	}
}

// Defaults holds expected wait and dwell minutes for a category.
type Defaults struct {
	WaitMin  int
	DwellMin int
}

// defaultsTable is the closed table of per-category visit estimates.
var defaultsTable = map[Category]Defaults{
	Cafe:       {WaitMin: 5, DwellMin: 20},
	Park:       {WaitMin: 0, DwellMin: 15},
	Viewpoint:  {WaitMin: 0, DwellMin: 10},
	Market:     {WaitMin: 3, DwellMin: 15},
	Museum:     {WaitMin: 15, DwellMin: 60},
	Shopping:   {WaitMin: 0, DwellMin: 20},
	Restaurant: {WaitMin: 10, DwellMin: 45},
	Landmark:   {WaitMin: 3, DwellMin: 15},
	Other:      {WaitMin: 3, DwellMin: 15},
}

// DefaultsOf returns the expected wait and dwell minutes for a category.
// Unknown categories get the conservative Other defaults.
func DefaultsOf(cat Category) Defaults {
	if d, ok := defaultsTable[cat]; ok {
		return d
	}
	return defaultsTable[Other]
}

// ThemeTags infers theme tags from a category. Used by the normalizer to
// seed theme overlap scoring when the provider gives no theme signal.
func ThemeTags(cat Category) []string {
	switch cat {
	case Cafe, Park, Viewpoint:
		return []string{"relax"}
	case Market:
		return []string{"food", "shopping"}
	case Shopping:
		return []string{"shopping"}
	case Restaurant:
		return []string{"food"}
	case Museum, Landmark:
		return []string{"activity"}
	default:
		return nil
	}
}
