package recommend

import (
	"fmt"

	"github.com/sparehour/sparehour/internal/category"
)

// maxReasonLen bounds the reason string for compact list rendering.
const maxReasonLen = 80

var categoryLabels = map[category.Category]string{
	category.Cafe:       "cafe",
	category.Park:       "park",
	category.Viewpoint:  "viewpoint",
	category.Market:     "market",
	category.Museum:     "museum",
	category.Shopping:   "shopping",
	category.Restaurant: "restaurant",
	category.Landmark:   "landmark",
	category.Other:      "spot",
}

var budgetLabels = map[PriceLevel]string{
	PriceLow:     "budget-friendly",
	PriceMid:     "mid-range",
	PriceHigh:    "upscale",
	PriceUnknown: "price unknown",
}

var themeLabels = map[string]string{
	"relax":    "unwinding",
	"shopping": "browsing",
	"food":     "a bite",
	"activity": "exploring",
}

// reasonText builds a compact one-line recommendation reason.
func (p *Pipeline) reasonText(item *ActivityItem, prefs Preferences) string {
	travelMin := item.TravelTimeMin
	if travelMin <= 0 {
		travelMin = 5
	}

	catLabel := categoryLabels[item.Category]
	if catLabel == "" {
		catLabel = "spot"
	}

	ratingText := "no rating yet"
	if item.Rating > 0 {
		ratingText = fmt.Sprintf("rated %.1f/5", item.Rating)
	}

	themeText := "a quick visit"
	for _, theme := range prefs.Themes {
		if item.hasTheme(string(theme)) {
			if label, ok := themeLabels[string(theme)]; ok {
				themeText = label
			}
			break
		}
	}

	reason := fmt.Sprintf("[walk %dmin] %s · %s. %s, good for %s now.",
		travelMin, catLabel, ratingText, budgetLabels[item.PriceLevel], themeText)

	if len(reason) > maxReasonLen {
		reason = fmt.Sprintf("[walk %dmin] %s, good for %s.", travelMin, catLabel, themeText)
	}

	return reason
}
