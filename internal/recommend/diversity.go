package recommend

import (
	"strings"

	"github.com/sparehour/sparehour/internal/category"
)

// Diversity constraints on the final selection.
const (
	targetCount    = 4
	maxPerCategory = 2
)

// selectDiverse walks the ranked list once, keeping an item unless it
// is a chain whose name was already kept or its category is saturated.
// A lower-scored item can win over a constraint violator; variety beats
// raw score here.
func (p *Pipeline) selectDiverse(items []ActivityItem) []ActivityItem {
	selected := make([]ActivityItem, 0, targetCount)
	seenChains := make(map[string]bool)
	categoryCounts := make(map[category.Category]int)

	for _, item := range items {
		if item.LocaleHints.Chain {
			key := strings.ToLower(item.Name)
			if seenChains[key] {
				continue
			}
			seenChains[key] = true
		}

		if categoryCounts[item.Category] >= maxPerCategory {
			continue
		}

		categoryCounts[item.Category]++
		selected = append(selected, item)

		if len(selected) >= targetCount {
			break
		}
	}

	return selected
}
