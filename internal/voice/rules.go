package voice

import (
	"strings"

	"triplog/internal/core"
)

// CategoryRule maps keywords to a category. Rules are checked in order and
// the first rule with a keyword contained in the transcript wins.
type CategoryRule struct {
	Category core.Category
	Keywords []string
}

// DefaultCategoryRules is the ordered rule set of the free-form path.
func DefaultCategoryRules() []CategoryRule {
	return []CategoryRule{
		{Category: core.Fuel, Keywords: []string{"fuel", "gas", "gasoline"}},
		{Category: core.Meals, Keywords: []string{"food", "restaurant", "meal", "lunch", "dinner"}},
		{Category: core.Accommodation, Keywords: []string{"hotel", "accommodation", "lodging"}},
		{Category: core.Transportation, Keywords: []string{"taxi", "uber", "transport"}},
		{Category: core.OfficeSupplies, Keywords: []string{"supplies", "stationery"}},
		{Category: core.Equipment, Keywords: []string{"equipment", "laptop", "computer"}},
	}
}

// InferCategory applies rules to text by case-insensitive substring match,
// falling back to Miscellaneous.
func InferCategory(text string, rules []CategoryRule) core.Category {
	lower := strings.ToLower(text)
	for _, r := range rules {
		for _, k := range r.Keywords {
			if strings.Contains(lower, strings.ToLower(k)) {
				return r.Category
			}
		}
	}
	return core.Miscellaneous
}

// miscTypes are the expense kinds recognised in miscellaneous transcripts.
var miscTypes = []string{"parking", "toll", "taxi", "uber", "supplies", "equipment"}

// miscTitle returns the first recognised expense kind, capitalised.
func miscTitle(text string) string {
	lower := strings.ToLower(text)
	for _, t := range miscTypes {
		if strings.Contains(lower, t) {
			return strings.ToUpper(t[:1]) + t[1:]
		}
	}
	return ""
}
