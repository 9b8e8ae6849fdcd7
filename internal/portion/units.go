// Package portion builds a map from FDC food category to the portion units
// observed for foods in that category.
//
// Units come from four places on each food: the serving size unit, words of a
// fixed unit vocabulary found in the household serving text, the
// description/modifier/unit name of every food portion, and the unit name of
// every food measure. All units are lowercased. The map only grows during a
// run and is rendered with sorted keys and sorted unit lists.
package portion

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Vocabulary is the unit words looked for in household serving text.
var Vocabulary = []string{
	"cup", "cups", "tbsp", "tablespoon", "tablespoons",
	"tsp", "teaspoon", "teaspoons", "oz", "ounce", "ounces",
	"lb", "pound", "pounds", "g", "gram", "grams",
	"ml", "milliliter", "milliliters", "liter", "liters",
	"fl oz", "fluid ounce", "piece", "pieces", "slice", "slices",
	"serving", "container", "package", "can", "bottle",
	"whole", "half", "quarter", "large", "medium", "small",
	"fillet", "breast", "thigh", "drumstick", "wing",
	"bowl", "glass", "scoop",
}

// lower applies full Unicode lowercasing.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// ParseHousehold returns every Vocabulary word contained in text, compared
// case-insensitively. Matching is by substring: "1 large egg (50 g)" yields
// large, g and also any word that happens to be embedded in another.
func ParseHousehold(text string) Set {
	out := Set{}
	if text == "" {
		return out
	}
	t := lower(text)
	for _, w := range Vocabulary {
		if strings.Contains(t, w) {
			out[w] = struct{}{}
		}
	}
	return out
}

// Set is a set of unit strings.
type Set map[string]struct{}

// Add inserts u when non-empty.
func (s Set) Add(u string) {
	if u != "" {
		s[u] = struct{}{}
	}
}

// Merge adds every unit of o.
func (s Set) Merge(o Set) {
	for u := range o {
		s[u] = struct{}{}
	}
}

// Sorted returns the units in ascending byte order, never nil.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for u := range s {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// CategoryMap maps category description to its units.
type CategoryMap map[string]Set

// Merge adds units under category. Empty unit sets are ignored, so a
// category only appears once at least one unit was seen for it.
func (m CategoryMap) Merge(category string, units Set) {
	if len(units) == 0 {
		return
	}
	s, ok := m[category]
	if !ok {
		s = Set{}
		m[category] = s
	}
	s.Merge(units)
}

// Sorted renders the map with sorted unit lists.
func (m CategoryMap) Sorted() map[string][]string {
	out := make(map[string][]string, len(m))
	for c, s := range m {
		out[c] = s.Sorted()
	}
	return out
}
