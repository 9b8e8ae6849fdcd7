package portion

import (
	"strings"

	"nutrition/internal/fdc"
)

// Uncategorized is used for foods without a category.
const Uncategorized = "Uncategorized"

// undetermined is FDC's placeholder measure unit name.
const undetermined = "undetermined"

// Extract returns the category of f and the units it exposes.
func Extract(f fdc.Food) (string, Set) {
	category := f.FoodCategory.Description
	if strings.TrimSpace(category) == "" {
		category = Uncategorized
	}

	units := Set{}
	units.Add(lower(f.ServingSizeUnit))
	units.Merge(ParseHousehold(f.HouseholdServingFullText))

	for _, p := range f.FoodPortions {
		units.Add(lower(p.PortionDescription))
		units.Add(lower(p.Modifier))
		units.Add(lower(p.MeasureUnit.Name))
	}
	for _, m := range f.FoodMeasures {
		if name := lower(m.MeasureUnitName); name != undetermined {
			units.Add(name)
		}
	}
	return category, units
}
