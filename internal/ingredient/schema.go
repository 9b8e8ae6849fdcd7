// Package ingredient maps CSV rows of ingredient nutrition facts onto the
// simple_ingredients table.
//
// The table layout is fixed and described by Columns: each column declares
// how its raw cell is rendered (string, decimal, boolean or text array), its
// length limit, and what to emit when the cell is empty or invalid. Format
// walks Columns in order, so the rendered Values line up with the INSERT
// column list produced by ColumnNames.
package ingredient

// Kind selects how a raw cell is rendered as a SQL literal.
type Kind int

const (
	KindString Kind = iota
	KindDecimal
	KindBool
	KindTextArray
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindDecimal:
		return "decimal"
	case KindBool:
		return "bool"
	case KindTextArray:
		return "text[]"
	}
	return "unknown"
}

// Column describes one destination column.
type Column struct {
	Name string
	Kind Kind

	// MaxLen truncates string cells (in characters). Zero means unlimited.
	MaxLen int

	// NotNull makes decimal columns fall back to Default instead of NULL.
	NotNull bool

	// Default is the literal used for an empty cell. For decimals it only
	// applies when NotNull is set; for strings it replaces NULL (e.g. 'g').
	Default string

	// Required rows are rejected when this cell is empty.
	Required bool
}

// Names of the required columns.
const (
	ColName     = "name"
	ColCategory = "category"
)

// Table is the destination table.
const Table = "simple_ingredients"

// ConflictColumn is the natural unique key used in ON CONFLICT.
const ConflictColumn = ColName

func decimalCol(name string) Column { return Column{Name: name, Kind: KindDecimal} }

func requiredDecimal(name, def string) Column {
	return Column{Name: name, Kind: KindDecimal, NotNull: true, Default: def}
}

// Columns is the simple_ingredients layout in INSERT order. The CSV fdc_id
// column has no destination; the table generates its own key.
var Columns = []Column{
	{Name: ColName, Kind: KindString, MaxLen: 255, Required: true},
	{Name: "display_name", Kind: KindString, MaxLen: 255},
	{Name: ColCategory, Kind: KindString, MaxLen: 100, Required: true},

	requiredDecimal("serving_quantity", "1"),
	{Name: "serving_unit", Kind: KindString, MaxLen: 50, Default: "'g'"},

	requiredDecimal("calories", "0"),
	requiredDecimal("protein_g", "0"),
	requiredDecimal("carbs_g", "0"),
	requiredDecimal("fat_g", "0"),
	requiredDecimal("fiber_g", "0"),
	decimalCol("sugar_g"),
	decimalCol("saturated_fat_g"),
	decimalCol("trans_fat_g"),
	decimalCol("cholesterol_mg"),

	decimalCol("vitamin_a_mcg"),
	decimalCol("vitamin_d_mcg"),
	decimalCol("vitamin_e_mg"),
	decimalCol("vitamin_k_mcg"),
	decimalCol("vitamin_c_mg"),
	decimalCol("thiamin_mg"),
	decimalCol("riboflavin_mg"),
	decimalCol("niacin_mg"),
	decimalCol("vitamin_b6_mg"),
	decimalCol("vitamin_b12_mcg"),
	decimalCol("folate_mcg"),
	decimalCol("biotin_mcg"),
	decimalCol("pantothenic_acid_mg"),
	decimalCol("choline_mg"),

	decimalCol("calcium_mg"),
	decimalCol("phosphorus_mg"),
	decimalCol("magnesium_mg"),
	decimalCol("sodium_mg"),
	decimalCol("potassium_mg"),
	decimalCol("chloride_mg"),
	decimalCol("iron_mg"),
	decimalCol("zinc_mg"),
	decimalCol("copper_mg"),
	decimalCol("selenium_mcg"),
	decimalCol("iodine_mcg"),
	decimalCol("manganese_mg"),
	decimalCol("molybdenum_mcg"),
	decimalCol("chromium_mcg"),

	{Name: "health_labels", Kind: KindTextArray},
	{Name: "diet_labels", Kind: KindTextArray},
	{Name: "allergens", Kind: KindTextArray},
	{Name: "image_url", Kind: KindString},
	{Name: "is_active", Kind: KindBool},
}

// Groups is the line layout of the column list and each VALUES tuple:
// identity, serving, macros, vitamins, minerals, labels, metadata.
var Groups = []int{3, 2, 3, 3, 3, 3, 3, 3, 3, 2, 3, 3, 3, 3, 2, 3, 2}

// columnIndex maps column name to its position in Columns.
var columnIndex = func() map[string]int {
	m := make(map[string]int, len(Columns))
	for i, c := range Columns {
		m[c.Name] = i
	}
	return m
}()

// ColumnNames returns the column names in INSERT order.
func ColumnNames() []string {
	names := make([]string, len(Columns))
	for i, c := range Columns {
		names[i] = c.Name
	}
	return names
}

// Lookup returns the column definition for name.
func Lookup(name string) (Column, bool) {
	i, ok := columnIndex[name]
	if !ok {
		return Column{}, false
	}
	return Columns[i], true
}
