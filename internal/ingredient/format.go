package ingredient

import (
	"errors"
	"fmt"

	"nutrition/internal/sqlfmt"
)

// ErrMissingRequired is returned by Format when a required column is empty.
var ErrMissingRequired = errors.New("missing required field")

// Record is one CSV row keyed by header name. A missing key and an empty
// value mean the same thing.
type Record map[string]string

// Values holds the rendered literals of one row, aligned with Columns.
type Values struct {
	Literals []string

	// Fallbacks lists decimal columns whose non-empty cell failed numeric
	// validation and was replaced by NULL or the column default.
	Fallbacks []string
}

// Get returns the literal rendered for column name.
func (v Values) Get(name string) (string, bool) {
	i, ok := columnIndex[name]
	if !ok || i >= len(v.Literals) {
		return "", false
	}
	return v.Literals[i], true
}

// Format renders rec into SQL literals for every column. Rows with an empty
// name or category are rejected with an error wrapping ErrMissingRequired;
// no other input makes Format fail.
func Format(rec Record) (Values, error) {
	for _, c := range Columns {
		if c.Required && rec[c.Name] == "" {
			return Values{}, fmt.Errorf("%w: %s", ErrMissingRequired, c.Name)
		}
	}

	out := Values{Literals: make([]string, len(Columns))}
	for i, c := range Columns {
		raw := rec[c.Name]
		switch c.Kind {
		case KindString:
			if raw == "" && c.Default != "" {
				out.Literals[i] = c.Default
				continue
			}
			out.Literals[i] = sqlfmt.String(raw, c.MaxLen)
		case KindDecimal:
			lit, ok := sqlfmt.Decimal(raw, c.NotNull, c.Default)
			if !ok {
				out.Fallbacks = append(out.Fallbacks, c.Name)
			}
			out.Literals[i] = lit
		case KindBool:
			out.Literals[i] = sqlfmt.Bool(raw)
		case KindTextArray:
			out.Literals[i] = sqlfmt.TextArray(raw)
		default:
			return Values{}, fmt.Errorf("column %s: unsupported kind %v", c.Name, c.Kind)
		}
	}
	return out, nil
}

// Name returns the name as it will be stored: truncated to the column limit
// but not quoted.
func (r Record) Name() string {
	c, _ := Lookup(ColName)
	return sqlfmt.Truncate(r[ColName], c.MaxLen)
}
