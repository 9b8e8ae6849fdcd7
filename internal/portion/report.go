package portion

import (
	"encoding/json"
	"io"
	"sort"
)

const (
	Source     = "USDA FoodData Central"
	APIVersion = "v1"
)

type Metadata struct {
	Source            string   `json:"source"`
	APIVersion        string   `json:"api_version"`
	GeneratedDate     string   `json:"generated_date"`
	TotalCategories   int      `json:"total_categories"`
	TotalPortionUnits int      `json:"total_portion_units"`
	FailedQueries     []string `json:"failed_queries,omitempty"`
}

// Report is the aggregator's JSON document. Category keys are emitted in
// sorted order by encoding/json.
type Report struct {
	Metadata        Metadata            `json:"metadata"`
	AllPortionUnits []string            `json:"all_portion_units"`
	Categories      map[string][]string `json:"categories"`
}

// CategoryNames returns the report's categories sorted.
func (r Report) CategoryNames() []string {
	out := make([]string, 0, len(r.Categories))
	for c := range r.Categories {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// WriteJSON writes r with two-space indentation and without HTML escaping.
func WriteJSON(w io.Writer, r Report) error {
	if r.AllPortionUnits == nil {
		r.AllPortionUnits = []string{}
	}
	if r.Categories == nil {
		r.Categories = map[string][]string{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
