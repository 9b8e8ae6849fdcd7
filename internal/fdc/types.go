package fdc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Food is the subset of an FDC food record the portion aggregator reads. The
// search endpoint and the details endpoint share these field names.
type Food struct {
	FdcID                    int64         `json:"fdcId"`
	Description              string        `json:"description"`
	DataType                 string        `json:"dataType"`
	FoodCategory             FoodCategory  `json:"foodCategory"`
	ServingSize              float64       `json:"servingSize"`
	ServingSizeUnit          string        `json:"servingSizeUnit"`
	HouseholdServingFullText string        `json:"householdServingFullText"`
	FoodPortions             []FoodPortion `json:"foodPortions"`
	FoodMeasures             []FoodMeasure `json:"foodMeasures"`
}

// FoodCategory is a category description. Search results carry it as a plain
// string; the details endpoint as {"id":..,"code":..,"description":..}.
type FoodCategory struct {
	Description string
}

func (c *FoodCategory) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		return json.Unmarshal(b, &c.Description)
	}
	var obj struct {
		Description string `json:"description"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("fdc: foodCategory: %w", err)
	}
	c.Description = obj.Description
	return nil
}

func (c FoodCategory) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Description)
}

// FoodPortion is one household measure of a Foundation or SR Legacy food.
type FoodPortion struct {
	ID                 int64       `json:"id"`
	Amount             float64     `json:"amount"`
	GramWeight         float64     `json:"gramWeight"`
	PortionDescription string      `json:"portionDescription"`
	Modifier           string      `json:"modifier"`
	MeasureUnit        MeasureUnit `json:"measureUnit"`
}

// MeasureUnit names the unit of a FoodPortion.
type MeasureUnit struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

// FoodMeasure is the search endpoint's flattened portion record.
type FoodMeasure struct {
	DisseminationText string  `json:"disseminationText"`
	GramWeight        float64 `json:"gramWeight"`
	MeasureUnitName   string  `json:"measureUnitName"`
	MeasureUnitAbbrev string  `json:"measureUnitAbbreviation"`
}

// SearchResult is one page of /foods/search.
type SearchResult struct {
	TotalHits   int    `json:"totalHits"`
	CurrentPage int    `json:"currentPage"`
	TotalPages  int    `json:"totalPages"`
	Foods       []Food `json:"foods"`
}
