// internal/models/report.go
package models

const (
	KeyCarbo   = "carbo"
	KeyProtein = "protein"
	KeyFat     = "fat"
)

// Percentages maps a macro key to the share of its RDI consumed. An empty
// map means the day has no totals.
type Percentages map[string]float64

type DaySummary struct {
	Foods       []FoodEntry `json:"foods"`
	Percentages Percentages `json:"percentages"`
}

// MonthReport holds one slot per calendar day; day 1 is index 0.
type MonthReport struct {
	Foods       [][]FoodEntry `json:"foods"`
	Percentages []Percentages `json:"percentages"`
}

type Averages struct {
	Carbo   float64 `json:"avg_carbo"`
	Protein float64 `json:"avg_protein"`
	Fat     float64 `json:"avg_fat"`
}
