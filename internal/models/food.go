// internal/models/food.go
package models

// FoodEntry is one logged food within a (user, date) partition.
type FoodEntry struct {
	UserID   string  `json:"ID"`
	Date     string  `json:"DATE"`
	Index    int     `json:"FOOD_INDEX"`
	FoodName string  `json:"FOOD_NAME"`
	Carbo    float64 `json:"CARBO"`
	Protein  float64 `json:"PROTEIN"`
	Fat      float64 `json:"FAT"`
	Calorie  float64 `json:"CALORIE"`
}

// NutritionRecord is the model's estimate for a single food name.
type NutritionRecord struct {
	FoodName     string  `json:"food_name"`
	Carbohydrate float64 `json:"carbohydrate"`
	Protein      float64 `json:"protein"`
	Fat          float64 `json:"fat"`
	Calorie      float64 `json:"calorie"`
}

// Apply copies the record's name and nutrients onto the entry.
func (r NutritionRecord) Apply(e *FoodEntry) {
	e.FoodName = r.FoodName
	e.Carbo = r.Carbohydrate
	e.Protein = r.Protein
	e.Fat = r.Fat
	e.Calorie = r.Calorie
}

// DailyTotals is the USER_NT row for one (user, date).
type DailyTotals struct {
	UserID  string
	Date    string
	Carbo   float64
	Protein float64
	Fat     float64
	Targets Targets
}
