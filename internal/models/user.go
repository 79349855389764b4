// internal/models/user.go
package models

type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

type User struct {
	ID           string  `json:"id"`
	PasswordHash string  `json:"-"`
	BodyWeight   float64 `json:"bodyweight"`
	Height       float64 `json:"height"`
	Age          int     `json:"age"`
	Gender       Gender  `json:"gender"`
	Activity     int     `json:"activity"`
	Targets
}

// Targets are a user's recommended daily intake in grams.
type Targets struct {
	Protein float64 `json:"rd_protein"`
	Carbo   float64 `json:"rd_carbo"`
	Fat     float64 `json:"rd_fat"`
}

func (t Targets) IsZero() bool {
	return t.Protein == 0 && t.Carbo == 0 && t.Fat == 0
}
