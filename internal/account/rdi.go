// internal/account/rdi.go
package account

import (
	"math"

	"nutrilog/internal/models"
)

var activityFactors = [...]float64{1.2, 1.375, 1.55, 1.725, 1.9}

// Energy split of the derived targets and kcal per gram of each macro.
const (
	carboShare   = 0.50
	proteinShare = 0.20
	fatShare     = 0.30

	kcalPerGramCarbo   = 4
	kcalPerGramProtein = 4
	kcalPerGramFat     = 9
)

// DeriveTargets estimates daily macro targets in grams from a body profile
// using the Mifflin-St Jeor resting energy times an activity factor.
func DeriveTargets(weightKg, heightCm float64, age int, gender models.Gender, activity int) models.Targets {
	bmr := 10*weightKg + 6.25*heightCm - 5*float64(age)
	switch gender {
	case models.Male:
		bmr += 5
	case models.Female:
		bmr -= 161
	default:
		bmr -= 78
	}
	if bmr <= 0 {
		return models.Targets{}
	}

	level := min(max(activity, 1), len(activityFactors))
	kcal := bmr * activityFactors[level-1]

	return models.Targets{
		Carbo:   round1(kcal * carboShare / kcalPerGramCarbo),
		Protein: round1(kcal * proteinShare / kcalPerGramProtein),
		Fat:     round1(kcal * fatShare / kcalPerGramFat),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
