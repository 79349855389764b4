// internal/nutrition/lookup.go
package nutrition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"nutrilog/internal/apierr"
	"nutrilog/internal/llm"
	"nutrilog/internal/models"
)

// Looker estimates nutrition facts for a food name.
type Looker interface {
	Lookup(ctx context.Context, foodName string) (models.NutritionRecord, error)
}

type Service struct {
	model llm.Completer
}

func NewService(model llm.Completer) *Service {
	return &Service{model: model}
}

const systemPrompt = `You are a nutrition database. For the food the user names, estimate the
nutrition facts of one typical serving.

IMPORTANT: Always respond with valid JSON in this exact format and nothing else:
{
  "food_name": "name of the food as given",
  "carbohydrate": [grams, number],
  "protein": [grams, number],
  "fat": [grams, number],
  "calorie": [kcal, number]
}`

func (s *Service) Lookup(ctx context.Context, foodName string) (models.NutritionRecord, error) {
	foodName = strings.TrimSpace(foodName)
	if foodName == "" {
		return models.NutritionRecord{}, apierr.Invalid("food name is required")
	}

	userPrompt := fmt.Sprintf(`Give the nutrition facts for: "%s"`, foodName)
	reply, err := s.model.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		if errors.Is(err, apierr.ErrModelResponseInvalid) {
			return models.NutritionRecord{}, err
		}
		return models.NutritionRecord{}, apierr.Wrap(apierr.ErrModelUnavailable, "nutrition lookup", err)
	}

	return ParseRecord(reply)
}

// wireRecord uses pointers so a missing key is distinguishable from zero.
type wireRecord struct {
	FoodName     *string  `json:"food_name"`
	Carbohydrate *float64 `json:"carbohydrate"`
	Protein      *float64 `json:"protein"`
	Fat          *float64 `json:"fat"`
	Calorie      *float64 `json:"calorie"`
}

// ParseRecord extracts the first {...} span of a model reply and decodes it.
// All five fields must be present; numbers must be finite and non-negative.
func ParseRecord(reply string) (models.NutritionRecord, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start == -1 || end <= start {
		return models.NutritionRecord{}, invalid("no JSON object in reply")
	}

	var w wireRecord
	if err := json.Unmarshal([]byte(reply[start:end+1]), &w); err != nil {
		return models.NutritionRecord{}, invalid("decode reply: %v", err)
	}

	var missing []string
	if w.FoodName == nil || strings.TrimSpace(*w.FoodName) == "" {
		missing = append(missing, "food_name")
	}
	for _, f := range []struct {
		name string
		v    *float64
	}{
		{"carbohydrate", w.Carbohydrate},
		{"protein", w.Protein},
		{"fat", w.Fat},
		{"calorie", w.Calorie},
	} {
		if f.v == nil {
			missing = append(missing, f.name)
			continue
		}
		if math.IsNaN(*f.v) || math.IsInf(*f.v, 0) || *f.v < 0 {
			return models.NutritionRecord{}, invalid("%s out of range: %v", f.name, *f.v)
		}
	}
	if len(missing) > 0 {
		return models.NutritionRecord{}, invalid("missing fields: %s", strings.Join(missing, ", "))
	}

	return models.NutritionRecord{
		FoodName:     strings.TrimSpace(*w.FoodName),
		Carbohydrate: *w.Carbohydrate,
		Protein:      *w.Protein,
		Fat:          *w.Fat,
		Calorie:      *w.Calorie,
	}, nil
}

func invalid(format string, args ...any) error {
	return apierr.Wrap(apierr.ErrModelResponseInvalid, "parse nutrition", fmt.Errorf(format, args...))
}
