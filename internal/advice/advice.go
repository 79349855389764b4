// internal/advice/advice.go
package advice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nutrilog/internal/apierr"
	"nutrilog/internal/llm"
	"nutrilog/internal/models"
)

type Generator struct {
	model    llm.Completer
	language string
}

func NewGenerator(model llm.Completer, language string) *Generator {
	if language == "" {
		language = "Korean"
	}
	return &Generator{model: model, language: language}
}

const systemPrompt = "You are a nutrition expert who gives short, practical dietary advice."

// Prompt renders the fixed instruction for a period's averages.
func (g *Generator) Prompt(avg models.Averages) string {
	return fmt.Sprintf(`Over the past period this person consumed, on average per day:
- carbohydrate: %.1f%% of the recommended daily intake
- protein: %.1f%% of the recommended daily intake
- fat: %.1f%% of the recommended daily intake

Assess this intake and give dietary advice in exactly five sentences. Answer in %s.`,
		avg.Carbo, avg.Protein, avg.Fat, g.language)
}

// Advice returns the model's text for avg. Every failure is
// apierr.ErrAdviceUnavailable with the cause attached.
func (g *Generator) Advice(ctx context.Context, avg models.Averages) (string, error) {
	text, err := g.model.Complete(ctx, systemPrompt, g.Prompt(avg))
	if err != nil {
		return "", apierr.Wrap(apierr.ErrAdviceUnavailable, "advice", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", apierr.Wrap(apierr.ErrAdviceUnavailable, "advice", errors.New("empty reply"))
	}
	return text, nil
}
