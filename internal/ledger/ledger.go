// internal/ledger/ledger.go
package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"nutrilog/internal/apierr"
	"nutrilog/internal/logger"
	"nutrilog/internal/models"
	"nutrilog/internal/nutrition"
)

const (
	DateLayout = "2006-01-02"

	// maxAppendAttempts bounds retries when a concurrent writer claims the
	// same index first.
	maxAppendAttempts = 5
)

type Store interface {
	AppendFood(ctx context.Context, e *models.FoodEntry) error
	ReplaceFood(ctx context.Context, e *models.FoodEntry) (bool, error)
	RemoveFood(ctx context.Context, userID, date string, index int) (bool, error)
	ListFoods(ctx context.Context, userID, date string) ([]models.FoodEntry, error)
}

type Ledger struct {
	store  Store
	lookup nutrition.Looker
	log    *logger.Logger
}

func New(store Store, lookup nutrition.Looker, log *logger.Logger) *Ledger {
	return &Ledger{store: store, lookup: lookup, log: log.With("component", "ledger")}
}

// AddFood estimates nutrients for foodName and appends it to the (user, date)
// partition at max(index)+1, or 0 for an empty partition.
func (l *Ledger) AddFood(ctx context.Context, userID, date, foodName string) (*models.FoodEntry, error) {
	if err := validateKey(userID, date); err != nil {
		return nil, err
	}
	if strings.TrimSpace(foodName) == "" {
		return nil, apierr.Invalid("food name is required")
	}

	rec, err := l.lookup.Lookup(ctx, foodName)
	if err != nil {
		return nil, err
	}

	entry := &models.FoodEntry{UserID: userID, Date: date}
	rec.Apply(entry)

	for attempt := 1; ; attempt++ {
		err = l.store.AppendFood(ctx, entry)
		if err == nil {
			return entry, nil
		}
		if !errors.Is(err, apierr.ErrConflict) || attempt == maxAppendAttempts {
			return nil, err
		}
		l.log.Warn("food index taken, retrying", "user_id", userID, "date", date, "attempt", attempt)
	}
}

// UpdateFood re-estimates nutrients for newName and overwrites the entry at
// (user, date, index). A missing entry is apierr.ErrNotFound.
func (l *Ledger) UpdateFood(ctx context.Context, userID, date string, index int, newName string) (*models.FoodEntry, error) {
	if err := validateKey(userID, date); err != nil {
		return nil, err
	}
	if index < 0 {
		return nil, apierr.Invalid("food index must be non-negative")
	}
	if strings.TrimSpace(newName) == "" {
		return nil, apierr.Invalid("new food name is required")
	}

	rec, err := l.lookup.Lookup(ctx, newName)
	if err != nil {
		return nil, err
	}

	entry := &models.FoodEntry{UserID: userID, Date: date, Index: index}
	rec.Apply(entry)

	found, err := l.store.ReplaceFood(ctx, entry)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apierr.Wrap(apierr.ErrNotFound, "update food", nil)
	}
	return entry, nil
}

// DeleteFood removes the entry at (user, date, index) and reports whether
// there was one.
func (l *Ledger) DeleteFood(ctx context.Context, userID, date string, index int) (bool, error) {
	if err := validateKey(userID, date); err != nil {
		return false, err
	}
	if index < 0 {
		return false, apierr.Invalid("food index must be non-negative")
	}
	return l.store.RemoveFood(ctx, userID, date, index)
}

func (l *Ledger) ListDay(ctx context.Context, userID, date string) ([]models.FoodEntry, error) {
	if err := validateKey(userID, date); err != nil {
		return nil, err
	}
	return l.store.ListFoods(ctx, userID, date)
}

func validateKey(userID, date string) error {
	if strings.TrimSpace(userID) == "" {
		return apierr.Invalid("user id is required")
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return apierr.Invalid("date must be YYYY-MM-DD: %q", date)
	}
	return nil
}
