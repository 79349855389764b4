package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"nutrilog/internal/apierr"
	"nutrilog/internal/config"
	"nutrilog/internal/logger"
	"nutrilog/internal/models"
	"nutrilog/internal/storage"
)

type fakeLooker struct {
	records map[string]models.NutritionRecord
	calls   int
}

func (f *fakeLooker) Lookup(_ context.Context, name string) (models.NutritionRecord, error) {
	f.calls++
	rec, ok := f.records[name]
	if !ok {
		return models.NutritionRecord{}, apierr.Wrap(apierr.ErrModelResponseInvalid, "fake", nil)
	}
	return rec, nil
}

func newLooker() *fakeLooker {
	return &fakeLooker{records: map[string]models.NutritionRecord{
		"rice":  {FoodName: "rice", Carbohydrate: 65, Protein: 5, Fat: 1, Calorie: 300},
		"egg":   {FoodName: "egg", Carbohydrate: 1, Protein: 6, Fat: 5, Calorie: 70},
		"salad": {FoodName: "salad", Carbohydrate: 8, Protein: 2, Fat: 3, Calorie: 60},
	}}
}

func setupLedger(t *testing.T) (*Ledger, *storage.Store, *fakeLooker) {
	t.Helper()
	store, err := storage.Open(context.Background(), config.DBConfig{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "ledger.db"),
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	looker := newLooker()
	return New(store, looker, logger.Nop()), store, looker
}

func TestAddFoodSequentialIndices(t *testing.T) {
	l, _, _ := setupLedger(t)
	ctx := context.Background()

	for i, name := range []string{"rice", "egg", "salad", "egg"} {
		e, err := l.AddFood(ctx, "u1", "2024-05-10", name)
		if err != nil {
			t.Fatalf("AddFood(%s): %v", name, err)
		}
		if e.Index != i {
			t.Fatalf("AddFood(%s) index = %d, want %d", name, e.Index, i)
		}
	}
}

func TestAddFoodValidatesBeforeLookup(t *testing.T) {
	l, _, looker := setupLedger(t)
	ctx := context.Background()

	cases := []struct{ user, date, food string }{
		{"", "2024-05-10", "rice"},
		{"u1", "2024/05/10", "rice"},
		{"u1", "2024-02-30", "rice"},
		{"u1", "2024-05-10", " "},
	}
	for _, c := range cases {
		if _, err := l.AddFood(ctx, c.user, c.date, c.food); !errors.Is(err, apierr.ErrInvalidInput) {
			t.Errorf("AddFood(%q,%q,%q) err = %v", c.user, c.date, c.food, err)
		}
	}
	if looker.calls != 0 {
		t.Fatalf("lookup called %d times for invalid input", looker.calls)
	}
}

func TestAddFoodLookupFailureInsertsNothing(t *testing.T) {
	l, store, _ := setupLedger(t)
	ctx := context.Background()

	if _, err := l.AddFood(ctx, "u1", "2024-05-10", "mystery"); !errors.Is(err, apierr.ErrModelResponseInvalid) {
		t.Fatalf("err = %v", err)
	}
	foods, err := store.ListFoods(ctx, "u1", "2024-05-10")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(foods) != 0 {
		t.Fatalf("foods = %+v", foods)
	}
}

func TestUpdateFoodRoundTrip(t *testing.T) {
	l, _, _ := setupLedger(t)
	ctx := context.Background()

	if _, err := l.AddFood(ctx, "u1", "2024-05-10", "rice"); err != nil {
		t.Fatal(err)
	}
	if _, err := l.AddFood(ctx, "u1", "2024-05-10", "egg"); err != nil {
		t.Fatal(err)
	}

	updated, err := l.UpdateFood(ctx, "u1", "2024-05-10", 0, "salad")
	if err != nil {
		t.Fatalf("UpdateFood: %v", err)
	}
	if updated.Index != 0 || updated.Date != "2024-05-10" || updated.FoodName != "salad" {
		t.Errorf("updated = %+v", updated)
	}

	foods, err := l.ListDay(ctx, "u1", "2024-05-10")
	if err != nil {
		t.Fatal(err)
	}
	want := models.FoodEntry{UserID: "u1", Date: "2024-05-10", Index: 0, FoodName: "salad", Carbo: 8, Protein: 2, Fat: 3, Calorie: 60}
	if len(foods) != 2 || foods[0] != want {
		t.Fatalf("foods = %+v", foods)
	}
	if foods[1].FoodName != "egg" {
		t.Errorf("untouched entry changed: %+v", foods[1])
	}
}

func TestUpdateFoodMissingRow(t *testing.T) {
	l, _, _ := setupLedger(t)
	_, err := l.UpdateFood(context.Background(), "u1", "2024-05-10", 3, "rice")
	if !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteFood(t *testing.T) {
	l, _, _ := setupLedger(t)
	ctx := context.Background()

	if _, err := l.AddFood(ctx, "u1", "2024-05-10", "rice"); err != nil {
		t.Fatal(err)
	}
	removed, err := l.DeleteFood(ctx, "u1", "2024-05-10", 0)
	if err != nil || !removed {
		t.Fatalf("delete existing removed=%v err=%v", removed, err)
	}
	removed, err = l.DeleteFood(ctx, "u1", "2024-05-10", 0)
	if err != nil || removed {
		t.Fatalf("delete missing removed=%v err=%v", removed, err)
	}
}

// conflictStore fails AppendFood with a conflict a fixed number of times.
type conflictStore struct {
	Store
	conflicts int
	attempts  int
}

func (s *conflictStore) AppendFood(_ context.Context, e *models.FoodEntry) error {
	s.attempts++
	if s.attempts <= s.conflicts {
		return apierr.Wrap(apierr.ErrConflict, "insert food", nil)
	}
	e.Index = s.attempts - 1
	return nil
}

func TestAddFoodRetriesOnConflict(t *testing.T) {
	looker := newLooker()
	store := &conflictStore{conflicts: 2}
	l := New(store, looker, logger.Nop())

	e, err := l.AddFood(context.Background(), "u1", "2024-05-10", "rice")
	if err != nil {
		t.Fatalf("AddFood: %v", err)
	}
	if store.attempts != 3 || e.Index != 2 {
		t.Fatalf("attempts = %d, index = %d", store.attempts, e.Index)
	}
	if looker.calls != 1 {
		t.Fatalf("lookup repeated on retry: %d calls", looker.calls)
	}
}

func TestAddFoodGivesUpAfterMaxAttempts(t *testing.T) {
	store := &conflictStore{conflicts: 100}
	l := New(store, newLooker(), logger.Nop())

	_, err := l.AddFood(context.Background(), "u1", "2024-05-10", "rice")
	if !errors.Is(err, apierr.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if store.attempts != maxAppendAttempts {
		t.Fatalf("attempts = %d", store.attempts)
	}
}
