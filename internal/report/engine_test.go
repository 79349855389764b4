package report

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"nutrilog/internal/apierr"
	"nutrilog/internal/models"
)

// memReader serves foods and totals from memory with the same range
// semantics as the SQL store.
type memReader struct {
	foods  []models.FoodEntry
	totals []models.DailyTotals
	err    error
}

func (m *memReader) ListFoods(_ context.Context, userID, date string) ([]models.FoodEntry, error) {
	return m.ListFoodsBetween(context.Background(), userID, date, date)
}

func (m *memReader) GetTotals(_ context.Context, userID, date string) (*models.DailyTotals, error) {
	rows, err := m.ListTotalsBetween(context.Background(), userID, date, date)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

func (m *memReader) ListFoodsBetween(_ context.Context, userID, from, to string) ([]models.FoodEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []models.FoodEntry{}
	for _, f := range m.foods {
		if f.UserID == userID && f.Date >= from && f.Date <= to {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *memReader) ListTotalsBetween(_ context.Context, userID, from, to string) ([]models.DailyTotals, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.DailyTotals
	for _, t := range m.totals {
		if t.UserID == userID && t.Date >= from && t.Date <= to {
			out = append(out, t)
		}
	}
	return out, nil
}

var targets = models.Targets{Carbo: 200, Protein: 50, Fat: 40}

func TestMonthlyReportSlots(t *testing.T) {
	e := NewEngine(&memReader{})
	ctx := context.Background()

	for _, c := range []struct{ year, month, want int }{{2024, 2, 29}, {2023, 2, 28}, {2024, 1, 31}} {
		rep, err := e.MonthlyReport(ctx, "u1", c.year, c.month)
		if err != nil {
			t.Fatalf("MonthlyReport: %v", err)
		}
		if len(rep.Foods) != c.want || len(rep.Percentages) != c.want {
			t.Errorf("%d-%02d slots = %d/%d, want %d", c.year, c.month, len(rep.Foods), len(rep.Percentages), c.want)
		}
		for i := range rep.Foods {
			if rep.Foods[i] == nil || rep.Percentages[i] == nil {
				t.Fatalf("slot %d not initialised", i)
			}
		}
	}
}

func TestMonthlyReportBucketsByDay(t *testing.T) {
	r := &memReader{
		foods: []models.FoodEntry{
			{UserID: "u1", Date: "2024-02-01", Index: 0, FoodName: "rice"},
			{UserID: "u1", Date: "2024-02-01", Index: 1, FoodName: "egg"},
			{UserID: "u1", Date: "2024-02-29", Index: 0, FoodName: "soup"},
			{UserID: "u2", Date: "2024-02-02", Index: 0, FoodName: "other user"},
			{UserID: "u1", Date: "2024-03-01", Index: 0, FoodName: "next month"},
		},
		totals: []models.DailyTotals{
			{UserID: "u1", Date: "2024-02-01", Carbo: 100, Protein: 25, Fat: 20, Targets: targets},
			{UserID: "u1", Date: "2024-02-29", Carbo: 0, Protein: 0, Fat: 0, Targets: targets},
		},
	}
	rep, err := NewEngine(r).MonthlyReport(context.Background(), "u1", 2024, 2)
	if err != nil {
		t.Fatalf("MonthlyReport: %v", err)
	}

	if len(rep.Foods[0]) != 2 || rep.Foods[0][1].FoodName != "egg" {
		t.Errorf("day 1 foods = %+v", rep.Foods[0])
	}
	if len(rep.Foods[1]) != 0 {
		t.Errorf("day 2 should be empty, got %+v", rep.Foods[1])
	}
	if len(rep.Foods[28]) != 1 {
		t.Errorf("day 29 foods = %+v", rep.Foods[28])
	}

	want := models.Percentages{models.KeyCarbo: 50, models.KeyProtein: 50, models.KeyFat: 50}
	if !reflect.DeepEqual(rep.Percentages[0], want) {
		t.Errorf("day 1 percentages = %v", rep.Percentages[0])
	}
	if len(rep.Percentages[28]) != 3 || rep.Percentages[28][models.KeyCarbo] != 0 {
		t.Errorf("day 29 with zero totals should report 0%%, got %v", rep.Percentages[28])
	}
	if len(rep.Percentages[1]) != 0 {
		t.Errorf("day 2 without totals should be empty, got %v", rep.Percentages[1])
	}
}

func TestQuarterlyReportKeys(t *testing.T) {
	r := &memReader{
		foods: []models.FoodEntry{{UserID: "u1", Date: "2023-12-31", FoodName: "cake"}},
	}
	q, err := NewEngine(r).QuarterlyReport(context.Background(), "u1", 2024, 1)
	if err != nil {
		t.Fatalf("QuarterlyReport: %v", err)
	}
	if got, want := q.Keys(), []string{"2023-12", "2024-01", "2024-02"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	if len(q["2023-12"].Foods) != 31 || len(q["2023-12"].Foods[30]) != 1 {
		t.Errorf("december report = %+v", q["2023-12"].Foods[30])
	}
	if len(q["2024-02"].Foods) != 29 {
		t.Errorf("february slots = %d", len(q["2024-02"].Foods))
	}
}

func TestQuarterlyReportPropagatesErrors(t *testing.T) {
	boom := apierr.Wrap(apierr.ErrStorageUnavailable, "query", errors.New("boom"))
	_, err := NewEngine(&memReader{err: boom}).QuarterlyReport(context.Background(), "u1", 2024, 12)
	if !errors.Is(err, apierr.ErrStorageUnavailable) {
		t.Fatalf("err = %v", err)
	}
}

func TestDay(t *testing.T) {
	r := &memReader{
		foods:  []models.FoodEntry{{UserID: "u1", Date: "2024-05-10", FoodName: "rice"}},
		totals: []models.DailyTotals{{UserID: "u1", Date: "2024-05-10", Carbo: 50, Protein: 10, Fat: 4, Targets: targets}},
	}
	e := NewEngine(r)

	day, err := e.Day(context.Background(), "u1", 2024, 5, 10)
	if err != nil {
		t.Fatalf("Day: %v", err)
	}
	if len(day.Foods) != 1 || day.Percentages[models.KeyCarbo] != 25 || day.Percentages[models.KeyFat] != 10 {
		t.Errorf("day = %+v", day)
	}

	empty, err := e.Day(context.Background(), "u1", 2024, 5, 11)
	if err != nil {
		t.Fatalf("Day: %v", err)
	}
	if len(empty.Foods) != 0 || len(empty.Percentages) != 0 {
		t.Errorf("empty day = %+v", empty)
	}

	if _, err := e.Day(context.Background(), "u1", 2023, 2, 29); !errors.Is(err, apierr.ErrInvalidInput) {
		t.Errorf("2023-02-29 err = %v", err)
	}
}

func TestMonthlyAverage(t *testing.T) {
	r := &memReader{totals: []models.DailyTotals{
		{UserID: "u1", Date: "2024-05-01", Carbo: 100, Protein: 50, Fat: 40, Targets: targets},
		{UserID: "u1", Date: "2024-05-20", Carbo: 200, Protein: 25, Fat: 0, Targets: targets},
	}}
	e := NewEngine(r)

	avg, err := e.MonthlyAverage(context.Background(), "u1", 2024, 5)
	if err != nil {
		t.Fatalf("MonthlyAverage: %v", err)
	}
	if want := (models.Averages{Carbo: 75, Protein: 75, Fat: 50}); avg != want {
		t.Fatalf("avg = %+v, want %+v", avg, want)
	}

	if _, err := e.MonthlyAverage(context.Background(), "u1", 2024, 6); !errors.Is(err, apierr.ErrNoDataAvailable) {
		t.Fatalf("empty month err = %v", err)
	}
}
