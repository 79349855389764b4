// internal/report/engine.go
package report

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"nutrilog/internal/apierr"
	"nutrilog/internal/models"
)

// Reader is the read side of the store the engine aggregates over.
type Reader interface {
	ListFoods(ctx context.Context, userID, date string) ([]models.FoodEntry, error)
	GetTotals(ctx context.Context, userID, date string) (*models.DailyTotals, error)
	ListFoodsBetween(ctx context.Context, userID, from, to string) ([]models.FoodEntry, error)
	ListTotalsBetween(ctx context.Context, userID, from, to string) ([]models.DailyTotals, error)
}

type Engine struct {
	store Reader
}

func NewEngine(store Reader) *Engine {
	return &Engine{store: store}
}

// Quarter maps "YYYY-MM" to that month's report.
type Quarter map[string]models.MonthReport

// Keys returns the month keys in chronological order.
func (q Quarter) Keys() []string {
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (e *Engine) Day(ctx context.Context, userID string, year, month, day int) (models.DaySummary, error) {
	if userID == "" {
		return models.DaySummary{}, apierr.Invalid("user id is required")
	}
	ym, err := NewYearMonth(year, month)
	if err != nil {
		return models.DaySummary{}, err
	}
	if day < 1 || day > ym.Days() {
		return models.DaySummary{}, apierr.Invalid("day out of range for %s: %d", ym.Key(), day)
	}

	date := ym.Date(day)
	foods, err := e.store.ListFoods(ctx, userID, date)
	if err != nil {
		return models.DaySummary{}, err
	}
	totals, err := e.store.GetTotals(ctx, userID, date)
	if err != nil {
		return models.DaySummary{}, err
	}
	return models.DaySummary{Foods: foods, Percentages: DailyPercentages(totals)}, nil
}

// MonthlyReport returns one slot per calendar day of the month. Days without
// foods get an empty list; days without totals get an empty map.
func (e *Engine) MonthlyReport(ctx context.Context, userID string, year, month int) (models.MonthReport, error) {
	if userID == "" {
		return models.MonthReport{}, apierr.Invalid("user id is required")
	}
	ym, err := NewYearMonth(year, month)
	if err != nil {
		return models.MonthReport{}, err
	}
	return e.month(ctx, userID, ym)
}

func (e *Engine) month(ctx context.Context, userID string, ym YearMonth) (models.MonthReport, error) {
	n := ym.Days()
	from, to := ym.Date(1), ym.Date(n)

	foods, err := e.store.ListFoodsBetween(ctx, userID, from, to)
	if err != nil {
		return models.MonthReport{}, err
	}
	totals, err := e.store.ListTotalsBetween(ctx, userID, from, to)
	if err != nil {
		return models.MonthReport{}, err
	}

	rep := models.MonthReport{
		Foods:       make([][]models.FoodEntry, n),
		Percentages: make([]models.Percentages, n),
	}
	for i := range rep.Foods {
		rep.Foods[i] = []models.FoodEntry{}
		rep.Percentages[i] = models.Percentages{}
	}
	for _, f := range foods {
		if d, ok := dayOf(f.Date); ok && d <= n {
			rep.Foods[d-1] = append(rep.Foods[d-1], f)
		}
	}
	for i := range totals {
		if d, ok := dayOf(totals[i].Date); ok && d <= n {
			rep.Percentages[d-1] = DailyPercentages(&totals[i])
		}
	}
	return rep, nil
}

// dayOf reads the day of month from an ISO date.
func dayOf(date string) (int, bool) {
	if len(date) != len("2006-01-02") {
		return 0, false
	}
	d, err := strconv.Atoi(date[8:])
	if err != nil || d < 1 {
		return 0, false
	}
	return d, true
}

// QuarterlyReport builds monthly reports for the month before startMonth,
// startMonth and the month after, fetched concurrently.
func (e *Engine) QuarterlyReport(ctx context.Context, userID string, year, startMonth int) (Quarter, error) {
	if userID == "" {
		return nil, apierr.Invalid("user id is required")
	}
	ym, err := NewYearMonth(year, startMonth)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	out := make(Quarter, 3)
	g, gctx := errgroup.WithContext(ctx)
	for _, m := range QuarterAround(ym) {
		g.Go(func() error {
			rep, err := e.month(gctx, userID, m)
			if err != nil {
				return err
			}
			mu.Lock()
			out[m.Key()] = rep
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// MonthlyAverage averages the month's daily percentages over days with data.
func (e *Engine) MonthlyAverage(ctx context.Context, userID string, year, month int) (models.Averages, error) {
	rep, err := e.MonthlyReport(ctx, userID, year, month)
	if err != nil {
		return models.Averages{}, err
	}
	return PeriodAverage(rep.Percentages)
}
