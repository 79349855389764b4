// internal/report/aggregate.go
package report

import (
	"fmt"
	"math"
	"time"

	"nutrilog/internal/apierr"
	"nutrilog/internal/models"
)

// DailyPercentages converts one day's totals into the share of each RDI
// target consumed, rounded to one decimal. A zero target yields 0. Nil totals
// yield an empty map.
func DailyPercentages(t *models.DailyTotals) models.Percentages {
	if t == nil {
		return models.Percentages{}
	}
	return models.Percentages{
		models.KeyCarbo:   percent(t.Carbo, t.Targets.Carbo),
		models.KeyProtein: percent(t.Protein, t.Targets.Protein),
		models.KeyFat:     percent(t.Fat, t.Targets.Fat),
	}
}

func percent(total, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return round1(total / target * 100)
}

// round1 rounds half away from zero to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// PeriodAverage averages each macro over the days that have data; empty maps
// are skipped rather than counted as zero.
func PeriodAverage(days []models.Percentages) (models.Averages, error) {
	var sum models.Averages
	n := 0
	for _, p := range days {
		if len(p) == 0 {
			continue
		}
		sum.Carbo += p[models.KeyCarbo]
		sum.Protein += p[models.KeyProtein]
		sum.Fat += p[models.KeyFat]
		n++
	}
	if n == 0 {
		return models.Averages{}, apierr.Wrap(apierr.ErrNoDataAvailable, "period average", nil)
	}
	return models.Averages{
		Carbo:   round1(sum.Carbo / float64(n)),
		Protein: round1(sum.Protein / float64(n)),
		Fat:     round1(sum.Fat / float64(n)),
	}, nil
}

// YearMonth is a calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

func NewYearMonth(year, month int) (YearMonth, error) {
	if year < 1 || year > 9999 {
		return YearMonth{}, apierr.Invalid("year out of range: %d", year)
	}
	if month < 1 || month > 12 {
		return YearMonth{}, apierr.Invalid("month out of range: %d", month)
	}
	return YearMonth{Year: year, Month: time.Month(month)}, nil
}

// Key formats the month as "YYYY-MM".
func (ym YearMonth) Key() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Days is the number of calendar days in the month.
func (ym YearMonth) Days() int {
	return time.Date(ym.Year, ym.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Date formats day d of the month as "YYYY-MM-DD".
func (ym YearMonth) Date(d int) string {
	return fmt.Sprintf("%s-%02d", ym.Key(), d)
}

// Add shifts by n months, rolling the year as needed.
func (ym YearMonth) Add(n int) YearMonth {
	t := time.Date(ym.Year, ym.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// QuarterAround returns the month before, the month itself and the month
// after, in chronological order.
func QuarterAround(ym YearMonth) []YearMonth {
	return []YearMonth{ym.Add(-1), ym, ym.Add(1)}
}
