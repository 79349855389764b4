// internal/storage/foods.go
package storage

import (
	"context"
	"database/sql"

	"nutrilog/internal/models"
)

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// AppendFood assigns the next index in the entry's (user, date) partition,
// inserts it and refreshes the day's totals. A concurrent writer that took the
// same index surfaces as apierr.ErrConflict; callers may retry.
func (s *Store) AppendFood(ctx context.Context, e *models.FoodEntry) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var next int
		err := tx.QueryRowContext(ctx, s.rebind(`
            SELECT COALESCE(MAX(FOOD_INDEX) + 1, 0)
            FROM FOOD
            WHERE USER_ID = ? AND DATE = ?
        `), e.UserID, e.Date).Scan(&next)
		if err != nil {
			return classify("next food index", err)
		}

		_, err = tx.ExecContext(ctx, s.rebind(`
            INSERT INTO FOOD (USER_ID, DATE, FOOD_INDEX, FOOD_NAME, CARBO, PROTEIN, FAT, CALORIE)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        `), e.UserID, e.Date, next, e.FoodName, e.Carbo, e.Protein, e.Fat, e.Calorie)
		if err != nil {
			return classify("insert food", err)
		}
		e.Index = next

		return s.refreshTotals(ctx, tx, e.UserID, e.Date)
	})
}

// ReplaceFood overwrites name and nutrients at (user, date, index). It
// reports whether a row matched.
func (s *Store) ReplaceFood(ctx context.Context, e *models.FoodEntry) (bool, error) {
	var found bool
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, s.rebind(`
            UPDATE FOOD
            SET FOOD_NAME = ?, CARBO = ?, PROTEIN = ?, FAT = ?, CALORIE = ?
            WHERE USER_ID = ? AND DATE = ? AND FOOD_INDEX = ?
        `), e.FoodName, e.Carbo, e.Protein, e.Fat, e.Calorie, e.UserID, e.Date, e.Index)
		if err != nil {
			return classify("update food", err)
		}
		if found, err = affected(res); err != nil || !found {
			return classify("update food", err)
		}
		return s.refreshTotals(ctx, tx, e.UserID, e.Date)
	})
	return found, err
}

// RemoveFood deletes the row at (user, date, index) and reports whether one
// was removed.
func (s *Store) RemoveFood(ctx context.Context, userID, date string, index int) (bool, error) {
	var found bool
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, s.rebind(`
            DELETE FROM FOOD
            WHERE USER_ID = ? AND DATE = ? AND FOOD_INDEX = ?
        `), userID, date, index)
		if err != nil {
			return classify("delete food", err)
		}
		if found, err = affected(res); err != nil || !found {
			return classify("delete food", err)
		}
		return s.refreshTotals(ctx, tx, userID, date)
	})
	return found, err
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListFoods returns one day's entries ordered by index.
func (s *Store) ListFoods(ctx context.Context, userID, date string) ([]models.FoodEntry, error) {
	return s.listFoods(ctx, s.db, `
        SELECT USER_ID, DATE, FOOD_INDEX, FOOD_NAME, CARBO, PROTEIN, FAT, CALORIE
        FROM FOOD
        WHERE USER_ID = ? AND DATE = ?
        ORDER BY FOOD_INDEX
    `, userID, date)
}

// ListFoodsBetween returns entries with from <= date <= to, ordered by date
// then index. Dates are ISO strings so lexical order is calendar order.
func (s *Store) ListFoodsBetween(ctx context.Context, userID, from, to string) ([]models.FoodEntry, error) {
	return s.listFoods(ctx, s.db, `
        SELECT USER_ID, DATE, FOOD_INDEX, FOOD_NAME, CARBO, PROTEIN, FAT, CALORIE
        FROM FOOD
        WHERE USER_ID = ? AND DATE >= ? AND DATE <= ?
        ORDER BY DATE, FOOD_INDEX
    `, userID, from, to)
}

func (s *Store) listFoods(ctx context.Context, q queryer, query string, args ...any) ([]models.FoodEntry, error) {
	rows, err := q.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, classify("query foods", err)
	}
	defer rows.Close()

	foods := []models.FoodEntry{}
	for rows.Next() {
		var f models.FoodEntry
		if err := rows.Scan(&f.UserID, &f.Date, &f.Index, &f.FoodName,
			&f.Carbo, &f.Protein, &f.Fat, &f.Calorie); err != nil {
			return nil, classify("scan food", err)
		}
		foods = append(foods, f)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("query foods", err)
	}
	return foods, nil
}
