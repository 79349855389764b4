// internal/storage/totals.go
package storage

import (
	"context"
	"database/sql"
	"errors"

	"nutrilog/internal/models"
)

const upsertTotals = `
        INSERT INTO USER_NT (USER_ID, DATE, CARBO, PROTEIN, FAT, RD_CARBO, RD_PROTEIN, RD_FAT)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (USER_ID, DATE) DO UPDATE SET
            CARBO = excluded.CARBO,
            PROTEIN = excluded.PROTEIN,
            FAT = excluded.FAT,
            RD_CARBO = excluded.RD_CARBO,
            RD_PROTEIN = excluded.RD_PROTEIN,
            RD_FAT = excluded.RD_FAT
`

// refreshTotals rebuilds the USER_NT row for (user, date) from the FOOD rows
// visible to q, copying the user's current RDI targets. An empty partition
// drops the row so that "no totals" keeps meaning "nothing logged".
func (s *Store) refreshTotals(ctx context.Context, q queryer, userID, date string) error {
	var count int
	var carbo, protein, fat float64
	err := q.QueryRowContext(ctx, s.rebind(`
        SELECT COUNT(*), COALESCE(SUM(CARBO), 0), COALESCE(SUM(PROTEIN), 0), COALESCE(SUM(FAT), 0)
        FROM FOOD
        WHERE USER_ID = ? AND DATE = ?
    `), userID, date).Scan(&count, &carbo, &protein, &fat)
	if err != nil {
		return classify("sum foods", err)
	}

	if count == 0 {
		_, err = q.ExecContext(ctx, s.rebind(`DELETE FROM USER_NT WHERE USER_ID = ? AND DATE = ?`), userID, date)
		return classify("clear totals", err)
	}

	var t models.Targets
	err = q.QueryRowContext(ctx, s.rebind(`
        SELECT RD_PROTEIN, RD_CARBO, RD_FAT FROM "USER" WHERE ID = ?
    `), userID).Scan(&t.Protein, &t.Carbo, &t.Fat)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return classify("load targets", err)
	}

	_, err = q.ExecContext(ctx, s.rebind(upsertTotals), userID, date, carbo, protein, fat, t.Carbo, t.Protein, t.Fat)
	return classify("upsert totals", err)
}

// GetTotals returns the totals row for one day, or nil when none exists.
func (s *Store) GetTotals(ctx context.Context, userID, date string) (*models.DailyTotals, error) {
	totals, err := s.listTotals(ctx, `
        SELECT USER_ID, DATE, CARBO, PROTEIN, FAT, RD_CARBO, RD_PROTEIN, RD_FAT
        FROM USER_NT
        WHERE USER_ID = ? AND DATE = ?
    `, userID, date)
	if err != nil || len(totals) == 0 {
		return nil, err
	}
	return &totals[0], nil
}

// ListTotalsBetween returns totals rows with from <= date <= to, ordered by date.
func (s *Store) ListTotalsBetween(ctx context.Context, userID, from, to string) ([]models.DailyTotals, error) {
	return s.listTotals(ctx, `
        SELECT USER_ID, DATE, CARBO, PROTEIN, FAT, RD_CARBO, RD_PROTEIN, RD_FAT
        FROM USER_NT
        WHERE USER_ID = ? AND DATE >= ? AND DATE <= ?
        ORDER BY DATE
    `, userID, from, to)
}

// PutTotals writes a totals row directly. Used to seed rows produced outside
// the ledger (imports, tests).
func (s *Store) PutTotals(ctx context.Context, t models.DailyTotals) error {
	_, err := s.db.ExecContext(ctx, s.rebind(upsertTotals), t.UserID, t.Date, t.Carbo, t.Protein, t.Fat, t.Targets.Carbo, t.Targets.Protein, t.Targets.Fat)
	return classify("put totals", err)
}

func (s *Store) listTotals(ctx context.Context, query string, args ...any) ([]models.DailyTotals, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, classify("query totals", err)
	}
	defer rows.Close()

	var out []models.DailyTotals
	for rows.Next() {
		var t models.DailyTotals
		if err := rows.Scan(&t.UserID, &t.Date, &t.Carbo, &t.Protein, &t.Fat,
			&t.Targets.Carbo, &t.Targets.Protein, &t.Targets.Fat); err != nil {
			return nil, classify("scan totals", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("query totals", err)
	}
	return out, nil
}
