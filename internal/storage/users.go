// internal/storage/users.go
package storage

import (
	"context"

	"nutrilog/internal/apierr"
	"nutrilog/internal/models"
)

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	query := `
        INSERT INTO "USER" (ID, PASSWORD, BODY_WEIGHT, HEIGHT, AGE, GENDER, ACTIVITY, RD_PROTEIN, RD_CARBO, RD_FAT)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := s.db.ExecContext(ctx, s.rebind(query),
		u.ID, u.PasswordHash, u.BodyWeight, u.Height, u.Age, string(u.Gender), u.Activity,
		u.Targets.Protein, u.Targets.Carbo, u.Targets.Fat)
	return classify("create user", err)
}

// UpdateUser overwrites the mutable profile fields. Gender is fixed at
// registration.
func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	query := `
        UPDATE "USER"
        SET PASSWORD = ?, BODY_WEIGHT = ?, HEIGHT = ?, AGE = ?, ACTIVITY = ?,
            RD_PROTEIN = ?, RD_CARBO = ?, RD_FAT = ?
        WHERE ID = ?
    `
	res, err := s.db.ExecContext(ctx, s.rebind(query),
		u.PasswordHash, u.BodyWeight, u.Height, u.Age, u.Activity,
		u.Targets.Protein, u.Targets.Carbo, u.Targets.Fat, u.ID)
	if err != nil {
		return classify("update user", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify("update user", err)
	}
	if n == 0 {
		return apierr.Wrap(apierr.ErrNotFound, "update user", nil)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	query := `
        SELECT ID, PASSWORD, BODY_WEIGHT, HEIGHT, AGE, GENDER, ACTIVITY, RD_PROTEIN, RD_CARBO, RD_FAT
        FROM "USER"
        WHERE ID = ?
    `
	u := &models.User{}
	var gender string
	err := s.db.QueryRowContext(ctx, s.rebind(query), id).Scan(
		&u.ID, &u.PasswordHash, &u.BodyWeight, &u.Height, &u.Age, &gender, &u.Activity,
		&u.Targets.Protein, &u.Targets.Carbo, &u.Targets.Fat)
	if err != nil {
		return nil, classify("get user", err)
	}
	u.Gender = models.Gender(gender)
	return u, nil
}
