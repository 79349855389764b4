// internal/storage/store.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"nutrilog/internal/apierr"
	"nutrilog/internal/config"
)

// Store is the relational store behind the ledger, accounts and reports.
// Queries are written with '?' placeholders and rebound per driver.
type Store struct {
	db     *sql.DB
	driver string
}

func Open(ctx context.Context, cfg config.DBConfig) (*Store, error) {
	var (
		db  *sql.DB
		err error
	)
	switch cfg.Driver {
	case config.DriverSQLite:
		db, err = sql.Open("sqlite", sqliteDSN(cfg.DSN))
		if err == nil {
			// one writer; busy_timeout covers the rest
			db.SetMaxOpenConns(1)
		}
	case config.DriverPostgres:
		db, err = sql.Open("pgx", cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, driver: cfg.Driver}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func sqliteDSN(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=busy_timeout(5000)"
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return apierr.Wrap(apierr.ErrStorageUnavailable, "ping", err)
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS "USER" (
        ID TEXT PRIMARY KEY,
        PASSWORD TEXT NOT NULL,
        BODY_WEIGHT DOUBLE PRECISION NOT NULL DEFAULT 0,
        HEIGHT DOUBLE PRECISION NOT NULL DEFAULT 0,
        AGE INTEGER NOT NULL DEFAULT 0,
        GENDER TEXT NOT NULL DEFAULT '',
        ACTIVITY INTEGER NOT NULL DEFAULT 0,
        RD_PROTEIN DOUBLE PRECISION NOT NULL DEFAULT 0,
        RD_CARBO DOUBLE PRECISION NOT NULL DEFAULT 0,
        RD_FAT DOUBLE PRECISION NOT NULL DEFAULT 0
    )`,
	`CREATE TABLE IF NOT EXISTS FOOD (
        USER_ID TEXT NOT NULL,
        DATE TEXT NOT NULL,
        FOOD_INDEX INTEGER NOT NULL,
        FOOD_NAME TEXT NOT NULL,
        CARBO DOUBLE PRECISION NOT NULL,
        PROTEIN DOUBLE PRECISION NOT NULL,
        FAT DOUBLE PRECISION NOT NULL,
        CALORIE DOUBLE PRECISION NOT NULL,
        UNIQUE (USER_ID, DATE, FOOD_INDEX)
    )`,
	`CREATE TABLE IF NOT EXISTS USER_NT (
        USER_ID TEXT NOT NULL,
        DATE TEXT NOT NULL,
        CARBO DOUBLE PRECISION NOT NULL,
        PROTEIN DOUBLE PRECISION NOT NULL,
        FAT DOUBLE PRECISION NOT NULL,
        RD_CARBO DOUBLE PRECISION NOT NULL,
        RD_PROTEIN DOUBLE PRECISION NOT NULL,
        RD_FAT DOUBLE PRECISION NOT NULL,
        PRIMARY KEY (USER_ID, DATE)
    )`,
}

func (s *Store) initSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// rebind rewrites '?' placeholders to $n for Postgres.
func (s *Store) rebind(query string) string {
	if s.driver != config.DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// inTx runs fn inside a transaction; the connection is released on every path.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// classify maps driver errors onto apierr kinds.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return apierr.Wrap(apierr.ErrNotFound, op, err)
	case isUniqueViolation(err):
		return apierr.Wrap(apierr.ErrConflict, op, err)
	default:
		return apierr.Wrap(apierr.ErrStorageUnavailable, op, err)
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
