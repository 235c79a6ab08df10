package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/retailpulse/internal/config"
	"github.com/andresuchdata/retailpulse/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

//go:embed schema.sql
var schema string

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"

	defaultMaxConcurrentTx = 10
)

type DB struct {
	*sqlx.DB
	sem *semaphore.Weighted
}

// NewDB opens a lib/pq connection pool.
func NewDB(cfg config.DatabaseConfig) (*DB, error) {
	db, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return Wrap(db, cfg.MaxConcurrentTx), nil
}

// Wrap adopts an existing pool, e.g. one opened with the pgx stdlib driver.
// maxConcurrentTx bounds the transactions WithTx runs at once.
func Wrap(db *sqlx.DB, maxConcurrentTx int64) *DB {
	if maxConcurrentTx <= 0 {
		maxConcurrentTx = defaultMaxConcurrentTx
	}
	return &DB{
		DB:  db,
		sem: semaphore.NewWeighted(maxConcurrentTx),
	}
}

// WithTx executes a function within a transaction
func (db *DB) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	if err := db.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("could not acquire semaphore: %w", err)
	}
	defer db.sem.Release(1)

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("could not rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}

// Migrate creates the tables and indexes if they do not exist.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Reset removes all rows and restarts the id sequences.
func (db *DB) Reset(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, "TRUNCATE inventory, sales, products RESTART IDENTITY CASCADE"); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}

func schemaStatements() []string {
	var out []string
	for _, stmt := range strings.Split(schema, ";") {
		if s := strings.TrimSpace(stmt); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// sqlState extracts the SQLSTATE code from lib/pq and pgx errors.
func sqlState(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// translateWriteError maps constraint violations to domain errors.
func translateWriteError(err error, entity string, productID int64) error {
	switch sqlState(err) {
	case uniqueViolation:
		return fmt.Errorf("%w: %s for product %d", domain.ErrAlreadyExists, entity, productID)
	case foreignKeyViolation:
		return &domain.NotFoundError{Entity: "product", ID: productID}
	}
	return fmt.Errorf("insert %s: %w", entity, err)
}
