// Package postgres implements the checkpoint stores on PostgreSQL for
// deployments that want a database ledger instead of CSV files. Tables are
// append-only; a unique key per run gives the at-most-once append guarantee
// even when a crashed run is resumed against the same database.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool wraps pgxpool.Pool for dependency injection.
type Pool struct {
	*pgxpool.Pool
}

// NewPool creates a new Postgres connection pool and verifies connectivity.
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// Close closes the connection pool.
func (p *Pool) Close() {
	p.Pool.Close()
}

const pgErrUniqueViolation = "23505" // unique_violation

func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgErrUniqueViolation
	}
	return false
}

// EnsureSchema creates the checkpoint tables when they do not exist yet.
func EnsureSchema(ctx context.Context, pool *Pool) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS validation_ledger (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			run_id TEXT NOT NULL,
			product_title TEXT NOT NULL,
			product_price DOUBLE PRECISION,
			store_name TEXT,
			store_url TEXT,
			store_age_years DOUBLE PRECISION,
			store_open_date DATE,
			feedback_percentage DOUBLE PRECISION,
			shipping_method TEXT,
			shipping_days INT NOT NULL,
			product_url TEXT NOT NULL,
			product_keyword TEXT,
			disposition TEXT NOT NULL,
			red_flags TEXT[] NOT NULL DEFAULT '{}',
			decided_at TIMESTAMPTZ NOT NULL,
			UNIQUE (run_id, product_url)
		);

		CREATE TABLE IF NOT EXISTS equivalence_links (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			run_id TEXT NOT NULL,
			original_title TEXT NOT NULL,
			original_url TEXT NOT NULL,
			original_price DOUBLE PRECISION,
			keyword TEXT,
			equivalent_url TEXT NOT NULL,
			discovery_source TEXT NOT NULL,
			UNIQUE (run_id, original_url)
		);
	`
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure checkpoint schema: %w", err)
	}
	return nil
}
