package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"folio/logging"
)

var (
	// ErrBackendUnavailable wraps every failure of the persistence backend.
	// Callers report it generically; the wrapped cause is for logs only.
	ErrBackendUnavailable = errors.New("backend unavailable")

	ErrNotFound = errors.New("not found")
)

type DB struct {
	Pool *pgxpool.Pool
}

// BatchReadError reports which read of a batch failed.
type BatchReadError struct {
	FailedIndex  int
	TotalQueries int
	Query        string
	Err          error
}

func (e *BatchReadError) Error() string {
	return fmt.Sprintf("failed to read %s at index %d/%d: %v", e.Query, e.FailedIndex, e.TotalQueries, e.Err)
}

func (e *BatchReadError) Unwrap() error {
	return e.Err
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrBackendUnavailable, err)
}

func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 1
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logging.Info().
		Str("host", config.ConnConfig.Host).
		Str("database", config.ConnConfig.Database).
		Msg("Database connection established")
	return &DB{Pool: pool}, nil
}

// Ping checks the backend is reachable.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.Pool.Ping(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func (db *DB) Close() {
	db.Pool.Close()
	logging.Info().Msg("Database connection closed")
}
