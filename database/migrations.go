package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"folio/logging"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations returns the embedded migration file names in apply order.
func Migrations() ([]string, error) {
	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Migrate applies every embedded migration in order. Migrations are
// idempotent, so re-running against a migrated database is safe.
func (db *DB) Migrate(ctx context.Context) ([]string, error) {
	names, err := Migrations()
	if err != nil {
		return nil, err
	}

	applied := make([]string, 0, len(names))
	for _, name := range names {
		start := time.Now()

		content, err := migrationFiles.ReadFile(name)
		if err != nil {
			return applied, fmt.Errorf("failed to read %s: %w", name, err)
		}

		if _, err := db.Pool.Exec(ctx, string(content)); err != nil {
			return applied, fmt.Errorf("failed to execute %s: %w", name, err)
		}

		logging.Info().Str("migration", name).Dur("duration", time.Since(start)).Msg("Migration applied")
		applied = append(applied, name)
	}

	return applied, nil
}
