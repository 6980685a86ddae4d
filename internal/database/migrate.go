package database

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
)

//go:embed migrations/001_initial.up.sql
var initialMigrationSQL string

var requiredTables = []string{
	"users",
	"courses",
}

// uniqueConstraints back the conflict checks on email, username and course
// name; the repositories map their violations to ErrDuplicate.
var uniqueConstraints = []string{
	"users_email_key",
	"users_username_key",
	"courses_name_key",
}

// EnsureSchema applies the initial migration when any required table is
// missing, then refuses to start if a unique constraint is absent. The SQL is
// idempotent.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if db == nil || db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	exists, err := db.hasAllRequiredTables(ctx)
	if err != nil {
		return fmt.Errorf("check existing tables: %w", err)
	}

	if !exists {
		slog.Info("database schema missing tables; applying initial migration")
		if _, err := db.Pool.Exec(ctx, initialMigrationSQL); err != nil {
			return fmt.Errorf("apply initial migration: %w", err)
		}

		exists, err = db.hasAllRequiredTables(ctx)
		if err != nil {
			return fmt.Errorf("re-check tables after migration: %w", err)
		}

		if !exists {
			return fmt.Errorf("schema initialization incomplete: required tables are still missing")
		}
	}

	missing, err := db.missingUniqueConstraints(ctx)
	if err != nil {
		return fmt.Errorf("check unique constraints: %w", err)
	}
	if len(missing) > 0 {
		return fmt.Errorf("schema is missing unique constraints: %s", strings.Join(missing, ", "))
	}

	slog.Info("database schema ensured")
	return nil
}

func (db *DB) missingUniqueConstraints(ctx context.Context) ([]string, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT constraint_name
		FROM information_schema.table_constraints
		WHERE table_schema = 'public'
		  AND constraint_type = 'UNIQUE'
		  AND constraint_name = ANY($1)
	`, uniqueConstraints)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found := make(map[string]bool, len(uniqueConstraints))
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		found[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var missing []string
	for _, name := range uniqueConstraints {
		if !found[name] {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

func (db *DB) hasAllRequiredTables(ctx context.Context) (bool, error) {
	var count int
	err := db.Pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = 'public'
		  AND table_name = ANY($1)
	`, requiredTables).Scan(&count)
	if err != nil {
		return false, err
	}

	return count == len(requiredTables), nil
}
