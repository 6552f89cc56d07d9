package cache

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the schema version this build reads and writes.
const ExpectedSchemaVersion = 2

type migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, q := range queries {
		if _, err := tx.Exec(q); err != nil {
			return fmt.Errorf("executing query: %w", err)
		}
	}

	return nil
}

var migrations = []migration{
	{
		Version:     1,
		Description: "Initial snapshot tables",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS snapshots (
					kind TEXT PRIMARY KEY,
					saved_at INTEGER NOT NULL
				)`,
				`CREATE TABLE IF NOT EXISTS cached_records (
					kind TEXT NOT NULL,
					id TEXT NOT NULL,
					position INTEGER NOT NULL,
					payload TEXT NOT NULL,
					PRIMARY KEY (kind, id)
				)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Order cached records by position",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE INDEX IF NOT EXISTS idx_cached_records_position ON cached_records(kind, position)`,
				`ALTER TABLE snapshots ADD COLUMN record_count INTEGER NOT NULL DEFAULT 0`,
			)
		},
	},
}

// Migrate brings the cache schema up to ExpectedSchemaVersion, one
// transaction per step.
func (c *Cache) Migrate(ctx context.Context) error {
	current, err := c.Version(ctx)
	if err != nil {
		return err
	}

	if current > ExpectedSchemaVersion {
		return fmt.Errorf("cache schema version %d is newer than supported %d", current, ExpectedSchemaVersion)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}

		tx, err := c.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning migration %d: %w", m.Version, err)
		}

		if err := m.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", m.Version, err)
		}

		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("updating schema version: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", m.Version, err)
		}

		slog.Info("Applied cache migration", "version", m.Version, "description", m.Description)
	}

	final, err := c.Version(ctx)
	if err != nil {
		return err
	}

	if final != ExpectedSchemaVersion {
		return fmt.Errorf("cache schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, final)
	}

	return nil
}

// Version reports the schema version stored in the cache file.
func (c *Cache) Version(ctx context.Context) (int, error) {
	var v int
	if err := c.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}

	return v, nil
}
