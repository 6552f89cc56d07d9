// Package cache keeps the last good copy of each record collection on disk so
// the dashboard can still render when the backend is unreachable.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

// ErrMiss is returned when no snapshot exists for a kind.
var ErrMiss = errors.New("cache miss")

type Cache struct {
	db  *sql.DB
	now func() time.Time
}

// Snapshot is a cached collection together with when it was written.
type Snapshot struct {
	Kind    record.Kind
	Records []*record.Record
	SavedAt time.Time
}

// Entry describes a snapshot without its records.
type Entry struct {
	Kind    record.Kind
	Count   int
	SavedAt time.Time
}

// Open opens (creating if needed) the cache file at path and migrates it.
func Open(ctx context.Context, path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging cache: %w", err)
	}

	c := &Cache{db: db, now: time.Now}
	if err := c.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return c, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Save replaces the snapshot for kind with records, keeping their order.
func (c *Cache) Save(ctx context.Context, kind record.Kind, records []*record.Record) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cached_records WHERE kind = ?`, kind); err != nil {
		return fmt.Errorf("clearing %s: %w", kind, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO cached_records (kind, id, position, payload) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		payload, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encoding record %s: %w", r.ID, err)
		}

		if _, err := stmt.ExecContext(ctx, kind, r.ID.String(), i, string(payload)); err != nil {
			return fmt.Errorf("inserting record %s: %w", r.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (kind, saved_at, record_count) VALUES (?, ?, ?)
		ON CONFLICT (kind) DO UPDATE SET saved_at = excluded.saved_at, record_count = excluded.record_count`,
		kind, c.now().UnixNano(), len(records))
	if err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing save: %w", err)
	}

	return nil
}

// Load returns the snapshot for kind or ErrMiss.
func (c *Cache) Load(ctx context.Context, kind record.Kind) (*Snapshot, error) {
	var savedAt int64

	err := c.db.QueryRowContext(ctx, `SELECT saved_at FROM snapshots WHERE kind = ?`, kind).Scan(&savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMiss
	}

	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	rows, err := c.db.QueryContext(ctx, `SELECT payload FROM cached_records WHERE kind = ? ORDER BY position`, kind)
	if err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}
	defer rows.Close()

	snap := &Snapshot{Kind: kind, SavedAt: time.Unix(0, savedAt)}

	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}

		var r record.Record
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			return nil, fmt.Errorf("decoding record: %w", err)
		}

		snap.Records = append(snap.Records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}

	return snap, nil
}

// Entries lists every stored snapshot.
func (c *Cache) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT kind, record_count, saved_at FROM snapshots ORDER BY kind`)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var entries []Entry

	for rows.Next() {
		var (
			e       Entry
			kind    string
			savedAt int64
		)

		if err := rows.Scan(&kind, &e.Count, &savedAt); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}

		e.Kind = record.Kind(kind)
		e.SavedAt = time.Unix(0, savedAt)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Clear drops the snapshot for kind, or every snapshot when kind is empty.
func (c *Cache) Clear(ctx context.Context, kind record.Kind) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning clear: %w", err)
	}
	defer tx.Rollback()

	where, args := "", []any{}
	if kind != "" {
		where, args = " WHERE kind = ?", []any{kind}
	}

	for _, table := range []string{"cached_records", "snapshots"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+where, args...); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	return tx.Commit()
}
