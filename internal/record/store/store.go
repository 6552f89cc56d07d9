package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanRecord reads a record row in selectColumns order.
func scanRecord(s scanner) (*record.Record, error) {
	var (
		r         record.Record
		kind      string
		status    string
		target    sql.NullInt64
		dueDate   sql.NullTime
		updatedAt sql.NullTime
	)

	if err := s.Scan(
		&r.ID, &r.TenantID, &kind, &r.Reference, &status, &r.Category,
		&r.Amount, &target, &r.Counterparty, &r.Company, &r.Description,
		&r.IssueDate, &dueDate, &r.Version, &r.CreatedAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	r.Kind = record.Kind(kind)
	r.Status = record.Status(status)

	if target.Valid {
		r.Target = &target.Int64
	}

	if dueDate.Valid {
		r.DueDate = &dueDate.Time
	}

	if updatedAt.Valid {
		r.UpdatedAt = &updatedAt.Time
	}

	return &r, nil
}

const selectColumns = `
	id, tenant_id, kind, reference, status, category,
	amount, target, counterparty, company, description,
	issue_date, due_date, version, created_at, updated_at
`

const insertRecord = `
	INSERT INTO records (tenant_id, kind, reference, status, category, amount, target,
		counterparty, company, description, issue_date, due_date, version, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 1, NOW())
	RETURNING id, version, created_at
`

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Postgres error codes the service layer has a sentinel for.
const (
	uniqueViolation = "23505"
	checkViolation  = "23514"
)

// classify maps constraint violations onto record sentinels so they reach the
// client as 409 or 400 rather than 500.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case uniqueViolation:
		return fmt.Errorf("%w: %s", record.ErrConflict, pgErr.Detail)
	case checkViolation:
		return fmt.Errorf("%w: %s", record.ErrInvalid, pgErr.ConstraintName)
	}

	return err
}

func insert(ctx context.Context, q querier, r *record.Record) error {
	err := q.QueryRowContext(ctx, insertRecord,
		r.TenantID,
		r.Kind,
		r.Reference,
		r.Status,
		r.Category,
		r.Amount,
		r.Target,
		r.Counterparty,
		r.Company,
		r.Description,
		r.IssueDate,
		r.DueDate,
	).Scan(&r.ID, &r.Version, &r.CreatedAt)

	return classify(err)
}

func (s *Store) CreateRecord(ctx context.Context, r *record.Record) error {
	if err := insert(ctx, s.db, r); err != nil {
		return fmt.Errorf("creating record: %w", err)
	}

	return nil
}

func (s *Store) GetRecord(ctx context.Context, tenantID, id uuid.UUID) (*record.Record, error) {
	query := `SELECT ` + selectColumns + `
		FROM records
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`

	r, err := scanRecord(s.db.QueryRowContext(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, record.ErrNotFound
		}

		return nil, fmt.Errorf("getting record: %w", err)
	}

	return r, nil
}

func (s *Store) ListRecords(ctx context.Context, filter record.ListFilter) ([]*record.Record, error) {
	query := `SELECT ` + selectColumns + `
		FROM records
		WHERE deleted_at IS NULL AND tenant_id = $1 AND kind = $2`

	args := []any{filter.TenantID, filter.Kind}
	argIdx := 3

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND issue_date >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND issue_date <= $%d", argIdx)

		args = append(args, *filter.EndDate)
	}

	query += " ORDER BY issue_date DESC, created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	var records []*record.Record

	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}

		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}

	return records, nil
}

// UpdateStatus is a compare-and-swap on version. When no row matches it
// looks the record up again to tell a missing record from a stale version.
func (s *Store) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status record.Status, version int64) (*record.Record, error) {
	query := `
		UPDATE records
		SET status = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND tenant_id = $3 AND version = $4 AND deleted_at IS NULL
		RETURNING ` + selectColumns

	r, err := scanRecord(s.db.QueryRowContext(ctx, query, status, id, tenantID, version))
	if err == nil {
		return r, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("updating status: %w", err)
	}

	if _, err := s.GetRecord(ctx, tenantID, id); err != nil {
		return nil, err
	}

	return nil, fmt.Errorf("%w: version %d is stale", record.ErrConflict, version)
}

func (s *Store) DeleteRecord(ctx context.Context, tenantID uuid.UUID, kind record.Kind, id uuid.UUID) error {
	query := `
		UPDATE records
		SET deleted_at = NOW()
		WHERE id = $1 AND tenant_id = $2 AND kind = $3 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query, id, tenantID, kind)
	if err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}

	if n == 0 {
		return record.ErrNotFound
	}

	return nil
}

func importLockKey(tenantID uuid.UUID, kind record.Kind) int64 {
	h := fnv.New64a()
	h.Write(tenantID[:])
	h.Write([]byte{0})
	h.Write([]byte(kind))

	return int64(h.Sum64())
}

type importTx struct {
	tx       *sql.Tx
	tenantID uuid.UUID
	kind     record.Kind
}

// BeginImport serialises imports per tenant and kind with an advisory lock
// held until the transaction ends.
func (s *Store) BeginImport(ctx context.Context, tenantID uuid.UUID, kind record.Kind) (record.ImportTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import tx: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", importLockKey(tenantID, kind)); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring import lock: %w", err)
	}

	return &importTx{tx: dbTx, tenantID: tenantID, kind: kind}, nil
}

func (itx *importTx) Commit() error   { return itx.tx.Commit() }
func (itx *importTx) Rollback() error { return itx.tx.Rollback() }

func (itx *importTx) FindDuplicates(ctx context.Context, references []string) ([]*record.Record, error) {
	if len(references) == 0 {
		return nil, nil
	}

	query := `SELECT ` + selectColumns + `
		FROM records
		WHERE deleted_at IS NULL AND tenant_id = $1 AND kind = $2 AND reference = ANY($3)`

	rows, err := itx.tx.QueryContext(ctx, query, itx.tenantID, itx.kind, references)
	if err != nil {
		return nil, fmt.Errorf("finding duplicates: %w", err)
	}
	defer rows.Close()

	var duplicates []*record.Record

	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}

		duplicates = append(duplicates, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating duplicate rows: %w", err)
	}

	return duplicates, nil
}

func (itx *importTx) CreateRecords(ctx context.Context, rs []*record.Record) error {
	for _, r := range rs {
		if err := insert(ctx, itx.tx, r); err != nil {
			return fmt.Errorf("creating record %q: %w", r.Reference, err)
		}
	}

	return nil
}
