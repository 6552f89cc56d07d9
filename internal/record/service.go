package record

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=record
type Repository interface {
	CreateRecord(ctx context.Context, r *Record) error
	GetRecord(ctx context.Context, tenantID, id uuid.UUID) (*Record, error)
	ListRecords(ctx context.Context, filter ListFilter) ([]*Record, error)
	// UpdateStatus writes status only if the stored version still equals
	// version, returning the updated record or ErrConflict.
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status Status, version int64) (*Record, error)
	// DeleteRecord soft-deletes a record of kind, or returns ErrNotFound.
	DeleteRecord(ctx context.Context, tenantID uuid.UUID, kind Kind, id uuid.UUID) error

	BeginImport(ctx context.Context, tenantID uuid.UUID, kind Kind) (ImportTx, error)
}

type ImportTx interface {
	FindDuplicates(ctx context.Context, references []string) ([]*Record, error)
	CreateRecords(ctx context.Context, rs []*Record) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// PayrollBreakdown is the salary composition of a payroll line.
type PayrollBreakdown struct {
	BaseSalary  int64
	Commissions int64
	Bonuses     int64
	Deductions  int64
}

// Net is base + commissions + bonuses - deductions.
func (b PayrollBreakdown) Net() int64 {
	return b.BaseSalary + b.Commissions + b.Bonuses - b.Deductions
}

type CreateParams struct {
	TenantID     uuid.UUID
	Kind         Kind
	Reference    string
	Status       Status
	Category     string
	Amount       int64
	Target       *int64
	Counterparty string
	Company      string
	Description  string
	IssueDate    time.Time
	DueDate      *time.Time
	Payroll      *PayrollBreakdown
}

type ListFilter struct {
	TenantID  uuid.UUID
	Kind      Kind
	Status    *Status
	StartDate *time.Time
	EndDate   *time.Time
}

func (s *Service) build(p CreateParams) (*Record, error) {
	if !p.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalid, p.Kind)
	}

	if p.Payroll != nil {
		p.Amount = p.Payroll.Net()
	}

	if p.Amount < 0 {
		return nil, fmt.Errorf("%w: amount must not be negative", ErrInvalid)
	}

	if strings.TrimSpace(p.Counterparty) == "" {
		return nil, fmt.Errorf("%w: counterparty is required", ErrInvalid)
	}

	status := p.Status
	if status == "" {
		status = InitialStatus(p.Kind)
	}

	if !ValidStatus(p.Kind, status) {
		return nil, fmt.Errorf("%w: %q is not a %s status", ErrInvalid, status, p.Kind)
	}

	issued := p.IssueDate
	if issued.IsZero() {
		issued = s.now()
	}

	return &Record{
		TenantID:     p.TenantID,
		Kind:         p.Kind,
		Reference:    strings.TrimSpace(p.Reference),
		Status:       status,
		Category:     p.Category,
		Amount:       p.Amount,
		Target:       p.Target,
		Counterparty: strings.TrimSpace(p.Counterparty),
		Company:      p.Company,
		Description:  p.Description,
		IssueDate:    issued,
		DueDate:      p.DueDate,
	}, nil
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Record, error) {
	r, err := s.build(params)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateRecord(ctx, r); err != nil {
		return nil, err
	}

	return r, nil
}

func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (*Record, error) {
	return s.repo.GetRecord(ctx, tenantID, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Record, error) {
	return s.repo.ListRecords(ctx, filter)
}

func (s *Service) Delete(ctx context.Context, tenantID uuid.UUID, kind Kind, id uuid.UUID) error {
	return s.repo.DeleteRecord(ctx, tenantID, kind, id)
}

// Transition moves a record of kind to status to. A non-zero version must
// match the stored one; the write itself is guarded by the version read here,
// so two racing transitions cannot both succeed.
func (s *Service) Transition(ctx context.Context, tenantID uuid.UUID, kind Kind, id uuid.UUID, to Status, version int64) (*Record, error) {
	current, err := s.repo.GetRecord(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if current.Kind != kind {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
	}

	if version != 0 && current.Version != version {
		return nil, fmt.Errorf("%w: have version %d, got %d", ErrConflict, current.Version, version)
	}

	if err := CanTransition(current.Kind, current.Status, to); err != nil {
		return nil, err
	}

	return s.repo.UpdateStatus(ctx, tenantID, id, to, current.Version)
}

// Summary computes the KPI set over every record of a kind.
func (s *Service) Summary(ctx context.Context, tenantID uuid.UUID, kind Kind) ([]KPI, error) {
	records, err := s.repo.ListRecords(ctx, ListFilter{TenantID: tenantID, Kind: kind})
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}

	return ComputeAggregates(kind, records), nil
}

// View derives one page of the kind's collection.
func (s *Service) View(ctx context.Context, tenantID uuid.UUID, kind Kind, c Criteria, page, pageSize int) (View, error) {
	records, err := s.repo.ListRecords(ctx, ListFilter{TenantID: tenantID, Kind: kind})
	if err != nil {
		return View{}, fmt.Errorf("listing records: %w", err)
	}

	return DeriveView(records, c, page, pageSize), nil
}

type ImportResult struct {
	Imported  []*Record
	New       []CreateParams
	Conflicts []Conflict
}

type Conflict struct {
	Incoming CreateParams
	Existing *Record
}

// ImportBatch inserts params unless one of their references already exists
// or repeats an earlier row of the same batch, in which case nothing is
// written and the split is reported back. A repeat inside the batch is
// reported against the unsaved first occurrence.
func (s *Service) ImportBatch(ctx context.Context, tenantID uuid.UUID, kind Kind, params []CreateParams) (*ImportResult, error) {
	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	records, err := s.buildAll(tenantID, kind, params)
	if err != nil {
		return nil, err
	}

	itx, err := s.repo.BeginImport(ctx, tenantID, kind)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	var refs []string

	for _, r := range records {
		if r.Reference != "" {
			refs = append(refs, r.Reference)
		}
	}

	duplicates, err := itx.FindDuplicates(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("find duplicates: %w", err)
	}

	lookup := make(map[string]*Record, len(duplicates))
	for _, d := range duplicates {
		lookup[d.Reference] = d
	}

	var (
		newParams []CreateParams
		conflicts []Conflict
	)

	for i, p := range params {
		ref := records[i].Reference

		existing, found := lookup[ref]
		if found {
			conflicts = append(conflicts, Conflict{Incoming: p, Existing: existing})
			continue
		}

		if ref != "" {
			lookup[ref] = records[i]
		}

		newParams = append(newParams, p)
	}

	if len(conflicts) > 0 {
		return &ImportResult{New: newParams, Conflicts: conflicts}, nil
	}

	if err := itx.CreateRecords(ctx, records); err != nil {
		return nil, fmt.Errorf("create records: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return &ImportResult{Imported: records}, nil
}

// CreateBatch inserts every param without duplicate detection.
func (s *Service) CreateBatch(ctx context.Context, tenantID uuid.UUID, kind Kind, params []CreateParams) ([]*Record, error) {
	if len(params) == 0 {
		return nil, nil
	}

	records, err := s.buildAll(tenantID, kind, params)
	if err != nil {
		return nil, err
	}

	itx, err := s.repo.BeginImport(ctx, tenantID, kind)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	if err := itx.CreateRecords(ctx, records); err != nil {
		return nil, fmt.Errorf("create records: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return records, nil
}

func (s *Service) buildAll(tenantID uuid.UUID, kind Kind, params []CreateParams) ([]*Record, error) {
	records := make([]*Record, len(params))

	for i, p := range params {
		p.TenantID = tenantID
		p.Kind = kind

		r, err := s.build(p)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		records[i] = r
	}

	return records, nil
}
