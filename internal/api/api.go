// Package api holds the JSON shapes and resource paths shared by the HTTP
// server and the typed client.
package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

var paths = map[record.Kind]string{
	record.KindPayment:    "/payments",
	record.KindQuote:      "/quotes",
	record.KindShipment:   "/admin/shipments",
	record.KindExpense:    "/expenses",
	record.KindReceivable: "/receivables",
	record.KindPayroll:    "/payroll",
	record.KindCommission: "/commissions",
}

// Path returns the collection resource of a kind, or "" for unknown kinds.
func Path(k record.Kind) string {
	return paths[k]
}

type Record struct {
	ID           uuid.UUID     `json:"id"`
	Kind         record.Kind   `json:"kind"`
	Reference    string        `json:"reference,omitempty"`
	Status       record.Status `json:"status"`
	Category     string        `json:"category,omitempty"`
	Amount       int64         `json:"amount"`
	Target       *int64        `json:"target,omitempty"`
	Counterparty string        `json:"counterparty"`
	Company      string        `json:"company,omitempty"`
	Description  string        `json:"description,omitempty"`
	IssueDate    time.Time     `json:"issue_date"`
	DueDate      *time.Time    `json:"due_date,omitempty"`
	Version      int64         `json:"version"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    *time.Time    `json:"updated_at,omitempty"`
}

func FromRecord(r *record.Record) Record {
	return Record{
		ID:           r.ID,
		Kind:         r.Kind,
		Reference:    r.Reference,
		Status:       r.Status,
		Category:     r.Category,
		Amount:       r.Amount,
		Target:       r.Target,
		Counterparty: r.Counterparty,
		Company:      r.Company,
		Description:  r.Description,
		IssueDate:    r.IssueDate,
		DueDate:      r.DueDate,
		Version:      r.Version,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func FromRecords(rs []*record.Record) []Record {
	out := make([]Record, len(rs))
	for i, r := range rs {
		out[i] = FromRecord(r)
	}

	return out
}

// Record converts the wire shape back to a domain record. The tenant is
// never sent over the wire and stays zero.
func (r Record) Record() *record.Record {
	return &record.Record{
		ID:           r.ID,
		Kind:         r.Kind,
		Reference:    r.Reference,
		Status:       r.Status,
		Category:     r.Category,
		Amount:       r.Amount,
		Target:       r.Target,
		Counterparty: r.Counterparty,
		Company:      r.Company,
		Description:  r.Description,
		IssueDate:    r.IssueDate,
		DueDate:      r.DueDate,
		Version:      r.Version,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func ToRecords(rs []Record) []*record.Record {
	out := make([]*record.Record, len(rs))
	for i, r := range rs {
		out[i] = r.Record()
	}

	return out
}

type KPI struct {
	Key     string          `json:"key"`
	Label   string          `json:"label"`
	Display record.Display  `json:"display"`
	Value   decimal.Decimal `json:"value"`
}

func FromKPIs(kpis []record.KPI) []KPI {
	out := make([]KPI, len(kpis))
	for i, k := range kpis {
		out[i] = KPI(k)
	}

	return out
}

func ToKPIs(kpis []KPI) []record.KPI {
	out := make([]record.KPI, len(kpis))
	for i, k := range kpis {
		out[i] = record.KPI(k)
	}

	return out
}

type View struct {
	Items      []Record `json:"items"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	TotalPages int      `json:"total_pages"`
	TotalCount int      `json:"total_count"`
}

func FromView(v record.View) View {
	return View{
		Items:      FromRecords(v.Items),
		Page:       v.Page,
		PageSize:   v.PageSize,
		TotalPages: v.TotalPages,
		TotalCount: v.TotalCount,
	}
}

func (v View) View() record.View {
	return record.View{
		Items:      ToRecords(v.Items),
		Page:       v.Page,
		PageSize:   v.PageSize,
		TotalPages: v.TotalPages,
		TotalCount: v.TotalCount,
	}
}

type Payroll struct {
	BaseSalary  int64 `json:"base_salary" validate:"gte=0"`
	Commissions int64 `json:"commissions" validate:"gte=0"`
	Bonuses     int64 `json:"bonuses" validate:"gte=0"`
	Deductions  int64 `json:"deductions" validate:"gte=0"`
}

type CreateRequest struct {
	Reference    string        `json:"reference,omitempty" validate:"max=64"`
	Status       record.Status `json:"status,omitempty" validate:"max=32"`
	Category     string        `json:"category,omitempty" validate:"max=64"`
	Amount       int64         `json:"amount" validate:"gte=0"`
	Target       *int64        `json:"target,omitempty" validate:"omitnil,gte=0"`
	Counterparty string        `json:"counterparty" validate:"required,max=200"`
	Company      string        `json:"company,omitempty" validate:"max=200"`
	Description  string        `json:"description,omitempty" validate:"max=2000"`
	IssueDate    time.Time     `json:"issue_date,omitzero"`
	DueDate      *time.Time    `json:"due_date,omitempty"`
	Payroll      *Payroll      `json:"payroll,omitempty" validate:"omitnil"`
}

// Params converts the request into service parameters for tenant and kind.
func (c CreateRequest) Params(tenantID uuid.UUID, kind record.Kind) record.CreateParams {
	p := record.CreateParams{
		TenantID:     tenantID,
		Kind:         kind,
		Reference:    c.Reference,
		Status:       c.Status,
		Category:     c.Category,
		Amount:       c.Amount,
		Target:       c.Target,
		Counterparty: c.Counterparty,
		Company:      c.Company,
		Description:  c.Description,
		IssueDate:    c.IssueDate,
		DueDate:      c.DueDate,
	}

	if c.Payroll != nil {
		p.Payroll = &record.PayrollBreakdown{
			BaseSalary:  c.Payroll.BaseSalary,
			Commissions: c.Payroll.Commissions,
			Bonuses:     c.Payroll.Bonuses,
			Deductions:  c.Payroll.Deductions,
		}
	}

	return p
}

type StatusRequest struct {
	Status  record.Status `json:"status" validate:"required"`
	Version int64         `json:"version,omitempty" validate:"gte=0"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

// FromParams is the inverse of CreateRequest.Params. Payroll breakdowns are
// already folded into Amount and are not sent back.
func FromParams(p record.CreateParams) CreateRequest {
	return CreateRequest{
		Reference:    p.Reference,
		Status:       p.Status,
		Category:     p.Category,
		Amount:       p.Amount,
		Target:       p.Target,
		Counterparty: p.Counterparty,
		Company:      p.Company,
		Description:  p.Description,
		IssueDate:    p.IssueDate,
		DueDate:      p.DueDate,
	}
}

type ImportConflict struct {
	Incoming CreateRequest `json:"incoming"`
	Existing Record        `json:"existing"`
}

// ImportResponse answers POST {path}/import. On 201 Imported is set; on 409
// New and Conflicts describe the split and nothing was written.
type ImportResponse struct {
	Imported  []Record         `json:"imported,omitempty"`
	New       []CreateRequest  `json:"new,omitempty"`
	Conflicts []ImportConflict `json:"conflicts,omitempty"`
}

type ConfirmRequest struct {
	Params []CreateRequest `json:"params" validate:"required,dive"`
}

// Identity is the caller as seen by the backend.
type Identity struct {
	Subject  string    `json:"sub"`
	TenantID uuid.UUID `json:"tenant_id"`
}
