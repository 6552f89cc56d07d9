package record

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("record was modified concurrently")
	ErrInvalid           = errors.New("invalid record")
)

// Kind identifies which business page a record belongs to.
type Kind string

const (
	KindPayment    Kind = "payment"
	KindQuote      Kind = "quote"
	KindShipment   Kind = "shipment"
	KindExpense    Kind = "expense"
	KindReceivable Kind = "receivable"
	KindPayroll    Kind = "payroll"
	KindCommission Kind = "commission"
)

// Kinds lists every supported kind in menu order.
var Kinds = []Kind{
	KindPayment,
	KindQuote,
	KindShipment,
	KindExpense,
	KindReceivable,
	KindPayroll,
	KindCommission,
}

func (k Kind) Valid() bool {
	_, ok := machines[k]
	return ok
}

// Status is the lifecycle state of a record. The valid set depends on the Kind.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusPaid       Status = "paid"
	StatusCollected  Status = "collected"
	StatusLiquidated Status = "liquidated"

	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusAccepted Status = "accepted"
	StatusExpired  Status = "expired"
	StatusDeclined Status = "declined"

	StatusLabelGenerated Status = "label_generated"
	StatusInTransit      Status = "in_transit"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusIncident       Status = "incident"
	StatusReturned       Status = "returned"
)

// Record is a generic business entity: payment, quote, shipment, expense,
// receivable, payroll line or commission settlement.
type Record struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	Kind         Kind
	Reference    string
	Status       Status
	Category     string
	Amount       int64  // Amount in cents
	Target       *int64 // Goal amount in cents, used for progress ratios
	Counterparty string
	Company      string
	Description  string
	IssueDate    time.Time
	DueDate      *time.Time
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// Progress returns Amount/Target, or false when the record has no target.
func (r *Record) Progress() (float64, bool) {
	if r.Target == nil || *r.Target == 0 {
		return 0, false
	}

	return float64(r.Amount) / float64(*r.Target), true
}

func (r *Record) clone() *Record {
	c := *r
	return &c
}
