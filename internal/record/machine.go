package record

import (
	"fmt"
	"slices"
)

type machine struct {
	statuses []Status
	initial  Status
	// edges is nil for free-form machines, where any member may follow any other.
	edges   map[Status][]Status
	settled []Status
	open    []Status
}

var machines = map[Kind]machine{
	KindPayment: {
		statuses: []Status{StatusPending, StatusProcessing, StatusPaid},
		initial:  StatusPending,
		edges: map[Status][]Status{
			StatusPending:    {StatusProcessing, StatusPaid},
			StatusProcessing: {StatusPaid},
		},
		settled: []Status{StatusPaid},
		open:    []Status{StatusPending, StatusProcessing},
	},
	KindQuote: {
		statuses: []Status{StatusDraft, StatusSent, StatusAccepted, StatusExpired, StatusDeclined},
		initial:  StatusDraft,
		edges: map[Status][]Status{
			StatusDraft: {StatusSent},
			StatusSent:  {StatusAccepted, StatusDeclined, StatusExpired},
		},
		settled: []Status{StatusAccepted},
		open:    []Status{StatusDraft, StatusSent},
	},
	KindShipment: {
		statuses: []Status{
			StatusLabelGenerated, StatusInTransit, StatusOutForDelivery,
			StatusDelivered, StatusIncident, StatusReturned,
		},
		initial: StatusLabelGenerated,
		settled: []Status{StatusDelivered},
		open:    []Status{StatusLabelGenerated, StatusInTransit, StatusOutForDelivery},
	},
	KindExpense: {
		statuses: []Status{StatusPending, StatusPaid},
		initial:  StatusPending,
		edges:    map[Status][]Status{StatusPending: {StatusPaid}},
		settled:  []Status{StatusPaid},
		open:     []Status{StatusPending},
	},
	KindReceivable: {
		statuses: []Status{StatusPending, StatusCollected},
		initial:  StatusPending,
		edges:    map[Status][]Status{StatusPending: {StatusCollected}},
		settled:  []Status{StatusCollected},
		open:     []Status{StatusPending},
	},
	KindPayroll: {
		statuses: []Status{StatusPending, StatusPaid},
		initial:  StatusPending,
		edges:    map[Status][]Status{StatusPending: {StatusPaid}},
		settled:  []Status{StatusPaid},
		open:     []Status{StatusPending},
	},
	KindCommission: {
		statuses: []Status{StatusPending, StatusLiquidated},
		initial:  StatusPending,
		edges:    map[Status][]Status{StatusPending: {StatusLiquidated}},
		settled:  []Status{StatusLiquidated},
		open:     []Status{StatusPending},
	},
}

// Statuses returns the closed status set of a kind.
func Statuses(k Kind) []Status {
	return slices.Clone(machines[k].statuses)
}

// InitialStatus is the status assigned to new records of a kind.
func InitialStatus(k Kind) Status {
	return machines[k].initial
}

// ValidStatus reports whether s belongs to the status set of k.
func ValidStatus(k Kind, s Status) bool {
	return slices.Contains(machines[k].statuses, s)
}

// IsSettled reports whether s is a terminal, successful status for k.
func IsSettled(k Kind, s Status) bool {
	return slices.Contains(machines[k].settled, s)
}

// IsOpen reports whether s still awaits action for k.
func IsOpen(k Kind, s Status) bool {
	return slices.Contains(machines[k].open, s)
}

// Next returns the statuses reachable from s.
func Next(k Kind, s Status) []Status {
	m, ok := machines[k]
	if !ok || !slices.Contains(m.statuses, s) {
		return nil
	}

	if m.edges == nil {
		next := make([]Status, 0, len(m.statuses)-1)
		for _, st := range m.statuses {
			if st != s {
				next = append(next, st)
			}
		}

		return next
	}

	return slices.Clone(m.edges[s])
}

// CanTransition checks the edge from -> to for kind k.
func CanTransition(k Kind, from, to Status) error {
	if !ValidStatus(k, to) {
		return fmt.Errorf("%w: %q is not a %s status", ErrInvalidTransition, to, k)
	}

	if !slices.Contains(Next(k, from), to) {
		return fmt.Errorf("%w: %s cannot move from %q to %q", ErrInvalidTransition, k, from, to)
	}

	return nil
}
