package record_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

func TestApplyTransition(t *testing.T) {
	recs := payments(3)
	target := recs[1]

	next, err := record.ApplyTransition(recs, target.ID, record.StatusPaid)
	require.NoError(t, err)

	assert.Equal(t, record.StatusPaid, next[1].Status)
	assert.Equal(t, target.ID, next[1].ID)
	assert.Equal(t, target.Amount, next[1].Amount)

	// input untouched, other records shared
	assert.Equal(t, record.StatusPending, target.Status)
	assert.Same(t, target, recs[1])
	assert.Same(t, recs[0], next[0])
	assert.Same(t, recs[2], next[2])
	assert.NotSame(t, recs[1], next[1])
}

func TestApplyTransition_UnknownID(t *testing.T) {
	recs := payments(3)
	before := make([]record.Record, len(recs))
	for i, r := range recs {
		before[i] = *r
	}

	next, err := record.ApplyTransition(recs, uuid.New(), record.StatusPaid)
	require.ErrorIs(t, err, record.ErrNotFound)

	for i, r := range next {
		assert.Equal(t, before[i], *r)
	}
}

func TestApplyTransition_Machine(t *testing.T) {
	type testCase struct {
		name    string
		kind    record.Kind
		from    record.Status
		to      record.Status
		wantErr bool
	}

	tests := []testCase{
		{name: "PaymentPendingToPaid", kind: record.KindPayment, from: record.StatusPending, to: record.StatusPaid},
		{name: "PaymentPaidToPending", kind: record.KindPayment, from: record.StatusPaid, to: record.StatusPending, wantErr: true},
		{name: "PaymentSameStatus", kind: record.KindPayment, from: record.StatusPending, to: record.StatusPending, wantErr: true},
		{name: "QuoteDraftToSent", kind: record.KindQuote, from: record.StatusDraft, to: record.StatusSent},
		{name: "QuoteDraftToAccepted", kind: record.KindQuote, from: record.StatusDraft, to: record.StatusAccepted, wantErr: true},
		{name: "QuoteSentToExpired", kind: record.KindQuote, from: record.StatusSent, to: record.StatusExpired},
		{name: "ShipmentOverride", kind: record.KindShipment, from: record.StatusDelivered, to: record.StatusInTransit},
		{name: "ShipmentForeignStatus", kind: record.KindShipment, from: record.StatusDelivered, to: record.StatusPaid, wantErr: true},
		{name: "CommissionLiquidate", kind: record.KindCommission, from: record.StatusPending, to: record.StatusLiquidated},
		{name: "ReceivableCollect", kind: record.KindReceivable, from: record.StatusPending, to: record.StatusCollected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &record.Record{ID: uuid.New(), Kind: tt.kind, Status: tt.from}
			recs := []*record.Record{r}

			next, err := record.ApplyTransition(recs, r.ID, tt.to)
			if tt.wantErr {
				assert.ErrorIs(t, err, record.ErrInvalidTransition)
				assert.Equal(t, tt.from, next[0].Status)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.to, next[0].Status)
		})
	}
}

func TestRemove(t *testing.T) {
	recs := payments(3)

	next, err := record.Remove(recs, recs[1].ID)
	require.NoError(t, err)
	assert.Len(t, next, 2)
	assert.Len(t, recs, 3)

	_, err = record.Remove(recs, uuid.New())
	assert.ErrorIs(t, err, record.ErrNotFound)
}
