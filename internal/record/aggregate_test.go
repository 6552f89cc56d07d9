package record_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

func kpiValue(t *testing.T, kpis []record.KPI, key string) decimal.Decimal {
	t.Helper()

	k, ok := record.Find(kpis, key)
	require.True(t, ok, "missing kpi %s", key)

	return k.Value
}

func TestComputeAggregates_EmptyCollectionIsZero(t *testing.T) {
	for _, kind := range record.Kinds {
		t.Run(string(kind), func(t *testing.T) {
			kpis := record.ComputeAggregates(kind, nil)
			require.NotEmpty(t, kpis)

			for _, k := range kpis {
				assert.True(t, k.Value.IsZero(), "%s should be zero, got %s", k.Key, k.Value)
				assert.NotEmpty(t, k.Label)
			}
		})
	}
}

func TestComputeAggregates_PendingAndPaidTotalsFollowTransition(t *testing.T) {
	target := uuid.New()
	recs := []*record.Record{
		{ID: uuid.New(), Kind: record.KindPayment, Status: record.StatusPending, Amount: 10000},
		{ID: uuid.New(), Kind: record.KindPayment, Status: record.StatusPaid, Amount: 20000},
		{ID: target, Kind: record.KindPayment, Status: record.StatusPending, Amount: 30000},
	}

	kpis := record.ComputeAggregates(record.KindPayment, recs)
	assert.True(t, decimal.NewFromInt(400).Equal(kpiValue(t, kpis, "pending_total")))
	assert.True(t, decimal.NewFromInt(200).Equal(kpiValue(t, kpis, "paid_total")))

	next, err := record.ApplyTransition(recs, target, record.StatusPaid)
	require.NoError(t, err)

	kpis = record.ComputeAggregates(record.KindPayment, next)
	assert.True(t, decimal.NewFromInt(100).Equal(kpiValue(t, kpis, "pending_total")))
	assert.True(t, decimal.NewFromInt(500).Equal(kpiValue(t, kpis, "paid_total")))
}

func TestComputeAggregates_Rates(t *testing.T) {
	shipments := []*record.Record{
		{Kind: record.KindShipment, Status: record.StatusDelivered},
		{Kind: record.KindShipment, Status: record.StatusInTransit},
		{Kind: record.KindShipment, Status: record.StatusIncident},
		{Kind: record.KindShipment, Status: record.StatusDelivered},
	}

	kpis := record.ComputeAggregates(record.KindShipment, shipments)
	assert.True(t, decimal.NewFromInt(50).Equal(kpiValue(t, kpis, "delivery_rate")))
	assert.True(t, decimal.NewFromInt(2).Equal(kpiValue(t, kpis, "delivered_count")))
	assert.True(t, decimal.NewFromInt(1).Equal(kpiValue(t, kpis, "active_count")))
}

func TestComputeAggregates_AchievementRate(t *testing.T) {
	commissions := []*record.Record{
		{Kind: record.KindCommission, Status: record.StatusPending, Amount: 1350000, Target: new(int64(1800000))},
		{Kind: record.KindCommission, Status: record.StatusLiquidated, Amount: 500000, Target: new(int64(1000000))},
		{Kind: record.KindCommission, Status: record.StatusPending, Amount: 700000},
	}

	kpis := record.ComputeAggregates(record.KindCommission, commissions)
	// (0.75 + 0.5) / 2
	assert.True(t, decimal.RequireFromString("62.5").Equal(kpiValue(t, kpis, "achievement_rate")))
	assert.True(t, decimal.NewFromInt(20500).Equal(kpiValue(t, kpis, "pending_total")))
	assert.True(t, decimal.NewFromInt(5000).Equal(kpiValue(t, kpis, "liquidated_total")))
}

func TestComputeAggregates_IgnoresFilters(t *testing.T) {
	recs := payments(20)

	view := record.DeriveView(recs, record.Criteria{Query: "provider 1"}, 1, 5)
	require.Less(t, view.TotalCount, len(recs))

	kpis := record.ComputeAggregates(record.KindPayment, recs)
	assert.True(t, decimal.NewFromInt(20).Equal(kpiValue(t, kpis, "record_count")))
}
