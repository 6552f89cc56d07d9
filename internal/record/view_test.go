package record_test

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

func payments(n int) []*record.Record {
	recs := make([]*record.Record, n)
	for i := range recs {
		recs[i] = &record.Record{
			ID:           uuid.New(),
			Kind:         record.KindPayment,
			Reference:    fmt.Sprintf("PAY-%03d", i+1),
			Status:       record.StatusPending,
			Amount:       int64((i + 1) * 1000),
			Counterparty: fmt.Sprintf("Provider %d", i+1),
			IssueDate:    day(1 + i%28),
		}
	}

	return recs
}

func TestDeriveView_NoFilterIsFullCollectionPaginated(t *testing.T) {
	recs := payments(25)

	v := record.DeriveView(recs, record.Criteria{Category: record.All}, 1, 10)
	assert.Equal(t, 25, v.TotalCount)
	assert.Equal(t, 3, v.TotalPages)
	assert.Equal(t, recs[:10], v.Items)

	last := record.DeriveView(recs, record.Criteria{}, 3, 10)
	assert.Equal(t, recs[20:], last.Items)
}

func TestDeriveView_Pagination(t *testing.T) {
	recs := payments(7)

	type testCase struct {
		name      string
		page      int
		pageSize  int
		wantPage  int
		wantPages int
		wantLen   int
	}

	tests := []testCase{
		{name: "FirstPage", page: 1, pageSize: 3, wantPage: 1, wantPages: 3, wantLen: 3},
		{name: "PartialLastPage", page: 3, pageSize: 3, wantPage: 3, wantPages: 3, wantLen: 1},
		{name: "PageBeyondEndIsClamped", page: 9, pageSize: 3, wantPage: 3, wantPages: 3, wantLen: 1},
		{name: "PageBelowOneIsClamped", page: 0, pageSize: 3, wantPage: 1, wantPages: 3, wantLen: 3},
		{name: "DefaultPageSize", page: 1, pageSize: 0, wantPage: 1, wantPages: 1, wantLen: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := record.DeriveView(recs, record.Criteria{}, tt.page, tt.pageSize)
			assert.Equal(t, tt.wantPage, v.Page)
			assert.Equal(t, tt.wantPages, v.TotalPages)
			assert.Len(t, v.Items, tt.wantLen)
			assert.Equal(t, 7, v.TotalCount)
		})
	}
}

func TestDeriveView_EmptyResultHasOnePage(t *testing.T) {
	v := record.DeriveView(payments(5), record.Criteria{Query: "no such provider"}, 4, 10)
	assert.Equal(t, 0, v.TotalCount)
	assert.Equal(t, 1, v.TotalPages)
	assert.Equal(t, 1, v.Page)
	assert.Empty(t, v.Items)

	v = record.DeriveView(nil, record.Criteria{}, 1, 10)
	assert.Equal(t, 1, v.TotalPages)
}

func TestDeriveView_FiltersBeforePaginating(t *testing.T) {
	recs := payments(30)

	v := record.DeriveView(recs, record.Criteria{Query: "provider 2"}, 1, 5)
	// "Provider 2" and "Provider 20".."Provider 29"
	assert.Equal(t, 11, v.TotalCount)
	assert.Equal(t, 3, v.TotalPages)
	assert.Equal(t, "PAY-002", v.Items[0].Reference)
	assert.Equal(t, "PAY-020", v.Items[1].Reference)
}

func TestDeriveView_Idempotent(t *testing.T) {
	recs := payments(12)
	c := record.Criteria{Sort: record.SortAmountDesc}

	first := record.DeriveView(recs, c, 2, 5)
	second := record.DeriveView(recs, c, 2, 5)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(7000), first.Items[0].Amount)
}

func TestDeriveView_SortDoesNotTouchInput(t *testing.T) {
	recs := payments(4)
	v := record.DeriveView(recs, record.Criteria{Sort: record.SortAmountDesc}, 1, 10)

	require.Len(t, v.Items, 4)
	assert.Equal(t, int64(4000), v.Items[0].Amount)
	assert.Equal(t, int64(1000), recs[0].Amount)
}

func TestDeriveView_ItemsCannotClobberCollection(t *testing.T) {
	recs := payments(6)
	v := record.DeriveView(recs, record.Criteria{}, 1, 3)

	_ = append(v.Items, &record.Record{Reference: "X"})

	next := record.DeriveView(recs, record.Criteria{}, 2, 3)
	assert.Equal(t, "PAY-004", next.Items[0].Reference)
}

func TestMemo_ReusesPassUntilInputsChange(t *testing.T) {
	recs := payments(10)

	var m record.Memo

	c := record.Criteria{Query: "provider 1"}
	v1 := m.Derive(1, recs, c, 1, 10)
	assert.Equal(t, 2, v1.TotalCount) // "Provider 1" and "Provider 10"

	// Same generation and criteria: the cached pass is used even if the
	// slice passed in differs.
	v2 := m.Derive(1, recs[:1], c, 1, 10)
	assert.Equal(t, 2, v2.TotalCount)

	v3 := m.Derive(2, recs[:1], c, 1, 10)
	assert.Equal(t, 1, v3.TotalCount)

	v4 := m.Derive(2, recs, record.Criteria{}, 1, 10)
	assert.Equal(t, 10, v4.TotalCount)
}
