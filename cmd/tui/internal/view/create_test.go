package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

func TestParseMajor(t *testing.T) {
	type testCase struct {
		in      string
		want    int64
		wantErr bool
	}

	tests := []testCase{
		{in: "", want: 0},
		{in: "18500", want: 1850000},
		{in: "18500.5", want: 1850050},
		{in: "1,234.50", want: 123450},
		{in: "12,5", want: 1250},
		{in: "$ 4.500.000", wantErr: true},
		{in: "$ 4500000", want: 450000000},
		{in: "0.005", want: 1},
		{in: "-10", wantErr: true},
		{in: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseMajor(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCreateDraft_Request(t *testing.T) {
	d := &createDraft{
		Reference:    " COT-992 ",
		Counterparty: "Inversiones Global",
		Category:     "Textiles",
		Amount:       "4500000",
		Target:       "5000000",
		IssueDate:    "2024-02-01",
		DueDate:      "2024-03-01",
	}

	req, err := d.request(record.KindQuote)
	require.NoError(t, err)

	assert.Equal(t, "COT-992", req.Reference)
	assert.Equal(t, "textiles", req.Category)
	assert.Equal(t, int64(450000000), req.Amount)
	require.NotNil(t, req.Target)
	assert.Equal(t, int64(500000000), *req.Target)
	assert.Equal(t, "2024-02-01", req.IssueDate.Format("2006-01-02"))
	require.NotNil(t, req.DueDate)
	assert.Nil(t, req.Payroll)
}

func TestCreateDraft_RequestPayroll(t *testing.T) {
	d := &createDraft{
		Counterparty: "Marta Ruiz",
		Amount:       "999",
		BaseSalary:   "3000000",
		Commissions:  "250000",
		Bonuses:      "100000",
		Deductions:   "50000",
	}

	req, err := d.request(record.KindPayroll)
	require.NoError(t, err)

	require.NotNil(t, req.Payroll)
	assert.Equal(t, int64(300000000), req.Payroll.BaseSalary)
	assert.Equal(t, int64(5000000), req.Payroll.Deductions)
	assert.Zero(t, req.Amount)
	assert.True(t, req.IssueDate.IsZero())
	assert.Nil(t, req.DueDate)
}

func TestCreateDraft_RequestInvalid(t *testing.T) {
	_, err := (&createDraft{Counterparty: "x", DueDate: "01/03/2024"}).request(record.KindExpense)
	assert.Error(t, err)

	_, err = (&createDraft{Counterparty: "x", Target: "-5"}).request(record.KindCommission)
	assert.Error(t, err)
}
