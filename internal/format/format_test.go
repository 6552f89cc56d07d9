package format_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"

	"github.com/MrJamesThe3rd/backoffice/internal/format"
	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

func TestMoney(t *testing.T) {
	type testCase struct {
		name  string
		f     *format.Formatter
		cents int64
		want  string
	}

	tests := []testCase{
		{name: "DefaultGrouping", f: format.Default(), cents: 123456789, want: "$ 1.234.567,89"},
		{name: "DefaultWholeAmount", f: format.Default(), cents: 100000000, want: "$ 1.000.000,00"},
		{name: "DefaultNegative", f: format.Default(), cents: -1250, want: "-$ 12,50"},
		{name: "English", f: format.New(language.AmericanEnglish, currency.USD), cents: 123456, want: "$ 1,234.56"},
		{name: "NoDecimals", f: format.New(language.German, currency.USD, format.WithScale(0)), cents: 4500000000, want: "$ 45.000.000"},
		{name: "Zero", f: format.Default(), cents: 0, want: "$ 0,00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.f.Money(tt.cents))
		})
	}
}

func TestKPI(t *testing.T) {
	f := format.Default()

	assert.Equal(t, "$ 400,00", f.KPI(record.KPI{Display: record.DisplayCurrency, Value: decimal.NewFromInt(400)}))
	assert.Equal(t, "62,5 %", f.KPI(record.KPI{Display: record.DisplayPercentage, Value: decimal.RequireFromString("62.5")}))
	assert.Equal(t, "50 %", f.KPI(record.KPI{Display: record.DisplayPercentage, Value: decimal.NewFromInt(50)}))
	assert.Equal(t, "12.345", f.KPI(record.KPI{Display: record.DisplayCount, Value: decimal.NewFromInt(12345)}))
}

func TestParse(t *testing.T) {
	f, err := format.Parse("en-US", "USD")
	require.NoError(t, err)
	assert.Equal(t, "$ 10.00", f.Money(1000))

	_, err = format.Parse("en-US", "NOPE")
	assert.Error(t, err)
}

func TestDate(t *testing.T) {
	f := format.Default()
	d := time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "2024-02-05", f.Date(d))
	assert.Equal(t, "-", f.Date(time.Time{}))
	assert.Equal(t, "-", f.DatePtr(nil))
	assert.Equal(t, "05/02/2024", format.New(language.German, currency.USD, format.WithDateLayout("02/01/2006")).Date(d))
}

func TestStatus(t *testing.T) {
	f := format.New(language.English, currency.USD)

	assert.Equal(t, "Out For Delivery", f.Status(record.StatusOutForDelivery))
	assert.Equal(t, "Pending", f.Status(record.StatusPending))
	assert.Equal(t, "IN TRANSIT", f.StatusUpper(record.StatusInTransit))
}
