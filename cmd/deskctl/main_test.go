package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/backoffice/internal/export"
	"github.com/MrJamesThe3rd/backoffice/internal/importer"
	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

func TestParseKind(t *testing.T) {
	for in, want := range map[string]record.Kind{
		"payment":     record.KindPayment,
		"Payments":    record.KindPayment,
		" shipments ": record.KindShipment,
		"payroll":     record.KindPayroll,
		"commissions": record.KindCommission,
		"receivables": record.KindReceivable,
	} {
		got, err := parseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := parseKind("invoice")
	assert.ErrorIs(t, err, record.ErrInvalid)
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, importer.FormatXLSX, formatFor("nomina.XLSX", ""))
	assert.Equal(t, importer.FormatLedger, formatFor("gastos.csv", ""))
	assert.Equal(t, importer.FormatStandard, formatFor("gastos.csv", "standard"))
}

func TestExportFlags_Criteria(t *testing.T) {
	c, err := exportFlags{status: "paid", from: "2024-02-01", to: "2024-02-29", dateField: "due", sort: "amount_desc"}.criteria()
	require.NoError(t, err)

	assert.Equal(t, "paid", c.Status)
	assert.Equal(t, record.DateDue, c.DateField)
	assert.Equal(t, record.SortAmountDesc, c.Sort)
	require.NotNil(t, c.Start)
	require.NotNil(t, c.End)
	assert.Equal(t, time.Date(2024, 2, 29, 23, 59, 59, 999999999, time.UTC), *c.End)

	_, err = exportFlags{from: "01/02/2024"}.criteria()
	assert.Error(t, err)
}

func TestExportFlags_FileFormat(t *testing.T) {
	tests := []struct {
		name    string
		flags   exportFlags
		want    export.Format
		wantErr bool
	}{
		{name: "Default", flags: exportFlags{}, want: export.FormatXLSX},
		{name: "FromExtension", flags: exportFlags{output: "reports/pagos.pdf"}, want: export.FormatPDF},
		{name: "FlagWins", flags: exportFlags{output: "pagos.xlsx", format: "pdf"}, want: export.FormatPDF},
		{name: "Unknown", flags: exportFlags{format: "ods"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.flags.fileFormat()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
