package importer_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/backoffice/internal/importer"
	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

func TestService_Import(t *testing.T) {
	type testCase struct {
		name    string
		format  importer.Format
		kind    record.Kind
		csv     string
		wantLen int
		wantErr bool
	}

	tests := []testCase{
		{name: "DefaultFormat", kind: record.KindExpense, csv: "Proveedor;Monto\nTextiles;4.500,00\n", wantLen: 1},
		{name: "Standard", format: importer.FormatStandard, kind: record.KindPayment, csv: "counterparty,amount\nAna,1.50\nLuis,2\n", wantLen: 2},
		{name: "UnknownFormat", format: "xls", kind: record.KindPayment, csv: "", wantErr: true},
		{name: "UnknownKind", kind: "invoice", csv: "", wantErr: true},
	}

	svc := importer.NewService()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := svc.Import(tt.format, tt.kind, strings.NewReader(tt.csv))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.Len(t, params, tt.wantLen)

			for _, p := range params {
				assert.Equal(t, tt.kind, p.Kind)
			}
		})
	}
}

func TestService_Import_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Nómina Febrero"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"Referencia", "Empleado", "Estado", "Monto", "Fecha"}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]any{"NOM-01", "Lorena Gómez", "Pagado", 3300000.5, "2024-02-29"}))
	require.NoError(t, f.SetSheetRow(sheet, "A5", &[]any{"NOM-02", "Andrés Ruiz", "", 2100000, 45337}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	params, err := importer.NewService().Import(importer.FormatXLSX, record.KindPayroll, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, params, 2)

	assert.Equal(t, "NOM-01", params[0].Reference)
	assert.Equal(t, record.StatusPaid, params[0].Status)
	assert.Equal(t, int64(330000050), params[0].Amount)
	assert.Equal(t, 2024, params[0].IssueDate.Year())

	assert.Equal(t, "Andrés Ruiz", params[1].Counterparty)
	assert.Equal(t, int64(210000000), params[1].Amount)
	assert.Equal(t, time.February, params[1].IssueDate.Month())
	assert.Equal(t, 15, params[1].IssueDate.Day())
	assert.Equal(t, record.KindPayroll, params[1].Kind)
}

func TestService_Import_XLSXGarbage(t *testing.T) {
	_, err := importer.NewService().Import(importer.FormatXLSX, record.KindPayroll, strings.NewReader("not a zip"))
	assert.Error(t, err)
}
