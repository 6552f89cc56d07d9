package export_test

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/backoffice/internal/export"
	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

func shipments() []*record.Record {
	due := time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)

	return []*record.Record{
		{
			ID:           uuid.New(),
			Kind:         record.KindShipment,
			Reference:    "GUIA-7781",
			Status:       record.StatusInTransit,
			Category:     "nacional",
			Amount:       1850050,
			Counterparty: "Carlos Pérez",
			Company:      "Servientrega",
			IssueDate:    time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			DueDate:      &due,
		},
		{
			ID:           uuid.New(),
			Kind:         record.KindShipment,
			Reference:    "GUIA-7782",
			Status:       record.StatusDelivered,
			Amount:       920000,
			Counterparty: "Ana Ruiz",
			IssueDate:    time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC),
			Description:  "Caja pequeña",
		},
	}
}

func TestService_WriteXLSX(t *testing.T) {
	var buf bytes.Buffer

	svc := export.NewService(nil)
	require.NoError(t, svc.WriteXLSX(record.KindShipment, shipments(), &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Records", "Summary"}, f.GetSheetList())

	rows, err := f.GetRows("Records", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Reference", rows[0][0])
	assert.Equal(t, "Description", rows[0][9])

	assert.Equal(t, "GUIA-7781", rows[1][0])
	assert.Equal(t, "IN TRANSIT", rows[1][4])
	assert.Equal(t, "18500.5", rows[1][5])
	assert.Equal(t, "2024-02-01", rows[1][7])
	assert.Equal(t, "2024-02-05", rows[1][8])

	assert.Equal(t, "DELIVERED", rows[2][4])
	assert.Equal(t, "Caja pequeña", rows[2][9])

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	require.Greater(t, len(summary), 1)
	assert.Equal(t, []string{"Metric", "Value"}, summary[0])

	var rate string
	for _, r := range summary[1:] {
		if r[0] == "Delivery rate" {
			rate = r[1]
		}
	}

	assert.Equal(t, "50 %", rate)
}

func TestService_WriteXLSX_Empty(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, export.NewService(nil).WriteXLSX(record.KindPayment, nil, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Records")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestService_Summary(t *testing.T) {
	kpis := []record.KPI{
		{Key: "pending_total", Label: "Pending", Display: record.DisplayCurrency, Value: decimal.RequireFromString("1234567.89")},
		{Key: "collection_rate", Label: "Collection rate", Display: record.DisplayPercentage, Value: decimal.RequireFromString("62.5")},
	}

	got := export.NewService(nil).Summary(record.KindReceivable, kpis)

	assert.Equal(t, "receivable summary\n"+
		"  Pending          $ 1.234.567,89\n"+
		"  Collection rate  62,5 %\n", got)
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, "shipments_20240201.xlsx", export.Filename(record.KindShipment, export.FormatXLSX, now))
	assert.Equal(t, "payments_20240201.pdf", export.Filename(record.KindPayment, export.FormatPDF, now))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    export.Format
		wantErr bool
	}{
		{in: "", want: export.FormatXLSX},
		{in: "xlsx", want: export.FormatXLSX},
		{in: " PDF ", want: export.FormatPDF},
		{in: "csv", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := export.ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, export.FormatPDF, export.FormatOf("out/Report.PDF"))
	assert.Equal(t, export.FormatXLSX, export.FormatOf("out/report.xlsx"))
	assert.Equal(t, "application/pdf", export.FormatPDF.ContentType())
}

var pageCount = regexp.MustCompile(`/Count (\d+)`)

func TestService_WritePDF(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, export.NewService(nil).Write(record.KindShipment, export.FormatPDF, shipments(), &buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "%PDF-"))
	assert.Contains(t, out, "(Shipments report)")

	m := pageCount.FindStringSubmatch(out)
	require.Len(t, m, 2)
	assert.Equal(t, "1", m[1])
}

func TestService_WritePDF_Paginates(t *testing.T) {
	recs := make([]*record.Record, 0, 120)
	for range 60 {
		recs = append(recs, shipments()...)
	}

	var buf bytes.Buffer
	require.NoError(t, export.NewService(nil).WritePDF(record.KindShipment, recs, &buf))

	m := pageCount.FindStringSubmatch(buf.String())
	require.Len(t, m, 2)

	pages, err := strconv.Atoi(m[1])
	require.NoError(t, err)
	assert.GreaterOrEqual(t, pages, 3)
}
