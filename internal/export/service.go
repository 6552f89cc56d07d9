// Package export renders record collections as Excel workbooks, PDF reports
// and plain text summaries.
package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/backoffice/internal/format"
	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

const (
	recordsSheet = "Records"
	summarySheet = "Summary"

	// numFmtMoney is the built-in "#,##0.00" format.
	numFmtMoney = 4
)

var headers = []string{
	"Reference", "Counterparty", "Company", "Category", "Status",
	"Amount", "Target", "Issue date", "Due date", "Description",
}

// Format is an export file type.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ParseFormat accepts "xlsx" or "pdf"; empty means xlsx.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatXLSX, nil
	case FormatXLSX, FormatPDF:
		return f, nil
	}

	return "", fmt.Errorf("unknown export format %q", s)
}

// FormatOf picks the format from a file name's extension, defaulting to xlsx.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return FormatPDF
	}

	return FormatXLSX
}

// ContentType is the MIME type of a file in format f.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}

	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Service writes exports using one formatter for every text cell.
type Service struct {
	fmt *format.Formatter
	now func() time.Time
}

func NewService(f *format.Formatter) *Service {
	if f == nil {
		f = format.Default()
	}

	return &Service{fmt: f, now: time.Now}
}

// Filename names an export for kind taken at now, e.g. "shipments_20240201.xlsx".
func Filename(kind record.Kind, f Format, now time.Time) string {
	return fmt.Sprintf("%ss_%s.%s", kind, now.Format("20060102"), f)
}

// Write renders records in format f.
func (s *Service) Write(kind record.Kind, f Format, records []*record.Record, w io.Writer) error {
	if f == FormatPDF {
		return s.WritePDF(kind, records, w)
	}

	return s.WriteXLSX(kind, records, w)
}

// WriteXLSX writes records to w as a workbook with a Records sheet and a
// Summary sheet holding the KPIs of the same records. Amounts are numeric
// cells in major units, statuses are upper case.
func (s *Service) WriteXLSX(kind record.Kind, records []*record.Record, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), recordsSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	money, err := f.NewStyle(&excelize.Style{NumFmt: numFmtMoney})
	if err != nil {
		return fmt.Errorf("creating amount style: %w", err)
	}

	if err := writeHeader(f, recordsSheet, headers, bold); err != nil {
		return err
	}

	for i, r := range records {
		row := i + 2

		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}

		if err := f.SetSheetRow(recordsSheet, cell, new(s.row(r))); err != nil {
			return fmt.Errorf("writing row %d: %w", row, err)
		}
	}

	if len(records) > 0 {
		// Amount and Target columns.
		last := len(records) + 1
		if err := f.SetCellStyle(recordsSheet, "F2", fmt.Sprintf("G%d", last), money); err != nil {
			return fmt.Errorf("styling amounts: %w", err)
		}
	}

	if err := s.writeSummary(f, kind, records, bold); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}

	return nil
}

func (s *Service) row(r *record.Record) []any {
	var target any
	if r.Target != nil {
		target = major(*r.Target)
	}

	var due any
	if r.DueDate != nil {
		due = r.DueDate.Format(time.DateOnly)
	}

	return []any{
		r.Reference,
		r.Counterparty,
		r.Company,
		r.Category,
		s.fmt.StatusUpper(r.Status),
		major(r.Amount),
		target,
		r.IssueDate.Format(time.DateOnly),
		due,
		r.Description,
	}
}

func major(cents int64) float64 {
	return decimal.New(cents, -2).InexactFloat64()
}

func writeHeader(f *excelize.File, sheet string, names []string, style int) error {
	for i, name := range names {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}

		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("writing header %q: %w", name, err)
		}
	}

	last, err := excelize.ColumnNumberToName(len(names))
	if err != nil {
		return err
	}

	return f.SetCellStyle(sheet, "A1", last+"1", style)
}

func (s *Service) writeSummary(f *excelize.File, kind record.Kind, records []*record.Record, bold int) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("creating summary sheet: %w", err)
	}

	if err := writeHeader(f, summarySheet, []string{"Metric", "Value"}, bold); err != nil {
		return err
	}

	for i, k := range record.ComputeAggregates(kind, records) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		if err := f.SetSheetRow(summarySheet, cell, &[]any{k.Label, s.fmt.KPI(k)}); err != nil {
			return fmt.Errorf("writing kpi %s: %w", k.Key, err)
		}
	}

	return nil
}

// Summary renders KPIs as "Label: value" lines under a title naming kind.
func (s *Service) Summary(kind record.Kind, kpis []record.KPI) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s summary\n", kind)

	width := 0
	for _, k := range kpis {
		width = max(width, len([]rune(k.Label)))
	}

	for _, k := range kpis {
		fmt.Fprintf(&sb, "  %-*s  %s\n", width, k.Label, s.fmt.KPI(k))
	}

	return sb.String()
}
