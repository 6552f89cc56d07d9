package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

const (
	pdfRowHeight = 6.0
	pdfMargin    = 12.0
)

type pdfColumn struct {
	title string
	width float64
	align string
	value func(s *Service, r *record.Record) string
}

var pdfColumns = []pdfColumn{
	{"Reference", 28, "L", func(_ *Service, r *record.Record) string { return r.Reference }},
	{"Counterparty", 52, "L", func(_ *Service, r *record.Record) string { return r.Counterparty }},
	{"Status", 30, "L", func(s *Service, r *record.Record) string { return s.fmt.StatusUpper(r.Status) }},
	{"Amount", 32, "R", func(s *Service, r *record.Record) string { return s.fmt.Money(r.Amount) }},
	{"Issued", 22, "C", func(s *Service, r *record.Record) string { return s.fmt.Date(r.IssueDate) }},
	{"Due", 22, "C", func(s *Service, r *record.Record) string { return s.fmt.DatePtr(r.DueDate) }},
}

// WritePDF writes a report with the KPI summary of records followed by a
// table of the records themselves. Core fonts only cover Windows-1252, so
// text is transliterated into it.
func (s *Service) WritePDF(kind record.Kind, records []*record.Record, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.AliasNbPages("")

	title := reportTitle(kind)
	pdf.SetTitle(title, false)
	pdf.SetCreator("backoffice", false)
	pdf.SetCreationDate(s.now())

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-pdfMargin)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("Generated %s, %d records", s.fmt.Date(s.now()), len(records))), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	s.pdfSummary(pdf, tr, record.ComputeAggregates(kind, records))
	pdf.Ln(6)

	s.pdfTable(pdf, tr, records)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}

	return nil
}

func reportTitle(kind record.Kind) string {
	name := string(kind) + "s"

	return strings.ToUpper(name[:1]) + name[1:] + " report"
}

func (s *Service) pdfSummary(pdf *fpdf.Fpdf, tr func(string) string, kpis []record.KPI) {
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Summary", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)

	for _, k := range kpis {
		pdf.CellFormat(70, pdfRowHeight, tr(k.Label), "B", 0, "L", false, 0, "")
		pdf.CellFormat(50, pdfRowHeight, tr(s.fmt.KPI(k)), "B", 1, "R", false, 0, "")
	}
}

func (s *Service) pdfTable(pdf *fpdf.Fpdf, tr func(string) string, records []*record.Record) {
	_, pageHeight := pdf.GetPageSize()
	limit := pageHeight - 2*pdfMargin

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)

		for _, c := range pdfColumns {
			pdf.CellFormat(c.width, pdfRowHeight+1, c.title, "1", 0, c.align, true, 0, "")
		}

		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 8)
	}

	header()

	for _, r := range records {
		if pdf.GetY()+pdfRowHeight > limit {
			pdf.AddPage()
			header()
		}

		for _, c := range pdfColumns {
			pdf.CellFormat(c.width, pdfRowHeight, tr(clip(c.value(s, r), c.width)), "1", 0, c.align, false, 0, "")
		}

		pdf.Ln(-1)
	}
}

// clip shortens text that would overflow a column of width mm at 8pt.
func clip(s string, width float64) string {
	maxRunes := int(width / 1.6)

	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}

	return string(runes[:maxRunes-1]) + "…"
}
