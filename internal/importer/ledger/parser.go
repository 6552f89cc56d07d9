// Package ledger parses spreadsheet exports of business records (payments,
// quotes, shipments and the rest) into create parameters.
package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	enc "github.com/MrJamesThe3rd/backoffice/internal/encoding"
	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

var dateLayouts = []string{"02/01/2006", "2006-01-02", "02-01-2006"}

// Parser reads CSV exports. The header row is found by its column names,
// so preamble lines above it are skipped.
type Parser struct {
	comma    rune
	european bool
	// serialDates accepts spreadsheet day serials such as "45323".
	serialDates bool
}

// NewEuropean parses ";"-separated files with "1.234,56" amounts.
func NewEuropean() *Parser {
	return &Parser{comma: ';', european: true}
}

// NewStandard parses ","-separated files with "1,234.56" amounts.
func NewStandard() *Parser {
	return &Parser{comma: ','}
}

// NewSpreadsheet parses rows already read from a workbook, where amounts are
// raw numbers and dates may be day serials.
func NewSpreadsheet() *Parser {
	return &Parser{serialDates: true}
}

func (p *Parser) Parse(r io.Reader) ([]record.CreateParams, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.Comma = p.comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	return p.ParseRows(rows)
}

// ParseRows finds the header among rows and parses everything below it.
func (p *Parser) ParseRows(rows [][]string) ([]record.CreateParams, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	cols, headerIdx, ok := detectHeader(rows)
	if !ok {
		return nil, fmt.Errorf("no header row found: expected at least counterparty and amount columns")
	}

	return p.parseRows(cols, rows[headerIdx+1:], headerIdx+1)
}

func (p *Parser) parseRows(cols columns, rows [][]string, headerRowNum int) ([]record.CreateParams, error) {
	var params []record.CreateParams

	for i, row := range rows {
		rowNum := headerRowNum + i + 1

		if blank(row) {
			continue
		}

		cp, err := p.parseRow(cols, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		params = append(params, cp)
	}

	return params, nil
}

func (p *Parser) parseRow(cols columns, row []string) (record.CreateParams, error) {
	get := func(f field) string {
		idx, ok := cols[f]
		if !ok {
			return ""
		}

		return cellValue(row, idx)
	}

	cp := record.CreateParams{
		Reference:    get(fieldReference),
		Counterparty: get(fieldCounterparty),
		Company:      get(fieldCompany),
		Category:     strings.ToLower(get(fieldCategory)),
		Description:  get(fieldDescription),
	}

	if cp.Counterparty == "" {
		return cp, fmt.Errorf("missing counterparty")
	}

	amount, err := parseAmount(get(fieldAmount), p.european)
	if err != nil {
		return cp, err
	}

	if amount < 0 {
		return cp, fmt.Errorf("negative amount %q", get(fieldAmount))
	}

	cp.Amount = amount

	if s := get(fieldTarget); s != "" {
		target, err := parseAmount(s, p.european)
		if err != nil {
			return cp, fmt.Errorf("target: %w", err)
		}

		cp.Target = &target
	}

	if s := get(fieldStatus); s != "" {
		cp.Status = normalizeStatus(s)
	}

	if s := get(fieldIssueDate); s != "" {
		d, err := p.parseDate(s)
		if err != nil {
			return cp, err
		}

		cp.IssueDate = d
	}

	if s := get(fieldDueDate); s != "" {
		d, err := p.parseDate(s)
		if err != nil {
			return cp, err
		}

		cp.DueDate = &d
	}

	return cp, nil
}

func (p *Parser) parseDate(s string) (time.Time, error) {
	if p.serialDates {
		if serial, err := strconv.ParseFloat(s, 64); err == nil {
			return excelize.ExcelDateToTime(serial, false)
		}
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}
