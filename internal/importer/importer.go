package importer

import (
	"io"

	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

// Format names a file layout accepted by the import endpoint.
type Format string

const (
	// FormatLedger is ";"-separated with "1.234,56" amounts, as exported by
	// the Spanish-locale spreadsheets.
	FormatLedger Format = "ledger"
	// FormatStandard is ","-separated with "1,234.56" amounts.
	FormatStandard Format = "standard"
	// FormatXLSX reads the first sheet of an Excel workbook.
	FormatXLSX Format = "xlsx"
)

type Importer interface {
	Parse(r io.Reader) ([]record.CreateParams, error)
}
