package importer

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/backoffice/internal/importer/ledger"
	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

var errEmptyWorkbook = errors.New("workbook has no sheets")

// workbook reads the first sheet of an XLSX file and hands its rows to the
// ledger header detection.
type workbook struct {
	rows *ledger.Parser
}

func (w *workbook) Parse(r io.Reader) ([]record.CreateParams, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errEmptyWorkbook
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}

	return w.rows.ParseRows(rows)
}
