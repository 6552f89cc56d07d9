package importer

import (
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/backoffice/internal/importer/ledger"
	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

type Service struct {
	importers map[Format]Importer
}

func NewService() *Service {
	return &Service{
		importers: map[Format]Importer{
			FormatLedger:   ledger.NewEuropean(),
			FormatStandard: ledger.NewStandard(),
			FormatXLSX:     &workbook{rows: ledger.NewSpreadsheet()},
		},
	}
}

// Import parses r in the given format and stamps every row with kind. An
// empty format means FormatLedger.
func (s *Service) Import(format Format, kind record.Kind, r io.Reader) ([]record.CreateParams, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %q", record.ErrInvalid, kind)
	}

	if format == "" {
		format = FormatLedger
	}

	imp, ok := s.importers[format]
	if !ok {
		return nil, fmt.Errorf("unknown format: %s", format)
	}

	params, err := imp.Parse(r)
	if err != nil {
		return nil, err
	}

	for i := range params {
		params[i].Kind = kind
	}

	return params, nil
}
