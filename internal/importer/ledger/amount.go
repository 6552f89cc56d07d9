package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// parseAmount parses a money cell into cents. It accepts an optional
// currency prefix or suffix ("$ 1.234,56", "1.234,56 COP"). With european
// set, "." groups thousands and "," is the decimal mark; otherwise the
// reverse.
func parseAmount(s string, european bool) (int64, error) {
	clean := strings.NewReplacer("$", "", "COP", "", "USD", "", "EUR", "", "€", "", " ", "", " ", "").Replace(s)
	if clean == "" {
		return 0, fmt.Errorf("empty amount %q", s)
	}

	if european {
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	} else {
		clean = strings.ReplaceAll(clean, ",", "")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}

	cents := d.Mul(hundred).Round(0)
	if !cents.BigInt().IsInt64() {
		return 0, fmt.Errorf("amount %q out of range", s)
	}

	return cents.IntPart(), nil
}
