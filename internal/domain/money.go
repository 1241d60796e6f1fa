package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// amounts render as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// ParseMoney parses a non-empty decimal amount and rounds it to cents.
func ParseMoney(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, err
	}
	return d.Round(2), nil
}

// LineTotal is unit price times quantity, exact.
func LineTotal(unit decimal.Decimal, qty int) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(qty)))
}
