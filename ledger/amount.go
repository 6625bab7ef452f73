package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amounts and balances carry 2 decimal places, exchange rates 4.
// Quantizing at the point a derived value is stored keeps reversal
// decimal-exact: the inverse delta is computed from the stored (already
// rounded) figure, never re-derived.

const (
	moneyPlaces = 2
	ratePlaces  = 4
)

// RoundMoney quantizes a monetary amount to 2 decimal places.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}

// RoundRate quantizes an exchange rate to 4 decimal places.
func RoundRate(d decimal.Decimal) decimal.Decimal {
	return d.Round(ratePlaces)
}

// ParseAmount converts a decimal string to a Decimal.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

// MustParseAmount converts a decimal string to a Decimal and panics on error.
// Use only in tests or when you're certain the value is valid.
func MustParseAmount(s string) decimal.Decimal {
	d, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return d
}
