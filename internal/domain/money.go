package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Cents is a monetary amount in integer minor units.
// All prices and adjustments are carried as cents internally so that
// accumulation never drifts; decimal conversion happens only at the edges
// (admin input parsing, display formatting).
type Cents int64

// ParseAmount converts a decimal string such as "8.50" or "-1.25" into cents.
// More than two fractional digits is rejected rather than rounded, since
// catalog prices are authored by humans and a third digit is a typo.
func ParseAmount(s string) (Cents, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, Invalid("money.parse", fmt.Sprintf("invalid amount %q", s))
	}
	if d.Exponent() < -2 {
		return 0, Invalid("money.parse", fmt.Sprintf("amount %q has more than two decimal places", s))
	}
	return Cents(d.Shift(2).IntPart()), nil
}

// String formats the amount with two decimal places, e.g. "8.00" or "-1.50".
func (c Cents) String() string {
	return decimal.New(int64(c), -2).StringFixed(2)
}

// Decimal returns the amount as an exact decimal value.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}
