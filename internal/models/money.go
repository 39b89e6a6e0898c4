package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amounts are persisted as int64 minor units (cents) and exposed as
// decimal.Decimal with two fractional digits.

var hundred = decimal.NewFromInt(100)

// FromCents converts minor units to a two-place decimal amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// ToCents converts a decimal amount to minor units, rounding half away from
// zero to two places first.
func ToCents(amount decimal.Decimal) int64 {
	return amount.Round(2).Shift(2).IntPart()
}

// ParseAmount parses a decimal amount string such as "120.50".
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount is empty")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount string '%s': %w", s, err)
	}
	return d.Round(2), nil
}

// FormatCents renders minor units with exactly two decimals.
func FormatCents(cents int64) string {
	return FromCents(cents).StringFixed(2)
}

// Percentage returns numerator/denominator*100 rounded half-up to an integer
// and clamped to [0, 100]. A denominator of zero or less yields 0.
func Percentage(numerator, denominator int64) int {
	if denominator <= 0 {
		return 0
	}
	p := decimal.NewFromInt(numerator).Mul(hundred).Div(decimal.NewFromInt(denominator)).Round(0).IntPart()
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return int(p)
}

// Money is an amount in minor units that renders as a fixed two-decimal
// string in JSON and YAML output.
type Money int64

// Decimal returns the amount as a two-place decimal.
func (m Money) Decimal() decimal.Decimal { return FromCents(int64(m)) }

// String implements fmt.Stringer.
func (m Money) String() string { return FormatCents(int64(m)) }

// MarshalJSON renders the amount as a quoted decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts a quoted or bare decimal amount.
func (m *Money) UnmarshalJSON(data []byte) error {
	d, err := ParseAmount(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*m = Money(ToCents(d))
	return nil
}

// MarshalYAML renders the amount as a decimal string.
func (m Money) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}
