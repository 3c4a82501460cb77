// Package money provides standardized currency handling across the application.
// All monetary amounts are stored as decimal.Decimal to avoid floating-point errors.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CentPlaces is the number of fraction digits every persisted amount carries.
const CentPlaces = 2

// Zero is a zero amount, rounded to cents.
var Zero = decimal.Zero

// RoundCents rounds an amount to two fraction digits, half-up.
// Applied on every persisted write and every derived read so that repeated
// additions never accumulate sub-cent drift.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(CentPlaces)
}

// ParseAmount parses a user-supplied amount string into a cent-rounded decimal.
// Accepts an optional leading currency symbol and surrounding whitespace.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "€")
	s = strings.TrimPrefix(s, "$")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return RoundCents(d), nil
}

// Format renders an amount as a euro string with two fraction digits.
func Format(d decimal.Decimal) string {
	return "€" + d.StringFixed(CentPlaces)
}

// IsPositive reports whether the amount is strictly greater than zero.
func IsPositive(d decimal.Decimal) bool {
	return d.GreaterThan(decimal.Zero)
}
