// Package money converts between wire-level decimal amounts and the int64
// minor units (cents) used everywhere inside the service.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// ParseCents parses a decimal amount string ("19.98") into cents. Values
// with sub-cent precision are rejected rather than rounded.
func ParseCents(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	scaled := d.Mul(decimal.NewFromInt(100))
	if !scaled.IsInteger() {
		return 0, ErrInvalidAmount
	}
	return scaled.IntPart(), nil
}

// FormatCents renders cents as a two-decimal string for gateway payloads.
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// WithinOneCent reports whether two amounts agree within one cent.
func WithinOneCent(a, b int64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff <= 1
}
