package money

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidAmount = errors.New("invalid amount")

// ToCents converts a decimal amount (like 12.34) to cents as int64 safely.
// All balances and ledger amounts are stored in cents; floats exist only at
// the API boundary.
func ToCents(amount float64) (int64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, ErrInvalidAmount
	}
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	// int64 max ~9e18 cents => ~9e16 whole units
	if amount > 9e16 {
		return 0, fmt.Errorf("%w: too large", ErrInvalidAmount)
	}
	cents := int64(math.Round(amount * 100.0))
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// FormatCents renders cents as a plain decimal string without going through
// floats, e.g. 1234 -> "12.34".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
