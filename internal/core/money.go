package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CentDigits is the number of fraction digits kept for every amount.
const CentDigits = 2

// SettleThreshold is the smallest net balance that still counts as a debt.
// Anything below it (in absolute value) is a full cancellation.
var SettleThreshold = Money{Cents: 1}

// MaxAmount caps a single entry at one billion euros, far enough below the
// int64 range that summing entries per pair cannot wrap.
var MaxAmount = Money{Cents: 100_000_000_000}

// ErrAmountTooLarge is returned for amounts above MaxAmount. It matches
// ErrInvalidAmount with errors.Is.
var ErrAmountTooLarge = fmt.Errorf("%w: above %s", ErrInvalidAmount, MaxAmount)

// ParseAmount converts a decimal string to Money with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding to the cent. Returns ErrInvalidAmount for invalid formats,
// signs and values that round to zero, and ErrAmountTooLarge above MaxAmount.
//
// Examples:
//
//	ParseAmount("12.34")  -> 1234 cents
//	ParseAmount("12,34")  -> 1234 cents
//	ParseAmount("12.345") -> 1235 cents (half-up)
//	ParseAmount("30.0")   -> 3000 cents
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	// decimal accepts exponents; amounts are plain digits only
	if strings.ContainsAny(s, "eE") {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Round(CentDigits).Shift(CentDigits)
	if cents.GreaterThan(decimal.NewFromInt(MaxAmount.Cents)) {
		return Money{}, ErrAmountTooLarge
	}
	m := Money{Cents: cents.IntPart()}
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

// String renders the amount with exactly two fraction digits, e.g. "30.00".
func (m Money) String() string {
	return decimal.New(m.Cents, -CentDigits).StringFixed(CentDigits)
}

// Validate accepts amounts from one cent up to MaxAmount.
func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	if m.Cents > MaxAmount.Cents {
		return ErrAmountTooLarge
	}
	return nil
}
