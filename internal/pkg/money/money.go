// Package money handles currency amounts as integer minor units (cents).
package money

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

// MaxNumeric10 is the largest amount a NUMERIC(10, 2) column holds.
const MaxNumeric10 Amount = 99_999_999_99

var decimalPattern = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrNegativeAmount = errors.New("amount must not be negative")
	ErrTooPrecise     = errors.New("amount has more than two decimal places")
	ErrOutOfRange     = fmt.Errorf("%w: out of range", ErrInvalidAmount)
)

// Amount is a currency amount in cents.
type Amount int64

// Dollars returns a whole-dollar amount expressed in cents.
func Dollars(d int64) Amount {
	return Amount(d * 100)
}

// Parse converts a plain decimal string such as "596", "596.5" or "596.00"
// to cents. Fractions, exponents and hex are rejected.
func Parse(s string) (Amount, error) {
	trimmed := strings.TrimSpace(s)
	if !decimalPattern.MatchString(trimmed) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	r, ok := new(big.Rat).SetString(trimmed)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if r.Sign() < 0 {
		return 0, ErrNegativeAmount
	}

	r.Mul(r, big.NewRat(100, 1))
	if !r.IsInt() {
		return 0, ErrTooPrecise
	}
	if !r.Num().IsInt64() {
		return 0, fmt.Errorf("%w: %q", ErrOutOfRange, s)
	}
	return Amount(r.Num().Int64()), nil
}

// ParseMax is Parse with an upper bound, usually a column limit.
func ParseMax(s string, limit Amount) (Amount, error) {
	a, err := Parse(s)
	if err != nil {
		return 0, err
	}
	if a > limit {
		return 0, fmt.Errorf("%w: %q exceeds %s", ErrOutOfRange, s, limit)
	}
	return a, nil
}

// Cents returns the raw minor-unit value.
func (a Amount) Cents() int64 {
	return int64(a)
}

// String formats the amount with exactly two decimals, e.g. "596.00".
func (a Amount) String() string {
	v := int64(a)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// ParseNullable parses an optional database value; nil stays nil.
func ParseNullable(s *string) (*Amount, error) {
	if s == nil {
		return nil, nil
	}
	a, err := Parse(*s)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Nullable formats an optional amount for storage.
func Nullable(a *Amount) *string {
	if a == nil {
		return nil
	}
	s := a.String()
	return &s
}
