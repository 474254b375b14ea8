// Package money provides an exact fixed-point representation of monetary
// amounts. Values are non-negative scaled uint64 integers with four decimal
// digits of precision; every arithmetic operation is overflow-checked and
// returns a new value instead of mutating shared state.
package money

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Precision is the number of fixed decimal digits represented exactly.
const Precision = 4

// base is the scale factor 10^Precision.
const base uint64 = 10_000

// separator splits the integer and fractional parts in textual form.
const separator = "."

// Money is an exact monetary amount. The zero value is 0.0000.
type Money struct {
	value uint64
}

// Zero returns the zero amount.
func Zero() Money {
	return Money{}
}

// New builds an amount from an integer part and a fractional part expressed
// in 10^-Precision units (e.g. New(1, 5000) is 1.5000).
func New(integer, fractional uint64) (Money, error) {
	if fractional >= base {
		return Money{}, FractionalOutOfRangeError{Fractional: fractional}
	}

	if integer > math.MaxUint64/base {
		return Money{}, IntegerOverflowError{Integer: integer}
	}
	value := integer * base

	if value > math.MaxUint64-fractional {
		return Money{}, CombineOverflowError{Integer: integer, Fractional: fractional}
	}

	return Money{value: value + fractional}, nil
}

// Max returns the largest representable amount. Goes through New so the
// range checks are never bypassed.
func Max() Money {
	m, err := New(math.MaxUint64/base, math.MaxUint64%base)
	if err != nil {
		panic(fmt.Sprintf("money: max value must be constructible: %v", err))
	}
	return m
}

// Parse converts the textual form "INTEGER[.FRACTION]" into an amount. The
// fractional part may be omitted (treated as zero) and must not exceed
// Precision digits; shorter input is right-padded with zeros, never rounded.
func Parse(input string) (Money, error) {
	intText, fracText, hasFraction := strings.Cut(input, separator)

	integer, err := strconv.ParseUint(intText, 10, 64)
	if err != nil {
		return Money{}, ParseIntegerError{Input: intText, Err: err}
	}

	if !hasFraction {
		fracText = "0"
	}
	if len(fracText) > Precision {
		return Money{}, FractionalTooLongError{Fractional: fracText}
	}
	fracText += strings.Repeat("0", Precision-len(fracText))

	fractional, err := strconv.ParseUint(fracText, 10, 64)
	if err != nil {
		return Money{}, ParseFractionalError{Input: fracText, Err: err}
	}

	return New(integer, fractional)
}

// Add returns the checked sum of m and other.
func (m Money) Add(other Money) (Money, error) {
	if m.value > math.MaxUint64-other.value {
		return Money{}, ErrAddOverflow
	}
	return Money{value: m.value + other.value}, nil
}

// Sub returns the checked difference of m and other. Fails when other
// exceeds m since a negative amount is not representable.
func (m Money) Sub(other Money) (Money, error) {
	if other.value > m.value {
		return Money{}, ErrSubtractUnderflow
	}
	return Money{value: m.value - other.value}, nil
}

// Less reports whether m is strictly smaller than other.
func (m Money) Less(other Money) bool {
	return m.value < other.value
}

// IsZero reports whether m is the zero amount.
func (m Money) IsZero() bool {
	return m.value == 0
}

// String renders the amount with the fractional part always padded to
// Precision digits, e.g. "1.5000". The output round-trips through Parse.
func (m Money) String() string {
	return fmt.Sprintf("%d%s%0*d", m.value/base, separator, Precision, m.value%base)
}
