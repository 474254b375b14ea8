package money

import (
	"errors"
	"fmt"
)

// Arithmetic failures carry no payload beyond the kind itself.
var (
	ErrAddOverflow       = errors.New("cannot add other amount as the sum would be out of supported range")
	ErrSubtractUnderflow = errors.New("cannot subtract other amount as the difference would be negative")
)

// FractionalOutOfRangeError indicates a fractional part >= 10^Precision.
type FractionalOutOfRangeError struct {
	Fractional uint64
}

func (e FractionalOutOfRangeError) Error() string {
	return fmt.Sprintf("cannot represent amount: fractional part %d is out of supported range", e.Fractional)
}

// IntegerOverflowError indicates an integer part that overflows when scaled.
type IntegerOverflowError struct {
	Integer uint64
}

func (e IntegerOverflowError) Error() string {
	return fmt.Sprintf("cannot represent amount: integer part %d is out of supported range", e.Integer)
}

// CombineOverflowError indicates that adding the fractional part to the
// scaled integer part overflows.
type CombineOverflowError struct {
	Integer    uint64
	Fractional uint64
}

func (e CombineOverflowError) Error() string {
	return fmt.Sprintf("cannot represent amount: integer %d plus fractional %d is out of supported range", e.Integer, e.Fractional)
}

// ParseIntegerError indicates an unparsable integer part.
type ParseIntegerError struct {
	Input string
	Err   error
}

func (e ParseIntegerError) Error() string {
	return fmt.Sprintf("cannot parse integer part of amount %q: %v", e.Input, e.Err)
}

func (e ParseIntegerError) Unwrap() error { return e.Err }

// ParseFractionalError indicates an unparsable fractional part.
type ParseFractionalError struct {
	Input string
	Err   error
}

func (e ParseFractionalError) Error() string {
	return fmt.Sprintf("cannot parse fractional part of amount %q: %v", e.Input, e.Err)
}

func (e ParseFractionalError) Unwrap() error { return e.Err }

// FractionalTooLongError indicates fractional input longer than Precision
// digits, which is rejected rather than rounded.
type FractionalTooLongError struct {
	Fractional string
}

func (e FractionalTooLongError) Error() string {
	return fmt.Sprintf("cannot parse amount: fractional part %q is longer than %d digits", e.Fractional, Precision)
}
