package core

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is the root of every validation failure raised by the
// calculation packages. Callers can match any of the specific errors below
// with errors.Is(err, ErrInvalidInput).
var ErrInvalidInput = errors.New("invalid input")

var (
	ErrInvalidAmount   = fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	ErrInvalidRate     = fmt.Errorf("%w: rate must not be negative", ErrInvalidInput)
	ErrInvalidTenure   = fmt.Errorf("%w: duration must be at least one month", ErrInvalidInput)
	ErrInvalidDate     = fmt.Errorf("%w: malformed date", ErrInvalidInput)
	ErrInvalidPeriod   = fmt.Errorf("%w: period end is before period start", ErrInvalidInput)
	ErrInvalidBrackets = fmt.Errorf("%w: brackets must be non-empty and ascending", ErrInvalidInput)
	ErrInvalidStatus   = fmt.Errorf("%w: unknown status", ErrInvalidInput)

	ErrEmptyDescription = fmt.Errorf("%w: empty description", ErrInvalidInput)
	ErrEmptyCategory    = fmt.Errorf("%w: empty category", ErrInvalidInput)
	ErrEmptyUser        = fmt.Errorf("%w: empty user id", ErrInvalidInput)
)

// ErrNotFound is returned by stores when a record does not exist.
var ErrNotFound = errors.New("not found")

// Invalidf builds an ad-hoc validation error that still matches ErrInvalidInput.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
