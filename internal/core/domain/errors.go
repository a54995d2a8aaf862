package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation    = errors.New("validation failed")
	ErrStateConflict = errors.New("state conflict")
	ErrCapacity      = errors.New("insufficient capacity")

	// ErrConfiguration marks faults that need operator attention rather than
	// a different user input.
	ErrConfiguration = errors.New("configuration fault")
)

var (
	ErrEmptyAttendeeList    = validationError("At least one attendee is required")
	ErrPricingNotConfigured = &Error{
		kind:     ErrConfiguration,
		Messages: []string{"event is marked as paid but has no ticket pricing configured"},
	}
)

// Error is a business rule failure carrying one or more user-facing messages.
type Error struct {
	kind     error
	Messages []string
}

func (e *Error) Error() string {
	return strings.Join(e.Messages, "; ")
}

func (e *Error) Unwrap() error {
	return e.kind
}

func validationError(msgs ...string) *Error {
	return &Error{kind: ErrValidation, Messages: msgs}
}

func validationErrorf(format string, args ...any) *Error {
	return validationError(fmt.Sprintf(format, args...))
}

func conflictError(format string, args ...any) *Error {
	return &Error{kind: ErrStateConflict, Messages: []string{fmt.Sprintf(format, args...)}}
}

func capacityError(format string, args ...any) *Error {
	return &Error{kind: ErrCapacity, Messages: []string{fmt.Sprintf(format, args...)}}
}

// Messages returns the user-facing messages of err. Errors that are not
// domain errors yield their Error() text.
func Messages(err error) []string {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return append([]string(nil), de.Messages...)
	}
	return []string{err.Error()}
}
