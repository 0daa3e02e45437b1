package domain

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid submission input")
	ErrUnauthenticated = errors.New("please login first to submit the form")
)

// ValidationError carries the user-facing message for the first failing field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap lets callers match any validation failure with errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
