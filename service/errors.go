package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a request or signer id does not resolve
	ErrNotFound = errors.New("not found")
	// ErrValidation is matched by every *ValidationError
	ErrValidation = errors.New("validation failed")
	// ErrSuggestionUnavailable wraps any failure of the text-suggestion service
	ErrSuggestionUnavailable = errors.New("message suggestion unavailable")
)

// ValidationError describes rejected input. The store is unchanged when it is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
