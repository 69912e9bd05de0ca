package tracker

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a task or project does not exist or belongs to
// another user. The two cases are never told apart.
var ErrNotFound = errors.New("not found")

// ErrDataAccess marks failures of the underlying store. The store's own error
// is wrapped alongside it.
var ErrDataAccess = errors.New("data access failure")

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func dataAccess(op string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", op, ErrDataAccess, err)
}
