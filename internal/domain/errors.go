package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")
)

// FieldError names one offending field and the rule it broke.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError is returned when a payload fails field or cross-field
// rules. It is raised before any store is touched.
type ValidationError struct {
	Fields []FieldError
}

// Error implements the error interface for ValidationError
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Details(), "; "))
}

// Is allows matching with errors.Is regardless of field contents
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// Details renders the per-field messages in the wire format.
func (e *ValidationError) Details() []string {
	details := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		details = append(details, fmt.Sprintf("Field '%s': %s", f.Field, strings.ToLower(f.Message)))
	}
	return details
}

// NewValidationError creates a ValidationError for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
