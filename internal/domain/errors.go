package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidFormat is returned when data is not in the expected format.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidTaskType is returned for a task type outside the known set.
	ErrInvalidTaskType = errors.New("invalid task type")

	// ErrInvalidTaskStatus is returned for a task status outside the known set.
	ErrInvalidTaskStatus = errors.New("invalid task status")

	// ErrInvalidTransition is returned when a status change would move a task backwards.
	ErrInvalidTransition = errors.New("invalid task status transition")

	// ErrMissingUpload is returned when a task is submitted without an upload object.
	ErrMissingUpload = errors.New("task upload cannot be empty")
)

// ValidationError describes a single invalid field. It matches both
// ErrValidation and the more specific sentinel under errors.Is.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + " " + e.Message
}

func (e *ValidationError) Unwrap() []error {
	if e.Err == nil || e.Err == ErrValidation {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, e.Err}
}
