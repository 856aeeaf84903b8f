package service

import (
	"errors"
	"fmt"

	"github.com/ctlabs/taskrouter/internal/domain"
	"github.com/ctlabs/taskrouter/internal/store"
)

// ErrTaskFinished indicates an attempt to change a task that has already
// reached a terminal status.
var ErrTaskFinished = errors.New("task already finished")

// TaskServiceError wraps unexpected failures from the task service.
type TaskServiceError struct {
	// Operation is the operation that failed (e.g., "submit", "finish")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError wraps err with operation context. Errors the API layer
// classifies (missing or malformed records, validation failures) are returned
// unchanged.
func NewTaskServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, store.ErrTaskNotFound) ||
		errors.Is(err, store.ErrMalformedRecord) ||
		errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, ErrTaskFinished) {
		return err
	}

	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
