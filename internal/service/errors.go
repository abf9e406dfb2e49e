package service

import (
	"errors"
	"fmt"
)

// Common service errors.
// Callers use errors.Is/errors.As to check for specific conditions and the
// API layer maps them to HTTP status codes. Validation failures are returned
// as *domain.ValidationError rather than a service sentinel.
var (
	// ErrInvalidPagination indicates a page or size outside the accepted range.
	ErrInvalidPagination = errors.New("invalid pagination")

	// ErrInvalidSort indicates an unknown sort field or direction.
	ErrInvalidSort = errors.New("invalid sort")
)

// TaskServiceError is a custom error type for unexpected task service failures.
// It wraps the underlying store error; the API layer reports it as a 500.
type TaskServiceError struct {
	Operation string
	Message   string
	Err       error
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

// NewTaskServiceError creates a new TaskServiceError.
func NewTaskServiceError(operation, message string, err error) *TaskServiceError {
	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
