package domain

import "fmt"

// SourceUnavailableError indicates the record source failed to return data.
type SourceUnavailableError struct {
	Message string
	Err     error
}

func (e *SourceUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ErrSourceUnavailable wraps err in a SourceUnavailableError with a formatted message.
func ErrSourceUnavailable(err error, format string, args ...interface{}) *SourceUnavailableError {
	return &SourceUnavailableError{Message: fmt.Sprintf(format, args...), Err: err}
}

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
