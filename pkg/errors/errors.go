package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Contract errors
	ErrorTypeNotImplemented ErrorType = "NOT_IMPLEMENTED"
	ErrorTypeValidation     ErrorType = "VALIDATION"

	// Graph errors
	ErrorTypeInvalidReference  ErrorType = "INVALID_REFERENCE"
	ErrorTypeInconsistentGraph ErrorType = "INCONSISTENT_GRAPH"

	// Action errors
	ErrorTypeActionFailure ErrorType = "ACTION_FAILURE"

	// Infrastructure errors
	ErrorTypeDatabase ErrorType = "DATABASE"
)

// AppError represents an application-specific error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails adds error details
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// captureStackTrace captures the current stack trace
func captureStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	stack := ""
	for {
		frame, more := frames.Next()
		stack += fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return stack
}

// Constructor functions for common error types

// NewNotImplementedError signals a backend contract method invoked without a
// concrete override. This is fatal: the backend is misconfigured or incomplete.
func NewNotImplementedError(method string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotImplemented,
		Message:    fmt.Sprintf("backend method %s is not implemented", method),
		StackTrace: captureStackTrace(),
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		StackTrace: captureStackTrace(),
	}
}

// NewInvalidReferenceError signals an operation on an entity id with no
// backend record
func NewInvalidReferenceError(id string) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidReference,
		Message:    fmt.Sprintf("no entity with id %s", id),
		StackTrace: captureStackTrace(),
	}
}

// NewInconsistentGraphError signals a relationship that disagrees with backend
// state, e.g. an edge referencing a missing endpoint. Treated as a programming
// error, not a recoverable condition.
func NewInconsistentGraphError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInconsistentGraph,
		Message:    message,
		StackTrace: captureStackTrace(),
	}
}

// NewActionFailureError wraps a failure that occurred while performing an action
func NewActionFailureError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeActionFailure,
		Message:    message,
		Cause:      cause,
		StackTrace: captureStackTrace(),
	}
}

// NewDatabaseError wraps a storage engine failure
func NewDatabaseError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeDatabase,
		Message:    message,
		Cause:      cause,
		StackTrace: captureStackTrace(),
	}
}

// Type check helpers

// IsType checks whether err is an AppError of the given type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// IsNotImplemented checks if the error is a NotImplemented error
func IsNotImplemented(err error) bool {
	return IsType(err, ErrorTypeNotImplemented)
}

// IsInvalidReference checks if the error is an InvalidReference error
func IsInvalidReference(err error) bool {
	return IsType(err, ErrorTypeInvalidReference)
}

// IsInconsistentGraph checks if the error is an InconsistentGraph error
func IsInconsistentGraph(err error) bool {
	return IsType(err, ErrorTypeInconsistentGraph)
}

// IsActionFailure checks if the error is an ActionFailure error
func IsActionFailure(err error) bool {
	return IsType(err, ErrorTypeActionFailure)
}

// IsValidation checks if the error is a Validation error
func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}
