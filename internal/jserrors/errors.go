// Package jserrors defines the typed error taxonomy for the refactoring
// engine. Classification failures (parse errors) are recovered internally by
// the fallback classifier and never travel through this package; everything
// here is surfaced to the caller as part of a structured report.
package jserrors

import (
	"errors"
	"fmt"
)

// ErrorType categorizes engine failures.
type ErrorType string

// Ambiguous targets and absent symbols are not errors: they surface as
// zero-edit diagnostics in the plan, so a dry run shows them the same way
// an apply would.
const (
	// ErrorTypeStale means a file changed between index build and edit
	// application. That file's edits are dropped, not retried.
	ErrorTypeStale ErrorType = "stale_input"

	// ErrorTypeIO covers read/write failures, surfaced per file.
	ErrorTypeIO ErrorType = "io"

	// ErrorTypeInvalidInput covers malformed operation arguments, e.g. a new
	// name that is not a legal JS identifier.
	ErrorTypeInvalidInput ErrorType = "invalid_input"

	ErrorTypeInternal ErrorType = "internal"
)

// EngineError carries operation context alongside the underlying cause.
type EngineError struct {
	Type       ErrorType
	Operation  string
	FilePath   string
	Underlying error
}

// New creates an engine error for the given operation.
func New(t ErrorType, op string, err error) *EngineError {
	return &EngineError{Type: t, Operation: op, Underlying: err}
}

// WithFile adds file information to the error.
func (e *EngineError) WithFile(path string) *EngineError {
	e.FilePath = path
	return e
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	if e.FilePath != "" {
		return fmt.Sprintf("%s: %s failed for %s: %v", e.Type, e.Operation, e.FilePath, e.Underlying)
	}
	return fmt.Sprintf("%s: %s failed: %v", e.Type, e.Operation, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *EngineError) Unwrap() error {
	return e.Underlying
}

// IsType reports whether err is an EngineError of the given type anywhere
// in its chain.
func IsType(err error, t ErrorType) bool {
	var ee *EngineError
	return errors.As(err, &ee) && ee.Type == t
}

// Stalef builds a StaleInput error for a file.
func Stalef(op, path string, format string, args ...interface{}) *EngineError {
	return New(ErrorTypeStale, op, fmt.Errorf(format, args...)).WithFile(path)
}
