// Package errors provides structured error types for algotrace.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// Only configuration and programmer errors travel as Go errors. An algorithm
// that stops early (key not found, cycle detected, malformed expression)
// records that outcome as the final step of its log instead.
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input or configuration validation failures
//   - *NOT_FOUND: Resource not found
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidConfig, "degree must be >= 2, got %d", t)
//	if errors.Is(err, errors.ErrCodeInvalidConfig) {
//	    // Reject before running
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInternal, origErr, "encode trace %s", id)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidConfig    Code = "INVALID_CONFIG"
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidEngine    Code = "INVALID_ENGINE"
	ErrCodeInvalidOperation Code = "INVALID_OPERATION"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidPath      Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeTraceNotFound   Code = "TRACE_NOT_FOUND"
	ErrCodeStepOutOfRange  Code = "STEP_OUT_OF_RANGE"
	ErrCodeBackendNotFound Code = "BACKEND_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	var re *StepRangeError
	if errors.As(err, &re) {
		return re.Code() == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error carries no code.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var re *StepRangeError
	if errors.As(err, &re) {
		return re.Code()
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// StepRangeError reports a seek outside a step log.
type StepRangeError struct {
	Index int // Requested step
	Len   int // Number of steps in the log
}

// Error implements the error interface.
func (e *StepRangeError) Error() string {
	if e.Len == 0 {
		return fmt.Sprintf("step %d out of range: log is empty", e.Index)
	}
	return fmt.Sprintf("step %d out of range [0, %d)", e.Index, e.Len)
}

// Code returns the error code for this error type.
func (e *StepRangeError) Code() Code {
	return ErrCodeStepOutOfRange
}
