// Package errors provides structured error types for curricula.
//
// Core packages return plain sentinel errors. The pipeline, CLI and HTTP
// server translate them into coded errors so callers can branch on a
// machine-readable [Code] and show a message without the code prefix.
//
// # Error Codes
//
//   - INVALID_*: malformed input, unknown enum values, bad configuration
//   - CYCLE_DETECTED, SCHEDULE_DEADLOCK: the requisite graph cannot be
//     analyzed or scheduled
//   - NOT_FOUND: unknown course or resource
//   - INTERNAL_ERROR, UNSUPPORTED: everything else
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidSystem, "unknown system %q", s)
//	if errors.Is(err, errors.ErrCodeInvalidSystem) {
//	    // ...
//	}
//
//	err := errors.Wrap(errors.ErrCodeCycleDetected, origErr, "analyze %s", name)
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
	ErrCodeInvalidInput         Code = "INVALID_INPUT"
	ErrCodeInvalidFormat        Code = "INVALID_FORMAT"
	ErrCodeInvalidRequisiteType Code = "INVALID_REQUISITE_TYPE"
	ErrCodeInvalidSystem        Code = "INVALID_SYSTEM"
	ErrCodeInvalidConfig        Code = "INVALID_CONFIG"
	ErrCodeInvalidPath          Code = "INVALID_PATH"
	ErrCodeInvalidVisualization Code = "INVALID_VIZ_TYPE"

	// Graph errors
	ErrCodeCycleDetected    Code = "CYCLE_DETECTED"
	ErrCodeScheduleDeadlock Code = "SCHEDULE_DEADLOCK"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

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
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix for *Error
// values, and the error string as-is otherwise. A wrapped cause is appended
// after a colon so the user still sees what went wrong underneath.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return e.Message + ": " + e.Cause.Error()
		}
		return e.Message
	}
	return err.Error()
}

// IsInvalid reports whether err carries one of the INVALID_* codes.
func IsInvalid(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidRequisiteType,
		ErrCodeInvalidSystem, ErrCodeInvalidConfig, ErrCodeInvalidPath,
		ErrCodeInvalidVisualization:
		return true
	}
	return false
}
