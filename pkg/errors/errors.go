// Package errors provides structured error types for flowpen.
//
// Error codes give the engine's non-fatal failures a machine-readable
// category so that the CLI, the HTTP server and tests can tell them apart:
//
//   - referential: NOT_FOUND, TYPE_MISMATCH, UNSUPPORTED
//   - input: INVALID_*
//   - infrastructure: NETWORK_ERROR, TIMEOUT, INTERNAL_ERROR
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNotFound, "element %s does not exist", id)
//	if errors.Is(err, errors.ErrCodeNotFound) {
//	    // Handle missing element
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidManifest, origErr, "decode %s", path)
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
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidAction   Code = "INVALID_ACTION"
	ErrCodeInvalidManifest Code = "INVALID_MANIFEST"
	ErrCodeInvalidLibrary  Code = "INVALID_LIBRARY"
	ErrCodeInvalidPatch    Code = "INVALID_PATCH"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	// Referential errors
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeTypeMismatch  Code = "TYPE_MISMATCH"
	ErrCodeGraphNotFound Code = "GRAPH_NOT_FOUND"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

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

// IsReferential reports whether err is a referential engine error: an
// operation on a missing element or on an element of the wrong variant.
func IsReferential(err error) bool {
	switch GetCode(err) {
	case ErrCodeNotFound, ErrCodeTypeMismatch, ErrCodeUnsupported:
		return true
	}
	return false
}
