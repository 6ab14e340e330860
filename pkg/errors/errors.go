// Package errors provides structured error types for folio.
//
// Every failure that crosses a package boundary (export, contact, config,
// HTTP) carries a machine-readable Code so callers can map it to an exit
// status, an HTTP status or a user notification without string matching.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNoTemplate, "unknown template %q", name)
//	if errors.Is(err, errors.ErrCodeNoTemplate) {
//	    // report without attempting capture
//	}
//
//	err = errors.Wrap(errors.ErrCodeCapture, origErr, "failed to rasterize %s", name)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Export pipeline errors
	ErrCodeCapture          Code = "CAPTURE_FAILED"
	ErrCodeEncoding         Code = "ENCODING_FAILED"
	ErrCodeNoTemplate       Code = "NO_TEMPLATE"
	ErrCodeExportInProgress Code = "EXPORT_IN_PROGRESS"
	ErrCodeInvalidGeometry  Code = "INVALID_GEOMETRY"

	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidProfile Code = "INVALID_PROFILE"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"

	// Collaborator errors
	ErrCodeSendFailed Code = "SEND_FAILED"
	ErrCodeNotFound   Code = "NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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

// FieldErrors collects per-field validation messages, keyed by field name.
type FieldErrors map[string]string

// Error implements the error interface.
func (f FieldErrors) Error() string {
	if len(f) == 1 {
		for k, v := range f {
			return fmt.Sprintf("%s: %s", k, v)
		}
	}
	return fmt.Sprintf("%d invalid fields", len(f))
}

// Validation wraps field errors into an INVALID_INPUT error, or returns nil
// when there are none.
func Validation(fields FieldErrors) error {
	if len(fields) == 0 {
		return nil
	}
	return Wrap(ErrCodeInvalidInput, fields, "validation failed")
}

// Fields extracts FieldErrors from err's chain.
func Fields(err error) FieldErrors {
	var f FieldErrors
	if errors.As(err, &f) {
		return f
	}
	return nil
}
