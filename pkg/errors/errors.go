// Package errors provides structured error types for cloverquilt.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the TUI and the HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly status messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The codes map onto the failure kinds of the fill engine:
//   - LOAD_ERROR: the drawing could not be loaded (fatal to initialization)
//   - UNKNOWN_REGION / UNKNOWN_PATTERN: a fill named something that does not exist
//   - ASSET_DECODE_ERROR: an uploaded or bundled pattern image is not decodable
//   - INVALID_*: input validation failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnknownRegion, "no region %q", id)
//	if errors.Is(err, errors.ErrCodeUnknownRegion) {
//	    // Show a status message and keep going
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeLoad, origErr, "failed to load %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Drawing load errors
	ErrCodeLoad         Code = "LOAD_ERROR"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"
	ErrCodeParse        Code = "PARSE_ERROR"

	// Fill errors
	ErrCodeUnknownRegion  Code = "UNKNOWN_REGION"
	ErrCodeUnknownPattern Code = "UNKNOWN_PATTERN"
	ErrCodeAssetDecode    Code = "ASSET_DECODE_ERROR"

	// Input validation errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInvalidColor Code = "INVALID_COLOR"
	ErrCodeInvalidPath  Code = "INVALID_PATH"

	// Persistence errors
	ErrCodeStore Code = "STORE_ERROR"

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
// It walks the whole chain, so a LOAD_ERROR wrapping a FILE_NOT_FOUND
// matches both codes.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
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

// Recoverable reports whether a controller may show err as a status message
// and keep the session alive. Load failures and internal errors are not
// recoverable.
func Recoverable(err error) bool {
	switch GetCode(err) {
	case ErrCodeUnknownRegion, ErrCodeUnknownPattern, ErrCodeAssetDecode,
		ErrCodeInvalidInput, ErrCodeInvalidColor, ErrCodeInvalidPath:
		return true
	}
	return false
}
