// Package errors provides structured error types for pagebind.
//
// Codes fall in two groups. Recoverable pagination conditions
// (UNSPLITTABLE_CONTENT, UNKNOWN_RULE_TARGET, UNSUPPORTED_NODE_TYPE) never
// abort a pass; they are collected as Diagnostics on the finished book and
// logged. Everything else (INVALID_*, NOT_FOUND, INTERNAL_ERROR) is returned
// from loading, configuration and rendering.
//
//	err := errors.New(errors.ErrCodeInvalidConfig, "unknown layout %q", name)
//	if errors.Is(err, errors.ErrCodeInvalidConfig) {
//	    // report to user
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

const (
	// Recoverable pagination conditions
	ErrCodeUnsplittableContent Code = "UNSPLITTABLE_CONTENT"
	ErrCodeUnknownRuleTarget   Code = "UNKNOWN_RULE_TARGET"
	ErrCodeUnsupportedNodeType Code = "UNSUPPORTED_NODE_TYPE"

	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidSelector Code = "INVALID_SELECTOR"
	ErrCodeInvalidLayout   Code = "INVALID_LAYOUT"

	// Resource errors
	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeNetwork  Code = "NETWORK_ERROR"

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

// UserMessage returns the message without the code prefix for *Error values
// and the plain error string otherwise.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Recoverable reports whether code names a condition the paginator recovers
// from locally.
func Recoverable(code Code) bool {
	switch code {
	case ErrCodeUnsplittableContent, ErrCodeUnknownRuleTarget, ErrCodeUnsupportedNodeType:
		return true
	}
	return false
}
