// Package errors provides structured error types for simtrans.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across readers, writers and the CLI
//   - Machine-readable error codes for programmatic handling
//   - The offending identifier (joint type, tag, extension, link name) for diagnostics
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow the failure taxonomy of the conversion pipeline:
//   - PARSE_ERROR and UNSUPPORTED_*: input document problems, raised by readers
//   - NO_ROOT_FOUND, AMBIGUOUS_ROOT, NOT_A_TREE, DANGLING_REFERENCE: structural
//     problems, raised when a link/joint graph is turned into a tree
//   - FILE_NOT_FOUND, INVALID_*: environment and usage problems
//   - INTERNAL_ERROR: unexpected failures
//
// # Usage
//
//	err := errors.Unsupported(errors.ErrCodeUnsupportedJointType, "teleport")
//	if errors.Is(err, errors.ErrCodeUnsupportedJointType) {
//	    fmt.Println(errors.TokenOf(err)) // teleport
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeParse, origErr, "reading %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Document errors
	ErrCodeParse                 Code = "PARSE_ERROR"
	ErrCodeUnsupportedJointType  Code = "UNSUPPORTED_JOINT_TYPE"
	ErrCodeUnsupportedShapeType  Code = "UNSUPPORTED_SHAPE_TYPE"
	ErrCodeUnsupportedMeshFormat Code = "UNSUPPORTED_MESH_FORMAT"

	// Structural errors
	ErrCodeNoRootFound       Code = "NO_ROOT_FOUND"
	ErrCodeAmbiguousRoot     Code = "AMBIGUOUS_ROOT"
	ErrCodeNotATree          Code = "NOT_A_TREE"
	ErrCodeDanglingReference Code = "DANGLING_REFERENCE"

	// Environment and usage errors
	ErrCodeFileNotFound  Code = "FILE_NOT_FOUND"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code, the offending token and an optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Token   string // Offending identifier (optional)
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

// WithToken returns a new Error with code, message and the offending token set.
func WithToken(code Code, token string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Token:   token,
	}
}

// Unsupported reports an input value that is recognized as a slot but not
// handled, such as an unknown joint type or geometry tag.
func Unsupported(code Code, token string) *Error {
	var what string
	switch code {
	case ErrCodeUnsupportedJointType:
		what = "joint type"
	case ErrCodeUnsupportedShapeType:
		what = "shape type"
	case ErrCodeUnsupportedMeshFormat:
		what = "mesh format"
	default:
		what = "value"
	}
	return WithToken(code, token, "unsupported %s: %s", what, token)
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

// TokenOf returns the offending token carried by err, or "" if none.
func TokenOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Token
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
