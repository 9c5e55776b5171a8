// Package errors provides structured error types for the chromatree engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes mirror the failure modes of the exploration pipeline:
//   - INVALID_*: Input validation failures, rejected before any work
//   - *_TOO_LARGE: Resource-protecting refusals when the search tree would
//     exceed the configured node ceiling
//   - SOLVER_*: External solver protocol failures, distinguished from a
//     genuine infeasibility result
//   - RECONCILIATION_MISMATCH: A locally valid coloring the solver never
//     reported after claiming exhaustion; indicates a logic or environment
//     defect and is never swallowed
//
// # Usage
//
//	err := errors.New(errors.ErrCodeTreeTooLarge,
//	    "tree for n=%d k=%d has %d nodes (ceiling %d)", n, k, total, ceiling)
//	if errors.Is(err, errors.ErrCodeTreeTooLarge) {
//	    // Handle resource refusal
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeSolverProcess, origErr, "klee run failed")
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
	ErrCodeInvalidConfiguration Code = "INVALID_CONFIGURATION"
	ErrCodeInvalidGraph         Code = "INVALID_GRAPH"
	ErrCodeInvalidAssignment    Code = "INVALID_ASSIGNMENT"

	// Resource-protecting refusals
	ErrCodeTreeTooLarge   Code = "TREE_TOO_LARGE"
	ErrCodeLayoutTooLarge Code = "LAYOUT_TOO_LARGE"

	// Enumeration protocol errors
	ErrCodeSolverBudget      Code = "SOLVER_BUDGET_EXCEEDED"
	ErrCodeSolverProcess     Code = "SOLVER_PROCESS_FAILURE"
	ErrCodeMalformedResult   Code = "MALFORMED_SOLVER_RESULT"
	ErrCodeReconciliation    Code = "RECONCILIATION_MISMATCH"
	ErrCodeSolverUnavailable Code = "SOLVER_UNAVAILABLE"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"
	ErrCodeRunNotFound  Code = "RUN_NOT_FOUND"

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
