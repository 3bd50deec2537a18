// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ErrorCategory classifies command errors so that scripts wrapping
// the telboard binary can make programmatic decisions (fix input,
// escalate, report) without parsing error message text. Each category
// maps to a distinct exit code.
type ErrorCategory string

const (
	// CategoryValidation indicates the caller provided invalid input:
	// missing required arguments, wrong argument count, unparseable
	// values. The caller should fix the input and retry.
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound indicates a referenced resource does not exist:
	// unknown post ID, unknown category slug, missing account.
	// Retrying with the same parameters will not help.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryForbidden indicates the acting account lacks permission
	// for the requested operation.
	CategoryForbidden ErrorCategory = "forbidden"

	// CategoryConflict indicates the operation conflicts with existing
	// state: duplicate username, duplicate category slug, a category
	// that still holds posts.
	CategoryConflict ErrorCategory = "conflict"

	// CategoryInternal indicates an unexpected error: bugs, I/O
	// failures, corrupt data. The caller should report the error
	// rather than retry.
	CategoryInternal ErrorCategory = "internal"
)

// exitCodes maps categories to process exit codes. Zero is success;
// one is reserved for uncategorized errors.
var exitCodes = map[ErrorCategory]int{
	CategoryValidation: 2,
	CategoryNotFound:   3,
	CategoryForbidden:  4,
	CategoryConflict:   5,
	CategoryInternal:   6,
}

// ToolError is a categorized error returned by CLI commands. It wraps
// an inner error, preserving the full chain for errors.Is/As, while
// adding category metadata that determines the process exit code.
// Use the category-specific constructors (Validation, NotFound, etc.)
// rather than constructing ToolError directly.
type ToolError struct {
	// Category classifies the error for programmatic handling.
	Category ErrorCategory

	// Err is the underlying error with the human-readable message.
	Err error
}

// Error returns the underlying error message. The category is not
// included in the string; it travels through the exit code.
func (e *ToolError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error, allowing errors.Is and
// errors.As to walk the full chain through the ToolError wrapper.
func (e *ToolError) Unwrap() error { return e.Err }

// ExitCode returns the exit code for the error's category.
func (e *ToolError) ExitCode() int {
	if code, ok := exitCodes[e.Category]; ok {
		return code
	}
	return 1
}

// Validation creates a validation error: the caller provided bad input.
func Validation(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound creates a not-found error: a referenced resource does not exist.
func NotFound(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Forbidden creates a forbidden error: the caller lacks permission.
func Forbidden(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryForbidden, Err: fmt.Errorf(format, args...)}
}

// Conflict creates a conflict error: the operation conflicts with existing state.
func Conflict(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryConflict, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error: an unexpected failure.
func Internal(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}
