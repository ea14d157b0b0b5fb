// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package console

import "fmt"

// ErrorCategory classifies user-facing failures so the UI can present
// them without parsing message text.
type ErrorCategory string

const (
	// CategoryValidation is bad local input, such as an import file
	// with the wrong extension or one that cannot be read. Nothing was
	// sent to the server.
	CategoryValidation ErrorCategory = "validation"

	// CategoryTransport is a lost or missing connection. The transport
	// reconnects on its own; the operation is not retried.
	CategoryTransport ErrorCategory = "transport"

	// CategorySnapshot is a failed fetch or save of server state: a
	// request that could not be sent, an undecodable snapshot, a
	// server error event or an export that could not be written.
	CategorySnapshot ErrorCategory = "snapshot"
)

// Error is a categorized console failure wrapping its cause.
type Error struct {
	Category ErrorCategory
	Err      error
}

func (e *Error) Error() string { return e.Err.Error() }

// Unwrap returns the cause.
func (e *Error) Unwrap() error { return e.Err }

// Validation returns a validation error.
func Validation(format string, args ...any) *Error {
	return &Error{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// Transport returns a transport error.
func Transport(format string, args ...any) *Error {
	return &Error{Category: CategoryTransport, Err: fmt.Errorf(format, args...)}
}

// Snapshot returns a snapshot error.
func Snapshot(format string, args ...any) *Error {
	return &Error{Category: CategorySnapshot, Err: fmt.Errorf(format, args...)}
}
