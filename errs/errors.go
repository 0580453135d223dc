// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: original_source/tests/include/result_monad.hpp (Error type)
// Adapted from: original_source/include/db_errors.hpp
// Adapted from: original_source/tests/include/httpclient_error_codes.hpp

// Package errs holds the closed error taxonomy shared by the connection
// pools and session layers: a single {code, what} pair, grouped into
// disjoint numeric namespaces, plus an [Classifier] used to turn raw
// network errors into the Network namespace before they are wrapped.
package errs

import "fmt"

// Error is the single error currency of this module. It implements the
// standard [error] interface so it composes with errors.Is/errors.As and
// %w formatting like any other Go error.
type Error struct {
	// Code is the numeric error code (see the namespace constants in codes.go).
	Code int

	// What is a human-readable description, optionally carrying a server
	// diagnostic string or exception message.
	What string

	// Cause is the underlying error, if any, wrapped for %w/errors.Is/As.
	Cause error
}

// New returns a new [*Error] with no wrapped cause.
func New(code int, what string) *Error {
	return &Error{Code: code, What: what}
}

// Wrap returns a new [*Error] carrying cause for later unwrapping.
func Wrap(code int, what string, cause error) *Error {
	return &Error{Code: code, What: what, Cause: cause}
}

// Error implements [error].
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause != nil {
		return fmt.Sprintf("[Error %d] %s: %v", e.Code, e.What, e.Cause)
	}
	return fmt.Sprintf("[Error %d] %s", e.Code, e.What)
}

// Unwrap implements the errors.Unwrap protocol.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}
