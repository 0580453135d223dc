// SPDX-License-Identifier: GPL-3.0-or-later
//
// Grounded on: spec.md §4.5 (SessionState); original_source/include/mysql_monad.hpp
// (execute_sql filling error code/diagnostics after a failed statement).

package dbsession

import "database/sql"

// State is the outcome of running one or more statements over a single
// borrowed connection: zero or more result sets, an optional driver
// error, and any side-channel updates a caller attached along the way.
//
// A State owns the backing storage for every RowView, ResultSetView, and
// FieldView it hands out. Those views are only valid for as long as the
// State that produced them is alive and unreused; never store one beyond
// the call that obtained it.
type State struct {
	// Conn is the connection the statements ran on. It is non-nil only
	// while the connection has not yet been released back to the pool.
	Conn *sql.Conn

	// Results holds one entry per statement executed, in order.
	Results []ResultSetView

	// ErrorCode is zero when no error occurred, else a value from the
	// errs SQLExec namespace.
	ErrorCode int

	// ErrorText is the human-readable driver error, empty when ErrorCode
	// is zero.
	ErrorText string

	// DiagText carries a server-side diagnostic string (warnings, extra
	// context) independent of ErrorCode.
	DiagText string

	// Updates lets a RunQueryWith generator or caller attach arbitrary
	// side data alongside the query outcome.
	Updates map[string]any
}

// HasError reports whether the last operation on this State failed.
func (s *State) HasError() bool {
	return s.ErrorCode != 0
}

// ErrorMessage returns the driver error text, empty if there was none.
func (s *State) ErrorMessage() string {
	return s.ErrorText
}

// Diagnostics returns the server diagnostic string, if any.
func (s *State) Diagnostics() string {
	return s.DiagText
}

func (s *State) resultSet(resultIndex int) (ResultSetView, bool) {
	if resultIndex < 0 || resultIndex >= len(s.Results) {
		return ResultSetView{}, false
	}
	return s.Results[resultIndex], true
}
