// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: original_source/include/db_errors.hpp
// Adapted from: original_source/tests/include/httpclient_error_codes.hpp

package errs

// SQLExec is the namespace for driver/statement-execution errors (1000-1999).
const (
	SQLFailed         = 1000
	NoRows            = 1001
	MultipleResults   = 1002
	NullID            = 1003
	IndexOutOfBounds  = 1004
)

// Parse is the namespace for value-access/parsing errors (2000-2999).
const (
	BadValueAccess = 2000
)

// HTTPResponse reuses standard HTTP status codes (400-599) and adds a
// module-specific extension code for local failures while streaming a
// download to disk.
const (
	DownloadFileOpenFailed = 4999
)

// Network is the namespace for connect/resolve/TLS-level failures (4000-4999).
const (
	ConnectionTimeout = 4001
	ConnectionRefused = 4002
	HostUnreachable   = 4003
	DNSLookupFailed   = 4004
	PoolShuttingDown  = 4005
	InvalidConnState  = 4006
)

// Codes produced internally by ioeffect combinators: CodeTimerFailed and
// CodeTimeout by Delay and Timeout, and the reserved negative codes when a
// user-supplied callable panics.
const (
	CodeTimerFailed  = 1
	CodeTimeout      = 2
	CodeMapPanic     = -1
	CodeThenPanic    = -2
	CodeCatchThenPanic = -3
)
