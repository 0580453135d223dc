// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: bassosimone/nop spanid.go

package netcfg

import (
	"github.com/bassosimone/runtimex"
	"github.com/google/uuid"
)

// NewSpanID returns a UUIDv7 identifying a span: one query, one pool
// acquire, or one HTTP round trip that can fail in a single specific way.
//
// Use a span ID to correlate the xStart/xDone pair of log events emitted
// for the same operation.
//
// This function panics if the system random number generator fails,
// which should only happen under extraordinary circumstances.
func NewSpanID() string {
	return runtimex.PanicOnError1(uuid.NewV7()).String()
}
