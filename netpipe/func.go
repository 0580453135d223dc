// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: bassosimone/nop func.go

package netpipe

import (
	"context"

	"github.com/coderealm-atlas/my-mysql/netcfg"
)

// Func is a generic operation that accepts an input and returns a result.
//
// Func instances can be composed using [Compose2] to create type-safe
// pipelines where the output of one operation flows to the input of the next.
//
// Resource cleanup contract: when a Func receives a closeable resource as input
// and returns an error, it is responsible for closing that resource before returning.
// This ensures that composed pipelines do not leak resources on partial failure.
// See [TLSHandshakeFunc] for an example of this pattern.
type Func[A, B any] interface {
	Call(ctx context.Context, input A) (B, error)
}

// FuncAdapter wraps a function as a [Func] implementation.
type FuncAdapter[A, B any] func(ctx context.Context, input A) (B, error)

// Call implements [Func].
func (f FuncAdapter[A, B]) Call(ctx context.Context, input A) (B, error) {
	return f(ctx, input)
}

// Unit is an alias for [netcfg.Unit], kept local so pipeline stages read
// naturally without importing netcfg for a single marker type.
type Unit = netcfg.Unit
