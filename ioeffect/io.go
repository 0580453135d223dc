// SPDX-License-Identifier: GPL-3.0-or-later
//
// Grounded on: original_source/tests/include/io_monad.hpp

// Package ioeffect provides IO[T]: a deferred, single-shot asynchronous
// computation that delivers a [result.Result] to a callback instead of
// blocking the calling goroutine. Combinators compose IO values the way
// the C++ source composes callback-based monad::IO<T>, but expressed as
// free functions (Map, Then, CatchThen, ...) because Go forbids new type
// parameters on methods.
package ioeffect

import (
	"context"

	"github.com/coderealm-atlas/my-mysql/errs"
	"github.com/coderealm-atlas/my-mysql/result"
)

// Res is the Result type every IO[T] eventually delivers.
type Res[T any] = result.Result[T, *errs.Error]

// Callback receives the outcome of an IO[T].
type Callback[T any] func(Res[T])

// IO is a deferred computation of a value of type T. Nothing runs until
// [IO.Run] is called; the same IO can be run more than once (Run is
// idempotent-safe by contract, mirroring the C++ source's clone()).
type IO[T any] struct {
	thunk func(context.Context, Callback[T])
}

// FromThunk builds an IO from a raw callback-taking function. Most callers
// use the higher-level constructors and combinators instead.
func FromThunk[T any](fn func(context.Context, Callback[T])) IO[T] {
	return IO[T]{thunk: fn}
}

// Pure returns an IO that always succeeds with v.
func Pure[T any](v T) IO[T] {
	return FromThunk(func(_ context.Context, cb Callback[T]) {
		cb(result.Ok[T, *errs.Error](v))
	})
}

// Fail returns an IO that always fails with err.
func Fail[T any](err *errs.Error) IO[T] {
	return FromThunk(func(_ context.Context, cb Callback[T]) {
		cb(result.Err[T, *errs.Error](err))
	})
}

// FromResult returns an IO that immediately delivers r.
func FromResult[T any](r Res[T]) IO[T] {
	return FromThunk(func(_ context.Context, cb Callback[T]) {
		cb(r)
	})
}

// Run executes the IO, invoking cb exactly once with its outcome.
func (io IO[T]) Run(ctx context.Context, cb Callback[T]) {
	io.thunk(ctx, cb)
}

// Clone returns a shallow copy of io: the same underlying thunk, safe to
// Run independently. Used by retry/backoff to re-attempt the same
// computation.
func (io IO[T]) Clone() IO[T] {
	return IO[T]{thunk: io.thunk}
}
