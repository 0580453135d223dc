// SPDX-License-Identifier: GPL-3.0-or-later
//
// Grounded on: original_source/tests/include/io_monad.hpp

package ioeffect

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/coderealm-atlas/my-mysql/errs"
	"github.com/coderealm-atlas/my-mysql/netcfg"
	"github.com/coderealm-atlas/my-mysql/result"
)

// Unit is the ioeffect-local name for the shared zero-value type, used by
// combinators (FinallyThen) whose cleanup IO carries no result.
type Unit = netcfg.Unit

// recoverAsError converts a recovered panic value into an *errs.Error with
// the given reserved code. Call from inside a deferred recover().
func recoverAsError(code int, r any) *errs.Error {
	if err, ok := r.(error); ok {
		return errs.Wrap(code, "panic recovered", err)
	}
	return errs.New(code, fmt.Sprintf("panic recovered: %v", r))
}

// Map transforms the value of a successful IO with f, passing an error
// through unchanged. A panicking f is recovered and reported as
// [errs.CodeMapPanic].
func Map[T, U any](io IO[T], f func(T) U) IO[U] {
	return FromThunk(func(ctx context.Context, cb Callback[U]) {
		io.Run(ctx, func(r Res[T]) {
			if r.IsErr() {
				cb(result.Err[U, *errs.Error](r.ErrorValue()))
				return
			}
			cb(mapApply(f, r.Value()))
		})
	})
}

// mapApply calls f and recovers from a panic, converting it to
// [errs.CodeMapPanic].
func mapApply[T, U any](f func(T) U, v T) (out Res[U]) {
	defer func() {
		if rec := recover(); rec != nil {
			out = result.Err[U, *errs.Error](recoverAsError(errs.CodeMapPanic, rec))
		}
	}()
	return result.Ok[U, *errs.Error](f(v))
}

// Then flat-maps a successful IO into another IO, short-circuiting on
// error. A panicking f is recovered and reported as [errs.CodeThenPanic].
func Then[T, U any](io IO[T], f func(T) IO[U]) IO[U] {
	return FromThunk(func(ctx context.Context, cb Callback[U]) {
		io.Run(ctx, func(r Res[T]) {
			if r.IsErr() {
				cb(result.Err[U, *errs.Error](r.ErrorValue()))
				return
			}
			next, perr := thenApply(f, r.Value())
			if perr != nil {
				cb(result.Err[U, *errs.Error](perr))
				return
			}
			next.Run(ctx, cb)
		})
	})
}

func thenApply[T, U any](f func(T) IO[U], v T) (out IO[U], err *errs.Error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = recoverAsError(errs.CodeThenPanic, rec)
		}
	}()
	return f(v), nil
}

// CatchThen recovers from an error by running f, which may itself fail or
// succeed; a success passes through unchanged. A panicking f is recovered
// and reported as [errs.CodeCatchThenPanic].
func CatchThen[T any](io IO[T], f func(*errs.Error) IO[T]) IO[T] {
	return FromThunk(func(ctx context.Context, cb Callback[T]) {
		io.Run(ctx, func(r Res[T]) {
			if r.IsOk() {
				cb(r)
				return
			}
			next, perr := catchThenApply(f, r.ErrorValue())
			if perr != nil {
				cb(result.Err[T, *errs.Error](perr))
				return
			}
			next.Run(ctx, cb)
		})
	})
}

func catchThenApply[T any](f func(*errs.Error) IO[T], e *errs.Error) (out IO[T], err *errs.Error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = recoverAsError(errs.CodeCatchThenPanic, rec)
		}
	}()
	return f(e), nil
}

// MapErrIO transforms the error of a failed IO with f, leaving a success
// unchanged. f is a pure mapping and is not recovered from panics: a
// panicking f is a programming error, not a runtime condition.
func MapErrIO[T any](io IO[T], f func(*errs.Error) *errs.Error) IO[T] {
	return FromThunk(func(ctx context.Context, cb Callback[T]) {
		io.Run(ctx, func(r Res[T]) {
			if r.IsErr() {
				cb(result.Err[T, *errs.Error](f(r.ErrorValue())))
				return
			}
			cb(r)
		})
	})
}

// Finally runs f after io completes, regardless of outcome, then delivers
// io's original result unchanged. f's panics are not trapped.
func Finally[T any](io IO[T], f func()) IO[T] {
	return FromThunk(func(ctx context.Context, cb Callback[T]) {
		io.Run(ctx, func(r Res[T]) {
			f()
			cb(r)
		})
	})
}

// FinallyThen chains a monadic cleanup IO after io completes, regardless of
// outcome. The cleanup's own result and any panic it raises are swallowed;
// io's original result is always what gets delivered.
func FinallyThen[T any](io IO[T], f func() IO[Unit]) IO[T] {
	return FromThunk(func(ctx context.Context, cb Callback[T]) {
		io.Run(ctx, func(r Res[T]) {
			cleanup, ok := safeCleanup(f)
			if !ok {
				cb(r)
				return
			}
			cleanup.Run(ctx, func(Res[Unit]) {
				cb(r)
			})
		})
	})
}

func safeCleanup(f func() IO[Unit]) (out IO[Unit], ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return f(), true
}

// Delay defers the delivery of io's result by d. A timer failure (the
// context being cancelled before the timer fires) surfaces as
// [errs.CodeTimerFailed].
func Delay[T any](io IO[T], d time.Duration) IO[T] {
	return FromThunk(func(ctx context.Context, cb Callback[T]) {
		timer := time.NewTimer(d)
		select {
		case <-timer.C:
			io.Run(ctx, cb)
		case <-ctx.Done():
			timer.Stop()
			cb(result.Err[T, *errs.Error](errs.New(errs.CodeTimerFailed, "timer error: "+ctx.Err().Error())))
		}
	})
}

// Timeout fails io with [errs.CodeTimeout] if it has not completed within
// d. Whichever of {io's result, the timer} arrives first wins; a
// sync.Once guards single delivery so the loser never calls back, and a
// derived context is cancelled once the timeout error has been delivered,
// so any context.AfterFunc-based
// cleanup registered downstream (e.g. releasing a pooled connection) still
// runs even though the caller is never notified of it.
func Timeout[T any](io IO[T], d time.Duration) IO[T] {
	return FromThunk(func(ctx context.Context, cb Callback[T]) {
		dctx, cancel := context.WithCancel(ctx)
		var once sync.Once
		timer := time.AfterFunc(d, func() {
			once.Do(func() {
				cb(result.Err[T, *errs.Error](errs.New(errs.CodeTimeout, "Operation timed out")))
				cancel()
			})
		})
		io.Run(dctx, func(r Res[T]) {
			once.Do(func() {
				timer.Stop()
				cancel()
				cb(r)
			})
		})
	})
}

// RetryExponentialIf runs io up to maxAttempts times in total, retrying
// while pred holds for the last error and doubling the delay after each
// attempt starting from initial. It returns the first success or the final error.
func RetryExponentialIf[T any](io IO[T], maxAttempts int, initial time.Duration, pred func(*errs.Error) bool) IO[T] {
	return FromThunk(func(ctx context.Context, cb Callback[T]) {
		attempt := 0
		delay := initial
		var attemptOnce func()
		attemptOnce = func() {
			attempt++
			io.Clone().Run(ctx, func(r Res[T]) {
				if r.IsOk() || attempt >= maxAttempts || !pred(r.ErrorValue()) {
					cb(r)
					return
				}
				currentDelay := delay
				delay *= 2
				timer := time.NewTimer(currentDelay)
				select {
				case <-timer.C:
					attemptOnce()
				case <-ctx.Done():
					timer.Stop()
					cb(r)
				}
			})
		}
		attemptOnce()
	})
}
