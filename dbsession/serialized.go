// SPDX-License-Identifier: GPL-3.0-or-later
//
// Grounded on: spec.md §9 (open question: should MonadicSession serialize
// concurrent calls against itself); netcfg.Executor's single-goroutine
// strand, reused here rather than reintroducing a second queue primitive.

package dbsession

import (
	"context"
	"database/sql"
	"time"

	"github.com/coderealm-atlas/my-mysql/errs"
	"github.com/coderealm-atlas/my-mysql/ioeffect"
	"github.com/coderealm-atlas/my-mysql/netcfg"
	"github.com/coderealm-atlas/my-mysql/result"
)

// SerializedSession wraps a *MonadicSession so that only one of its
// RunQuery/RunQueryWith calls executes at a time, queued on a private
// netcfg.Executor. Use this when callers need transaction-adjacent
// ordering guarantees a bare MonadicSession does not provide; most
// callers should use MonadicSession directly.
type SerializedSession struct {
	inner    *MonadicSession
	executor *netcfg.Executor
}

// NewSerializedSession wraps inner behind a single-worker strand with the
// given command queue depth.
func NewSerializedSession(ctx context.Context, inner *MonadicSession, queueDepth int) *SerializedSession {
	executor := netcfg.NewExecutor(queueDepth)
	go executor.Run(ctx)
	return &SerializedSession{inner: inner, executor: executor}
}

// RunQuery is MonadicSession.RunQuery, queued behind the strand.
func (s *SerializedSession) RunQuery(ctx context.Context, sqlText string, timeout time.Duration) ioeffect.IO[*State] {
	return s.serialize(func() ioeffect.IO[*State] {
		return s.inner.RunQuery(ctx, sqlText, timeout)
	})
}

// RunQueryWith is MonadicSession.RunQueryWith, queued behind the strand.
func (s *SerializedSession) RunQueryWith(ctx context.Context, gen func(*sql.Conn) result.Result[string, *errs.Error], timeout time.Duration) ioeffect.IO[*State] {
	return s.serialize(func() ioeffect.IO[*State] {
		return s.inner.RunQueryWith(ctx, gen, timeout)
	})
}

func (s *SerializedSession) serialize(op func() ioeffect.IO[*State]) ioeffect.IO[*State] {
	return ioeffect.FromThunk(func(ctx context.Context, cb ioeffect.Callback[*State]) {
		s.executor.Post(func() {
			done := make(chan struct{})
			op().Run(ctx, func(r ioeffect.Res[*State]) {
				cb(r)
				close(done)
			})
			<-done
		})
	})
}
