// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: bassosimone/nop httpbody.go

package httpconn

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coderealm-atlas/my-mysql/netcfg"
)

// wrapBody wraps an HTTP body so that we emit structured log events
// lazily: httpBodyStreamStart on the first Read, and httpBodyStreamDone
// on Close (only if at least one Read happened).
func wrapBody(
	body io.ReadCloser,
	errClass netcfg.ErrClassifier,
	laddr string,
	logger netcfg.SLogger,
	protocol string,
	raddr string,
	timeNow func() time.Time,
) io.ReadCloser {
	return &bodyWrapper{
		body:      body,
		closeOnce: sync.Once{},
		didRead:   atomic.Bool{},
		errClass:  errClass,
		laddr:     laddr,
		logger:    logger,
		protocol:  protocol,
		raddr:     raddr,
		readOnce:  sync.Once{},
		timeNow:   timeNow,
		t0:        time.Time{},
	}
}

type bodyWrapper struct {
	body      io.ReadCloser
	didRead   atomic.Bool
	errClass  netcfg.ErrClassifier
	laddr     string
	logger    netcfg.SLogger
	closeOnce sync.Once
	protocol  string
	raddr     string
	readOnce  sync.Once
	t0        time.Time
	timeNow   func() time.Time
}

var _ io.ReadCloser = &bodyWrapper{}

// Close implements [io.ReadCloser].
//
// A stream truncated mid-read (net.ErrClosed/io.ErrUnexpectedEOF surfacing
// from the underlying body) is still reported through err here exactly as
// the underlying Close returns it; callers that consider truncation a
// clean close (see [Conn.Close]) filter it before acting on it.
func (b *bodyWrapper) Close() (err error) {
	b.closeOnce.Do(func() {
		err = b.body.Close()
		if b.didRead.Load() {
			b.logger.Info(
				"httpBodyStreamDone",
				slog.Any("err", err),
				slog.String("errClass", b.errClass.Classify(err)),
				slog.String("localAddr", b.laddr),
				slog.String("protocol", b.protocol),
				slog.String("remoteAddr", b.raddr),
				slog.Time("t0", b.t0),
				slog.Time("t", b.timeNow()),
			)
		}
	})
	return
}

// Read implements [io.ReadCloser].
func (b *bodyWrapper) Read(buffer []byte) (int, error) {
	b.readOnce.Do(func() {
		b.t0 = b.timeNow()
		b.didRead.Store(true)
		b.logger.Info(
			"httpBodyStreamStart",
			slog.String("localAddr", b.laddr),
			slog.String("protocol", b.protocol),
			slog.String("remoteAddr", b.raddr),
			slog.Time("t", b.t0),
		)
	})
	return b.body.Read(buffer)
}
