// SPDX-License-Identifier: GPL-3.0-or-later

package httppool

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/coderealm-atlas/my-mysql/httpconn"
	"github.com/coderealm-atlas/my-mysql/ioeffect"
	"github.com/coderealm-atlas/my-mysql/netcfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startEchoListener(t *testing.T) (addr string, stop func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				buf := make([]byte, 4096)
				for {
					if _, err := conn.Read(buf); err != nil {
						return
					}
					if _, err := conn.Write([]byte("HTTP/1.1 200 OK\r\nContent-Length: 0\r\n\r\n")); err != nil {
						return
					}
				}
			}()
		}
	}()

	return ln.Addr().String(), func() { ln.Close() }
}

func newTestPool(t *testing.T, cfg PoolConfig) (*Pool, httpconn.Origin, func()) {
	t.Helper()
	addr, stop := startEchoListener(t)
	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	origin := httpconn.Origin{Scheme: "http", Host: host, Port: uint16(port)}

	executor := netcfg.NewExecutor(4)
	ctx, cancel := context.WithCancel(context.Background())
	go executor.Run(ctx)

	pool := NewPool(executor, cfg, &net.Dialer{}, netcfg.NewConfig(), netcfg.DefaultSLogger())
	return pool, origin, func() { cancel(); stop() }
}

func acquireSync(t *testing.T, pool *Pool, origin httpconn.Origin) *httpconn.Conn {
	t.Helper()
	var out ioeffect.Res[*httpconn.Conn]
	done := make(chan struct{})
	pool.Acquire(context.Background(), origin, nil).Run(context.Background(), func(r ioeffect.Res[*httpconn.Conn]) {
		out = r
		close(done)
	})
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Acquire did not deliver within 2s")
	}
	require.True(t, out.IsOk(), "acquire failed: %v", errValueOrNil(out))
	return out.Value()
}

func errValueOrNil(r ioeffect.Res[*httpconn.Conn]) error {
	if r.IsErr() {
		return r.ErrorValue()
	}
	return nil
}

func TestAcquireDialsWhenIdleEmpty(t *testing.T) {
	pool, origin, cleanup := newTestPool(t, DefaultPoolConfig())
	defer cleanup()

	conn := acquireSync(t, pool, origin)
	assert.Equal(t, httpconn.Busy, conn.State())
}

func TestReleaseThenAcquireReusesConnection(t *testing.T) {
	pool, origin, cleanup := newTestPool(t, DefaultPoolConfig())
	defer cleanup()

	first := acquireSync(t, pool, origin)
	pool.Release(first, true)

	// Release is posted to the executor asynchronously; give it a moment.
	time.Sleep(20 * time.Millisecond)

	second := acquireSync(t, pool, origin)
	assert.Same(t, first, second)
}

func TestReleaseWithoutReuseCloses(t *testing.T) {
	pool, origin, cleanup := newTestPool(t, DefaultPoolConfig())
	defer cleanup()

	first := acquireSync(t, pool, origin)
	pool.Release(first, false)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, httpconn.Closed, first.State())

	second := acquireSync(t, pool, origin)
	assert.NotSame(t, first, second)
}

func TestMaxIdlePerOriginEvictsOldest(t *testing.T) {
	cfg := DefaultPoolConfig()
	cfg.MaxIdlePerOrigin = 1
	pool, origin, cleanup := newTestPool(t, cfg)
	defer cleanup()

	a := acquireSync(t, pool, origin)
	b := acquireSync(t, pool, origin)

	pool.Release(a, true)
	time.Sleep(10 * time.Millisecond)
	pool.Release(b, true)
	time.Sleep(10 * time.Millisecond)

	assert.Equal(t, httpconn.Closed, a.State())
	assert.Equal(t, httpconn.Idle, b.State())
}
