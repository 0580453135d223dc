// SPDX-License-Identifier: GPL-3.0-or-later

package httpconn

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/coderealm-atlas/my-mysql/netcfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startEchoListener starts a TCP listener that accepts one connection and
// replies to any read with a minimal valid HTTP/1.1 response, then closes.
func startEchoListener(t *testing.T) (addr string, stop func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 4096)
		_, _ = conn.Read(buf)
		_, _ = conn.Write([]byte("HTTP/1.1 200 OK\r\nContent-Length: 0\r\n\r\n"))
	}()

	return ln.Addr().String(), func() { ln.Close() }
}

func splitHostPort(t *testing.T, addr string) (string, uint16) {
	t.Helper()
	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return host, uint16(port)
}

func TestConnPrepareStreamPlainHTTP(t *testing.T) {
	addr, stop := startEchoListener(t)
	defer stop()

	host, port := splitHostPort(t, addr)
	origin := Origin{Scheme: "http", Host: host, Port: port}

	cfg := netcfg.NewConfig()
	c := NewConn(origin, time.Minute, cfg, netcfg.DefaultSLogger())

	assert.Equal(t, Constructed, c.State())

	err := c.PrepareStream(context.Background(), &net.Dialer{}, nil, time.Second, time.Second)
	require.NoError(t, err)
	assert.Equal(t, Idle, c.State())
	assert.True(t, c.Alive())

	c.SetBusy(true)
	assert.Equal(t, Busy, c.State())

	req, err := http.NewRequest("GET", "http://"+addr+"/", nil)
	require.NoError(t, err)
	resp, err := c.RoundTrip(req)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 200, resp.StatusCode)
	resp.Body.Close()

	c.SetBusy(false)
	assert.Equal(t, Idle, c.State())

	require.NoError(t, c.Close())
	assert.Equal(t, Closed, c.State())
	assert.False(t, c.Alive())

	// Closing twice is a no-op.
	require.NoError(t, c.Close())
}

func TestConnPrepareStreamAlreadyPrepared(t *testing.T) {
	addr, stop := startEchoListener(t)
	defer stop()

	host, port := splitHostPort(t, addr)
	origin := Origin{Scheme: "http", Host: host, Port: port}

	cfg := netcfg.NewConfig()
	c := NewConn(origin, time.Minute, cfg, netcfg.DefaultSLogger())

	require.NoError(t, c.PrepareStream(context.Background(), &net.Dialer{}, nil, 0, 0))

	err := c.PrepareStream(context.Background(), &net.Dialer{}, nil, 0, 0)
	require.Error(t, err)
}

func TestConnPrepareStreamDialError(t *testing.T) {
	origin := Origin{Scheme: "http", Host: "127.0.0.1", Port: 1}

	cfg := netcfg.NewConfig()
	c := NewConn(origin, time.Minute, cfg, netcfg.DefaultSLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := c.PrepareStream(ctx, &net.Dialer{}, nil, 100*time.Millisecond, 0)
	require.Error(t, err)
	assert.Equal(t, Closed, c.State())
}

func TestConnExpired(t *testing.T) {
	origin := Origin{Scheme: "http", Host: "127.0.0.1", Port: 80}

	now := time.Now()
	cfg := netcfg.NewConfig()
	cfg.TimeNow = func() time.Time { return now }

	c := NewConn(origin, time.Minute, cfg, netcfg.DefaultSLogger())
	c.lastUsed = now
	assert.False(t, c.Expired())

	cfg.TimeNow = func() time.Time { return now.Add(2 * time.Minute) }
	assert.True(t, c.Expired())
}

func TestConnUpgradeToTLSRequiresConfig(t *testing.T) {
	origin := Origin{Scheme: "http", Host: "127.0.0.1", Port: 80}
	cfg := netcfg.NewConfig()
	c := NewConn(origin, time.Minute, cfg, netcfg.DefaultSLogger())

	err := c.UpgradeToTLS(context.Background(), "example.com", nil, 0)
	require.Error(t, err)
}

func TestOriginAddressAndScheme(t *testing.T) {
	o := Origin{Scheme: "https", Host: "example.com", Port: 443}
	assert.Equal(t, "example.com:443", o.Address())
	assert.True(t, o.IsTLS())
	assert.Equal(t, "https://example.com:443", o.String())
}
