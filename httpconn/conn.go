// SPDX-License-Identifier: GPL-3.0-or-later
//
// Grounded on: original_source/tests/include/beast_connection_pool.hpp
// (Connection class and its state machine)
// Grounded on: bassosimone/nop connect.go/tls.go/observeconn.go/httpconn.go
// (the ConnectFunc/TLSHandshakeFunc/ObserveConnFunc/HTTPConnFunc
// composition this state machine dials and wraps with)

package httpconn

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	"net/netip"
	"sync"
	"time"

	"github.com/coderealm-atlas/my-mysql/errs"
	"github.com/coderealm-atlas/my-mysql/netcfg"
	"github.com/coderealm-atlas/my-mysql/netpipe"
)

// Conn is a single pooled HTTP connection: a dialed (and, for https
// origins, TLS-upgraded) socket plus the HTTP/1.1 or HTTP/2 transport
// wrapping it. Conn is safe for concurrent State/Alive/LastUsed queries,
// but RoundTrip must not be called concurrently with itself: the pool
// enforces this by handing out a Conn to exactly one caller at a time.
type Conn struct {
	// Origin is the pooling bucket this connection was dialed for.
	Origin Origin

	mu       sync.Mutex
	state    State
	raw      net.Conn
	tlsConn  netpipe.TLSConn
	rt       *transport
	lastUsed time.Time

	idleKeepAlive time.Duration
	cfg           *netcfg.Config
	logger        netcfg.SLogger
}

// NewConn returns a [*Conn] in the [Constructed] state. Call
// [Conn.PrepareStream] before using it for round trips.
func NewConn(origin Origin, idleKeepAlive time.Duration, cfg *netcfg.Config, logger netcfg.SLogger) *Conn {
	return &Conn{
		Origin:        origin,
		state:         Constructed,
		idleKeepAlive: idleKeepAlive,
		cfg:           cfg,
		logger:        logger,
	}
}

// State returns the connection's current lifecycle stage.
func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastUsed returns the time the connection last transitioned Busy->Idle,
// or the time PrepareStream/UpgradeToTLS left it Idle if it has never
// served a round trip. It is the zero time before PrepareStream.
func (c *Conn) LastUsed() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUsed
}

// Expired reports whether the connection has been idle for longer than
// its configured keep-alive.
func (c *Conn) Expired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.idleKeepAlive <= 0 {
		return false
	}
	return c.cfg.TimeNow().Sub(c.lastUsed) > c.idleKeepAlive
}

// Alive reports whether the connection can still be handed out by the
// pool: neither closed nor expired.
func (c *Conn) Alive() bool {
	return c.State() != Closed && !c.Expired()
}

func (c *Conn) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Conn) touch() {
	c.mu.Lock()
	c.lastUsed = c.cfg.TimeNow()
	c.mu.Unlock()
}

// resolve looks up the Origin's host and pairs the first returned address
// with the Origin's port, the input [netpipe.ConnectFunc] dials.
func (c *Conn) resolve(ctx context.Context) (netip.AddrPort, error) {
	ips, err := net.DefaultResolver.LookupNetIP(ctx, "ip", c.Origin.Host)
	if err != nil {
		return netip.AddrPort{}, err
	}
	if len(ips) == 0 {
		return netip.AddrPort{}, errs.New(errs.ConnectionRefused, "no addresses for host")
	}
	return netip.AddrPortFrom(ips[0], c.Origin.Port), nil
}

// PrepareStream dials the connection's Origin and, for an https origin,
// performs a TLS handshake using tlsCfg (whose ServerName provides the
// SNI). connectTimeout/handshakeTimeout bound each phase individually via
// context.WithTimeout; zero disables the corresponding bound. On success
// the connection is left in the [Idle] state.
func (c *Conn) PrepareStream(
	ctx context.Context,
	dialer netpipe.Dialer,
	tlsCfg *tls.Config,
	connectTimeout time.Duration,
	handshakeTimeout time.Duration,
) error {
	c.mu.Lock()
	if c.state != Constructed {
		c.mu.Unlock()
		return errs.New(errs.InvalidConnState, "connection already prepared")
	}
	c.mu.Unlock()

	dctx := ctx
	if connectTimeout > 0 {
		var cancel context.CancelFunc
		dctx, cancel = context.WithTimeout(ctx, connectTimeout)
		defer cancel()
	}

	c.setState(Resolving)
	addr, err := c.resolve(dctx)
	if err != nil {
		c.setState(Closed)
		return errs.Wrap(networkCode(err), "resolve failed", err)
	}

	c.setState(Connecting)
	pipeline := netpipe.Compose2(
		netpipe.NewConnectFunc(dialer, c.cfg, "tcp", c.logger),
		netpipe.NewObserveConnFunc(c.cfg, c.logger),
	)
	observed, err := pipeline.Call(dctx, addr)
	if err != nil {
		c.setState(Closed)
		return errs.Wrap(networkCode(err), "dial failed", err)
	}
	c.raw = observed

	if !c.Origin.IsTLS() {
		c.rt = newTransport(c.raw, "", c.cfg, c.logger)
		c.setState(Idle)
		c.touch()
		return nil
	}

	if tlsCfg == nil {
		c.raw.Close()
		c.setState(Closed)
		return errs.New(errs.ConnectionRefused, "https origin requires a tls.Config")
	}

	hctx := ctx
	if handshakeTimeout > 0 {
		var cancel context.CancelFunc
		hctx, cancel = context.WithTimeout(ctx, handshakeTimeout)
		defer cancel()
	}

	c.setState(Handshaking)
	tconn, err := netpipe.NewTLSHandshakeFunc(c.cfg, tlsCfg, c.logger).Call(hctx, c.raw)
	if err != nil {
		c.setState(Closed)
		return errs.Wrap(networkCode(err), "tls handshake failed", err)
	}

	c.tlsConn = tconn
	c.rt = newTransport(tconn, alpnOf(tconn), c.cfg, c.logger)
	c.setState(Idle)
	c.touch()
	return nil
}

// UpgradeToTLS converts an already-connected plaintext [Conn] into a TLS
// connection in place, over the same TCP socket. This is used by the
// pooled HTTP client after a proxy CONNECT tunnel has been established:
// the plaintext leg talks to the proxy, then the same socket carries the
// TLS handshake with the tunnel's true destination (sni).
//
// UpgradeToTLS fails if tlsCfg is nil or the connection has already
// completed a TLS handshake.
func (c *Conn) UpgradeToTLS(ctx context.Context, sni string, tlsCfg *tls.Config, handshakeTimeout time.Duration) error {
	c.mu.Lock()
	if c.tlsConn != nil {
		c.mu.Unlock()
		return errs.New(errs.InvalidConnState, "connection is already TLS")
	}
	if tlsCfg == nil {
		c.mu.Unlock()
		return errs.New(errs.ConnectionRefused, "UpgradeToTLS requires a tls.Config")
	}
	raw := c.raw
	c.mu.Unlock()

	cfg := tlsCfg.Clone()
	cfg.ServerName = sni

	hctx := ctx
	if handshakeTimeout > 0 {
		var cancel context.CancelFunc
		hctx, cancel = context.WithTimeout(ctx, handshakeTimeout)
		defer cancel()
	}

	c.setState(Handshaking)
	tconn, err := netpipe.NewTLSHandshakeFunc(c.cfg, cfg, c.logger).Call(hctx, raw)
	if err != nil {
		c.setState(Closed)
		return errs.Wrap(networkCode(err), "tls upgrade failed", err)
	}

	c.mu.Lock()
	c.tlsConn = tconn
	c.rt = newTransport(tconn, alpnOf(tconn), c.cfg, c.logger)
	c.mu.Unlock()
	c.setState(Idle)
	c.touch()
	return nil
}

// RawConn exposes the connection's underlying socket (TLS-wrapped once a
// handshake has completed) for protocols that must write bytes on the
// wire before a request/response transport exists, such as an HTTP
// CONNECT tunnel. Callers must not use RawConn concurrently with
// RoundTrip.
func (c *Conn) RawConn() net.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tlsConn != nil {
		return c.tlsConn
	}
	return c.raw
}

// SetBusy marks the connection Busy (about to serve a round trip) or,
// transitioning back to false, marks it Idle and refreshes LastUsed.
func (c *Conn) SetBusy(busy bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if busy {
		c.state = Busy
		return
	}
	c.state = Idle
	c.lastUsed = c.cfg.TimeNow()
}

// RoundTrip performs an HTTP round trip over the prepared connection. The
// caller must have called [Conn.SetBusy](true) first and must call
// [Conn.SetBusy](false) or [Conn.Close] afterwards.
func (c *Conn) RoundTrip(req *http.Request) (*http.Response, error) {
	c.mu.Lock()
	rt := c.rt
	c.mu.Unlock()
	if rt == nil {
		return nil, errs.New(errs.InvalidConnState, "RoundTrip called before PrepareStream")
	}
	return rt.RoundTrip(req)
}

// Close tears down the connection. A TLS connection performs its
// close_notify first. A truncated stream observed while closing
// (net.ErrClosed or io.EOF) is treated as a clean close and not returned.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.state == Closed {
		c.mu.Unlock()
		return nil
	}
	c.state = Closed
	rt := c.rt
	tlsConn := c.tlsConn
	raw := c.raw
	c.mu.Unlock()

	if rt != nil {
		rt.closeIdle()
	}

	var err error
	switch {
	case tlsConn != nil:
		err = tlsConn.Close()
	case raw != nil:
		err = raw.Close()
	}
	if err != nil && !isCleanClose(err) {
		return err
	}
	return nil
}

func isCleanClose(err error) bool {
	return errors.Is(err, net.ErrClosed) || errors.Is(err, io.EOF)
}

func networkCode(err error) int {
	if code := errs.Classify(err); code != 0 {
		return code
	}
	return errs.ConnectionRefused
}
