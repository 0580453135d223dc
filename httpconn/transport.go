//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: bassosimone/nop httpconn.go
//

package httpconn

import (
	"crypto/tls"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/bassosimone/safeconn"
	"github.com/bassosimone/sud"
	"github.com/coderealm-atlas/my-mysql/netcfg"
	"golang.org/x/net/http2"
)

// transport performs HTTP round trips over an already-established
// connection, with structured logging and transparent body observation:
// httpRoundTripStart/httpRoundTripDone span events are emitted around each
// round trip, and the response body is lazily wrapped to emit
// httpBodyStreamStart/httpBodyStreamDone events.
type transport struct {
	conn          net.Conn
	rt            http.RoundTripper
	closeIdleFunc func()

	ErrClassifier netcfg.ErrClassifier
	Logger        netcfg.SLogger
	TimeNow       func() time.Time
}

// newTransport builds a [*transport] over conn, picking an HTTP/1.1 or
// HTTP/2 [http.RoundTripper] depending on the negotiated ALPN protocol
// (h2 requires conn to have completed a TLS handshake advertising it).
func newTransport(conn net.Conn, alpn string, cfg *netcfg.Config, logger netcfg.SLogger) *transport {
	dialer := sud.NewSingleUseDialer(conn)

	var rt http.RoundTripper
	var closeIdleFunc func()
	switch alpn {
	case "h2":
		h2txp := &http2.Transport{
			DialTLSContext:     dialer.DialTLSContext,
			DisableCompression: false,
		}
		rt = h2txp
		closeIdleFunc = h2txp.CloseIdleConnections

	default:
		h1txp := &http.Transport{
			DialContext:        dialer.DialContext,
			DialTLSContext:     dialer.DialContext,
			DisableKeepAlives:  true,
			DisableCompression: false,
		}
		rt = h1txp
		closeIdleFunc = h1txp.CloseIdleConnections
	}

	return &transport{
		conn:          conn,
		rt:            rt,
		closeIdleFunc: closeIdleFunc,
		ErrClassifier: cfg.ErrClassifier,
		Logger:        logger,
		TimeNow:       cfg.TimeNow,
	}
}

// alpnOf extracts the negotiated ALPN protocol from conn, or "" if conn
// did not perform a TLS handshake.
func alpnOf(conn net.Conn) string {
	type connectionStater interface {
		ConnectionState() tls.ConnectionState
	}
	if csp, ok := conn.(connectionStater); ok {
		return csp.ConnectionState().NegotiatedProtocol
	}
	return ""
}

// RoundTrip implements [http.RoundTripper].
func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	t0 := t.TimeNow()
	deadline, _ := req.Context().Deadline()
	t.logRoundTripStart(req, t0, deadline)

	resp, err := t.rt.RoundTrip(req)

	t.logRoundTripDone(req, t0, deadline, resp, err)

	if err != nil {
		return nil, err
	}

	resp.Body = wrapBody(
		resp.Body,
		t.ErrClassifier,
		safeconn.LocalAddr(t.conn),
		t.Logger,
		safeconn.Network(t.conn),
		safeconn.RemoteAddr(t.conn),
		t.TimeNow,
	)
	return resp, nil
}

// closeIdle releases the resources held by the underlying transport
// without closing the connection itself.
func (t *transport) closeIdle() {
	t.closeIdleFunc()
}

func (t *transport) logRoundTripStart(req *http.Request, t0 time.Time, deadline time.Time) {
	t.Logger.Info(
		"httpRoundTripStart",
		slog.Time("deadline", deadline),
		slog.String("httpMethod", req.Method),
		slog.String("httpUrl", req.URL.String()),
		slog.Any("httpRequestHeaders", req.Header),
		slog.String("localAddr", safeconn.LocalAddr(t.conn)),
		slog.String("protocol", safeconn.Network(t.conn)),
		slog.String("remoteAddr", safeconn.RemoteAddr(t.conn)),
		slog.Time("t", t0),
	)
}

func (t *transport) logRoundTripDone(req *http.Request,
	t0 time.Time, deadline time.Time, resp *http.Response, err error) {
	var (
		statusCode int
		headers    http.Header
	)
	if resp != nil {
		statusCode = resp.StatusCode
		headers = resp.Header
	}
	t.Logger.Info(
		"httpRoundTripDone",
		slog.Time("deadline", deadline),
		slog.Any("err", err),
		slog.String("errClass", t.ErrClassifier.Classify(err)),
		slog.String("httpMethod", req.Method),
		slog.String("httpUrl", req.URL.String()),
		slog.Any("httpRequestHeaders", req.Header),
		slog.Any("httpResponseHeaders", headers),
		slog.Int("httpResponseStatusCode", statusCode),
		slog.String("localAddr", safeconn.LocalAddr(t.conn)),
		slog.String("protocol", safeconn.Network(t.conn)),
		slog.String("remoteAddr", safeconn.RemoteAddr(t.conn)),
		slog.Time("t0", t0),
		slog.Time("t", t.TimeNow()),
	)
}
