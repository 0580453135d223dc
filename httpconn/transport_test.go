// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: bassosimone/nop httproundtrip_test.go

package httpconn

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/coderealm-atlas/my-mysql/netcfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type funcRoundTripper func(*http.Request) (*http.Response, error)

func (f funcRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestTransport(conn net.Conn, rt http.RoundTripper, logger netcfg.SLogger) *transport {
	return &transport{
		conn:          conn,
		rt:            rt,
		closeIdleFunc: func() {},
		ErrClassifier: netcfg.NewConfig().ErrClassifier,
		Logger:        logger,
		TimeNow:       time.Now,
	}
}

// RoundTrip delegates to the underlying transport and returns the response.
func TestTransportRoundTripSuccess(t *testing.T) {
	mockConn := newMinimalConn()

	wantResp := &http.Response{
		StatusCode: 200,
		Header:     http.Header{"Content-Type": []string{"text/html"}},
		Body:       io.NopCloser(strings.NewReader("OK")),
	}

	tr := newTestTransport(mockConn, funcRoundTripper(func(req *http.Request) (*http.Response, error) {
		return wantResp, nil
	}), netcfg.DefaultSLogger())

	req, err := http.NewRequest("GET", "https://example.com/", nil)
	require.NoError(t, err)

	resp, err := tr.RoundTrip(req)

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "text/html", resp.Header.Get("Content-Type"))
}

// RoundTrip propagates errors from the underlying transport.
func TestTransportRoundTripError(t *testing.T) {
	wantErr := errors.New("round trip failed")
	mockConn := newMinimalConn()

	tr := newTestTransport(mockConn, funcRoundTripper(func(req *http.Request) (*http.Response, error) {
		return nil, wantErr
	}), netcfg.DefaultSLogger())

	req, err := http.NewRequest("GET", "https://example.com/", nil)
	require.NoError(t, err)

	resp, err := tr.RoundTrip(req)

	require.ErrorIs(t, err, wantErr)
	assert.Nil(t, resp)
}

// RoundTrip propagates the caller's context deadline to the transport.
func TestTransportRoundTripCallerTimeout(t *testing.T) {
	callerTimeout := 5 * time.Second
	mockConn := newMinimalConn()

	tr := newTestTransport(mockConn, funcRoundTripper(func(req *http.Request) (*http.Response, error) {
		deadline, ok := req.Context().Deadline()
		assert.True(t, ok, "context should have deadline from caller")
		assert.True(t, time.Until(deadline) <= callerTimeout)
		return &http.Response{
			StatusCode: 200,
			Body:       io.NopCloser(strings.NewReader("")),
		}, nil
	}), netcfg.DefaultSLogger())

	req, err := http.NewRequest("GET", "https://example.com/", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), callerTimeout)
	defer cancel()
	req = req.WithContext(ctx)

	_, err = tr.RoundTrip(req)
	require.NoError(t, err)
}

// RoundTrip emits httpRoundTripStart/httpRoundTripDone log events.
func TestTransportRoundTripLogging(t *testing.T) {
	logger, records := newCapturingLogger()
	mockConn := newMinimalConn()

	tr := newTestTransport(mockConn, funcRoundTripper(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: 200,
			Body:       io.NopCloser(strings.NewReader("")),
		}, nil
	}), logger)

	req, err := http.NewRequest("GET", "https://example.com/", nil)
	require.NoError(t, err)

	_, _ = tr.RoundTrip(req)

	require.Len(t, *records, 2)
	assert.Equal(t, "httpRoundTripStart", (*records)[0].Message)
	assert.Equal(t, "httpRoundTripDone", (*records)[1].Message)
}

// RoundTrip logs localAddr, remoteAddr, and protocol in the done event.
func TestTransportRoundTripLogsConnectionMetadata(t *testing.T) {
	wantLocalAddr := "127.0.0.1:54321"
	wantRemoteAddr := "93.184.216.34:443"
	wantProtocol := "tcp"

	logger, records := newCapturingLogger()

	mockConn := newMinimalConn()
	mockConn.LocalAddrFunc = func() net.Addr {
		return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 54321}
	}
	mockConn.RemoteAddrFunc = func() net.Addr {
		return &net.TCPAddr{IP: net.IPv4(93, 184, 216, 34), Port: 443}
	}

	tr := newTestTransport(mockConn, funcRoundTripper(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: 200,
			Body:       io.NopCloser(strings.NewReader("")),
		}, nil
	}), logger)

	req, err := http.NewRequest("GET", "https://example.com/", nil)
	require.NoError(t, err)

	_, err = tr.RoundTrip(req)
	require.NoError(t, err)

	require.Len(t, *records, 2)
	doneRecord := (*records)[1]

	var gotLocalAddr, gotRemoteAddr, gotProtocol string
	doneRecord.Attrs(func(attr slog.Attr) bool {
		switch attr.Key {
		case "localAddr":
			gotLocalAddr = attr.Value.String()
		case "remoteAddr":
			gotRemoteAddr = attr.Value.String()
		case "protocol":
			gotProtocol = attr.Value.String()
		}
		return true
	})

	assert.Equal(t, wantLocalAddr, gotLocalAddr)
	assert.Equal(t, wantRemoteAddr, gotRemoteAddr)
	assert.Equal(t, wantProtocol, gotProtocol)
}
