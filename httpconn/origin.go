// SPDX-License-Identifier: GPL-3.0-or-later

// Package httpconn implements the HTTP connection state machine pooled by
// package httppool: dial, optional TLS upgrade, and a RoundTripper wrapping
// the resulting socket with structured logging, grounded on the teacher's
// ConnectFunc/TLSHandshakeFunc/ObserveConnFunc/HTTPConnFunc composition
// style (package netpipe).
package httpconn

import (
	"fmt"
	"strconv"
)

// Origin identifies a pooling bucket: the scheme, host, and port a
// connection was dialed against. Two requests share a pooled connection
// only if their Origin values compare equal, so Origin is comparable and
// usable as a map key.
type Origin struct {
	Scheme string
	Host   string
	Port   uint16
}

// String renders origin as "scheme://host:port".
func (o Origin) String() string {
	return fmt.Sprintf("%s://%s:%d", o.Scheme, o.Host, o.Port)
}

// Address renders "host:port" for dialing.
func (o Origin) Address() string {
	return o.Host + ":" + strconv.Itoa(int(o.Port))
}

// IsTLS reports whether this origin requires a TLS handshake.
func (o Origin) IsTLS() bool {
	return o.Scheme == "https"
}
