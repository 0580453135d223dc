// SPDX-License-Identifier: GPL-3.0-or-later
//
// Grounded on: original_source/tests/include/beast_connection_pool.hpp's
// PoolConfig struct.

// Package httppool pools httpconn.Conn values keyed by httpconn.Origin,
// the same per-origin idle-deque-plus-reaper design as the teacher's
// original C++ connection pool, serialized through a netcfg.Executor
// strand instead of a Boost.Asio strand.
package httppool

import "time"

// PoolConfig bounds a Pool's idle-connection bookkeeping.
type PoolConfig struct {
	// IdleReapInterval is how often the reaper sweeps idle connections for
	// expiry. Zero or negative disables the reaper entirely.
	IdleReapInterval time.Duration

	// IdleKeepAlive is how long a connection may sit idle before it is
	// considered expired. Zero or negative disables expiry (connections
	// live until evicted by a cap).
	IdleKeepAlive time.Duration

	// MaxIdlePerOrigin caps the idle deque length for a single origin.
	// Zero means no per-origin cap.
	MaxIdlePerOrigin int

	// MaxTotalIdle caps the sum of idle connections across all origins.
	// Zero means no global cap.
	MaxTotalIdle int

	// ConnectTimeout and HandshakeTimeout bound a newly dialed
	// connection's PrepareStream phases individually.
	ConnectTimeout   time.Duration
	HandshakeTimeout time.Duration
}

// DefaultPoolConfig mirrors the teacher's C++ pool defaults.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		IdleReapInterval: 15 * time.Second,
		IdleKeepAlive:    60 * time.Second,
		MaxIdlePerOrigin: 6,
		MaxTotalIdle:     512,
		ConnectTimeout:   10 * time.Second,
		HandshakeTimeout: 10 * time.Second,
	}
}
