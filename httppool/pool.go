// SPDX-License-Identifier: GPL-3.0-or-later
//
// Grounded on: original_source/tests/include/beast_connection_pool.hpp's
// ConnectionPool (acquire/release/schedule_reap/shrink_global_if_needed),
// reimplemented over httpconn.Conn with a netcfg.Executor standing in for
// the C++ source's net::strand.

package httppool

import (
	"container/list"
	"context"
	"crypto/tls"
	"time"

	"github.com/coderealm-atlas/my-mysql/errs"
	"github.com/coderealm-atlas/my-mysql/httpconn"
	"github.com/coderealm-atlas/my-mysql/ioeffect"
	"github.com/coderealm-atlas/my-mysql/netcfg"
	"github.com/coderealm-atlas/my-mysql/netpipe"
	"github.com/coderealm-atlas/my-mysql/result"
)

// Pool hands out httpconn.Conn values keyed by httpconn.Origin, reusing
// idle ones LIFO (most-recently-released first, matching the C++ source's
// deque back()/pop_back()) and dialing a new one when none qualify. All
// idle-deque mutation happens on a single netcfg.Executor strand so
// Acquire/Release never race each other.
type Pool struct {
	executor *netcfg.Executor
	cfg      PoolConfig
	dialer   netpipe.Dialer
	netCfg   *netcfg.Config
	logger   netcfg.SLogger

	idle        map[httpconn.Origin]*list.List
	reaperArmed bool
}

// NewPool returns a *Pool dialing through dialer and posting its
// bookkeeping to executor. Callers must have already started
// executor.Run in its own goroutine.
func NewPool(executor *netcfg.Executor, cfg PoolConfig, dialer netpipe.Dialer, netCfg *netcfg.Config, logger netcfg.SLogger) *Pool {
	return &Pool{
		executor: executor,
		cfg:      cfg,
		dialer:   dialer,
		netCfg:   netCfg,
		logger:   logger,
		idle:     make(map[httpconn.Origin]*list.List),
	}
}

// Acquire returns an IO that delivers a busy, ready-to-use *httpconn.Conn
// for origin: an idle connection if one is alive and unexpired, else a
// freshly dialed one. tlsCfg is used only when origin.IsTLS() and a new
// connection must be dialed.
func (p *Pool) Acquire(ctx context.Context, origin httpconn.Origin, tlsCfg *tls.Config) ioeffect.IO[*httpconn.Conn] {
	return ioeffect.FromThunk(func(ctx context.Context, cb ioeffect.Callback[*httpconn.Conn]) {
		type popResult struct {
			conn    *httpconn.Conn
			needNew bool
		}
		popped := make(chan popResult, 1)

		p.executor.Post(func() {
			dq := p.idle[origin]
			for dq != nil && dq.Len() > 0 {
				back := dq.Back()
				dq.Remove(back)
				c := back.Value.(*httpconn.Conn)
				if c.Alive() {
					c.SetBusy(true)
					popped <- popResult{conn: c}
					return
				}
				c.Close()
			}
			popped <- popResult{needNew: true}
		})

		got := <-popped
		if got.conn != nil {
			cb(result.Ok[*httpconn.Conn, *errs.Error](got.conn))
			return
		}

		conn := httpconn.NewConn(origin, p.cfg.IdleKeepAlive, p.netCfg, p.logger)
		if err := conn.PrepareStream(ctx, p.dialer, tlsCfg, p.cfg.ConnectTimeout, p.cfg.HandshakeTimeout); err != nil {
			cb(result.Err[*httpconn.Conn, *errs.Error](asErrsError(err)))
			return
		}
		conn.SetBusy(true)
		cb(result.Ok[*httpconn.Conn, *errs.Error](conn))
	})
}

// Release returns conn to the pool for reuse if canReuse is true and the
// connection is still alive, otherwise it closes conn. Reuse candidates
// respect PoolConfig's per-origin and global idle caps, evicting the
// oldest idle connection (front of the deque) when a cap is exceeded.
func (p *Pool) Release(conn *httpconn.Conn, canReuse bool) {
	p.executor.Post(func() {
		if conn == nil {
			return
		}
		if !canReuse || !conn.Alive() {
			conn.Close()
			return
		}
		conn.SetBusy(false)

		dq := p.idleDequeFor(conn.Origin)
		if p.cfg.MaxIdlePerOrigin > 0 && dq.Len() >= p.cfg.MaxIdlePerOrigin {
			front := dq.Front()
			dq.Remove(front)
			front.Value.(*httpconn.Conn).Close()
		}
		dq.PushBack(conn)

		p.shrinkGlobalIfNeeded()
		p.armReapIfNeeded()
	})
}

func (p *Pool) idleDequeFor(origin httpconn.Origin) *list.List {
	dq, ok := p.idle[origin]
	if !ok {
		dq = list.New()
		p.idle[origin] = dq
	}
	return dq
}

func (p *Pool) totalIdle() int {
	total := 0
	for _, dq := range p.idle {
		total += dq.Len()
	}
	return total
}

// shrinkGlobalIfNeeded must run on the executor. It repeatedly evicts the
// oldest entry of the largest per-origin deque until the global idle
// count is within MaxTotalIdle, matching the C++ source's
// shrink_global_if_needed.
func (p *Pool) shrinkGlobalIfNeeded() {
	if p.cfg.MaxTotalIdle <= 0 {
		return
	}
	for p.totalIdle() > p.cfg.MaxTotalIdle {
		var largestOrigin httpconn.Origin
		var largest *list.List
		for origin, dq := range p.idle {
			if largest == nil || dq.Len() > largest.Len() {
				largestOrigin, largest = origin, dq
			}
		}
		if largest == nil || largest.Len() == 0 {
			return
		}
		front := largest.Front()
		largest.Remove(front)
		front.Value.(*httpconn.Conn).Close()
		if largest.Len() == 0 {
			delete(p.idle, largestOrigin)
		}
	}
}

// armReapIfNeeded must run on the executor. It starts the reap timer if
// it isn't already running and there is at least one idle connection.
func (p *Pool) armReapIfNeeded() {
	if p.cfg.IdleReapInterval <= 0 || p.reaperArmed || p.totalIdle() == 0 {
		return
	}
	p.reaperArmed = true
	p.scheduleReap()
}

func (p *Pool) scheduleReap() {
	time.AfterFunc(p.cfg.IdleReapInterval, func() {
		p.executor.Post(p.reapOnce)
	})
}

// reapOnce must run on the executor. It closes and drops every expired or
// dead idle connection, then either reschedules itself (idle connections
// remain) or disarms.
func (p *Pool) reapOnce() {
	for origin, dq := range p.idle {
		for e := dq.Front(); e != nil; {
			next := e.Next()
			c := e.Value.(*httpconn.Conn)
			if !c.Alive() {
				c.Close()
				dq.Remove(e)
			}
			e = next
		}
		if dq.Len() == 0 {
			delete(p.idle, origin)
		}
	}
	p.shrinkGlobalIfNeeded()

	if p.totalIdle() > 0 && p.cfg.IdleReapInterval > 0 {
		p.scheduleReap()
		return
	}
	p.reaperArmed = false
}

func asErrsError(err error) *errs.Error {
	if e, ok := err.(*errs.Error); ok {
		return e
	}
	return errs.Wrap(errs.ConnectionRefused, "dialing pooled connection failed", err)
}
