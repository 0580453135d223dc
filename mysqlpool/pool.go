// SPDX-License-Identifier: GPL-3.0-or-later
//
// Grounded on: original_source/include/mysql_monad.hpp (get_connection's
// watchdog/timeout/done-flag race) and koustreak-DatRi's
// internal/database/mysql/{pool,mysql}.go (database/sql + go-sql-driver
// wiring).

package mysqlpool

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/coderealm-atlas/my-mysql/errs"
	"github.com/coderealm-atlas/my-mysql/ioeffect"
	"github.com/coderealm-atlas/my-mysql/netcfg"
	"github.com/coderealm-atlas/my-mysql/result"
)

// watchdogInterval is how often Acquire logs a still-waiting debug event
// while a connection is outstanding.
const watchdogInterval = time.Second

// Pool is a bounded pool of *sql.Conn backed by database/sql and
// go-sql-driver/mysql. Pool must not be copied after use: it holds a
// sync.Once and an atomic stopping flag, standing in for the C++ source's
// deleted copy/move constructors.
type Pool struct {
	db       *sql.DB
	executor *netcfg.Executor
	logger   netcfg.SLogger
	cfg      *Config

	// Debug gates Debug-level release logging for the tracked connection
	// wrapper; Go has no NDEBUG build tag, so this is a runtime switch.
	Debug bool

	stopping atomic.Bool
	stopOnce sync.Once
}

// New opens a database/sql.DB against cfg, applies its pool-size limits,
// starts executor's command loop, and (if PingIntervalSeconds > 0) a
// supervisory ping goroutine.
func New(ctx context.Context, cfg *Config, executor *netcfg.Executor, logger netcfg.SLogger) (*Pool, error) {
	spanID := netcfg.NewSpanID()
	params, err := buildParams(cfg, "mysqlpool-"+spanID)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", params.DSN)
	if err != nil {
		return nil, errs.Wrap(errs.SQLFailed, "opening mysql pool failed", err)
	}
	db.SetMaxOpenConns(cfg.maxSize())
	db.SetMaxIdleConns(cfg.initialSize())

	p := &Pool{
		db:       db,
		executor: executor,
		logger:   logger,
		cfg:      cfg,
	}

	go executor.Run(ctx)
	if cfg.PingIntervalSeconds > 0 {
		go p.pingLoop(ctx, time.Duration(cfg.PingIntervalSeconds)*time.Second)
	}

	return p, nil
}

func (p *Pool) pingLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if p.stopping.Load() {
				return
			}
			pctx, cancel := context.WithTimeout(ctx, interval)
			err := p.db.PingContext(pctx)
			cancel()
			if err != nil {
				p.logger.Info("poolPingFailed", "error", err.Error())
			}
		}
	}
}

// Acquire returns an IO that, on success, delivers a *sql.Conn checked
// out of the pool. It arms a debug watchdog that logs once per second
// while the caller waits, and a hard timer for timeout (<= 0 disables the
// hard timer, waiting indefinitely subject to ctx). Whichever of a
// timeout or a connection/error arrival happens first is decided by
// posting the delivery to p.executor, the pool's serialization strand
// (mirroring the C++ source's strand-guarded get_connection race), so a
// late-arriving connection after a timeout has already been posted is
// detected and closed without ever reaching the caller.
func (p *Pool) Acquire(ctx context.Context, timeout time.Duration) ioeffect.IO[*sql.Conn] {
	return ioeffect.FromThunk(func(ctx context.Context, cb ioeffect.Callback[*sql.Conn]) {
		if p.stopping.Load() {
			cb(result.Err[*sql.Conn, *errs.Error](errs.New(errs.PoolShuttingDown, "pool shutting down")))
			return
		}

		start := p.now()
		connCh := make(chan *sql.Conn, 1)
		errCh := make(chan error, 1)
		go func() {
			conn, err := p.db.Conn(ctx)
			if err != nil {
				errCh <- err
				return
			}
			connCh <- conn
		}()

		var timeoutC <-chan time.Time
		if timeout > 0 {
			timer := time.NewTimer(timeout)
			defer timer.Stop()
			timeoutC = timer.C
		}

		watchdog := time.NewTicker(watchdogInterval)
		defer watchdog.Stop()

		delivered := false
		deliver := func(fn func()) <-chan struct{} {
			done := make(chan struct{})
			p.executor.Post(func() {
				defer close(done)
				if delivered {
					return
				}
				delivered = true
				fn()
			})
			return done
		}

		for {
			select {
			case conn := <-connCh:
				<-deliver(func() {
					cb(result.Ok[*sql.Conn, *errs.Error](conn))
				})
				return
			case err := <-errCh:
				<-deliver(func() {
					cb(result.Err[*sql.Conn, *errs.Error](errs.Wrap(errs.SQLFailed, "acquiring connection failed", err)))
				})
				return
			case <-timeoutC:
				<-deliver(func() {
					cb(result.Err[*sql.Conn, *errs.Error](errs.New(errs.ConnectionTimeout, "acquire timed out")))
				})
				go drainLateArrival(connCh, errCh)
				return
			case <-watchdog.C:
				p.logger.Debug("poolAcquireWaiting", "elapsedMillis", p.now().Sub(start).Milliseconds())
			}
		}
	})
}

// drainLateArrival absorbs a connection that arrives after Acquire has
// already delivered a timeout, closing it immediately so it doesn't leak.
func drainLateArrival(connCh <-chan *sql.Conn, errCh <-chan error) {
	select {
	case conn := <-connCh:
		conn.Close()
	case <-errCh:
	case <-time.After(time.Minute):
	}
}

func (p *Pool) now() time.Time {
	return time.Now()
}

// Stop idempotently marks the pool as shutting down and closes the
// underlying database/sql.DB. Subsequent Acquire calls fail fast with
// errs.PoolShuttingDown.
func (p *Pool) Stop() error {
	var err error
	p.stopOnce.Do(func() {
		p.stopping.Store(true)
		err = p.db.Close()
	})
	return err
}

// Stats exposes database/sql's own pool counters read-only, so callers
// can assert active/idle invariants in tests.
func (p *Pool) Stats() sql.DBStats {
	return p.db.Stats()
}
