// SPDX-License-Identifier: GPL-3.0-or-later

// Package mymysql is the module root for an asynchronous data-access and
// HTTP transport core: a pooled MySQL session layer and a pooled HTTP
// client, both expressed as composable [ioeffect.IO] pipelines instead of
// blocking calls.
//
// # Packages
//
//   - [result]: Result[T, E] — a value or an error, never both
//   - [ioeffect]: IO[T] — a deferred, single-shot asynchronous computation
//     with map/then/catch/retry/timeout combinators
//   - [errs]: the closed error taxonomy shared by every package below
//   - [netcfg]: shared configuration, structured logging, span IDs, and
//     the single-goroutine command executor pool internals post to
//   - [netpipe]: composable Func[A,B] primitives for dialing, TLS, and
//     connection observability
//   - [mysqlpool]: a bounded pool of *sql.Conn acquired from a
//     database/sql.DB backed by go-sql-driver/mysql
//   - [dbsession]: query execution and the row/value shape adaptors used
//     to turn a *sql.Rows into typed results
//   - [httpconn]: the pooled HTTP connection state machine (dial, TLS
//     upgrade, HTTP/1.1 or HTTP/2 round trips)
//   - [httppool]: per-origin idle connection deques and reaping on top of
//     [httpconn.Conn]
//   - [httpclient]: a pooled HTTP session, including CONNECT-tunneled
//     proxying and a proxy pool
//   - [envsubst]: ${VAR} / ${VAR:-default} environment substitution for
//     JSON configuration files
//
// # Observability
//
// Every package accepts a [netcfg.SLogger] (compatible with [log/slog])
// and emits paired *Start/*Done span events, following the structured
// logging style of the connection primitives in [netpipe]. Use
// [netcfg.NewSpanID] to correlate the events of a single query or round
// trip.
//
// # Concurrency
//
// [mysqlpool.Pool] and [httppool.Pool] each own a [netcfg.Executor]: a
// single goroutine draining a command channel, serializing acquire,
// release, and reap operations without an interior mutex. Callers that
// want more parallelism construct more pools.
package mymysql
