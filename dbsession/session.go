// SPDX-License-Identifier: GPL-3.0-or-later
//
// Grounded on: spec.md §4.6 (MonadicSession); original_source/include/mysql_monad.hpp
// (run_query's two overloads and execute_sql's error/diagnostics filling);
// koustreak-DatRi/internal/database/mysql/mysql.go for the database/sql
// row-scanning idiom this generalizes into ResultSetView/RowView.

package dbsession

import (
	"context"
	"database/sql"
	"strings"
	"sync/atomic"
	"time"

	"github.com/coderealm-atlas/my-mysql/errs"
	"github.com/coderealm-atlas/my-mysql/ioeffect"
	"github.com/coderealm-atlas/my-mysql/mysqlpool"
	"github.com/coderealm-atlas/my-mysql/netcfg"
	"github.com/coderealm-atlas/my-mysql/result"
)

// defaultQueryTimeout is used by RunQuery/RunQueryWith when the caller
// passes a non-positive timeout.
const defaultQueryTimeout = 5 * time.Second

// liveSessions counts connections currently checked out by RunQuery/
// RunQueryWith across all *MonadicSession instances, exposed so callers
// can assert no connection leaks past a test or request lifecycle. It
// does not count *MonadicSession instances themselves.
var liveSessions atomic.Int64

// LiveSessionCount returns the number of connections currently checked
// out across all MonadicSession instances, a coarse leak signal for
// tests rather than an exact per-session count.
func LiveSessionCount() int64 {
	return liveSessions.Load()
}

// MonadicSession runs SQL statements against connections borrowed from a
// mysqlpool.Pool, delivering the outcome as an IO[*State]. A session does
// not serialize concurrent RunQuery/RunQueryWith calls against itself,
// and does not preserve a transaction across calls: each call acquires
// and releases its own connection.
type MonadicSession struct {
	pool   *mysqlpool.Pool
	logger netcfg.Output
}

// NewMonadicSession returns a *MonadicSession borrowing connections from
// pool, logging lifecycle events to out.
func NewMonadicSession(pool *mysqlpool.Pool, out netcfg.Output) *MonadicSession {
	return &MonadicSession{pool: pool, logger: out}
}

// RunQuery acquires a connection, runs sqlText on it, and delivers the
// resulting *State, always releasing the connection before delivery. A
// non-positive timeout uses defaultQueryTimeout.
func (m *MonadicSession) RunQuery(ctx context.Context, sqlText string, timeout time.Duration) ioeffect.IO[*State] {
	return m.RunQueryWith(ctx, func(*sql.Conn) result.Result[string, *errs.Error] {
		return result.Ok[string, *errs.Error](sqlText)
	}, timeout)
}

// RunQueryWith is RunQuery except the SQL text is computed by gen once a
// connection has been acquired, letting the caller inspect connection
// state (or simply ignore it) before deciding what to run. If gen
// returns an error, the connection is released without running anything
// and the error is delivered as-is.
func (m *MonadicSession) RunQueryWith(ctx context.Context, gen func(*sql.Conn) result.Result[string, *errs.Error], timeout time.Duration) ioeffect.IO[*State] {
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}

	return ioeffect.FromThunk(func(ctx context.Context, cb ioeffect.Callback[*State]) {
		m.pool.Acquire(ctx, timeout).Run(ctx, func(connRes ioeffect.Res[*sql.Conn]) {
			if connRes.IsErr() {
				cb(result.Err[*State, *errs.Error](connRes.ErrorValue()))
				return
			}
			conn := connRes.Value()
			liveSessions.Add(1)
			released := false
			release := func() {
				if released {
					return
				}
				released = true
				liveSessions.Add(-1)
				conn.Close()
			}
			defer release()

			sqlRes := gen(conn)
			if sqlRes.IsErr() {
				release()
				cb(result.Err[*State, *errs.Error](sqlRes.ErrorValue()))
				return
			}

			m.logger.Debug("dbsessionRunQuery", "sql", sqlRes.Value())
			state := runStatement(ctx, conn, sqlRes.Value())
			release()
			state.Conn = nil
			cb(result.Ok[*State, *errs.Error](state))
		})
	})
}

// selectLikePrefixes are the statement keywords expected to return rows
// rather than an affected-row count.
var selectLikePrefixes = []string{"SELECT", "SHOW", "DESCRIBE", "DESC", "EXPLAIN", "WITH", "CALL", "PRAGMA"}

func looksLikeQuery(sqlText string) bool {
	trimmed := strings.TrimLeft(sqlText, " \t\r\n(")
	upper := strings.ToUpper(trimmed)
	for _, prefix := range selectLikePrefixes {
		if strings.HasPrefix(upper, prefix) {
			return true
		}
	}
	return false
}

// splitStatements breaks a semicolon-joined SQL batch into its individual
// statements, skipping semicolons inside '...'/"..."/`...` quoting. It does
// not understand backslash escapes within a quoted string, matching the
// simplifying assumption already made by looksLikeQuery's prefix check
// rather than a full SQL tokenizer.
func splitStatements(sqlText string) []string {
	var stmts []string
	var cur strings.Builder
	var quote rune

	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			stmts = append(stmts, s)
		}
		cur.Reset()
	}

	for _, r := range sqlText {
		switch {
		case quote != 0:
			cur.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"' || r == '`':
			quote = r
			cur.WriteRune(r)
		case r == ';':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return stmts
}

// runStatement runs each statement of sqlText on conn in turn, in its own
// round trip, and fills a *State with one or more ResultSetView per
// statement (a stored procedure CALL can itself return several). Each
// statement is routed through QueryContext or ExecContext by
// looksLikeQuery's keyword heuristic, database/sql having no generic way
// to learn a statement's row-vs-affected shape ahead of time.
//
// Statements run individually, rather than as a single multi-statement
// round trip, because database/sql's Rows type carries no affected-rows
// or last-insert-id information for the intermediate results of a
// multi-statement Query: only a lone ExecContext's sql.Result exposes
// those, so a batch mixing SELECTs with INSERT/UPDATE/DELETE can only get
// the right shape for every statement by giving each its own call.
// cfg.MultiQueries still governs the driver's MultiStatements DSN option
// (see mysqlpool/params.go) for callers that pass it as a single string
// containing embedded semicolons; it plays no role once the batch has
// been split here.
//
// Execution stops at the first statement that errors, leaving state's
// earlier Results populated and its error fields set from that failure.
func runStatement(ctx context.Context, conn *sql.Conn, sqlText string) *State {
	state := &State{Conn: conn}

	for _, stmt := range splitStatements(sqlText) {
		if looksLikeQuery(stmt) {
			if !runQueryStatement(ctx, conn, stmt, state) {
				return state
			}
			continue
		}
		if !runExecStatement(ctx, conn, stmt, state) {
			return state
		}
	}
	return state
}

// runQueryStatement runs stmt via QueryContext, appending one ResultSetView
// per result set it produces, and reports whether execution may continue.
func runQueryStatement(ctx context.Context, conn *sql.Conn, stmt string, state *State) bool {
	rows, err := conn.QueryContext(ctx, stmt)
	if err != nil {
		fillError(state, err)
		return false
	}
	defer rows.Close()

	for {
		rsView, err := scanResultSet(rows)
		if err != nil {
			fillError(state, err)
			return false
		}
		state.Results = append(state.Results, rsView)
		if !rows.NextResultSet() {
			break
		}
	}
	if err := rows.Err(); err != nil {
		fillError(state, err)
		return false
	}
	return true
}

// runExecStatement runs stmt via ExecContext, appending its affected-row
// count as a ResultSetView, and reports whether execution may continue.
func runExecStatement(ctx context.Context, conn *sql.Conn, stmt string, state *State) bool {
	res, err := conn.ExecContext(ctx, stmt)
	if err != nil {
		fillError(state, err)
		return false
	}
	affected, err := res.RowsAffected()
	if err != nil {
		fillError(state, err)
		return false
	}
	state.Results = append(state.Results, ResultSetView{AffectedRows: uint64(affected)})
	return true
}

func fillError(state *State, err error) {
	state.ErrorCode = errs.SQLFailed
	state.ErrorText = err.Error()
}

func scanResultSet(rows *sql.Rows) (ResultSetView, error) {
	cols, err := rows.Columns()
	if err != nil {
		return ResultSetView{}, err
	}

	var out ResultSetView
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return ResultSetView{}, err
		}
		fields := make([]FieldView, len(cols))
		for i, v := range raw {
			fields[i] = newFieldView(v)
		}
		out.Rows = append(out.Rows, RowView{fields: fields})
	}
	if err := rows.Err(); err != nil {
		return ResultSetView{}, err
	}
	return out, nil
}
