// SPDX-License-Identifier: GPL-3.0-or-later

package dbsession

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/coderealm-atlas/my-mysql/errs"
	"github.com/coderealm-atlas/my-mysql/ioeffect"
	"github.com/coderealm-atlas/my-mysql/mysqlpool"
	"github.com/coderealm-atlas/my-mysql/netcfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLooksLikeQuery(t *testing.T) {
	assert.True(t, looksLikeQuery("SELECT 1"))
	assert.True(t, looksLikeQuery("  select * from t"))
	assert.True(t, looksLikeQuery("SHOW TABLES"))
	assert.True(t, looksLikeQuery("WITH x AS (SELECT 1) SELECT * FROM x"))
	assert.False(t, looksLikeQuery("INSERT INTO t VALUES (1)"))
	assert.False(t, looksLikeQuery("UPDATE t SET a = 1"))
	assert.False(t, looksLikeQuery("DELETE FROM t"))
}

func newUnreachableSession(t *testing.T) *MonadicSession {
	t.Helper()
	cfg := &mysqlpool.Config{Host: "127.0.0.1", Port: 1, Username: "app", Password: "x", Database: "appdb"}
	executor := netcfg.NewExecutor(1)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	pool, err := mysqlpool.New(ctx, cfg, executor, netcfg.DefaultSLogger())
	require.NoError(t, err)
	t.Cleanup(func() { pool.Stop() })
	return NewMonadicSession(pool, netcfg.DefaultSLogger())
}

func TestRunQueryPropagatesAcquireError(t *testing.T) {
	sess := newUnreachableSession(t)

	done := make(chan struct{})
	var out ioeffect.Res[*State]
	sess.RunQuery(context.Background(), "SELECT 1", 30*time.Millisecond).Run(context.Background(), func(r ioeffect.Res[*State]) {
		out = r
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("RunQuery did not deliver within 2s")
	}
	require.True(t, out.IsErr())
	assert.Contains(t, []int{errs.ConnectionTimeout, errs.SQLFailed}, out.ErrorValue().Code)
}

// newLiveSession returns a *MonadicSession backed by a real MySQL server
// named by the MYSQL_TEST_HOST/MYSQL_TEST_PORT/MYSQL_TEST_USER/
// MYSQL_TEST_PASSWORD/MYSQL_TEST_DATABASE environment variables, skipping
// the test when MYSQL_TEST_HOST is unset. There is no third-party MySQL
// server double in this module's dependency set, so the multi-statement
// round trip below can only be exercised end to end, the same way
// TestRunQueryPropagatesAcquireError already dials a real *sql.DB via
// mysqlpool.New rather than a mock.
func newLiveSession(t *testing.T) *MonadicSession {
	t.Helper()
	host := os.Getenv("MYSQL_TEST_HOST")
	if host == "" {
		t.Skip("MYSQL_TEST_HOST not set, skipping live MySQL test")
	}
	port := 3306
	if v := os.Getenv("MYSQL_TEST_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		require.NoError(t, err)
		port = p
	}
	cfg := &mysqlpool.Config{
		Host:     host,
		Port:     port,
		Username: envOr("MYSQL_TEST_USER", "root"),
		Password: os.Getenv("MYSQL_TEST_PASSWORD"),
		Database: envOr("MYSQL_TEST_DATABASE", "test"),
	}
	executor := netcfg.NewExecutor(1)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	pool, err := mysqlpool.New(ctx, cfg, executor, netcfg.DefaultSLogger())
	require.NoError(t, err)
	t.Cleanup(func() { pool.Stop() })
	return NewMonadicSession(pool, netcfg.DefaultSLogger())
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func runLive(t *testing.T, sess *MonadicSession, sqlText string) *State {
	t.Helper()
	done := make(chan struct{})
	var out ioeffect.Res[*State]
	sess.RunQuery(context.Background(), sqlText, 5*time.Second).Run(context.Background(), func(r ioeffect.Res[*State]) {
		out = r
		close(done)
	})
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("RunQuery did not deliver within 10s")
	}
	require.True(t, out.IsOk(), "unexpected error: %+v", out)
	return out.Value()
}

// TestRunStatementMultiStatementRoundTrip exercises the insert-count-delete
// round trip: a single semicolon-joined batch mixing INSERT, SELECT
// LAST_INSERT_ID(), SELECT COUNT(*), and DELETE must produce one
// ResultSetView per statement, each carrying that statement's own
// affected-rows-vs-rows shape rather than the shape implied by the
// batch's first keyword.
func TestRunStatementMultiStatementRoundTrip(t *testing.T) {
	sess := newLiveSession(t)

	setup := runLive(t, sess, "CREATE TABLE IF NOT EXISTS dbsession_roundtrip_test (id BIGINT AUTO_INCREMENT PRIMARY KEY, val INT)")
	require.False(t, setup.HasError(), setup.ErrorMessage())
	t.Cleanup(func() {
		runLive(t, sess, "DROP TABLE IF EXISTS dbsession_roundtrip_test")
	})

	state := runLive(t, sess, ""+
		"INSERT INTO dbsession_roundtrip_test (val) VALUES (42); "+
		"SELECT LAST_INSERT_ID(); "+
		"SELECT COUNT(*) FROM dbsession_roundtrip_test WHERE val = 42; "+
		"DELETE FROM dbsession_roundtrip_test WHERE val = 42;")
	require.False(t, state.HasError(), state.ErrorMessage())
	require.Len(t, state.Results, 4)

	require.True(t, state.ExpectAffectedOneRow("insert", 0).IsOk())

	idRes := ExpectOneValue[int64](state, "last insert id", 1, 0)
	require.True(t, idRes.IsOk())
	assert.Greater(t, idRes.Value(), int64(0))

	countRes := ExpectCount(state, "count", 2, 0)
	require.True(t, countRes.IsOk())
	assert.Equal(t, int64(1), countRes.Value())

	require.True(t, state.ExpectAffectedOneRow("delete", 3).IsOk())
}
