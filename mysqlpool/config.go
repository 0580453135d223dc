// SPDX-License-Identifier: GPL-3.0-or-later
//
// Grounded on: original_source/include/mysql_base.hpp (MysqlConfig)

// Package mysqlpool wraps a database/sql.DB registered against
// go-sql-driver/mysql as a bounded pool of *sql.Conn, acquired through an
// ioeffect.IO pipeline instead of a blocking call.
package mysqlpool

// Config is the JSON-shaped configuration for a MySQL connection pool,
// carrying exactly the fields the original C++ MysqlConfig struct
// serialized.
type Config struct {
	Host           string `json:"host"`
	Port           int    `json:"port"`
	Username       string `json:"username"`
	Password       string `json:"password"`
	Database       string `json:"database"`
	CAStr          string `json:"ca_str"`
	CertStr        string `json:"cert_str"`
	CertKeyStr     string `json:"cert_key_str"`
	SSL            int    `json:"ssl"`
	MultiQueries   bool   `json:"multi_queries"`
	UnixSocket     string `json:"unix_socket"`
	UsernameSocket string `json:"username_socket"`
	PasswordSocket string `json:"password_socket"`
	ThreadSafe     bool   `json:"thread_safe"`

	// InitialSize seeds SetMaxIdleConns; zero defaults to 1.
	InitialSize uint64 `json:"initial_size"`
	// MaxSize seeds SetMaxOpenConns; zero defaults to 151 (MySQL's own
	// default max_connections headroom).
	MaxSize uint64 `json:"max_size"`
	// PingIntervalSeconds arms the supervisory ping loop; zero disables it.
	PingIntervalSeconds uint64 `json:"ping_interval_seconds"`
}

const (
	defaultInitialSize = 1
	defaultMaxSize      = 151
)

func (c *Config) initialSize() int {
	if c.InitialSize == 0 {
		return defaultInitialSize
	}
	return int(c.InitialSize)
}

func (c *Config) maxSize() int {
	if c.MaxSize == 0 {
		return defaultMaxSize
	}
	return int(c.MaxSize)
}

// usesUnixSocket reports whether the pool should dial a local unix socket
// instead of a TCP host:port, mirroring the C++ source's branch in
// sql::params.
func (c *Config) usesUnixSocket() bool {
	return c.UnixSocket != ""
}
