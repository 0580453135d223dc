// SPDX-License-Identifier: GPL-3.0-or-later
//
// Grounded on: original_source/include/mysql_base.hpp (sql::params)

package mysqlpool

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"fmt"

	"github.com/coderealm-atlas/my-mysql/errs"
	"github.com/go-sql-driver/mysql"
)

// Params is the DSN plus optional TLS material assembled once from a
// Config, the Go equivalent of the C++ source's mysql::pool_params.
type Params struct {
	DSN       string
	TLSConfig *tls.Config
	// TLSConfigName is the name TLSConfig, if non-nil, is registered under
	// via mysql.RegisterTLSConfig; the DSN references it as tls=<name>.
	TLSConfigName string
}

// buildParams assembles a Params from cfg. tlsConfigName is used to
// register the TLS config with the mysql driver when one is required;
// callers must pass a name unique to this pool instance.
func buildParams(cfg *Config, tlsConfigName string) (*Params, error) {
	cc := mysql.NewConfig()
	cc.Net = "tcp"
	cc.ParseTime = true
	cc.MultiStatements = cfg.MultiQueries
	cc.DBName = cfg.Database

	if cfg.usesUnixSocket() {
		cc.Net = "unix"
		cc.Addr = cfg.UnixSocket
		cc.User = cfg.UsernameSocket
		cc.Passwd = cfg.PasswordSocket
		return &Params{DSN: cc.FormatDSN()}, nil
	}

	cc.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	cc.User = cfg.Username
	cc.Passwd = cfg.Password

	p := &Params{DSN: "", TLSConfigName: ""}
	if cfg.SSL <= 0 {
		p.DSN = cc.FormatDSN()
		return p, nil
	}

	tlsCfg, err := buildTLSConfig(cfg)
	if err != nil {
		return nil, err
	}
	if err := mysql.RegisterTLSConfig(tlsConfigName, tlsCfg); err != nil {
		return nil, errs.Wrap(errs.SQLFailed, "registering mysql tls config failed", err)
	}
	cc.TLSConfig = tlsConfigName
	p.DSN = cc.FormatDSN()
	p.TLSConfig = tlsCfg
	p.TLSConfigName = tlsConfigName
	return p, nil
}

// buildTLSConfig decodes the base64-carried CA/certificate/key material,
// the same encoding the C++ source's MysqlConfig fields use, and produces
// a tls.Config. The enable/require distinction between cfg.SSL == 1 and
// cfg.SSL == 2 (mysql::ssl_mode::enable vs. require) governs only whether
// buildParams requires TLS at all; boost::mysql calls
// set_verify_mode(verify_peer) unconditionally whenever ssl > 0, so peer
// verification stays on Go's default (enabled) for both values.
func buildTLSConfig(cfg *Config) (*tls.Config, error) {
	tlsCfg := &tls.Config{}

	if cfg.CAStr != "" {
		ca, err := base64.StdEncoding.DecodeString(cfg.CAStr)
		if err != nil {
			return nil, errs.Wrap(errs.BadValueAccess, "decoding ca_str failed", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(ca) {
			return nil, errs.New(errs.BadValueAccess, "ca_str does not contain a valid PEM certificate")
		}
		tlsCfg.RootCAs = pool
	}

	if cfg.CertStr != "" && cfg.CertKeyStr != "" {
		certPEM, err := base64.StdEncoding.DecodeString(cfg.CertStr)
		if err != nil {
			return nil, errs.Wrap(errs.BadValueAccess, "decoding cert_str failed", err)
		}
		keyPEM, err := base64.StdEncoding.DecodeString(cfg.CertKeyStr)
		if err != nil {
			return nil, errs.Wrap(errs.BadValueAccess, "decoding cert_key_str failed", err)
		}
		cert, err := tls.X509KeyPair(certPEM, keyPEM)
		if err != nil {
			return nil, errs.Wrap(errs.BadValueAccess, "parsing client certificate/key failed", err)
		}
		tlsCfg.Certificates = []tls.Certificate{cert}
	}

	return tlsCfg, nil
}
