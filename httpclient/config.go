// SPDX-License-Identifier: GPL-3.0-or-later
//
// Grounded on: original_source/tests/include/http_client_config_provider.hpp
// (HttpclientConfig, HttpclientCertificate, HttpclientCertificateFile,
// ProxySetting, ssl_method_from_string)

// Package httpclient implements a pooled HTTP/HTTPS session on top of
// package httppool, adding proxy CONNECT tunneling, TLS trust
// configuration, and body-kind-specific response reading.
package httpclient

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"os"
	"runtime"

	"github.com/coderealm-atlas/my-mysql/errs"
)

// Certificate is an inline PEM (or base64-encoded DER) certificate to add
// to the trust store, keyed by FileFormat ("pem" or "der"; "pem" is the
// default when empty).
type Certificate struct {
	CertContent string `json:"cert_content"`
	FileFormat  string `json:"file_format"`
}

// CertificateFile is a filesystem path to a certificate to add to the
// trust store, in the same FileFormat convention as [Certificate].
type CertificateFile struct {
	CertPath   string `json:"cert_path"`
	FileFormat string `json:"file_format"`
}

// ProxySetting names one upstream HTTP proxy. Port is kept as a string
// (rather than a number) because the original configuration accepted
// either JSON shape; callers dial with [ProxySetting.Origin].
type ProxySetting struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	Disabled bool   `json:"disabled"`
}

// Config is the JSON shape of the pooled HTTP client's static
// configuration: TLS trust material, thread hint, and a proxy pool.
type Config struct {
	SSLMethod          string            `json:"ssl_method"`
	ThreadsNum         int               `json:"threads_num"`
	DefaultVerifyPath  bool              `json:"default_verify_path"`
	InsecureSkipVerify bool              `json:"insecure_skip_verify"`
	VerifyPaths        []string          `json:"verify_paths"`
	Certificates       []Certificate     `json:"certificates"`
	CertificateFiles   []CertificateFile `json:"certificate_files"`
	ProxyPool          []ProxySetting    `json:"proxy_pool"`
}

// EffectiveThreads returns ThreadsNum clamped to [1, runtime.NumCPU()].
// ThreadsNum <= 0 means "auto": use every available CPU.
func (c *Config) EffectiveThreads() int {
	n := runtime.NumCPU()
	if c.ThreadsNum <= 0 || c.ThreadsNum > n {
		return n
	}
	return c.ThreadsNum
}

// sslMethodMinVersion maps a subset of the original's OpenSSL method
// names onto a Go tls.Config.MinVersion. Names outside this table
// (sslv23/tls/tls_client/...) leave MinVersion at Go's own default.
var sslMethodMinVersion = map[string]uint16{
	"tlsv1":         tls.VersionTLS10,
	"tlsv1_client":  tls.VersionTLS10,
	"tlsv11":        tls.VersionTLS11,
	"tlsv11_client": tls.VersionTLS11,
	"tlsv12":        tls.VersionTLS12,
	"tlsv12_client": tls.VersionTLS12,
	"tlsv13":        tls.VersionTLS13,
	"tlsv13_client": tls.VersionTLS13,
}

// BuildTLSConfig assembles a *tls.Config from cfg's trust material:
// system roots (when DefaultVerifyPath), PEM files named by VerifyPaths,
// inline certificates, and certificate files, plus InsecureSkipVerify
// and a best-effort SSLMethod-derived MinVersion.
func BuildTLSConfig(cfg *Config) (*tls.Config, error) {
	pool, err := rootPool(cfg.DefaultVerifyPath)
	if err != nil {
		return nil, err
	}

	for _, path := range cfg.VerifyPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errs.Wrap(errs.BadValueAccess, "reading verify path failed", err)
		}
		if !pool.AppendCertsFromPEM(data) {
			return nil, errs.New(errs.BadValueAccess, fmt.Sprintf("no usable certificates in %s", path))
		}
	}

	for _, cert := range cfg.Certificates {
		if err := addCertToPool(pool, []byte(cert.CertContent), cert.FileFormat); err != nil {
			return nil, err
		}
	}

	for _, cert := range cfg.CertificateFiles {
		data, err := os.ReadFile(cert.CertPath)
		if err != nil {
			return nil, errs.Wrap(errs.BadValueAccess, "reading certificate file failed", err)
		}
		if err := addCertToPool(pool, data, cert.FileFormat); err != nil {
			return nil, err
		}
	}

	tlsCfg := &tls.Config{
		RootCAs:            pool,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}
	if minVersion, ok := sslMethodMinVersion[cfg.SSLMethod]; ok {
		tlsCfg.MinVersion = minVersion
	}
	return tlsCfg, nil
}

func rootPool(useSystem bool) (*x509.CertPool, error) {
	if !useSystem {
		return x509.NewCertPool(), nil
	}
	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		return x509.NewCertPool(), nil
	}
	return pool, nil
}

// addCertToPool appends content to pool. FileFormat "der" treats content
// as base64-encoded DER; anything else (including "" and "pem") treats
// it as PEM.
func addCertToPool(pool *x509.CertPool, content []byte, fileFormat string) error {
	if fileFormat != "der" {
		if !pool.AppendCertsFromPEM(content) {
			return errs.New(errs.BadValueAccess, "no usable certificates in configured cert content")
		}
		return nil
	}

	der := make([]byte, base64.StdEncoding.DecodedLen(len(content)))
	n, err := base64.StdEncoding.Decode(der, content)
	if err != nil {
		return errs.Wrap(errs.BadValueAccess, "decoding base64 der certificate failed", err)
	}
	cert, err := x509.ParseCertificate(der[:n])
	if err != nil {
		return errs.Wrap(errs.BadValueAccess, "parsing der certificate failed", err)
	}
	pool.AddCert(cert)
	return nil
}
