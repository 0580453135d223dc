// SPDX-License-Identifier: GPL-3.0-or-later

package httpclient

import (
	"crypto/tls"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveThreadsAuto(t *testing.T) {
	cfg := &Config{ThreadsNum: 0}
	assert.Greater(t, cfg.EffectiveThreads(), 0)
}

func TestEffectiveThreadsClampedToNumCPU(t *testing.T) {
	cfg := &Config{ThreadsNum: 1 << 20}
	assert.Equal(t, (&Config{}).EffectiveThreads(), cfg.EffectiveThreads())
}

func TestEffectiveThreadsHonorsSmallExplicitValue(t *testing.T) {
	cfg := &Config{ThreadsNum: 1}
	assert.Equal(t, 1, cfg.EffectiveThreads())
}

func TestBuildTLSConfigInsecureSkipVerify(t *testing.T) {
	cfg := &Config{InsecureSkipVerify: true}
	tlsCfg, err := BuildTLSConfig(cfg)
	require.NoError(t, err)
	assert.True(t, tlsCfg.InsecureSkipVerify)
}

func TestBuildTLSConfigSSLMethodSetsMinVersion(t *testing.T) {
	cfg := &Config{SSLMethod: "tlsv12_client"}
	tlsCfg, err := BuildTLSConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, uint16(tls.VersionTLS12), tlsCfg.MinVersion)
}

func TestBuildTLSConfigUnknownSSLMethodLeavesMinVersionZero(t *testing.T) {
	cfg := &Config{SSLMethod: "sslv23_client"}
	tlsCfg, err := BuildTLSConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), tlsCfg.MinVersion)
}

func TestBuildTLSConfigBadVerifyPathFails(t *testing.T) {
	cfg := &Config{VerifyPaths: []string{"/nonexistent/path/to/ca.pem"}}
	_, err := BuildTLSConfig(cfg)
	require.Error(t, err)
}

func TestBuildTLSConfigInlineCertificatePEM(t *testing.T) {
	cfg := &Config{Certificates: []Certificate{{CertContent: testCAPEM, FileFormat: "pem"}}}
	tlsCfg, err := BuildTLSConfig(cfg)
	require.NoError(t, err)
	assert.NotNil(t, tlsCfg.RootCAs)
}

func TestBuildTLSConfigInlineCertificateBadPEMFails(t *testing.T) {
	cfg := &Config{Certificates: []Certificate{{CertContent: "not a certificate", FileFormat: "pem"}}}
	_, err := BuildTLSConfig(cfg)
	require.Error(t, err)
}
