// SPDX-License-Identifier: GPL-3.0-or-later
//
// Grounded on: original_source/tests/include/proxy_pool.hpp
// (client_async::ProxyPool: next/blacklist/reset_blacklist)

package httpclient

import (
	"strconv"
	"sync"
	"time"

	"github.com/coderealm-atlas/my-mysql/errs"
	"github.com/coderealm-atlas/my-mysql/httpconn"
)

// Origin returns the proxy's dialing address as an "http" scheme
// httpconn.Origin: a proxy hop is always plain TCP even when the
// tunneled destination is https.
func (p ProxySetting) Origin() (httpconn.Origin, error) {
	port, err := strconv.Atoi(p.Port)
	if err != nil {
		return httpconn.Origin{}, errs.Wrap(errs.BadValueAccess, "invalid proxy port", err)
	}
	return httpconn.Origin{Scheme: "http", Host: p.Host, Port: uint16(port)}, nil
}

// ProxyPool round-robins over a fixed list of upstream proxies, skipping
// any temporarily blacklisted by a caller. It is safe for concurrent use.
type ProxyPool struct {
	mu        sync.Mutex
	proxies   []ProxySetting
	blacklist map[ProxySetting]time.Time
	index     int
}

// NewProxyPool returns a *ProxyPool over the enabled entries of proxies;
// entries with Disabled set are dropped at construction, matching the
// original's load-time filter.
func NewProxyPool(proxies []ProxySetting) *ProxyPool {
	enabled := make([]ProxySetting, 0, len(proxies))
	for _, p := range proxies {
		if !p.Disabled {
			enabled = append(enabled, p)
		}
	}
	return &ProxyPool{proxies: enabled, blacklist: make(map[ProxySetting]time.Time)}
}

// Empty reports whether the pool has no usable proxies configured.
func (p *ProxyPool) Empty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.proxies) == 0
}

// Size returns the number of configured (enabled) proxies, blacklisted
// or not.
func (p *ProxyPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.proxies)
}

// Next returns the next non-blacklisted proxy in round-robin order, or
// false if every configured proxy is currently blacklisted (or none are
// configured).
func (p *ProxyPool) Next() (ProxySetting, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.proxies) == 0 {
		return ProxySetting{}, false
	}
	p.cleanExpiredLocked()

	for tries := 0; tries < len(p.proxies); tries++ {
		candidate := p.proxies[p.index]
		p.index = (p.index + 1) % len(p.proxies)
		if !p.isBlacklistedLocked(candidate) {
			return candidate, true
		}
	}
	return ProxySetting{}, false
}

// Blacklist fences proxy off from Next for ttl. A non-positive ttl
// blacklists it forever until ResetBlacklist is called.
func (p *ProxyPool) Blacklist(proxy ProxySetting, ttl time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	expiry := time.Now().Add(ttl)
	if ttl <= 0 {
		expiry = time.Now().Add(100 * 365 * 24 * time.Hour)
	}
	p.blacklist[proxy] = expiry
}

// ResetBlacklist clears every blacklist entry.
func (p *ProxyPool) ResetBlacklist() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.blacklist = make(map[ProxySetting]time.Time)
}

func (p *ProxyPool) isBlacklistedLocked(proxy ProxySetting) bool {
	expiry, ok := p.blacklist[proxy]
	if !ok {
		return false
	}
	return time.Now().Before(expiry)
}

func (p *ProxyPool) cleanExpiredLocked() {
	now := time.Now()
	for proxy, expiry := range p.blacklist {
		if now.After(expiry) {
			delete(p.blacklist, proxy)
		}
	}
}
