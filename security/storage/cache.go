// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package storage implements certificate storage for validation: the
// trust-anchor container (static and filesystem-refreshed dynamic
// groups), and the verified/unverified certificate caches.
package storage

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/named-data/ndn-go/ndnname"
	"github.com/named-data/ndn-go/packet"
	"github.com/named-data/ndn-go/security/certificate"
)

// cacheCapacity bounds each certificate cache; beyond it the
// least-recently-used entry is evicted regardless of lifetime.
const cacheCapacity = 1000

type cacheEntry struct {
	cert        *certificate.Certificate
	removalTime time.Time
}

// CertificateCache holds certificates for a bounded time: each entry is
// dropped at min(notAfter, insertedAt+maxLifetime). The validator keeps
// two of these — a verified cache (default lifetime one hour) and an
// unverified cache (default five minutes).
type CertificateCache struct {
	entries     *lru.Cache[string, *cacheEntry]
	maxLifetime time.Duration

	// nextRefresh is the earliest removal time of any entry; the
	// expiry sweep only walks the cache once that instant has passed.
	nextRefresh time.Time
	nowOffset   time.Duration
}

// NewCertificateCache returns a cache with the given per-entry maximum
// lifetime.
func NewCertificateCache(maxLifetime time.Duration) *CertificateCache {
	entries, _ := lru.New[string, *cacheEntry](cacheCapacity)
	return &CertificateCache{entries: entries, maxLifetime: maxLifetime}
}

// SetNowOffset adds a test-only offset to the cache's clock.
func (c *CertificateCache) SetNowOffset(d time.Duration) { c.nowOffset = d }

func (c *CertificateCache) now() time.Time { return time.Now().Add(c.nowOffset) }

// Insert adds cert, scheduling its removal at the earlier of its
// notAfter and insertedAt+maxLifetime.
func (c *CertificateCache) Insert(cert *certificate.Certificate) {
	now := c.now()
	removal := now.Add(c.maxLifetime)
	if notAfter := cert.ValidityPeriod().NotAfter; notAfter.Before(removal) {
		removal = notAfter
	}
	if c.entries.Len() == 0 || removal.Before(c.nextRefresh) {
		c.nextRefresh = removal
	}
	c.entries.Add(cert.Name().ToUri(), &cacheEntry{cert: cert, removalTime: removal})
}

// Find returns the first live certificate whose name starts with
// prefix, or nil.
func (c *CertificateCache) Find(prefix *ndnname.Name) *certificate.Certificate {
	c.refresh()
	for _, key := range c.entries.Keys() {
		entry, ok := c.entries.Peek(key)
		if !ok {
			continue
		}
		if prefix.Match(entry.cert.Name()) {
			return entry.cert
		}
	}
	return nil
}

// FindByInterest returns the first live certificate matching interest's
// name and Exclude selector (ChildSelector is not honored), or nil.
func (c *CertificateCache) FindByInterest(interest *packet.Interest) *certificate.Certificate {
	c.refresh()
	for _, key := range c.entries.Keys() {
		entry, ok := c.entries.Peek(key)
		if !ok {
			continue
		}
		if certificateMatchesInterest(entry.cert, interest) {
			return entry.cert
		}
	}
	return nil
}

// Get returns the live certificate with exactly the given name, or nil.
func (c *CertificateCache) Get(name *ndnname.Name) *certificate.Certificate {
	c.refresh()
	entry, ok := c.entries.Get(name.ToUri())
	if !ok {
		return nil
	}
	return entry.cert
}

// Remove deletes the certificate with exactly the given name.
func (c *CertificateCache) Remove(name *ndnname.Name) {
	c.entries.Remove(name.ToUri())
}

// Clear empties the cache.
func (c *CertificateCache) Clear() {
	c.entries.Purge()
	c.nextRefresh = time.Time{}
}

// Len returns the number of entries, expired ones included until the
// next sweep.
func (c *CertificateCache) Len() int { return c.entries.Len() }

// refresh sweeps expired entries once the earliest removal time has
// passed.
func (c *CertificateCache) refresh() {
	now := c.now()
	if c.entries.Len() == 0 || now.Before(c.nextRefresh) {
		return
	}
	var next time.Time
	for _, key := range c.entries.Keys() {
		entry, ok := c.entries.Peek(key)
		if !ok {
			continue
		}
		if !entry.removalTime.After(now) {
			c.entries.Remove(key)
			continue
		}
		if next.IsZero() || entry.removalTime.Before(next) {
			next = entry.removalTime
		}
	}
	c.nextRefresh = next
}

// certificateMatchesInterest applies the Interest-matching subset
// certificate lookup uses: prefix match plus the Exclude selector
// against the component following the matched prefix.
func certificateMatchesInterest(cert *certificate.Certificate, interest *packet.Interest) bool {
	name := cert.Name()
	if !interest.Name().Match(name) {
		return false
	}
	if interest.Exclude().Size() > 0 && name.Size() > interest.Name().Size() {
		next, err := name.Get(interest.Name().Size())
		if err == nil && interest.Exclude().Matches(next) {
			return false
		}
	}
	return true
}
