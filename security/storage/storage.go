// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"time"

	"github.com/named-data/ndn-go/ndnname"
	"github.com/named-data/ndn-go/packet"
	"github.com/named-data/ndn-go/security/certificate"
)

// CertificateStorage bundles the three certificate stores a Validator
// consults: the trust-anchor container, the verified cache, and the
// unverified cache.
type CertificateStorage struct {
	anchors    *TrustAnchorContainer
	verified   *CertificateCache
	unverified *CertificateCache
}

// NewCertificateStorage returns storage with the given cache lifetimes.
func NewCertificateStorage(verifiedLifetime, unverifiedLifetime time.Duration) *CertificateStorage {
	return &CertificateStorage{
		anchors:    NewTrustAnchorContainer(),
		verified:   NewCertificateCache(verifiedLifetime),
		unverified: NewCertificateCache(unverifiedLifetime),
	}
}

// TrustAnchors returns the anchor container.
func (s *CertificateStorage) TrustAnchors() *TrustAnchorContainer { return s.anchors }

// VerifiedCache returns the verified-certificate cache.
func (s *CertificateStorage) VerifiedCache() *CertificateCache { return s.verified }

// UnverifiedCache returns the unverified-certificate cache.
func (s *CertificateStorage) UnverifiedCache() *CertificateCache { return s.unverified }

// FindTrustedCertificate searches the anchors, then the verified cache,
// for a certificate matching interest. A hit means the chain walk can
// stop: the certificate is already trusted.
func (s *CertificateStorage) FindTrustedCertificate(interest *packet.Interest) *certificate.Certificate {
	if cert := s.anchors.FindByInterest(interest); cert != nil {
		return cert
	}
	return s.verified.FindByInterest(interest)
}

// IsCertificateKnown reports whether any store holds a certificate
// whose name starts with certPrefix.
func (s *CertificateStorage) IsCertificateKnown(certPrefix *ndnname.Name) bool {
	return s.anchors.Find(certPrefix) != nil ||
		s.verified.Find(certPrefix) != nil ||
		s.unverified.Find(certPrefix) != nil
}

// CacheUnverified stores a freshly fetched, not yet verified
// certificate.
func (s *CertificateStorage) CacheUnverified(cert *certificate.Certificate) {
	s.unverified.Insert(cert)
}

// CacheVerified promotes a certificate whose chain checked out.
func (s *CertificateStorage) CacheVerified(cert *certificate.Certificate) {
	s.verified.Insert(cert)
	s.unverified.Remove(cert.Name())
}
