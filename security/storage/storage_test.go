// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/named-data/ndn-go/blob"
	"github.com/named-data/ndn-go/ndnname"
	"github.com/named-data/ndn-go/packet"
	"github.com/named-data/ndn-go/security/certificate"
)

func mustName(t *testing.T, uri string) *ndnname.Name {
	t.Helper()
	n, err := ndnname.FromEscapedString(uri)
	require.NoError(t, err)
	return n
}

func makeCert(t *testing.T, uri string, notAfter time.Time) *certificate.Certificate {
	t.Helper()
	d := packet.NewData(mustName(t, uri))
	d.MetaInfo().SetContentType(packet.ContentTypeKey)
	d.SetContent(blob.New([]byte{0x30, 0x00}))
	d.Signature().SetSignatureType(packet.SignatureTypeSha256WithEcdsa)
	d.Signature().SetValidityPeriod(packet.NewValidityPeriod(time.Now().Add(-time.Hour), notAfter))
	d.Encode()
	cert, err := certificate.FromData(d)
	require.NoError(t, err)
	return cert
}

func TestCacheFindByPrefix(t *testing.T) {
	cache := NewCertificateCache(time.Hour)
	cert := makeCert(t, "/a/KEY/k1/self/v1", time.Now().Add(24*time.Hour))
	cache.Insert(cert)

	require.NotNil(t, cache.Find(mustName(t, "/a/KEY/k1")))
	require.NotNil(t, cache.Get(mustName(t, "/a/KEY/k1/self/v1")))
	require.Nil(t, cache.Find(mustName(t, "/b")))
}

func TestCacheEntryExpiresAtMaxLifetime(t *testing.T) {
	cache := NewCertificateCache(time.Hour)
	cache.Insert(makeCert(t, "/a/KEY/k1/self/v1", time.Now().Add(24*time.Hour)))

	cache.SetNowOffset(59 * time.Minute)
	require.NotNil(t, cache.Find(mustName(t, "/a")))

	cache.SetNowOffset(61 * time.Minute)
	require.Nil(t, cache.Find(mustName(t, "/a")))
	require.Equal(t, 0, cache.Len())
}

func TestCacheEntryExpiresAtNotAfter(t *testing.T) {
	cache := NewCertificateCache(time.Hour)
	// notAfter comes before insertedAt+maxLifetime.
	cache.Insert(makeCert(t, "/a/KEY/k1/self/v1", time.Now().Add(10*time.Minute)))

	cache.SetNowOffset(11 * time.Minute)
	require.Nil(t, cache.Find(mustName(t, "/a")))
}

func TestCacheFindByInterestHonorsExclude(t *testing.T) {
	cache := NewCertificateCache(time.Hour)
	cache.Insert(makeCert(t, "/a/KEY/k1/self/v1", time.Now().Add(24*time.Hour)))

	interest := packet.NewInterest(mustName(t, "/a/KEY/k1"))
	require.NotNil(t, cache.FindByInterest(interest))

	excluding := packet.NewInterest(mustName(t, "/a/KEY/k1"))
	excluding.Exclude().AppendComponent(ndnname.NewComponentFromString("self"))
	require.Nil(t, cache.FindByInterest(excluding))
}

func TestTrustAnchorStaticGroup(t *testing.T) {
	anchors := NewTrustAnchorContainer()
	cert := makeCert(t, "/root/KEY/k0/self/v1", time.Now().Add(24*time.Hour))
	require.NoError(t, anchors.Insert("static", cert))
	require.Equal(t, 1, anchors.Size())

	require.NotNil(t, anchors.Find(mustName(t, "/root/KEY/k0")))
	require.Nil(t, anchors.Find(mustName(t, "/other")))
	require.NotNil(t, anchors.Get(mustName(t, "/root/KEY/k0/self/v1")))

	// Re-inserting the same name replaces, not duplicates.
	require.NoError(t, anchors.Insert("static", cert))
	require.Equal(t, 1, anchors.Size())
}

func TestTrustAnchorDynamicDirectoryRefresh(t *testing.T) {
	dir := t.TempDir()
	cert := makeCert(t, "/zone/KEY/k0/self/v1", time.Now().Add(24*time.Hour))
	writeCertFile(t, filepath.Join(dir, "zone.cert"), cert, false)

	anchors := NewTrustAnchorContainer()
	require.NoError(t, anchors.InsertDynamic("dynamic", dir, 10*time.Millisecond))
	require.NotNil(t, anchors.Find(mustName(t, "/zone/KEY/k0")))

	// A certificate added to the directory appears after the refresh
	// period.
	other := makeCert(t, "/other/KEY/k1/self/v1", time.Now().Add(24*time.Hour))
	writeCertFile(t, filepath.Join(dir, "other.cert"), other, true)
	time.Sleep(20 * time.Millisecond)
	require.NotNil(t, anchors.Find(mustName(t, "/other/KEY/k1")))

	// A removed file disappears the same way.
	require.NoError(t, os.Remove(filepath.Join(dir, "zone.cert")))
	time.Sleep(20 * time.Millisecond)
	require.Nil(t, anchors.Find(mustName(t, "/zone/KEY/k0")))

	anchors.Close()
}

func TestTrustAnchorDynamicRejectsBadRefresh(t *testing.T) {
	anchors := NewTrustAnchorContainer()
	require.Error(t, anchors.InsertDynamic("bad", t.TempDir(), 0))
	require.Error(t, anchors.InsertDynamic("bad", t.TempDir(), -time.Second))
}

func TestLoadCertificateFromFileBase64(t *testing.T) {
	cert := makeCert(t, "/b64/KEY/k0/self/v1", time.Now().Add(24*time.Hour))
	path := filepath.Join(t.TempDir(), "cert.b64")
	writeCertFile(t, path, cert, true)

	loaded, err := LoadCertificateFromFile(path)
	require.NoError(t, err)
	require.True(t, loaded.Name().Equals(cert.Name()))
}

func TestStorageLookupUnion(t *testing.T) {
	s := NewCertificateStorage(time.Hour, 5*time.Minute)
	anchor := makeCert(t, "/anchor/KEY/k0/self/v1", time.Now().Add(24*time.Hour))
	verified := makeCert(t, "/verified/KEY/k1/a/v1", time.Now().Add(24*time.Hour))
	unverified := makeCert(t, "/unverified/KEY/k2/a/v1", time.Now().Add(24*time.Hour))

	require.NoError(t, s.TrustAnchors().Insert("g", anchor))
	s.CacheVerified(verified)
	s.CacheUnverified(unverified)

	require.True(t, s.IsCertificateKnown(mustName(t, "/anchor/KEY/k0")))
	require.True(t, s.IsCertificateKnown(mustName(t, "/verified/KEY/k1")))
	require.True(t, s.IsCertificateKnown(mustName(t, "/unverified/KEY/k2")))
	require.False(t, s.IsCertificateKnown(mustName(t, "/absent")))

	// FindTrustedCertificate only consults anchors and the verified
	// cache.
	require.NotNil(t, s.FindTrustedCertificate(packet.NewInterest(mustName(t, "/anchor/KEY/k0"))))
	require.NotNil(t, s.FindTrustedCertificate(packet.NewInterest(mustName(t, "/verified/KEY/k1"))))
	require.Nil(t, s.FindTrustedCertificate(packet.NewInterest(mustName(t, "/unverified/KEY/k2"))))
}

func TestCacheVerifiedPromotionDropsUnverified(t *testing.T) {
	s := NewCertificateStorage(time.Hour, 5*time.Minute)
	cert := makeCert(t, "/c/KEY/k0/self/v1", time.Now().Add(24*time.Hour))

	s.CacheUnverified(cert)
	require.NotNil(t, s.UnverifiedCache().Get(cert.Name()))

	s.CacheVerified(cert)
	require.Nil(t, s.UnverifiedCache().Get(cert.Name()))
	require.NotNil(t, s.VerifiedCache().Get(cert.Name()))
}

func writeCertFile(t *testing.T, path string, cert *certificate.Certificate, asBase64 bool) {
	t.Helper()
	wire := cert.Data().WireEncoding().Bytes()
	var content []byte
	if asBase64 {
		content = []byte(base64.StdEncoding.EncodeToString(wire) + "\n")
	} else {
		content = wire
	}
	require.NoError(t, os.WriteFile(path, content, 0o644))
}
