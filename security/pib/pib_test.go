// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pib

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/named-data/ndn-go/blob"
	"github.com/named-data/ndn-go/ndnname"
	"github.com/named-data/ndn-go/packet"
	"github.com/named-data/ndn-go/security"
	"github.com/named-data/ndn-go/security/certificate"
)

func mustName(t *testing.T, uri string) *ndnname.Name {
	t.Helper()
	n, err := ndnname.FromEscapedString(uri)
	require.NoError(t, err)
	return n
}

func makeCert(t *testing.T, uri string) *certificate.Certificate {
	t.Helper()
	d := packet.NewData(mustName(t, uri))
	d.MetaInfo().SetContentType(packet.ContentTypeKey)
	d.SetContent(blob.New([]byte{0x30, 0x00}))
	d.Signature().SetSignatureType(packet.SignatureTypeSha256WithEcdsa)
	d.Signature().SetValidityPeriod(packet.NewValidityPeriod(
		time.Now().Add(-time.Hour), time.Now().Add(time.Hour)))
	d.Encode()
	cert, err := certificate.FromData(d)
	require.NoError(t, err)
	return cert
}

func TestIdentityLifecycle(t *testing.T) {
	m := NewMemory()
	id := mustName(t, "/alice")

	require.False(t, m.HasIdentity(id))
	require.NoError(t, m.AddIdentity(id))
	require.True(t, m.HasIdentity(id))

	_, err := m.GetDefaultIdentity()
	var pibErr *security.PibError
	require.ErrorAs(t, err, &pibErr)

	require.NoError(t, m.SetDefaultIdentity(id))
	got, err := m.GetDefaultIdentity()
	require.NoError(t, err)
	require.True(t, got.Equals(id))

	require.NoError(t, m.RemoveIdentity(id))
	require.False(t, m.HasIdentity(id))
	_, err = m.GetDefaultIdentity()
	require.Error(t, err)
}

func TestKeyLifecycle(t *testing.T) {
	m := NewMemory()
	id := mustName(t, "/alice")
	keyName := mustName(t, "/alice/KEY/k1")
	bits := blob.New([]byte{1, 2, 3})

	require.NoError(t, m.AddKey(id, keyName, bits))
	require.True(t, m.HasKey(keyName))
	require.True(t, m.HasIdentity(id), "adding a key creates the identity")

	got, err := m.GetKeyBits(keyName)
	require.NoError(t, err)
	require.True(t, got.Equals(bits))

	// The first key becomes the identity's default.
	def, err := m.GetDefaultKeyOfIdentity(id)
	require.NoError(t, err)
	require.True(t, def.Equals(keyName))

	keys, err := m.GetKeysOfIdentity(id)
	require.NoError(t, err)
	require.Len(t, keys, 1)

	require.NoError(t, m.RemoveKey(keyName))
	require.False(t, m.HasKey(keyName))
	_, err = m.GetKeyBits(keyName)
	require.Error(t, err)
	_, err = m.GetDefaultKeyOfIdentity(id)
	require.Error(t, err)
}

func TestCertificateLifecycle(t *testing.T) {
	m := NewMemory()
	cert := makeCert(t, "/alice/KEY/k1/self/v1")

	require.NoError(t, m.AddCertificate(cert))
	require.True(t, m.HasCertificate(cert.Name()))
	require.True(t, m.HasKey(cert.KeyName()), "adding a certificate creates its key")

	got, err := m.GetCertificate(cert.Name())
	require.NoError(t, err)
	require.True(t, got.Name().Equals(cert.Name()))

	def, err := m.GetDefaultCertificateOfKey(cert.KeyName())
	require.NoError(t, err)
	require.True(t, def.Name().Equals(cert.Name()))

	names, err := m.GetCertificatesOfKey(cert.KeyName())
	require.NoError(t, err)
	require.Len(t, names, 1)

	require.NoError(t, m.RemoveCertificate(cert.Name()))
	require.False(t, m.HasCertificate(cert.Name()))
	_, err = m.GetDefaultCertificateOfKey(cert.KeyName())
	require.Error(t, err)
}

func TestRemoveKeyCascadesToCertificates(t *testing.T) {
	m := NewMemory()
	cert := makeCert(t, "/alice/KEY/k1/self/v1")
	require.NoError(t, m.AddCertificate(cert))

	require.NoError(t, m.RemoveKey(cert.KeyName()))
	require.False(t, m.HasCertificate(cert.Name()))
}

func TestRemoveIdentityCascades(t *testing.T) {
	m := NewMemory()
	cert := makeCert(t, "/alice/KEY/k1/self/v1")
	require.NoError(t, m.AddCertificate(cert))

	require.NoError(t, m.RemoveIdentity(mustName(t, "/alice")))
	require.False(t, m.HasKey(cert.KeyName()))
	require.False(t, m.HasCertificate(cert.Name()))
}

func TestClearIdentities(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.AddCertificate(makeCert(t, "/a/KEY/k/i/v")))
	require.NoError(t, m.AddCertificate(makeCert(t, "/b/KEY/k/i/v")))

	require.NoError(t, m.ClearIdentities())
	ids, err := m.GetIdentities()
	require.NoError(t, err)
	require.Empty(t, ids)
	require.False(t, m.HasCertificate(mustName(t, "/a/KEY/k/i/v")))
}

func TestSetDefaultRequiresExistence(t *testing.T) {
	m := NewMemory()
	require.Error(t, m.SetDefaultKeyOfIdentity(mustName(t, "/a"), mustName(t, "/a/KEY/k")))
	require.Error(t, m.SetDefaultCertificateOfKey(mustName(t, "/a/KEY/k"), mustName(t, "/a/KEY/k/i/v")))
}
