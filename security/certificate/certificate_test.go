// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package certificate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/named-data/ndn-go/blob"
	"github.com/named-data/ndn-go/ndnname"
	"github.com/named-data/ndn-go/packet"
)

func mustName(t *testing.T, uri string) *ndnname.Name {
	t.Helper()
	n, err := ndnname.FromEscapedString(uri)
	require.NoError(t, err)
	return n
}

func makeCertData(t *testing.T, uri string, notBefore, notAfter time.Time) *packet.Data {
	t.Helper()
	d := packet.NewData(mustName(t, uri))
	d.MetaInfo().SetContentType(packet.ContentTypeKey)
	d.SetContent(blob.New([]byte{0x30, 0x00})) // placeholder DER
	d.Signature().SetSignatureType(packet.SignatureTypeSha256WithEcdsa)
	d.Signature().SetValidityPeriod(packet.NewValidityPeriod(notBefore, notAfter))
	return d
}

func TestFromDataDerivesNames(t *testing.T) {
	now := time.Now()
	data := makeCertData(t, "/ndn/edu/site/KEY/k1/issuer/v3", now.Add(-time.Hour), now.Add(time.Hour))
	cert, err := FromData(data)
	require.NoError(t, err)

	require.True(t, cert.Identity().Equals(mustName(t, "/ndn/edu/site")))
	require.True(t, cert.KeyName().Equals(mustName(t, "/ndn/edu/site/KEY/k1")))
	require.Equal(t, "k1", string(cert.KeyID().Value()))
	require.Equal(t, "issuer", string(cert.IssuerID().Value()))
	require.Equal(t, []byte{0x30, 0x00}, cert.PublicKeyBits().Bytes())
}

func TestFromDataRejectsBadShapes(t *testing.T) {
	now := time.Now()

	short := makeCertData(t, "/KEY/k/i", now, now.Add(time.Hour))
	_, err := FromData(short)
	require.Error(t, err)

	noKeyword := makeCertData(t, "/a/NOTKEY/k/i/v", now, now.Add(time.Hour))
	_, err = FromData(noKeyword)
	require.Error(t, err)

	wrongContentType := makeCertData(t, "/a/KEY/k/i/v", now, now.Add(time.Hour))
	wrongContentType.MetaInfo().SetContentType(packet.ContentTypeBlob)
	_, err = FromData(wrongContentType)
	require.Error(t, err)

	noValidity := packet.NewData(mustName(t, "/a/KEY/k/i/v"))
	noValidity.MetaInfo().SetContentType(packet.ContentTypeKey)
	_, err = FromData(noValidity)
	require.Error(t, err)
}

func TestIsValidUsesValidityPeriod(t *testing.T) {
	now := time.Now()
	cert, err := FromData(makeCertData(t, "/a/KEY/k/i/v", now.Add(-time.Hour), now.Add(time.Hour)))
	require.NoError(t, err)

	require.True(t, cert.IsValid(now))
	require.False(t, cert.IsValid(now.Add(-2*time.Hour)))
	require.False(t, cert.IsValid(now.Add(2*time.Hour)))
}

func TestWireDecodeRoundTrip(t *testing.T) {
	now := time.Now()
	data := makeCertData(t, "/a/KEY/k/i/v", now.Add(-time.Hour), now.Add(time.Hour))
	wire := data.Encode()

	cert, err := WireDecode(wire.Bytes())
	require.NoError(t, err)
	require.True(t, cert.Name().Equals(data.Name()))
}

func TestCertificateNameHelpers(t *testing.T) {
	require.True(t, IsCertificateName(mustName(t, "/a/KEY/k/i/v")))
	require.False(t, IsCertificateName(mustName(t, "/a/b/c")))

	keyName, err := ExtractKeyNameFromCertName(mustName(t, "/a/KEY/k/i/v"))
	require.NoError(t, err)
	require.True(t, keyName.Equals(mustName(t, "/a/KEY/k")))

	_, err = ExtractKeyNameFromCertName(mustName(t, "/a/b"))
	require.Error(t, err)
}
