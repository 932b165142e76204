// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package validation

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/named-data/ndn-go/blob"
	"github.com/named-data/ndn-go/command"
	"github.com/named-data/ndn-go/ndnname"
	"github.com/named-data/ndn-go/ndnregex"
	"github.com/named-data/ndn-go/packet"
	"github.com/named-data/ndn-go/security"
	"github.com/named-data/ndn-go/security/certificate"
)

// identity is a test signing identity with a real ed25519 key pair.
type identity struct {
	name    *ndnname.Name
	keyName *ndnname.Name
	priv    ed25519.PrivateKey
	pubDer  []byte
}

func newIdentity(t testing.TB, uri string) *identity {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(pub)
	require.NoError(t, err)

	name := mustName(t, uri)
	keyName := name.Clone().AppendString("KEY").AppendString("key1")
	return &identity{name: name, keyName: keyName, priv: priv, pubDer: der}
}

func mustName(t testing.TB, uri string) *ndnname.Name {
	t.Helper()
	n, err := ndnname.FromEscapedString(uri)
	require.NoError(t, err)
	return n
}

// issueCert builds subject's certificate signed by issuer (pass subject
// as its own issuer for a self-signed anchor).
func issueCert(t testing.TB, subject, issuer *identity, validFrom, validTo time.Time) *certificate.Certificate {
	t.Helper()
	certName := subject.keyName.Clone().AppendString("issuer").AppendString("v1")
	d := packet.NewData(certName)
	d.MetaInfo().SetContentType(packet.ContentTypeKey)
	d.SetContent(blob.New(subject.pubDer))
	d.Signature().SetSignatureType(packet.SignatureTypeSha256WithEd25519)
	d.Signature().KeyLocator().SetKeyName(issuer.keyName)
	d.Signature().SetValidityPeriod(packet.NewValidityPeriod(validFrom, validTo))
	signData(t, d, issuer)

	cert, err := certificate.FromData(d)
	require.NoError(t, err)
	return cert
}

// signData computes and installs a real signature over d's signed
// portion.
func signData(t testing.TB, d *packet.Data, signer *identity) {
	t.Helper()
	wire := d.Encode()
	sig := ed25519.Sign(signer.priv, wire.SignedPortion())
	d.Signature().SetSignatureValue(blob.New(sig))
	d.ResetWireEncoding()
	d.Encode()
}

// makeSignedData builds an ordinary Data signed by signer.
func makeSignedData(t testing.TB, uri string, signer *identity) *packet.Data {
	t.Helper()
	d := packet.NewData(mustName(t, uri))
	d.SetContent(blob.FromString("content"))
	d.Signature().SetSignatureType(packet.SignatureTypeSha256WithEd25519)
	d.Signature().KeyLocator().SetKeyName(signer.keyName)
	signData(t, d, signer)
	return d
}

// edKeyChain is a real-signature KeyChain over one identity, for
// signing command interests in tests.
type edKeyChain struct {
	id *identity
}

func (k *edKeyChain) Sign(d *packet.Data, _ security.SigningInfo) error {
	d.Signature().SetSignatureType(packet.SignatureTypeSha256WithEd25519)
	d.Signature().KeyLocator().SetKeyName(k.id.keyName)
	wire := d.Encode()
	d.Signature().SetSignatureValue(blob.New(ed25519.Sign(k.id.priv, wire.SignedPortion())))
	d.ResetWireEncoding()
	d.Encode()
	return nil
}

func (k *edKeyChain) PrepareSignatureInfo(security.SigningInfo) (*packet.Signature, error) {
	sig := packet.NewSignature()
	sig.SetSignatureType(packet.SignatureTypeSha256WithEd25519)
	sig.KeyLocator().SetKeyName(k.id.keyName)
	return sig, nil
}

func (k *edKeyChain) SignBuffer(buf []byte, _ security.SigningInfo) ([]byte, error) {
	return ed25519.Sign(k.id.priv, buf), nil
}

func (k *edKeyChain) Verify(data, signature, publicKeyDer []byte, signatureType int) (bool, error) {
	return StdVerifier{}.Verify(data, signature, publicKeyDer, signatureType)
}

// mapFetcher resolves requests from an in-memory set of certificates,
// counting fetches.
type mapFetcher struct {
	certs     []*certificate.Certificate
	FetchCount int
}

func (f *mapFetcher) add(cert *certificate.Certificate) { f.certs = append(f.certs, cert) }

func (f *mapFetcher) Fetch(request *CertificateRequest, onSuccess func(*certificate.Certificate), onFailure func(*security.ValidationError)) {
	f.FetchCount++
	for _, cert := range f.certs {
		if request.Interest.Name().Match(cert.Name()) {
			onSuccess(cert)
			return
		}
	}
	onFailure(security.NewValidationError(security.ErrorCannotRetrieveCertificate,
		"no certificate for %s", request.Interest.Name()))
}

// NewTestCommandSigner returns a command signer whose clock is shifted
// by offset, emulating independently clocked producers.
func NewTestCommandSigner(offset time.Duration) *command.Signer {
	signer := command.NewSigner()
	signer.Preparer().SetNowOffset(offset)
	return signer
}

// newMatcher is shorthand for compiling an NDN regex in tests.
func newMatcher(pattern string) (*ndnregex.Matcher, error) {
	return ndnregex.New(pattern)
}

// outcome records a validation's terminal callback.
type outcome struct {
	succeeded int
	failures  []*security.ValidationError
}

func (o *outcome) onDataSuccess(*packet.Data)         { o.succeeded++ }
func (o *outcome) onInterestSuccess(*packet.Interest) { o.succeeded++ }
func (o *outcome) onFailure(err *security.ValidationError) {
	o.failures = append(o.failures, err)
}

func (o *outcome) requireSuccess(t *testing.T) {
	t.Helper()
	require.Empty(t, o.failures, "unexpected failures: %v", o.failures)
	require.Equal(t, 1, o.succeeded)
}

func (o *outcome) requireFailure(t *testing.T, code security.ErrorCode) {
	t.Helper()
	require.Equal(t, 0, o.succeeded)
	require.Len(t, o.failures, 1, "expected exactly one failure")
	require.Equal(t, code, o.failures[0].Code,
		fmt.Sprintf("expected %s, got %s (%s)", code, o.failures[0].Code, o.failures[0].Info))
}
