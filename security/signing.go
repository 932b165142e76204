// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package security

import (
	"github.com/named-data/ndn-go/ndnname"
	"github.com/named-data/ndn-go/packet"
)

// SignerType selects how a SigningInfo names the signing key.
type SignerType int

const (
	// SignerDefault lets the KeyChain pick its default identity.
	SignerDefault SignerType = iota
	// SignerIdentity signs with the named identity's default key.
	SignerIdentity
	// SignerKey signs with the named key.
	SignerKey
	// SignerCertificate signs with the key of the named certificate.
	SignerCertificate
	// SignerSha256 produces an unkeyed DigestSha256 "signature".
	SignerSha256
)

// SigningInfo tells a KeyChain which key to sign with and what
// signature type to produce.
type SigningInfo struct {
	Type          SignerType
	Name          *ndnname.Name // identity, key, or certificate name per Type
	SignatureType int           // a packet.SignatureType* value; 0 lets the KeyChain choose
}

// SignWithDefault returns a SigningInfo deferring entirely to the
// KeyChain's defaults.
func SignWithDefault() SigningInfo {
	return SigningInfo{Type: SignerDefault}
}

// SignWithIdentity returns a SigningInfo naming an identity.
func SignWithIdentity(identity *ndnname.Name) SigningInfo {
	return SigningInfo{Type: SignerIdentity, Name: identity}
}

// SignWithKey returns a SigningInfo naming a key.
func SignWithKey(keyName *ndnname.Name) SigningInfo {
	return SigningInfo{Type: SignerKey, Name: keyName}
}

// SignWithCertificate returns a SigningInfo naming a certificate.
func SignWithCertificate(certName *ndnname.Name) SigningInfo {
	return SigningInfo{Type: SignerCertificate, Name: certName}
}

// SignWithSha256 returns a SigningInfo requesting an unkeyed digest.
func SignWithSha256() SigningInfo {
	return SigningInfo{Type: SignerSha256, SignatureType: packet.SignatureTypeDigestSha256}
}

// KeyChain is the signing collaborator the Node and command signer
// drive. Implementations own the cryptographic primitives and a PIB;
// this module only defines what it asks of them.
//
// Sign fills in data's SignatureInfo per info, computes the signature
// over the packet's signed portion, and stores the SignatureValue,
// leaving data ready to encode verifiably. PrepareSignatureInfo builds
// the SignatureInfo (signature type plus KeyLocator) that signing with
// info would produce, without signing anything — the command signer
// needs it up front because a signed Interest's signed portion covers
// the encoded SignatureInfo itself. SignBuffer signs raw bytes with the
// key info names. Verify checks signature against data using the
// DER-encoded public key bits.
type KeyChain interface {
	Sign(data *packet.Data, info SigningInfo) error
	PrepareSignatureInfo(info SigningInfo) (*packet.Signature, error)
	SignBuffer(buf []byte, info SigningInfo) ([]byte, error)
	Verify(data []byte, signature []byte, publicKeyDer []byte, signatureType int) (bool, error)
}
