// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package validation

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"fmt"

	"github.com/named-data/ndn-go/packet"
)

// Verifier checks a signature over a signed portion with a DER-encoded
// public key. Implementations own the cryptographic primitives; the
// Validator only decides what to verify against what.
type Verifier interface {
	Verify(signedPortion, signature, publicKeyDer []byte, signatureType int) (bool, error)
}

// StdVerifier verifies the public-key signature types with the standard
// crypto stack. HMAC signatures cannot be verified from a public key
// and are rejected as unsupported.
type StdVerifier struct{}

// Verify implements Verifier.
func (StdVerifier) Verify(signedPortion, signature, publicKeyDer []byte, signatureType int) (bool, error) {
	switch signatureType {
	case packet.SignatureTypeDigestSha256:
		digest := sha256.Sum256(signedPortion)
		return constantTimeEqual(digest[:], signature), nil
	case packet.SignatureTypeSha256WithRsa:
		key, err := parseKey[*rsa.PublicKey](publicKeyDer)
		if err != nil {
			return false, err
		}
		digest := sha256.Sum256(signedPortion)
		return rsa.VerifyPKCS1v15(key, crypto.SHA256, digest[:], signature) == nil, nil
	case packet.SignatureTypeSha256WithEcdsa:
		key, err := parseKey[*ecdsa.PublicKey](publicKeyDer)
		if err != nil {
			return false, err
		}
		digest := sha256.Sum256(signedPortion)
		return ecdsa.VerifyASN1(key, digest[:], signature), nil
	case packet.SignatureTypeSha256WithEd25519:
		key, err := parseKey[ed25519.PublicKey](publicKeyDer)
		if err != nil {
			return false, err
		}
		return ed25519.Verify(key, signedPortion, signature), nil
	default:
		return false, fmt.Errorf("validation: unsupported signature type %d", signatureType)
	}
}

func parseKey[T any](der []byte) (T, error) {
	var zero T
	parsed, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return zero, fmt.Errorf("validation: parsing public key: %w", err)
	}
	key, ok := parsed.(T)
	if !ok {
		return zero, fmt.Errorf("validation: public key is %T, not %T", parsed, zero)
	}
	return key, nil
}

func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var diff byte
	for i := range a {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}
