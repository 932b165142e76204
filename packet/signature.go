// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package packet

import (
	"github.com/named-data/ndn-go/blob"
	"github.com/named-data/ndn-go/tlv"
	"github.com/named-data/ndn-go/util"
)

// Signature TLV type codes.
const (
	TypeSignatureInfo  uint64 = 0x16
	TypeSignatureValue uint64 = 0x17
	TypeSignatureType  uint64 = 0x1B
)

// Signature type values, as carried in SignatureInfo's SignatureType
// field.
const (
	SignatureTypeDigestSha256        = 0
	SignatureTypeSha256WithRsa       = 1
	SignatureTypeSha256WithEcdsa     = 3
	SignatureTypeHmacWithSha256      = 4
	SignatureTypeSha256WithEd25519   = 5
)

// Signature is a Data or Interest's SignatureInfo plus SignatureValue.
// A DigestSha256 signature carries no KeyLocator; the other variants
// require one identifying the signing key.
type Signature struct {
	util.ChangeCounter

	signatureType int
	keyLocator    *KeyLocator
	validityPeriod *ValidityPeriod
	signatureValue blob.SignedBlob

	// genericInfo holds the raw SignatureInfo value bytes for an
	// unrecognized signature type, so the packet round-trips without
	// losing fields this implementation doesn't model.
	genericInfo []byte
}

// NewSignature returns a Signature defaulted to DigestSha256 with no
// KeyLocator and an empty SignatureValue.
func NewSignature() *Signature {
	return &Signature{signatureType: SignatureTypeDigestSha256, keyLocator: NewKeyLocator()}
}

// SignatureType returns the signature type code.
func (s *Signature) SignatureType() int { return s.signatureType }

// SetSignatureType sets the signature type code, dropping any raw
// generic info carried from a decode.
func (s *Signature) SetSignatureType(t int) {
	s.signatureType = t
	s.genericInfo = nil
	s.Changed()
}

// KeyLocator returns the signature's KeyLocator, creating an empty one
// if none is set.
func (s *Signature) KeyLocator() *KeyLocator {
	if s.keyLocator == nil {
		s.keyLocator = NewKeyLocator()
	}
	return s.keyLocator
}

// ValidityPeriodField returns the signature's ValidityPeriod, if one was
// set (only meaningful for certificate SignatureInfo blocks).
func (s *Signature) ValidityPeriodField() *ValidityPeriod {
	return s.validityPeriod
}

// SetValidityPeriod attaches a ValidityPeriod to this SignatureInfo.
func (s *Signature) SetValidityPeriod(vp *ValidityPeriod) {
	s.validityPeriod = vp
	s.Changed()
}

// SignatureValue returns the signature bytes.
func (s *Signature) SignatureValue() blob.Blob { return s.signatureValue.Blob }

// SetSignatureValue sets the signature bytes.
func (s *Signature) SetSignatureValue(v blob.Blob) {
	s.signatureValue = blob.NewSignedBlob(v.Bytes(), 0, v.Size())
	s.Changed()
}

// GetChangeCount implements util.Changeable.
func (s *Signature) GetChangeCount() uint64 { return s.Count() }

// IsGeneric reports whether this signature carries an unrecognized
// type, preserved as raw bytes.
func (s *Signature) IsGeneric() bool { return s.genericInfo != nil }

// EncodeInfo prepends the SignatureInfo TLV to buf.
func (s *Signature) EncodeInfo(buf *tlv.Buffer) {
	if s.genericInfo != nil {
		tlv.PrependValue(buf, TypeSignatureInfo, s.genericInfo)
		return
	}
	tlv.PrependValueFunc(buf, TypeSignatureInfo, func(buf *tlv.Buffer) {
		if s.validityPeriod != nil {
			s.validityPeriod.Encode(buf)
		}
		if s.keyLocator != nil {
			s.keyLocator.Encode(buf)
		}
		tlv.PrependNonNegativeIntegerTlv(buf, TypeSignatureType, uint64(s.signatureType))
	})
}

// EncodeValue prepends the SignatureValue TLV (an empty placeholder
// until a signer fills it in) to buf.
func (s *Signature) EncodeValue(buf *tlv.Buffer) {
	tlv.PrependValue(buf, TypeSignatureValue, s.signatureValue.Bytes())
}

// DecodeInfoValue parses the value portion of a SignatureInfo TLV. An
// unrecognized signature type keeps the raw value bytes so EncodeInfo
// reproduces them verbatim.
func (s *Signature) DecodeInfoValue(value []byte) error {
	blocks, err := tlv.DecodeAll(value)
	if err != nil {
		return err
	}
	s.keyLocator = NewKeyLocator()
	s.validityPeriod = nil
	s.genericInfo = nil
	for _, b := range blocks {
		switch b.Type {
		case TypeSignatureType:
			v, err := tlv.DecodeNonNegativeInteger(b.Value)
			if err != nil {
				return err
			}
			s.signatureType = int(v)
		case TypeKeyLocator:
			if err := s.keyLocator.DecodeValue(b.Value); err != nil {
				return err
			}
		case TypeValidityPeriod:
			vp := &ValidityPeriod{}
			if err := vp.DecodeValue(b.Value); err != nil {
				return err
			}
			s.validityPeriod = vp
		}
	}
	if !isKnownSignatureType(s.signatureType) {
		s.genericInfo = append([]byte(nil), value...)
	}
	s.Changed()
	return nil
}

func isKnownSignatureType(t int) bool {
	switch t {
	case SignatureTypeDigestSha256, SignatureTypeSha256WithRsa,
		SignatureTypeSha256WithEcdsa, SignatureTypeHmacWithSha256,
		SignatureTypeSha256WithEd25519:
		return true
	}
	return false
}

// DecodeValueBytes sets the SignatureValue from a decoded
// SignatureValue TLV's value bytes.
func (s *Signature) DecodeValueBytes(value []byte) {
	s.signatureValue = blob.NewSignedBlob(append([]byte(nil), value...), 0, len(value))
	s.Changed()
}
