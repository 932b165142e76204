// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package packet

import (
	"time"

	"github.com/named-data/ndn-go/tlv"
)

// ValidityPeriod TLV type codes. It rides inside a certificate's
// SignatureInfo, bracketing the NotBefore/NotAfter instants the
// certificate's key binding is valid for.
const (
	TypeValidityPeriod uint64 = 0xFD
	TypeNotBefore      uint64 = 0xFE
	TypeNotAfter       uint64 = 0xFF
)

const validityTimeLayout = "20060102T150405"

// ValidityPeriod is the [NotBefore, NotAfter] instant range a
// certificate's signature is valid within.
type ValidityPeriod struct {
	NotBefore time.Time
	NotAfter  time.Time
}

// NewValidityPeriod returns a ValidityPeriod spanning [notBefore, notAfter].
func NewValidityPeriod(notBefore, notAfter time.Time) *ValidityPeriod {
	return &ValidityPeriod{NotBefore: notBefore.UTC(), NotAfter: notAfter.UTC()}
}

// Covers reports whether instant t falls within [NotBefore, NotAfter].
func (v *ValidityPeriod) Covers(t time.Time) bool {
	t = t.UTC()
	return !t.Before(v.NotBefore) && !t.After(v.NotAfter)
}

// Encode prepends the ValidityPeriod TLV to buf.
func (v *ValidityPeriod) Encode(buf *tlv.Buffer) {
	tlv.PrependValueFunc(buf, TypeValidityPeriod, func(buf *tlv.Buffer) {
		tlv.PrependValue(buf, TypeNotAfter, []byte(v.NotAfter.UTC().Format(validityTimeLayout)))
		tlv.PrependValue(buf, TypeNotBefore, []byte(v.NotBefore.UTC().Format(validityTimeLayout)))
	})
}

// DecodeValue parses the value portion of a ValidityPeriod TLV.
func (v *ValidityPeriod) DecodeValue(value []byte) error {
	blocks, err := tlv.DecodeAll(value)
	if err != nil {
		return err
	}
	for _, b := range blocks {
		t, err := time.Parse(validityTimeLayout, string(b.Value))
		if err != nil {
			return err
		}
		switch b.Type {
		case TypeNotBefore:
			v.NotBefore = t.UTC()
		case TypeNotAfter:
			v.NotAfter = t.UTC()
		}
	}
	return nil
}
