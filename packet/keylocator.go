// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package packet implements the Interest, Data, and Link packet model:
// MetaInfo, Signature variants, KeyLocator, Exclude, DelegationSet, and
// the NFD ControlParameters/ControlResponse and LpPacket envelopes.
package packet

import (
	"github.com/named-data/ndn-go/blob"
	"github.com/named-data/ndn-go/ndnname"
	"github.com/named-data/ndn-go/tlv"
	"github.com/named-data/ndn-go/util"
)

// KeyLocator TLV type codes.
const (
	TypeKeyLocator     uint64 = 0x1C
	TypeKeyLocatorName uint64 = 0x07 // same code as Name; KeyLocator's KeyName is a nested Name TLV
	TypeKeyDigest      uint64 = 0x1D
)

// KeyLocatorKind selects which variant a KeyLocator holds.
type KeyLocatorKind int

const (
	// KeyLocatorNone means the KeyLocator is absent.
	KeyLocatorNone KeyLocatorKind = iota
	// KeyLocatorKeyName means the locator carries a certificate/key Name.
	KeyLocatorKeyName
	// KeyLocatorKeyDigest means the locator carries a raw key digest.
	KeyLocatorKeyDigest
)

// KeyLocator is a variant over {KeyName(name), KeyDigest(blob), none}.
type KeyLocator struct {
	util.ChangeCounter
	kind     KeyLocatorKind
	keyName  *ndnname.Name
	keyDigest blob.Blob
}

// NewKeyLocator returns an absent KeyLocator.
func NewKeyLocator() *KeyLocator {
	return &KeyLocator{kind: KeyLocatorNone}
}

// Kind reports which variant is set.
func (k *KeyLocator) Kind() KeyLocatorKind { return k.kind }

// SetKeyName sets the KeyName variant.
func (k *KeyLocator) SetKeyName(name *ndnname.Name) {
	k.kind = KeyLocatorKeyName
	k.keyName = name
	k.Changed()
}

// KeyName returns the KeyName, or nil if a different variant is set.
func (k *KeyLocator) KeyName() *ndnname.Name {
	if k.kind != KeyLocatorKeyName {
		return nil
	}
	return k.keyName
}

// SetKeyDigest sets the KeyDigest variant.
func (k *KeyLocator) SetKeyDigest(digest blob.Blob) {
	k.kind = KeyLocatorKeyDigest
	k.keyDigest = digest
	k.Changed()
}

// KeyDigest returns the digest, or a null Blob if a different variant
// is set.
func (k *KeyLocator) KeyDigest() blob.Blob {
	if k.kind != KeyLocatorKeyDigest {
		return blob.Blob{}
	}
	return k.keyDigest
}

// Clear resets to the absent variant.
func (k *KeyLocator) Clear() {
	k.kind = KeyLocatorNone
	k.keyName = nil
	k.keyDigest = blob.Blob{}
	k.Changed()
}

// Equals reports whether two KeyLocators hold the same variant and
// value.
func (k *KeyLocator) Equals(o *KeyLocator) bool {
	if k.kind != o.kind {
		return false
	}
	switch k.kind {
	case KeyLocatorKeyName:
		return k.keyName.Equals(o.keyName)
	case KeyLocatorKeyDigest:
		return k.keyDigest.Equals(o.keyDigest)
	default:
		return true
	}
}

// GetChangeCount implements util.Changeable.
func (k *KeyLocator) GetChangeCount() uint64 { return k.Count() }

// Encode prepends the KeyLocator TLV, if set, to buf.
func (k *KeyLocator) Encode(buf *tlv.Buffer) {
	if k.kind == KeyLocatorNone {
		return
	}
	tlv.PrependValueFunc(buf, TypeKeyLocator, func(buf *tlv.Buffer) {
		switch k.kind {
		case KeyLocatorKeyName:
			k.keyName.Encode(buf)
		case KeyLocatorKeyDigest:
			tlv.PrependValue(buf, TypeKeyDigest, k.keyDigest.Bytes())
		}
	})
}

// DecodeValue parses the value portion of a KeyLocator TLV.
func (k *KeyLocator) DecodeValue(value []byte) error {
	blocks, err := tlv.DecodeAll(value)
	if err != nil {
		return err
	}
	if len(blocks) == 0 {
		k.kind = KeyLocatorNone
		return nil
	}
	b := blocks[0]
	switch b.Type {
	case TypeKeyLocatorName:
		n := ndnname.New()
		if err := n.DecodeValue(b.Value); err != nil {
			return err
		}
		k.kind = KeyLocatorKeyName
		k.keyName = n
	case TypeKeyDigest:
		k.kind = KeyLocatorKeyDigest
		k.keyDigest = blob.New(append([]byte(nil), b.Value...))
	default:
		k.kind = KeyLocatorNone
	}
	k.Changed()
	return nil
}
