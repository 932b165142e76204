// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package command builds and parses signed command Interests: an
// Interest whose name ends with four extra components — timestamp,
// random nonce, SignatureInfo, SignatureValue — authenticating requests
// such as NFD prefix registration.
package command

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/named-data/ndn-go/ndnname"
	"github.com/named-data/ndn-go/packet"
	"github.com/named-data/ndn-go/security"
	"github.com/named-data/ndn-go/tlv"
)

// TailSize is the number of name components a signed command Interest
// appends: timestamp, nonce, SignatureInfo, SignatureValue.
const TailSize = 4

// DefaultLifetime is applied to a command Interest whose lifetime was
// left unset; commands are expected to be answered promptly.
const DefaultLifetime = time.Second

// Preparer appends the timestamp and nonce components of a command
// Interest without signing it. Validators use it to build candidate
// names; Signer builds on it for the full signed form.
//
// Each Preparer guarantees its timestamps are strictly increasing, so
// a stream of commands from one producer always passes a receiver's
// replay-ordering check: the timestamp used is max(now, last+1ms).
type Preparer struct {
	lastUsedTimestampMs uint64
	nowOffset           time.Duration
}

// NewPreparer returns a Preparer with no timestamp history.
func NewPreparer() *Preparer {
	return &Preparer{}
}

// SetNowOffset adds a test-only offset to the clock.
func (p *Preparer) SetNowOffset(d time.Duration) { p.nowOffset = d }

func (p *Preparer) now() time.Time {
	return time.Now().Add(p.nowOffset)
}

// PrepareCommandInterestName appends the timestamp and nonce
// components to interest's name and applies DefaultLifetime if the
// caller set none. Returns the timestamp used, in ms since epoch.
func (p *Preparer) PrepareCommandInterestName(interest *packet.Interest) uint64 {
	timestampMs := uint64(p.now().UnixMilli())
	if timestampMs <= p.lastUsedTimestampMs {
		timestampMs = p.lastUsedTimestampMs + 1
	}
	p.lastUsedTimestampMs = timestampMs

	name := interest.Name()
	name.AppendComponent(makeNonNegativeIntComponent(timestampMs))
	var nonce [8]byte
	_, _ = rand.Read(nonce[:])
	name.Append(nonce[:])

	if !interest.HasInterestLifetime() {
		interest.SetInterestLifetime(DefaultLifetime)
	}
	return timestampMs
}

// Signer produces fully signed command Interests. One Signer serves a
// whole Node regardless of which KeyChain each command uses, since the
// strictly-increasing-timestamp guarantee is per producer, not per key.
type Signer struct {
	preparer *Preparer
}

// NewSigner returns a Signer drawing timestamps from its own Preparer.
func NewSigner() *Signer {
	return &Signer{preparer: NewPreparer()}
}

// Preparer exposes the Signer's timestamp state, mainly so tests can
// offset its clock.
func (s *Signer) Preparer() *Preparer { return s.preparer }

// Sign appends the four-tail components to interest: timestamp, nonce,
// SignatureInfo, and a SignatureValue computed by keyChain over every
// name component up to and including the SignatureInfo.
func (s *Signer) Sign(interest *packet.Interest, keyChain security.KeyChain, info security.SigningInfo) error {
	s.preparer.PrepareCommandInterestName(interest)

	sigInfo, err := keyChain.PrepareSignatureInfo(info)
	if err != nil {
		return err
	}
	name := interest.Name()
	name.Append(encodeSignatureInfo(sigInfo))

	sig, err := keyChain.SignBuffer(SignedPortion(name, name.Size()), info)
	if err != nil {
		return err
	}
	name.Append(encodeSignatureValue(sig))
	return nil
}

// SignedPortion returns the concatenated TLV encodings of name's first
// throughComponents components: the byte range a command Interest's
// signature covers (everything up to and including the SignatureInfo
// component).
func SignedPortion(name *ndnname.Name, throughComponents int) []byte {
	buf := tlv.NewBuffer(256)
	components := name.Components()
	if throughComponents > len(components) {
		throughComponents = len(components)
	}
	for i := throughComponents - 1; i >= 0; i-- {
		tlv.PrependValue(buf, components[i].Type(), components[i].Value())
	}
	return append([]byte(nil), buf.Bytes()...)
}

// Tail is the parsed four-component suffix of a signed command
// Interest.
type Tail struct {
	TimestampMs   uint64
	Nonce         []byte
	SignatureInfo *packet.Signature
	SignatureBits []byte
	// SignedPortion is the byte range the signature covers: every name
	// component through the SignatureInfo component.
	SignedPortion []byte
}

// ParseTail extracts and decodes the command tail of interest's name.
func ParseTail(interest *packet.Interest) (*Tail, error) {
	name := interest.Name()
	if name.Size() < TailSize {
		return nil, fmt.Errorf("command: name %s too short for a command tail", name)
	}
	n := name.Size()

	tsComp, _ := name.Get(n - 4)
	timestampMs, err := tlv.DecodeNonNegativeInteger(tsComp.Value())
	if err != nil {
		return nil, fmt.Errorf("command: bad timestamp component: %w", err)
	}
	nonceComp, _ := name.Get(n - 3)

	infoComp, _ := name.Get(n - 2)
	infoBlock, _, err := tlv.DecodeBlock(infoComp.Value(), 0)
	if err != nil || infoBlock.Type != packet.TypeSignatureInfo {
		return nil, fmt.Errorf("command: component %d is not a SignatureInfo", n-2)
	}
	sigInfo := packet.NewSignature()
	if err := sigInfo.DecodeInfoValue(infoBlock.Value); err != nil {
		return nil, err
	}

	valueComp, _ := name.Get(n - 1)
	valueBlock, _, err := tlv.DecodeBlock(valueComp.Value(), 0)
	if err != nil || valueBlock.Type != packet.TypeSignatureValue {
		return nil, fmt.Errorf("command: component %d is not a SignatureValue", n-1)
	}

	return &Tail{
		TimestampMs:   timestampMs,
		Nonce:         nonceComp.Value(),
		SignatureInfo: sigInfo,
		SignatureBits: valueBlock.Value,
		SignedPortion: SignedPortion(name, n-1),
	}, nil
}

// makeNonNegativeIntComponent encodes v as a generic component holding
// a minimal-width big-endian NonNegativeInteger.
func makeNonNegativeIntComponent(v uint64) ndnname.Component {
	buf := tlv.NewBuffer(8)
	tlv.PrependNonNegativeInteger(buf, v)
	return ndnname.NewComponent(append([]byte(nil), buf.Bytes()...))
}

// encodeSignatureInfo renders sigInfo as a standalone SignatureInfo TLV
// for use as a name component value.
func encodeSignatureInfo(sigInfo *packet.Signature) []byte {
	buf := tlv.NewBuffer(64)
	sigInfo.EncodeInfo(buf)
	return append([]byte(nil), buf.Bytes()...)
}

// encodeSignatureValue renders sig as a standalone SignatureValue TLV
// for use as a name component value.
func encodeSignatureValue(sig []byte) []byte {
	buf := tlv.NewBuffer(len(sig) + 4)
	tlv.PrependValue(buf, packet.TypeSignatureValue, sig)
	return append([]byte(nil), buf.Bytes()...)
}
