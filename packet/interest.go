// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package packet

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/named-data/ndn-go/blob"
	"github.com/named-data/ndn-go/config"
	"github.com/named-data/ndn-go/ndnname"
	"github.com/named-data/ndn-go/tlv"
	"github.com/named-data/ndn-go/util"
)

// Interest TLV type codes.
const (
	TypeInterest              uint64 = 0x05
	TypeCanBePrefix           uint64 = 0x21
	TypeMustBeFresh           uint64 = 0x12
	TypeForwardingHint        uint64 = 0x1E
	TypeNonce                 uint64 = 0x0A
	TypeInterestLifetime      uint64 = 0x0C
	TypeHopLimit              uint64 = 0x22
	TypeApplicationParameters uint64 = 0x24

	// v0.2 selector TLVs still understood by forwarders.
	TypeMinSuffixComponents uint64 = 0x0D
	TypeMaxSuffixComponents uint64 = 0x0E
	TypeChildSelector       uint64 = 0x11
)

// DefaultInterestLifetime is used when an Interest's lifetime is left
// unset, matching the common client default of four seconds.
const DefaultInterestLifetime = 4 * time.Second

// Interest is an NDN Interest packet. Cached wire encodings follow the
// change-counter protocol: every mutation, direct or through a child
// (Exclude, ForwardingHint, KeyLocator, Signature), moves the aggregate
// change count past the snapshot taken at encode time.
type Interest struct {
	util.ChangeCounter
	name               *ndnname.Name
	canBePrefix        bool
	mustBeFresh        bool
	minSuffix          int
	hasMinSuffix       bool
	maxSuffix          int
	hasMaxSuffix       bool
	childSelector      int
	hasChildSelector   bool
	forwardingHint     *DelegationSet
	nonce              uint32
	hasNonce           bool
	interestLifetime   time.Duration
	hasLifetime        bool
	hopLimit           uint8
	hasHopLimit        bool
	applicationParams  blob.Blob
	hasAppParams       bool
	signature          *Signature
	exclude            *Exclude
	publisherKeyLocator *KeyLocator

	wireEncoding blob.SignedBlob
	encodeCount  uint64
}

// NewInterest returns an Interest for name (a zero-component Name if
// nil). CanBePrefix starts from the process-wide default; every other
// optional field is unset.
func NewInterest(name *ndnname.Name) *Interest {
	if name == nil {
		name = ndnname.New()
	}
	return &Interest{
		name:           name,
		canBePrefix:    config.DefaultCanBePrefix(),
		forwardingHint: NewDelegationSet(),
		exclude:        NewExclude(),
	}
}

// Name returns the Interest's name.
func (i *Interest) Name() *ndnname.Name { return i.name }

// SetName replaces the Interest's name.
func (i *Interest) SetName(name *ndnname.Name) {
	i.name = name
	i.Changed()
}

// CanBePrefix reports whether the Interest allows a Data whose name is
// a strict prefix of the Interest's name to satisfy it.
func (i *Interest) CanBePrefix() bool { return i.canBePrefix }

// SetCanBePrefix sets the CanBePrefix flag.
func (i *Interest) SetCanBePrefix(v bool) {
	i.canBePrefix = v
	i.Changed()
}

// MustBeFresh reports whether the Interest refuses stale Data.
func (i *Interest) MustBeFresh() bool { return i.mustBeFresh }

// SetMustBeFresh sets the MustBeFresh flag.
func (i *Interest) SetMustBeFresh(v bool) {
	i.mustBeFresh = v
	i.Changed()
}

// ForwardingHint returns the Interest's forwarding hint delegation set.
func (i *Interest) ForwardingHint() *DelegationSet {
	if i.forwardingHint == nil {
		i.forwardingHint = NewDelegationSet()
	}
	return i.forwardingHint
}

// PublisherKeyLocator returns the selector constraining which
// publisher's key may have signed a matching Data, creating an empty
// (absent) one if none is set.
func (i *Interest) PublisherKeyLocator() *KeyLocator {
	if i.publisherKeyLocator == nil {
		i.publisherKeyLocator = NewKeyLocator()
	}
	return i.publisherKeyLocator
}

// Exclude returns the Interest's Exclude filter.
func (i *Interest) Exclude() *Exclude {
	if i.exclude == nil {
		i.exclude = NewExclude()
	}
	return i.exclude
}

// MinSuffixComponents returns the minimum full-name suffix length
// selector and whether one is set.
func (i *Interest) MinSuffixComponents() (int, bool) {
	return i.minSuffix, i.hasMinSuffix
}

// SetMinSuffixComponents sets the minimum suffix selector.
func (i *Interest) SetMinSuffixComponents(v int) {
	i.minSuffix = v
	i.hasMinSuffix = true
	i.Changed()
}

// MaxSuffixComponents returns the maximum full-name suffix length
// selector and whether one is set. An unset maximum means unlimited
// when CanBePrefix is set, else exactly one (the implicit digest).
func (i *Interest) MaxSuffixComponents() (int, bool) {
	return i.maxSuffix, i.hasMaxSuffix
}

// SetMaxSuffixComponents sets the maximum suffix selector.
func (i *Interest) SetMaxSuffixComponents(v int) {
	i.maxSuffix = v
	i.hasMaxSuffix = true
	i.Changed()
}

// ChildSelector returns the child preference (0 leftmost, 1 rightmost)
// and whether one is set. It is carried on the wire for the forwarder;
// MatchesData does not enforce it.
func (i *Interest) ChildSelector() (int, bool) {
	return i.childSelector, i.hasChildSelector
}

// SetChildSelector sets the child preference.
func (i *Interest) SetChildSelector(v int) {
	i.childSelector = v
	i.hasChildSelector = true
	i.Changed()
}

// Nonce returns the nonce and whether one is set.
func (i *Interest) Nonce() (uint32, bool) { return i.nonce, i.hasNonce }

// SetNonce sets the Interest's nonce explicitly. Most callers should
// leave this to the Node, which assigns a fresh nonce on send.
func (i *Interest) SetNonce(n uint32) {
	i.nonce = n
	i.hasNonce = true
	i.Changed()
}

// InterestLifetime returns the lifetime, defaulting to
// DefaultInterestLifetime if unset.
func (i *Interest) InterestLifetime() time.Duration {
	if !i.hasLifetime {
		return DefaultInterestLifetime
	}
	return i.interestLifetime
}

// HasInterestLifetime reports whether a lifetime was explicitly set.
func (i *Interest) HasInterestLifetime() bool { return i.hasLifetime }

// SetInterestLifetime sets the Interest's lifetime.
func (i *Interest) SetInterestLifetime(d time.Duration) {
	i.interestLifetime = d
	i.hasLifetime = true
	i.Changed()
}

// HopLimit returns the hop limit and whether one is set.
func (i *Interest) HopLimit() (uint8, bool) { return i.hopLimit, i.hasHopLimit }

// SetHopLimit sets the Interest's hop limit.
func (i *Interest) SetHopLimit(h uint8) {
	i.hopLimit = h
	i.hasHopLimit = true
	i.Changed()
}

// ApplicationParameters returns the application parameters and whether
// any are set. Setting them implies the name must carry (or will be
// made to carry, via AppendParametersDigest) a ParametersSha256Digest
// component.
func (i *Interest) ApplicationParameters() (blob.Blob, bool) {
	return i.applicationParams, i.hasAppParams
}

// SetApplicationParameters sets the application parameters.
func (i *Interest) SetApplicationParameters(params blob.Blob) {
	i.applicationParams = params
	i.hasAppParams = true
	i.Changed()
}

// Signature returns the Interest's signature block, used for signed
// (command) Interests. The first call creates and attaches a default
// (DigestSha256) Signature; HasSignature reports whether one is attached.
func (i *Interest) Signature() *Signature {
	if i.signature == nil {
		i.signature = NewSignature()
	}
	return i.signature
}

// HasSignature reports whether a signature has been attached.
func (i *Interest) HasSignature() bool { return i.signature != nil }

// WireEncoding returns the encoding produced by the last Encode or
// WireDecodeInterest call, even if the Interest has been mutated since;
// the Node's nack matching deliberately compares against the bytes that
// were actually sent.
func (i *Interest) WireEncoding() blob.SignedBlob { return i.wireEncoding }

// GetChangeCount implements util.Changeable: the Interest's own counter
// plus, transitively, its children's.
func (i *Interest) GetChangeCount() uint64 {
	total := i.Count()
	if i.name != nil {
		total += i.name.GetChangeCount()
	}
	if i.forwardingHint != nil {
		total += i.forwardingHint.GetChangeCount()
	}
	if i.exclude != nil {
		total += i.exclude.GetChangeCount()
	}
	if i.publisherKeyLocator != nil {
		total += i.publisherKeyLocator.GetChangeCount()
	}
	if i.signature != nil {
		total += i.signature.GetChangeCount()
	}
	return total
}

// Encode serializes the Interest and caches the result. When
// ApplicationParameters are set and the name does not already end in a
// ParametersSha256Digest component, one is appended, computed as the
// SHA-256 of the ApplicationParameters value bytes only. When a
// Signature is attached, the cached encoding also records the signed
// byte range (Name up to but excluding SignatureValue).
func (i *Interest) Encode() blob.SignedBlob {
	if count := i.GetChangeCount(); count == i.encodeCount && !i.wireEncoding.IsNull() {
		return i.wireEncoding
	}

	inner := tlv.NewBuffer(256)

	var signedEndFromTail int
	if i.signature != nil {
		i.signature.EncodeValue(inner)
		signedEndFromTail = inner.Offset()
		i.signature.EncodeInfo(inner)
	}

	if i.hasAppParams {
		tlv.PrependValue(inner, TypeApplicationParameters, i.applicationParams.Bytes())
	}
	if i.hasHopLimit {
		tlv.PrependValue(inner, TypeHopLimit, []byte{i.hopLimit})
	}
	tlv.PrependNonNegativeIntegerTlv(inner, TypeInterestLifetime, uint64(i.InterestLifetime()/time.Millisecond))
	if !i.hasNonce {
		i.nonce = randomNonce()
		i.hasNonce = true
	}
	tlv.PrependValue(inner, TypeNonce, encodeUint32(i.nonce))
	if i.forwardingHint != nil && i.forwardingHint.Size() > 0 {
		tlv.PrependValueFunc(inner, TypeForwardingHint, func(buf *tlv.Buffer) {
			i.forwardingHint.Encode(buf)
		})
	}
	if i.hasChildSelector {
		tlv.PrependNonNegativeIntegerTlv(inner, TypeChildSelector, uint64(i.childSelector))
	}
	if i.exclude != nil && i.exclude.Size() > 0 {
		i.exclude.Encode(inner)
	}
	if i.hasMaxSuffix {
		tlv.PrependNonNegativeIntegerTlv(inner, TypeMaxSuffixComponents, uint64(i.maxSuffix))
	}
	if i.hasMinSuffix {
		tlv.PrependNonNegativeIntegerTlv(inner, TypeMinSuffixComponents, uint64(i.minSuffix))
	}
	if i.mustBeFresh {
		tlv.PrependValue(inner, TypeMustBeFresh, nil)
	}
	if i.canBePrefix {
		tlv.PrependValue(inner, TypeCanBePrefix, nil)
	}

	name := i.name
	if i.hasAppParams {
		digest := sha256.Sum256(i.applicationParams.Bytes())
		if last, err := name.Get(-1); err != nil || !last.IsParametersSha256Digest() {
			c, _ := ndnname.NewTypedComponent(ndnname.TypeParametersSha256Digest, digest[:])
			name = name.Clone().AppendComponent(c)
		}
	}
	var signedBeginFromTail int
	name.Encode(inner)
	if i.signature != nil {
		signedBeginFromTail = inner.Offset()
	}

	innerBytes := append([]byte(nil), inner.Bytes()...)
	innerLen := len(innerBytes)
	outer := tlv.NewBuffer(innerLen + 8)
	tlv.PrependValueFunc(outer, TypeInterest, func(buf *tlv.Buffer) {
		buf.PrependBytes(innerBytes)
	})

	total := outer.Len()
	headerLen := total - innerLen
	wire := append([]byte(nil), outer.Bytes()...)

	if i.signature != nil {
		signedBegin := headerLen + (innerLen - signedBeginFromTail)
		signedEnd := headerLen + (innerLen - signedEndFromTail)
		i.wireEncoding = blob.NewSignedBlob(wire, signedBegin, signedEnd)
	} else {
		i.wireEncoding = blob.NewSignedBlob(wire, 0, len(wire))
	}
	i.encodeCount = i.GetChangeCount()
	return i.wireEncoding
}

// WireDecodeInterest parses an encoded Interest packet.
func WireDecodeInterest(buf []byte) (*Interest, error) {
	block, _, err := tlv.DecodeBlock(buf, 0)
	if err != nil {
		return nil, err
	}
	if block.Type != TypeInterest {
		return nil, fmt.Errorf("packet: expected Interest TLV type %#x, got %#x", TypeInterest, block.Type)
	}

	in := NewInterest(nil)
	offset := 0
	var nameWholeBegin = -1
	var sigInfoWholeEnd int
	for offset < len(block.Value) {
		b, next, err := tlv.DecodeBlock(block.Value, offset)
		if err != nil {
			return nil, err
		}
		switch b.Type {
		case ndnname.TypeName:
			n := ndnname.New()
			if err := n.DecodeValue(b.Value); err != nil {
				return nil, err
			}
			in.name = n
			nameWholeBegin = b.WholeBegin
		case TypeCanBePrefix:
			in.canBePrefix = true
		case TypeMustBeFresh:
			in.mustBeFresh = true
		case TypeForwardingHint:
			fh := NewDelegationSet()
			if err := fh.WireDecode(b.Value); err != nil {
				return nil, err
			}
			in.forwardingHint = fh
		case TypeMinSuffixComponents:
			v, err := tlv.DecodeNonNegativeInteger(b.Value)
			if err != nil {
				return nil, err
			}
			in.minSuffix, in.hasMinSuffix = int(v), true
		case TypeMaxSuffixComponents:
			v, err := tlv.DecodeNonNegativeInteger(b.Value)
			if err != nil {
				return nil, err
			}
			in.maxSuffix, in.hasMaxSuffix = int(v), true
		case TypeChildSelector:
			v, err := tlv.DecodeNonNegativeInteger(b.Value)
			if err != nil {
				return nil, err
			}
			in.childSelector, in.hasChildSelector = int(v), true
		case TypeExclude:
			ex := NewExclude()
			if err := ex.DecodeValue(b.Value); err != nil {
				return nil, err
			}
			in.exclude = ex
		case TypeNonce:
			if len(b.Value) == 4 {
				in.nonce = decodeUint32(b.Value)
				in.hasNonce = true
			}
		case TypeInterestLifetime:
			v, err := tlv.DecodeNonNegativeInteger(b.Value)
			if err != nil {
				return nil, err
			}
			in.interestLifetime = time.Duration(v) * time.Millisecond
			in.hasLifetime = true
		case TypeHopLimit:
			if len(b.Value) == 1 {
				in.hopLimit = b.Value[0]
				in.hasHopLimit = true
			}
		case TypeApplicationParameters:
			in.applicationParams = blob.New(append([]byte(nil), b.Value...))
			in.hasAppParams = true
		case TypeSignatureInfo:
			if err := in.Signature().DecodeInfoValue(b.Value); err != nil {
				return nil, err
			}
			sigInfoWholeEnd = b.WholeEnd
		case TypeSignatureValue:
			in.Signature().DecodeValueBytes(b.Value)
		}
		offset = next
	}
	if nameWholeBegin < 0 {
		return nil, fmt.Errorf("packet: Interest missing Name")
	}

	headerLen := headerSizeOf(block)
	wire := append([]byte(nil), buf[block.WholeBegin:block.WholeEnd]...)
	if in.signature != nil && sigInfoWholeEnd > 0 {
		signedBegin := headerLen + nameWholeBegin
		signedEnd := headerLen + sigInfoWholeEnd
		in.wireEncoding = blob.NewSignedBlob(wire, signedBegin, signedEnd)
	} else {
		in.wireEncoding = blob.NewSignedBlob(wire, 0, len(wire))
	}
	in.encodeCount = in.GetChangeCount()
	return in, nil
}

// MatchesData reports whether data's full name (its Name with the
// implicit digest appended) satisfies this Interest's name relation,
// Exclude, and publisher KeyLocator, per matchesName/matchesData in
// §4.6. MustBeFresh and ChildSelector are forwarder concerns and are
// deliberately not enforced here.
func (i *Interest) MatchesData(data *Data) bool {
	full, err := data.FullName()
	if err != nil {
		return false
	}
	if !i.matchesName(full) {
		return false
	}
	if i.exclude != nil && i.exclude.Size() > 0 {
		next, err := full.Get(i.name.Size())
		if err == nil && i.exclude.Matches(next) {
			return false
		}
	}
	if i.publisherKeyLocator != nil && i.publisherKeyLocator.Kind() != KeyLocatorNone {
		sigLocator := data.Signature().KeyLocator()
		if sigLocator == nil || sigLocator.Kind() == KeyLocatorNone {
			return true
		}
		if !i.publisherKeyLocator.Equals(sigLocator) {
			return false
		}
	}
	return true
}

// matchesName reports whether name starts with this Interest's name
// and the full-name suffix length satisfies the suffix selectors:
// MinSuffixComponents if set, and MaxSuffixComponents defaulting to
// unlimited under CanBePrefix and to one (the implicit digest alone)
// otherwise.
func (i *Interest) matchesName(name *ndnname.Name) bool {
	if !i.name.Match(name) {
		return false
	}
	suffix := name.Size() - i.name.Size()
	if i.hasMinSuffix && suffix < i.minSuffix {
		return false
	}
	if i.hasMaxSuffix {
		return suffix <= i.maxSuffix
	}
	if i.canBePrefix {
		return true
	}
	return suffix == 1
}

func randomNonce() uint32 {
	var b [4]byte
	_, _ = rand.Read(b[:])
	return decodeUint32(b[:])
}

func encodeUint32(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

func decodeUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
