// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package packet

import (
	"crypto/sha256"
	"fmt"

	"github.com/named-data/ndn-go/blob"
	"github.com/named-data/ndn-go/ndnname"
	"github.com/named-data/ndn-go/tlv"
	"github.com/named-data/ndn-go/util"
)

// TypeData and TypeContent are the Data packet and Content TLV types.
const (
	TypeData    uint64 = 0x06
	TypeContent uint64 = 0x15
)

// Data is an NDN Data packet: a Name, MetaInfo, Content, and Signature.
//
// The cached wire encoding is invalidated through the change-counter
// protocol: each child carries its own counter, the Data snapshots them
// at encode time, and any mutation — direct (SetContent) or deep (a
// KeyChain writing SignatureValue through the Signature) — moves the
// aggregate count past the snapshot so the next Encode rebuilds.
type Data struct {
	util.ChangeCounter
	name      util.ChildHolder[*ndnname.Name]
	metaInfo  util.ChildHolder[*MetaInfo]
	content   blob.Blob
	signature util.ChildHolder[*Signature]

	wireEncoding  blob.SignedBlob
	encodeCount   uint64
	fullName      *ndnname.Name
	fullNameCount uint64

	// Link-layer headers carried by the LpPacket this Data arrived in,
	// attached by the Node for callback inspection. Not part of the
	// wire encoding.
	hasIncomingFaceId bool
	incomingFaceId    uint64
	hasCongestionMark bool
	congestionMark    uint64
}

// NewData returns an empty Data packet with name set (a zero-component
// Name if nil).
func NewData(name *ndnname.Name) *Data {
	if name == nil {
		name = ndnname.New()
	}
	return &Data{
		name:      util.NewChildHolder(name),
		metaInfo:  util.NewChildHolder(NewMetaInfo()),
		signature: util.NewChildHolder(NewSignature()),
	}
}

// Name returns the Data's name.
func (d *Data) Name() *ndnname.Name { return d.name.Get() }

// SetName replaces the Data's name.
func (d *Data) SetName(name *ndnname.Name) {
	d.name.Set(name)
	d.Changed()
}

// MetaInfo returns the Data's MetaInfo.
func (d *Data) MetaInfo() *MetaInfo { return d.metaInfo.Get() }

// Content returns the Data's content.
func (d *Data) Content() blob.Blob { return d.content }

// SetContent sets the Data's content.
func (d *Data) SetContent(content blob.Blob) {
	d.content = content
	d.Changed()
}

// Signature returns the Data's Signature. In-place mutation (e.g. a
// KeyChain filling in SignatureValue) is picked up through the change
// counter, invalidating the cached wire encoding.
func (d *Data) Signature() *Signature { return d.signature.Get() }

// ResetWireEncoding forces the next Encode to rebuild regardless of the
// change counters.
func (d *Data) ResetWireEncoding() {
	d.Changed()
}

// GetChangeCount implements util.Changeable: the Data's own counter,
// advanced whenever a child's counter has moved since the last check.
func (d *Data) GetChangeCount() uint64 {
	nameChanged := d.name.CheckChanged()
	metaChanged := d.metaInfo.CheckChanged()
	sigChanged := d.signature.CheckChanged()
	if nameChanged || metaChanged || sigChanged {
		d.Changed()
	}
	return d.Count()
}

// WireEncoding returns the cached wire encoding, if Encode or
// WireDecodeData has produced one and nothing has mutated the packet
// since.
func (d *Data) WireEncoding() blob.SignedBlob {
	if d.GetChangeCount() != d.encodeCount {
		return blob.SignedBlob{}
	}
	return d.wireEncoding
}

// Encode serializes the Data packet and caches the result, along with
// the signed byte range covering Name..SignatureInfo, as its
// WireEncoding. Encode never computes a signature itself; the caller
// must already have placed a valid SignatureValue over that signed
// range (typically via a KeyChain) before relying on the result being
// verifiable.
func (d *Data) Encode() blob.SignedBlob {
	if count := d.GetChangeCount(); count == d.encodeCount && !d.wireEncoding.IsNull() {
		return d.wireEncoding
	}

	inner := tlv.NewBuffer(256)

	sig := d.signature.Get()
	sig.EncodeValue(inner)
	signedEndFromTail := inner.Offset()
	sig.EncodeInfo(inner)

	tlv.PrependValue(inner, TypeContent, d.content.Bytes())
	d.metaInfo.Get().Encode(inner)
	d.name.Get().Encode(inner)
	signedBeginFromTail := inner.Offset()

	innerBytes := append([]byte(nil), inner.Bytes()...)
	innerLen := len(innerBytes)

	outer := tlv.NewBuffer(innerLen + 8)
	tlv.PrependValueFunc(outer, TypeData, func(buf *tlv.Buffer) {
		buf.PrependBytes(innerBytes)
	})

	total := outer.Len()
	headerLen := total - innerLen
	signedBegin := headerLen + (innerLen - signedBeginFromTail)
	signedEnd := headerLen + (innerLen - signedEndFromTail)

	d.wireEncoding = blob.NewSignedBlob(append([]byte(nil), outer.Bytes()...), signedBegin, signedEnd)
	d.encodeCount = d.GetChangeCount()
	return d.wireEncoding
}

// headerSizeOf returns the number of header (type+length) bytes that
// precede block.Value within its own WholeBegin..WholeEnd span.
func headerSizeOf(block tlv.Block) int {
	return (block.WholeEnd - block.WholeBegin) - len(block.Value)
}

// WireDecodeData parses an encoded Data packet, also recording the
// signed byte range (Name..SignatureInfo) for later signature
// verification.
func WireDecodeData(buf []byte) (*Data, error) {
	block, _, err := tlv.DecodeBlock(buf, 0)
	if err != nil {
		return nil, err
	}
	if block.Type != TypeData {
		return nil, fmt.Errorf("packet: expected Data TLV type %#x, got %#x", TypeData, block.Type)
	}

	d := NewData(nil)
	offset := 0
	var sigInfoWholeEnd int
	var nameWholeBegin = -1
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
			d.name.Set(n)
			nameWholeBegin = b.WholeBegin
		case TypeMetaInfo:
			if err := d.metaInfo.Get().DecodeValue(b.Value); err != nil {
				return nil, err
			}
		case TypeContent:
			d.content = blob.New(append([]byte(nil), b.Value...))
		case TypeSignatureInfo:
			if err := d.signature.Get().DecodeInfoValue(b.Value); err != nil {
				return nil, err
			}
			sigInfoWholeEnd = b.WholeEnd
		case TypeSignatureValue:
			d.signature.Get().DecodeValueBytes(b.Value)
		}
		offset = next
	}
	if nameWholeBegin < 0 {
		return nil, fmt.Errorf("packet: Data missing Name")
	}

	headerLen := headerSizeOf(block)
	signedBegin := headerLen + nameWholeBegin
	signedEnd := headerLen + sigInfoWholeEnd

	d.wireEncoding = blob.NewSignedBlob(append([]byte(nil), buf[block.WholeBegin:block.WholeEnd]...), signedBegin, signedEnd)
	d.encodeCount = d.GetChangeCount()
	return d, nil
}

// IncomingFaceId returns the forwarder-reported incoming face id and
// whether one was attached.
func (d *Data) IncomingFaceId() (uint64, bool) {
	return d.incomingFaceId, d.hasIncomingFaceId
}

// SetIncomingFaceId attaches the incoming face id from an LpPacket.
func (d *Data) SetIncomingFaceId(id uint64) {
	d.incomingFaceId = id
	d.hasIncomingFaceId = true
}

// CongestionMark returns the congestion mark and whether one was
// attached.
func (d *Data) CongestionMark() (uint64, bool) {
	return d.congestionMark, d.hasCongestionMark
}

// SetCongestionMark attaches the congestion mark from an LpPacket.
func (d *Data) SetCongestionMark(mark uint64) {
	d.congestionMark = mark
	d.hasCongestionMark = true
}

// FullName returns the Data's name with an ImplicitSha256Digest
// component appended, computed over (and cached alongside) the wire
// encoding.
func (d *Data) FullName() (*ndnname.Name, error) {
	if d.fullName != nil && d.GetChangeCount() == d.fullNameCount {
		return d.fullName, nil
	}
	wire := d.Encode()
	digest := sha256.Sum256(wire.Bytes())
	c, err := ndnname.NewTypedComponent(ndnname.TypeImplicitSha256Digest, digest[:])
	if err != nil {
		return nil, err
	}
	full := d.name.Get().Clone().AppendComponent(c)
	d.fullName = full
	d.fullNameCount = d.GetChangeCount()
	return full, nil
}
