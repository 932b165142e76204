// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package packet

import (
	"github.com/named-data/ndn-go/tlv"
)

// NDNLPv2 TLV type codes. This implementation only wraps whole,
// unfragmented network packets (the only shape a client library needs
// to produce or consume); the FragIndex/FragCount type codes are
// defined, but WireDecodeLpPacket ignores those fields and this module
// never splits a Fragment across multiple LpPackets.
const (
	TypeLpPacket  uint64 = 0x64
	TypeFragment  uint64 = 0x50
	TypeSequence  uint64 = 0x51
	TypeFragIndex uint64 = 0x52
	TypeFragCount uint64 = 0x53
	TypeNack      uint64 = 0x0320
	TypeNackReason uint64 = 0x0321
	TypeIncomingFaceId uint64 = 0x032C
	TypeCongestionMark uint64 = 0x0340
)

// NackReason values carried by a Nack LpPacket.
const (
	NackReasonNone        = 0
	NackReasonCongestion  = 50
	NackReasonDuplicate   = 100
	NackReasonNoRoute     = 150
)

// LpPacket is the NDNLPv2 link-layer envelope around a Fragment (a
// whole, encoded Interest or Data).
type LpPacket struct {
	Fragment       []byte
	HasSequence    bool
	Sequence       uint64
	HasNack        bool
	NackReason     int
	HasIncomingFaceId bool
	IncomingFaceId    uint64
	HasCongestion  bool
	CongestionMark uint64
}

// NewLpPacket wraps fragment with no optional fields set.
func NewLpPacket(fragment []byte) *LpPacket {
	return &LpPacket{Fragment: fragment}
}

// Encode prepends the LpPacket TLV to buf.
func (p *LpPacket) Encode(buf *tlv.Buffer) {
	tlv.PrependValueFunc(buf, TypeLpPacket, func(buf *tlv.Buffer) {
		tlv.PrependValue(buf, TypeFragment, p.Fragment)
		if p.HasCongestion {
			tlv.PrependNonNegativeIntegerTlv(buf, TypeCongestionMark, p.CongestionMark)
		}
		if p.HasIncomingFaceId {
			tlv.PrependNonNegativeIntegerTlv(buf, TypeIncomingFaceId, p.IncomingFaceId)
		}
		if p.HasNack {
			tlv.PrependValueFunc(buf, TypeNack, func(buf *tlv.Buffer) {
				if p.NackReason != NackReasonNone {
					tlv.PrependNonNegativeIntegerTlv(buf, TypeNackReason, uint64(p.NackReason))
				}
			})
		}
		if p.HasSequence {
			tlv.PrependNonNegativeIntegerTlv(buf, TypeSequence, p.Sequence)
		}
	})
}

// WireEncode serializes the LpPacket on its own.
func (p *LpPacket) WireEncode() []byte {
	buf := tlv.NewBuffer(len(p.Fragment) + 32)
	p.Encode(buf)
	return append([]byte(nil), buf.Bytes()...)
}

// WireDecodeLpPacket parses an encoded LpPacket.
func WireDecodeLpPacket(buf []byte) (*LpPacket, error) {
	block, _, err := tlv.DecodeBlock(buf, 0)
	if err != nil {
		return nil, err
	}
	if block.Type != TypeLpPacket {
		// A bare Interest/Data with no LP envelope is also legal input
		// on a transport that doesn't speak NDNLPv2 at all.
		return &LpPacket{Fragment: append([]byte(nil), buf...)}, nil
	}
	p := &LpPacket{}
	blocks, err := tlv.DecodeAll(block.Value)
	if err != nil {
		return nil, err
	}
	for _, b := range blocks {
		switch b.Type {
		case TypeFragment:
			p.Fragment = append([]byte(nil), b.Value...)
		case TypeSequence:
			v, err := tlv.DecodeNonNegativeInteger(b.Value)
			if err != nil {
				return nil, err
			}
			p.Sequence, p.HasSequence = v, true
		case TypeNack:
			p.HasNack = true
			inner, err := tlv.DecodeAll(b.Value)
			if err != nil {
				return nil, err
			}
			for _, ib := range inner {
				if ib.Type == TypeNackReason {
					v, err := tlv.DecodeNonNegativeInteger(ib.Value)
					if err != nil {
						return nil, err
					}
					p.NackReason = int(v)
				}
			}
		case TypeIncomingFaceId:
			v, err := tlv.DecodeNonNegativeInteger(b.Value)
			if err != nil {
				return nil, err
			}
			p.IncomingFaceId, p.HasIncomingFaceId = v, true
		case TypeCongestionMark:
			v, err := tlv.DecodeNonNegativeInteger(b.Value)
			if err != nil {
				return nil, err
			}
			p.CongestionMark, p.HasCongestion = v, true
		}
	}
	return p, nil
}
