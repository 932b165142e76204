// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package packet

import (
	"github.com/named-data/ndn-go/ndnname"
	"github.com/named-data/ndn-go/tlv"
)

// ControlParameters TLV type codes, used by the NFD management
// protocol's prefix registration requests (carried as a name component
// of a command Interest).
const (
	TypeControlParameters uint64 = 0x68
	TypeFaceId            uint64 = 0x69
	TypeOrigin            uint64 = 0x6F
	TypeCost              uint64 = 0x6A
	TypeFlags             uint64 = 0x6C
)

// RouteOrigin values for ControlParameters.Origin.
const (
	RouteOriginApp    = 0
	RouteOriginClient = 65
)

// ControlParameters is the name-registration payload sent in a
// /localhost/nfd/rib/register or .../unregister command Interest.
type ControlParameters struct {
	Name        *ndnname.Name
	HasFaceId   bool
	FaceId      uint64
	HasOrigin   bool
	Origin      int
	HasCost     bool
	Cost        uint64
	HasFlags    bool
	Flags       uint64
}

// NewControlParameters returns parameters registering name with no
// optional fields set.
func NewControlParameters(name *ndnname.Name) *ControlParameters {
	return &ControlParameters{Name: name}
}

// Encode prepends the ControlParameters TLV to buf.
func (c *ControlParameters) Encode(buf *tlv.Buffer) {
	tlv.PrependValueFunc(buf, TypeControlParameters, func(buf *tlv.Buffer) {
		if c.HasFlags {
			tlv.PrependNonNegativeIntegerTlv(buf, TypeFlags, c.Flags)
		}
		if c.HasCost {
			tlv.PrependNonNegativeIntegerTlv(buf, TypeCost, c.Cost)
		}
		if c.HasOrigin {
			tlv.PrependNonNegativeIntegerTlv(buf, TypeOrigin, uint64(c.Origin))
		}
		if c.HasFaceId {
			tlv.PrependNonNegativeIntegerTlv(buf, TypeFaceId, c.FaceId)
		}
		if c.Name != nil {
			c.Name.Encode(buf)
		}
	})
}

// WireEncode serializes the ControlParameters on their own.
func (c *ControlParameters) WireEncode() []byte {
	buf := tlv.NewBuffer(128)
	c.Encode(buf)
	return append([]byte(nil), buf.Bytes()...)
}

// DecodeValue parses the value portion of a ControlParameters TLV.
func (c *ControlParameters) DecodeValue(value []byte) error {
	blocks, err := tlv.DecodeAll(value)
	if err != nil {
		return err
	}
	for _, b := range blocks {
		switch b.Type {
		case ndnname.TypeName:
			n := ndnname.New()
			if err := n.DecodeValue(b.Value); err != nil {
				return err
			}
			c.Name = n
		case TypeFaceId:
			v, err := tlv.DecodeNonNegativeInteger(b.Value)
			if err != nil {
				return err
			}
			c.FaceId, c.HasFaceId = v, true
		case TypeOrigin:
			v, err := tlv.DecodeNonNegativeInteger(b.Value)
			if err != nil {
				return err
			}
			c.Origin, c.HasOrigin = int(v), true
		case TypeCost:
			v, err := tlv.DecodeNonNegativeInteger(b.Value)
			if err != nil {
				return err
			}
			c.Cost, c.HasCost = v, true
		case TypeFlags:
			v, err := tlv.DecodeNonNegativeInteger(b.Value)
			if err != nil {
				return err
			}
			c.Flags, c.HasFlags = v, true
		}
	}
	return nil
}

// WireDecodeControlParameters parses an encoded ControlParameters TLV.
func WireDecodeControlParameters(buf []byte) (*ControlParameters, error) {
	block, _, err := tlv.DecodeBlock(buf, 0)
	if err != nil {
		return nil, err
	}
	c := &ControlParameters{}
	if err := c.DecodeValue(block.Value); err != nil {
		return nil, err
	}
	return c, nil
}
