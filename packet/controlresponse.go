// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package packet

import (
	"github.com/named-data/ndn-go/tlv"
)

// ControlResponse TLV type codes, used by the NFD management
// protocol's replies to a command Interest.
const (
	TypeControlResponse uint64 = 0x65
	TypeStatusCode      uint64 = 0x66
	TypeStatusText      uint64 = 0x67
)

// ControlResponse is the body of a successful command Interest's Data,
// carrying an NFD status code/text pair and the (echoed, possibly
// server-assigned) ControlParameters.
type ControlResponse struct {
	StatusCode uint64
	StatusText string
	Parameters *ControlParameters
}

// Encode prepends the ControlResponse TLV to buf.
func (r *ControlResponse) Encode(buf *tlv.Buffer) {
	tlv.PrependValueFunc(buf, TypeControlResponse, func(buf *tlv.Buffer) {
		if r.Parameters != nil {
			r.Parameters.Encode(buf)
		}
		tlv.PrependValue(buf, TypeStatusText, []byte(r.StatusText))
		tlv.PrependNonNegativeIntegerTlv(buf, TypeStatusCode, r.StatusCode)
	})
}

// WireEncode serializes the ControlResponse on its own.
func (r *ControlResponse) WireEncode() []byte {
	buf := tlv.NewBuffer(128)
	r.Encode(buf)
	return append([]byte(nil), buf.Bytes()...)
}

// WireDecodeControlResponse parses an encoded ControlResponse TLV, as
// carried in the Content of a command Interest's response Data.
func WireDecodeControlResponse(buf []byte) (*ControlResponse, error) {
	block, _, err := tlv.DecodeBlock(buf, 0)
	if err != nil {
		return nil, err
	}
	r := &ControlResponse{}
	blocks, err := tlv.DecodeAll(block.Value)
	if err != nil {
		return nil, err
	}
	for _, b := range blocks {
		switch b.Type {
		case TypeStatusCode:
			v, err := tlv.DecodeNonNegativeInteger(b.Value)
			if err != nil {
				return nil, err
			}
			r.StatusCode = v
		case TypeStatusText:
			r.StatusText = string(b.Value)
		case TypeControlParameters:
			p := &ControlParameters{}
			if err := p.DecodeValue(b.Value); err != nil {
				return nil, err
			}
			r.Parameters = p
		}
	}
	return r, nil
}

// Success reports whether the response's status code is in the 2xx
// range, matching NFD's convention.
func (r *ControlResponse) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
