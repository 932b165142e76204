// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tlv

import (
	"encoding/binary"
	"fmt"
)

// VarNumber encoding thresholds (NDN Packet Format 0.3, §6).
const (
	varNumber1ByteMax = 252
	varNumber2ByteTag = 0xFD
	varNumber4ByteTag = 0xFE
	varNumber8ByteTag = 0xFF
)

// DecodeError reports malformed or truncated TLV input.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return "ndn tlv decode error: " + e.Reason
}

func newDecodeError(format string, args ...interface{}) error {
	return &DecodeError{Reason: fmt.Sprintf(format, args...)}
}

// VarNumberSize returns the number of bytes PrependVarNumber will emit
// for v.
func VarNumberSize(v uint64) int {
	switch {
	case v <= varNumber1ByteMax:
		return 1
	case v <= 0xFFFF:
		return 3
	case v <= 0xFFFFFFFF:
		return 5
	default:
		return 9
	}
}

// PrependVarNumber writes v to the front of buf in VarNumber encoding.
func PrependVarNumber(buf *Buffer, v uint64) {
	switch {
	case v <= varNumber1ByteMax:
		buf.PrependByte(byte(v))
	case v <= 0xFFFF:
		var tmp [2]byte
		binary.BigEndian.PutUint16(tmp[:], uint16(v))
		buf.PrependBytes(tmp[:])
		buf.PrependByte(varNumber2ByteTag)
	case v <= 0xFFFFFFFF:
		var tmp [4]byte
		binary.BigEndian.PutUint32(tmp[:], uint32(v))
		buf.PrependBytes(tmp[:])
		buf.PrependByte(varNumber4ByteTag)
	default:
		var tmp [8]byte
		binary.BigEndian.PutUint64(tmp[:], v)
		buf.PrependBytes(tmp[:])
		buf.PrependByte(varNumber8ByteTag)
	}
}

// DecodeVarNumber reads a VarNumber starting at buf[offset] and returns
// its value plus the offset of the next unread byte.
func DecodeVarNumber(buf []byte, offset int) (value uint64, next int, err error) {
	if offset >= len(buf) {
		return 0, offset, newDecodeError("truncated VarNumber at offset %d", offset)
	}
	first := buf[offset]
	switch {
	case first < varNumber2ByteTag:
		return uint64(first), offset + 1, nil
	case first == varNumber2ByteTag:
		if offset+3 > len(buf) {
			return 0, offset, newDecodeError("truncated 2-byte VarNumber at offset %d", offset)
		}
		return uint64(binary.BigEndian.Uint16(buf[offset+1 : offset+3])), offset + 3, nil
	case first == varNumber4ByteTag:
		if offset+5 > len(buf) {
			return 0, offset, newDecodeError("truncated 4-byte VarNumber at offset %d", offset)
		}
		return uint64(binary.BigEndian.Uint32(buf[offset+1 : offset+5])), offset + 5, nil
	default: // 0xFF
		if offset+9 > len(buf) {
			return 0, offset, newDecodeError("truncated 8-byte VarNumber at offset %d", offset)
		}
		return binary.BigEndian.Uint64(buf[offset+1 : offset+9]), offset + 9, nil
	}
}

// NonNegativeIntegerSize returns the minimal-width encoding size (1, 2,
// 4, or 8 bytes) for v.
func NonNegativeIntegerSize(v uint64) int {
	switch {
	case v <= 0xFF:
		return 1
	case v <= 0xFFFF:
		return 2
	case v <= 0xFFFFFFFF:
		return 4
	default:
		return 8
	}
}

// PrependNonNegativeInteger writes v in minimal-width big-endian form.
func PrependNonNegativeInteger(buf *Buffer, v uint64) {
	switch NonNegativeIntegerSize(v) {
	case 1:
		buf.PrependByte(byte(v))
	case 2:
		var tmp [2]byte
		binary.BigEndian.PutUint16(tmp[:], uint16(v))
		buf.PrependBytes(tmp[:])
	case 4:
		var tmp [4]byte
		binary.BigEndian.PutUint32(tmp[:], uint32(v))
		buf.PrependBytes(tmp[:])
	default:
		var tmp [8]byte
		binary.BigEndian.PutUint64(tmp[:], v)
		buf.PrependBytes(tmp[:])
	}
}

// DecodeNonNegativeInteger decodes a NonNegativeInteger of exactly the
// given byte width.
func DecodeNonNegativeInteger(buf []byte) (uint64, error) {
	switch len(buf) {
	case 1:
		return uint64(buf[0]), nil
	case 2:
		return uint64(binary.BigEndian.Uint16(buf)), nil
	case 4:
		return uint64(binary.BigEndian.Uint32(buf)), nil
	case 8:
		return binary.BigEndian.Uint64(buf), nil
	default:
		return 0, newDecodeError("invalid NonNegativeInteger width %d", len(buf))
	}
}
