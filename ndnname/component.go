// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ndnname implements the hierarchical Name data model: ordered,
// typed components, canonical ordering, URI rendering, and the
// naming-convention helpers (segment, version, timestamp, ...).
package ndnname

import (
	"crypto/sha256"
	"fmt"
	"strconv"
	"strings"

	"github.com/named-data/ndn-go/blob"
)

// Component type codes (NDN Packet Format 0.3, §3.2).
const (
	TypeImplicitSha256Digest  uint64 = 0x01
	TypeParametersSha256Digest uint64 = 0x02
	TypeGeneric               uint64 = 0x08
	TypeKeyword                uint64 = 0x20
	TypeSegment                uint64 = 0x21
	TypeByteOffset             uint64 = 0x22
	TypeVersion                uint64 = 0x23
	TypeTimestamp              uint64 = 0x24
	TypeSequenceNum            uint64 = 0x25
)

// Naming-convention marker bytes (rev1, §3.1 of this spec), used as the
// first byte of a generic component's value by the marker-based helpers
// (MakeSegment, MakeVersion, ...).
const (
	markerSegment    byte = 0x00
	markerByteOffset byte = 0xFB
	markerVersion    byte = 0xFD
	markerTimestamp  byte = 0xFC
	markerSequence   byte = 0xFE
)

// Component is one element of a Name: a type code plus an opaque byte
// value. The digest component types (ImplicitSha256Digest,
// ParametersSha256Digest) require the value to be exactly 32 bytes.
type Component struct {
	typ   uint64
	value blob.Blob
}

// NewComponent builds a generic (type 0x08) component from bytes.
func NewComponent(value []byte) Component {
	return Component{typ: TypeGeneric, value: blob.New(append([]byte(nil), value...))}
}

// NewComponentFromString builds a generic component from a string.
func NewComponentFromString(s string) Component {
	return NewComponent([]byte(s))
}

// NewTypedComponent builds a component of an explicit type. Digest
// types must carry exactly 32 bytes.
func NewTypedComponent(typ uint64, value []byte) (Component, error) {
	if isDigestType(typ) && len(value) != sha256.Size {
		return Component{}, fmt.Errorf("ndnname: digest component type %d requires 32 bytes, got %d", typ, len(value))
	}
	return Component{typ: typ, value: blob.New(append([]byte(nil), value...))}, nil
}

func isDigestType(typ uint64) bool {
	return typ == TypeImplicitSha256Digest || typ == TypeParametersSha256Digest
}

// Type returns the component's TLV type code.
func (c Component) Type() uint64 { return c.typ }

// Value returns the raw bytes of the component.
func (c Component) Value() []byte { return c.value.Bytes() }

// IsGeneric reports whether this is a generic (type 0x08) component.
func (c Component) IsGeneric() bool { return c.typ == TypeGeneric }

// IsImplicitSha256Digest reports whether this is a digest component.
func (c Component) IsImplicitSha256Digest() bool { return c.typ == TypeImplicitSha256Digest }

// IsParametersSha256Digest reports whether this is a parameters-digest
// component.
func (c Component) IsParametersSha256Digest() bool { return c.typ == TypeParametersSha256Digest }

// Equals reports whether two components have the same type and value.
func (c Component) Equals(o Component) bool {
	return c.typ == o.typ && c.value.Equals(o.value)
}

// Compare implements the canonical component order: smaller type code
// first, then shorter value, then lexicographic byte compare.
// Returns <0, 0, or >0.
func (c Component) Compare(o Component) int {
	if c.typ != o.typ {
		if c.typ < o.typ {
			return -1
		}
		return 1
	}
	a, b := c.Value(), o.Value()
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// ToEscapedString renders the component in URI form: "sha256digest=" /
// "params-sha256=" / "<code>=" prefix for non-generic types, with
// non-printable bytes of the value percent-escaped.
func (c Component) ToEscapedString() string {
	var sb strings.Builder
	switch c.typ {
	case TypeImplicitSha256Digest:
		sb.WriteString("sha256digest=")
		sb.WriteString(hexEncode(c.Value()))
		return sb.String()
	case TypeParametersSha256Digest:
		sb.WriteString("params-sha256=")
		sb.WriteString(hexEncode(c.Value()))
		return sb.String()
	case TypeGeneric:
		// fall through to plain escaping below
	default:
		sb.WriteString(strconv.FormatUint(c.typ, 10))
		sb.WriteByte('=')
	}
	escapeValue(&sb, c.Value())
	return sb.String()
}

func hexEncode(b []byte) string {
	const hexDigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[i*2] = hexDigits[v>>4]
		out[i*2+1] = hexDigits[v&0xF]
	}
	return string(out)
}

func escapeValue(sb *strings.Builder, value []byte) {
	allPeriods := len(value) > 0
	for _, ch := range value {
		if ch != '.' {
			allPeriods = false
			break
		}
	}
	if allPeriods {
		// A value of all periods must be escaped with 3 extra periods,
		// otherwise it would be interpreted as a relative path segment.
		sb.WriteString("...")
	}
	for _, ch := range value {
		if isUnreservedURIByte(ch) {
			sb.WriteByte(ch)
		} else {
			sb.WriteByte('%')
			sb.WriteByte(hexDigitUpper(ch >> 4))
			sb.WriteByte(hexDigitUpper(ch & 0xF))
		}
	}
}

func hexDigitUpper(v byte) byte {
	const hexDigits = "0123456789ABCDEF"
	return hexDigits[v]
}

func isUnreservedURIByte(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z', b >= '0' && b <= '9':
		return true
	case b == '-' || b == '.' || b == '_' || b == '~':
		return true
	}
	return false
}

// ComponentFromEscapedString parses one percent-escaped, possibly
// type-prefixed URI component.
func ComponentFromEscapedString(s string) (Component, error) {
	typ := TypeGeneric
	rest := s
	switch {
	case strings.HasPrefix(s, "sha256digest="):
		value, err := hexDecode(s[len("sha256digest="):])
		if err != nil {
			return Component{}, err
		}
		return NewTypedComponent(TypeImplicitSha256Digest, value)
	case strings.HasPrefix(s, "params-sha256="):
		value, err := hexDecode(s[len("params-sha256="):])
		if err != nil {
			return Component{}, err
		}
		return NewTypedComponent(TypeParametersSha256Digest, value)
	default:
		if idx := strings.IndexByte(s, '='); idx > 0 && isAllDigits(s[:idx]) {
			t, err := strconv.ParseUint(s[:idx], 10, 64)
			if err != nil {
				return Component{}, err
			}
			typ = t
			rest = s[idx+1:]
		}
	}

	// Strip the 3-period escape used for all-period values.
	if strings.HasPrefix(rest, "...") {
		allPeriods := true
		for _, ch := range rest {
			if ch != '.' && ch != '%' {
				allPeriods = false
				break
			}
		}
		if allPeriods {
			rest = rest[3:]
		}
	}

	value, err := unescapeURI(rest)
	if err != nil {
		return Component{}, err
	}
	if typ == TypeGeneric {
		return NewComponent(value), nil
	}
	return NewTypedComponent(typ, value)
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}

func unescapeURI(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' {
			if i+2 >= len(s) {
				return nil, fmt.Errorf("ndnname: truncated percent-escape in %q", s)
			}
			v, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
			if err != nil {
				return nil, fmt.Errorf("ndnname: invalid percent-escape in %q: %w", s, err)
			}
			out = append(out, byte(v))
			i += 2
		} else {
			out = append(out, s[i])
		}
	}
	return out, nil
}

func hexDecode(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("ndnname: odd-length hex string %q", s)
	}
	out := make([]byte, len(s)/2)
	for i := range out {
		v, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("ndnname: invalid hex digit in %q: %w", s, err)
		}
		out[i] = byte(v)
	}
	return out, nil
}

// --- Naming-convention helpers (§3) ---

func encodeMarkedNumber(marker byte, number uint64) []byte {
	width := 8
	switch {
	case number <= 0xFF:
		width = 1
	case number <= 0xFFFF:
		width = 2
	case number <= 0xFFFFFFFF:
		width = 4
	}
	out := make([]byte, 1+width)
	out[0] = marker
	for i := 0; i < width; i++ {
		out[1+width-1-i] = byte(number >> (8 * i))
	}
	return out
}

func decodeMarkedNumber(marker byte, value []byte) (uint64, error) {
	if len(value) < 1 || value[0] != marker {
		return 0, fmt.Errorf("ndnname: component does not have marker 0x%02x", marker)
	}
	var v uint64
	for _, b := range value[1:] {
		v = v<<8 | uint64(b)
	}
	return v, nil
}

// MakeSegmentComponent builds a segment-number component (marker 0x00).
func MakeSegmentComponent(segment uint64) Component {
	return NewComponent(encodeMarkedNumber(markerSegment, segment))
}

// ToSegment decodes this component as a segment number.
func (c Component) ToSegment() (uint64, error) { return decodeMarkedNumber(markerSegment, c.Value()) }

// MakeVersionComponent builds a version component (marker 0xFD).
func MakeVersionComponent(version uint64) Component {
	return NewComponent(encodeMarkedNumber(markerVersion, version))
}

// ToVersion decodes this component as a version number.
func (c Component) ToVersion() (uint64, error) { return decodeMarkedNumber(markerVersion, c.Value()) }

// MakeTimestampComponent builds a timestamp component (marker 0xFC),
// microseconds since the Unix epoch.
func MakeTimestampComponent(micros uint64) Component {
	return NewComponent(encodeMarkedNumber(markerTimestamp, micros))
}

// ToTimestamp decodes this component as a timestamp.
func (c Component) ToTimestamp() (uint64, error) {
	return decodeMarkedNumber(markerTimestamp, c.Value())
}

// MakeSequenceNumComponent builds a sequence-number component (marker 0xFE).
func MakeSequenceNumComponent(seq uint64) Component {
	return NewComponent(encodeMarkedNumber(markerSequence, seq))
}

// ToSequenceNum decodes this component as a sequence number.
func (c Component) ToSequenceNum() (uint64, error) {
	return decodeMarkedNumber(markerSequence, c.Value())
}

// MakeByteOffsetComponent builds a byte-offset component (marker 0xFB).
func MakeByteOffsetComponent(offset uint64) Component {
	return NewComponent(encodeMarkedNumber(markerByteOffset, offset))
}

// ToByteOffset decodes this component as a byte offset.
func (c Component) ToByteOffset() (uint64, error) {
	return decodeMarkedNumber(markerByteOffset, c.Value())
}

// getSuccessorValue implements the per-component half of
// Name.GetSuccessor: the least value strictly greater than v, in the
// same canonical component ordering, at the same or one-greater width.
func getSuccessorValue(v []byte) []byte {
	out := append([]byte(nil), v...)
	for i := len(out) - 1; i >= 0; i-- {
		if out[i] != 0xFF {
			out[i]++
			return out
		}
		out[i] = 0x00
	}
	// All bytes were 0xFF (or v was empty): grow by one zero byte.
	return append([]byte{0x00}, out...)
}
