// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tlv

// Block is a decoded <type, length, value> triple together with the
// byte range of the whole TLV (header + value) in the original buffer,
// so callers that need the raw bytes for round-tripping an unknown
// type don't have to re-encode.
type Block struct {
	Type       uint64
	Value      []byte
	WholeBegin int
	WholeEnd   int
}

// PrependValue writes value as the value portion of a TLV, then the
// length, then the type — in that order, so after this call buf holds
// a complete, self-contained TLV with value as its payload.
func PrependValue(buf *Buffer, typ uint64, value []byte) {
	buf.PrependBytes(value)
	PrependVarNumber(buf, uint64(len(value)))
	PrependVarNumber(buf, typ)
}

// PrependValueFunc prepends a TLV whose value is produced by writeValue,
// which must itself prepend exactly the value bytes onto buf (typically
// by recursively prepending nested TLVs). This is the back-to-front
// idiom used for nested structures: writeValue runs first (innermost),
// and PrependValueFunc then measures what it wrote and adds the
// length+type header.
func PrependValueFunc(buf *Buffer, typ uint64, writeValue func(*Buffer)) {
	before := buf.Len()
	writeValue(buf)
	valueLen := buf.Len() - before
	PrependVarNumber(buf, uint64(valueLen))
	PrependVarNumber(buf, typ)
}

// PrependNonNegativeIntegerTlv prepends a TLV carrying v encoded as a
// NonNegativeInteger.
func PrependNonNegativeIntegerTlv(buf *Buffer, typ uint64, v uint64) {
	before := buf.Len()
	PrependNonNegativeInteger(buf, v)
	valueLen := buf.Len() - before
	PrependVarNumber(buf, uint64(valueLen))
	PrependVarNumber(buf, typ)
}

// DecodeBlock decodes one TLV starting at offset and returns it plus
// the offset of the next unread byte.
func DecodeBlock(buf []byte, offset int) (Block, int, error) {
	start := offset
	typ, afterType, err := DecodeVarNumber(buf, offset)
	if err != nil {
		return Block{}, offset, err
	}
	length, afterLength, err := DecodeVarNumber(buf, afterType)
	if err != nil {
		return Block{}, offset, err
	}
	end := afterLength + int(length)
	if length > uint64(len(buf)-afterLength) || end < afterLength {
		return Block{}, offset, newDecodeError("TLV type %d declares length %d beyond buffer", typ, length)
	}
	return Block{
		Type:       typ,
		Value:      buf[afterLength:end],
		WholeBegin: start,
		WholeEnd:   end,
	}, end, nil
}

// PeekType returns the type of the TLV at offset without consuming it.
func PeekType(buf []byte, offset int) (uint64, error) {
	typ, _, err := DecodeVarNumber(buf, offset)
	return typ, err
}

// DecodeAll decodes a sequence of sibling TLVs that fill buf exactly,
// used for decoding e.g. the components of a Name or the delegations of
// a DelegationSet.
func DecodeAll(buf []byte) ([]Block, error) {
	var blocks []Block
	offset := 0
	for offset < len(buf) {
		b, next, err := DecodeBlock(buf, offset)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
		offset = next
	}
	return blocks, nil
}
