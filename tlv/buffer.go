// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package tlv implements the NDN Type-Length-Value wire codec: variable
// length integers, nested TLV blocks, and the growable back-to-front
// encoding buffer the rest of the codec builds on.
package tlv

// Buffer is a growable byte buffer written back-to-front: callers
// Prepend bytes starting from what will be the end of the final
// message and working toward the beginning. This lets a nested TLV's
// value be emitted before its header is known to be needed, so a
// composite structure (a Name inside an Interest inside nothing) can be
// encoded in one pass, innermost first, without first computing sizes.
//
// The zero value is not usable; use NewBuffer.
type Buffer struct {
	buf []byte
	pos int // index of the first already-written byte
}

// NewBuffer allocates a Buffer with the given initial capacity hint.
func NewBuffer(capacityHint int) *Buffer {
	if capacityHint <= 0 {
		capacityHint = 256
	}
	buf := make([]byte, capacityHint)
	return &Buffer{buf: buf, pos: capacityHint}
}

// Len returns the number of bytes written so far.
func (b *Buffer) Len() int {
	return len(b.buf) - b.pos
}

// grow ensures at least n more bytes of room before pos, keeping all
// previously-written bytes contiguous at the end of the new buffer.
func (b *Buffer) grow(n int) {
	if b.pos >= n {
		return
	}
	need := b.Len() + n
	newCap := len(b.buf) * 2
	for newCap < need {
		newCap *= 2
	}
	nb := make([]byte, newCap)
	copy(nb[newCap-b.Len():], b.buf[b.pos:])
	b.pos = newCap - b.Len()
	b.buf = nb
}

// PrependBytes writes p immediately before everything written so far.
func (b *Buffer) PrependBytes(p []byte) {
	b.grow(len(p))
	b.pos -= len(p)
	copy(b.buf[b.pos:], p)
}

// PrependByte writes a single byte immediately before everything
// written so far.
func (b *Buffer) PrependByte(v byte) {
	b.grow(1)
	b.pos--
	b.buf[b.pos] = v
}

// Bytes returns the final encoded bytes. The returned slice aliases the
// buffer's internal storage and must not be retained across further
// Prepend calls.
func (b *Buffer) Bytes() []byte {
	return b.buf[b.pos:]
}

// Offset returns the length of everything prepended so far, i.e. the
// distance, in bytes, from the current front to the end of the final
// message. Because that distance does not change as more bytes are
// prepended, callers capture it while encoding back-to-front and
// subtract it from the final length to get an offset from the start.
func (b *Buffer) Offset() int {
	return b.Len()
}
