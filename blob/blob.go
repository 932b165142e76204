// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package blob provides an immutable, shared-ownership byte buffer used
// throughout the wire model so that encoded packets can be passed around
// and re-sliced without copying.
package blob

import "bytes"

// Blob is an immutable wrapper around a byte slice. The zero value is a
// nil blob (IsNull returns true). Once constructed, the underlying bytes
// are never mutated by Blob's own methods; callers must not mutate the
// slice passed to New after handing it over.
type Blob struct {
	buf []byte
}

// New wraps b. The caller must not modify b afterward.
func New(b []byte) Blob {
	if b == nil {
		return Blob{}
	}
	return Blob{buf: b}
}

// FromString copies s into a new Blob.
func FromString(s string) Blob {
	return Blob{buf: []byte(s)}
}

// IsNull reports whether this Blob was never assigned a buffer.
func (b Blob) IsNull() bool {
	return b.buf == nil
}

// Size returns the number of bytes held.
func (b Blob) Size() int {
	return len(b.buf)
}

// Bytes returns the underlying slice. Callers must treat it as read-only.
func (b Blob) Bytes() []byte {
	return b.buf
}

// Equals reports whether two blobs hold identical bytes.
func (b Blob) Equals(o Blob) bool {
	return bytes.Equal(b.buf, o.buf)
}

// Clone returns a Blob over a fresh copy of the underlying bytes.
func (b Blob) Clone() Blob {
	if b.buf == nil {
		return Blob{}
	}
	cp := make([]byte, len(b.buf))
	copy(cp, b.buf)
	return Blob{buf: cp}
}

// SignedBlob is a Blob that also remembers the byte range, within the
// same buffer, that was (or will be) covered by a signature. The range
// is [signedBegin, signedEnd) relative to the start of the whole buffer,
// letting signature verification and implicit-digest computation work
// directly off the already-encoded bytes without re-encoding.
type SignedBlob struct {
	Blob
	signedBegin int
	signedEnd   int
}

// NewSignedBlob wraps b and records the signed byte range [begin, end).
// A begin/end of -1 means "no signed range captured".
func NewSignedBlob(b []byte, begin, end int) SignedBlob {
	return SignedBlob{Blob: New(b), signedBegin: begin, signedEnd: end}
}

// SignedPortion returns the slice of bytes covered by the signed range,
// or nil if no range was captured.
func (s SignedBlob) SignedPortion() []byte {
	if s.signedBegin < 0 || s.signedEnd < 0 || s.signedEnd > s.Size() || s.signedBegin > s.signedEnd {
		return nil
	}
	return s.Bytes()[s.signedBegin:s.signedEnd]
}

// SignedBegin returns the start offset of the signed range, or -1.
func (s SignedBlob) SignedBegin() int { return s.signedBegin }

// SignedEnd returns the end offset (exclusive) of the signed range, or -1.
func (s SignedBlob) SignedEnd() int { return s.signedEnd }

// HasSignedRange reports whether a signed range was captured.
func (s SignedBlob) HasSignedRange() bool {
	return s.signedBegin >= 0 && s.signedEnd >= 0
}
