// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transport

import (
	"fmt"

	"github.com/named-data/ndn-go/tlv"
)

// maxElementSize bounds how much a single element may buffer before the
// stream is declared corrupt; it is deliberately larger than the packet
// size limit the Node enforces on its own sends, so an oversized peer
// element is diagnosed as such rather than as framing noise.
const maxElementSize = 1 << 20

// ElementReader re-frames a byte stream into whole TLV elements. Bytes
// arrive in arbitrary chunks; once a complete outer TLV has
// accumulated, it is handed to the listener and the next element
// starts.
type ElementReader struct {
	listener ElementListener
	partial  []byte
}

// NewElementReader returns a reader delivering elements to listener.
func NewElementReader(listener ElementListener) *ElementReader {
	return &ElementReader{listener: listener}
}

// OnReceivedBytes consumes a chunk of stream bytes, delivering every
// complete element it finishes. An element larger than maxElementSize
// or an undecodable header aborts with an error; the caller should
// treat the stream as corrupt and reconnect.
func (r *ElementReader) OnReceivedBytes(chunk []byte) error {
	r.partial = append(r.partial, chunk...)
	for {
		elementLen, ok, err := completeElementLength(r.partial)
		if err != nil {
			r.partial = nil
			return err
		}
		if !ok {
			if len(r.partial) > maxElementSize {
				r.partial = nil
				return fmt.Errorf("transport: element exceeds %d bytes", maxElementSize)
			}
			return nil
		}
		element := make([]byte, elementLen)
		copy(element, r.partial[:elementLen])
		r.partial = r.partial[elementLen:]
		r.listener.OnReceivedElement(element)
	}
}

// completeElementLength returns the total length of the first TLV in
// buf, reporting ok=false if the header or body is still incomplete.
func completeElementLength(buf []byte) (int, bool, error) {
	if len(buf) == 0 {
		return 0, false, nil
	}
	_, afterType, err := tlv.DecodeVarNumber(buf, 0)
	if err != nil {
		// A truncated VarNumber just means more bytes are needed.
		return 0, false, nil
	}
	length, afterLength, err := tlv.DecodeVarNumber(buf, afterType)
	if err != nil {
		return 0, false, nil
	}
	if length > maxElementSize {
		return 0, false, fmt.Errorf("transport: element declares length %d beyond limit", length)
	}
	total := afterLength + int(length)
	if len(buf) < total {
		return 0, false, nil
	}
	return total, true, nil
}
