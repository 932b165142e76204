// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transport

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type collectingListener struct {
	elements [][]byte
}

func (c *collectingListener) OnReceivedElement(element []byte) {
	c.elements = append(c.elements, element)
}

// element builds a tiny TLV: type 0x06, the given payload.
func element(payload ...byte) []byte {
	out := []byte{0x06, byte(len(payload))}
	return append(out, payload...)
}

func TestElementReaderWholeElement(t *testing.T) {
	listener := &collectingListener{}
	r := NewElementReader(listener)

	require.NoError(t, r.OnReceivedBytes(element('a', 'b')))
	require.Len(t, listener.elements, 1)
	require.Equal(t, element('a', 'b'), listener.elements[0])
}

func TestElementReaderReassemblesAcrossChunks(t *testing.T) {
	listener := &collectingListener{}
	r := NewElementReader(listener)

	whole := element('a', 'b', 'c')
	for _, b := range whole {
		require.NoError(t, r.OnReceivedBytes([]byte{b}))
	}
	require.Len(t, listener.elements, 1)
	require.Equal(t, whole, listener.elements[0])
}

func TestElementReaderSplitsCoalescedElements(t *testing.T) {
	listener := &collectingListener{}
	r := NewElementReader(listener)

	chunk := append(element('1'), element('2')...)
	chunk = append(chunk, element('3')[:1]...) // partial third element
	require.NoError(t, r.OnReceivedBytes(chunk))
	require.Len(t, listener.elements, 2)
	require.Equal(t, element('1'), listener.elements[0])
	require.Equal(t, element('2'), listener.elements[1])
}

func TestElementReaderRejectsOversizedElement(t *testing.T) {
	listener := &collectingListener{}
	r := NewElementReader(listener)

	// Header declaring a 2 MB value.
	header := []byte{0x06, 0xFE, 0x00, 0x20, 0x00, 0x00}
	require.Error(t, r.OnReceivedBytes(header))
}
