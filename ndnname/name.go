// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ndnname

import (
	"crypto/sha256"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/named-data/ndn-go/blob"
	"github.com/named-data/ndn-go/tlv"
	"github.com/named-data/ndn-go/util"
)

// TypeName is the TLV type code for a Name block.
const TypeName uint64 = 0x07

// Name is an ordered sequence of Components. The zero value is the
// empty name "/".
type Name struct {
	util.ChangeCounter
	components []Component
}

// New returns an empty Name.
func New() *Name {
	return &Name{}
}

// FromEscapedString parses a URI-form name such as "/a/b/%00%01".
func FromEscapedString(uri string) (*Name, error) {
	n := New()
	uri = strings.TrimSpace(uri)
	uri = strings.TrimPrefix(uri, "ndn:")
	if uri == "" || uri == "/" {
		return n, nil
	}
	uri = strings.TrimPrefix(uri, "/")
	for _, part := range strings.Split(uri, "/") {
		if part == "" {
			continue
		}
		c, err := ComponentFromEscapedString(part)
		if err != nil {
			return nil, fmt.Errorf("ndnname: parsing %q: %w", uri, err)
		}
		n.components = append(n.components, c)
	}
	return n, nil
}

// Size returns the number of components.
func (n *Name) Size() int {
	return len(n.components)
}

// Get returns the component at i. Negative i counts from the end
// (-1 is the last component).
func (n *Name) Get(i int) (Component, error) {
	if i < 0 {
		i += len(n.components)
	}
	if i < 0 || i >= len(n.components) {
		return Component{}, fmt.Errorf("ndnname: index out of range")
	}
	return n.components[i], nil
}

// Components returns a copy of the component slice.
func (n *Name) Components() []Component {
	out := make([]Component, len(n.components))
	copy(out, n.components)
	return out
}

// Append adds a generic component built from bytes and returns n for
// chaining.
func (n *Name) Append(value []byte) *Name {
	n.components = append(n.components, NewComponent(value))
	n.Changed()
	return n
}

// AppendString adds a generic component built from a string.
func (n *Name) AppendString(s string) *Name {
	return n.Append([]byte(s))
}

// AppendComponent adds an already-built component.
func (n *Name) AppendComponent(c Component) *Name {
	n.components = append(n.components, c)
	n.Changed()
	return n
}

// AppendName appends all of other's components.
func (n *Name) AppendName(other *Name) *Name {
	n.components = append(n.components, other.components...)
	n.Changed()
	return n
}

// Clear removes all components.
func (n *Name) Clear() {
	n.components = nil
	n.Changed()
}

// Clone returns a deep copy.
func (n *Name) Clone() *Name {
	c := New()
	c.components = append([]Component(nil), n.components...)
	return c
}

// GetPrefix returns a new Name holding the first n components. A
// negative n means "all but the last |n| components".
func (n *Name) GetPrefix(count int) *Name {
	if count < 0 {
		count = len(n.components) + count
	}
	if count < 0 {
		count = 0
	}
	if count > len(n.components) {
		count = len(n.components)
	}
	out := New()
	out.components = append([]Component(nil), n.components[:count]...)
	return out
}

// GetSubName returns a new Name holding at most count components
// starting at start (negative start counts from the end).
func (n *Name) GetSubName(start, count int) *Name {
	if start < 0 {
		start += len(n.components)
	}
	if start < 0 {
		start = 0
	}
	if start > len(n.components) {
		start = len(n.components)
	}
	end := start + count
	if count < 0 || end > len(n.components) {
		end = len(n.components)
	}
	out := New()
	if start < end {
		out.components = append([]Component(nil), n.components[start:end]...)
	}
	return out
}

// Match reports whether n is a prefix of (or equal to) other.
func (n *Name) Match(other *Name) bool {
	if len(n.components) > len(other.components) {
		return false
	}
	for i, c := range n.components {
		if !c.Equals(other.components[i]) {
			return false
		}
	}
	return true
}

// Equals reports component-wise equality.
func (n *Name) Equals(other *Name) bool {
	if len(n.components) != len(other.components) {
		return false
	}
	return n.Match(other)
}

// Compare implements the canonical total order over names: compare
// componentwise; the first differing component decides. If one name is
// a strict prefix of the other, the shorter name sorts first.
func (n *Name) Compare(other *Name) int {
	minLen := len(n.components)
	if len(other.components) < minLen {
		minLen = len(other.components)
	}
	for i := 0; i < minLen; i++ {
		if c := n.components[i].Compare(other.components[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(n.components) < len(other.components):
		return -1
	case len(n.components) > len(other.components):
		return 1
	default:
		return 0
	}
}

// GetSuccessor returns the least name strictly greater than n in
// canonical order: the final component's value is incremented as a
// big-endian integer of the same byte width, growing by one byte if
// the value was all 0xFF (or empty).
func (n *Name) GetSuccessor() *Name {
	out := n.Clone()
	if len(out.components) == 0 {
		out.components = []Component{NewComponent([]byte{0x00})}
		return out
	}
	last := out.components[len(out.components)-1]
	successorValue := getSuccessorValue(last.Value())
	out.components[len(out.components)-1] = Component{typ: last.typ, value: blob.New(successorValue)}
	return out
}

// ToUri renders the name in URI form, e.g. "/a/b/%00%01". An empty name
// renders as "/".
func (n *Name) ToUri() string {
	if len(n.components) == 0 {
		return "/"
	}
	var sb strings.Builder
	for _, c := range n.components {
		sb.WriteByte('/')
		sb.WriteString(c.ToEscapedString())
	}
	return sb.String()
}

// String implements fmt.Stringer as the URI form.
func (n *Name) String() string {
	return n.ToUri()
}

// Hash returns a 64-bit FNV-1a hash over each component's type code and
// value, suitable for use as a map key alongside Equals for collision
// resolution.
func (n *Name) Hash() uint64 {
	h := fnv.New64a()
	for _, c := range n.components {
		var tmp [8]byte
		for i := 0; i < 8; i++ {
			tmp[i] = byte(c.typ >> (8 * i))
		}
		_, _ = h.Write(tmp[:])
		_, _ = h.Write(c.Value())
	}
	return h.Sum64()
}

// GetChangeCount implements util.Changeable.
func (n *Name) GetChangeCount() uint64 {
	return n.Count()
}

// Encode writes the Name TLV (type 0x07, containing each component as
// its own TLV) to the front of buf.
func (n *Name) Encode(buf *tlv.Buffer) {
	tlv.PrependValueFunc(buf, TypeName, func(buf *tlv.Buffer) {
		for i := len(n.components) - 1; i >= 0; i-- {
			c := n.components[i]
			tlv.PrependValue(buf, c.typ, c.Value())
		}
	})
}

// WireEncode returns the Name's standalone TLV encoding.
func (n *Name) WireEncode() []byte {
	buf := tlv.NewBuffer(64)
	n.Encode(buf)
	return buf.Bytes()
}

// DecodeValue populates n from the value portion of an already-decoded
// Name TLV (i.e. block.Value from a Block of Type==TypeName).
func (n *Name) DecodeValue(value []byte) error {
	blocks, err := tlv.DecodeAll(value)
	if err != nil {
		return err
	}
	components := make([]Component, 0, len(blocks))
	for _, b := range blocks {
		c, err := NewTypedComponent(b.Type, b.Value)
		if err != nil {
			return err
		}
		components = append(components, c)
	}
	n.components = components
	n.Changed()
	return nil
}

// WireDecode parses a standalone Name TLV, returning the Name and the
// offset of the first unconsumed byte.
func WireDecode(buf []byte) (*Name, int, error) {
	block, next, err := tlv.DecodeBlock(buf, 0)
	if err != nil {
		return nil, 0, err
	}
	if block.Type != TypeName {
		return nil, 0, fmt.Errorf("ndnname: expected Name TLV (type %d), got type %d", TypeName, block.Type)
	}
	n := New()
	if err := n.DecodeValue(block.Value); err != nil {
		return nil, 0, err
	}
	return n, next, nil
}

// AppendParametersDigest computes the SHA-256 digest of encodedParams
// and appends it as a ParametersSha256Digest component.
func (n *Name) AppendParametersDigest(encodedParams []byte) *Name {
	sum := sha256.Sum256(encodedParams)
	c, _ := NewTypedComponent(TypeParametersSha256Digest, sum[:])
	return n.AppendComponent(c)
}
