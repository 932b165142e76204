// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ndnname

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNameRoundTrip(t *testing.T) {
	n, err := FromEscapedString("/a/b/c")
	require.NoError(t, err)
	encoded := n.WireEncode()
	decoded, next, err := WireDecode(encoded)
	require.NoError(t, err)
	require.Equal(t, len(encoded), next)
	require.True(t, n.Equals(decoded))
}

func TestEmptyNameEncodesToTwoBytes(t *testing.T) {
	n := New()
	encoded := n.WireEncode()
	require.Equal(t, []byte{0x07, 0x00}, encoded)
}

func TestNameCompareIsTotalOrder(t *testing.T) {
	a, _ := FromEscapedString("/a")
	b, _ := FromEscapedString("/b")
	require.Equal(t, 0, a.Compare(a))
	require.True(t, a.Compare(b) < 0)
	require.True(t, b.Compare(a) > 0)
}

func TestNameShorterPrefixSortsFirst(t *testing.T) {
	short, _ := FromEscapedString("/a")
	long, _ := FromEscapedString("/a/b")
	require.True(t, short.Compare(long) < 0)
}

func TestNameMatch(t *testing.T) {
	prefix, _ := FromEscapedString("/a/b")
	full, _ := FromEscapedString("/a/b/c")
	require.True(t, prefix.Match(full))
	require.False(t, full.Match(prefix))
	require.True(t, full.Match(full))
}

func TestGetSuccessorIncrementsLastComponent(t *testing.T) {
	n, _ := FromEscapedString("/a")
	succ := n.GetSuccessor()
	require.True(t, n.Compare(succ) < 0)

	// Nothing can sort strictly between n and its successor.
	lastVal := succ.components[0].Value()
	require.Equal(t, []byte{'a' + 1}, lastVal)
}

func TestGetSuccessorOnAllFFGrowsByOneByte(t *testing.T) {
	n := New()
	n.Append([]byte{0xFF, 0xFF})
	succ := n.GetSuccessor()
	v, err := succ.Get(0)
	require.NoError(t, err)
	require.Equal(t, []byte{0x00, 0x00, 0x00}, v.Value())
}

func TestGetPrefixAndSubName(t *testing.T) {
	n, _ := FromEscapedString("/a/b/c/d")
	require.Equal(t, "/a/b", n.GetPrefix(2).ToUri())
	require.Equal(t, "/a/b", n.GetPrefix(-2).ToUri())
	require.Equal(t, "/b/c", n.GetSubName(1, 2).ToUri())
	require.Equal(t, "/c/d", n.GetSubName(-2, -1).ToUri())
}

func TestNegativeGet(t *testing.T) {
	n, _ := FromEscapedString("/a/b/c")
	last, err := n.Get(-1)
	require.NoError(t, err)
	require.Equal(t, "c", string(last.Value()))
}

func TestToEscapedStringTypedComponents(t *testing.T) {
	n := New()
	digest := make([]byte, 32)
	c, err := NewTypedComponent(TypeImplicitSha256Digest, digest)
	require.NoError(t, err)
	n.AppendComponent(c)
	require.Contains(t, n.ToUri(), "sha256digest=")
}

func TestDigestComponentRequiresExactLength(t *testing.T) {
	_, err := NewTypedComponent(TypeImplicitSha256Digest, []byte{1, 2, 3})
	require.Error(t, err)
}

func TestSegmentConvention(t *testing.T) {
	c := MakeSegmentComponent(42)
	v, err := c.ToSegment()
	require.NoError(t, err)
	require.Equal(t, uint64(42), v)
}

func TestChangeCounterBumpsOnMutation(t *testing.T) {
	n := New()
	before := n.GetChangeCount()
	n.AppendString("x")
	require.Greater(t, n.GetChangeCount(), before)
}
