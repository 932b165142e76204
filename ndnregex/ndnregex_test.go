// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ndnregex

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/named-data/ndn-go/ndnname"
)

func mustName(t *testing.T, uri string) *ndnname.Name {
	t.Helper()
	n, err := ndnname.FromEscapedString(uri)
	require.NoError(t, err)
	return n
}

func TestMatchLiteralComponents(t *testing.T) {
	m, err := New("^<ndn><edu><ucla>$")
	require.NoError(t, err)
	require.True(t, m.Match(mustName(t, "/ndn/edu/ucla")))
	require.False(t, m.Match(mustName(t, "/ndn/edu")))
	require.False(t, m.Match(mustName(t, "/ndn/edu/ucla/cs")))
}

func TestMatchWildcardRepetition(t *testing.T) {
	m, err := New("^<ndn><>*$")
	require.NoError(t, err)
	require.True(t, m.Match(mustName(t, "/ndn")))
	require.True(t, m.Match(mustName(t, "/ndn/a/b/c")))
	require.False(t, m.Match(mustName(t, "/x/ndn")))
}

func TestMatchInnerExpression(t *testing.T) {
	m, err := New("^<ndn><ab*>$")
	require.NoError(t, err)
	require.True(t, m.Match(mustName(t, "/ndn/a")))
	require.True(t, m.Match(mustName(t, "/ndn/abbb")))
	require.False(t, m.Match(mustName(t, "/ndn/ba")))
}

func TestMatchAlternation(t *testing.T) {
	m, err := New("^(<edu>|<com>)<site>$")
	require.NoError(t, err)
	require.True(t, m.Match(mustName(t, "/edu/site")))
	require.True(t, m.Match(mustName(t, "/com/site")))
	require.False(t, m.Match(mustName(t, "/org/site")))
}

func TestMatchExpandCapturesSubName(t *testing.T) {
	m, err := New("^<ndn>(<>*)<KEY>(<>*)$")
	require.NoError(t, err)
	derived, ok, err := m.MatchExpand(mustName(t, "/ndn/edu/ucla/KEY/k1"), "\\1")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, derived.Equals(mustName(t, "/edu/ucla")))

	derived, ok, err = m.MatchExpand(mustName(t, "/ndn/edu/ucla/KEY/k1"), "\\1\\2")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, derived.Equals(mustName(t, "/edu/ucla/k1")))
}

func TestMatchExpandNoMatch(t *testing.T) {
	m, err := New("^<a>(<>*)$")
	require.NoError(t, err)
	_, ok, err := m.MatchExpand(mustName(t, "/b/c"), "\\1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMatchExpandMissingGroup(t *testing.T) {
	m, err := New("^<a>$")
	require.NoError(t, err)
	_, _, err = m.MatchExpand(mustName(t, "/a"), "\\3")
	require.Error(t, err)
}

func TestBadPatterns(t *testing.T) {
	for _, pattern := range []string{
		"^<ndn",      // unterminated component
		"abc",        // bare text outside brackets
		"^(<a>$",     // unbalanced group
		"^<a>)$",     // unbalanced close
		"^<a><b{2,$", // unterminated repetition
	} {
		_, err := New(pattern)
		require.Error(t, err, "pattern %q", pattern)
	}
}

func TestEmptyNameMatchesStarOnly(t *testing.T) {
	star, err := New("^<>*$")
	require.NoError(t, err)
	require.True(t, star.Match(ndnname.New()))

	one, err := New("^<>$")
	require.NoError(t, err)
	require.False(t, one.Match(ndnname.New()))
}
