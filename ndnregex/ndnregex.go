// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ndnregex implements the NDN name regular expression grammar
// used by Interest filters and config-policy checkers. The grammar is
// component-level: <abc> matches one name component whose escaped form
// matches the inner expression, <> matches any one component, and the
// usual repetition operators (* + ? {n,m}), alternation, and capture
// groups operate on whole components. Patterns are always anchored to
// the whole name.
//
// A pattern is compiled by translating it into a standard regular
// expression over the name's URI form, with each component contributing
// "/escaped-component"; capture groups therefore capture URI substrings
// that re-parse as sub-names, which is what the expansion step of a
// hyper-relation checker consumes.
package ndnregex

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/named-data/ndn-go/ndnname"
)

// Matcher is a compiled NDN name regular expression.
type Matcher struct {
	pattern string
	re      *regexp.Regexp
}

// New compiles an NDN regex pattern such as "^<ndn><KEY>(<>*)$". The
// leading ^ and trailing $ are optional; matching is always against the
// entire name.
func New(pattern string) (*Matcher, error) {
	translated, err := translate(pattern)
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile("^(?:" + translated + ")$")
	if err != nil {
		return nil, fmt.Errorf("ndnregex: compiling %q: %w", pattern, err)
	}
	return &Matcher{pattern: pattern, re: re}, nil
}

// Pattern returns the original NDN regex pattern.
func (m *Matcher) Pattern() string { return m.pattern }

// Match reports whether the whole name matches the pattern.
func (m *Matcher) Match(name *ndnname.Name) bool {
	return m.re.MatchString(uriOf(name))
}

// MatchExpand matches name against the pattern and, on success,
// substitutes the capture groups into expansion (which references them
// as \1, \2, ...) and parses the result as a name. Reports false if
// the name does not match.
func (m *Matcher) MatchExpand(name *ndnname.Name, expansion string) (*ndnname.Name, bool, error) {
	sub := m.re.FindStringSubmatch(uriOf(name))
	if sub == nil {
		return nil, false, nil
	}
	expanded, err := expand(expansion, sub)
	if err != nil {
		return nil, false, err
	}
	out, err := ndnname.FromEscapedString(expanded)
	if err != nil {
		return nil, false, fmt.Errorf("ndnregex: expansion %q produced unparseable name %q: %w", expansion, expanded, err)
	}
	return out, true, nil
}

// uriOf renders name the way the translated expression expects: one
// "/component" segment per component, empty string for the empty name.
func uriOf(name *ndnname.Name) string {
	if name.Size() == 0 {
		return ""
	}
	return name.ToUri()
}

// expand substitutes \1-style references in expansion with the
// corresponding capture from sub (sub[0] is the whole match).
func expand(expansion string, sub []string) (string, error) {
	var out strings.Builder
	for i := 0; i < len(expansion); i++ {
		c := expansion[i]
		if c != '\\' {
			out.WriteByte(c)
			continue
		}
		j := i + 1
		for j < len(expansion) && expansion[j] >= '0' && expansion[j] <= '9' {
			j++
		}
		if j == i+1 {
			return "", fmt.Errorf("ndnregex: dangling backslash in expansion %q", expansion)
		}
		ref, err := strconv.Atoi(expansion[i+1 : j])
		if err != nil || ref >= len(sub) {
			return "", fmt.Errorf("ndnregex: expansion %q references missing group", expansion)
		}
		out.WriteString(sub[ref])
		i = j - 1
	}
	return out.String(), nil
}

// translate converts an NDN regex into a Go regexp over the URI form.
func translate(pattern string) (string, error) {
	p := strings.TrimSpace(pattern)
	p = strings.TrimPrefix(p, "^")
	p = strings.TrimSuffix(p, "$")

	var out strings.Builder
	depth := 0
	for i := 0; i < len(p); i++ {
		switch c := p[i]; c {
		case '<':
			end := strings.IndexByte(p[i:], '>')
			if end < 0 {
				return "", fmt.Errorf("ndnregex: unterminated component in %q", pattern)
			}
			inner := p[i+1 : i+end]
			if strings.ContainsAny(inner, "<>") {
				return "", fmt.Errorf("ndnregex: nested component in %q", pattern)
			}
			// Each component becomes a non-capturing group so a
			// following repetition operator binds to the whole
			// "/component" unit.
			if inner == "" {
				out.WriteString("(?:/[^/]*)")
			} else {
				out.WriteString("(?:/(?:" + inner + "))")
			}
			i += end
		case '(':
			out.WriteByte('(')
			depth++
		case ')':
			depth--
			if depth < 0 {
				return "", fmt.Errorf("ndnregex: unbalanced ')' in %q", pattern)
			}
			out.WriteByte(')')
		case '*', '+', '?', '|':
			out.WriteByte(c)
		case '{':
			end := strings.IndexByte(p[i:], '}')
			if end < 0 {
				return "", fmt.Errorf("ndnregex: unterminated repetition in %q", pattern)
			}
			out.WriteString(p[i : i+end+1])
			i += end
		default:
			return "", fmt.Errorf("ndnregex: unexpected %q at position %d in %q (components must be bracketed)", c, i, pattern)
		}
	}
	if depth != 0 {
		return "", fmt.Errorf("ndnregex: unbalanced '(' in %q", pattern)
	}
	return out.String(), nil
}
