// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package table

import (
	"github.com/named-data/ndn-go/ndnname"
	"github.com/named-data/ndn-go/ndnregex"
	"github.com/named-data/ndn-go/packet"
	"github.com/named-data/ndn-go/util/linked"
)

// InterestFilter selects which incoming Interests are delivered to a
// producer callback: the Interest's name must start with Prefix and,
// if a regex was given, its full name URI must also match it.
type InterestFilter struct {
	prefix *ndnname.Name
	regex  *ndnregex.Matcher
}

// NewInterestFilter returns a filter matching on prefix alone.
func NewInterestFilter(prefix *ndnname.Name) *InterestFilter {
	return &InterestFilter{prefix: prefix}
}

// NewInterestFilterWithRegex returns a filter that requires both a
// prefix match and an NDN-regex match against the Interest name.
func NewInterestFilterWithRegex(prefix *ndnname.Name, regexFilter string) (*InterestFilter, error) {
	m, err := ndnregex.New(regexFilter)
	if err != nil {
		return nil, err
	}
	return &InterestFilter{prefix: prefix, regex: m}, nil
}

// Prefix returns the filter's name prefix.
func (f *InterestFilter) Prefix() *ndnname.Name { return f.prefix }

// HasRegexFilter reports whether a regex constraint is attached.
func (f *InterestFilter) HasRegexFilter() bool { return f.regex != nil }

// Matches reports whether name passes this filter.
func (f *InterestFilter) Matches(name *ndnname.Name) bool {
	if !f.prefix.Match(name) {
		return false
	}
	if f.regex == nil {
		return true
	}
	return f.regex.Match(name)
}

// OnInterestCallback is invoked for each incoming Interest that passes
// a registered filter. The Node wraps this to also hand the callback a
// reference to itself as the face to reply on.
type OnInterestCallback func(prefix *ndnname.Name, interest *packet.Interest, filterID uint64, filter *InterestFilter)

// InterestFilterEntry is one registered filter plus its callback.
type InterestFilterEntry struct {
	ID       uint64
	Filter   *InterestFilter
	OnInterest OnInterestCallback
}

// InterestFilterTable dispatches incoming Interests to every filter
// they pass, in filter insertion order.
type InterestFilterTable struct {
	entries *linked.Hashmap[uint64, *InterestFilterEntry]
}

// NewInterestFilterTable returns an empty IFT.
func NewInterestFilterTable() *InterestFilterTable {
	return &InterestFilterTable{entries: linked.NewHashmap[uint64, *InterestFilterEntry]()}
}

// Add registers a filter under the caller-allocated id.
func (t *InterestFilterTable) Add(id uint64, filter *InterestFilter, onInterest OnInterestCallback) {
	t.entries.Put(id, &InterestFilterEntry{ID: id, Filter: filter, OnInterest: onInterest})
}

// Remove unregisters the filter with the given id, reporting whether it
// existed. Removal is idempotent.
func (t *InterestFilterTable) Remove(id uint64) bool {
	if !t.entries.Has(id) {
		return false
	}
	t.entries.Delete(id)
	return true
}

// Len returns the number of registered filters.
func (t *InterestFilterTable) Len() int { return t.entries.Len() }

// Match returns the entries whose filter matches interest's name, in
// insertion order. The caller invokes the callbacks so that an
// OnInterest handler that mutates the table mid-dispatch can't
// invalidate the iteration.
func (t *InterestFilterTable) Match(interest *packet.Interest) []*InterestFilterEntry {
	var matched []*InterestFilterEntry
	t.entries.Iterate(func(_ uint64, entry *InterestFilterEntry) bool {
		if entry.Filter.Matches(interest.Name()) {
			matched = append(matched, entry)
		}
		return true
	})
	return matched
}
