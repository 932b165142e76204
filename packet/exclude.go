// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package packet

import (
	"github.com/named-data/ndn-go/ndnname"
	"github.com/named-data/ndn-go/tlv"
	"github.com/named-data/ndn-go/util"
)

// TypeExclude is the Exclude TLV type.
const TypeExclude uint64 = 0x10

// TypeAny is the Any TLV type used inside an Exclude to mark a wildcard
// range.
const TypeAny uint64 = 0x13

// excludeEntry is one entry of an Exclude's internal list: either a
// literal component to exclude, or a wildcard ("Any") marker that
// excludes every name between the surrounding components.
type excludeEntry struct {
	isAny     bool
	component ndnname.Component
}

// Exclude represents the set of name components disallowed from the
// component immediately following an Interest's matching prefix,
// expressed as an ordered list of literal components interleaved with
// optional "Any" wildcard markers.
type Exclude struct {
	util.ChangeCounter
	entries []excludeEntry
}

// NewExclude returns an empty Exclude.
func NewExclude() *Exclude {
	return &Exclude{}
}

// AppendComponent appends a literal excluded component. Entries must be
// appended in increasing canonical order for Matches to behave
// correctly, mirroring the wire requirement.
func (e *Exclude) AppendComponent(c ndnname.Component) *Exclude {
	e.entries = append(e.entries, excludeEntry{component: c})
	e.Changed()
	return e
}

// AppendAny appends an "Any" wildcard marker.
func (e *Exclude) AppendAny() *Exclude {
	e.entries = append(e.entries, excludeEntry{isAny: true})
	e.Changed()
	return e
}

// Size returns the number of entries (literal components plus Any
// markers).
func (e *Exclude) Size() int { return len(e.entries) }

// Clear empties the Exclude.
func (e *Exclude) Clear() {
	e.entries = nil
	e.Changed()
}

// GetChangeCount implements util.Changeable.
func (e *Exclude) GetChangeCount() uint64 { return e.Count() }

// Matches reports whether component is excluded by this Exclude.
//
// A component is excluded if it equals a literal entry, or if it falls
// strictly between the components bracketing an Any marker (an Any at
// the very start/end of the list is unbounded on that side).
func (e *Exclude) Matches(component ndnname.Component) bool {
	for i, ent := range e.entries {
		if !ent.isAny {
			if ent.component.Equals(component) {
				return true
			}
			continue
		}

		var lowOK, highOK = true, true
		if i > 0 && !e.entries[i-1].isAny {
			lowOK = e.entries[i-1].component.Compare(component) < 0
		}
		if i+1 < len(e.entries) && !e.entries[i+1].isAny {
			highOK = component.Compare(e.entries[i+1].component) < 0
		}
		if lowOK && highOK {
			return true
		}
	}
	return false
}

// Encode prepends the Exclude TLV, if non-empty, to buf.
func (e *Exclude) Encode(buf *tlv.Buffer) {
	if len(e.entries) == 0 {
		return
	}
	tlv.PrependValueFunc(buf, TypeExclude, func(buf *tlv.Buffer) {
		for i := len(e.entries) - 1; i >= 0; i-- {
			ent := e.entries[i]
			if ent.isAny {
				tlv.PrependValue(buf, TypeAny, nil)
			} else {
				tlv.PrependValue(buf, ent.component.Type(), ent.component.Value())
			}
		}
	})
}

// DecodeValue parses the value portion of an Exclude TLV, preserving
// wire order (entries are neither sorted nor deduplicated).
func (e *Exclude) DecodeValue(value []byte) error {
	blocks, err := tlv.DecodeAll(value)
	if err != nil {
		return err
	}
	e.entries = e.entries[:0]
	for _, b := range blocks {
		if b.Type == TypeAny {
			e.entries = append(e.entries, excludeEntry{isAny: true})
			continue
		}
		c, err := ndnname.NewTypedComponent(b.Type, b.Value)
		if err != nil {
			return err
		}
		e.entries = append(e.entries, excludeEntry{component: c})
	}
	e.Changed()
	return nil
}
