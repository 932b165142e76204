// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package packet

import (
	"sort"

	"github.com/named-data/ndn-go/ndnname"
	"github.com/named-data/ndn-go/tlv"
	"github.com/named-data/ndn-go/util"
)

// TypeDelegation and TypePreference are the TLV types of one
// DelegationSet entry and of its preference field.
const (
	TypeDelegation       uint64 = 0x1F
	TypePreference       uint64 = 0x1E
)

// Delegation is one (preference, name) pair inside a DelegationSet.
type Delegation struct {
	Preference int
	Name       *ndnname.Name
}

// DelegationSet holds the delegations carried by a Link packet's
// content, or produced as the result of resolving a ForwardingHint.
//
// Two construction paths exist with different ordering guarantees:
// Add inserts in increasing-preference order and removes duplicate
// names (matching how an application builds a Link to publish), while
// WireDecode preserves the wire order and any duplicates exactly as
// received, since a forwarding hint's delegation order is significant
// forwarding guidance that must not be silently reordered.
type DelegationSet struct {
	util.ChangeCounter
	delegations []Delegation
}

// NewDelegationSet returns an empty DelegationSet.
func NewDelegationSet() *DelegationSet {
	return &DelegationSet{}
}

// Size returns the number of delegations.
func (d *DelegationSet) Size() int { return len(d.delegations) }

// Get returns the delegation at index i.
func (d *DelegationSet) Get(i int) Delegation { return d.delegations[i] }

// Delegations returns the delegations in their current order.
func (d *DelegationSet) Delegations() []Delegation {
	return d.delegations
}

// Add inserts a delegation in sorted order by preference (ties broken
// by canonical name order), replacing any existing delegation with the
// same name.
func (d *DelegationSet) Add(preference int, name *ndnname.Name) {
	for i, existing := range d.delegations {
		if existing.Name.Equals(name) {
			d.delegations = append(d.delegations[:i], d.delegations[i+1:]...)
			break
		}
	}
	d.delegations = append(d.delegations, Delegation{Preference: preference, Name: name})
	sort.SliceStable(d.delegations, func(i, j int) bool {
		if d.delegations[i].Preference != d.delegations[j].Preference {
			return d.delegations[i].Preference < d.delegations[j].Preference
		}
		return d.delegations[i].Name.Compare(d.delegations[j].Name) < 0
	})
	d.Changed()
}

// Remove deletes every delegation whose name equals name, reporting
// whether anything was removed.
func (d *DelegationSet) Remove(name *ndnname.Name) bool {
	removed := false
	kept := d.delegations[:0]
	for _, existing := range d.delegations {
		if existing.Name.Equals(name) {
			removed = true
			continue
		}
		kept = append(kept, existing)
	}
	d.delegations = kept
	if removed {
		d.Changed()
	}
	return removed
}

// Clear empties the set.
func (d *DelegationSet) Clear() {
	d.delegations = nil
	d.Changed()
}

// GetChangeCount implements util.Changeable.
func (d *DelegationSet) GetChangeCount() uint64 { return d.Count() }

// Encode prepends the set's Delegation TLVs, in current order, to buf.
func (d *DelegationSet) Encode(buf *tlv.Buffer) {
	for i := len(d.delegations) - 1; i >= 0; i-- {
		del := d.delegations[i]
		tlv.PrependValueFunc(buf, TypeDelegation, func(buf *tlv.Buffer) {
			del.Name.Encode(buf)
			tlv.PrependNonNegativeIntegerTlv(buf, TypePreference, uint64(del.Preference))
		})
	}
}

// WireDecode parses a sequence of Delegation TLVs, preserving wire
// order and duplicates.
func (d *DelegationSet) WireDecode(buf []byte) error {
	blocks, err := tlv.DecodeAll(buf)
	if err != nil {
		return err
	}
	d.delegations = d.delegations[:0]
	for _, b := range blocks {
		if b.Type != TypeDelegation {
			continue
		}
		inner, err := tlv.DecodeAll(b.Value)
		if err != nil {
			return err
		}
		var del Delegation
		for _, ib := range inner {
			switch ib.Type {
			case TypePreference:
				v, err := tlv.DecodeNonNegativeInteger(ib.Value)
				if err != nil {
					return err
				}
				del.Preference = int(v)
			case ndnname.TypeName:
				n := ndnname.New()
				if err := n.DecodeValue(ib.Value); err != nil {
					return err
				}
				del.Name = n
			}
		}
		if del.Name == nil {
			del.Name = ndnname.New()
		}
		d.delegations = append(d.delegations, del)
	}
	d.Changed()
	return nil
}
