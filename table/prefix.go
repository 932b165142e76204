// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package table

import (
	"github.com/named-data/ndn-go/ndnname"
	"github.com/named-data/ndn-go/util/linked"
)

// RegisteredPrefixEntry records one registerPrefix call: the prefix
// registered with the forwarder and, if the registration also installed
// a local Interest filter, the id of that IFT entry so removal can
// cascade.
type RegisteredPrefixEntry struct {
	ID               uint64
	Prefix           *ndnname.Name
	RelatedFilterID  uint64
	HasRelatedFilter bool
}

// RegisteredPrefixTable tracks forwarder prefix registrations. Like the
// PIT it keeps a remove-request list so that a RemoveRegisteredPrefix
// racing ahead of the asynchronous registration response still cancels
// the entry when it is finally added.
type RegisteredPrefixTable struct {
	entries        *linked.Hashmap[uint64, *RegisteredPrefixEntry]
	removeRequests map[uint64]struct{}
}

// NewRegisteredPrefixTable returns an empty RPT.
func NewRegisteredPrefixTable() *RegisteredPrefixTable {
	return &RegisteredPrefixTable{
		entries:        linked.NewHashmap[uint64, *RegisteredPrefixEntry](),
		removeRequests: make(map[uint64]struct{}),
	}
}

// Add records a registration under the caller-allocated id. If a remove
// request for the id already arrived, the entry is dropped instead and
// Add reports false; the caller must then also undo the related filter.
func (t *RegisteredPrefixTable) Add(id uint64, prefix *ndnname.Name, relatedFilterID uint64, hasRelatedFilter bool) bool {
	if _, requested := t.removeRequests[id]; requested {
		delete(t.removeRequests, id)
		return false
	}
	t.entries.Put(id, &RegisteredPrefixEntry{
		ID:               id,
		Prefix:           prefix,
		RelatedFilterID:  relatedFilterID,
		HasRelatedFilter: hasRelatedFilter,
	})
	return true
}

// Remove deletes the registration with the given id and returns the
// removed entry so the caller can cascade to its related IFT entry. If
// no entry exists yet, the id is queued as a remove request and a later
// Add for it becomes a no-op.
func (t *RegisteredPrefixTable) Remove(id uint64) (*RegisteredPrefixEntry, bool) {
	entry, ok := t.entries.Get(id)
	if !ok {
		t.removeRequests[id] = struct{}{}
		return nil, false
	}
	t.entries.Delete(id)
	return entry, true
}

// Len returns the number of registrations.
func (t *RegisteredPrefixTable) Len() int { return t.entries.Len() }
