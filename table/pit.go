// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package table implements the Node's four lookup tables: the Pending
// Interest Table (PIT), the Interest Filter Table (IFT), the
// Registered Prefix Table (RPT), and the Delayed Call Table (DCT) used
// to schedule timeouts without a goroutine per pending call.
package table

import (
	"time"

	"github.com/named-data/ndn-go/blob"
	"github.com/named-data/ndn-go/packet"
	"github.com/named-data/ndn-go/util/linked"
)

// OnData is invoked once per Data that satisfies a pending Interest.
type OnData func(interest *packet.Interest, data *packet.Data)

// OnTimeout is invoked if a pending Interest's lifetime elapses with no
// matching Data.
type OnTimeout func(interest *packet.Interest)

// OnNetworkNack is invoked if the forwarder returns a Nack for a
// pending Interest.
type OnNetworkNack func(interest *packet.Interest, reason int)

// PendingInterestEntry is one outstanding Interest awaiting a Data, a
// Nack, or a timeout.
type PendingInterestEntry struct {
	ID        uint64
	Interest  *packet.Interest
	OnData    OnData
	OnTimeout OnTimeout
	OnNack    OnNetworkNack
	Expiry    time.Time

	// removed is set by Remove so that a Data, Nack, or timeout racing
	// with cancellation finds a tombstone and becomes a no-op instead
	// of a double dispatch.
	removed bool
}

// PendingInterestTable tracks outstanding Interests by insertion order,
// so that multiple pending Interests matched by one incoming Data are
// satisfied in the order they were expressed. Entry ids are allocated
// by the owning Node's atomic counter so they can be handed to the
// caller before the insertion is dispatched to the event thread; a
// remove-request list absorbs the race where Remove(id) arrives before
// Add(id).
type PendingInterestTable struct {
	entries        *linked.Hashmap[uint64, *PendingInterestEntry]
	removeRequests map[uint64]struct{}
}

// NewPendingInterestTable returns an empty PIT.
func NewPendingInterestTable() *PendingInterestTable {
	return &PendingInterestTable{
		entries:        linked.NewHashmap[uint64, *PendingInterestEntry](),
		removeRequests: make(map[uint64]struct{}),
	}
}

// Add records a new pending Interest under the caller-allocated id. If
// a remove request for the id already arrived, the entry is dropped
// and Add reports false.
func (t *PendingInterestTable) Add(id uint64, interest *packet.Interest, onData OnData, onTimeout OnTimeout, onNack OnNetworkNack, now time.Time) bool {
	if _, requested := t.removeRequests[id]; requested {
		delete(t.removeRequests, id)
		return false
	}
	t.entries.Put(id, &PendingInterestEntry{
		ID:        id,
		Interest:  interest,
		OnData:    onData,
		OnTimeout: onTimeout,
		OnNack:    onNack,
		Expiry:    now.Add(interest.InterestLifetime()),
	})
	return true
}

// Remove tombstones a pending Interest so a concurrently in-flight
// Data, Nack, or timeout for it is dropped instead of delivered, then
// deletes it. Removing an id that was never added queues a remove
// request so a later Add for it becomes a no-op; removal is idempotent
// either way.
func (t *PendingInterestTable) Remove(id uint64) bool {
	entry, ok := t.entries.Get(id)
	if !ok {
		t.removeRequests[id] = struct{}{}
		return false
	}
	entry.removed = true
	t.entries.Delete(id)
	return true
}

// Len returns the number of pending entries.
func (t *PendingInterestTable) Len() int { return t.entries.Len() }

// MatchData invokes OnData for every live pending entry whose Interest
// is satisfied by data, in insertion order, removing each as it is
// satisfied. Returns the number matched.
func (t *PendingInterestTable) MatchData(data *packet.Data) int {
	var matched []*PendingInterestEntry
	t.entries.Iterate(func(_ uint64, entry *PendingInterestEntry) bool {
		if !entry.removed && entry.Interest.MatchesData(data) {
			matched = append(matched, entry)
		}
		return true
	})
	count := 0
	for _, entry := range matched {
		if entry.removed {
			continue
		}
		entry.removed = true
		t.entries.Delete(entry.ID)
		if entry.OnData != nil {
			entry.OnData(entry.Interest, data)
		}
		count++
	}
	return count
}

// MatchNack invokes OnNack for every live pending entry whose
// Interest's wire encoding equals the nacked Interest's and which has
// a nack callback, removing each. Entries without a nack callback are
// deliberately left in place so their timeout fires later. Returns the
// number matched.
func (t *PendingInterestTable) MatchNack(interest *packet.Interest, reason int) int {
	nackedWire := wireOf(interest)
	var matched []*PendingInterestEntry
	t.entries.Iterate(func(_ uint64, entry *PendingInterestEntry) bool {
		if !entry.removed && entry.OnNack != nil && wireOf(entry.Interest).Equals(nackedWire) {
			matched = append(matched, entry)
		}
		return true
	})
	count := 0
	for _, entry := range matched {
		if entry.removed {
			continue
		}
		entry.removed = true
		t.entries.Delete(entry.ID)
		entry.OnNack(entry.Interest, reason)
		count++
	}
	return count
}

// TimeoutIfPresent fires OnTimeout for the entry with the given id if
// it is still live, removing it. A tombstoned or already-satisfied
// entry makes this a no-op, which is what lets a racing delayed-call
// timeout stay silent.
func (t *PendingInterestTable) TimeoutIfPresent(id uint64) bool {
	entry, ok := t.entries.Get(id)
	if !ok || entry.removed {
		return false
	}
	entry.removed = true
	t.entries.Delete(id)
	if entry.OnTimeout != nil {
		entry.OnTimeout(entry.Interest)
	}
	return true
}

// CheckTimeouts fires OnTimeout for every live entry whose Expiry is at
// or before now, removing each. Used directly by callers that drive the
// table without a DelayedCallTable. Returns the number timed out.
func (t *PendingInterestTable) CheckTimeouts(now time.Time) int {
	var expired []*PendingInterestEntry
	t.entries.Iterate(func(_ uint64, entry *PendingInterestEntry) bool {
		if !entry.removed && !entry.Expiry.After(now) {
			expired = append(expired, entry)
		}
		return true
	})
	for _, entry := range expired {
		entry.removed = true
		t.entries.Delete(entry.ID)
		if entry.OnTimeout != nil {
			entry.OnTimeout(entry.Interest)
		}
	}
	return len(expired)
}

// wireOf returns interest's cached wire encoding, encoding it first if
// none is cached yet.
func wireOf(interest *packet.Interest) blob.Blob {
	wire := interest.WireEncoding()
	if wire.IsNull() {
		wire = interest.Encode()
	}
	return wire.Blob
}
