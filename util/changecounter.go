// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package util holds small, dependency-free helpers shared by the name,
// packet, and TLV packages: the change-counter invalidation protocol and
// the Errs error accumulator.
package util

// ChangeCounter is embedded by every mutable composite (Name, MetaInfo,
// Exclude, DelegationSet, Interest, Data, ...). Each mutation calls
// Changed, which bumps a monotonic counter; a cached wire encoding
// recorded alongside the counter value at encode time becomes stale the
// moment the counter moves past it.
type ChangeCounter struct {
	count uint64
}

// Changed increments the counter. Call this from every method that
// mutates the composite's own fields.
func (c *ChangeCounter) Changed() {
	c.count++
}

// Count returns the current counter value.
func (c *ChangeCounter) Count() uint64 {
	return c.count
}

// Changeable is implemented by anything carrying a ChangeCounter.
type Changeable interface {
	// GetChangeCount returns the aggregate change count: a composite's
	// own counter plus, transitively, its children's. Calling this is
	// expected to refresh any child snapshots held by the composite.
	GetChangeCount() uint64
}

// ChildHolder snapshots a child's change count at assignment time and
// reports whether it has since changed, refreshing the snapshot as a
// side effect. It is the building block parent composites use to
// aggregate GetChangeCount() across their fields without back-pointers.
type ChildHolder[T Changeable] struct {
	child    T
	snapshot uint64
}

// NewChildHolder wraps child, capturing its current change count.
func NewChildHolder[T Changeable](child T) ChildHolder[T] {
	return ChildHolder[T]{child: child, snapshot: child.GetChangeCount()}
}

// Set replaces the held child and resets the snapshot.
func (h *ChildHolder[T]) Set(child T) {
	h.child = child
	h.snapshot = child.GetChangeCount()
}

// Get returns the held child.
func (h *ChildHolder[T]) Get() T {
	return h.child
}

// CheckChanged reports whether the child's change count has moved past
// the last snapshot, refreshing the snapshot if so.
func (h *ChildHolder[T]) CheckChanged() bool {
	cur := h.child.GetChangeCount()
	if cur != h.snapshot {
		h.snapshot = cur
		return true
	}
	return false
}
