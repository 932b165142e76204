// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package linked provides an order-preserving map and the doubly
// linked list it's built on. It backs the tables in this module that
// need O(1) key lookup plus a stable insertion order: the PIT (§5:
// "matches ... are delivered in insertion order"), the interest filter
// table, the registered prefix table, and the in-memory PIB.
package linked

// Hashmap is a hash map that also maintains insertion order (and, via
// Touch, recency order), making it a drop-in base for an LRU.
type Hashmap[K comparable, V any] struct {
	m    map[K]*hashmapEntry[K, V]
	list *List[*hashmapEntry[K, V]]
}

type hashmapEntry[K comparable, V any] struct {
	key   K
	value V
	node  *ListNode[*hashmapEntry[K, V]]
}

// NewHashmap creates an empty Hashmap.
func NewHashmap[K comparable, V any]() *Hashmap[K, V] {
	return &Hashmap[K, V]{
		m:    make(map[K]*hashmapEntry[K, V]),
		list: NewList[*hashmapEntry[K, V]](),
	}
}

// Put adds or updates a key-value pair. An update does not change the
// key's position in the iteration order; use Touch for that.
func (h *Hashmap[K, V]) Put(key K, value V) {
	if entry, exists := h.m[key]; exists {
		entry.value = value
		return
	}
	entry := &hashmapEntry[K, V]{key: key, value: value}
	entry.node = h.list.PushBack(entry)
	h.m[key] = entry
}

// Get retrieves a value by key.
func (h *Hashmap[K, V]) Get(key K) (V, bool) {
	if entry, exists := h.m[key]; exists {
		return entry.value, true
	}
	var zero V
	return zero, false
}

// Has reports whether key is present.
func (h *Hashmap[K, V]) Has(key K) bool {
	_, ok := h.m[key]
	return ok
}

// Touch moves key to the back (newest) of the iteration order, without
// changing its value. Used by LRU caches on every access.
func (h *Hashmap[K, V]) Touch(key K) {
	entry, exists := h.m[key]
	if !exists {
		return
	}
	h.list.Remove(entry.node)
	entry.node = h.list.PushBack(entry)
}

// Delete removes a key-value pair.
func (h *Hashmap[K, V]) Delete(key K) {
	if entry, exists := h.m[key]; exists {
		h.list.Remove(entry.node)
		delete(h.m, key)
	}
}

// Len returns the number of entries.
func (h *Hashmap[K, V]) Len() int {
	return h.list.Len()
}

// Clear removes all entries.
func (h *Hashmap[K, V]) Clear() {
	h.m = make(map[K]*hashmapEntry[K, V])
	h.list.Clear()
}

// Iterate calls f for each entry in insertion/recency order, stopping
// early if f returns false.
func (h *Hashmap[K, V]) Iterate(f func(K, V) bool) {
	for node := h.list.Front(); node != nil; node = node.Next {
		entry := node.Value
		if !f(entry.key, entry.value) {
			break
		}
	}
}

// OldestEntry returns the least-recently-inserted-or-touched entry.
func (h *Hashmap[K, V]) OldestEntry() (K, V, bool) {
	node := h.list.Front()
	if node == nil {
		var zeroK K
		var zeroV V
		return zeroK, zeroV, false
	}
	entry := node.Value
	return entry.key, entry.value, true
}

// PopOldest removes and returns the oldest entry, if any.
func (h *Hashmap[K, V]) PopOldest() (K, V, bool) {
	k, v, ok := h.OldestEntry()
	if ok {
		h.Delete(k)
	}
	return k, v, ok
}
