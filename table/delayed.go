// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package table

import (
	"container/heap"
	"time"
)

// delayedCall is one scheduled callback.
type delayedCall struct {
	callTime time.Time
	callback func()
	seq      uint64 // insertion order, to break callTime ties FIFO
}

type delayedCallHeap []*delayedCall

func (h delayedCallHeap) Len() int { return len(h) }
func (h delayedCallHeap) Less(i, j int) bool {
	if h[i].callTime.Equal(h[j].callTime) {
		return h[i].seq < h[j].seq
	}
	return h[i].callTime.Before(h[j].callTime)
}
func (h delayedCallHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *delayedCallHeap) Push(x any)   { *h = append(*h, x.(*delayedCall)) }
func (h *delayedCallHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// DelayedCallTable schedules callbacks to run at a future instant
// without a goroutine per pending call: the Node's processEvents loop
// calls Fire, which runs every callback whose time has come, in time
// order (insertion order for equal times).
type DelayedCallTable struct {
	calls delayedCallHeap
	seq   uint64
}

// NewDelayedCallTable returns an empty DCT.
func NewDelayedCallTable() *DelayedCallTable {
	return &DelayedCallTable{}
}

// CallLater schedules callback to run once Fire is called with a now at
// or past now+delay.
func (t *DelayedCallTable) CallLater(now time.Time, delay time.Duration, callback func()) {
	t.seq++
	heap.Push(&t.calls, &delayedCall{callTime: now.Add(delay), callback: callback, seq: t.seq})
}

// Fire runs every callback whose scheduled time is at or before now,
// removing each before invoking it so a callback that schedules more
// delayed calls (or inspects the table) sees a consistent state.
func (t *DelayedCallTable) Fire(now time.Time) int {
	fired := 0
	for len(t.calls) > 0 && !t.calls[0].callTime.After(now) {
		entry := heap.Pop(&t.calls).(*delayedCall)
		entry.callback()
		fired++
	}
	return fired
}

// Len returns the number of pending calls.
func (t *DelayedCallTable) Len() int { return len(t.calls) }

// NextCallTime returns the earliest scheduled time, if any call is
// pending.
func (t *DelayedCallTable) NextCallTime() (time.Time, bool) {
	if len(t.calls) == 0 {
		return time.Time{}, false
	}
	return t.calls[0].callTime, true
}
