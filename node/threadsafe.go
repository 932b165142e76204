// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package node

import (
	"github.com/named-data/ndn-go/ndnname"
	"github.com/named-data/ndn-go/packet"
	"github.com/named-data/ndn-go/security"
	"github.com/named-data/ndn-go/table"

	"go.uber.org/zap"
)

// ThreadsafeNode lets multiple goroutines share one Node: every public
// operation is posted onto a serializing queue that the event goroutine
// drains inside ProcessEvents, so no table is ever touched off that
// goroutine and there are no locks around the tables themselves.
// ExpressInterest and SetInterestFilter allocate their entry ids
// atomically on the caller's goroutine, so the id is available
// immediately (RegisterPrefix returns none); errors from the deferred
// operation are logged on the event goroutine instead of returned.
type ThreadsafeNode struct {
	inner    *Node
	dispatch chan func()
}

// NewThreadsafe wraps n. The queue holds up to 1024 deferred
// operations; a full queue blocks the caller until the event goroutine
// catches up.
func NewThreadsafe(n *Node) *ThreadsafeNode {
	return &ThreadsafeNode{inner: n, dispatch: make(chan func(), 1024)}
}

// Inner returns the wrapped Node. Only the event goroutine may use it
// directly.
func (t *ThreadsafeNode) Inner() *Node { return t.inner }

// ExpressInterest posts the send onto the event goroutine and returns
// the pending-interest id immediately.
func (t *ThreadsafeNode) ExpressInterest(interest *packet.Interest, onData table.OnData, onTimeout table.OnTimeout, onNack table.OnNetworkNack) uint64 {
	id := t.inner.AllocateEntryID()
	t.dispatch <- func() {
		if t.inner.state == stateConnectComplete {
			if err := t.inner.expressHelper(id, interest, onData, onTimeout, onNack); err != nil {
				t.inner.log.Warn("dispatched expressInterest failed",
					zap.String("name", interest.Name().ToUri()), zap.Error(err))
			}
			return
		}
		t.inner.onConnectedRuns = append(t.inner.onConnectedRuns, func() {
			if err := t.inner.expressHelper(id, interest, onData, onTimeout, onNack); err != nil {
				t.inner.log.Warn("queued expressInterest failed",
					zap.String("name", interest.Name().ToUri()), zap.Error(err))
			}
		})
		if err := t.inner.ensureConnected(); err != nil {
			t.inner.log.Warn("connect failed", zap.Error(err))
		}
	}
	return id
}

// RemovePendingInterest posts the cancellation. The remove-request list
// in the PIT makes this effective even if it overtakes the insertion.
func (t *ThreadsafeNode) RemovePendingInterest(id uint64) {
	t.dispatch <- func() { t.inner.RemovePendingInterest(id) }
}

// SetInterestFilter posts the filter insertion and returns its id
// immediately.
func (t *ThreadsafeNode) SetInterestFilter(filter *table.InterestFilter, onInterest OnInterest) uint64 {
	id := t.inner.AllocateEntryID()
	t.dispatch <- func() {
		t.inner.ift.Add(id, filter, t.inner.wrapOnInterest(onInterest))
		t.inner.updateTableGauges()
	}
	return id
}

// UnsetInterestFilter posts the filter removal.
func (t *ThreadsafeNode) UnsetInterestFilter(id uint64) {
	t.dispatch <- func() { t.inner.UnsetInterestFilter(id) }
}

// RegisterPrefix posts the registration command. No id is returned to
// the caller: the registered-prefix id is allocated inside the posted
// operation on the event goroutine and is only passed to
// onRegisterSuccess. Callbacks fire on the event goroutine.
func (t *ThreadsafeNode) RegisterPrefix(prefix *ndnname.Name, onInterest OnInterest, onRegisterFailed OnRegisterFailed, onRegisterSuccess OnRegisterSuccess, regOptions RegistrationOptions, keyChain security.KeyChain, certificateName *ndnname.Name) {
	t.dispatch <- func() {
		if _, err := t.inner.RegisterPrefix(prefix, onInterest, onRegisterFailed, onRegisterSuccess, regOptions, keyChain, certificateName); err != nil {
			t.inner.log.Warn("dispatched registerPrefix failed",
				zap.String("prefix", prefix.ToUri()), zap.Error(err))
			if onRegisterFailed != nil {
				t.inner.safeInvoke(func() { onRegisterFailed(prefix) })
			}
		}
	}
}

// RemoveRegisteredPrefix posts the removal.
func (t *ThreadsafeNode) RemoveRegisteredPrefix(id uint64) {
	t.dispatch <- func() { t.inner.RemoveRegisteredPrefix(id) }
}

// PutData posts the send.
func (t *ThreadsafeNode) PutData(data *packet.Data) {
	t.dispatch <- func() {
		if err := t.inner.PutData(data); err != nil {
			t.inner.log.Warn("dispatched putData failed",
				zap.String("name", data.Name().ToUri()), zap.Error(err))
		}
	}
}

// ProcessEvents drains the dispatch queue, then runs the inner Node's
// event processing. Must be called from a single goroutine.
func (t *ThreadsafeNode) ProcessEvents() error {
	for {
		select {
		case op := <-t.dispatch:
			op()
		default:
			return t.inner.ProcessEvents()
		}
	}
}
