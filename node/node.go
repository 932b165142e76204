// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package node implements the asynchronous dispatch engine at the heart
// of the client library: expressInterest, registerPrefix,
// setInterestFilter, putData, and the processEvents loop that feeds
// inbound elements to the pending-interest and interest-filter tables.
package node

import (
	"crypto/rand"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/named-data/ndn-go/command"
	"github.com/named-data/ndn-go/config"
	"github.com/named-data/ndn-go/ndnlog"
	"github.com/named-data/ndn-go/ndnname"
	"github.com/named-data/ndn-go/nodemetrics"
	"github.com/named-data/ndn-go/packet"
	"github.com/named-data/ndn-go/security"
	"github.com/named-data/ndn-go/table"
	"github.com/named-data/ndn-go/tlv"
	"github.com/named-data/ndn-go/transport"
)

// SizeExceededError reports an encoded packet over the size limit. No
// transport I/O is attempted.
type SizeExceededError struct {
	Size  int
	Limit int
}

func (e *SizeExceededError) Error() string {
	return fmt.Sprintf("node: encoded packet is %d bytes, over the %d limit", e.Size, e.Limit)
}

// connectState is the transport connection state machine.
type connectState int

const (
	stateUnconnected connectState = iota
	stateConnectRequested
	stateConnectComplete
)

// OnInterest is invoked for each incoming Interest passing a registered
// filter, with the Node itself as the face to answer on.
type OnInterest func(prefix *ndnname.Name, interest *packet.Interest, face *Node, filterID uint64, filter *table.InterestFilter)

// OnRegisterFailed is invoked if a prefix registration is refused by
// the forwarder or times out.
type OnRegisterFailed func(prefix *ndnname.Name)

// OnRegisterSuccess is invoked when the forwarder accepts a prefix
// registration.
type OnRegisterSuccess func(prefix *ndnname.Name, registeredPrefixID uint64)

// RegistrationOptions carries the NFD route flags of a registration.
type RegistrationOptions struct {
	ChildInherit bool
	Capture      bool
}

func (o RegistrationOptions) flags() uint64 {
	var f uint64
	if o.ChildInherit {
		f |= 1
	}
	if o.Capture {
		f |= 2
	}
	return f
}

// nfdRibRegisterPrefix is the NFD management command prefix a
// registration Interest is sent under.
var nfdRibRegisterPrefix = []string{"localhost", "nfd", "rib", "register"}

// Node drives one transport connection and owns the four tables.
// It is single-threaded cooperative: every table mutation and every
// callback happens on the goroutine that calls ProcessEvents (or, for
// public operations invoked before connecting, the calling goroutine).
// Use ThreadsafeNode when other goroutines must share one Node.
type Node struct {
	transport transport.Transport
	opts      config.Options
	log       ndnlog.Logger
	metrics   *nodemetrics.Metrics

	pit *table.PendingInterestTable
	ift *table.InterestFilterTable
	rpt *table.RegisteredPrefixTable
	dct *table.DelayedCallTable

	signer *command.Signer

	state           connectState
	onConnectedRuns []func()

	// lastEntryID is atomic so an id can be allocated off the event
	// goroutine before the mutation is dispatched onto it.
	lastEntryID atomic.Uint64

	nowOffset time.Duration
}

// Option configures a Node at construction.
type Option func(*Node)

// WithLogger sets the structured logger.
func WithLogger(l ndnlog.Logger) Option {
	return func(n *Node) { n.log = l }
}

// WithMetrics sets the metrics bundle.
func WithMetrics(m *nodemetrics.Metrics) Option {
	return func(n *Node) { n.metrics = m }
}

// WithOptions overrides the config defaults.
func WithOptions(o config.Options) Option {
	return func(n *Node) { n.opts = o }
}

// New builds a Node over t.
func New(t transport.Transport, options ...Option) *Node {
	n := &Node{
		transport: t,
		opts:      config.Default(),
		log:       ndnlog.NewNoOp(),
		pit:       table.NewPendingInterestTable(),
		ift:       table.NewInterestFilterTable(),
		rpt:       table.NewRegisteredPrefixTable(),
		dct:       table.NewDelayedCallTable(),
		signer:    command.NewSigner(),
	}
	for _, o := range options {
		o(n)
	}
	return n
}

// SetNowOffset adds a test-only offset to the Node's clock, shifting
// delayed-call firing and PIT expiry deterministically.
func (n *Node) SetNowOffset(d time.Duration) { n.nowOffset = d }

func (n *Node) now() time.Time { return time.Now().Add(n.nowOffset) }

// AllocateEntryID returns a fresh process-unique entry id. Safe to call
// from any goroutine.
func (n *Node) AllocateEntryID() uint64 { return n.lastEntryID.Add(1) }

// PendingInterestCount returns the PIT size.
func (n *Node) PendingInterestCount() int { return n.pit.Len() }

// ExpressInterest sends interest and arranges for exactly one of onData,
// onTimeout, or onNack to fire. It returns the pending-interest id for
// RemovePendingInterest. If the transport is not yet connected, the
// send is queued and the connection initiated; a connect failure is
// returned synchronously.
func (n *Node) ExpressInterest(interest *packet.Interest, onData table.OnData, onTimeout table.OnTimeout, onNack table.OnNetworkNack) (uint64, error) {
	if err := n.opts.WireFormat.Check(); err != nil {
		return 0, err
	}
	id := n.AllocateEntryID()
	if n.state == stateConnectComplete {
		return id, n.expressHelper(id, interest, onData, onTimeout, onNack)
	}
	n.onConnectedRuns = append(n.onConnectedRuns, func() {
		if err := n.expressHelper(id, interest, onData, onTimeout, onNack); err != nil {
			n.log.Warn("queued expressInterest failed", zap.String("name", interest.Name().ToUri()), zap.Error(err))
		}
	})
	if err := n.ensureConnected(); err != nil {
		return 0, err
	}
	return id, nil
}

// expressHelper does the connected-path work of ExpressInterest: stamp
// a fresh nonce, encode, enforce the size limit, insert the PIT entry,
// and schedule its timeout.
func (n *Node) expressHelper(id uint64, interest *packet.Interest, onData table.OnData, onTimeout table.OnTimeout, onNack table.OnNetworkNack) error {
	interest.SetNonce(randomNonce())
	encoded := interest.Encode()
	if encoded.Size() > n.opts.MaxPacketSize {
		return &SizeExceededError{Size: encoded.Size(), Limit: n.opts.MaxPacketSize}
	}

	now := n.now()
	if !n.pit.Add(id, interest, onData, onTimeout, onNack, now) {
		// A RemovePendingInterest raced ahead of us; don't send.
		return nil
	}
	n.dct.CallLater(now, interest.InterestLifetime(), func() {
		if n.pit.TimeoutIfPresent(id) && n.metrics != nil {
			n.metrics.TimedOutInterest.Inc()
		}
		n.updateTableGauges()
	})

	if err := n.transport.Send(encoded.Bytes()); err != nil {
		return err
	}
	if n.metrics != nil {
		n.metrics.ExpressedInterest.Inc()
	}
	n.updateTableGauges()
	return nil
}

// RemovePendingInterest cancels a pending Interest so none of its
// callbacks fire. Idempotent, and effective even if it races ahead of
// the queued insertion.
func (n *Node) RemovePendingInterest(id uint64) {
	n.pit.Remove(id)
	n.updateTableGauges()
}

// SetInterestFilter installs a purely local Interest filter and returns
// its id.
func (n *Node) SetInterestFilter(filter *table.InterestFilter, onInterest OnInterest) uint64 {
	id := n.AllocateEntryID()
	n.ift.Add(id, filter, n.wrapOnInterest(onInterest))
	n.updateTableGauges()
	return id
}

// UnsetInterestFilter removes a filter installed by SetInterestFilter.
func (n *Node) UnsetInterestFilter(id uint64) {
	n.ift.Remove(id)
	n.updateTableGauges()
}

// wrapOnInterest adapts the node-level callback (which receives the
// Node as the face to reply on) to the table-level callback shape.
func (n *Node) wrapOnInterest(onInterest OnInterest) table.OnInterestCallback {
	return func(prefix *ndnname.Name, interest *packet.Interest, filterID uint64, filter *table.InterestFilter) {
		onInterest(prefix, interest, n, filterID, filter)
	}
}

// RegisterPrefix asks the forwarder to route Interests under prefix to
// this face by sending a signed /localhost/nfd/rib/register command,
// and on success installs onInterest (if non-nil) as a local filter
// linked to the registration. Returns the registered-prefix id for
// RemoveRegisteredPrefix.
func (n *Node) RegisterPrefix(prefix *ndnname.Name, onInterest OnInterest, onRegisterFailed OnRegisterFailed, onRegisterSuccess OnRegisterSuccess, regOptions RegistrationOptions, keyChain security.KeyChain, certificateName *ndnname.Name) (uint64, error) {
	if err := n.opts.WireFormat.Check(); err != nil {
		return 0, err
	}
	registeredID := n.AllocateEntryID()
	filterID := uint64(0)
	if onInterest != nil {
		filterID = n.AllocateEntryID()
	}

	params := packet.NewControlParameters(prefix)
	params.Origin, params.HasOrigin = packet.RouteOriginApp, true
	if f := regOptions.flags(); f != 0 {
		params.Flags, params.HasFlags = f, true
	}

	cmdName := ndnname.New()
	for _, c := range nfdRibRegisterPrefix {
		cmdName.AppendString(c)
	}
	cmdName.Append(params.WireEncode())

	cmd := packet.NewInterest(cmdName)
	cmd.SetCanBePrefix(true)
	cmd.SetMustBeFresh(true)
	if err := n.signer.Sign(cmd, keyChain, security.SignWithCertificate(certificateName)); err != nil {
		return 0, err
	}

	reportFailed := func() {
		if onRegisterFailed != nil {
			n.safeInvoke(func() { onRegisterFailed(prefix) })
		}
	}
	onData := func(_ *packet.Interest, data *packet.Data) {
		response, err := packet.WireDecodeControlResponse(data.Content().Bytes())
		if err != nil {
			n.log.Warn("malformed register response", zap.String("prefix", prefix.ToUri()), zap.Error(err))
			reportFailed()
			return
		}
		if response.StatusCode != 200 {
			n.log.Warn("prefix registration refused",
				zap.String("prefix", prefix.ToUri()),
				zap.Uint64("status", response.StatusCode),
				zap.String("text", response.StatusText))
			reportFailed()
			return
		}
		if !n.rpt.Add(registeredID, prefix, filterID, onInterest != nil) {
			// Removed before the response arrived; don't install the
			// filter either.
			return
		}
		if onInterest != nil {
			n.ift.Add(filterID, table.NewInterestFilter(prefix), n.wrapOnInterest(onInterest))
		}
		n.updateTableGauges()
		n.log.Info("prefix registered", zap.String("prefix", prefix.ToUri()))
		if onRegisterSuccess != nil {
			n.safeInvoke(func() { onRegisterSuccess(prefix, registeredID) })
		}
	}
	onTimeout := func(*packet.Interest) {
		n.log.Warn("prefix registration timed out", zap.String("prefix", prefix.ToUri()))
		reportFailed()
	}

	if _, err := n.ExpressInterest(cmd, onData, onTimeout, nil); err != nil {
		return 0, err
	}
	return registeredID, nil
}

// RemoveRegisteredPrefix removes a registration, cascading to its
// related Interest filter. Effective even before the registration
// response has arrived.
func (n *Node) RemoveRegisteredPrefix(id uint64) {
	if entry, ok := n.rpt.Remove(id); ok && entry.HasRelatedFilter {
		n.ift.Remove(entry.RelatedFilterID)
	}
	n.updateTableGauges()
}

// PutData encodes and sends a Data packet, typically from an OnInterest
// callback.
func (n *Node) PutData(data *packet.Data) error {
	if err := n.opts.WireFormat.Check(); err != nil {
		return err
	}
	wire := data.WireEncoding()
	if wire.IsNull() {
		wire = data.Encode()
	}
	if wire.Size() > n.opts.MaxPacketSize {
		return &SizeExceededError{Size: wire.Size(), Limit: n.opts.MaxPacketSize}
	}
	if err := n.send(wire.Bytes()); err != nil {
		return err
	}
	if n.metrics != nil {
		n.metrics.PutData.Inc()
	}
	return nil
}

// Send forwards an already-encoded packet to the transport, enforcing
// the size limit.
func (n *Node) Send(element []byte) error {
	if len(element) > n.opts.MaxPacketSize {
		return &SizeExceededError{Size: len(element), Limit: n.opts.MaxPacketSize}
	}
	return n.send(element)
}

func (n *Node) send(element []byte) error {
	if n.state != stateConnectComplete {
		if err := n.ensureConnected(); err != nil {
			return err
		}
	}
	return n.transport.Send(element)
}

// ensureConnected drives Unconnected → ConnectRequested →
// ConnectComplete, flushing queued operations once the transport
// reports readiness.
func (n *Node) ensureConnected() error {
	switch n.state {
	case stateConnectComplete, stateConnectRequested:
		return nil
	}
	n.state = stateConnectRequested
	err := n.transport.Connect(n, func() {
		n.state = stateConnectComplete
		runs := n.onConnectedRuns
		n.onConnectedRuns = nil
		for _, run := range runs {
			run()
		}
	})
	if err != nil {
		n.state = stateUnconnected
		return err
	}
	return nil
}

// IsConnected reports whether the transport handshake has completed.
func (n *Node) IsConnected() bool { return n.state == stateConnectComplete }

// ProcessEvents polls the transport for inbound elements, dispatching
// each through OnReceivedElement, then fires due delayed calls
// (Interest timeouts). Call this repeatedly from the application's
// event loop.
func (n *Node) ProcessEvents() error {
	if n.state == stateConnectComplete {
		if err := n.transport.ProcessEvents(); err != nil {
			return err
		}
	}
	n.dct.Fire(n.now())
	return nil
}

// OnReceivedElement dispatches one whole inbound TLV element: Data to
// matching PIT entries, Interests to matching filters, and LP-wrapped
// Nacks to pending entries with a nack callback. Malformed elements are
// logged and discarded; decode errors never escape the event loop.
func (n *Node) OnReceivedElement(element []byte) {
	lp, err := packet.WireDecodeLpPacket(element)
	if err != nil {
		n.discard("undecodable element", err)
		return
	}
	fragment := lp.Fragment
	typ, err := peekType(fragment)
	if err != nil {
		n.discard("undecodable fragment", err)
		return
	}

	switch typ {
	case packet.TypeData:
		data, err := packet.WireDecodeData(fragment)
		if err != nil {
			n.discard("undecodable Data", err)
			return
		}
		if lp.HasIncomingFaceId {
			data.SetIncomingFaceId(lp.IncomingFaceId)
		}
		if lp.HasCongestion {
			data.SetCongestionMark(lp.CongestionMark)
		}
		satisfied := n.pit.MatchData(data)
		if n.metrics != nil {
			n.metrics.SatisfiedInterest.Add(float64(satisfied))
		}
	case packet.TypeInterest:
		interest, err := packet.WireDecodeInterest(fragment)
		if err != nil {
			n.discard("undecodable Interest", err)
			return
		}
		if lp.HasNack {
			nacked := n.pit.MatchNack(interest, lp.NackReason)
			if n.metrics != nil {
				n.metrics.NackedInterest.Add(float64(nacked))
			}
			break
		}
		for _, entry := range n.ift.Match(interest) {
			entry := entry
			n.safeInvoke(func() {
				entry.OnInterest(entry.Filter.Prefix(), interest, entry.ID, entry.Filter)
			})
		}
	default:
		n.discard("unexpected element type", fmt.Errorf("type %#x", typ))
		return
	}
	n.updateTableGauges()
}

// safeInvoke runs a user callback, logging and swallowing a panic so
// one bad handler can't stall the event loop.
func (n *Node) safeInvoke(f func()) {
	defer func() {
		if r := recover(); r != nil {
			n.log.Error("callback panicked", zap.Any("panic", r))
		}
	}()
	f()
}

func (n *Node) discard(msg string, err error) {
	n.log.Warn(msg, zap.Error(err))
	if n.metrics != nil {
		n.metrics.DecodeErrors.Inc()
	}
}

func (n *Node) updateTableGauges() {
	if n.metrics == nil {
		return
	}
	n.metrics.PITSize.Set(float64(n.pit.Len()))
	n.metrics.IFTSize.Set(float64(n.ift.Len()))
	n.metrics.RPTSize.Set(float64(n.rpt.Len()))
}

func peekType(buf []byte) (uint64, error) {
	return tlv.PeekType(buf, 0)
}

func randomNonce() uint32 {
	var b [4]byte
	_, _ = rand.Read(b[:])
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
