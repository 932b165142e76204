// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package packet

import (
	"github.com/named-data/ndn-go/blob"
	"github.com/named-data/ndn-go/ndnname"
	"github.com/named-data/ndn-go/tlv"
)

// Link is a Data packet whose Content is a DelegationSet: the standard
// way to publish a ForwardingHint's delegation list under a stable,
// cacheable name instead of inline in every Interest.
type Link struct {
	data        *Data
	delegations *DelegationSet
}

// NewLink returns a Link over name with an empty delegation set.
func NewLink(name *ndnname.Name) *Link {
	l := &Link{data: NewData(name), delegations: NewDelegationSet()}
	l.data.MetaInfo().SetContentType(ContentTypeLink)
	return l
}

// Name returns the Link's name.
func (l *Link) Name() *ndnname.Name { return l.data.Name() }

// Delegations returns the Link's delegation set. Mutating it requires
// calling SyncContent before Encode to re-serialize Content.
func (l *Link) Delegations() *DelegationSet { return l.delegations }

// Data returns the underlying Data packet, after syncing Content from
// the delegation set.
func (l *Link) Data() *Data {
	l.SyncContent()
	return l.data
}

// SyncContent re-encodes the delegation set into the underlying Data's
// Content.
func (l *Link) SyncContent() {
	buf := encodeDelegationsOnly(l.delegations)
	l.data.SetContent(blob.New(buf))
}

// WireDecodeLink parses an encoded Data packet and interprets its
// Content as a DelegationSet.
func WireDecodeLink(buf []byte) (*Link, error) {
	data, err := WireDecodeData(buf)
	if err != nil {
		return nil, err
	}
	delegations := NewDelegationSet()
	if err := delegations.WireDecode(data.Content().Bytes()); err != nil {
		return nil, err
	}
	return &Link{data: data, delegations: delegations}, nil
}

// encodeDelegationsOnly serializes a DelegationSet's Delegation TLVs
// without an enclosing header, matching what a Link's Content holds.
func encodeDelegationsOnly(d *DelegationSet) []byte {
	buf := tlv.NewBuffer(128)
	d.Encode(buf)
	return append([]byte(nil), buf.Bytes()...)
}
