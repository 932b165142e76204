// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package packet

import (
	"time"

	"github.com/named-data/ndn-go/ndnname"
	"github.com/named-data/ndn-go/tlv"
	"github.com/named-data/ndn-go/util"
)

// MetaInfo TLV type codes.
const (
	TypeMetaInfo        uint64 = 0x14
	TypeContentType     uint64 = 0x18
	TypeFreshnessPeriod uint64 = 0x19
	TypeFinalBlockId    uint64 = 0x1A
)

// Content type values.
const (
	ContentTypeBlob = 0
	ContentTypeLink = 1
	ContentTypeKey  = 2
	ContentTypeNack = 3
)

// MetaInfo carries a Data packet's content type, freshness period, and
// final block id.
type MetaInfo struct {
	util.ChangeCounter

	contentType       int
	hasFreshness      bool
	freshnessPeriod   time.Duration
	hasFinalBlockId   bool
	finalBlockId      ndnname.Component
}

// NewMetaInfo returns a MetaInfo with ContentType defaulted to Blob and
// no FreshnessPeriod or FinalBlockId.
func NewMetaInfo() *MetaInfo {
	return &MetaInfo{contentType: ContentTypeBlob}
}

// ContentType returns the content type code.
func (m *MetaInfo) ContentType() int { return m.contentType }

// SetContentType sets the content type code.
func (m *MetaInfo) SetContentType(t int) {
	m.contentType = t
	m.Changed()
}

// FreshnessPeriod returns the freshness period and whether one is set.
func (m *MetaInfo) FreshnessPeriod() (time.Duration, bool) {
	return m.freshnessPeriod, m.hasFreshness
}

// SetFreshnessPeriod sets the freshness period.
func (m *MetaInfo) SetFreshnessPeriod(d time.Duration) {
	m.freshnessPeriod = d
	m.hasFreshness = true
	m.Changed()
}

// ClearFreshnessPeriod removes the freshness period field.
func (m *MetaInfo) ClearFreshnessPeriod() {
	m.hasFreshness = false
	m.Changed()
}

// FinalBlockId returns the final block id component and whether one is
// set.
func (m *MetaInfo) FinalBlockId() (ndnname.Component, bool) {
	return m.finalBlockId, m.hasFinalBlockId
}

// SetFinalBlockId sets the final block id component.
func (m *MetaInfo) SetFinalBlockId(c ndnname.Component) {
	m.finalBlockId = c
	m.hasFinalBlockId = true
	m.Changed()
}

// ClearFinalBlockId removes the final block id field.
func (m *MetaInfo) ClearFinalBlockId() {
	m.hasFinalBlockId = false
	m.Changed()
}

// GetChangeCount implements util.Changeable.
func (m *MetaInfo) GetChangeCount() uint64 { return m.Count() }

// Encode prepends the MetaInfo TLV to buf.
func (m *MetaInfo) Encode(buf *tlv.Buffer) {
	tlv.PrependValueFunc(buf, TypeMetaInfo, func(buf *tlv.Buffer) {
		if m.hasFinalBlockId {
			tlv.PrependValueFunc(buf, TypeFinalBlockId, func(buf *tlv.Buffer) {
				tlv.PrependValue(buf, m.finalBlockId.Type(), m.finalBlockId.Value())
			})
		}
		if m.hasFreshness {
			tlv.PrependNonNegativeIntegerTlv(buf, TypeFreshnessPeriod, uint64(m.freshnessPeriod/time.Millisecond))
		}
		if m.contentType != ContentTypeBlob {
			tlv.PrependNonNegativeIntegerTlv(buf, TypeContentType, uint64(m.contentType))
		}
	})
}

// DecodeValue parses the value portion of a MetaInfo TLV.
func (m *MetaInfo) DecodeValue(value []byte) error {
	*m = MetaInfo{contentType: ContentTypeBlob}
	blocks, err := tlv.DecodeAll(value)
	if err != nil {
		return err
	}
	for _, b := range blocks {
		switch b.Type {
		case TypeContentType:
			v, err := tlv.DecodeNonNegativeInteger(b.Value)
			if err != nil {
				return err
			}
			m.contentType = int(v)
		case TypeFreshnessPeriod:
			v, err := tlv.DecodeNonNegativeInteger(b.Value)
			if err != nil {
				return err
			}
			m.freshnessPeriod = time.Duration(v) * time.Millisecond
			m.hasFreshness = true
		case TypeFinalBlockId:
			blocks, err := tlv.DecodeAll(b.Value)
			if err != nil || len(blocks) == 0 {
				continue
			}
			c, err := ndnname.NewTypedComponent(blocks[0].Type, blocks[0].Value)
			if err != nil {
				return err
			}
			m.finalBlockId = c
			m.hasFinalBlockId = true
		}
	}
	m.Changed()
	return nil
}
