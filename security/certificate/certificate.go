// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package certificate implements the v2 NDN certificate: a Data packet
// named /<identity>/KEY/<key-id>/<issuer-id>/<version> whose content is
// a DER-encoded SubjectPublicKeyInfo and whose SignatureInfo carries a
// ValidityPeriod.
package certificate

import (
	"fmt"
	"time"

	"github.com/named-data/ndn-go/blob"
	"github.com/named-data/ndn-go/ndnname"
	"github.com/named-data/ndn-go/packet"
)

// KeyComponent is the "KEY" keyword marking the identity/key split in a
// certificate name.
var KeyComponent = ndnname.NewComponentFromString("KEY")

// MinCertificateNameLength is the fewest components a certificate name
// may have: KEY, key-id, issuer-id, version.
const MinCertificateNameLength = 4

// Certificate wraps a Data packet whose name, content type, and
// SignatureInfo satisfy the v2 certificate shape. Construction
// validates the shape; a Certificate in hand is always well-formed.
type Certificate struct {
	data *packet.Data
}

// FromData validates data's certificate shape and wraps it. The Data is
// shared, not copied; callers must not mutate it afterward.
func FromData(data *packet.Data) (*Certificate, error) {
	name := data.Name()
	if name.Size() < MinCertificateNameLength {
		return nil, fmt.Errorf("certificate: name %s has fewer than %d components", name, MinCertificateNameLength)
	}
	keyComp, _ := name.Get(-4)
	if !keyComp.Equals(KeyComponent) {
		return nil, fmt.Errorf("certificate: name %s lacks KEY at component %d", name, name.Size()-4)
	}
	if data.MetaInfo().ContentType() != packet.ContentTypeKey {
		return nil, fmt.Errorf("certificate: %s content type is not KEY", name)
	}
	if data.Signature().ValidityPeriodField() == nil {
		return nil, fmt.Errorf("certificate: %s SignatureInfo lacks a ValidityPeriod", name)
	}
	return &Certificate{data: data}, nil
}

// WireDecode parses an encoded Data packet and validates it as a
// certificate.
func WireDecode(buf []byte) (*Certificate, error) {
	data, err := packet.WireDecodeData(buf)
	if err != nil {
		return nil, err
	}
	return FromData(data)
}

// Data returns the underlying Data packet.
func (c *Certificate) Data() *packet.Data { return c.data }

// Name returns the full certificate name
// /<identity>/KEY/<key-id>/<issuer-id>/<version>.
func (c *Certificate) Name() *ndnname.Name { return c.data.Name() }

// KeyName returns the name prefix through <key-id>.
func (c *Certificate) KeyName() *ndnname.Name {
	return c.data.Name().GetPrefix(c.data.Name().Size() - 2)
}

// Identity returns the name prefix before KEY.
func (c *Certificate) Identity() *ndnname.Name {
	return c.data.Name().GetPrefix(c.data.Name().Size() - 4)
}

// KeyID returns the <key-id> component.
func (c *Certificate) KeyID() ndnname.Component {
	comp, _ := c.data.Name().Get(-3)
	return comp
}

// IssuerID returns the <issuer-id> component.
func (c *Certificate) IssuerID() ndnname.Component {
	comp, _ := c.data.Name().Get(-2)
	return comp
}

// PublicKeyBits returns the DER-encoded SubjectPublicKeyInfo.
func (c *Certificate) PublicKeyBits() blob.Blob { return c.data.Content() }

// ValidityPeriod returns the certificate's validity period.
func (c *Certificate) ValidityPeriod() *packet.ValidityPeriod {
	return c.data.Signature().ValidityPeriodField()
}

// IsValid reports whether t falls within the validity period.
func (c *Certificate) IsValid(t time.Time) bool {
	return c.ValidityPeriod().Covers(t)
}

// IsCertificateName reports whether name has the v2 certificate shape,
// without needing the packet.
func IsCertificateName(name *ndnname.Name) bool {
	if name.Size() < MinCertificateNameLength {
		return false
	}
	comp, _ := name.Get(-4)
	return comp.Equals(KeyComponent)
}

// ExtractKeyNameFromCertName returns the key name (prefix through
// <key-id>) of a full certificate name.
func ExtractKeyNameFromCertName(certName *ndnname.Name) (*ndnname.Name, error) {
	if !IsCertificateName(certName) {
		return nil, fmt.Errorf("certificate: %s is not a certificate name", certName)
	}
	return certName.GetPrefix(certName.Size() - 2), nil
}
