// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package pib defines the Public Information Base storage contract a
// KeyChain persists identities, keys, and certificates in, plus an
// in-memory implementation. Durable backends (SQLite and friends) are
// external collaborators implementing the same interface.
package pib

import (
	"github.com/named-data/ndn-go/blob"
	"github.com/named-data/ndn-go/ndnname"
	"github.com/named-data/ndn-go/security/certificate"
)

// Impl is the abstract PIB storage interface. Implementations report
// missing identities/keys/certificates with *security.PibError.
type Impl interface {
	// Identities.
	HasIdentity(identity *ndnname.Name) bool
	AddIdentity(identity *ndnname.Name) error
	RemoveIdentity(identity *ndnname.Name) error
	ClearIdentities() error
	GetIdentities() ([]*ndnname.Name, error)
	SetDefaultIdentity(identity *ndnname.Name) error
	GetDefaultIdentity() (*ndnname.Name, error)

	// Keys.
	HasKey(keyName *ndnname.Name) bool
	AddKey(identity *ndnname.Name, keyName *ndnname.Name, keyBits blob.Blob) error
	RemoveKey(keyName *ndnname.Name) error
	GetKeyBits(keyName *ndnname.Name) (blob.Blob, error)
	GetKeysOfIdentity(identity *ndnname.Name) ([]*ndnname.Name, error)
	SetDefaultKeyOfIdentity(identity, keyName *ndnname.Name) error
	GetDefaultKeyOfIdentity(identity *ndnname.Name) (*ndnname.Name, error)

	// Certificates.
	HasCertificate(certName *ndnname.Name) bool
	AddCertificate(cert *certificate.Certificate) error
	RemoveCertificate(certName *ndnname.Name) error
	GetCertificate(certName *ndnname.Name) (*certificate.Certificate, error)
	GetCertificatesOfKey(keyName *ndnname.Name) ([]*ndnname.Name, error)
	SetDefaultCertificateOfKey(keyName, certName *ndnname.Name) error
	GetDefaultCertificateOfKey(keyName *ndnname.Name) (*certificate.Certificate, error)
}
