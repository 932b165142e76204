// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pib

import (
	"github.com/named-data/ndn-go/blob"
	"github.com/named-data/ndn-go/ndnname"
	"github.com/named-data/ndn-go/security"
	"github.com/named-data/ndn-go/security/certificate"
	"github.com/named-data/ndn-go/util/linked"
)

// Memory is the in-memory PIB: insertion-ordered maps keyed by name
// URI, no persistence. It is what a KeyChain test fixture or an
// ephemeral tool uses.
type Memory struct {
	identities      *linked.Hashmap[string, *ndnname.Name]
	defaultIdentity *ndnname.Name

	keys        *linked.Hashmap[string, *keyRecord]
	defaultKeys map[string]string // identity URI -> key URI

	certificates *linked.Hashmap[string, *certificate.Certificate]
	defaultCerts map[string]string // key URI -> cert URI
}

type keyRecord struct {
	identity *ndnname.Name
	keyName  *ndnname.Name
	keyBits  blob.Blob
}

// NewMemory returns an empty in-memory PIB.
func NewMemory() *Memory {
	return &Memory{
		identities:   linked.NewHashmap[string, *ndnname.Name](),
		keys:         linked.NewHashmap[string, *keyRecord](),
		defaultKeys:  make(map[string]string),
		certificates: linked.NewHashmap[string, *certificate.Certificate](),
		defaultCerts: make(map[string]string),
	}
}

var _ Impl = (*Memory)(nil)

// HasIdentity reports whether identity exists.
func (m *Memory) HasIdentity(identity *ndnname.Name) bool {
	return m.identities.Has(identity.ToUri())
}

// AddIdentity inserts identity if absent.
func (m *Memory) AddIdentity(identity *ndnname.Name) error {
	m.identities.Put(identity.ToUri(), identity.Clone())
	return nil
}

// RemoveIdentity deletes identity and everything under it.
func (m *Memory) RemoveIdentity(identity *ndnname.Name) error {
	uri := identity.ToUri()
	m.identities.Delete(uri)
	if m.defaultIdentity != nil && m.defaultIdentity.Equals(identity) {
		m.defaultIdentity = nil
	}
	var doomed []string
	m.keys.Iterate(func(keyURI string, record *keyRecord) bool {
		if record.identity.Equals(identity) {
			doomed = append(doomed, keyURI)
		}
		return true
	})
	for _, keyURI := range doomed {
		if record, ok := m.keys.Get(keyURI); ok {
			_ = m.RemoveKey(record.keyName)
		}
	}
	delete(m.defaultKeys, uri)
	return nil
}

// ClearIdentities empties the whole store.
func (m *Memory) ClearIdentities() error {
	m.identities.Clear()
	m.keys.Clear()
	m.certificates.Clear()
	m.defaultIdentity = nil
	m.defaultKeys = make(map[string]string)
	m.defaultCerts = make(map[string]string)
	return nil
}

// GetIdentities lists identities in insertion order.
func (m *Memory) GetIdentities() ([]*ndnname.Name, error) {
	var out []*ndnname.Name
	m.identities.Iterate(func(_ string, name *ndnname.Name) bool {
		out = append(out, name)
		return true
	})
	return out, nil
}

// SetDefaultIdentity marks identity as the default, inserting it if
// absent.
func (m *Memory) SetDefaultIdentity(identity *ndnname.Name) error {
	_ = m.AddIdentity(identity)
	m.defaultIdentity = identity.Clone()
	return nil
}

// GetDefaultIdentity returns the default identity.
func (m *Memory) GetDefaultIdentity() (*ndnname.Name, error) {
	if m.defaultIdentity == nil {
		return nil, security.NewPibError("no default identity")
	}
	return m.defaultIdentity, nil
}

// HasKey reports whether keyName exists.
func (m *Memory) HasKey(keyName *ndnname.Name) bool {
	return m.keys.Has(keyName.ToUri())
}

// AddKey inserts a key under identity, creating the identity if needed.
func (m *Memory) AddKey(identity *ndnname.Name, keyName *ndnname.Name, keyBits blob.Blob) error {
	_ = m.AddIdentity(identity)
	m.keys.Put(keyName.ToUri(), &keyRecord{
		identity: identity.Clone(),
		keyName:  keyName.Clone(),
		keyBits:  keyBits,
	})
	if _, ok := m.defaultKeys[identity.ToUri()]; !ok {
		m.defaultKeys[identity.ToUri()] = keyName.ToUri()
	}
	return nil
}

// RemoveKey deletes a key and its certificates.
func (m *Memory) RemoveKey(keyName *ndnname.Name) error {
	keyURI := keyName.ToUri()
	record, ok := m.keys.Get(keyURI)
	m.keys.Delete(keyURI)
	if ok {
		if m.defaultKeys[record.identity.ToUri()] == keyURI {
			delete(m.defaultKeys, record.identity.ToUri())
		}
	}
	var doomed []string
	m.certificates.Iterate(func(certURI string, cert *certificate.Certificate) bool {
		if cert.KeyName().Equals(keyName) {
			doomed = append(doomed, certURI)
		}
		return true
	})
	for _, certURI := range doomed {
		m.certificates.Delete(certURI)
	}
	delete(m.defaultCerts, keyURI)
	return nil
}

// GetKeyBits returns a key's encoded public key.
func (m *Memory) GetKeyBits(keyName *ndnname.Name) (blob.Blob, error) {
	record, ok := m.keys.Get(keyName.ToUri())
	if !ok {
		return blob.Blob{}, security.NewPibError("key %s not found", keyName)
	}
	return record.keyBits, nil
}

// GetKeysOfIdentity lists identity's key names in insertion order.
func (m *Memory) GetKeysOfIdentity(identity *ndnname.Name) ([]*ndnname.Name, error) {
	var out []*ndnname.Name
	m.keys.Iterate(func(_ string, record *keyRecord) bool {
		if record.identity.Equals(identity) {
			out = append(out, record.keyName)
		}
		return true
	})
	return out, nil
}

// SetDefaultKeyOfIdentity marks keyName as identity's default key.
func (m *Memory) SetDefaultKeyOfIdentity(identity, keyName *ndnname.Name) error {
	if !m.HasKey(keyName) {
		return security.NewPibError("key %s not found", keyName)
	}
	m.defaultKeys[identity.ToUri()] = keyName.ToUri()
	return nil
}

// GetDefaultKeyOfIdentity returns identity's default key name.
func (m *Memory) GetDefaultKeyOfIdentity(identity *ndnname.Name) (*ndnname.Name, error) {
	keyURI, ok := m.defaultKeys[identity.ToUri()]
	if !ok {
		return nil, security.NewPibError("no default key for %s", identity)
	}
	record, _ := m.keys.Get(keyURI)
	return record.keyName, nil
}

// HasCertificate reports whether certName exists.
func (m *Memory) HasCertificate(certName *ndnname.Name) bool {
	return m.certificates.Has(certName.ToUri())
}

// AddCertificate inserts cert, creating its key (with the certificate's
// public key bits) if absent.
func (m *Memory) AddCertificate(cert *certificate.Certificate) error {
	keyName := cert.KeyName()
	if !m.HasKey(keyName) {
		if err := m.AddKey(cert.Identity(), keyName, cert.PublicKeyBits()); err != nil {
			return err
		}
	}
	m.certificates.Put(cert.Name().ToUri(), cert)
	if _, ok := m.defaultCerts[keyName.ToUri()]; !ok {
		m.defaultCerts[keyName.ToUri()] = cert.Name().ToUri()
	}
	return nil
}

// RemoveCertificate deletes certName.
func (m *Memory) RemoveCertificate(certName *ndnname.Name) error {
	uri := certName.ToUri()
	if cert, ok := m.certificates.Get(uri); ok {
		if m.defaultCerts[cert.KeyName().ToUri()] == uri {
			delete(m.defaultCerts, cert.KeyName().ToUri())
		}
	}
	m.certificates.Delete(uri)
	return nil
}

// GetCertificate returns the certificate with exactly certName.
func (m *Memory) GetCertificate(certName *ndnname.Name) (*certificate.Certificate, error) {
	cert, ok := m.certificates.Get(certName.ToUri())
	if !ok {
		return nil, security.NewPibError("certificate %s not found", certName)
	}
	return cert, nil
}

// GetCertificatesOfKey lists the certificate names under keyName.
func (m *Memory) GetCertificatesOfKey(keyName *ndnname.Name) ([]*ndnname.Name, error) {
	var out []*ndnname.Name
	m.certificates.Iterate(func(_ string, cert *certificate.Certificate) bool {
		if cert.KeyName().Equals(keyName) {
			out = append(out, cert.Name())
		}
		return true
	})
	return out, nil
}

// SetDefaultCertificateOfKey marks certName as keyName's default.
func (m *Memory) SetDefaultCertificateOfKey(keyName, certName *ndnname.Name) error {
	if !m.HasCertificate(certName) {
		return security.NewPibError("certificate %s not found", certName)
	}
	m.defaultCerts[keyName.ToUri()] = certName.ToUri()
	return nil
}

// GetDefaultCertificateOfKey returns keyName's default certificate.
func (m *Memory) GetDefaultCertificateOfKey(keyName *ndnname.Name) (*certificate.Certificate, error) {
	certURI, ok := m.defaultCerts[keyName.ToUri()]
	if !ok {
		return nil, security.NewPibError("no default certificate for %s", keyName)
	}
	cert, _ := m.certificates.Get(certURI)
	return cert, nil
}
