// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package validation

import (
	"github.com/named-data/ndn-go/ndnname"
	"github.com/named-data/ndn-go/packet"
	"github.com/named-data/ndn-go/security"
	"github.com/named-data/ndn-go/security/certificate"
)

// CertificateRequest asks the Validator to resolve one certificate by
// Interest.
type CertificateRequest struct {
	Interest *packet.Interest
}

// NewCertificateRequest builds the conventional certificate-fetch
// Interest for keyName: CanBePrefix so any issuer/version satisfies it,
// MustBeFresh so a stale cached version doesn't shadow a renewal.
func NewCertificateRequest(keyName *ndnname.Name) *CertificateRequest {
	interest := packet.NewInterest(keyName.Clone())
	interest.SetCanBePrefix(true)
	interest.SetMustBeFresh(true)
	return &CertificateRequest{Interest: interest}
}

// Continuation is how a policy reports its synchronous decision:
// continueValidation(nil, state) bypasses signature verification (no
// certificate needed); continueValidation(request, state) asks the
// Validator to resolve that certificate; calling state.Fail instead
// rejects the packet. Exactly one of the three must happen per
// CheckPolicy call.
type Continuation func(request *CertificateRequest, state *State)

// Policy decides, per packet, whether and how its signature must chain
// to a trust anchor. Policies form a chain through SetInnerPolicy; a
// wrapping policy (e.g. the command-interest policy) performs its own
// checks and then delegates to the inner one.
type Policy interface {
	// CheckPolicy synchronously decides bypass / need-cert / fail for
	// the packet, which may be the original Data or signed Interest or
	// a certificate fetched mid-chain.
	CheckPolicy(info PacketInfo, state *State, continueValidation Continuation)

	// SetInnerPolicy appends inner to the tail of the chain.
	SetInnerPolicy(inner Policy)

	// InnerPolicy returns the directly wrapped policy, or nil.
	InnerPolicy() Policy

	// SetValidator hands every policy in the chain a reference to its
	// owning Validator, letting a policy load trust anchors into it.
	SetValidator(v *Validator)
}

// PolicyBase supplies the chain plumbing policies embed.
type PolicyBase struct {
	inner     Policy
	validator *Validator
}

// SetInnerPolicy appends inner at the tail of the chain, never in the
// middle.
func (b *PolicyBase) SetInnerPolicy(inner Policy) {
	if b.inner != nil {
		b.inner.SetInnerPolicy(inner)
		return
	}
	b.inner = inner
	if b.validator != nil {
		inner.SetValidator(b.validator)
	}
}

// InnerPolicy returns the directly wrapped policy, or nil.
func (b *PolicyBase) InnerPolicy() Policy { return b.inner }

// SetValidator records the owning Validator and propagates it down the
// chain.
func (b *PolicyBase) SetValidator(v *Validator) {
	b.validator = v
	if b.inner != nil {
		b.inner.SetValidator(v)
	}
}

// Validator returns the owning Validator, once attached.
func (b *PolicyBase) Validator() *Validator { return b.validator }

// AcceptAllPolicy bypasses validation for every Data and Interest.
type AcceptAllPolicy struct {
	PolicyBase
}

// NewAcceptAllPolicy returns a policy that trusts everything.
func NewAcceptAllPolicy() *AcceptAllPolicy { return &AcceptAllPolicy{} }

// CheckPolicy always bypasses.
func (p *AcceptAllPolicy) CheckPolicy(_ PacketInfo, state *State, continueValidation Continuation) {
	continueValidation(nil, state)
}

// SimpleHierarchyPolicy requires the signing key's identity to be an
// ancestor of (a prefix of) the packet's name, the way a zone's key
// signs everything beneath it.
type SimpleHierarchyPolicy struct {
	PolicyBase
}

// NewSimpleHierarchyPolicy returns the hierarchy policy.
func NewSimpleHierarchyPolicy() *SimpleHierarchyPolicy { return &SimpleHierarchyPolicy{} }

// CheckPolicy extracts the KeyLocator key name and requires its
// identity prefix (the key name minus /KEY/<key-id>) to be a prefix of
// the packet name.
func (p *SimpleHierarchyPolicy) CheckPolicy(info PacketInfo, state *State, continueValidation Continuation) {
	keyName, verr := info.KeyLocatorName()
	if verr != nil {
		state.Fail(verr)
		return
	}
	identity := signingIdentityOf(keyName)
	if !identity.Match(info.Name) {
		state.Fail(security.NewValidationError(security.ErrorPolicyError,
			"signing identity %s is not an ancestor of %s", identity, info.Name))
		return
	}
	continueValidation(NewCertificateRequest(keyName), state)
}

// signingIdentityOf strips the /KEY/<key-id> suffix from a key name,
// tolerating KeyLocators that name the identity directly.
func signingIdentityOf(keyName *ndnname.Name) *ndnname.Name {
	if keyName.Size() >= 2 {
		if keyComp, err := keyName.Get(-2); err == nil && keyComp.Equals(certificate.KeyComponent) {
			return keyName.GetPrefix(keyName.Size() - 2)
		}
	}
	return keyName
}
