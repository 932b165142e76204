// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package validation implements the certificate-chain validator: the
// chainable validation policies, the per-validation state machine, the
// pluggable certificate fetcher, and the Validator that drives them.
package validation

import (
	"fmt"

	"github.com/named-data/ndn-go/command"
	"github.com/named-data/ndn-go/ndnname"
	"github.com/named-data/ndn-go/packet"
	"github.com/named-data/ndn-go/security"
	"github.com/named-data/ndn-go/security/certificate"
)

// PacketInfo is the flattened view of the thing being validated: the
// original Data or signed Interest, or a certificate fetched mid-chain
// (which is validated as a Data under the same policy chain).
type PacketInfo struct {
	Name     *ndnname.Name
	Data     *packet.Data
	Interest *packet.Interest
}

// IsInterest reports whether the packet is a signed Interest.
func (p PacketInfo) IsInterest() bool { return p.Interest != nil }

// DataInfo wraps a Data for validation.
func DataInfo(data *packet.Data) PacketInfo {
	return PacketInfo{Name: data.Name(), Data: data}
}

// InterestInfo wraps a signed Interest for validation.
func InterestInfo(interest *packet.Interest) PacketInfo {
	return PacketInfo{Name: interest.Name(), Interest: interest}
}

// KeyLocatorName extracts the KeyName form of the packet's KeyLocator:
// from the SignatureInfo for a Data, or from the SignatureInfo carried
// in the second-to-last name component for a signed Interest. A missing
// or non-KeyName KeyLocator is an INVALID_KEY_LOCATOR failure.
func (p PacketInfo) KeyLocatorName() (*ndnname.Name, *security.ValidationError) {
	var locator *packet.KeyLocator
	if p.IsInterest() {
		tail, err := command.ParseTail(p.Interest)
		if err != nil {
			return nil, security.NewValidationError(security.ErrorInvalidKeyLocator,
				"interest %s has no signed tail: %v", p.Name, err)
		}
		locator = tail.SignatureInfo.KeyLocator()
	} else {
		locator = p.Data.Signature().KeyLocator()
	}
	if locator == nil || locator.Kind() != packet.KeyLocatorKeyName {
		return nil, security.NewValidationError(security.ErrorInvalidKeyLocator,
			"%s has no KeyLocator key name", p.Name)
	}
	return locator.KeyName(), nil
}

// OnDataValidated reports a Data that passed validation.
type OnDataValidated func(data *packet.Data)

// OnInterestValidated reports a signed Interest that passed validation.
type OnInterestValidated func(interest *packet.Interest)

// OnValidationFailed reports the typed failure, exactly once per
// validation.
type OnValidationFailed func(err *security.ValidationError)

// State carries one validation through the policy chain and the
// certificate-chain walk. All methods are confined to the thread
// driving the Validator.
type State struct {
	original PacketInfo

	chain []*certificate.Certificate
	seen  []*ndnname.Name

	failed    bool
	succeeded bool

	// afterSuccess hooks run when the whole validation succeeds,
	// before the success callback; the command-interest policy uses
	// one to commit its replay record only for packets that fully
	// validated.
	afterSuccess []func()

	onDataSuccess     OnDataValidated
	onInterestSuccess OnInterestValidated
	onFailure         OnValidationFailed
}

// NewDataValidationState builds the state for validating data.
func NewDataValidationState(data *packet.Data, onSuccess OnDataValidated, onFailure OnValidationFailed) *State {
	return &State{
		original:      DataInfo(data),
		onDataSuccess: onSuccess,
		onFailure:     onFailure,
	}
}

// NewInterestValidationState builds the state for validating a signed
// Interest.
func NewInterestValidationState(interest *packet.Interest, onSuccess OnInterestValidated, onFailure OnValidationFailed) *State {
	return &State{
		original:          InterestInfo(interest),
		onInterestSuccess: onSuccess,
		onFailure:         onFailure,
	}
}

// Original returns the packet this validation started from.
func (s *State) Original() PacketInfo { return s.original }

// Depth returns the length of the accumulated certificate chain.
func (s *State) Depth() int { return len(s.chain) }

// Chain returns the accumulated certificates, signer of the original
// packet first.
func (s *State) Chain() []*certificate.Certificate { return s.chain }

// HasOutcome reports whether success or failure has already been
// delivered.
func (s *State) HasOutcome() bool { return s.failed || s.succeeded }

// Fail delivers err to the failure callback. Subsequent outcomes are
// ignored, preserving the exactly-once guarantee.
func (s *State) Fail(err *security.ValidationError) {
	if s.HasOutcome() {
		return
	}
	s.failed = true
	if s.onFailure != nil {
		s.onFailure(err)
	}
}

// AddSuccessCallback registers a hook run if the whole validation
// eventually succeeds.
func (s *State) AddSuccessCallback(f func()) {
	s.afterSuccess = append(s.afterSuccess, f)
}

// hasSeenPrefix reports whether a certificate whose name starts with
// keyName is already in the chain — the loop-detection test applied to
// each new certificate request.
func (s *State) hasSeenPrefix(keyName *ndnname.Name) bool {
	for _, name := range s.seen {
		if keyName.Match(name) {
			return true
		}
	}
	return false
}

// addCertificate appends cert to the chain, recording its name for loop
// detection.
func (s *State) addCertificate(cert *certificate.Certificate) {
	s.chain = append(s.chain, cert)
	s.seen = append(s.seen, cert.Name())
}

// succeed runs the registered hooks and the success callback.
func (s *State) succeed() {
	if s.HasOutcome() {
		return
	}
	s.succeeded = true
	for _, f := range s.afterSuccess {
		f()
	}
	if s.original.IsInterest() {
		if s.onInterestSuccess != nil {
			s.onInterestSuccess(s.original.Interest)
		}
		return
	}
	if s.onDataSuccess != nil {
		s.onDataSuccess(s.original.Data)
	}
}

// signedPortionAndSignature returns the byte range the packet's
// signature covers, the signature bits, and the signature type code.
func signedPortionAndSignature(info PacketInfo) (signed []byte, sig []byte, sigType int, err error) {
	if info.IsInterest() {
		tail, terr := command.ParseTail(info.Interest)
		if terr != nil {
			return nil, nil, 0, terr
		}
		return tail.SignedPortion, tail.SignatureBits, tail.SignatureInfo.SignatureType(), nil
	}
	wire := info.Data.WireEncoding()
	if wire.IsNull() {
		wire = info.Data.Encode()
	}
	signed = wire.SignedPortion()
	if signed == nil {
		return nil, nil, 0, fmt.Errorf("validation: %s has no signed portion", info.Name)
	}
	return signed, info.Data.Signature().SignatureValue().Bytes(), info.Data.Signature().SignatureType(), nil
}
