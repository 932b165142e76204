// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package validation

import (
	"time"

	"go.uber.org/zap"

	"github.com/named-data/ndn-go/config"
	"github.com/named-data/ndn-go/ndnlog"
	"github.com/named-data/ndn-go/nodemetrics"
	"github.com/named-data/ndn-go/packet"
	"github.com/named-data/ndn-go/security"
	"github.com/named-data/ndn-go/security/certificate"
	"github.com/named-data/ndn-go/security/storage"
)

// Validator drives a packet's certificate chain from its signer up to a
// trust anchor under a policy chain, then walks back down verifying
// every signature.
type Validator struct {
	policy   Policy
	fetcher  CertificateFetcher
	storage  *storage.CertificateStorage
	verifier Verifier
	maxDepth int

	log       ndnlog.Logger
	metrics   *nodemetrics.Metrics
	nowOffset time.Duration
}

// ValidatorOption configures a Validator at construction.
type ValidatorOption func(*Validator)

// WithValidatorLogger sets the structured logger.
func WithValidatorLogger(l ndnlog.Logger) ValidatorOption {
	return func(v *Validator) { v.log = l }
}

// WithValidatorMetrics sets the metrics bundle, feeding its
// validation-outcome counters.
func WithValidatorMetrics(m *nodemetrics.Metrics) ValidatorOption {
	return func(v *Validator) { v.metrics = m }
}

// WithMaxDepth overrides the chain depth limit.
func WithMaxDepth(depth int) ValidatorOption {
	return func(v *Validator) { v.maxDepth = depth }
}

// WithVerifier overrides the signature verifier.
func WithVerifier(verifier Verifier) ValidatorOption {
	return func(v *Validator) { v.verifier = verifier }
}

// WithStorage replaces the certificate storage, for callers sharing one
// store across validators.
func WithStorage(s *storage.CertificateStorage) ValidatorOption {
	return func(v *Validator) { v.storage = s }
}

// NewValidator builds a Validator over a policy chain and a fetcher.
func NewValidator(policy Policy, fetcher CertificateFetcher, options ...ValidatorOption) *Validator {
	opts := config.Default()
	v := &Validator{
		policy:   policy,
		fetcher:  fetcher,
		storage:  storage.NewCertificateStorage(opts.VerifiedCacheLifetime, opts.UnverifiedCacheLifetime),
		verifier: StdVerifier{},
		maxDepth: opts.MaxValidationDepth,
		log:      ndnlog.NewNoOp(),
	}
	for _, o := range options {
		o(v)
	}
	policy.SetValidator(v)
	return v
}

// Policy returns the root of the policy chain.
func (v *Validator) Policy() Policy { return v.policy }

// Storage returns the certificate storage.
func (v *Validator) Storage() *storage.CertificateStorage { return v.storage }

// MaxDepth returns the chain depth limit.
func (v *Validator) MaxDepth() int { return v.maxDepth }

// SetNowOffset adds a test-only offset to the validity clock.
func (v *Validator) SetNowOffset(d time.Duration) { v.nowOffset = d }

func (v *Validator) now() time.Time { return time.Now().Add(v.nowOffset) }

// Validate checks data under the policy chain, invoking exactly one of
// onSuccess or onFailure (possibly asynchronously, after certificate
// fetches).
func (v *Validator) Validate(data *packet.Data, onSuccess OnDataValidated, onFailure OnValidationFailed) {
	state := NewDataValidationState(data, onSuccess, v.observeFailure(onFailure))
	v.checkPolicy(state.Original(), state)
}

// ValidateInterest checks a signed Interest under the policy chain.
func (v *Validator) ValidateInterest(interest *packet.Interest, onSuccess OnInterestValidated, onFailure OnValidationFailed) {
	state := NewInterestValidationState(interest, onSuccess, v.observeFailure(onFailure))
	v.checkPolicy(state.Original(), state)
}

// observeFailure wraps the failure callback with logging and metrics.
func (v *Validator) observeFailure(onFailure OnValidationFailed) OnValidationFailed {
	return func(err *security.ValidationError) {
		v.log.Debug("validation failed", zap.String("code", err.Code.String()), zap.String("info", err.Info))
		if v.metrics != nil {
			v.metrics.ValidationOutcome.WithLabelValues(err.Code.String()).Inc()
		}
		if onFailure != nil {
			onFailure(err)
		}
	}
}

// checkPolicy runs the policy chain's root on info, handling the
// continuation.
func (v *Validator) checkPolicy(info PacketInfo, state *State) {
	v.policy.CheckPolicy(info, state, func(request *CertificateRequest, state *State) {
		if state.HasOutcome() {
			return
		}
		if request == nil {
			// Bypass: the policy vouches for the packet with no chain.
			v.succeed(state)
			return
		}
		v.requestCertificate(request, state)
	})
}

// requestCertificate resolves one certificate request: a trusted hit
// ends the climb and triggers the verification walk; an unverified hit
// or a fetch feeds the certificate back through the policy chain.
func (v *Validator) requestCertificate(request *CertificateRequest, state *State) {
	if state.Depth() >= v.maxDepth {
		state.Fail(security.NewValidationError(security.ErrorExceededDepthLimit,
			"chain depth reached %d", v.maxDepth))
		return
	}
	if state.hasSeenPrefix(request.Interest.Name()) {
		state.Fail(security.NewValidationError(security.ErrorLoopDetected,
			"certificate %s already in chain", request.Interest.Name()))
		return
	}

	if trusted := v.storage.FindTrustedCertificate(request.Interest); trusted != nil {
		v.verifyChain(trusted, state)
		return
	}
	if cached := v.storage.UnverifiedCache().FindByInterest(request.Interest); cached != nil {
		v.continueWithCertificate(cached, state)
		return
	}
	v.fetcher.Fetch(request,
		func(cert *certificate.Certificate) {
			v.storage.CacheUnverified(cert)
			v.continueWithCertificate(cert, state)
		},
		func(err *security.ValidationError) {
			state.Fail(err)
		})
}

// continueWithCertificate appends a fetched-or-cached certificate to
// the chain and validates it as the next packet under the same policy
// chain.
func (v *Validator) continueWithCertificate(cert *certificate.Certificate, state *State) {
	if !cert.IsValid(v.now()) {
		state.Fail(security.NewValidationError(security.ErrorExpiredCertificate,
			"%s is outside its validity period", cert.Name()))
		return
	}
	state.addCertificate(cert)
	v.checkPolicy(PacketInfo{Name: cert.Name(), Data: cert.Data()}, state)
}

// verifyChain walks from the trust anchor back toward the original
// packet, verifying each certificate with its parent's public key and
// finally the original packet with the chain's first certificate (or
// the anchor itself for a directly anchored packet). Verified
// certificates are promoted to the verified cache; a bad signature
// evicts the chain's unverified certificates.
func (v *Validator) verifyChain(trusted *certificate.Certificate, state *State) {
	now := v.now()
	if !trusted.IsValid(now) {
		state.Fail(security.NewValidationError(security.ErrorExpiredCertificate,
			"trust anchor %s is outside its validity period", trusted.Name()))
		return
	}

	chain := state.Chain()
	parent := trusted
	for i := len(chain) - 1; i >= 0; i-- {
		cert := chain[i]
		ok, err := v.verifyPacket(DataInfo(cert.Data()), parent.PublicKeyBits().Bytes())
		if err != nil || !ok {
			v.evictChain(chain)
			state.Fail(security.NewValidationError(security.ErrorInvalidSignature,
				"%s does not verify under %s", cert.Name(), parent.Name()))
			return
		}
		parent = cert
	}

	ok, err := v.verifyPacket(state.Original(), parent.PublicKeyBits().Bytes())
	if err != nil || !ok {
		v.evictChain(chain)
		state.Fail(security.NewValidationError(security.ErrorInvalidSignature,
			"%s does not verify under %s", state.Original().Name, parent.Name()))
		return
	}

	for _, cert := range chain {
		v.storage.CacheVerified(cert)
	}
	v.succeed(state)
}

// verifyPacket checks one packet's signature with publicKeyDer.
func (v *Validator) verifyPacket(info PacketInfo, publicKeyDer []byte) (bool, error) {
	signed, sig, sigType, err := signedPortionAndSignature(info)
	if err != nil {
		return false, err
	}
	if len(sig) == 0 {
		return false, nil
	}
	return v.verifier.Verify(signed, sig, publicKeyDer, sigType)
}

// evictChain removes a failed chain's certificates from the unverified
// cache so the next validation re-fetches rather than re-trusting them.
func (v *Validator) evictChain(chain []*certificate.Certificate) {
	for _, cert := range chain {
		v.storage.UnverifiedCache().Remove(cert.Name())
	}
}

func (v *Validator) succeed(state *State) {
	if v.metrics != nil {
		v.metrics.ValidationOutcome.WithLabelValues(security.ErrorNone.String()).Inc()
	}
	state.succeed()
}
