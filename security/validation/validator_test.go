// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package validation

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/named-data/ndn-go/blob"
	"github.com/named-data/ndn-go/ndnname"
	"github.com/named-data/ndn-go/packet"
	"github.com/named-data/ndn-go/security"
	"github.com/named-data/ndn-go/security/certificate"
)

// alwaysFetchPolicy requests whatever certificate the packet's
// KeyLocator names, with no further constraint. Used to exercise the
// Validator's chain mechanics in isolation from policy decisions.
type alwaysFetchPolicy struct {
	PolicyBase
}

func (p *alwaysFetchPolicy) CheckPolicy(info PacketInfo, state *State, continueValidation Continuation) {
	keyName, verr := info.KeyLocatorName()
	if verr != nil {
		state.Fail(verr)
		return
	}
	continueValidation(NewCertificateRequest(keyName), state)
}

func validityWindow() (time.Time, time.Time) {
	now := time.Now()
	return now.Add(-time.Hour), now.Add(24 * time.Hour)
}

func TestAcceptAllBypassesWithoutFetching(t *testing.T) {
	fetcher := &mapFetcher{}
	v := NewValidator(NewAcceptAllPolicy(), fetcher)

	signer := newIdentity(t, "/any")
	var out outcome
	v.Validate(makeSignedData(t, "/any/data", signer), out.onDataSuccess, out.onFailure)
	out.requireSuccess(t)
	require.Equal(t, 0, fetcher.FetchCount)
}

func TestValidateWithoutAnchorsFails(t *testing.T) {
	v := NewValidator(NewSimpleHierarchyPolicy(), OfflineFetcher{})

	signer := newIdentity(t, "/A")
	var out outcome
	v.Validate(makeSignedData(t, "/A/data", signer), out.onDataSuccess, out.onFailure)
	out.requireFailure(t, security.ErrorCannotRetrieveCertificate)
}

func TestHierarchyChainValidates(t *testing.T) {
	notBefore, notAfter := validityWindow()

	root := newIdentity(t, "/A")
	site := newIdentity(t, "/A/S")
	anchorCert := issueCert(t, root, root, notBefore, notAfter)
	siteCert := issueCert(t, site, root, notBefore, notAfter)

	fetcher := &mapFetcher{}
	fetcher.add(siteCert)

	v := NewValidator(NewSimpleHierarchyPolicy(), fetcher)
	require.NoError(t, v.Storage().TrustAnchors().Insert("root", anchorCert))

	var out outcome
	v.Validate(makeSignedData(t, "/A/S/D", site), out.onDataSuccess, out.onFailure)
	out.requireSuccess(t)
	require.Equal(t, 1, fetcher.FetchCount)

	// The intermediate certificate was promoted to the verified cache,
	// so a second validation fetches nothing.
	require.NotNil(t, v.Storage().VerifiedCache().Get(siteCert.Name()))
	var again outcome
	v.Validate(makeSignedData(t, "/A/S/D2", site), again.onDataSuccess, again.onFailure)
	again.requireSuccess(t)
	require.Equal(t, 1, fetcher.FetchCount)
}

func TestHierarchyRejectsNonAncestorSigner(t *testing.T) {
	notBefore, notAfter := validityWindow()
	root := newIdentity(t, "/A")
	v := NewValidator(NewSimpleHierarchyPolicy(), OfflineFetcher{})
	require.NoError(t, v.Storage().TrustAnchors().Insert("root", issueCert(t, root, root, notBefore, notAfter)))

	// Data under /B signed by /A's key: the signer is not an ancestor.
	var out outcome
	v.Validate(makeSignedData(t, "/B/data", root), out.onDataSuccess, out.onFailure)
	out.requireFailure(t, security.ErrorPolicyError)
}

func TestDirectlyAnchoredDataValidates(t *testing.T) {
	notBefore, notAfter := validityWindow()
	root := newIdentity(t, "/A")
	v := NewValidator(NewSimpleHierarchyPolicy(), OfflineFetcher{})
	require.NoError(t, v.Storage().TrustAnchors().Insert("root", issueCert(t, root, root, notBefore, notAfter)))

	var out outcome
	v.Validate(makeSignedData(t, "/A/data", root), out.onDataSuccess, out.onFailure)
	out.requireSuccess(t)
}

func TestInvalidSignatureEvictsChain(t *testing.T) {
	notBefore, notAfter := validityWindow()
	root := newIdentity(t, "/A")
	site := newIdentity(t, "/A/S")
	v := NewValidator(NewSimpleHierarchyPolicy(), OfflineFetcher{})
	require.NoError(t, v.Storage().TrustAnchors().Insert("root", issueCert(t, root, root, notBefore, notAfter)))

	siteCert := issueCert(t, site, root, notBefore, notAfter)
	v.Storage().CacheUnverified(siteCert)

	// Data claiming the site's key but signed by a different key.
	imposter := newIdentity(t, "/A/S")
	d := packet.NewData(mustName(t, "/A/S/D"))
	d.SetContent(blob.FromString("content"))
	d.Signature().SetSignatureType(packet.SignatureTypeSha256WithEd25519)
	d.Signature().KeyLocator().SetKeyName(site.keyName)
	signData(t, d, imposter)

	var out outcome
	v.Validate(d, out.onDataSuccess, out.onFailure)
	out.requireFailure(t, security.ErrorInvalidSignature)

	// The chain's certificates were dropped from the unverified cache.
	require.Nil(t, v.Storage().UnverifiedCache().Get(siteCert.Name()))
}

func TestExpiredCertificateRejected(t *testing.T) {
	root := newIdentity(t, "/A")
	site := newIdentity(t, "/A/S")
	now := time.Now()

	v := NewValidator(NewSimpleHierarchyPolicy(), OfflineFetcher{})
	require.NoError(t, v.Storage().TrustAnchors().Insert("root",
		issueCert(t, root, root, now.Add(-time.Hour), now.Add(24*time.Hour))))

	// Not yet valid: the unverified cache keeps it (removal time is
	// min(notAfter, maxLifetime) in the future) but the chain walk
	// rejects it.
	expired := issueCert(t, site, root, now.Add(time.Hour), now.Add(2*time.Hour))
	v.Storage().CacheUnverified(expired)

	var out outcome
	v.Validate(makeSignedData(t, "/A/S/D", site), out.onDataSuccess, out.onFailure)
	out.requireFailure(t, security.ErrorExpiredCertificate)
}

func TestLoopDetection(t *testing.T) {
	notBefore, notAfter := validityWindow()
	a := newIdentity(t, "/A")
	b := newIdentity(t, "/B")

	// Cross-signed: A's certificate names B's key as signer and vice
	// versa, with no anchor covering either.
	v := NewValidator(&alwaysFetchPolicy{}, OfflineFetcher{})
	v.Storage().CacheUnverified(issueCert(t, a, b, notBefore, notAfter))
	v.Storage().CacheUnverified(issueCert(t, b, a, notBefore, notAfter))

	var out outcome
	v.Validate(makeSignedData(t, "/A/data", a), out.onDataSuccess, out.onFailure)
	out.requireFailure(t, security.ErrorLoopDetected)
}

func TestDepthLimitBoundsEndlessChains(t *testing.T) {
	notBefore, notAfter := validityWindow()
	const maxDepth = 5

	// A fetcher that answers every request with a certificate naming
	// yet another key as its signer, so the chain never terminates.
	fetcher := &endlessFetcher{t: t, notBefore: notBefore, notAfter: notAfter}
	v := NewValidator(&alwaysFetchPolicy{}, fetcher, WithMaxDepth(maxDepth))

	start := newIdentity(t, "/chain/0")
	var out outcome
	v.Validate(makeSignedData(t, "/chain/0/data", start), out.onDataSuccess, out.onFailure)
	out.requireFailure(t, security.ErrorExceededDepthLimit)
	require.Equal(t, maxDepth, fetcher.sent)
}

// endlessFetcher materializes one fresh certificate per request, each
// signed by the next key in an infinite series.
type endlessFetcher struct {
	t         *testing.T
	notBefore time.Time
	notAfter  time.Time
	sent      int
}

func (f *endlessFetcher) Fetch(request *CertificateRequest, onSuccess func(*certificate.Certificate), _ func(*security.ValidationError)) {
	f.sent++
	subjectKeyName := request.Interest.Name()
	subject := identityForKeyName(f.t, subjectKeyName)
	next := newIdentity(f.t, nextChainUri(f.sent))
	onSuccess(issueCert(f.t, subject, next, f.notBefore, f.notAfter))
}

func identityForKeyName(t *testing.T, keyName *ndnname.Name) *identity {
	return newIdentity(t, keyName.GetPrefix(keyName.Size()-2).ToUri())
}

func nextChainUri(i int) string {
	return fmt.Sprintf("/chain/%d", i)
}

func TestCommandInterestOrdering(t *testing.T) {
	notBefore, notAfter := validityWindow()
	op := newIdentity(t, "/A")
	keyChain := &edKeyChain{id: op}

	policy := NewCommandInterestPolicy(NewSimpleHierarchyPolicy(), CommandInterestOptions{
		GracePeriod:    2 * time.Minute,
		MaxRecords:     1000,
		RecordLifetime: 50 * time.Millisecond,
	})
	v := NewValidator(policy, OfflineFetcher{})
	require.NoError(t, v.Storage().TrustAnchors().Insert("root", issueCert(t, op, op, notBefore, notAfter)))

	sign := func(offset time.Duration) *packet.Interest {
		interest := packet.NewInterest(mustName(t, "/A/app/cmd"))
		signer := NewTestCommandSigner(offset)
		require.NoError(t, signer.Sign(interest, keyChain, security.SignWithKey(op.keyName)))
		return interest
	}

	i1 := sign(0)
	i2 := sign(5 * time.Millisecond)
	i3 := sign(-10 * time.Millisecond)

	var out1 outcome
	v.ValidateInterest(i1, out1.onInterestSuccess, out1.onFailure)
	out1.requireSuccess(t)

	var out2 outcome
	v.ValidateInterest(i2, out2.onInterestSuccess, out2.onFailure)
	out2.requireSuccess(t)

	// I3's timestamp precedes I2's committed record: replay-ordered out.
	var out3 outcome
	v.ValidateInterest(i3, out3.onInterestSuccess, out3.onFailure)
	out3.requireFailure(t, security.ErrorPolicyError)

	// Once the record's lifetime elapses, the key is first-seen again
	// and I3's timestamp is back inside the grace window.
	policy.SetNowOffset(100 * time.Millisecond)
	var out4 outcome
	v.ValidateInterest(i3, out4.onInterestSuccess, out4.onFailure)
	out4.requireSuccess(t)
}

func TestCommandInterestRecordCommitsOnlyOnSuccess(t *testing.T) {
	notBefore, notAfter := validityWindow()
	op := newIdentity(t, "/A")
	keyChain := &edKeyChain{id: op}

	policy := NewCommandInterestPolicy(NewSimpleHierarchyPolicy(), DefaultCommandInterestOptions())
	v := NewValidator(policy, OfflineFetcher{})
	require.NoError(t, v.Storage().TrustAnchors().Insert("root", issueCert(t, op, op, notBefore, notAfter)))

	// A command under an identity the hierarchy policy rejects: the
	// signature chain never validates, so no record is committed.
	bad := packet.NewInterest(mustName(t, "/other/cmd"))
	signer := NewTestCommandSigner(0)
	require.NoError(t, signer.Sign(bad, keyChain, security.SignWithKey(op.keyName)))
	var outBad outcome
	v.ValidateInterest(bad, outBad.onInterestSuccess, outBad.onFailure)
	outBad.requireFailure(t, security.ErrorPolicyError)

	// An older timestamp under the proper identity still passes,
	// proving the failed command left no record behind.
	older := packet.NewInterest(mustName(t, "/A/cmd"))
	signerPast := NewTestCommandSigner(-5 * time.Millisecond)
	require.NoError(t, signerPast.Sign(older, keyChain, security.SignWithKey(op.keyName)))
	var outOld outcome
	v.ValidateInterest(older, outOld.onInterestSuccess, outOld.onFailure)
	outOld.requireSuccess(t)
}

func TestConfigPolicyRules(t *testing.T) {
	notBefore, notAfter := validityWindow()
	root := newIdentity(t, "/A")
	site := newIdentity(t, "/A/S")

	cfg := &Config{
		Rules: []*ConfigRule{
			{
				ID:  "site-data",
				For: RuleForData,
				Filters: []*ConfigFilter{
					{Name: mustName(t, "/A/S"), Relation: RelationIsPrefixOf},
				},
				Checkers: []*ConfigChecker{
					{KeyName: mustName(t, "/A/S/KEY"), Relation: RelationIsPrefixOf},
				},
			},
		},
	}
	fetcher := &mapFetcher{}
	fetcher.add(issueCert(t, site, root, notBefore, notAfter))
	v := NewValidator(NewConfigPolicy(cfg), fetcher)
	require.NoError(t, v.Storage().TrustAnchors().Insert("root", issueCert(t, root, root, notBefore, notAfter)))

	// In-scope data signed by the permitted key: the data passes its
	// rule, but the fetched certificate's name also falls under that
	// rule, whose checker rejects the root key that signed it, so the
	// chain fails on it.
	var out outcome
	v.Validate(makeSignedData(t, "/A/S/D", site), out.onDataSuccess, out.onFailure)
	out.requireFailure(t, security.ErrorPolicyError)

	// With a rule covering certificate names (matched first, ahead of
	// site-data), the chain validates.
	keyNameRegex, err := newMatcher("^(<>*)<KEY>(<>*)$")
	require.NoError(t, err)
	certRule := &ConfigRule{
		ID:      "certs",
		For:     RuleForData,
		Filters: []*ConfigFilter{{Regex: keyNameRegex}},
		Checkers: []*ConfigChecker{
			{KeyName: mustName(t, "/A"), Relation: RelationIsPrefixOf},
		},
	}
	cfg.Rules = append([]*ConfigRule{certRule}, cfg.Rules...)
	var out2 outcome
	v.Validate(makeSignedData(t, "/A/S/D2", site), out2.onDataSuccess, out2.onFailure)
	out2.requireSuccess(t)

	// Out-of-scope data matches no rule.
	other := newIdentity(t, "/other")
	var out3 outcome
	v.Validate(makeSignedData(t, "/Z/D", other), out3.onDataSuccess, out3.onFailure)
	out3.requireFailure(t, security.ErrorPolicyError)
}

func TestConfigPolicyAnchorAnyBypasses(t *testing.T) {
	v := NewValidator(NewConfigPolicy(&Config{AnchorAny: true}), OfflineFetcher{})
	signer := newIdentity(t, "/x")
	var out outcome
	v.Validate(makeSignedData(t, "/x/d", signer), out.onDataSuccess, out.onFailure)
	out.requireSuccess(t)
}

func TestConfigPolicyHyperRelation(t *testing.T) {
	notBefore, notAfter := validityWindow()
	root := newIdentity(t, "/A")
	site := newIdentity(t, "/A/S")

	packetRegex, err := newMatcher("^(<>*)<>$")
	require.NoError(t, err)
	keyRegex, err := newMatcher("^(<>*)<KEY><>$")
	require.NoError(t, err)

	cfg := &Config{
		Rules: []*ConfigRule{
			{
				ID:  "hyper",
				For: RuleForData,
				Checkers: []*ConfigChecker{
					{Hyper: &HyperRelation{
						PacketRegex:     packetRegex,
						PacketExpansion: "\\1",
						KeyRegex:        keyRegex,
						KeyExpansion:    "\\1",
						Relation:        RelationIsPrefixOf,
					}},
				},
			},
		},
	}
	fetcher := &mapFetcher{}
	fetcher.add(issueCert(t, site, root, notBefore, notAfter))
	v := NewValidator(NewConfigPolicy(cfg), fetcher)
	require.NoError(t, v.Storage().TrustAnchors().Insert("root", issueCert(t, root, root, notBefore, notAfter)))

	// Key identity /A/S is a prefix of the data's parent /A/S.
	var out outcome
	v.Validate(makeSignedData(t, "/A/S/D", site), out.onDataSuccess, out.onFailure)
	out.requireSuccess(t)

	// Key identity /A/S is not a prefix of /B's parent.
	var out2 outcome
	v.Validate(makeSignedData(t, "/B/D", site), out2.onDataSuccess, out2.onFailure)
	out2.requireFailure(t, security.ErrorPolicyError)
}
