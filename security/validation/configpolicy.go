// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package validation

import (
	"fmt"
	"time"

	"github.com/named-data/ndn-go/ndnname"
	"github.com/named-data/ndn-go/ndnregex"
	"github.com/named-data/ndn-go/security"
	"github.com/named-data/ndn-go/security/storage"
)

// Relation is a name relation used by config filters and checkers.
type Relation int

const (
	// RelationEqual requires the names to be identical.
	RelationEqual Relation = iota
	// RelationIsPrefixOf allows equality.
	RelationIsPrefixOf
	// RelationIsStrictPrefixOf forbids equality.
	RelationIsStrictPrefixOf
)

// checkRelation applies "a relation b".
func checkRelation(relation Relation, a, b *ndnname.Name) bool {
	switch relation {
	case RelationEqual:
		return a.Equals(b)
	case RelationIsPrefixOf:
		return a.Match(b)
	case RelationIsStrictPrefixOf:
		return a.Match(b) && a.Size() < b.Size()
	default:
		return false
	}
}

// RuleFor selects which packet kind a rule applies to.
type RuleFor int

const (
	// RuleForData applies to Data (certificates included).
	RuleForData RuleFor = iota
	// RuleForInterest applies to signed Interests.
	RuleForInterest
)

// ConfigFilter narrows which packets a rule matches, by name. Exactly
// one of (Name, Relation) or Regex is used.
type ConfigFilter struct {
	Name     *ndnname.Name
	Relation Relation
	Regex    *ndnregex.Matcher
}

func (f *ConfigFilter) matches(name *ndnname.Name) bool {
	if f.Regex != nil {
		return f.Regex.Match(name)
	}
	return checkRelation(f.Relation, f.Name, name)
}

// HyperRelation correlates the packet name and the key name through two
// regexes with back-substitution: each name is matched and expanded,
// and the derived key name must stand in Relation to the derived packet
// name.
type HyperRelation struct {
	PacketRegex     *ndnregex.Matcher
	PacketExpansion string
	KeyRegex        *ndnregex.Matcher
	KeyExpansion    string
	Relation        Relation
}

// ConfigChecker constrains the signing key given the packet name.
// Exactly one of (KeyName, Relation), KeyRegex, or Hyper is used.
type ConfigChecker struct {
	KeyName  *ndnname.Name
	Relation Relation
	KeyRegex *ndnregex.Matcher
	Hyper    *HyperRelation
}

func (c *ConfigChecker) check(packetName, keyName *ndnname.Name) bool {
	switch {
	case c.Hyper != nil:
		packetDerived, ok, err := c.Hyper.PacketRegex.MatchExpand(packetName, c.Hyper.PacketExpansion)
		if err != nil || !ok {
			return false
		}
		keyDerived, ok, err := c.Hyper.KeyRegex.MatchExpand(keyName, c.Hyper.KeyExpansion)
		if err != nil || !ok {
			return false
		}
		return checkRelation(c.Hyper.Relation, keyDerived, packetDerived)
	case c.KeyRegex != nil:
		return c.KeyRegex.Match(keyName)
	default:
		return checkRelation(c.Relation, c.KeyName, keyName)
	}
}

// ConfigRule is one ordered rule: the first rule whose kind matches and
// whose filters pass (or that has no filters) decides the packet.
type ConfigRule struct {
	ID       string
	For      RuleFor
	Filters  []*ConfigFilter
	Checkers []*ConfigChecker
}

func (r *ConfigRule) matchesName(name *ndnname.Name) bool {
	if len(r.Filters) == 0 {
		return true
	}
	for _, f := range r.Filters {
		if f.matches(name) {
			return true
		}
	}
	return false
}

// TrustAnchorSpec names a trust-anchor source from the config tree.
type TrustAnchorSpec struct {
	Path string
	// Refresh > 0 makes the anchor dynamic (re-read on change); zero
	// loads it once.
	Refresh time.Duration
}

// Config is the policy tree a configuration-file parser (an external
// collaborator) emits.
type Config struct {
	Rules        []*ConfigRule
	TrustAnchors []TrustAnchorSpec
	// AnchorAny short-circuits all validation to bypass, the
	// "trust-anchor any" escape hatch for closed test networks.
	AnchorAny bool
}

// ConfigPolicy validates packets against an ordered rule list from a
// configuration tree, loading the tree's trust anchors into the owning
// Validator when attached.
type ConfigPolicy struct {
	PolicyBase
	config *Config
}

// NewConfigPolicy builds the policy over an already-parsed config tree.
func NewConfigPolicy(config *Config) *ConfigPolicy {
	return &ConfigPolicy{config: config}
}

// SetValidator attaches the owning Validator and loads the config's
// trust anchors into its storage.
func (p *ConfigPolicy) SetValidator(v *Validator) {
	p.PolicyBase.SetValidator(v)
	for i, spec := range p.config.TrustAnchors {
		groupID := anchorGroupID(i)
		if spec.Refresh > 0 {
			if err := v.Storage().TrustAnchors().InsertDynamic(groupID, spec.Path, spec.Refresh); err != nil {
				v.log.Warn("loading dynamic trust anchor failed: " + err.Error())
			}
			continue
		}
		cert, err := storage.LoadCertificateFromFile(spec.Path)
		if err != nil {
			v.log.Warn("loading trust anchor failed: " + err.Error())
			continue
		}
		_ = v.Storage().TrustAnchors().Insert(groupID, cert)
	}
}

func anchorGroupID(i int) string {
	return fmt.Sprintf("config-anchors-%d", i)
}

// CheckPolicy finds the first applicable rule and requires one of its
// checkers to accept the packet's signing key.
func (p *ConfigPolicy) CheckPolicy(info PacketInfo, state *State, continueValidation Continuation) {
	if p.config.AnchorAny {
		continueValidation(nil, state)
		return
	}

	kind := RuleForData
	if info.IsInterest() {
		kind = RuleForInterest
	}
	var rule *ConfigRule
	for _, r := range p.config.Rules {
		if r.For == kind && r.matchesName(info.Name) {
			rule = r
			break
		}
	}
	if rule == nil {
		state.Fail(security.NewValidationError(security.ErrorPolicyError,
			"no rule matches %s", info.Name))
		return
	}

	keyName, verr := info.KeyLocatorName()
	if verr != nil {
		state.Fail(verr)
		return
	}
	for _, checker := range rule.Checkers {
		if checker.check(info.Name, keyName) {
			continueValidation(NewCertificateRequest(keyName), state)
			return
		}
	}
	state.Fail(security.NewValidationError(security.ErrorPolicyError,
		"rule %q rejects key %s for %s", rule.ID, keyName, info.Name))
}
