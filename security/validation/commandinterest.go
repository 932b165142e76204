// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package validation

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/named-data/ndn-go/command"
	"github.com/named-data/ndn-go/security"
)

// CommandInterestOptions tunes the replay defense.
type CommandInterestOptions struct {
	// GracePeriod bounds how far a first-seen key's timestamp may
	// diverge from local now, in either direction.
	GracePeriod time.Duration
	// MaxRecords caps the per-key timestamp table. -1 means unbounded;
	// 0 disables the ordering check entirely.
	MaxRecords int
	// RecordLifetime is the age after which a key's record is
	// forgotten and its next command treated as initial again.
	RecordLifetime time.Duration
}

// DefaultCommandInterestOptions mirrors the conventional deployment
// values.
func DefaultCommandInterestOptions() CommandInterestOptions {
	return CommandInterestOptions{
		GracePeriod:    2 * time.Minute,
		MaxRecords:     1000,
		RecordLifetime: time.Hour,
	}
}

// unboundedRecords is the effective capacity for MaxRecords == -1.
const unboundedRecords = 1 << 20

type timestampRecord struct {
	lastTimestampMs uint64
	lastRefreshed   time.Time
}

// CommandInterestPolicy validates signed command Interests: it parses
// the four-component tail, enforces strictly increasing timestamps per
// signing key against a bounded LRU, and delegates the signature-shape
// decision to its inner policy. Data packets pass straight through to
// the inner policy.
//
// The ordering record is only committed once the whole validation
// (signature included) succeeds, so an attacker can't burn a victim's
// timestamp window with unsigned garbage.
type CommandInterestPolicy struct {
	PolicyBase
	opts      CommandInterestOptions
	records   *lru.Cache[string, *timestampRecord]
	nowOffset time.Duration
}

// NewCommandInterestPolicy wraps inner with the replay defense.
func NewCommandInterestPolicy(inner Policy, opts CommandInterestOptions) *CommandInterestPolicy {
	capacity := opts.MaxRecords
	if capacity == -1 {
		capacity = unboundedRecords
	}
	var records *lru.Cache[string, *timestampRecord]
	if capacity > 0 {
		records, _ = lru.New[string, *timestampRecord](capacity)
	}
	p := &CommandInterestPolicy{opts: opts, records: records}
	p.SetInnerPolicy(inner)
	return p
}

// SetNowOffset adds a test-only offset to the policy's clock.
func (p *CommandInterestPolicy) SetNowOffset(d time.Duration) { p.nowOffset = d }

func (p *CommandInterestPolicy) now() time.Time { return time.Now().Add(p.nowOffset) }

// CheckPolicy enforces the replay rules for Interests, then delegates
// to the inner policy for both Interests and Data (certificates fetched
// mid-chain arrive here as Data).
func (p *CommandInterestPolicy) CheckPolicy(info PacketInfo, state *State, continueValidation Continuation) {
	if info.IsInterest() {
		if !p.checkTimestamp(info, state) {
			return
		}
	}
	p.InnerPolicy().CheckPolicy(info, state, continueValidation)
}

// checkTimestamp applies the ordering rules, registering the record
// commit as a success hook. Reports false after failing the state.
func (p *CommandInterestPolicy) checkTimestamp(info PacketInfo, state *State) bool {
	tail, err := command.ParseTail(info.Interest)
	if err != nil {
		state.Fail(security.NewValidationError(security.ErrorPolicyError,
			"%s is not a command interest: %v", info.Name, err))
		return false
	}
	if p.records == nil {
		// MaxRecords == 0: ordering check disabled.
		return true
	}

	keyName, verr := info.KeyLocatorName()
	if verr != nil {
		state.Fail(verr)
		return false
	}
	key := keyName.ToUri()
	now := p.now()
	p.sweepExpired(now)

	record, known := p.records.Get(key)
	if known && now.Sub(record.lastRefreshed) > p.opts.RecordLifetime {
		// Expired record: treat this key as first-seen again.
		p.records.Remove(key)
		known = false
	}

	timestampMs := tail.TimestampMs
	if known {
		if timestampMs <= record.lastTimestampMs {
			state.Fail(security.NewValidationError(security.ErrorPolicyError,
				"timestamp %d for %s does not advance past %d", timestampMs, key, record.lastTimestampMs))
			return false
		}
	} else {
		distance := time.Duration(int64(timestampMs)-now.UnixMilli()) * time.Millisecond
		if distance < -p.opts.GracePeriod || distance > p.opts.GracePeriod {
			state.Fail(security.NewValidationError(security.ErrorPolicyError,
				"initial timestamp %d for %s is outside the grace period", timestampMs, key))
			return false
		}
	}

	state.AddSuccessCallback(func() {
		p.records.Add(key, &timestampRecord{lastTimestampMs: timestampMs, lastRefreshed: p.now()})
	})
	return true
}

// sweepExpired opportunistically drops records past their lifetime,
// oldest first, stopping at the first live one.
func (p *CommandInterestPolicy) sweepExpired(now time.Time) {
	for {
		key, record, ok := p.records.GetOldest()
		if !ok || now.Sub(record.lastRefreshed) <= p.opts.RecordLifetime {
			return
		}
		p.records.Remove(key)
	}
}
