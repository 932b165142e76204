// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config carries the process-wide defaults the wire model and
// Node consult when a caller doesn't pass explicit options: the default
// wire format, the default CanBePrefix flag for newly built Interests,
// and the tunables for packet size, validation depth, command-interest
// replay defense, and certificate-cache lifetimes.
package config

import (
	"errors"
	"sync/atomic"
	"time"
)

// WireFormat selects a packet wire encoding. Only the TLV format is
// implemented; the legacy binary-XML format is kept as a stub for
// compatibility and every operation asked to use it fails with
// ErrNotImplemented.
type WireFormat int

const (
	// WireFormatTlv is the NDN Packet Format 0.3 TLV encoding.
	WireFormatTlv WireFormat = iota
	// WireFormatBinaryXml is the retired ndnx encoding. Unsupported.
	WireFormatBinaryXml
)

// ErrNotImplemented is returned for any operation under a wire format
// other than WireFormatTlv.
var ErrNotImplemented = errors.New("config: wire format not implemented")

// Check returns nil for the TLV format and ErrNotImplemented otherwise.
func (f WireFormat) Check() error {
	if f != WireFormatTlv {
		return ErrNotImplemented
	}
	return nil
}

// MaxPacketSize is the practical NDN packet size limit: an encoded
// Interest or Data larger than this fails before any transport I/O.
const MaxPacketSize = 8800

// Options is the explicit form of everything that was a global
// singleton in older NDN client libraries, passed at Node and Validator
// construction.
type Options struct {
	WireFormat         WireFormat
	DefaultCanBePrefix bool
	MaxPacketSize      int

	// Validator.
	MaxValidationDepth int

	// Command-interest replay defense.
	GracePeriod    time.Duration
	MaxRecords     int
	RecordLifetime time.Duration

	// Certificate caches.
	VerifiedCacheLifetime   time.Duration
	UnverifiedCacheLifetime time.Duration
}

// Default returns the stock option set.
func Default() Options {
	return Options{
		WireFormat:              DefaultWireFormat(),
		DefaultCanBePrefix:      DefaultCanBePrefix(),
		MaxPacketSize:           MaxPacketSize,
		MaxValidationDepth:      25,
		GracePeriod:             2 * time.Minute,
		MaxRecords:              1000,
		RecordLifetime:          time.Hour,
		VerifiedCacheLifetime:   time.Hour,
		UnverifiedCacheLifetime: 5 * time.Minute,
	}
}

// The package-level holders below preserve the "singleton feel" older
// applications expect, without any locking: both are atomics read once
// at Options construction.
var (
	defaultWireFormat  atomic.Int32
	defaultCanBePrefix atomic.Bool
)

// SetDefaultWireFormat sets the process-wide wire format used by
// Default().
func SetDefaultWireFormat(f WireFormat) {
	defaultWireFormat.Store(int32(f))
}

// DefaultWireFormat returns the process-wide wire format.
func DefaultWireFormat() WireFormat {
	return WireFormat(defaultWireFormat.Load())
}

// SetDefaultCanBePrefix sets the process-wide default for the
// CanBePrefix flag of newly constructed Interests. Applications that
// care should set it once at startup, before creating Interests.
func SetDefaultCanBePrefix(v bool) {
	defaultCanBePrefix.Store(v)
}

// DefaultCanBePrefix returns the process-wide CanBePrefix default.
func DefaultCanBePrefix() bool {
	return defaultCanBePrefix.Load()
}
