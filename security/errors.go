// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package security holds the types shared across the certificate,
// storage, validation, and PIB subpackages: validation error codes, the
// KeyChain signing contract, and SigningInfo.
package security

import "fmt"

// ErrorCode is a typed validation failure reason, delivered to the
// failure callback exactly once per validation.
type ErrorCode int

const (
	ErrorNone ErrorCode = iota
	ErrorInvalidSignature
	ErrorNoSignature
	ErrorCannotRetrieveCertificate
	ErrorExpiredCertificate
	ErrorLoopDetected
	ErrorMalformedCertificate
	ErrorExceededDepthLimit
	ErrorInvalidKeyLocator
	ErrorPolicyError
	ErrorImplementationError

	// ErrorUserMin is the first code available to application-defined
	// policies.
	ErrorUserMin ErrorCode = 100
)

func (c ErrorCode) String() string {
	switch c {
	case ErrorNone:
		return "NO_ERROR"
	case ErrorInvalidSignature:
		return "INVALID_SIGNATURE"
	case ErrorNoSignature:
		return "NO_SIGNATURE"
	case ErrorCannotRetrieveCertificate:
		return "CANNOT_RETRIEVE_CERTIFICATE"
	case ErrorExpiredCertificate:
		return "EXPIRED_CERTIFICATE"
	case ErrorLoopDetected:
		return "LOOP_DETECTED"
	case ErrorMalformedCertificate:
		return "MALFORMED_CERTIFICATE"
	case ErrorExceededDepthLimit:
		return "EXCEEDED_DEPTH_LIMIT"
	case ErrorInvalidKeyLocator:
		return "INVALID_KEY_LOCATOR"
	case ErrorPolicyError:
		return "POLICY_ERROR"
	case ErrorImplementationError:
		return "IMPLEMENTATION_ERROR"
	default:
		return fmt.Sprintf("USER_%d", int(c))
	}
}

// ValidationError is the typed failure handed to a validation's failure
// callback.
type ValidationError struct {
	Code ErrorCode
	Info string
}

// NewValidationError builds a ValidationError with a formatted info
// string.
func NewValidationError(code ErrorCode, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Code: code, Info: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Info == "" {
		return "validation error: " + e.Code.String()
	}
	return "validation error: " + e.Code.String() + ": " + e.Info
}

// PibError reports a missing identity, key, or certificate in a PIB
// store.
type PibError struct {
	Msg string
}

func (e *PibError) Error() string { return "pib: " + e.Msg }

// NewPibError builds a PibError with a formatted message.
func NewPibError(format string, args ...interface{}) *PibError {
	return &PibError{Msg: fmt.Sprintf(format, args...)}
}

// InvalidArgumentError reports an illegal parameter, e.g. a nonpositive
// refresh period or a certificate inserted under a mismatched key name.
type InvalidArgumentError struct {
	Msg string
}

func (e *InvalidArgumentError) Error() string { return "invalid argument: " + e.Msg }

// NewInvalidArgumentError builds an InvalidArgumentError with a
// formatted message.
func NewInvalidArgumentError(format string, args ...interface{}) *InvalidArgumentError {
	return &InvalidArgumentError{Msg: fmt.Sprintf(format, args...)}
}
