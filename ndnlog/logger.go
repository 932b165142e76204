// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ndnlog provides the structured logger used by Node, Validator,
// and CertificateStorage. It wraps go.uber.org/zap behind a small
// interface so tests and library consumers that don't care about
// logging can plug in a no-op implementation without pulling in zap's
// construction API.
package ndnlog

import "go.uber.org/zap"

// Logger is the structured-logging surface used throughout this module.
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	With(fields ...zap.Field) Logger
}

// zapLogger adapts *zap.Logger to Logger.
type zapLogger struct {
	l *zap.Logger
}

// New wraps an existing *zap.Logger.
func New(l *zap.Logger) Logger {
	return &zapLogger{l: l}
}

// NewProduction builds a Logger using zap's production defaults (JSON
// output, Info level).
func NewProduction() (Logger, error) {
	l, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return New(l), nil
}

func (z *zapLogger) Debug(msg string, fields ...zap.Field) { z.l.Debug(msg, fields...) }
func (z *zapLogger) Info(msg string, fields ...zap.Field)  { z.l.Info(msg, fields...) }
func (z *zapLogger) Warn(msg string, fields ...zap.Field)  { z.l.Warn(msg, fields...) }
func (z *zapLogger) Error(msg string, fields ...zap.Field) { z.l.Error(msg, fields...) }
func (z *zapLogger) With(fields ...zap.Field) Logger {
	return &zapLogger{l: z.l.With(fields...)}
}

// NoOp is a Logger that discards everything. Used as the default when a
// Node or Validator is constructed without an explicit logger, and by
// tests that don't want log noise.
type NoOp struct{}

// NewNoOp returns a Logger that discards all output.
func NewNoOp() Logger { return NoOp{} }

func (NoOp) Debug(string, ...zap.Field) {}
func (NoOp) Info(string, ...zap.Field)  {}
func (NoOp) Warn(string, ...zap.Field)  {}
func (NoOp) Error(string, ...zap.Field) {}
func (n NoOp) With(...zap.Field) Logger { return n }
