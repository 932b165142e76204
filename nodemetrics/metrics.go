// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package nodemetrics exposes the Node and Validator as Prometheus
// collectors: table sizes, dispatch counters, and validation outcomes.
package nodemetrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the collectors a Node registers with a
// prometheus.Registerer at construction time, following the same
// Registry/Register(collector) shape the rest of the pack uses for its
// own metrics wiring.
type Metrics struct {
	Registry prometheus.Registerer

	PITSize          prometheus.Gauge
	IFTSize          prometheus.Gauge
	RPTSize          prometheus.Gauge
	ExpressedInterest prometheus.Counter
	SatisfiedInterest prometheus.Counter
	TimedOutInterest  prometheus.Counter
	NackedInterest    prometheus.Counter
	PutData           prometheus.Counter
	DecodeErrors      prometheus.Counter
	ValidationOutcome *prometheus.CounterVec
}

// New creates and registers a Metrics bundle under reg. namespace is
// typically "ndn".
func New(reg prometheus.Registerer, namespace string) *Metrics {
	m := &Metrics{
		Registry: reg,
		PITSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "pit_size", Help: "Pending interest table size.",
		}),
		IFTSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "ift_size", Help: "Interest filter table size.",
		}),
		RPTSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "rpt_size", Help: "Registered prefix table size.",
		}),
		ExpressedInterest: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "interests_expressed_total", Help: "Interests expressed.",
		}),
		SatisfiedInterest: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "interests_satisfied_total", Help: "Interests satisfied by Data.",
		}),
		TimedOutInterest: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "interests_timed_out_total", Help: "Interests that timed out.",
		}),
		NackedInterest: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "interests_nacked_total", Help: "Interests that received a network nack.",
		}),
		PutData: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "data_put_total", Help: "Data packets sent.",
		}),
		DecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "decode_errors_total", Help: "Malformed inbound elements discarded.",
		}),
		ValidationOutcome: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "validation_outcomes_total", Help: "Validation results by error code.",
		}, []string{"code"}),
	}
	for _, c := range []prometheus.Collector{
		m.PITSize, m.IFTSize, m.RPTSize,
		m.ExpressedInterest, m.SatisfiedInterest, m.TimedOutInterest, m.NackedInterest,
		m.PutData, m.DecodeErrors, m.ValidationOutcome,
	} {
		_ = m.Registry.Register(c)
	}
	return m
}

// NewUnregistered builds a Metrics bundle backed by a private registry,
// for tests that don't want to touch the global default registerer.
func NewUnregistered() *Metrics {
	return New(prometheus.NewRegistry(), "ndn")
}
