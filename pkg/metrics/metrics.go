// Copyright 2025 Certen Protocol

// Package metrics exposes the mound daemon's Prometheus collectors:
// counters and histograms around issuance, consignment and
// consumption, registered on a private registry the same way the
// teacher's services register their own collectors rather than
// relying on the global default registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors bundles the counters and histograms the stockpile and
// mound packages report into. Callers increment/observe directly; a
// nil *Collectors (see NewNoop) makes every call a no-op so tests and
// offline tools don't need to wire Prometheus at all.
type Collectors struct {
	reg *prometheus.Registry

	ContractsIssued  prometheus.Counter
	OperationsApplied prometheus.Counter
	ConsignBytes     prometheus.Histogram
	ConsumeBytes     prometheus.Histogram
	ConsumeErrors    *prometheus.CounterVec
}

// New creates a fresh private registry with the standard collector
// set registered, matching the teacher's preference for
// prometheus.NewRegistry() over the global DefaultRegisterer so
// multiple mound instances in one process don't collide.
func New() *Collectors {
	reg := prometheus.NewRegistry()
	c := &Collectors{
		reg: reg,
		ContractsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rgb",
			Subsystem: "mound",
			Name:      "contracts_issued_total",
			Help:      "Number of contracts issued via Mound.Issue.",
		}),
		OperationsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rgb",
			Subsystem: "stockpile",
			Name:      "operations_applied_total",
			Help:      "Number of transitions applied to any stockpile.",
		}),
		ConsignBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rgb",
			Subsystem: "stockpile",
			Name:      "consign_bytes",
			Help:      "Size in bytes of streamed consignments.",
			Buckets:   prometheus.ExponentialBuckets(256, 4, 10),
		}),
		ConsumeBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rgb",
			Subsystem: "stockpile",
			Name:      "consume_bytes",
			Help:      "Size in bytes of consumed consignments.",
			Buckets:   prometheus.ExponentialBuckets(256, 4, 10),
		}),
		ConsumeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rgb",
			Subsystem: "mound",
			Name:      "consume_errors_total",
			Help:      "Consume failures by error kind (io, decode, merge, verify).",
		}, []string{"kind"}),
	}
	reg.MustRegister(c.ContractsIssued, c.OperationsApplied, c.ConsignBytes, c.ConsumeBytes, c.ConsumeErrors)
	return c
}

// Handler returns the HTTP handler the server package mounts at
// /metrics.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

// NewNoop returns a Collectors whose methods are all safe to call on a
// nil receiver, for callers (tests, offline CLI invocations) that
// don't want a Prometheus dependency in the loop.
func NewNoop() *Collectors { return nil }

func (c *Collectors) incContractsIssued() {
	if c == nil {
		return
	}
	c.ContractsIssued.Inc()
}

func (c *Collectors) incOperationsApplied() {
	if c == nil {
		return
	}
	c.OperationsApplied.Inc()
}

func (c *Collectors) observeConsign(n int) {
	if c == nil {
		return
	}
	c.ConsignBytes.Observe(float64(n))
}

func (c *Collectors) observeConsume(n int) {
	if c == nil {
		return
	}
	c.ConsumeBytes.Observe(float64(n))
}

func (c *Collectors) incConsumeError(kind string) {
	if c == nil {
		return
	}
	c.ConsumeErrors.WithLabelValues(kind).Inc()
}

// ContractIssued records a successful Mound.Issue call.
func (c *Collectors) ContractIssued() { c.incContractsIssued() }

// OperationApplied records a successful Stockpile.ApplyTransition call.
func (c *Collectors) OperationApplied() { c.incOperationsApplied() }

// ConsignWritten records the byte size of a Stockpile.Consign stream.
func (c *Collectors) ConsignWritten(n int) { c.observeConsign(n) }

// ConsumeRead records the byte size of a Stockpile.Consume stream and,
// when kind is non-empty, counts an error under kind ("io", "decode",
// "merge", "verify").
func (c *Collectors) ConsumeRead(n int, kind string) {
	c.observeConsume(n)
	if kind != "" {
		c.incConsumeError(kind)
	}
}
