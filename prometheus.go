// prometheus.go: Prometheus implementation of MetricsCollector
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package strata

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusCollector implements MetricsCollector on Prometheus
// counters and histograms. Latency histograms are in nanoseconds so
// percentiles line up with the engine's own measurements.
//
// Safe for concurrent use; the underlying instruments are lock-free.
type PrometheusCollector struct {
	getLatency    prometheus.Histogram
	setLatency    prometheus.Histogram
	deleteLatency prometheus.Histogram
	hits          prometheus.Counter
	misses        prometheus.Counter
	evictions     prometheus.Counter
	expirations   prometheus.Counter
}

// NewPrometheusCollector registers strata metrics with reg and returns
// the collector. A nil reg uses prometheus.DefaultRegisterer.
//
// Metrics exposed:
//   - strata_get_latency_ns, strata_set_latency_ns, strata_delete_latency_ns
//   - strata_get_hits_total, strata_get_misses_total
//   - strata_evictions_total, strata_expirations_total
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	latencyBuckets := prometheus.ExponentialBuckets(100, 4, 10) // 100ns .. ~26ms

	return &PrometheusCollector{
		getLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "strata_get_latency_ns",
			Help:    "Latency of Get operations in nanoseconds",
			Buckets: latencyBuckets,
		}),
		setLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "strata_set_latency_ns",
			Help:    "Latency of Set operations in nanoseconds",
			Buckets: latencyBuckets,
		}),
		deleteLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "strata_delete_latency_ns",
			Help:    "Latency of Delete operations in nanoseconds",
			Buckets: latencyBuckets,
		}),
		hits: factory.NewCounter(prometheus.CounterOpts{
			Name: "strata_get_hits_total",
			Help: "Total number of cache hits",
		}),
		misses: factory.NewCounter(prometheus.CounterOpts{
			Name: "strata_get_misses_total",
			Help: "Total number of cache misses",
		}),
		evictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "strata_evictions_total",
			Help: "Total number of byte-budget evictions",
		}),
		expirations: factory.NewCounter(prometheus.CounterOpts{
			Name: "strata_expirations_total",
			Help: "Total number of TTL-based removals",
		}),
	}
}

// RecordGet implements MetricsCollector.
func (p *PrometheusCollector) RecordGet(latencyNs int64, hit bool) {
	p.getLatency.Observe(float64(latencyNs))
	if hit {
		p.hits.Inc()
	} else {
		p.misses.Inc()
	}
}

// RecordSet implements MetricsCollector.
func (p *PrometheusCollector) RecordSet(latencyNs int64) {
	p.setLatency.Observe(float64(latencyNs))
}

// RecordDelete implements MetricsCollector.
func (p *PrometheusCollector) RecordDelete(latencyNs int64) {
	p.deleteLatency.Observe(float64(latencyNs))
}

// RecordEviction implements MetricsCollector.
func (p *PrometheusCollector) RecordEviction() {
	p.evictions.Inc()
}

// RecordExpiration implements MetricsCollector.
func (p *PrometheusCollector) RecordExpiration() {
	p.expirations.Inc()
}
