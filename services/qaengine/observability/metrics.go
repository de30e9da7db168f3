// Copyright (C) 2025 CaseForge Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides Prometheus metrics for the QA engine.
//
// # Description
//
// Metrics cover the generation pipeline end to end:
//   - Request counters by outcome (success, timeout, transport, upstream,
//     parse, internal)
//   - Attempt and repair counters for the retry loop
//   - Duration histogram for full pipeline latency
//   - Quality-score histogram for generated sets
//
// Metrics are exposed via the /metrics endpoint. All operations are
// thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "caseforge"

const generationSubsystem = "generation"

// GenerationMetrics holds all Prometheus metrics for the generation pipeline.
// Initialize once at startup via InitMetrics.
type GenerationMetrics struct {
	// GenerationsTotal counts completed generation requests.
	// Labels: status (success, timeout, transport, upstream, parse, internal)
	GenerationsTotal *prometheus.CounterVec

	// AttemptsTotal counts individual LLM generation attempts, including
	// the ones that ended in a retry.
	AttemptsTotal prometheus.Counter

	// RepairsTotal counts responses that needed truncation repair before
	// they parsed.
	RepairsTotal prometheus.Counter

	// DurationSeconds measures full pipeline latency per request.
	// Labels: status
	DurationSeconds *prometheus.HistogramVec

	// QualityScore observes the aggregate quality score of successful
	// generations.
	QualityScore prometheus.Histogram
}

// DefaultMetrics is the singleton instance, set by InitMetrics.
var DefaultMetrics *GenerationMetrics

// Outcome is a categorized request outcome for metrics labeling.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeTimeout   Outcome = "timeout"
	OutcomeTransport Outcome = "transport"
	OutcomeUpstream  Outcome = "upstream"
	OutcomeParse     Outcome = "parse"
	OutcomeInternal  Outcome = "internal"
)

// InitMetrics creates and registers all pipeline metrics. Call once at
// application startup; a second call panics on duplicate registration.
func InitMetrics() *GenerationMetrics {
	DefaultMetrics = &GenerationMetrics{
		GenerationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: generationSubsystem,
				Name:      "requests_total",
				Help:      "Total generation requests by outcome",
			},
			[]string{"status"},
		),

		AttemptsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: generationSubsystem,
				Name:      "attempts_total",
				Help:      "Total LLM generation attempts including retries",
			},
		),

		RepairsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: generationSubsystem,
				Name:      "repairs_total",
				Help:      "Total responses that required truncation repair",
			},
		),

		DurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: generationSubsystem,
				Name:      "duration_seconds",
				Help:      "Full pipeline duration per request in seconds",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
			},
			[]string{"status"},
		),

		QualityScore: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: generationSubsystem,
				Name:      "quality_score",
				Help:      "Aggregate quality score of successful generations",
				Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
			},
		),
	}

	return DefaultMetrics
}

// RecordGeneration records a completed request and its duration.
func (m *GenerationMetrics) RecordGeneration(outcome Outcome, seconds float64) {
	m.GenerationsTotal.WithLabelValues(string(outcome)).Inc()
	m.DurationSeconds.WithLabelValues(string(outcome)).Observe(seconds)
}

// RecordAttempt records one LLM generation attempt.
func (m *GenerationMetrics) RecordAttempt() {
	m.AttemptsTotal.Inc()
}

// RecordRepair records a response that needed truncation repair.
func (m *GenerationMetrics) RecordRepair() {
	m.RepairsTotal.Inc()
}

// ObserveQuality records the quality score of a successful generation.
func (m *GenerationMetrics) ObserveQuality(score float64) {
	m.QualityScore.Observe(score)
}
