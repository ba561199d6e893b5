// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package gen

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Prometheus Metrics for the Generation Layer
// =============================================================================

var (
	// generationsTotal counts generation calls by outcome. The outcome label
	// is "ok" for success or the ErrorKind string for failures.
	generationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "concierge",
		Subsystem: "gen",
		Name:      "requests_total",
		Help:      "Generation backend calls by outcome",
	}, []string{"outcome"})

	// generationLatencySeconds measures wall time of one generation call,
	// success or failure. Failures near the timeout bucket edge usually mean
	// the backend is overloaded rather than down.
	generationLatencySeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "concierge",
		Subsystem: "gen",
		Name:      "request_latency_seconds",
		Help:      "Generation backend call latency",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 90},
	}, []string{"outcome"})
)

func recordGeneration(kind string, elapsed time.Duration) {
	outcome := kind
	if outcome == "" {
		outcome = "ok"
	}
	generationsTotal.WithLabelValues(outcome).Inc()
	generationLatencySeconds.WithLabelValues(outcome).Observe(elapsed.Seconds())
}
