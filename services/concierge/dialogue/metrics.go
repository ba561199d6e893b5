// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package dialogue

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Prometheus Metrics for the Dialogue Layer
// =============================================================================

var (
	// turnsTotal counts completed turns by routed action.
	turnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "concierge",
		Subsystem: "dialogue",
		Name:      "turns_total",
		Help:      "Completed turns by action",
	}, []string{"action"})

	// turnLatencySeconds measures one whole turn including retrieval and
	// generation.
	turnLatencySeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "concierge",
		Subsystem: "dialogue",
		Name:      "turn_latency_seconds",
		Help:      "End-to-end turn latency by action",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 15, 30, 60, 90},
	}, []string{"action"})

	// fallbacksTotal counts turns that degraded to static text because the
	// generation backend failed.
	fallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "concierge",
		Subsystem: "dialogue",
		Name:      "fallbacks_total",
		Help:      "Static-fallback responses by action and failure kind",
	}, []string{"action", "kind"})
)

func recordTurn(action string, elapsed time.Duration) {
	turnsTotal.WithLabelValues(action).Inc()
	turnLatencySeconds.WithLabelValues(action).Observe(elapsed.Seconds())
}

func recordFallback(action, kind string) {
	fallbacksTotal.WithLabelValues(action, kind).Inc()
}
