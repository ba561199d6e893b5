// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Prometheus Metrics for the Retrieval Layer
// =============================================================================

var (
	// cacheLookupsTotal counts query-cache lookups by collection and outcome.
	// Labels: collection (clinics, hotels), outcome (hit, miss)
	cacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "concierge",
		Subsystem: "catalog",
		Name:      "cache_lookups_total",
		Help:      "Query cache lookups by collection and outcome",
	}, []string{"collection", "outcome"})

	// searchesTotal counts retrieval engine searches by collection and status.
	// Labels: collection, status (ok, store_error)
	searchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "concierge",
		Subsystem: "catalog",
		Name:      "searches_total",
		Help:      "Retrieval engine searches by collection and status",
	}, []string{"collection", "status"})

	// searchLatencySeconds measures end-to-end search latency including the
	// store fetch (or cache hit) and the in-process filter pass.
	// Labels: collection
	searchLatencySeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "concierge",
		Subsystem: "catalog",
		Name:      "search_latency_seconds",
		Help:      "Retrieval engine search latency",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
	}, []string{"collection"})
)

// recordCacheHit records a query-cache hit.
func recordCacheHit(collection string) {
	cacheLookupsTotal.WithLabelValues(collection, "hit").Inc()
}

// recordCacheMiss records a query-cache miss.
func recordCacheMiss(collection string) {
	cacheLookupsTotal.WithLabelValues(collection, "miss").Inc()
}

// recordSearch records a completed search.
func recordSearch(collection string, failed bool, durationSec float64) {
	status := "ok"
	if failed {
		status = "store_error"
	}
	searchesTotal.WithLabelValues(collection, status).Inc()
	searchLatencySeconds.WithLabelValues(collection).Observe(durationSec)
}
