// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package convlog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Prometheus Metrics for Conversation Logging
// =============================================================================

var (
	// turnsLoggedTotal counts what happened to each LogTurn call.
	// Labels: outcome (enqueued, dropped, write_error)
	turnsLoggedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "concierge",
		Subsystem: "convlog",
		Name:      "turns_total",
		Help:      "Conversation log records by outcome",
	}, []string{"outcome"})
)

func recordEnqueued()   { turnsLoggedTotal.WithLabelValues("enqueued").Inc() }
func recordDropped()    { turnsLoggedTotal.WithLabelValues("dropped").Inc() }
func recordWriteError() { turnsLoggedTotal.WithLabelValues("write_error").Inc() }
