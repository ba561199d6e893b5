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
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// FetchCap is the hard cap on raw records fetched from the store for one
// search, regardless of the caller's limit. The store only indexes city, so
// every other filter runs in-process over at most this many records.
const FetchCap = 100

// DefaultLimit is the result limit applied when the caller passes 0.
const DefaultLimit = 5

// ClinicQuery describes one clinic search. Zero-valued fields are unset.
type ClinicQuery struct {
	// Text is a free-text hint. Matched case-insensitively against name and
	// address when present.
	Text string

	// City filters natively at the store.
	City string

	// Treatment is matched as a case-insensitive substring against the
	// clinic's treatment tags.
	Treatment string

	// MinRating is an inclusive lower bound. 0 means no bound.
	MinRating float64

	// Limit truncates the result. 0 means DefaultLimit.
	Limit int
}

// HotelQuery describes one hotel search.
type HotelQuery struct {
	City      string
	HotelType string  // case-insensitive substring match on the hotel type
	MinRating float64 // inclusive lower bound, 0 = unset
	MaxPrice  float64 // inclusive upper bound on price per night, 0 = unset
	Limit     int
}

// Engine issues metadata-filtered catalog queries through the query cache,
// applies the secondary in-process filters, ranks and truncates.
//
// # Description
//
// A store-level failure (connection, timeout) is caught at this boundary and
// converted to an empty result: the caller treats "no results" and
// "retrieval failed" identically for response purposes. The failure is
// logged at warning level and counted separately so the two cases stay
// distinguishable operationally.
//
// # Thread Safety
//
// Safe for concurrent use. The caches are shared across all sessions.
type Engine struct {
	store       Store
	clinicCache *QueryCache[Clinic]
	hotelCache  *QueryCache[Hotel]
	logger      *slog.Logger
}

// NewEngine creates an Engine over the given store.
//
// # Inputs
//
//   - store: Catalog backing store. Must not be nil.
//   - cacheTTL: Query cache TTL. Pass 0 for the 60-second default.
//   - logger: Logger for degraded-path diagnostics. May be nil.
func NewEngine(store Store, cacheTTL time.Duration, logger *slog.Logger) *Engine {
	if store == nil {
		panic("catalog.NewEngine: store must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:       store,
		clinicCache: NewQueryCache[Clinic](cacheTTL),
		hotelCache:  NewQueryCache[Hotel](cacheTTL),
		logger:      logger,
	}
}

// SearchClinics runs one clinic search.
//
// # Description
//
// Algorithm: (1) native city filter at the store, capped at FetchCap raw
// records, memoized by the query cache; (2) in-process treatment substring,
// free-text and min-rating filters; (3) stable sort by rating descending
// (store order preserved on ties); (4) truncation to the limit.
//
// Never returns an error: store failures degrade to an empty slice.
func (e *Engine) SearchClinics(ctx context.Context, q ClinicQuery) []Clinic {
	start := time.Now()
	limit := normalizeLimit(q.Limit)

	raw, err := e.clinicCache.GetOrLoad("clinics", map[string]string{"city": q.City}, func() ([]Clinic, error) {
		return e.store.Clinics(ctx, q.City, FetchCap)
	})
	if err != nil {
		e.logger.Warn("clinic search degraded to empty result",
			slog.String("city", q.City),
			slog.String("error", err.Error()),
		)
		recordSearch("clinics", true, time.Since(start).Seconds())
		return []Clinic{}
	}

	matched := make([]Clinic, 0, limit)
	for _, c := range raw {
		if q.Treatment != "" && !containsFold(c.Treatments, q.Treatment) {
			continue
		}
		if q.Text != "" && !matchesClinicText(c, q.Text) {
			continue
		}
		if q.MinRating > 0 && c.Rating < q.MinRating {
			continue
		}
		matched = append(matched, c)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Rating > matched[j].Rating
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}

	recordSearch("clinics", false, time.Since(start).Seconds())
	return matched
}

// SearchHotels runs one hotel search. Same shape as SearchClinics with the
// hotel filter set (type substring, inclusive rating floor, inclusive price
// ceiling).
func (e *Engine) SearchHotels(ctx context.Context, q HotelQuery) []Hotel {
	start := time.Now()
	limit := normalizeLimit(q.Limit)

	raw, err := e.hotelCache.GetOrLoad("hotels", map[string]string{"city": q.City}, func() ([]Hotel, error) {
		return e.store.Hotels(ctx, q.City, FetchCap)
	})
	if err != nil {
		e.logger.Warn("hotel search degraded to empty result",
			slog.String("city", q.City),
			slog.String("error", err.Error()),
		)
		recordSearch("hotels", true, time.Since(start).Seconds())
		return []Hotel{}
	}

	matched := make([]Hotel, 0, limit)
	for _, h := range raw {
		if q.HotelType != "" && !strings.Contains(strings.ToLower(h.Type), strings.ToLower(q.HotelType)) {
			continue
		}
		if q.MinRating > 0 && h.Rating < q.MinRating {
			continue
		}
		if q.MaxPrice > 0 && h.PricePerNight > q.MaxPrice {
			continue
		}
		matched = append(matched, h)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Rating > matched[j].Rating
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}

	recordSearch("hotels", false, time.Since(start).Seconds())
	return matched
}

// ClinicByID looks a clinic up directly at the store, bypassing the cache.
func (e *Engine) ClinicByID(ctx context.Context, id string) (*Clinic, error) {
	return e.store.ClinicByID(ctx, id)
}

// HotelByID looks a hotel up directly at the store, bypassing the cache.
func (e *Engine) HotelByID(ctx context.Context, id string) (*Hotel, error) {
	return e.store.HotelByID(ctx, id)
}

// =============================================================================
// Helpers
// =============================================================================

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}

// containsFold reports whether any tag contains needle, case-insensitively.
func containsFold(tags []string, needle string) bool {
	needle = strings.ToLower(needle)
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// matchesClinicText reports whether the free-text hint appears in the
// clinic's name or address.
func matchesClinicText(c Clinic, text string) bool {
	text = strings.ToLower(text)
	return strings.Contains(strings.ToLower(c.Name), text) ||
		strings.Contains(strings.ToLower(c.Address), text)
}
