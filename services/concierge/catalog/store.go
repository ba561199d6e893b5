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
	"errors"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound is returned by the ByID lookups when no record exists for the
// given identifier.
var ErrNotFound = errors.New("catalog: record not found")

// Store is the catalog backing store consumed by the retrieval engine.
//
// # Description
//
// The store is only assumed to index a single equality field (city) natively
// and to support a bulk "get up to N" scan without a filter. Every other
// filter (treatment tags, rating thresholds, price bounds) is applied
// in-process by the Engine. Passing an empty city requests the unfiltered
// bulk scan.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Clinics returns up to limit clinic records, optionally filtered by
	// exact city match. An empty city means no native filter.
	Clinics(ctx context.Context, city string, limit int) ([]Clinic, error)

	// Hotels returns up to limit hotel records, optionally filtered by
	// exact city match.
	Hotels(ctx context.Context, city string, limit int) ([]Hotel, error)

	// ClinicByID returns a single clinic or ErrNotFound.
	ClinicByID(ctx context.Context, id string) (*Clinic, error)

	// HotelByID returns a single hotel or ErrNotFound.
	HotelByID(ctx context.Context, id string) (*Hotel, error)
}

// =============================================================================
// MemoryStore
// =============================================================================

// MemoryStore is an in-memory Store used for tests and for running the
// service without a catalog backend (the original product's mock-API mode).
//
// # Thread Safety
//
// Safe for concurrent use. Records are copied on the way out.
type MemoryStore struct {
	mu      sync.RWMutex
	clinics []Clinic
	hotels  []Hotel
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// AddClinics appends clinic records to the store.
func (s *MemoryStore) AddClinics(clinics ...Clinic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clinics = append(s.clinics, clinics...)
}

// AddHotels appends hotel records to the store.
func (s *MemoryStore) AddHotels(hotels ...Hotel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hotels = append(s.hotels, hotels...)
}

// Clinics implements Store. The scan preserves insertion order so that the
// engine's stable rating sort has a deterministic tie-break.
func (s *MemoryStore) Clinics(ctx context.Context, city string, limit int) ([]Clinic, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Clinic, 0, limit)
	for _, c := range s.clinics {
		if city != "" && !strings.EqualFold(c.City, city) {
			continue
		}
		out = append(out, c)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Hotels implements Store.
func (s *MemoryStore) Hotels(ctx context.Context, city string, limit int) ([]Hotel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Hotel, 0, limit)
	for _, h := range s.hotels {
		if city != "" && !strings.EqualFold(h.City, city) {
			continue
		}
		out = append(out, h)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// ClinicByID implements Store.
func (s *MemoryStore) ClinicByID(ctx context.Context, id string) (*Clinic, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.clinics {
		if c.ID == id {
			cc := c
			return &cc, nil
		}
	}
	return nil, ErrNotFound
}

// HotelByID implements Store.
func (s *MemoryStore) HotelByID(ctx context.Context, id string) (*Hotel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, h := range s.hotels {
		if h.ID == id {
			hh := h
			return &hh, nil
		}
	}
	return nil, ErrNotFound
}

// Cities returns the distinct city names present in either collection,
// sorted. Used by debug handlers.
func (s *MemoryStore) Cities() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, c := range s.clinics {
		seen[c.City] = struct{}{}
	}
	for _, h := range s.hotels {
		seen[h.City] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for city := range seen {
		out = append(out, city)
	}
	sort.Strings(out)
	return out
}
