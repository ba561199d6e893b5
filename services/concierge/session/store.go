// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package session keeps per-conversation slot state: the string-valued
// facts a user has established so far (city, treatment, budget, ...) that
// later turns fall back to when the user omits them.
package session

import (
	"context"
	"sync"
)

// Slot names used by the dialogue layer. Values are free-form strings;
// the NLU normalizer canonicalizes them before they land here.
const (
	SlotTreatment   = "treatment"
	SlotCity        = "city"
	SlotRegion      = "region"
	SlotBudget      = "budget"
	SlotHotelClass  = "hotel_class"
	SlotFlightClass = "flight_class"
	SlotClinic      = "clinic"
	SlotDate        = "date"
)

// SlotMap is a snapshot of a session's slots. It is always a copy; mutating
// a returned SlotMap never affects stored state.
type SlotMap map[string]string

// Clone returns a shallow copy.
func (m SlotMap) Clone() SlotMap {
	out := make(SlotMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Store holds slot state keyed by session ID.
//
// # Description
//
// Get returns the current slots for a session, or an empty map for a session
// that has never been written (a session "exists" implicitly on first merge).
// Merge applies a shallow last-writer-wins union of the partial map onto the
// stored state atomically with respect to concurrent merges on the same
// session, and returns the post-merge snapshot. Empty-string values in the
// partial map are skipped so an absent extraction never clears a slot.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, sessionID string) (SlotMap, error)
	Merge(ctx context.Context, sessionID string, partial SlotMap) (SlotMap, error)
}

// =============================================================================
// MemoryStore
// =============================================================================

type sessionEntry struct {
	mu    sync.Mutex
	slots SlotMap
}

// MemoryStore is the in-process Store for single-node and test deployments.
// Each session owns its entry and mutex, so merges on different sessions
// never contend.
type MemoryStore struct {
	entries sync.Map // sessionID -> *sessionEntry
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) entry(sessionID string) *sessionEntry {
	if e, ok := s.entries.Load(sessionID); ok {
		return e.(*sessionEntry)
	}
	e, _ := s.entries.LoadOrStore(sessionID, &sessionEntry{slots: SlotMap{}})
	return e.(*sessionEntry)
}

// Get implements Store. Unknown sessions return an empty map, not an error.
func (s *MemoryStore) Get(_ context.Context, sessionID string) (SlotMap, error) {
	e, ok := s.entries.Load(sessionID)
	if !ok {
		return SlotMap{}, nil
	}
	entry := e.(*sessionEntry)
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.slots.Clone(), nil
}

// Merge implements Store.
func (s *MemoryStore) Merge(_ context.Context, sessionID string, partial SlotMap) (SlotMap, error) {
	entry := s.entry(sessionID)
	entry.mu.Lock()
	defer entry.mu.Unlock()
	for k, v := range partial {
		if v == "" {
			continue
		}
		entry.slots[k] = v
	}
	return entry.slots.Clone(), nil
}
