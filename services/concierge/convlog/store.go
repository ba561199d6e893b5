// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package convlog records completed conversation turns and per-session user
// profiles, and answers the aggregate analytics questions built on them.
// Recording is fire-and-forget from the dialogue layer's point of view; the
// store behind it is pluggable.
package convlog

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrProfileNotFound is returned by Profile for a session that has never
// had a profile upserted.
var ErrProfileNotFound = errors.New("convlog: profile not found")

// Turn is one completed exchange: what the user said, what the system
// understood, and what it answered.
type Turn struct {
	ID            string            `bson:"_id" json:"id"`
	SessionID     string            `bson:"session_id" json:"session_id"`
	UserText      string            `bson:"user_text" json:"user_text"`
	Intent        string            `bson:"intent" json:"intent"`
	Confidence    float64           `bson:"confidence" json:"confidence"`
	Entities      map[string]string `bson:"entities,omitempty" json:"entities,omitempty"`
	AssistantText string            `bson:"assistant_text" json:"assistant_text"`
	Action        string            `bson:"action" json:"action"`
	ElapsedMS     int64             `bson:"elapsed_ms" json:"elapsed_ms"`
	Timestamp     time.Time         `bson:"timestamp" json:"timestamp"`
}

// Profile accumulates a session's stated preferences across turns.
type Profile struct {
	SessionID   string            `bson:"_id" json:"session_id"`
	Preferences map[string]string `bson:"preferences" json:"preferences"`
	CreatedAt   time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time         `bson:"updated_at" json:"updated_at"`
}

// IntentCount is one row of the intent frequency report, most frequent first.
type IntentCount struct {
	Intent string `bson:"_id" json:"intent"`
	Count  int64  `bson:"count" json:"count"`
}

// SlotValueCount is one row of the popular-slot-values report.
type SlotValueCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// TurnStore persists turns and profiles and serves analytics over them.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use; AppendTurn and
// UpsertProfile are called from the logger's background worker while the
// analytics methods are called from request handlers.
type TurnStore interface {
	AppendTurn(ctx context.Context, t Turn) error
	UpsertProfile(ctx context.Context, sessionID string, preferences map[string]string) error
	Profile(ctx context.Context, sessionID string) (Profile, error)

	IntentCounts(ctx context.Context, since time.Time) ([]IntentCount, error)
	ActiveSessionCount(ctx context.Context, since time.Time) (int64, error)
	TurnCount(ctx context.Context, since time.Time) (int64, error)
	PopularSlotValues(ctx context.Context, slot string, since time.Time, limit int) ([]SlotValueCount, error)
}

// =============================================================================
// MemoryStore
// =============================================================================

// MemoryStore is the in-process TurnStore for single-node and test
// deployments. Turns are held in append order.
type MemoryStore struct {
	mu       sync.RWMutex
	turns    []Turn
	profiles map[string]Profile
	now      func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]Profile),
		now:      time.Now,
	}
}

// AppendTurn implements TurnStore.
func (s *MemoryStore) AppendTurn(_ context.Context, t Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, t)
	return nil
}

// UpsertProfile implements TurnStore. Preferences merge shallowly; existing
// keys absent from the update survive.
func (s *MemoryStore) UpsertProfile(_ context.Context, sessionID string, preferences map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	p, ok := s.profiles[sessionID]
	if !ok {
		p = Profile{SessionID: sessionID, Preferences: make(map[string]string), CreatedAt: now}
	}
	for k, v := range preferences {
		if v == "" {
			continue
		}
		p.Preferences[k] = v
	}
	p.UpdatedAt = now
	s.profiles[sessionID] = p
	return nil
}

// Profile implements TurnStore.
func (s *MemoryStore) Profile(_ context.Context, sessionID string) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[sessionID]
	if !ok {
		return Profile{}, ErrProfileNotFound
	}
	out := p
	out.Preferences = make(map[string]string, len(p.Preferences))
	for k, v := range p.Preferences {
		out.Preferences[k] = v
	}
	return out, nil
}

// IntentCounts implements TurnStore.
func (s *MemoryStore) IntentCounts(_ context.Context, since time.Time) ([]IntentCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int64)
	for _, t := range s.turns {
		if t.Timestamp.Before(since) || t.Intent == "" {
			continue
		}
		counts[t.Intent]++
	}

	out := make([]IntentCount, 0, len(counts))
	for intent, n := range counts {
		out = append(out, IntentCount{Intent: intent, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Intent < out[j].Intent
	})
	return out, nil
}

// ActiveSessionCount implements TurnStore.
func (s *MemoryStore) ActiveSessionCount(_ context.Context, since time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, t := range s.turns {
		if t.Timestamp.Before(since) {
			continue
		}
		seen[t.SessionID] = struct{}{}
	}
	return int64(len(seen)), nil
}

// TurnCount implements TurnStore.
func (s *MemoryStore) TurnCount(_ context.Context, since time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, t := range s.turns {
		if !t.Timestamp.Before(since) {
			n++
		}
	}
	return n, nil
}

// PopularSlotValues implements TurnStore.
func (s *MemoryStore) PopularSlotValues(_ context.Context, slot string, since time.Time, limit int) ([]SlotValueCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int64)
	for _, t := range s.turns {
		if t.Timestamp.Before(since) {
			continue
		}
		if v, ok := t.Entities[slot]; ok && v != "" {
			counts[v]++
		}
	}

	out := make([]SlotValueCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, SlotValueCount{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
