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
	"context"
	"errors"
	"testing"
	"time"
)

func turnAt(session, intent string, ts time.Time, entities map[string]string) Turn {
	return Turn{
		ID:        session + "-" + intent + "-" + ts.Format(time.RFC3339Nano),
		SessionID: session,
		Intent:    intent,
		Entities:  entities,
		Timestamp: ts,
	}
}

func TestIntentCountsSortedAndWindowed(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	for i := 0; i < 3; i++ {
		mustAppend(t, s, turnAt("s1", "search_clinic", now.Add(time.Duration(i)*time.Second), nil))
	}
	mustAppend(t, s, turnAt("s2", "search_hotel", now, nil))
	// Outside the window.
	mustAppend(t, s, turnAt("s3", "search_hotel", now.Add(-48*time.Hour), nil))
	// Unclassified turns never count.
	mustAppend(t, s, turnAt("s1", "", now, nil))

	got, err := s.IntentCounts(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("IntentCounts: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("rows = %d, want 2: %+v", len(got), got)
	}
	if got[0].Intent != "search_clinic" || got[0].Count != 3 {
		t.Errorf("top row = %+v, want search_clinic/3", got[0])
	}
	if got[1].Intent != "search_hotel" || got[1].Count != 1 {
		t.Errorf("second row = %+v, want search_hotel/1", got[1])
	}
}

func TestActiveSessionAndTurnCounts(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	mustAppend(t, s, turnAt("s1", "greet", now, nil))
	mustAppend(t, s, turnAt("s1", "search_clinic", now, nil))
	mustAppend(t, s, turnAt("s2", "greet", now, nil))
	mustAppend(t, s, turnAt("s3", "greet", now.Add(-48*time.Hour), nil))

	since := now.Add(-24 * time.Hour)
	sessions, err := s.ActiveSessionCount(ctx, since)
	if err != nil {
		t.Fatalf("ActiveSessionCount: %v", err)
	}
	if sessions != 2 {
		t.Errorf("active sessions = %d, want 2", sessions)
	}

	turns, err := s.TurnCount(ctx, since)
	if err != nil {
		t.Fatalf("TurnCount: %v", err)
	}
	if turns != 3 {
		t.Errorf("turns = %d, want 3", turns)
	}
}

func TestPopularSlotValues(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	mustAppend(t, s, turnAt("s1", "search_clinic", now, map[string]string{"city": "Antalya"}))
	mustAppend(t, s, turnAt("s2", "search_clinic", now, map[string]string{"city": "Antalya"}))
	mustAppend(t, s, turnAt("s3", "search_clinic", now, map[string]string{"city": "İstanbul"}))
	mustAppend(t, s, turnAt("s4", "search_hotel", now, map[string]string{"hotel_type": "resort"}))

	got, err := s.PopularSlotValues(ctx, "city", now.Add(-time.Hour), 10)
	if err != nil {
		t.Fatalf("PopularSlotValues: %v", err)
	}
	if len(got) != 2 || got[0].Value != "Antalya" || got[0].Count != 2 {
		t.Errorf("rows = %+v, want Antalya/2 first", got)
	}
}

func TestProfileUpsertMergesAndTracksTimes(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	if err := s.UpsertProfile(ctx, "s1", map[string]string{"city": "Antalya", "treatment": "implant"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	later := base.Add(time.Hour)
	s.now = func() time.Time { return later }
	if err := s.UpsertProfile(ctx, "s1", map[string]string{"city": "İstanbul", "budget": ""}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	p, err := s.Profile(ctx, "s1")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if p.Preferences["city"] != "İstanbul" || p.Preferences["treatment"] != "implant" {
		t.Errorf("preferences = %v", p.Preferences)
	}
	if _, ok := p.Preferences["budget"]; ok {
		t.Error("empty value must not create a preference")
	}
	if !p.CreatedAt.Equal(base) || !p.UpdatedAt.Equal(later) {
		t.Errorf("created=%v updated=%v", p.CreatedAt, p.UpdatedAt)
	}
}

func TestProfileNotFound(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.Profile(context.Background(), "nope"); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("err = %v, want ErrProfileNotFound", err)
	}
}

func mustAppend(t *testing.T, s *MemoryStore, turn Turn) {
	t.Helper()
	if err := s.AppendTurn(context.Background(), turn); err != nil {
		t.Fatalf("AppendTurn: %v", err)
	}
}
