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
	"sync"
	"testing"
	"time"
)

func TestLoggerRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	l := NewLogger(store, 16, nil)

	l.LogTurn(Turn{
		SessionID:     "s1",
		UserText:      "Antalya'da diş kliniği arıyorum",
		Intent:        "search_clinic",
		Confidence:    0.93,
		Entities:      map[string]string{"city": "Antalya", "treatment": "implant"},
		AssistantText: "Antalya için 3 klinik buldum.",
		Action:        "direct_search",
	})
	l.Close()

	ctx := context.Background()
	n, err := store.TurnCount(ctx, time.Time{})
	if err != nil {
		t.Fatalf("TurnCount: %v", err)
	}
	if n != 1 {
		t.Fatalf("turns = %d, want 1", n)
	}

	counts, err := store.IntentCounts(ctx, time.Time{})
	if err != nil {
		t.Fatalf("IntentCounts: %v", err)
	}
	if len(counts) != 1 || counts[0].Intent != "search_clinic" {
		t.Errorf("counts = %+v", counts)
	}

	p, err := store.Profile(ctx, "s1")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if p.Preferences["city"] != "Antalya" {
		t.Errorf("profile preferences = %v", p.Preferences)
	}
}

func TestLoggerFillsIDAndTimestamp(t *testing.T) {
	store := NewMemoryStore()
	l := NewLogger(store, 16, nil)
	l.LogTurn(Turn{SessionID: "s1", Intent: "greet"})
	l.Close()

	store.mu.RLock()
	defer store.mu.RUnlock()
	if len(store.turns) != 1 {
		t.Fatalf("turns = %d, want 1", len(store.turns))
	}
	got := store.turns[0]
	if got.ID == "" {
		t.Error("ID not assigned")
	}
	if got.Timestamp.IsZero() {
		t.Error("timestamp not assigned")
	}
}

// blockingStore parks AppendTurn until released so the queue can be filled.
type blockingStore struct {
	*MemoryStore
	release chan struct{}
	once    sync.Once
}

func (b *blockingStore) AppendTurn(ctx context.Context, t Turn) error {
	<-b.release
	return b.MemoryStore.AppendTurn(ctx, t)
}

func TestLoggerDropsWhenQueueFull(t *testing.T) {
	store := &blockingStore{MemoryStore: NewMemoryStore(), release: make(chan struct{})}
	l := NewLogger(store, 2, nil)

	// One turn occupies the worker, two fill the queue; the rest must drop
	// without blocking this goroutine.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			l.LogTurn(Turn{SessionID: "s1", Intent: "greet"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("LogTurn blocked on a full queue")
	}

	close(store.release)
	l.Close()

	n, err := store.TurnCount(context.Background(), time.Time{})
	if err != nil {
		t.Fatalf("TurnCount: %v", err)
	}
	if n < 1 || n > 3 {
		t.Errorf("persisted turns = %d, want between 1 and 3", n)
	}
}

func TestLoggerCloseIdempotent(t *testing.T) {
	l := NewLogger(NewMemoryStore(), 4, nil)
	l.Close()
	l.Close()
}
