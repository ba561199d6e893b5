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
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// logWriteTimeout bounds one store write inside the worker so a hung backend
// drains the queue as drops instead of wedging the worker forever.
const logWriteTimeout = 10 * time.Second

// Logger decouples conversation recording from the turn hot path.
//
// # Description
//
// LogTurn enqueues onto a bounded channel and returns immediately; a single
// background worker performs the store writes. When the queue is full the
// record is dropped with a warning and a metric rather than blocking the
// caller: a slow persistence backend must never add latency to a user-facing
// turn, and losing an analytics record is acceptable where losing the
// response is not.
//
// # Thread Safety
//
// LogTurn is safe for concurrent use. Close must be called once, after all
// producers have stopped.
type Logger struct {
	store  TurnStore
	queue  chan Turn
	logger *slog.Logger

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewLogger starts the background worker. Pass 0 for the default queue size
// of 256.
func NewLogger(store TurnStore, queueSize int, logger *slog.Logger) *Logger {
	if queueSize <= 0 {
		queueSize = 256
	}
	if logger == nil {
		logger = slog.Default()
	}
	l := &Logger{
		store:  store,
		queue:  make(chan Turn, queueSize),
		logger: logger,
	}
	l.wg.Add(1)
	go l.run()
	return l
}

// LogTurn records a completed turn. Missing IDs and timestamps are filled in
// here so callers only describe the exchange. Never blocks.
func (l *Logger) LogTurn(t Turn) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now()
	}

	select {
	case l.queue <- t:
		recordEnqueued()
	default:
		recordDropped()
		l.logger.Warn("conversation log queue full, dropping turn",
			"session_id", t.SessionID,
			"intent", t.Intent,
		)
	}
}

// Close stops accepting new turns and drains everything already queued.
func (l *Logger) Close() {
	l.closeOnce.Do(func() {
		close(l.queue)
	})
	l.wg.Wait()
}

func (l *Logger) run() {
	defer l.wg.Done()
	for t := range l.queue {
		l.persist(t)
	}
}

func (l *Logger) persist(t Turn) {
	ctx, cancel := context.WithTimeout(context.Background(), logWriteTimeout)
	defer cancel()

	if err := l.store.AppendTurn(ctx, t); err != nil {
		recordWriteError()
		l.logger.Warn("failed to persist turn", "session_id", t.SessionID, "error", err)
		return
	}
	if len(t.Entities) > 0 {
		if err := l.store.UpsertProfile(ctx, t.SessionID, t.Entities); err != nil {
			recordWriteError()
			l.logger.Warn("failed to upsert profile", "session_id", t.SessionID, "error", err)
		}
	}
}
