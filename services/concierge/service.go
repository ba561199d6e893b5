// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package concierge assembles the conversational health-tourism assistant:
// NLU, session state, catalog retrieval, generation, and conversation
// logging behind one service facade plus its HTTP surface.
package concierge

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/concierge/services/concierge/catalog"
	"github.com/AleutianAI/concierge/services/concierge/config"
	"github.com/AleutianAI/concierge/services/concierge/convlog"
	"github.com/AleutianAI/concierge/services/concierge/dialogue"
	"github.com/AleutianAI/concierge/services/concierge/gen"
	"github.com/AleutianAI/concierge/services/concierge/nlu"
	"github.com/AleutianAI/concierge/services/concierge/session"
)

// Analytics is the aggregate view served to operators.
type Analytics struct {
	IntentCounts   []convlog.IntentCount    `json:"intent_counts"`
	ActiveSessions int64                    `json:"active_sessions"`
	TotalTurns     int64                    `json:"total_turns"`
	PopularCities  []convlog.SlotValueCount `json:"popular_cities"`
}

// Backends collects the already-constructed external stores the service
// runs against. The caller (cmd/concierge) decides memory vs. networked
// backends; the service is agnostic.
type Backends struct {
	Catalog  catalog.Store
	Sessions session.Store
	Turns    convlog.TurnStore
}

// Service is the orchestration entry point the HTTP layer delegates to.
type Service struct {
	orchestrator *dialogue.Orchestrator
	turns        convlog.TurnStore
	convLogger   *convlog.Logger
	logger       *slog.Logger
}

// NewService wires the full turn pipeline from configuration and backends.
func NewService(cfg *config.Config, backends Backends, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if backends.Catalog == nil || backends.Sessions == nil || backends.Turns == nil {
		return nil, fmt.Errorf("concierge: all backends are required")
	}

	topics, err := config.LoadScriptedTopics()
	if err != nil {
		return nil, fmt.Errorf("concierge: load scripted topics: %w", err)
	}

	engine := catalog.NewEngine(backends.Catalog, cfg.CacheTTL(), logger)
	generator := gen.NewOllamaClient(gen.OllamaConfig{
		BaseURL:     cfg.Generation.BaseURL,
		Model:       cfg.Generation.Model,
		Temperature: cfg.Generation.Temperature,
		MaxTokens:   cfg.Generation.MaxTokens,
		Timeout:     cfg.GenerationTimeout(),
	}, logger)
	convLogger := convlog.NewLogger(backends.Turns, cfg.Persistence.QueueSize, logger)

	orchestrator := dialogue.New(dialogue.Deps{
		Classifier: nlu.NewHTTPClassifier(cfg.NLU.URL, cfg.NLUTimeout()),
		Normalizer: nlu.NewNormalizer(),
		Sessions:   backends.Sessions,
		Engine:     engine,
		Generator:  generator,
		Topics:     topics,
		Recorder:   convLogger,
		Logger:     logger,
	}, dialogue.Options{
		ResultLimit:       cfg.Turn.ResultLimit,
		TurnDeadline:      cfg.TurnDeadline(),
		Elaborate:         cfg.Turn.ElaborateResults,
		FallbackMaxTokens: cfg.Generation.FallbackMaxTokens,
	})

	return &Service{
		orchestrator: orchestrator,
		turns:        backends.Turns,
		convLogger:   convLogger,
		logger:       logger,
	}, nil
}

// HandleTurn processes one user message. See dialogue.Orchestrator.HandleTurn.
func (s *Service) HandleTurn(ctx context.Context, sessionID, userText string) ([]dialogue.Message, error) {
	ctx, span := otel.Tracer("concierge").Start(ctx, "handle_turn",
		trace.WithAttributes(attribute.String("session_id", sessionID)))
	defer span.End()

	messages, err := s.orchestrator.HandleTurn(ctx, sessionID, userText)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("message_count", len(messages)))
	return messages, nil
}

// GetProfile returns the accumulated preference profile for a session.
// Returns convlog.ErrProfileNotFound for sessions that have no profile.
func (s *Service) GetProfile(ctx context.Context, sessionID string) (convlog.Profile, error) {
	return s.turns.Profile(ctx, sessionID)
}

// GetAnalytics aggregates the turn log over the trailing window.
func (s *Service) GetAnalytics(ctx context.Context, sinceDays int) (Analytics, error) {
	if sinceDays <= 0 {
		sinceDays = 7
	}
	since := time.Now().AddDate(0, 0, -sinceDays)

	intents, err := s.turns.IntentCounts(ctx, since)
	if err != nil {
		return Analytics{}, fmt.Errorf("concierge: intent counts: %w", err)
	}
	sessions, err := s.turns.ActiveSessionCount(ctx, since)
	if err != nil {
		return Analytics{}, fmt.Errorf("concierge: active sessions: %w", err)
	}
	turns, err := s.turns.TurnCount(ctx, since)
	if err != nil {
		return Analytics{}, fmt.Errorf("concierge: turn count: %w", err)
	}
	cities, err := s.turns.PopularSlotValues(ctx, "city", since, 5)
	if err != nil {
		return Analytics{}, fmt.Errorf("concierge: popular cities: %w", err)
	}

	return Analytics{
		IntentCounts:   intents,
		ActiveSessions: sessions,
		TotalTurns:     turns,
		PopularCities:  cities,
	}, nil
}

// Close drains the conversation log queue. Call during shutdown, after the
// HTTP server has stopped accepting turns.
func (s *Service) Close() {
	s.convLogger.Close()
}
