// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package dialogue

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/AleutianAI/concierge/services/concierge/catalog"
	"github.com/AleutianAI/concierge/services/concierge/config"
	"github.com/AleutianAI/concierge/services/concierge/convlog"
	"github.com/AleutianAI/concierge/services/concierge/gen"
	"github.com/AleutianAI/concierge/services/concierge/nlu"
	"github.com/AleutianAI/concierge/services/concierge/session"
)

// Message is one user-visible assistant message. A turn produces at least one.
type Message struct {
	Text string `json:"text"`
}

// TurnRecorder receives completed turns for async persistence.
type TurnRecorder interface {
	LogTurn(t convlog.Turn)
}

// ErrEmptySessionID is the one input error HandleTurn surfaces to its caller.
var ErrEmptySessionID = errors.New("dialogue: empty session id")

// Deps collects the orchestrator's collaborators.
type Deps struct {
	Classifier nlu.Classifier
	Normalizer *nlu.Normalizer
	Sessions   session.Store
	Engine     *catalog.Engine
	Generator  gen.Generator
	Topics     config.ScriptedTopics
	Recorder   TurnRecorder
	Logger     *slog.Logger
}

// Options tune per-turn behavior. Zero values take the defaults noted on
// each field.
type Options struct {
	// ResultLimit caps how many results a search turn lists. Default 3.
	ResultLimit int
	// TurnDeadline bounds one whole turn. It must exceed the generation
	// timeout so the slowest external call still fits. Default 75s.
	TurnDeadline time.Duration
	// Elaborate adds a generated natural-language elaboration after the
	// search listing when the backend cooperates.
	Elaborate bool
	// FallbackMaxTokens is the tighter output bound used on free-form turns.
	// Default 192.
	FallbackMaxTokens int
}

// Orchestrator runs the per-turn state machine:
// classify the intent, route it to one of the three handlers, compose the
// response, and hand the finished turn to the recorder.
//
// # Thread Safety
//
// Safe for concurrent use. Turns for the same session are serialized on a
// per-session lock so slot merges apply in arrival order; turns for
// different sessions run fully in parallel.
type Orchestrator struct {
	classifier *classifier
	deps       Deps
	opts       Options

	sessionLocks sync.Map // sessionID -> *sync.Mutex
}

// New builds an Orchestrator. All Deps fields except Recorder are required;
// a nil Recorder disables turn logging.
func New(deps Deps, opts Options) *Orchestrator {
	if deps.Classifier == nil || deps.Normalizer == nil || deps.Sessions == nil ||
		deps.Engine == nil || deps.Generator == nil {
		panic("dialogue: missing required dependency")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if opts.ResultLimit <= 0 {
		opts.ResultLimit = 3
	}
	if opts.TurnDeadline <= 0 {
		opts.TurnDeadline = 75 * time.Second
	}
	if opts.FallbackMaxTokens <= 0 {
		opts.FallbackMaxTokens = 192
	}
	return &Orchestrator{
		classifier: newClassifier(deps.Topics),
		deps:       deps,
		opts:       opts,
	}
}

// HandleTurn processes one inbound user message and returns the assistant
// messages for it. The returned slice is non-empty on every path except an
// empty session ID.
func (o *Orchestrator) HandleTurn(ctx context.Context, sessionID, userText string) ([]Message, error) {
	if sessionID == "" {
		return nil, ErrEmptySessionID
	}
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, o.opts.TurnDeadline)
	defer cancel()

	lock := o.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	// Classification failure is not a turn failure: an unclassified turn is
	// a free-form turn.
	cls, err := o.deps.Classifier.Classify(ctx, userText)
	if err != nil {
		o.deps.Logger.Warn("nlu classification failed, treating turn as freeform",
			"session_id", sessionID, "error", err)
		cls = nlu.Classification{}
	}

	slots := o.mergeSlots(ctx, sessionID, cls.Entities)

	action, entry := o.classifier.classify(cls.Intent)
	var messages []Message
	switch action {
	case ActionSearchClinics:
		messages = o.searchClinics(ctx, slots)
	case ActionSearchHotels:
		messages = o.searchHotels(ctx, slots)
	case ActionScriptedInfo:
		messages = o.scriptedInfo(ctx, entry, userText)
	default:
		messages = o.freeform(ctx, slots, userText)
	}
	if len(messages) == 0 {
		// Belt and braces: no handler should return empty, but the contract
		// is unconditional.
		messages = []Message{{Text: genericFallbackMsg}}
	}

	elapsed := time.Since(start)
	recordTurn(string(action), elapsed)

	if o.deps.Recorder != nil {
		o.deps.Recorder.LogTurn(convlog.Turn{
			SessionID:     sessionID,
			UserText:      userText,
			Intent:        cls.Intent,
			Confidence:    cls.Confidence,
			Entities:      o.normalizedEntities(cls.Entities),
			AssistantText: messages[0].Text,
			Action:        string(action),
			ElapsedMS:     elapsed.Milliseconds(),
		})
	}
	return messages, nil
}

func (o *Orchestrator) sessionLock(sessionID string) *sync.Mutex {
	if m, ok := o.sessionLocks.Load(sessionID); ok {
		return m.(*sync.Mutex)
	}
	m, _ := o.sessionLocks.LoadOrStore(sessionID, &sync.Mutex{})
	return m.(*sync.Mutex)
}

// slotForEntity maps NLU entity names to session slot names. Unknown entity
// names are not slot-like and are dropped from session state (they still
// reach the turn log).
func slotForEntity(name string) string {
	switch name {
	case "city", "location":
		return session.SlotCity
	case "region":
		// Regions normalize to their city, so they land in the city slot.
		return session.SlotCity
	case "treatment", "procedure":
		return session.SlotTreatment
	case "hotel_type", "hotel_class":
		return session.SlotHotelClass
	case "budget", "price":
		return session.SlotBudget
	case "clinic", "clinic_name":
		return session.SlotClinic
	case "date", "travel_date":
		return session.SlotDate
	case "flight_class":
		return session.SlotFlightClass
	}
	return ""
}

// mergeSlots normalizes the turn's entities and merges them into session
// state. A session-store failure degrades to this turn's own entities so the
// turn still proceeds; stickiness is lost, the conversation is not.
func (o *Orchestrator) mergeSlots(ctx context.Context, sessionID string, entities []nlu.Entity) session.SlotMap {
	partial := session.SlotMap{}
	for _, e := range entities {
		slot := slotForEntity(e.Name)
		if slot == "" {
			continue
		}
		partial[slot] = o.deps.Normalizer.NormalizeEntity(e)
	}

	merged, err := o.deps.Sessions.Merge(ctx, sessionID, partial)
	if err != nil {
		o.deps.Logger.Warn("session merge failed, using turn-local slots",
			"session_id", sessionID, "error", err)
		return partial
	}
	return merged
}

// normalizedEntities flattens the turn's entities for the turn log, keyed by
// slot name where one applies and raw entity name otherwise.
func (o *Orchestrator) normalizedEntities(entities []nlu.Entity) map[string]string {
	if len(entities) == 0 {
		return nil
	}
	out := make(map[string]string, len(entities))
	for _, e := range entities {
		key := slotForEntity(e.Name)
		if key == "" {
			key = e.Name
		}
		out[key] = o.deps.Normalizer.NormalizeEntity(e)
	}
	return out
}

// =============================================================================
// Action Handlers
// =============================================================================

func (o *Orchestrator) searchClinics(ctx context.Context, slots session.SlotMap) []Message {
	clinics := o.deps.Engine.SearchClinics(ctx, catalog.ClinicQuery{
		City:      slots[session.SlotCity],
		Treatment: slots[session.SlotTreatment],
		Limit:     o.opts.ResultLimit,
	})

	messages := []Message{{Text: renderClinicResults(clinics)}}
	if o.opts.Elaborate && len(clinics) > 0 {
		if text, ok := o.elaborate(ctx, gen.ClinicContext(clinics), slots); ok {
			messages = append(messages, Message{Text: text})
		}
	}
	return messages
}

func (o *Orchestrator) searchHotels(ctx context.Context, slots session.SlotMap) []Message {
	var maxPrice float64
	if raw := slots[session.SlotBudget]; raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			maxPrice = v
		}
	}

	hotels := o.deps.Engine.SearchHotels(ctx, catalog.HotelQuery{
		City:      slots[session.SlotCity],
		HotelType: slots[session.SlotHotelClass],
		MaxPrice:  maxPrice,
		Limit:     o.opts.ResultLimit,
	})

	messages := []Message{{Text: renderHotelResults(hotels)}}
	if o.opts.Elaborate && len(hotels) > 0 {
		if text, ok := o.elaborate(ctx, gen.HotelContext(hotels), slots); ok {
			messages = append(messages, Message{Text: text})
		}
	}
	return messages
}

// elaborate asks the backend for a short comment on the listed results. The
// listing has already been composed; a failure here only means no second
// message.
func (o *Orchestrator) elaborate(ctx context.Context, contextBlock string, slots session.SlotMap) (string, bool) {
	prompt := gen.Prompt{
		Context: contextBlock + "\n\n" + renderSlotSnapshot(slots),
		User: "Yukarıdaki sonuçları kullanıcıya bir iki cümleyle, sıcak bir dille özetle. " +
			"Listeyi tekrar etme.",
	}
	res := o.deps.Generator.Generate(ctx, prompt.Render(), gen.Options{
		MaxTokens: o.opts.FallbackMaxTokens,
		Stop:      []string{"[KULLANICI]"},
	})
	if !res.Success {
		return "", false
	}
	return res.Text, true
}

func (o *Orchestrator) scriptedInfo(ctx context.Context, entry topicEntry, userText string) []Message {
	prompt := gen.Prompt{
		System: entry.topic.Instruction,
		User:   userText,
	}
	res := o.deps.Generator.Generate(ctx, prompt.Render(), gen.Options{
		Stop: []string{"[KULLANICI]"},
	})
	if !res.Success {
		recordFallback(string(ActionScriptedInfo), string(res.ErrKind))
		o.deps.Logger.Warn("scripted generation failed, using topic fallback",
			"topic", entry.name, "kind", string(res.ErrKind))
		return []Message{{Text: entry.topic.Fallback}}
	}
	return []Message{{Text: res.Text}}
}

func (o *Orchestrator) freeform(ctx context.Context, slots session.SlotMap, userText string) []Message {
	prompt := gen.Prompt{
		Context: renderSlotSnapshot(slots),
		User:    userText,
	}
	res := o.deps.Generator.Generate(ctx, prompt.Render(), gen.Options{
		MaxTokens: o.opts.FallbackMaxTokens,
		Stop:      []string{"[KULLANICI]"},
	})
	if !res.Success {
		recordFallback(string(ActionFreeform), string(res.ErrKind))
		return []Message{{Text: genericFallbackMsg}}
	}
	return []Message{{Text: res.Text}}
}
