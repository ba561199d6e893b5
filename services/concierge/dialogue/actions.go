// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package dialogue decides, per turn, what kind of answer the user gets:
// a catalog search, a scripted treatment explainer, or a free-form reply.
// Every path degrades to static text; no turn ever ends without a message.
package dialogue

import "github.com/AleutianAI/concierge/services/concierge/config"

// Action identifies the handler a classified turn is routed to. The value
// is also recorded on the turn log, so it doubles as an analytics dimension.
type Action string

const (
	ActionSearchClinics Action = "search_clinics"
	ActionSearchHotels  Action = "search_hotels"
	ActionScriptedInfo  Action = "scripted_info"
	ActionFreeform      Action = "freeform"
)

// Intent labels the NLU component emits for the two catalog searches. The
// treatment-topic intents are not listed here; they live in the scripted
// topic table so a new topic is a config change, not a code change.
var (
	clinicSearchIntents = map[string]bool{
		"search_clinic":  true,
		"find_clinic":    true,
		"clinic_search":  true,
		"klinik_ara":     true,
		"klinik_oner":    true,
		"doktor_ara":     true,
		"hastane_ara":    true,
		"tedavi_fiyat":   true,
		"klinik_bilgisi": true,
	}
	hotelSearchIntents = map[string]bool{
		"search_hotel": true,
		"find_hotel":   true,
		"hotel_search": true,
		"otel_ara":     true,
		"otel_oner":    true,
		"konaklama":    true,
	}
)

// classifier routes intents to actions. Scripted-topic routing is driven by
// the loaded topic table.
type classifier struct {
	topicByIntent map[string]topicEntry
}

type topicEntry struct {
	name  string
	topic config.ScriptedTopic
}

func newClassifier(topics config.ScriptedTopics) *classifier {
	byIntent := make(map[string]topicEntry)
	for name, topic := range topics {
		for _, intent := range topic.Intents {
			byIntent[intent] = topicEntry{name: name, topic: topic}
		}
	}
	return &classifier{topicByIntent: byIntent}
}

// classify maps an intent to an action. The topic entry is meaningful only
// for ActionScriptedInfo.
func (c *classifier) classify(intent string) (Action, topicEntry) {
	switch {
	case clinicSearchIntents[intent]:
		return ActionSearchClinics, topicEntry{}
	case hotelSearchIntents[intent]:
		return ActionSearchHotels, topicEntry{}
	}
	if entry, ok := c.topicByIntent[intent]; ok {
		return ActionScriptedInfo, entry
	}
	return ActionFreeform, topicEntry{}
}
