// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"sync"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Embedded Lookup Tables
// =============================================================================

//go:embed city_synonyms.yaml
var defaultCitySynonymsYAML []byte

//go:embed treatment_terms.yaml
var defaultTreatmentTermsYAML []byte

//go:embed scripted_topics.yaml
var defaultScriptedTopicsYAML []byte

// CitySynonyms maps lowercase (Turkish-folded) city and region variants to
// the canonical catalog city name. Loaded from city_synonyms.yaml at startup
// and cached.
//
// # Thread Safety
//
// Safe for concurrent use after initialization (immutable after load).
type CitySynonyms map[string]string

// TreatmentTerms maps lowercase Turkish treatment names to the English term
// matched against catalog treatment tags.
//
// # Thread Safety
//
// Safe for concurrent use after initialization (immutable after load).
type TreatmentTerms map[string]string

// ScriptedTopic is one pre-scripted informational topic: the fixed
// instruction prompt for the generation backend and the static fallback
// text delivered verbatim when generation fails. The fallback is chosen
// ahead of time, never improvised at failure time.
type ScriptedTopic struct {
	Intents     []string `yaml:"intents"`
	Instruction string   `yaml:"instruction"`
	Fallback    string   `yaml:"fallback"`
}

// ScriptedTopics maps topic key to its definition. The single data-driven
// table replaces the per-treatment action classes of the earlier assistant.
type ScriptedTopics map[string]ScriptedTopic

var (
	cachedCitySynonyms CitySynonyms
	citySynonymsOnce   sync.Once
	citySynonymsErr    error

	cachedTreatmentTerms TreatmentTerms
	treatmentTermsOnce   sync.Once
	treatmentTermsErr    error

	cachedScriptedTopics ScriptedTopics
	scriptedTopicsOnce   sync.Once
	scriptedTopicsErr    error
)

// LoadCitySynonyms loads and caches the city synonym table from the embedded
// YAML configuration. Returns the cached result on subsequent calls.
func LoadCitySynonyms() (CitySynonyms, error) {
	citySynonymsOnce.Do(func() {
		var raw map[string]string
		if err := yaml.Unmarshal(defaultCitySynonymsYAML, &raw); err != nil {
			citySynonymsErr = fmt.Errorf("parsing city_synonyms.yaml: %w", err)
			return
		}
		cachedCitySynonyms = raw
		slog.Info("city synonyms loaded", slog.Int("variant_count", len(raw)))
	})
	return cachedCitySynonyms, citySynonymsErr
}

// MustLoadCitySynonyms loads city synonyms or returns an empty map on error.
// The normalizer still works without the table, falling back to title-case.
func MustLoadCitySynonyms() CitySynonyms {
	synonyms, err := LoadCitySynonyms()
	if err != nil {
		slog.Warn("city synonym loading failed, continuing with title-case only",
			slog.String("error", err.Error()),
		)
		return make(CitySynonyms)
	}
	return synonyms
}

// LoadTreatmentTerms loads and caches the Turkish-to-English treatment term
// table.
func LoadTreatmentTerms() (TreatmentTerms, error) {
	treatmentTermsOnce.Do(func() {
		var raw map[string]string
		if err := yaml.Unmarshal(defaultTreatmentTermsYAML, &raw); err != nil {
			treatmentTermsErr = fmt.Errorf("parsing treatment_terms.yaml: %w", err)
			return
		}
		cachedTreatmentTerms = raw
		slog.Info("treatment terms loaded", slog.Int("term_count", len(raw)))
	})
	return cachedTreatmentTerms, treatmentTermsErr
}

// MustLoadTreatmentTerms loads treatment terms or returns an empty map on
// error; unmapped treatments are then searched as-is.
func MustLoadTreatmentTerms() TreatmentTerms {
	terms, err := LoadTreatmentTerms()
	if err != nil {
		slog.Warn("treatment term loading failed, searching raw values",
			slog.String("error", err.Error()),
		)
		return make(TreatmentTerms)
	}
	return terms
}

// LoadScriptedTopics loads and caches the scripted topic table.
//
// # Outputs
//
//   - ScriptedTopics: The loaded table. Never nil on success.
//   - error: Non-nil if YAML parsing fails or a topic is missing its
//     fallback text (every scripted topic must define one).
func LoadScriptedTopics() (ScriptedTopics, error) {
	scriptedTopicsOnce.Do(func() {
		var raw ScriptedTopics
		if err := yaml.Unmarshal(defaultScriptedTopicsYAML, &raw); err != nil {
			scriptedTopicsErr = fmt.Errorf("parsing scripted_topics.yaml: %w", err)
			return
		}
		for key, topic := range raw {
			if topic.Instruction == "" || topic.Fallback == "" {
				scriptedTopicsErr = fmt.Errorf("scripted topic %q must define instruction and fallback", key)
				return
			}
		}
		cachedScriptedTopics = raw
		slog.Info("scripted topics loaded", slog.Int("topic_count", len(raw)))
	})
	return cachedScriptedTopics, scriptedTopicsErr
}
