// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package nlu

import (
	"strings"

	"github.com/AleutianAI/concierge/services/concierge/config"
)

// ValueKind selects which normalization table applies to a raw entity value.
type ValueKind int

const (
	// KindCity maps city names, misspellings, and tourist-region names
	// to the canonical city used as a catalog filter key.
	KindCity ValueKind = iota
	// KindTreatment maps treatment phrasings to the canonical search term.
	KindTreatment
	// KindOther passes the value through with whitespace trimmed.
	KindOther
)

// Normalizer maps raw extracted entity values to canonical forms.
//
// # Description
//
// Lookup is case-insensitive with Turkish-aware folding: dotted İ folds to i
// and dotless I folds to ı before table lookup, so "ISTANBUL", "istanbul",
// and "İstanbul" all resolve to the same canonical value. Unknown city values
// fall back to a title-cased copy of the input rather than failing; unknown
// treatment values pass through lowered. Normalization never returns an error.
//
// # Thread Safety
//
// Safe for concurrent use; the tables are read-only after construction.
type Normalizer struct {
	cities     config.CitySynonyms
	treatments config.TreatmentTerms
}

// NewNormalizer builds a Normalizer from the embedded synonym tables.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		cities:     config.MustLoadCitySynonyms(),
		treatments: config.MustLoadTreatmentTerms(),
	}
}

// Normalize returns the canonical form of a raw entity value.
func (n *Normalizer) Normalize(raw string, kind ValueKind) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	switch kind {
	case KindCity:
		if canonical, ok := n.cities[foldTurkish(trimmed)]; ok {
			return canonical
		}
		return titleCase(trimmed)
	case KindTreatment:
		folded := foldTurkish(trimmed)
		if canonical, ok := n.treatments[folded]; ok {
			return canonical
		}
		return folded
	default:
		return trimmed
	}
}

// NormalizeEntity picks the table from the entity name.
func (n *Normalizer) NormalizeEntity(e Entity) string {
	switch e.Name {
	case "city", "region", "location":
		return n.Normalize(e.Value, KindCity)
	case "treatment", "procedure":
		return n.Normalize(e.Value, KindTreatment)
	default:
		return n.Normalize(e.Value, KindOther)
	}
}

// foldTurkish lowercases with Turkish dotted/dotless I handling. Go's
// strings.ToLower maps İ to i̇ (i + combining dot) and I to i, neither of
// which matches table keys written in plain lowercase Turkish, so the two
// problem runes are rewritten first.
func foldTurkish(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case 'İ':
			b.WriteRune('i')
		case 'I':
			b.WriteRune('ı')
		default:
			b.WriteRune(r)
		}
	}
	return strings.ToLower(b.String())
}

// titleCase uppercases the first rune of each space-separated word, with the
// Turkish i → İ mapping, and lowercases the rest via foldTurkish.
func titleCase(s string) string {
	words := strings.Fields(foldTurkish(s))
	for i, w := range words {
		runes := []rune(w)
		switch runes[0] {
		case 'i':
			runes[0] = 'İ'
		case 'ı':
			runes[0] = 'I'
		default:
			runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
