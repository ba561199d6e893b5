// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package gen

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/concierge/services/concierge/catalog"
)

// Context blocks are size-bounded regardless of how many records retrieval
// produced, so prompt length stays under control.
const (
	// MaxContextRecords caps how many records one context block describes.
	MaxContextRecords = 5
	// MaxContextTags caps how many treatments or features are listed per record.
	MaxContextTags = 3
)

// NoMatchMarker is the explicit empty-result marker. It is always non-empty
// so the prompt renderer keeps the context section, which tells the model the
// search ran and found nothing (as opposed to no search having run).
const NoMatchMarker = "(eşleşen kayıt yok)"

// ClinicContext renders clinic search results as the Turkish context block.
func ClinicContext(clinics []catalog.Clinic) string {
	if len(clinics) == 0 {
		return "BULUNAN KLİNİKLER:\n" + NoMatchMarker
	}
	if len(clinics) > MaxContextRecords {
		clinics = clinics[:MaxContextRecords]
	}

	var b strings.Builder
	b.WriteString("BULUNAN KLİNİKLER:\n")
	for i, c := range clinics {
		fmt.Fprintf(&b, "%d. %s\n", i+1, c.Name)
		fmt.Fprintf(&b, "   Şehir: %s\n", c.City)
		fmt.Fprintf(&b, "   Puan: %.1f\n", c.Rating)
		if c.Phone != "" {
			fmt.Fprintf(&b, "   Telefon: %s\n", c.Phone)
		}
		if len(c.Treatments) > 0 {
			fmt.Fprintf(&b, "   Tedaviler: %s\n", joinTags(c.Treatments))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// HotelContext renders hotel search results as the Turkish context block.
func HotelContext(hotels []catalog.Hotel) string {
	if len(hotels) == 0 {
		return "BULUNAN OTELLER:\n" + NoMatchMarker
	}
	if len(hotels) > MaxContextRecords {
		hotels = hotels[:MaxContextRecords]
	}

	var b strings.Builder
	b.WriteString("BULUNAN OTELLER:\n")
	for i, h := range hotels {
		fmt.Fprintf(&b, "%d. %s\n", i+1, h.Name)
		fmt.Fprintf(&b, "   Şehir: %s\n", h.City)
		fmt.Fprintf(&b, "   Puan: %.1f\n", h.Rating)
		if h.PricePerNight > 0 {
			fmt.Fprintf(&b, "   Gecelik fiyat: %.0f USD\n", h.PricePerNight)
		}
		if len(h.Features) > 0 {
			fmt.Fprintf(&b, "   Özellikler: %s\n", joinTags(h.Features))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func joinTags(tags []string) string {
	if len(tags) > MaxContextTags {
		tags = tags[:MaxContextTags]
	}
	return strings.Join(tags, ", ")
}
