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
	"fmt"
	"sort"
	"strings"

	"github.com/AleutianAI/concierge/services/concierge/catalog"
	"github.com/AleutianAI/concierge/services/concierge/session"
)

// User-facing static texts. The product surface is Turkish.
const (
	noClinicResultsMsg = "Üzgünüm, aradığınız kriterlere uygun klinik bulamadım. " +
		"Farklı bir şehir veya tedavi ile tekrar deneyebilirsiniz."
	noHotelResultsMsg = "Üzgünüm, aradığınız kriterlere uygun otel bulamadım. " +
		"Farklı bir şehir veya fiyat aralığı ile tekrar deneyebilirsiniz."
	genericFallbackMsg = "Bunu tam anlayamadım. Size daha iyi yardımcı olabilmem için " +
		"biraz daha belirgin sorabilir misiniz? Örneğin:\n" +
		"- \"Antalya'da diş implantı yapan klinikler\"\n" +
		"- \"İstanbul'da 200 dolara kadar otel\"\n" +
		"- \"Saç ekimi hakkında bilgi\""
)

// renderClinicResults builds the listing message for clinic search results.
// This is the direct-search message itself, not a fallback: generation only
// ever adds to it.
func renderClinicResults(clinics []catalog.Clinic) string {
	if len(clinics) == 0 {
		return noClinicResultsMsg
	}

	var b strings.Builder
	if len(clinics) == 1 {
		b.WriteString("Size uygun 1 klinik buldum:\n\n")
	} else {
		fmt.Fprintf(&b, "Size uygun %d klinik buldum:\n\n", len(clinics))
	}
	for i, c := range clinics {
		fmt.Fprintf(&b, "%d. %s (%s) — Puan: %.1f", i+1, c.Name, c.City, c.Rating)
		if c.Phone != "" {
			fmt.Fprintf(&b, "\n   Telefon: %s", c.Phone)
		}
		if i < len(clinics)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderHotelResults builds the listing message for hotel search results.
func renderHotelResults(hotels []catalog.Hotel) string {
	if len(hotels) == 0 {
		return noHotelResultsMsg
	}

	var b strings.Builder
	if len(hotels) == 1 {
		b.WriteString("Size uygun 1 otel buldum:\n\n")
	} else {
		fmt.Fprintf(&b, "Size uygun %d otel buldum:\n\n", len(hotels))
	}
	for i, h := range hotels {
		fmt.Fprintf(&b, "%d. %s (%s) — Puan: %.1f", i+1, h.Name, h.City, h.Rating)
		if h.PricePerNight > 0 {
			fmt.Fprintf(&b, ", gecelik %.0f USD", h.PricePerNight)
		}
		if i < len(hotels)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// slotLabels maps slot names to the Turkish labels used in the free-form
// prompt's slot snapshot.
var slotLabels = map[string]string{
	session.SlotTreatment:   "Tedavi",
	session.SlotCity:        "Şehir",
	session.SlotRegion:      "Bölge",
	session.SlotBudget:      "Bütçe",
	session.SlotHotelClass:  "Otel tercihi",
	session.SlotFlightClass: "Uçuş sınıfı",
	session.SlotClinic:      "Klinik",
	session.SlotDate:        "Tarih",
}

// renderSlotSnapshot flattens the known session slots for the free-form
// prompt. Sorted for a deterministic prompt; empty slots render the marker
// line so the model knows nothing is established yet.
func renderSlotSnapshot(slots session.SlotMap) string {
	if len(slots) == 0 {
		return "Bilinen kullanıcı tercihleri: (henüz yok)"
	}

	keys := make([]string, 0, len(slots))
	for k := range slots {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("Bilinen kullanıcı tercihleri:\n")
	for _, k := range keys {
		label := slotLabels[k]
		if label == "" {
			label = k
		}
		fmt.Fprintf(&b, "- %s: %s\n", label, slots[k])
	}
	return strings.TrimRight(b.String(), "\n")
}
