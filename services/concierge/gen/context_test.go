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
	"testing"

	"github.com/AleutianAI/concierge/services/concierge/catalog"
)

func TestClinicContextFormatting(t *testing.T) {
	out := ClinicContext([]catalog.Clinic{
		{
			Name:       "Antmodern Oral & Dental Health Clinic",
			City:       "Antalya",
			Rating:     4.8,
			Phone:      "+90 242 000 00 00",
			Treatments: []string{"Implant Dentistry", "Teeth Whitening", "Orthodontics", "Veneers"},
		},
	})

	for _, want := range []string{
		"BULUNAN KLİNİKLER:",
		"1. Antmodern Oral & Dental Health Clinic",
		"Şehir: Antalya",
		"Puan: 4.8",
		"Telefon: +90 242 000 00 00",
		"Tedaviler: Implant Dentistry, Teeth Whitening, Orthodontics",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("context missing %q:\n%s", want, out)
		}
	}
	// Fourth tag dropped by the per-record cap.
	if strings.Contains(out, "Veneers") {
		t.Errorf("tag cap not applied:\n%s", out)
	}
}

func TestClinicContextRecordCap(t *testing.T) {
	clinics := make([]catalog.Clinic, 8)
	for i := range clinics {
		clinics[i] = catalog.Clinic{Name: fmt.Sprintf("Klinik %d", i+1), City: "Antalya", Rating: 4.0}
	}
	out := ClinicContext(clinics)
	if !strings.Contains(out, "5. Klinik 5") {
		t.Errorf("fifth record missing:\n%s", out)
	}
	if strings.Contains(out, "Klinik 6") {
		t.Errorf("record cap not applied:\n%s", out)
	}
}

func TestClinicContextEmptyUsesMarker(t *testing.T) {
	out := ClinicContext(nil)
	if !strings.Contains(out, NoMatchMarker) {
		t.Errorf("empty result must carry marker, got:\n%s", out)
	}
	if out == "" {
		t.Error("context must never be empty")
	}
}

func TestHotelContextFormatting(t *testing.T) {
	out := HotelContext([]catalog.Hotel{
		{
			Name:          "Regnum Carya",
			City:          "Antalya",
			Rating:        4.9,
			PricePerNight: 350,
			Features:      []string{"Spa", "Private Beach", "Golf", "Kids Club"},
		},
	})

	for _, want := range []string{
		"BULUNAN OTELLER:",
		"1. Regnum Carya",
		"Puan: 4.9",
		"Gecelik fiyat: 350 USD",
		"Özellikler: Spa, Private Beach, Golf",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("context missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Kids Club") {
		t.Errorf("tag cap not applied:\n%s", out)
	}
}

func TestHotelContextEmptyUsesMarker(t *testing.T) {
	out := HotelContext([]catalog.Hotel{})
	if !strings.Contains(out, NoMatchMarker) {
		t.Errorf("empty result must carry marker, got:\n%s", out)
	}
}
