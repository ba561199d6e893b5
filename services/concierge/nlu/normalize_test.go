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
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalizeCityVariants(t *testing.T) {
	n := NewNormalizer()

	cases := []struct {
		raw  string
		want string
	}{
		{"istanbul", "İstanbul"},
		{"İstanbul", "İstanbul"},
		{"ISTANBUL", "İstanbul"},
		{"Istanbul", "İstanbul"},
		{"antalya", "Antalya"},
		{"ANTALYA", "Antalya"},
	}
	for _, tc := range cases {
		if got := n.Normalize(tc.raw, KindCity); got != tc.want {
			t.Errorf("Normalize(%q, KindCity) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestNormalizeRegionToCity(t *testing.T) {
	n := NewNormalizer()

	// Tourist regions resolve to the city the catalog is keyed by.
	for _, region := range []string{"belek", "Lara", "ALANYA", "kemer"} {
		if got := n.Normalize(region, KindCity); got != "Antalya" {
			t.Errorf("Normalize(%q, KindCity) = %q, want Antalya", region, got)
		}
	}
}

func TestNormalizeUnknownCityTitleCased(t *testing.T) {
	n := NewNormalizer()

	if got := n.Normalize("eskişehir", KindCity); got != "Eskişehir" {
		t.Errorf("unknown city = %q, want Eskişehir", got)
	}
	// Turkish dotless-I word initial.
	if got := n.Normalize("ığdır", KindCity); got != "Iğdır" {
		t.Errorf("unknown city = %q, want Iğdır", got)
	}
}

func TestNormalizeTreatmentTerms(t *testing.T) {
	n := NewNormalizer()

	cases := []struct {
		raw  string
		want string
	}{
		{"diş implantı", "implant"},
		{"Diş İmplantı", "implant"},
		{"rinoplasti", "rhinoplasty"},
		{"katarakt", "cataract"},
	}
	for _, tc := range cases {
		if got := n.Normalize(tc.raw, KindTreatment); got != tc.want {
			t.Errorf("Normalize(%q, KindTreatment) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestNormalizeUnknownTreatmentPassesThroughLowered(t *testing.T) {
	n := NewNormalizer()

	if got := n.Normalize("Botoks", KindTreatment); got != "botoks" {
		t.Errorf("unknown treatment = %q, want botoks", got)
	}
}

func TestNormalizeEmptyAndWhitespace(t *testing.T) {
	n := NewNormalizer()

	if got := n.Normalize("   ", KindCity); got != "" {
		t.Errorf("whitespace = %q, want empty", got)
	}
	if got := n.Normalize("", KindTreatment); got != "" {
		t.Errorf("empty = %q, want empty", got)
	}
}

func TestNormalizeEntityDispatch(t *testing.T) {
	n := NewNormalizer()

	if got := n.NormalizeEntity(Entity{Name: "city", Value: "ISTANBUL"}); got != "İstanbul" {
		t.Errorf("city entity = %q, want İstanbul", got)
	}
	if got := n.NormalizeEntity(Entity{Name: "region", Value: "belek"}); got != "Antalya" {
		t.Errorf("region entity = %q, want Antalya", got)
	}
	if got := n.NormalizeEntity(Entity{Name: "treatment", Value: "rinoplasti"}); got != "rhinoplasty" {
		t.Errorf("treatment entity = %q, want rhinoplasty", got)
	}
	if got := n.NormalizeEntity(Entity{Name: "budget", Value: " 5000 "}); got != "5000" {
		t.Errorf("other entity = %q, want 5000", got)
	}
}

func TestHTTPClassifierParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req parseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Text != "Antalya'da diş kliniği arıyorum" {
			t.Errorf("unexpected text %q", req.Text)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"intent": {"name": "search_clinic", "confidence": 0.93},
			"entities": [
				{"entity": "city", "value": "Antalya"},
				{"entity": "treatment", "value": "diş implantı"}
			]
		}`))
	}))
	t.Cleanup(srv.Close)

	c := NewHTTPClassifier(srv.URL, 0)
	got, err := c.Classify(context.Background(), "Antalya'da diş kliniği arıyorum")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got.Intent != "search_clinic" || got.Confidence != 0.93 {
		t.Errorf("intent = %q/%v, want search_clinic/0.93", got.Intent, got.Confidence)
	}
	if len(got.Entities) != 2 || got.Entities[0].Name != "city" || got.Entities[1].Value != "diş implantı" {
		t.Errorf("entities = %+v", got.Entities)
	}
}

func TestHTTPClassifierNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	c := NewHTTPClassifier(srv.URL, 0)
	if _, err := c.Classify(context.Background(), "merhaba"); err == nil {
		t.Fatal("expected error on 500 response")
	}
}
