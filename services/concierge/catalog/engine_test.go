// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package catalog

import (
	"context"
	"errors"
	"testing"
	"time"
)

// =============================================================================
// Helpers
// =============================================================================

// newTestEngine builds an Engine over a fixed 5-record Antalya clinic
// fixture plus one İstanbul clinic, with a fresh cache per test.
func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(NewFixtureStore(), time.Minute, nil)
}

// failingStore always returns a connection error.
type failingStore struct{}

func (failingStore) Clinics(ctx context.Context, city string, limit int) ([]Clinic, error) {
	return nil, errors.New("dial tcp: connection refused")
}
func (failingStore) Hotels(ctx context.Context, city string, limit int) ([]Hotel, error) {
	return nil, errors.New("dial tcp: connection refused")
}
func (failingStore) ClinicByID(ctx context.Context, id string) (*Clinic, error) {
	return nil, errors.New("dial tcp: connection refused")
}
func (failingStore) HotelByID(ctx context.Context, id string) (*Hotel, error) {
	return nil, errors.New("dial tcp: connection refused")
}

// =============================================================================
// SearchClinics Tests
// =============================================================================

// Scenario: city="Antalya", treatment="dental implant" term "implant",
// minRating=4.5 over the fixture must return exactly the Antalya records
// whose treatment tags contain "implant" case-insensitively, rating-desc.
func TestSearchClinics_CityTreatmentAndRating(t *testing.T) {
	engine := newTestEngine(t)

	results := engine.SearchClinics(context.Background(), ClinicQuery{
		City:      "Antalya",
		Treatment: "implant",
		MinRating: 4.5,
		Limit:     10,
	})

	// cl-001 (Implant Dentistry, 4.8), cl-002 (Dental Implants, 4.7),
	// cl-005 (Intraocular Lens Implants, 4.7). cl-006 is İstanbul, cl-003
	// has no implant tag, cl-004 has none either.
	wantIDs := []string{"cl-001", "cl-002", "cl-005"}
	if len(results) != len(wantIDs) {
		t.Fatalf("expected %d results, got %d: %+v", len(wantIDs), len(results), results)
	}
	for i, want := range wantIDs {
		if results[i].ID != want {
			t.Errorf("result[%d]: expected %s, got %s", i, want, results[i].ID)
		}
	}
	for _, r := range results {
		if r.Rating < 4.5 {
			t.Errorf("result %s violates minRating: %.1f", r.ID, r.Rating)
		}
	}
}

func TestSearchClinics_RatingSortIsStableOnTies(t *testing.T) {
	engine := newTestEngine(t)

	results := engine.SearchClinics(context.Background(), ClinicQuery{City: "Antalya", Limit: 10})
	// cl-002 and cl-005 both have 4.7; store order (cl-002 first) must hold.
	var tied []string
	for _, r := range results {
		if r.Rating == 4.7 {
			tied = append(tied, r.ID)
		}
	}
	if len(tied) != 2 || tied[0] != "cl-002" || tied[1] != "cl-005" {
		t.Errorf("expected stable tie-break [cl-002 cl-005], got %v", tied)
	}
}

func TestSearchClinics_LimitIsHonored(t *testing.T) {
	engine := newTestEngine(t)
	results := engine.SearchClinics(context.Background(), ClinicQuery{City: "Antalya", Limit: 2})
	if len(results) > 2 {
		t.Errorf("expected at most 2 results, got %d", len(results))
	}
}

func TestSearchClinics_UnknownCityYieldsEmptyWithoutError(t *testing.T) {
	engine := newTestEngine(t)
	results := engine.SearchClinics(context.Background(), ClinicQuery{City: "Ankara"})
	if len(results) != 0 {
		t.Errorf("expected empty result, got %+v", results)
	}
}

func TestSearchClinics_StoreFailureDegradesToEmpty(t *testing.T) {
	engine := NewEngine(failingStore{}, time.Minute, nil)
	results := engine.SearchClinics(context.Background(), ClinicQuery{City: "Antalya"})
	if results == nil || len(results) != 0 {
		t.Errorf("expected non-nil empty slice, got %#v", results)
	}
}

// =============================================================================
// SearchHotels Tests
// =============================================================================

func TestSearchHotels_PriceCeilingIsInclusive(t *testing.T) {
	engine := newTestEngine(t)

	results := engine.SearchHotels(context.Background(), HotelQuery{
		City:     "Antalya",
		MaxPrice: 200,
		Limit:    10,
	})
	for _, h := range results {
		if h.PricePerNight > 200 {
			t.Errorf("hotel %s exceeds price ceiling: %.0f", h.ID, h.PricePerNight)
		}
	}
	// ht-002 costs exactly 200 and must be included (inclusive bound).
	found := false
	for _, h := range results {
		if h.ID == "ht-002" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected ht-002 at the inclusive boundary, got %+v", results)
	}
}

func TestSearchHotels_TypeFilterIsCaseInsensitive(t *testing.T) {
	engine := newTestEngine(t)

	results := engine.SearchHotels(context.Background(), HotelQuery{
		City:      "Antalya",
		HotelType: "RESORT",
		Limit:     10,
	})
	if len(results) == 0 {
		t.Fatal("expected resort matches")
	}
	for _, h := range results {
		if h.Type != "resort" {
			t.Errorf("unexpected hotel type %q for %s", h.Type, h.ID)
		}
	}
}

func TestSearchHotels_SortedByRatingDescending(t *testing.T) {
	engine := newTestEngine(t)
	results := engine.SearchHotels(context.Background(), HotelQuery{City: "Antalya", Limit: 10})
	for i := 1; i < len(results); i++ {
		if results[i].Rating > results[i-1].Rating {
			t.Errorf("results not sorted: %.1f after %.1f", results[i].Rating, results[i-1].Rating)
		}
	}
}

func TestSearchHotels_DefaultLimit(t *testing.T) {
	engine := newTestEngine(t)
	results := engine.SearchHotels(context.Background(), HotelQuery{})
	if len(results) > DefaultLimit {
		t.Errorf("expected at most %d results with zero limit, got %d", DefaultLimit, len(results))
	}
}

func TestClinicByID(t *testing.T) {
	engine := newTestEngine(t)

	clinic, err := engine.ClinicByID(context.Background(), "cl-002")
	if err != nil {
		t.Fatalf("ClinicByID: %v", err)
	}
	if clinic.Name != "Dt. Murat Özbıyık Clinic" {
		t.Errorf("name = %q", clinic.Name)
	}

	if _, err := engine.ClinicByID(context.Background(), "cl-999"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestHotelByID(t *testing.T) {
	engine := newTestEngine(t)

	hotel, err := engine.HotelByID(context.Background(), "ht-004")
	if err != nil {
		t.Fatalf("HotelByID: %v", err)
	}
	if hotel.City != "Antalya" {
		t.Errorf("city = %q", hotel.City)
	}

	if _, err := engine.HotelByID(context.Background(), "ht-999"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
