// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package catalog implements the retrieval layer over the two searchable
// record sets (clinics, hotels): a pluggable backing store with a native
// city filter, a TTL-bounded query cache shared across sessions, and the
// retrieval engine that applies the in-process filters the store does not
// support natively.
package catalog

// Clinic is an immutable snapshot of a clinic record read from the catalog
// store. The engine holds only transient copies; the store owns the data.
type Clinic struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	City       string   `json:"city"`
	Country    string   `json:"country"`
	Rating     float64  `json:"rating"`
	Phone      string   `json:"phone"`
	Address    string   `json:"address"`
	Treatments []string `json:"treatments"`
}

// Hotel is an immutable snapshot of a hotel record read from the catalog
// store.
type Hotel struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	City          string   `json:"city"`
	Country       string   `json:"country"`
	Type          string   `json:"type"`
	Rating        float64  `json:"rating"`
	PricePerNight float64  `json:"price_per_night"`
	Description   string   `json:"description"`
	Features      []string `json:"features"`
	Amenities     []string `json:"amenities"`
}
