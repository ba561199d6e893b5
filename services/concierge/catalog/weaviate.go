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

// =============================================================================
// WeaviateStore — Catalog Backed by Weaviate
// =============================================================================
//
// The catalog lives in two Weaviate classes (Clinic, Hotel). Searches are
// metadata-only: a single native equality filter on city plus a record cap.
// No vector search is involved — the engine does the remaining filtering
// in-process, so the store stays a dumb, fast record source.
//
// Tag sets (treatments, features, amenities) are stored as comma-separated
// text properties, the same flat layout the ingestion scripts write, and are
// split on read.

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
)

const (
	clinicClass = "Clinic"
	hotelClass  = "Hotel"
)

// WeaviateStore implements Store against a Weaviate instance.
//
// # Thread Safety
//
// Safe for concurrent use; the underlying client is stateless per request.
type WeaviateStore struct {
	client *weaviate.Client
	logger *slog.Logger
}

// NewWeaviateStore connects to Weaviate at scheme://host.
//
// # Inputs
//
//   - scheme: "http" or "https".
//   - host: Host and port, e.g. "localhost:8080".
//   - logger: May be nil.
//
// # Outputs
//
//   - *WeaviateStore: Ready-to-use store.
//   - error: Non-nil if the client configuration is rejected.
func NewWeaviateStore(scheme, host string, logger *slog.Logger) (*WeaviateStore, error) {
	client, err := weaviate.NewClient(weaviate.Config{Scheme: scheme, Host: host})
	if err != nil {
		return nil, fmt.Errorf("weaviate client: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WeaviateStore{client: client, logger: logger}, nil
}

// Clinics implements Store.
func (s *WeaviateStore) Clinics(ctx context.Context, city string, limit int) ([]Clinic, error) {
	objects, err := s.fetch(ctx, clinicClass, city, limit,
		"name", "city", "country", "rating", "phone", "address", "treatments")
	if err != nil {
		return nil, err
	}

	clinics := make([]Clinic, 0, len(objects))
	for _, obj := range objects {
		clinics = append(clinics, Clinic{
			ID:         objString(obj, "_id"),
			Name:       objString(obj, "name"),
			City:       objString(obj, "city"),
			Country:    objString(obj, "country"),
			Rating:     objFloat(obj, "rating"),
			Phone:      objString(obj, "phone"),
			Address:    objString(obj, "address"),
			Treatments: splitTags(objString(obj, "treatments")),
		})
	}
	return clinics, nil
}

// Hotels implements Store.
func (s *WeaviateStore) Hotels(ctx context.Context, city string, limit int) ([]Hotel, error) {
	objects, err := s.fetch(ctx, hotelClass, city, limit,
		"name", "city", "country", "type", "rating", "price_per_night", "description", "features", "amenities")
	if err != nil {
		return nil, err
	}

	hotels := make([]Hotel, 0, len(objects))
	for _, obj := range objects {
		hotels = append(hotels, Hotel{
			ID:            objString(obj, "_id"),
			Name:          objString(obj, "name"),
			City:          objString(obj, "city"),
			Country:       objString(obj, "country"),
			Type:          objString(obj, "type"),
			Rating:        objFloat(obj, "rating"),
			PricePerNight: objFloat(obj, "price_per_night"),
			Description:   objString(obj, "description"),
			Features:      splitTags(objString(obj, "features")),
			Amenities:     splitTags(objString(obj, "amenities")),
		})
	}
	return hotels, nil
}

// ClinicByID implements Store.
func (s *WeaviateStore) ClinicByID(ctx context.Context, id string) (*Clinic, error) {
	obj, err := s.fetchByID(ctx, clinicClass, id)
	if err != nil {
		return nil, err
	}
	return &Clinic{
		ID:         id,
		Name:       objString(obj, "name"),
		City:       objString(obj, "city"),
		Country:    objString(obj, "country"),
		Rating:     objFloat(obj, "rating"),
		Phone:      objString(obj, "phone"),
		Address:    objString(obj, "address"),
		Treatments: splitTags(objString(obj, "treatments")),
	}, nil
}

// HotelByID implements Store.
func (s *WeaviateStore) HotelByID(ctx context.Context, id string) (*Hotel, error) {
	obj, err := s.fetchByID(ctx, hotelClass, id)
	if err != nil {
		return nil, err
	}
	return &Hotel{
		ID:            id,
		Name:          objString(obj, "name"),
		City:          objString(obj, "city"),
		Country:       objString(obj, "country"),
		Type:          objString(obj, "type"),
		Rating:        objFloat(obj, "rating"),
		PricePerNight: objFloat(obj, "price_per_night"),
		Description:   objString(obj, "description"),
		Features:      splitTags(objString(obj, "features")),
		Amenities:     splitTags(objString(obj, "amenities")),
	}, nil
}

// =============================================================================
// GraphQL Plumbing
// =============================================================================

// fetch runs one GraphQL Get against className with an optional city
// equality filter and returns the raw property maps, each augmented with the
// object id under the "_id" key.
func (s *WeaviateStore) fetch(ctx context.Context, className, city string, limit int, propNames ...string) ([]map[string]any, error) {
	fields := make([]graphql.Field, 0, len(propNames)+1)
	for _, name := range propNames {
		fields = append(fields, graphql.Field{Name: name})
	}
	fields = append(fields, graphql.Field{
		Name:   "_additional",
		Fields: []graphql.Field{{Name: "id"}},
	})

	query := s.client.GraphQL().Get().
		WithClassName(className).
		WithFields(fields...).
		WithLimit(limit)
	if city != "" {
		query = query.WithWhere(filters.Where().
			WithPath([]string{"city"}).
			WithOperator(filters.Equal).
			WithValueText(city))
	}

	resp, err := query.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("weaviate get %s: %w", className, err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("weaviate get %s: %s", className, resp.Errors[0].Message)
	}

	get, ok := resp.Data["Get"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("weaviate get %s: malformed response", className)
	}
	items, _ := get[className].([]any)

	objects := make([]map[string]any, 0, len(items))
	for _, item := range items {
		props, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if additional, ok := props["_additional"].(map[string]any); ok {
			props["_id"], _ = additional["id"].(string)
		}
		objects = append(objects, props)
	}
	return objects, nil
}

// fetchByID reads a single object's properties via the objects API.
func (s *WeaviateStore) fetchByID(ctx context.Context, className, id string) (map[string]any, error) {
	objects, err := s.client.Data().ObjectsGetter().
		WithClassName(className).
		WithID(id).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("weaviate object %s/%s: %w", className, id, err)
	}
	if len(objects) == 0 {
		return nil, ErrNotFound
	}
	props, ok := objects[0].Properties.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("weaviate object %s/%s: malformed properties", className, id)
	}
	return props, nil
}

// =============================================================================
// Property Helpers
// =============================================================================

func objString(obj map[string]any, key string) string {
	v, _ := obj[key].(string)
	return v
}

func objFloat(obj map[string]any, key string) float64 {
	switch v := obj[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// splitTags splits a comma-separated tag property the way the ingestion
// scripts write it. Empty input yields nil.
func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}
