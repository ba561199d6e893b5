// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package nlu wraps the external natural-language-understanding component
// (consumed as an input, not implemented here) and the entity normalizer
// that maps raw extracted values to canonical catalog keys.
package nlu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Entity is one extracted (name, value) pair.
type Entity struct {
	Name  string `json:"entity"`
	Value string `json:"value"`
}

// Classification is the NLU result for one message.
type Classification struct {
	Intent     string   `json:"intent"`
	Confidence float64  `json:"confidence"`
	Entities   []Entity `json:"entities"`
}

// Classifier turns raw user text into an intent label plus named entities.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use.
type Classifier interface {
	Classify(ctx context.Context, text string) (Classification, error)
}

// =============================================================================
// HTTPClassifier
// =============================================================================

// HTTPClassifier calls a Rasa-style model parse endpoint.
//
// The wire format is the Rasa /model/parse response: a nested intent object
// with name and confidence, plus a flat entity list.
type HTTPClassifier struct {
	url    string
	client *http.Client
}

// NewHTTPClassifier creates a classifier for the given parse endpoint URL.
// Pass 0 for the default 10-second timeout.
func NewHTTPClassifier(url string, timeout time.Duration) *HTTPClassifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClassifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type parseRequest struct {
	Text string `json:"text"`
}

type parseResponse struct {
	Intent struct {
		Name       string  `json:"name"`
		Confidence float64 `json:"confidence"`
	} `json:"intent"`
	Entities []struct {
		Entity string `json:"entity"`
		Value  string `json:"value"`
	} `json:"entities"`
}

// Classify implements Classifier.
func (c *HTTPClassifier) Classify(ctx context.Context, text string) (Classification, error) {
	body, err := json.Marshal(parseRequest{Text: text})
	if err != nil {
		return Classification{}, fmt.Errorf("nlu: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Classification{}, fmt.Errorf("nlu: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Classification{}, fmt.Errorf("nlu: call parse endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return Classification{}, fmt.Errorf("nlu: parse endpoint returned %d", resp.StatusCode)
	}

	var parsed parseResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Classification{}, fmt.Errorf("nlu: decode response: %w", err)
	}

	result := Classification{
		Intent:     parsed.Intent.Name,
		Confidence: parsed.Intent.Confidence,
		Entities:   make([]Entity, 0, len(parsed.Entities)),
	}
	for _, e := range parsed.Entities {
		result.Entities = append(result.Entities, Entity{Name: e.Entity, Value: e.Value})
	}
	return result, nil
}
