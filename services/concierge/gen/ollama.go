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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

// OllamaClient is a Generator backed by an Ollama server's /api/generate
// endpoint, called in non-streaming mode.
//
// # Description
//
// Every call enforces the configured timeout through both the HTTP client and
// the request context, so one slow backend call can never hold a conversation
// turn past its deadline. Failures are classified into the three ErrorKind
// buckets by inspecting the transport error before the response body is ever
// touched.
type OllamaClient struct {
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
	client      *http.Client
	logger      *slog.Logger
}

// OllamaConfig collects the construction parameters for an OllamaClient.
type OllamaConfig struct {
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// NewOllamaClient creates a client. A zero timeout defaults to 60 seconds.
func NewOllamaClient(cfg OllamaConfig, logger *slog.Logger) *OllamaClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OllamaClient{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
		client:      &http.Client{Timeout: cfg.Timeout},
		logger:      logger,
	}
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64  `json:"temperature"`
	NumPredict  int      `json:"num_predict,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate implements Generator. It never returns a Result with Success true
// and empty text; an empty completion is a backend error.
func (c *OllamaClient) Generate(ctx context.Context, prompt string, opts Options) Result {
	start := time.Now()

	temperature := c.temperature
	if opts.Temperature > 0 {
		temperature = opts.Temperature
	}
	maxTokens := c.maxTokens
	if opts.MaxTokens > 0 {
		maxTokens = opts.MaxTokens
	}

	body, err := json.Marshal(ollamaRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
		Options: ollamaOptions{
			Temperature: temperature,
			NumPredict:  maxTokens,
			Stop:        opts.Stop,
		},
	})
	if err != nil {
		return c.failure(ErrKindBackendError, fmt.Errorf("gen: marshal request: %w", err), start)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return c.failure(ErrKindBackendError, fmt.Errorf("gen: build request: %w", err), start)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		kind := classifyTransportError(err)
		return c.failure(kind, fmt.Errorf("gen: call backend: %w", err), start)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return c.failure(ErrKindBackendError, fmt.Errorf("gen: backend returned %d", resp.StatusCode), start)
	}

	var parsed ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return c.failure(ErrKindBackendError, fmt.Errorf("gen: decode response: %w", err), start)
	}

	text := strings.TrimSpace(parsed.Response)
	if text == "" {
		return c.failure(ErrKindBackendError, errors.New("gen: backend returned empty text"), start)
	}

	recordGeneration(string(ErrKindNone), time.Since(start))
	return Result{Success: true, Text: text, ErrKind: ErrKindNone}
}

func (c *OllamaClient) failure(kind ErrorKind, err error, start time.Time) Result {
	c.logger.Warn("generation failed",
		"kind", string(kind),
		"error", err,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	recordGeneration(string(kind), time.Since(start))
	return Result{Success: false, ErrKind: kind, Err: err}
}

// classifyTransportError maps a client.Do error to an ErrorKind. Deadline
// expiry (either the context's or the HTTP client's) is a timeout; anything
// that never produced a response is unreachable.
func classifyTransportError(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrKindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrKindTimeout
	}
	return ErrKindUnreachable
}
