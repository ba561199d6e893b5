// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package gen talks to the text-generation backend and decides, per call,
// whether the caller gets generated text or must fall back to a static
// response. Failures are classified, never propagated as panics, and the
// backend is always treated as optional.
package gen

import "context"

// ErrorKind classifies a failed generation attempt. Callers use the kind to
// pick log severity and metrics labels; every kind leads to the same caller
// behavior (use the static fallback).
type ErrorKind string

const (
	// ErrKindNone marks a successful result.
	ErrKindNone ErrorKind = ""
	// ErrKindUnreachable means the backend could not be reached at all
	// (connection refused, DNS failure).
	ErrKindUnreachable ErrorKind = "backend_unreachable"
	// ErrKindTimeout means the backend did not answer within the deadline.
	ErrKindTimeout ErrorKind = "backend_timeout"
	// ErrKindBackendError covers everything else: non-2xx status, malformed
	// response body, or a well-formed response with empty text.
	ErrKindBackendError ErrorKind = "backend_error"
)

// Result is the outcome of one generation call. Exactly one of the two
// shapes holds: Success true with non-empty Text and ErrKindNone, or Success
// false with empty Text and a non-empty ErrKind.
type Result struct {
	Success bool
	Text    string
	ErrKind ErrorKind
	Err     error
}

// Options tune a single generation call. Zero values mean "use the client's
// configured default".
type Options struct {
	Temperature float64
	MaxTokens   int
	Stop        []string
}

// Generator produces text for a fully assembled prompt.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts Options) Result
}
