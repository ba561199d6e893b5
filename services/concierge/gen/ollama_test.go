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
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, timeout time.Duration) *OllamaClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOllamaClient(OllamaConfig{
		BaseURL:     srv.URL,
		Model:       "llama3.1:8b",
		Temperature: 0.7,
		MaxTokens:   512,
		Timeout:     timeout,
	}, nil)
}

func TestGenerateSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %s, want /api/generate", r.URL.Path)
		}
		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Stream {
			t.Error("stream should be false")
		}
		if req.Model != "llama3.1:8b" {
			t.Errorf("model = %q", req.Model)
		}
		_, _ = w.Write([]byte(`{"response": "Antalya'da üç klinik bulabildim.", "done": true}`))
	}, 5*time.Second)

	res := c.Generate(context.Background(), "test prompt", Options{})
	if !res.Success {
		t.Fatalf("expected success, got kind=%s err=%v", res.ErrKind, res.Err)
	}
	if res.Text != "Antalya'da üç klinik bulabildim." {
		t.Errorf("text = %q", res.Text)
	}
	if res.ErrKind != ErrKindNone {
		t.Errorf("ErrKind = %q, want none", res.ErrKind)
	}
}

func TestGeneratePerCallOptionsOverrideDefaults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.Options.NumPredict != 192 {
			t.Errorf("num_predict = %d, want 192", req.Options.NumPredict)
		}
		if req.Options.Temperature != 0.3 {
			t.Errorf("temperature = %v, want 0.3", req.Options.Temperature)
		}
		if len(req.Options.Stop) != 1 || req.Options.Stop[0] != "[KULLANICI]" {
			t.Errorf("stop = %v", req.Options.Stop)
		}
		_, _ = w.Write([]byte(`{"response": "tamam", "done": true}`))
	}, 5*time.Second)

	res := c.Generate(context.Background(), "p", Options{
		Temperature: 0.3,
		MaxTokens:   192,
		Stop:        []string{"[KULLANICI]"},
	})
	if !res.Success {
		t.Fatalf("expected success, got %v", res.Err)
	}
}

func TestGenerateEmptyTextIsBackendError(t *testing.T) {
	// A 200 with a well-formed body but empty completion must not count as
	// success; the caller would otherwise send an empty reply to the user.
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response": "   ", "done": true}`))
	}, 5*time.Second)

	res := c.Generate(context.Background(), "p", Options{})
	if res.Success {
		t.Fatal("expected failure for empty completion")
	}
	if res.ErrKind != ErrKindBackendError {
		t.Errorf("ErrKind = %q, want %q", res.ErrKind, ErrKindBackendError)
	}
	if res.Text != "" {
		t.Errorf("failed result carries text %q", res.Text)
	}
}

func TestGenerateNon2xxIsBackendError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}, 5*time.Second)

	res := c.Generate(context.Background(), "p", Options{})
	if res.Success || res.ErrKind != ErrKindBackendError {
		t.Errorf("got success=%v kind=%q, want backend_error", res.Success, res.ErrKind)
	}
}

func TestGenerateMalformedJSONIsBackendError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response": `))
	}, 5*time.Second)

	res := c.Generate(context.Background(), "p", Options{})
	if res.Success || res.ErrKind != ErrKindBackendError {
		t.Errorf("got success=%v kind=%q, want backend_error", res.Success, res.ErrKind)
	}
}

func TestGenerateTimeoutClassified(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(`{"response": "geç kaldım", "done": true}`))
	}, 50*time.Millisecond)

	res := c.Generate(context.Background(), "p", Options{})
	if res.Success {
		t.Fatal("expected timeout failure")
	}
	if res.ErrKind != ErrKindTimeout {
		t.Errorf("ErrKind = %q, want %q", res.ErrKind, ErrKindTimeout)
	}
}

func TestGenerateUnreachableClassified(t *testing.T) {
	// Port reserved then released: nothing listens there.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewOllamaClient(OllamaConfig{BaseURL: url, Model: "m", Timeout: 2 * time.Second}, nil)
	res := c.Generate(context.Background(), "p", Options{})
	if res.Success {
		t.Fatal("expected unreachable failure")
	}
	if res.ErrKind != ErrKindUnreachable {
		t.Errorf("ErrKind = %q, want %q", res.ErrKind, ErrKindUnreachable)
	}
}

func TestPromptRenderSectionsInOrder(t *testing.T) {
	p := Prompt{Context: "BULUNAN KLİNİKLER:\n1. X", User: "klinik arıyorum"}
	out := p.Render()

	sys := strings.Index(out, "[SİSTEM]")
	ctxIdx := strings.Index(out, "[BAĞLAM]")
	user := strings.Index(out, "[KULLANICI]")
	asst := strings.Index(out, "[ASİSTAN]")
	if sys < 0 || ctxIdx < 0 || user < 0 || asst < 0 {
		t.Fatalf("missing section in:\n%s", out)
	}
	if !(sys < ctxIdx && ctxIdx < user && user < asst) {
		t.Errorf("sections out of order in:\n%s", out)
	}
	if !strings.HasSuffix(out, "[ASİSTAN]\n") {
		t.Errorf("prompt must end with an open assistant section, got:\n%s", out)
	}
}

func TestPromptRenderOmitsEmptyContext(t *testing.T) {
	out := Prompt{User: "merhaba"}.Render()
	if strings.Contains(out, "[BAĞLAM]") {
		t.Errorf("empty context must drop the section:\n%s", out)
	}
	if !strings.Contains(out, SystemInstruction) {
		t.Error("default system instruction missing")
	}
}
