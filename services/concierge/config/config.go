// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config holds the service configuration and the embedded lookup
// tables (city synonyms, treatment terms, scripted topics). Defaults are
// embedded YAML; the environment overrides individual values at startup.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultConfigYAML []byte

// Config is the full service configuration. Immutable after Load.
type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	NLU struct {
		URL            string `yaml:"url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"nlu"`

	Catalog struct {
		Backend         string `yaml:"backend"`
		WeaviateScheme  string `yaml:"weaviate_scheme"`
		WeaviateHost    string `yaml:"weaviate_host"`
		CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	} `yaml:"catalog"`

	Generation struct {
		BaseURL           string  `yaml:"base_url"`
		Model             string  `yaml:"model"`
		Temperature       float64 `yaml:"temperature"`
		TimeoutSeconds    int     `yaml:"timeout_seconds"`
		MaxTokens         int     `yaml:"max_tokens"`
		FallbackMaxTokens int     `yaml:"fallback_max_tokens"`
	} `yaml:"generation"`

	Session struct {
		Backend    string `yaml:"backend"`
		RedisURL   string `yaml:"redis_url"`
		TTLMinutes int    `yaml:"ttl_minutes"`
	} `yaml:"session"`

	Persistence struct {
		Backend       string `yaml:"backend"`
		MongoURI      string `yaml:"mongo_uri"`
		MongoDatabase string `yaml:"mongo_database"`
		QueueSize     int    `yaml:"queue_size"`
	} `yaml:"persistence"`

	Turn struct {
		DeadlineSeconds  int  `yaml:"deadline_seconds"`
		ResultLimit      int  `yaml:"result_limit"`
		ElaborateResults bool `yaml:"elaborate_results"`
	} `yaml:"turn"`
}

// Load parses the embedded defaults and applies environment overrides.
//
// # Description
//
// The generation timeout is deliberately larger than the NLU and catalog
// timeouts — generation is expected to be slower. The turn deadline must
// cover one catalog call plus one generation call with margin; Load
// validates that relationship rather than silently accepting a deadline
// that could never be met.
func Load() (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultConfigYAML, &cfg); err != nil {
		return nil, fmt.Errorf("parsing defaults.yaml: %w", err)
	}
	applyEnv(&cfg)

	if cfg.Turn.DeadlineSeconds <= cfg.Generation.TimeoutSeconds {
		return nil, fmt.Errorf("turn deadline (%ds) must exceed the generation timeout (%ds)",
			cfg.Turn.DeadlineSeconds, cfg.Generation.TimeoutSeconds)
	}
	return &cfg, nil
}

// applyEnv overrides individual fields from CONCIERGE_* variables.
// Unset or malformed values keep the default.
func applyEnv(cfg *Config) {
	envInt("CONCIERGE_PORT", &cfg.Server.Port)

	envString("CONCIERGE_NLU_URL", &cfg.NLU.URL)
	envInt("CONCIERGE_NLU_TIMEOUT_SECONDS", &cfg.NLU.TimeoutSeconds)

	envString("CONCIERGE_CATALOG_BACKEND", &cfg.Catalog.Backend)
	envString("CONCIERGE_WEAVIATE_SCHEME", &cfg.Catalog.WeaviateScheme)
	envString("CONCIERGE_WEAVIATE_HOST", &cfg.Catalog.WeaviateHost)
	envInt("CONCIERGE_CACHE_TTL_SECONDS", &cfg.Catalog.CacheTTLSeconds)

	envString("OLLAMA_BASE_URL", &cfg.Generation.BaseURL)
	envString("OLLAMA_MODEL", &cfg.Generation.Model)
	envFloat("CONCIERGE_GEN_TEMPERATURE", &cfg.Generation.Temperature)
	envInt("CONCIERGE_GEN_TIMEOUT_SECONDS", &cfg.Generation.TimeoutSeconds)
	envInt("CONCIERGE_GEN_MAX_TOKENS", &cfg.Generation.MaxTokens)

	envString("CONCIERGE_SESSION_BACKEND", &cfg.Session.Backend)
	envString("REDIS_URL", &cfg.Session.RedisURL)
	envInt("CONCIERGE_SESSION_TTL_MINUTES", &cfg.Session.TTLMinutes)

	envString("CONCIERGE_PERSISTENCE_BACKEND", &cfg.Persistence.Backend)
	envString("MONGO_URI", &cfg.Persistence.MongoURI)
	envString("MONGO_DATABASE", &cfg.Persistence.MongoDatabase)
	envInt("CONCIERGE_LOG_QUEUE_SIZE", &cfg.Persistence.QueueSize)

	envInt("CONCIERGE_TURN_DEADLINE_SECONDS", &cfg.Turn.DeadlineSeconds)
	envInt("CONCIERGE_RESULT_LIMIT", &cfg.Turn.ResultLimit)
}

// NLUTimeout returns the NLU client timeout as a duration.
func (c *Config) NLUTimeout() time.Duration {
	return time.Duration(c.NLU.TimeoutSeconds) * time.Second
}

// CacheTTL returns the catalog query cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Catalog.CacheTTLSeconds) * time.Second
}

// GenerationTimeout returns the generation backend timeout as a duration.
func (c *Config) GenerationTimeout() time.Duration {
	return time.Duration(c.Generation.TimeoutSeconds) * time.Second
}

// SessionTTL returns the external session store TTL as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLMinutes) * time.Minute
}

// TurnDeadline returns the per-turn total deadline as a duration.
func (c *Config) TurnDeadline() time.Duration {
	return time.Duration(c.Turn.DeadlineSeconds) * time.Second
}

func envString(name string, dst *string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func envInt(name string, dst *int) {
	if v := os.Getenv(name); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			*dst = parsed
		}
	}
}

func envFloat(name string, dst *float64) {
	if v := os.Getenv(name); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 {
			*dst = parsed
		}
	}
}
