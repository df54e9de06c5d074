// Kinograph - Content-Based Movie Recommendation Service
// Copyright 2026 Kinograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds all application configuration.
//
// Loading order (Koanf v2, highest priority wins):
//  1. Built-in defaults
//  2. Optional YAML config file (config.yaml)
//  3. Environment variables (SERVER_PORT, OMDB_API_KEY, ...)
//
// Config is immutable after Load() and safe for concurrent reads.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	OMDb      OMDbConfig      `koanf:"omdb"`
	Assistant AssistantConfig `koanf:"assistant"`
	Recommend RecommendConfig `koanf:"recommend"`
	Session   SessionConfig   `koanf:"session"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the listen address.
	Host string `koanf:"host" validate:"required"`

	// Port is the listen port.
	Port int `koanf:"port" validate:"gt=0,lte=65535"`

	// Timeout bounds read/write on the listener.
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// CORSOrigins lists allowed CORS origins.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitReqs is the per-IP request budget per RateLimitWindow.
	RateLimitReqs int `koanf:"rate_limit_reqs" validate:"gt=0"`

	// RateLimitWindow is the rate limit measurement window.
	RateLimitWindow time.Duration `koanf:"rate_limit_window" validate:"gt=0"`

	// AssistantRateLimitReqs is the tighter per-IP budget for assistant
	// endpoints, which fan out to the hosted language model.
	AssistantRateLimitReqs int `koanf:"assistant_rate_limit_reqs" validate:"gt=0"`
}

// CatalogConfig holds the movie catalog source settings.
// The catalog is loaded once at startup; there is no reload path.
type CatalogConfig struct {
	// Path is the CSV catalog file.
	Path string `koanf:"path" validate:"required"`
}

// OMDbConfig holds settings for the OMDb metadata collaborator.
type OMDbConfig struct {
	// URL is the OMDb API base URL.
	URL string `koanf:"url" validate:"required,url"`

	// APIKey authenticates requests. Enrichment is skipped when empty.
	APIKey string `koanf:"api_key"`

	// Timeout is the per-lookup deadline.
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// CacheSize is the max number of cached enrichment responses.
	CacheSize int `koanf:"cache_size" validate:"gt=0"`

	// CacheTTL is how long a cached enrichment stays valid.
	CacheTTL time.Duration `koanf:"cache_ttl" validate:"gt=0"`

	// RequestsPerSecond limits outbound OMDb calls (free tier is metered).
	RequestsPerSecond float64 `koanf:"requests_per_second" validate:"gt=0"`
}

// AssistantConfig holds settings for the hosted language model.
type AssistantConfig struct {
	// URL is the text-generation inference endpoint.
	URL string `koanf:"url" validate:"required,url"`

	// Token is the bearer token. Assistant endpoints degrade when empty.
	Token string `koanf:"token"`

	// Timeout is the per-completion deadline.
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// RetryAttempts bounds retries on 429/5xx responses.
	RetryAttempts int `koanf:"retry_attempts" validate:"gte=1"`
}

// RecommendConfig holds recommendation pipeline settings.
type RecommendConfig struct {
	// K is the number of recommendations returned per query.
	K int `koanf:"k" validate:"gt=0"`

	// MatchCutoff is the minimum close-match ratio (difflib convention).
	MatchCutoff float64 `koanf:"match_cutoff" validate:"gt=0,lte=1"`

	// MatchCandidates caps the "did you mean" candidate list.
	MatchCandidates int `koanf:"match_candidates" validate:"gt=0"`

	// SuggestLimit caps the live-typing suggestion list.
	SuggestLimit int `koanf:"suggest_limit" validate:"gt=0"`

	// EnrichWorkers bounds the parallel enrichment fan-out.
	EnrichWorkers int `koanf:"enrich_workers" validate:"gt=0"`
}

// SessionConfig holds assistant session store settings.
type SessionConfig struct {
	// Path is the badger database directory.
	Path string `koanf:"path" validate:"required"`

	// TTL expires idle sessions.
	TTL time.Duration `koanf:"ttl" validate:"gt=0"`

	// GCInterval is how often badger value-log GC runs.
	GCInterval time.Duration `koanf:"gc_interval" validate:"gt=0"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error fatal disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for structural errors.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
