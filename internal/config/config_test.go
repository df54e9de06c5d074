// Kinograph - Content-Based Movie Recommendation Service
// Copyright 2026 Kinograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"empty catalog path", func(c *Config) { c.Catalog.Path = "" }},
		{"bad omdb url", func(c *Config) { c.OMDb.URL = "not a url" }},
		{"zero enrich workers", func(c *Config) { c.Recommend.EnrichWorkers = 0 }},
		{"cutoff above one", func(c *Config) { c.Recommend.MatchCutoff = 1.5 }},
		{"unknown log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("OMDB_API_KEY", "secret")
	t.Setenv("RECOMMEND_K", "5")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.OMDb.APIKey != "secret" {
		t.Errorf("OMDb.APIKey = %q, want %q", cfg.OMDb.APIKey, "secret")
	}
	if cfg.Recommend.K != 5 {
		t.Errorf("Recommend.K = %d, want 5", cfg.Recommend.K)
	}
	if cfg.Session.TTL != time.Hour {
		t.Errorf("Session.TTL = %v, want 1h", cfg.Session.TTL)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  port: 7777\nrecommend:\n  k: 8\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("Server.Port = %d, want 7777 from file", cfg.Server.Port)
	}
	if cfg.Recommend.K != 8 {
		t.Errorf("Recommend.K = %d, want 8 from file", cfg.Recommend.K)
	}
	// Untouched keys keep defaults.
	if cfg.Recommend.MatchCutoff != 0.6 {
		t.Errorf("Recommend.MatchCutoff = %v, want default 0.6", cfg.Recommend.MatchCutoff)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 7777\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("SERVER_PORT", "8888")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 8888 {
		t.Errorf("Server.Port = %d, want env override 8888", cfg.Server.Port)
	}
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"SERVER_PORT", "server.port"},
		{"OMDB_API_KEY", "omdb.api_key"},
		{"SESSION_GC_INTERVAL", "session.gc_interval"},
		{"HOME", ""},
		{"PATH", ""},
		{"UNRELATED_THING", ""},
	}

	for _, tt := range tests {
		if got := envTransform(tt.name); got != tt.want {
			t.Errorf("envTransform(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
