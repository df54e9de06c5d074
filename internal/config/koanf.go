// Kinograph - Content-Based Movie Recommendation Service
// Copyright 2026 Kinograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

// Package config provides layered configuration loading via Koanf v2.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/kinograph/config.yaml",
	"/etc/kinograph/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// envSections maps environment variable prefixes to koanf sections.
// SERVER_PORT -> server.port, OMDB_API_KEY -> omdb.api_key, and so on.
var envSections = map[string]string{
	"SERVER":    "server",
	"CATALOG":   "catalog",
	"OMDB":      "omdb",
	"ASSISTANT": "assistant",
	"RECOMMEND": "recommend",
	"SESSION":   "session",
	"LOGGING":   "logging",
}

// defaultConfig returns a Config with all defaults applied.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:                   "0.0.0.0",
			Port:                   8643,
			Timeout:                30 * time.Second,
			CORSOrigins:            []string{"*"},
			RateLimitReqs:          300,
			RateLimitWindow:        time.Minute,
			AssistantRateLimitReqs: 30,
		},
		Catalog: CatalogConfig{
			Path: "movies.csv",
		},
		OMDb: OMDbConfig{
			URL:               "http://www.omdbapi.com/",
			APIKey:            "",
			Timeout:           5 * time.Second,
			CacheSize:         2048,
			CacheTTL:          24 * time.Hour,
			RequestsPerSecond: 5,
		},
		Assistant: AssistantConfig{
			URL:           "https://api-inference.huggingface.co/models/HuggingFaceH4/zephyr-7b-beta",
			Token:         "",
			Timeout:       30 * time.Second,
			RetryAttempts: 3,
		},
		Recommend: RecommendConfig{
			K:               10,
			MatchCutoff:     0.6,
			MatchCandidates: 3,
			SuggestLimit:    10,
			EnrichWorkers:   4,
		},
		Session: SessionConfig{
			Path:       "/data/sessions",
			TTL:        24 * time.Hour,
			GCInterval: 10 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
// defaults, then an optional YAML file, then environment variables.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile returns the first config file found, or empty string.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
		return ""
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransform maps environment variable names onto koanf paths.
// Unknown prefixes are dropped so unrelated environment noise cannot
// leak into the configuration.
func envTransform(name string) string {
	section, rest, found := strings.Cut(name, "_")
	if !found {
		return ""
	}
	prefix, ok := envSections[section]
	if !ok {
		return ""
	}
	return prefix + "." + strings.ToLower(rest)
}
