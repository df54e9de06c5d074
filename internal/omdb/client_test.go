// Kinograph - Content-Based Movie Recommendation Service
// Copyright 2026 Kinograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

package omdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kinograph/kinograph/internal/config"
)

func testConfig(url string) config.OMDbConfig {
	return config.OMDbConfig{
		URL:               url,
		APIKey:            "test-key",
		Timeout:           2 * time.Second,
		CacheSize:         16,
		CacheTTL:          time.Minute,
		RequestsPerSecond: 1000,
	}
}

func TestLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("t"); got != "Avatar" {
			t.Errorf("t param = %q, want Avatar", got)
		}
		if got := r.URL.Query().Get("apikey"); got != "test-key" {
			t.Errorf("apikey param = %q, want test-key", got)
		}
		w.Write([]byte(`{"Response":"True","Poster":"http://img/avatar.jpg","imdbRating":"7.9","Plot":"A marine on an alien moon."}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	e, err := c.Lookup(context.Background(), "Avatar")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if e.PosterURL != "http://img/avatar.jpg" || e.IMDBRating != "7.9" || e.Plot != "A marine on an alien moon." {
		t.Errorf("enrichment = %+v", e)
	}
}

func TestLookupNormalizesNA(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response":"True","Poster":"N/A","imdbRating":"N/A","Plot":"Something."}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	e, err := c.Lookup(context.Background(), "Obscure")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if e.PosterURL != "" || e.IMDBRating != "" {
		t.Errorf("N/A fields not normalized: %+v", e)
	}
	if e.Plot != "Something." {
		t.Errorf("Plot = %q", e.Plot)
	}
}

func TestLookupMovieNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response":"False","Error":"Movie not found!"}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	_, err := c.Lookup(context.Background(), "Nope")
	if !errors.Is(err, ErrNoEnrichment) {
		t.Errorf("err = %v, want ErrNoEnrichment", err)
	}
}

func TestLookupServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	_, err := c.Lookup(context.Background(), "Avatar")
	if err == nil {
		t.Fatal("Lookup() = nil error, want failure")
	}
	if errors.Is(err, ErrNoEnrichment) {
		t.Error("server error must not read as a clean miss")
	}
}

func TestLookupCaches(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"Response":"True","Poster":"http://img/p.jpg","imdbRating":"8.0","Plot":"Plot."}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	ctx := context.Background()

	for _, title := range []string{"Avatar", "avatar", "AVATAR"} {
		if _, err := c.Lookup(ctx, title); err != nil {
			t.Fatalf("Lookup(%q) error: %v", title, err)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("upstream calls = %d, want 1 (case-insensitive cache)", got)
	}
}

func TestLookupDisabled(t *testing.T) {
	cfg := testConfig("http://example.invalid")
	cfg.APIKey = ""

	c := NewClient(cfg)
	if c.Enabled() {
		t.Error("Enabled() = true without an API key")
	}
	_, err := c.Lookup(context.Background(), "Avatar")
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("err = %v, want ErrDisabled", err)
	}
}

func TestLookupContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"Response":"True"}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := c.Lookup(ctx, "Avatar"); err == nil {
		t.Error("Lookup() with expired context = nil error")
	}
}

func TestCircuitOpensAfterRepeatedFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	ctx := context.Background()

	sawOpen := false
	for i := 0; i < 20; i++ {
		// Distinct titles so the cache stays out of the way.
		_, err := c.Lookup(ctx, "Title-"+string(rune('A'+i)))
		if err == nil {
			t.Fatal("Lookup() = nil error against failing upstream")
		}
		if c.cb.State().String() == "open" {
			sawOpen = true
			break
		}
	}
	if !sawOpen {
		t.Error("circuit breaker never opened under sustained failures")
	}
}
