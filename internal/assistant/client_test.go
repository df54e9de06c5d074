// Kinograph - Content-Based Movie Recommendation Service
// Copyright 2026 Kinograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

package assistant

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

func testClient(url string) *Client {
	c := NewClient(config.AssistantConfig{
		URL:           url,
		Token:         "test-token",
		Timeout:       2 * time.Second,
		RetryAttempts: 3,
	})
	c.sleep = func(time.Duration) {}
	return c
}

func TestCompleteArrayShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}
		w.Write([]byte(`[{"generated_text":"The Godfather."}]`))
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).Complete(context.Background(), "best mafia movie?")
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if got != "The Godfather." {
		t.Errorf("Complete() = %q", got)
	}
}

func TestCompleteObjectShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"generated_text":"Casablanca."}`))
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if got != "Casablanca." {
		t.Errorf("Complete() = %q", got)
	}
}

func TestCompleteRetriesOnModelLoading(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[{"generated_text":"finally"}]`))
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if got != "finally" {
		t.Errorf("Complete() = %q", got)
	}
	if calls.Load() != 3 {
		t.Errorf("upstream calls = %d, want 3", calls.Load())
	}
}

func TestCompleteExhaustsRetries(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).Complete(context.Background(), "prompt"); err == nil {
		t.Fatal("Complete() = nil error against throttling upstream")
	}
	if calls.Load() != 3 {
		t.Errorf("upstream calls = %d, want all 3 attempts", calls.Load())
	}
}

func TestCompleteDoesNotRetryClientError(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).Complete(context.Background(), "prompt"); err == nil {
		t.Fatal("Complete() = nil error on 401")
	}
	if calls.Load() != 1 {
		t.Errorf("upstream calls = %d, want no retries on 4xx", calls.Load())
	}
}

func TestCompleteDisabled(t *testing.T) {
	c := NewClient(config.AssistantConfig{
		URL:           "http://example.invalid",
		Timeout:       time.Second,
		RetryAttempts: 1,
	})
	if c.Enabled() {
		t.Error("Enabled() = true without a token")
	}
	_, err := c.Complete(context.Background(), "prompt")
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("err = %v, want ErrDisabled", err)
	}
}
