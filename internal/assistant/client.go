// Kinograph - Content-Based Movie Recommendation Service
// Copyright 2026 Kinograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

// Package assistant backs the sidebar chat and movie quiz with a
// hosted text-generation model.
package assistant

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/kinograph/kinograph/internal/config"
	"github.com/kinograph/kinograph/internal/logging"
)

// ErrDisabled means no API token is configured.
var ErrDisabled = errors.New("assistant disabled")

// Client calls a hosted inference endpoint that accepts
// {"inputs": prompt} and answers with generated text. Retries on
// throttling and transient upstream errors. Safe for concurrent use.
type Client struct {
	url      string
	token    string
	http     *http.Client
	attempts int

	// sleep is swappable so retry tests run without real waits.
	sleep func(time.Duration)
}

// NewClient builds a client from configuration.
func NewClient(cfg config.AssistantConfig) *Client {
	return &Client{
		url:      cfg.URL,
		token:    cfg.Token,
		http:     &http.Client{Timeout: cfg.Timeout},
		attempts: cfg.RetryAttempts,
		sleep:    time.Sleep,
	}
}

// Enabled reports whether completions can reach the model at all.
func (c *Client) Enabled() bool { return c.token != "" }

// generateRequest is the inference payload.
type generateRequest struct {
	Inputs string `json:"inputs"`
}

// generateResponse covers both response shapes the endpoint produces:
// a single object or a one-element array.
type generateResponse struct {
	GeneratedText string `json:"generated_text"`
}

// Complete sends prompt and returns the raw generated text.
// Status 429 and 5xx are retried with linear backoff; the model
// returning 503 while it loads is the usual first-request case.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}

	body, err := json.Marshal(generateRequest{Inputs: prompt})
	if err != nil {
		return "", fmt.Errorf("marshal prompt: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			default:
			}
			c.sleep(time.Duration(attempt-1) * time.Second)
		}

		text, retryable, err := c.once(ctx, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable {
			return "", err
		}
		logging.Debug().Err(err).Int("attempt", attempt).Msg("Assistant completion retrying")
	}
	return "", fmt.Errorf("assistant completion after %d attempts: %w", c.attempts, lastErr)
}

// once performs a single round trip. The second return value reports
// whether the failure is worth retrying.
func (c *Client) once(ctx context.Context, body []byte) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("assistant request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return "", true, fmt.Errorf("assistant status %d", resp.StatusCode)
	default:
		return "", false, fmt.Errorf("assistant status %d", resp.StatusCode)
	}

	// Array shape first, then the single-object shape.
	var list []generateResponse
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0].GeneratedText, false, nil
	}
	var single generateResponse
	if err := json.Unmarshal(raw, &single); err == nil {
		return single.GeneratedText, false, nil
	}
	return "", false, fmt.Errorf("unexpected assistant response shape")
}
