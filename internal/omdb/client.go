// Kinograph - Content-Based Movie Recommendation Service
// Copyright 2026 Kinograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

// Package omdb talks to the OMDb API for per-title enrichment: poster
// URL, IMDb rating and plot. Enrichment is strictly best-effort; every
// failure mode degrades to "no enrichment" for that title.
package omdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/kinograph/kinograph/internal/cache"
	"github.com/kinograph/kinograph/internal/config"
	"github.com/kinograph/kinograph/internal/logging"
	"github.com/kinograph/kinograph/internal/metrics"
)

var (
	// ErrNoEnrichment means OMDb has no usable record for the title.
	ErrNoEnrichment = errors.New("no enrichment available")

	// ErrDisabled means no API key is configured; lookups are skipped.
	ErrDisabled = errors.New("enrichment disabled")
)

// notAvailable is OMDb's explicit marker for absent field values.
const notAvailable = "N/A"

const breakerName = "omdb-api"

// Enrichment is the subset of OMDb metadata the recommendation cards
// display. Fields OMDb reports as "N/A" are normalized to empty.
type Enrichment struct {
	PosterURL  string `json:"poster_url,omitempty"`
	IMDBRating string `json:"imdb_rating,omitempty"`
	Plot       string `json:"plot,omitempty"`
}

// payload mirrors the OMDb by-title response. OMDb answers 200 even
// for unknown titles and signals failure through Response/Error.
type payload struct {
	Response   string `json:"Response"`
	Error      string `json:"Error"`
	Poster     string `json:"Poster"`
	IMDBRating string `json:"imdbRating"`
	Plot       string `json:"Plot"`
}

// Client is a rate-limited, circuit-broken, caching OMDb client.
// Safe for concurrent use.
//
// The circuit breaker uses real time for its recovery timeout; tests
// exercise failure handling through the HTTP layer instead of mocking
// the breaker.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	cache   *cache.LRU[Enrichment]
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[Enrichment]
}

// NewClient builds a client from configuration. With an empty API key
// the client stays constructible but every lookup returns ErrDisabled.
func NewClient(cfg config.OMDbConfig) *Client {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[Enrichment](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 6 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		// A clean "movie not found" answer is a healthy upstream.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNoEnrichment)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Warn().Str("from", fromStr).Str("to", toStr).Msg("OMDb circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	burst := int(cfg.RequestsPerSecond)
	if burst < 1 {
		burst = 1
	}

	return &Client{
		baseURL: cfg.URL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout},
		cache:   cache.NewLRU[Enrichment](cfg.CacheSize, cfg.CacheTTL),
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
		cb:      cb,
	}
}

// Enabled reports whether lookups can reach OMDb at all.
func (c *Client) Enabled() bool { return c.apiKey != "" }

// Lookup fetches enrichment for a title. Successful results are
// cached by lowercased title.
func (c *Client) Lookup(ctx context.Context, title string) (Enrichment, error) {
	if !c.Enabled() {
		return Enrichment{}, ErrDisabled
	}

	key := strings.ToLower(title)
	if e, ok := c.cache.Get(key); ok {
		metrics.EnrichmentCacheHits.Inc()
		return e, nil
	}
	metrics.EnrichmentCacheMisses.Inc()

	e, err := c.cb.Execute(func() (Enrichment, error) {
		return c.fetch(ctx, title)
	})
	switch {
	case err == nil:
		metrics.EnrichmentRequests.WithLabelValues("hit").Inc()
		c.cache.Add(key, e)
		return e, nil
	case errors.Is(err, ErrNoEnrichment):
		metrics.EnrichmentRequests.WithLabelValues("miss").Inc()
		return Enrichment{}, err
	default:
		metrics.EnrichmentRequests.WithLabelValues("error").Inc()
		logging.Debug().Err(err).Str("title", title).Msg("OMDb lookup failed")
		return Enrichment{}, fmt.Errorf("omdb lookup %q: %w", title, err)
	}
}

// fetch performs one rate-limited HTTP round trip.
func (c *Client) fetch(ctx context.Context, title string) (Enrichment, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Enrichment{}, fmt.Errorf("rate limiter: %w", err)
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return Enrichment{}, fmt.Errorf("parse base url: %w", err)
	}
	q := u.Query()
	q.Set("t", title)
	q.Set("apikey", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Enrichment{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Enrichment{}, fmt.Errorf("omdb request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Enrichment{}, fmt.Errorf("omdb status %d", resp.StatusCode)
	}

	var p payload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return Enrichment{}, fmt.Errorf("decode omdb response: %w", err)
	}
	if p.Response != "True" {
		return Enrichment{}, fmt.Errorf("%s: %w", p.Error, ErrNoEnrichment)
	}

	return Enrichment{
		PosterURL:  clean(p.Poster),
		IMDBRating: clean(p.IMDBRating),
		Plot:       clean(p.Plot),
	}, nil
}

// clean maps OMDb's "N/A" marker to the empty string.
func clean(v string) string {
	if v == notAvailable {
		return ""
	}
	return v
}

func stateToString(s gobreaker.State) string {
	switch s {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
