// Kinograph - Content-Based Movie Recommendation Service
// Copyright 2026 Kinograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

package resolver

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kinograph/kinograph/internal/logging"
	"github.com/kinograph/kinograph/internal/metrics"
)

// ErrNoMatch is returned when no title clears the match cutoff.
var ErrNoMatch = errors.New("no close match")

// Candidate is one scored title from a close-match query.
type Candidate struct {
	Index int     `json:"index"`
	Title string  `json:"title"`
	Ratio float64 `json:"ratio"`
}

// Resolver resolves queries against a fixed title list. Immutable
// after New; safe for concurrent use.
type Resolver struct {
	titles        []string
	cutoff        float64
	maxCandidates int
}

// New builds a resolver over titles in catalog order. cutoff is the
// minimum acceptable ratio, maxCandidates caps the "did you mean"
// list.
func New(titles []string, cutoff float64, maxCandidates int) *Resolver {
	return &Resolver{
		titles:        titles,
		cutoff:        cutoff,
		maxCandidates: maxCandidates,
	}
}

// CloseMatch finds the titles closest to query. The best candidate is
// first; the full candidate list (up to the configured cap) is
// returned alongside for confirmation UIs. Matching is case-sensitive,
// so "avatar" and "Avatar" are close rather than equal.
//
// Returns ErrNoMatch when nothing clears the cutoff.
func (r *Resolver) CloseMatch(query string) (Candidate, []Candidate, error) {
	if query == "" {
		metrics.ResolverOutcomes.WithLabelValues("no_match").Inc()
		return Candidate{}, nil, fmt.Errorf("empty query: %w", ErrNoMatch)
	}

	var candidates []Candidate
	for i, title := range r.titles {
		ratio := Ratio(query, title)
		if ratio >= r.cutoff {
			candidates = append(candidates, Candidate{Index: i, Title: title, Ratio: ratio})
		}
	}
	if len(candidates) == 0 {
		metrics.ResolverOutcomes.WithLabelValues("no_match").Inc()
		logging.Debug().Str("query", query).Msg("Resolver found no close match")
		return Candidate{}, nil, fmt.Errorf("query %q: %w", query, ErrNoMatch)
	}

	// Best ratio first; equal ratios keep catalog order.
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].Ratio > candidates[b].Ratio
	})
	if len(candidates) > r.maxCandidates {
		candidates = candidates[:r.maxCandidates]
	}

	metrics.ResolverOutcomes.WithLabelValues("matched").Inc()
	return candidates[0], candidates, nil
}

// Suggest returns up to limit titles containing query as a
// case-insensitive substring, in catalog order. An empty query yields
// no suggestions.
func (r *Resolver) Suggest(query string, limit int) []string {
	if query == "" || limit <= 0 {
		return nil
	}
	needle := strings.ToLower(query)

	var out []string
	for _, title := range r.titles {
		if strings.Contains(strings.ToLower(title), needle) {
			out = append(out, title)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}
