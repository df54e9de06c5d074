// Kinograph - Content-Based Movie Recommendation Service
// Copyright 2026 Kinograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

// Package similarity holds the dense pairwise cosine matrix built once
// at startup and the neighbor queries served from it.
package similarity

import (
	"fmt"
	"sort"
	"time"

	"github.com/kinograph/kinograph/internal/feature"
	"github.com/kinograph/kinograph/internal/logging"
	"github.com/kinograph/kinograph/internal/metrics"
)

// Neighbor is one scored catalog entry returned by a neighbor query.
type Neighbor struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// Matrix is the symmetric cosine similarity matrix. Immutable after
// Build; safe for concurrent reads.
//
// The diagonal is 1 for every movie with a non-empty combined document
// and 0 for zero vectors, which carry no signal at all.
type Matrix struct {
	n      int
	scores [][]float64
}

// Build computes all pairwise cosine similarities. Vectors are unit
// length so a single sparse dot product per pair suffices. O(n^2) in
// catalog size, paid once at startup.
func Build(vectors []feature.Vector) *Matrix {
	start := time.Now()

	n := len(vectors)
	m := &Matrix{n: n, scores: make([][]float64, n)}
	for i := range m.scores {
		m.scores[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			s := vectors[i].Dot(vectors[j])
			m.scores[i][j] = s
			m.scores[j][i] = s
		}
	}

	elapsed := time.Since(start)
	metrics.IndexBuildDuration.Set(elapsed.Seconds())
	logging.Info().
		Int("movies", n).
		Dur("elapsed", elapsed).
		Msg("Similarity matrix built")
	return m
}

// Size returns the number of catalog entries indexed.
func (m *Matrix) Size() int { return m.n }

// Score returns the cosine similarity between entries i and j.
func (m *Matrix) Score(i, j int) (float64, error) {
	if i < 0 || i >= m.n || j < 0 || j >= m.n {
		return 0, fmt.Errorf("similarity index (%d,%d) out of range [0,%d)", i, j, m.n)
	}
	return m.scores[i][j], nil
}

// HasSignal reports whether entry i has a non-zero vector. A zero
// vector scores 0 against everything including itself, so callers
// should surface its neighbors as "no strong recommendations".
func (m *Matrix) HasSignal(i int) bool {
	return i >= 0 && i < m.n && m.scores[i][i] > 0
}

// Neighbors returns the top k entries most similar to index, excluding
// index itself. Ordering is score-descending with ties broken by
// ascending catalog index, so results are deterministic. k is clamped
// to the number of other entries.
func (m *Matrix) Neighbors(index, k int) ([]Neighbor, error) {
	if index < 0 || index >= m.n {
		return nil, fmt.Errorf("similarity index %d out of range [0,%d)", index, m.n)
	}
	if k <= 0 {
		return nil, fmt.Errorf("neighbor count %d must be positive", k)
	}
	metrics.SimilarityQueries.Inc()

	row := m.scores[index]
	candidates := make([]Neighbor, 0, m.n-1)
	for j := 0; j < m.n; j++ {
		if j == index {
			continue
		}
		candidates = append(candidates, Neighbor{Index: j, Score: row[j]})
	}

	sort.Slice(candidates, func(a, b int) bool {
		if candidates[a].Score != candidates[b].Score {
			return candidates[a].Score > candidates[b].Score
		}
		return candidates[a].Index < candidates[b].Index
	})

	if k > len(candidates) {
		k = len(candidates)
	}
	return candidates[:k], nil
}
