// Kinograph - Content-Based Movie Recommendation Service
// Copyright 2026 Kinograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

// Package feature turns combined movie documents into TF-IDF weighted,
// L2-normalized term vectors over a vocabulary fixed at startup.
package feature

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/kinograph/kinograph/internal/metrics"
)

// tokenPattern extracts word tokens of at least two word characters.
// Single-character tokens carry no signal and are dropped.
var tokenPattern = regexp.MustCompile(`\w\w+`)

// Tokenize lowercases doc and returns its word tokens in order.
func Tokenize(doc string) []string {
	return tokenPattern.FindAllString(strings.ToLower(doc), -1)
}

// Vector is a sparse L2-normalized term vector. Indices are strictly
// ascending vocabulary columns. The zero value is the zero vector.
type Vector struct {
	idx []int
	val []float64
}

// IsZero reports whether the vector has no terms (empty document).
func (v Vector) IsZero() bool { return len(v.idx) == 0 }

// Terms returns the number of distinct terms in the vector.
func (v Vector) Terms() int { return len(v.idx) }

// Dot returns the inner product with o. Both vectors are unit length,
// so this is also their cosine similarity.
func (v Vector) Dot(o Vector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(v.idx) && j < len(o.idx) {
		switch {
		case v.idx[i] == o.idx[j]:
			sum += v.val[i] * o.val[j]
			i++
			j++
		case v.idx[i] < o.idx[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// Encoder holds the fixed vocabulary and per-term inverse document
// frequencies learned from the catalog. Immutable after Fit.
type Encoder struct {
	vocab map[string]int
	terms []string
	idf   []float64
	docs  int
}

// Fit learns the vocabulary and idf weights from the corpus. Terms are
// assigned columns in lexicographic order so the layout is
// deterministic across runs.
//
// idf uses the smoothed convention ln((1+N)/(1+df)) + 1, which keeps
// every weight strictly positive.
func Fit(docs []string) *Encoder {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, term := range Tokenize(doc) {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	e := &Encoder{
		vocab: make(map[string]int, len(terms)),
		terms: terms,
		idf:   make([]float64, len(terms)),
		docs:  len(docs),
	}
	n := float64(len(docs))
	for col, term := range terms {
		e.vocab[term] = col
		e.idf[col] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	metrics.VocabularySize.Set(float64(len(terms)))
	return e
}

// VocabularySize returns the shared dimensionality of all vectors.
func (e *Encoder) VocabularySize() int { return len(e.terms) }

// Transform encodes one document against the fixed vocabulary.
// Out-of-vocabulary terms are ignored. An empty document (or one whose
// terms are all out of vocabulary) yields the zero vector.
func (e *Encoder) Transform(doc string) Vector {
	counts := make(map[int]float64)
	for _, term := range Tokenize(doc) {
		if col, ok := e.vocab[term]; ok {
			counts[col]++
		}
	}
	if len(counts) == 0 {
		return Vector{}
	}

	cols := make([]int, 0, len(counts))
	for col := range counts {
		cols = append(cols, col)
	}
	sort.Ints(cols)

	v := Vector{
		idx: cols,
		val: make([]float64, len(cols)),
	}
	var norm float64
	for i, col := range cols {
		w := counts[col] * e.idf[col]
		v.val[i] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for i := range v.val {
		v.val[i] /= norm
	}
	return v
}

// FitTransform fits the encoder on the corpus and encodes every
// document. This is the single startup entry point.
func FitTransform(docs []string) (*Encoder, []Vector) {
	e := Fit(docs)
	vectors := make([]Vector, len(docs))
	for i, doc := range docs {
		vectors[i] = e.Transform(doc)
	}
	return e, vectors
}
