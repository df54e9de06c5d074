// Kinograph - Content-Based Movie Recommendation Service
// Copyright 2026 Kinograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

// Package catalog loads the movie catalog from a CSV source into an
// immutable in-memory store. The catalog is read once at startup; all
// downstream structures (vocabulary, vectors, similarity matrix) are
// derived from its fixed ordering.
package catalog

import "strings"

// Movie is one catalog record. The five free-text fields are normalized
// to empty strings at load time, never left unset.
type Movie struct {
	Index       int    `json:"index"`
	Title       string `json:"title"`
	Genres      string `json:"genres"`
	Keywords    string `json:"keywords"`
	Tagline     string `json:"tagline"`
	Cast        string `json:"cast"`
	Director    string `json:"director"`
	ReleaseDate string `json:"release_date"`
}

// CombinedDocument returns the whitespace-joined concatenation of the
// five text fields in fixed order. This is the input to vectorization.
func (m *Movie) CombinedDocument() string {
	return strings.Join([]string{m.Genres, m.Keywords, m.Tagline, m.Cast, m.Director}, " ")
}

// Year returns the first four characters of the release date, or the
// empty string when no usable date is present.
func (m *Movie) Year() string {
	if len(m.ReleaseDate) < 4 {
		return ""
	}
	return m.ReleaseDate[:4]
}

// LeadCast returns up to n whitespace tokens of the cast field, joined
// back with single spaces. Display helper for recommendation cards.
func (m *Movie) LeadCast(n int) string {
	fields := strings.Fields(m.Cast)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}
