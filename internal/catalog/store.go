// Kinograph - Content-Based Movie Recommendation Service
// Copyright 2026 Kinograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/kinograph/kinograph/internal/logging"
	"github.com/kinograph/kinograph/internal/metrics"
)

// loadQuery reads the catalog through DuckDB's CSV reader. Column
// normalization happens here: missing text values become empty strings
// and the release date is forced to text regardless of how the sniffer
// typed it. "index" and "cast" are reserved words and must be quoted.
const loadQuery = `
SELECT
	COALESCE(CAST(title AS VARCHAR), '')        AS title,
	COALESCE(CAST(genres AS VARCHAR), '')       AS genres,
	COALESCE(CAST(keywords AS VARCHAR), '')     AS keywords,
	COALESCE(CAST(tagline AS VARCHAR), '')      AS tagline,
	COALESCE(CAST("cast" AS VARCHAR), '')       AS cast_names,
	COALESCE(CAST(director AS VARCHAR), '')     AS director,
	COALESCE(CAST(release_date AS VARCHAR), '') AS release_date
FROM read_csv(?, header = true)
ORDER BY CAST("index" AS BIGINT)
`

// Store is the immutable in-memory catalog. Safe for concurrent reads.
type Store struct {
	movies []Movie
	titles []string
}

// Load reads the catalog CSV at path into memory. DuckDB is used only
// for ingestion and is closed before Load returns; there is no
// per-query database access afterwards.
//
// Any schema violation (missing required column, unreadable file) is a
// fatal load error.
func Load(ctx context.Context, path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("catalog source %s: %w", path, err)
	}

	conn, err := sql.Open("duckdb", ":memory:?autoinstall_known_extensions=false&autoload_known_extensions=false")
	if err != nil {
		return nil, fmt.Errorf("open catalog reader: %w", err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, loadQuery, path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	defer rows.Close()

	s := &Store{}
	for rows.Next() {
		var m Movie
		if err := rows.Scan(&m.Title, &m.Genres, &m.Keywords, &m.Tagline,
			&m.Cast, &m.Director, &m.ReleaseDate); err != nil {
			return nil, fmt.Errorf("scan catalog row %d: %w", len(s.movies), err)
		}
		// Positions are assigned in source order and are the indices all
		// derived structures use. The CSV's own index column only drives
		// the ordering above.
		m.Index = len(s.movies)
		s.movies = append(s.movies, m)
		s.titles = append(s.titles, m.Title)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	if len(s.movies) == 0 {
		return nil, fmt.Errorf("catalog %s contains no movies", path)
	}

	metrics.CatalogSize.Set(float64(len(s.movies)))
	logging.Info().Int("movies", len(s.movies)).Str("path", path).Msg("Catalog loaded")
	return s, nil
}

// Len returns the number of movies in the catalog.
func (s *Store) Len() int { return len(s.movies) }

// Movies returns the catalog in load order. Callers must not mutate it.
func (s *Store) Movies() []Movie { return s.movies }

// Titles returns all titles in load order. Callers must not mutate it.
func (s *Store) Titles() []string { return s.titles }

// ByIndex returns the movie at position i.
func (s *Store) ByIndex(i int) (*Movie, error) {
	if i < 0 || i >= len(s.movies) {
		return nil, fmt.Errorf("catalog index %d out of range [0,%d)", i, len(s.movies))
	}
	return &s.movies[i], nil
}

// IndexOfTitle returns the position of the first movie whose title is
// an exact match. Duplicate titles resolve to the earliest entry.
func (s *Store) IndexOfTitle(title string) (int, bool) {
	for i, t := range s.titles {
		if t == title {
			return i, true
		}
	}
	return 0, false
}
