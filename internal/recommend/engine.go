// Kinograph - Content-Based Movie Recommendation Service
// Copyright 2026 Kinograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

// Package recommend ties the catalog, the similarity index, the fuzzy
// resolver and OMDb enrichment into the end-to-end recommendation
// pipeline.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kinograph/kinograph/internal/catalog"
	"github.com/kinograph/kinograph/internal/config"
	"github.com/kinograph/kinograph/internal/feature"
	"github.com/kinograph/kinograph/internal/logging"
	"github.com/kinograph/kinograph/internal/omdb"
	"github.com/kinograph/kinograph/internal/resolver"
	"github.com/kinograph/kinograph/internal/similarity"
)

// ErrUnknownTitle is returned by RecommendTitle for titles not present
// in the catalog verbatim.
var ErrUnknownTitle = errors.New("unknown title")

// leadCastNames bounds how much of the cast field a card displays.
const leadCastNames = 5

// enrichTimeout caps each per-item OMDb lookup so one slow upstream
// call cannot stall the whole batch.
const enrichTimeout = 4 * time.Second

// Enricher is the per-title metadata lookup the pipeline decorates
// cards with. *omdb.Client implements it.
type Enricher interface {
	Enabled() bool
	Lookup(ctx context.Context, title string) (omdb.Enrichment, error)
}

// Card is one recommendation, ready for display. Poster, rating and
// plot come from enrichment when available; plot falls back to the
// local tagline.
type Card struct {
	Rank       int     `json:"rank"`
	Index      int     `json:"index"`
	Title      string  `json:"title"`
	Year       string  `json:"year,omitempty"`
	Genres     string  `json:"genres,omitempty"`
	Director   string  `json:"director,omitempty"`
	Cast       string  `json:"cast,omitempty"`
	Plot       string  `json:"plot,omitempty"`
	PosterURL  string  `json:"poster_url,omitempty"`
	IMDBRating string  `json:"imdb_rating,omitempty"`
	Score      float64 `json:"score"`

	// Degraded marks a card whose enrichment lookup failed or came
	// back empty; only local catalog fields are populated.
	Degraded bool `json:"degraded"`
}

// Result is a full recommendation response.
type Result struct {
	Query      string               `json:"query"`
	Matched    resolver.Candidate   `json:"matched"`
	Candidates []resolver.Candidate `json:"candidates,omitempty"`

	// NoSignal is set when the matched movie has an empty combined
	// document: every score is zero and the list is not meaningful as
	// a ranking.
	NoSignal bool `json:"no_signal,omitempty"`

	Cards []Card `json:"recommendations"`
}

// Engine answers recommendation queries. All derived structures are
// built once in New and never change; Engine is safe for concurrent
// use.
type Engine struct {
	store    *catalog.Store
	matrix   *similarity.Matrix
	resolver *resolver.Resolver
	enricher Enricher

	k            int
	suggestLimit int
	workers      int
}

// New builds the vocabulary, the TF-IDF vectors and the similarity
// matrix from the catalog. This is the expensive startup step.
func New(store *catalog.Store, cfg config.RecommendConfig, enricher Enricher) *Engine {
	docs := make([]string, store.Len())
	for i, m := range store.Movies() {
		docs[i] = m.CombinedDocument()
	}
	encoder, vectors := feature.FitTransform(docs)

	logging.Info().
		Int("movies", store.Len()).
		Int("vocabulary", encoder.VocabularySize()).
		Msg("Feature vectors encoded")

	return &Engine{
		store:        store,
		matrix:       similarity.Build(vectors),
		resolver:     resolver.New(store.Titles(), cfg.MatchCutoff, cfg.MatchCandidates),
		enricher:     enricher,
		k:            cfg.K,
		suggestLimit: cfg.SuggestLimit,
		workers:      cfg.EnrichWorkers,
	}
}

// Suggest returns live-typing title suggestions in catalog order.
func (e *Engine) Suggest(query string) []string {
	return e.resolver.Suggest(query, e.suggestLimit)
}

// Resolve runs close-match resolution without producing cards, for
// the confirmation selector.
func (e *Engine) Resolve(query string) (resolver.Candidate, []resolver.Candidate, error) {
	return e.resolver.CloseMatch(query)
}

// Recommend resolves the query fuzzily and returns the top
// recommendations for the best match. resolver.ErrNoMatch passes
// through untouched so callers can present it as a warning.
func (e *Engine) Recommend(ctx context.Context, query string) (*Result, error) {
	best, candidates, err := e.resolver.CloseMatch(query)
	if err != nil {
		return nil, err
	}
	return e.build(ctx, query, best, candidates)
}

// RecommendTitle skips fuzzy resolution for an exact catalog title, as
// used after the visitor picks a "did you mean" candidate.
func (e *Engine) RecommendTitle(ctx context.Context, title string) (*Result, error) {
	idx, ok := e.store.IndexOfTitle(title)
	if !ok {
		return nil, fmt.Errorf("title %q: %w", title, ErrUnknownTitle)
	}
	matched := resolver.Candidate{Index: idx, Title: title, Ratio: 1}
	return e.build(ctx, title, matched, []resolver.Candidate{matched})
}

func (e *Engine) build(ctx context.Context, query string, matched resolver.Candidate, candidates []resolver.Candidate) (*Result, error) {
	neighbors, err := e.matrix.Neighbors(matched.Index, e.k)
	if err != nil {
		return nil, err
	}

	cards := make([]Card, len(neighbors))
	for i, n := range neighbors {
		movie, err := e.store.ByIndex(n.Index)
		if err != nil {
			return nil, err
		}
		cards[i] = Card{
			Rank:     i + 1,
			Index:    n.Index,
			Title:    movie.Title,
			Year:     movie.Year(),
			Genres:   movie.Genres,
			Director: movie.Director,
			Cast:     movie.LeadCast(leadCastNames),
			Plot:     movie.Tagline,
			Score:    n.Score,
		}
	}

	e.enrich(ctx, cards)

	return &Result{
		Query:      query,
		Matched:    matched,
		Candidates: candidates,
		NoSignal:   !e.matrix.HasSignal(matched.Index),
		Cards:      cards,
	}, nil
}

// enrich decorates cards in place with OMDb metadata through a
// bounded worker fan-out. Failures leave the local fields untouched
// and never abort the batch; order is fixed up front so enrichment
// cannot re-rank anything.
func (e *Engine) enrich(ctx context.Context, cards []Card) {
	if e.enricher == nil || !e.enricher.Enabled() {
		return
	}

	workers := e.workers
	if workers > len(cards) {
		workers = len(cards)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				e.enrichOne(ctx, &cards[i])
			}
		}()
	}
	for i := range cards {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

func (e *Engine) enrichOne(ctx context.Context, card *Card) {
	ctx, cancel := context.WithTimeout(ctx, enrichTimeout)
	defer cancel()

	enr, err := e.enricher.Lookup(ctx, card.Title)
	if err != nil {
		logging.Debug().Err(err).Str("title", card.Title).Msg("Enrichment skipped")
		card.Degraded = true
		return
	}
	card.PosterURL = enr.PosterURL
	if enr.IMDBRating != "" {
		card.IMDBRating = enr.IMDBRating
	}
	if enr.Plot != "" {
		card.Plot = enr.Plot
	}
}
