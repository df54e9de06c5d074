// Kinograph - Content-Based Movie Recommendation Service
// Copyright 2026 Kinograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

// Command server runs the Kinograph API: it loads the catalog, builds
// the similarity index once, and serves recommendations and the
// assistant sidebar until interrupted.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/kinograph/kinograph/docs"
	"github.com/kinograph/kinograph/internal/api"
	"github.com/kinograph/kinograph/internal/assistant"
	"github.com/kinograph/kinograph/internal/catalog"
	"github.com/kinograph/kinograph/internal/config"
	"github.com/kinograph/kinograph/internal/logging"
	"github.com/kinograph/kinograph/internal/omdb"
	"github.com/kinograph/kinograph/internal/recommend"
	"github.com/kinograph/kinograph/internal/session"
	"github.com/kinograph/kinograph/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Catalog and index are built once; a failure here is fatal.
	store, err := catalog.Load(ctx, cfg.Catalog.Path)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load catalog")
	}

	enricher := omdb.NewClient(cfg.OMDb)
	if !enricher.Enabled() {
		logging.Warn().Msg("OMDb API key not set, recommendations will not be enriched")
	}
	engine := recommend.New(store, cfg.Recommend, enricher)

	tree := supervisor.New()

	// The assistant needs both a model token and the session store;
	// without a token the endpoints answer 503 and no store is opened.
	var assistantSvc *assistant.Service
	if cfg.Assistant.Token != "" {
		sessions, err := session.Open(cfg.Session)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to open session store")
		}
		defer sessions.Close()

		assistantSvc = assistant.NewService(assistant.NewClient(cfg.Assistant), sessions)
		tree.Add(session.NewGCService(sessions, cfg.Session.GCInterval))
	} else {
		logging.Warn().Msg("Assistant token not set, chat and quiz endpoints disabled")
	}

	router := api.NewRouter(api.NewHandler(store, engine, assistantSvc), &cfg.Server)
	tree.Add(supervisor.NewHTTPService(&cfg.Server, router.Setup()))

	logging.Info().
		Int("movies", store.Len()).
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("Kinograph starting")

	err = <-tree.ServeBackground(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Fatal().Err(err).Msg("Supervisor exited with error")
	}
	logging.Info().Msg("Kinograph stopped")
}
