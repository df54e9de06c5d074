// Kinograph - Content-Based Movie Recommendation Service
// Copyright 2026 Kinograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/kinograph/kinograph/internal/config"
	"github.com/kinograph/kinograph/internal/middleware"
)

// healthRateLimit is permissive so monitoring can poll freely.
const healthRateLimit = 1000

// Router assembles the HTTP surface.
type Router struct {
	handler *Handler
	cfg     *config.ServerConfig
}

// NewRouter binds handlers to server configuration.
func NewRouter(handler *Handler, cfg *config.ServerConfig) *Router {
	return &Router{handler: handler, cfg: cfg}
}

// Setup wires all routes and middleware.
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(httprate.LimitByIP(healthRateLimit, time.Minute))
		r.Get("/live", rt.handler.HealthLive)
		r.Get("/ready", rt.handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(rt.cfg.RateLimitReqs, rt.cfg.RateLimitWindow))
		r.Use(middleware.PrometheusMetrics)

		r.Get("/movies/suggest", rt.handler.Suggest)
		r.Get("/movies/resolve", rt.handler.Resolve)
		r.Get("/recommendations", rt.handler.Recommendations)

		// Assistant endpoints fan out to the hosted model, so they get
		// a tighter per-IP budget.
		r.Route("/assistant", func(r chi.Router) {
			r.Use(httprate.LimitByIP(rt.cfg.AssistantRateLimitReqs, rt.cfg.RateLimitWindow))
			r.Post("/chat", rt.handler.Chat)
			r.Get("/ws", rt.handler.ChatWS)
			r.Post("/quiz/question", rt.handler.QuizQuestion)
			r.Post("/quiz/answer", rt.handler.QuizAnswer)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return r
}
