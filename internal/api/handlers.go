// Kinograph - Content-Based Movie Recommendation Service
// Copyright 2026 Kinograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"

	"github.com/kinograph/kinograph/internal/assistant"
	"github.com/kinograph/kinograph/internal/catalog"
	"github.com/kinograph/kinograph/internal/recommend"
	"github.com/kinograph/kinograph/internal/resolver"
	"github.com/kinograph/kinograph/internal/session"
)

// Payload bounds. Queries are title fragments, so anything past
// maxQueryLen cannot match and only burns resolver cycles; the chat
// bounds keep a single turn from blowing up the model prompt.
const (
	maxQueryLen   = 200
	maxMessageLen = 2000
	maxAnswerLen  = 1000
)

var validate = validator.New()

// Handler carries the wired services behind every endpoint.
type Handler struct {
	store     *catalog.Store
	engine    *recommend.Engine
	assistant *assistant.Service
}

// NewHandler builds the handler set. assistantSvc may be nil when the
// assistant is not configured; its endpoints then answer 503.
func NewHandler(store *catalog.Store, engine *recommend.Engine, assistantSvc *assistant.Service) *Handler {
	return &Handler{store: store, engine: engine, assistant: assistantSvc}
}

// HealthLive godoc
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} Response
// @Router /api/v1/health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "alive"})
}

// HealthReady godoc
// @Summary Readiness probe, reports catalog size once the index is built
// @Tags health
// @Produce json
// @Success 200 {object} Response
// @Router /api/v1/health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.engine == nil {
		rw.ServiceUnavailable("Index not built yet")
		return
	}
	rw.Success(map[string]any{
		"status": "ready",
		"movies": h.store.Len(),
	})
}

// Suggest godoc
// @Summary Live-typing title suggestions
// @Tags movies
// @Produce json
// @Param q query string true "Partial title"
// @Param limit query int false "Maximum suggestions"
// @Success 200 {object} Response
// @Router /api/v1/movies/suggest [get]
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	query, ok := queryParam(rw, r)
	if !ok {
		return
	}

	suggestions := h.engine.Suggest(query)
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			rw.BadRequest("Query parameter 'limit' must be a positive integer")
			return
		}
		if limit < len(suggestions) {
			suggestions = suggestions[:limit]
		}
	}
	if suggestions == nil {
		suggestions = []string{}
	}
	rw.Success(map[string]any{"query": query, "suggestions": suggestions})
}

// Resolve godoc
// @Summary Fuzzy-resolve a query to catalog titles
// @Tags movies
// @Produce json
// @Param q query string true "Free-text query"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /api/v1/movies/resolve [get]
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	query, ok := queryParam(rw, r)
	if !ok {
		return
	}

	best, candidates, err := h.engine.Resolve(query)
	if err != nil {
		if errors.Is(err, resolver.ErrNoMatch) {
			rw.NoCloseMatch(query)
			return
		}
		rw.InternalError("Resolution failed")
		return
	}
	rw.Success(map[string]any{
		"query":      query,
		"matched":    best,
		"candidates": candidates,
	})
}

// Recommendations godoc
// @Summary Recommend movies for a query or an exact title
// @Description Pass q for fuzzy resolution, or title to skip it after
// @Description the visitor confirmed a candidate.
// @Tags movies
// @Produce json
// @Param q query string false "Free-text query"
// @Param title query string false "Exact catalog title"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /api/v1/recommendations [get]
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	title := strings.TrimSpace(r.URL.Query().Get("title"))
	if len(query) > maxQueryLen || len(title) > maxQueryLen {
		rw.BadRequest(fmt.Sprintf("Query parameters must be at most %d characters", maxQueryLen))
		return
	}

	var (
		result *recommend.Result
		err    error
	)
	switch {
	case title != "":
		result, err = h.engine.RecommendTitle(r.Context(), title)
	case query != "":
		result, err = h.engine.Recommend(r.Context(), query)
	default:
		rw.BadRequest("One of 'q' or 'title' is required")
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, resolver.ErrNoMatch):
			rw.NoCloseMatch(query)
		case errors.Is(err, recommend.ErrUnknownTitle):
			rw.NotFound("Title not found in the catalog")
		default:
			rw.InternalError("Recommendation failed")
		}
		return
	}
	rw.Success(result)
}

// queryParam reads and bounds the 'q' parameter shared by the movie
// endpoints, writing the 400 itself when it is missing or oversized.
func queryParam(rw *ResponseWriter, r *http.Request) (string, bool) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		rw.BadRequest("Query parameter 'q' is required")
		return "", false
	}
	if len(query) > maxQueryLen {
		rw.BadRequest(fmt.Sprintf("Query parameter 'q' must be at most %d characters", maxQueryLen))
		return "", false
	}
	return query, true
}

// chatRequest is the assistant chat payload.
type chatRequest struct {
	SessionID string `json:"session_id" validate:"omitempty,max=100"`
	Message   string `json:"message" validate:"required,max=2000"`
}

// quizQuestionRequest deals or repeats a trivia question.
type quizQuestionRequest struct {
	SessionID string `json:"session_id" validate:"omitempty,max=100"`
}

// quizAnswerRequest answers the open trivia question.
type quizAnswerRequest struct {
	SessionID string `json:"session_id" validate:"omitempty,max=100"`
	Answer    string `json:"answer" validate:"required,max=1000"`
}

// Chat godoc
// @Summary One assistant chat turn
// @Tags assistant
// @Accept json
// @Produce json
// @Param request body chatRequest true "Message and optional session"
// @Success 200 {object} Response
// @Failure 503 {object} Response
// @Router /api/v1/assistant/chat [post]
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.assistant == nil || !h.assistant.Enabled() {
		rw.ServiceUnavailable("Assistant is not configured")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("Invalid JSON body")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if err := validate.Struct(req); err != nil {
		rw.BadRequest(fmt.Sprintf("Field 'message' is required and must be at most %d characters", maxMessageLen))
		return
	}

	st, reply, err := h.assistant.Chat(r.Context(), req.SessionID, req.Message)
	if err != nil {
		rw.ExternalServiceError("assistant", err)
		return
	}
	rw.Success(map[string]any{
		"session_id": st.ID,
		"reply":      reply,
		"history":    st.VisibleChat(),
	})
}

// QuizQuestion godoc
// @Summary Deal a trivia question
// @Tags assistant
// @Accept json
// @Produce json
// @Param request body quizRequest true "Optional session"
// @Success 200 {object} Response
// @Failure 503 {object} Response
// @Router /api/v1/assistant/quiz/question [post]
func (h *Handler) QuizQuestion(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.assistant == nil || !h.assistant.Enabled() {
		rw.ServiceUnavailable("Assistant is not configured")
		return
	}

	var req quizQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("Invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		rw.BadRequest("Field 'session_id' must be at most 100 characters")
		return
	}

	st, question, err := h.assistant.QuizQuestion(r.Context(), req.SessionID)
	if err != nil {
		rw.ExternalServiceError("assistant", err)
		return
	}
	rw.Success(map[string]any{
		"session_id":      st.ID,
		"question":        question,
		"awaiting_answer": st.AwaitingQuizAnswer,
	})
}

// QuizAnswer godoc
// @Summary Grade the answer to the open trivia question
// @Tags assistant
// @Accept json
// @Produce json
// @Param request body quizRequest true "Session and answer"
// @Success 200 {object} Response
// @Failure 409 {object} Response
// @Router /api/v1/assistant/quiz/answer [post]
func (h *Handler) QuizAnswer(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.assistant == nil || !h.assistant.Enabled() {
		rw.ServiceUnavailable("Assistant is not configured")
		return
	}

	var req quizAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("Invalid JSON body")
		return
	}
	req.Answer = strings.TrimSpace(req.Answer)
	if err := validate.Struct(req); err != nil {
		rw.BadRequest(fmt.Sprintf("Field 'answer' is required and must be at most %d characters", maxAnswerLen))
		return
	}

	st, feedback, err := h.assistant.QuizAnswer(r.Context(), req.SessionID, req.Answer)
	if err != nil {
		if errors.Is(err, assistant.ErrNoPendingQuestion) {
			rw.Error(http.StatusConflict, ErrCodeNoPendingQuestion, "No quiz question is pending for this session")
			return
		}
		rw.ExternalServiceError("assistant", err)
		return
	}
	rw.Success(map[string]any{
		"session_id": st.ID,
		"feedback":   feedback,
		"history":    quizHistory(st),
	})
}

// quizHistory always renders as a JSON array, never null.
func quizHistory(st *session.State) []session.QuizRound {
	h := st.VisibleQuiz()
	if h == nil {
		h = []session.QuizRound{}
	}
	return h
}
