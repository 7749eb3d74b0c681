// Package server exposes study sessions, progress and recommendations over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/at-ishikawa/literacy/internal/clock"
	"github.com/at-ishikawa/literacy/internal/progress"
	"github.com/at-ishikawa/literacy/internal/session"
	"github.com/at-ishikawa/literacy/internal/statistics"
	"github.com/at-ishikawa/literacy/internal/vocabulary"
)

const defaultRecommendationCount = 5

type Recommender interface {
	Recommend(ctx context.Context, userID string, desiredCount int) ([]vocabulary.WordEntry, error)
}

// SessionFactory builds the controller of a new session for userID.
type SessionFactory func(userID string) *session.Controller

type Dependencies struct {
	Vocabulary    vocabulary.Store
	Progress      progress.Repository
	Settings      progress.SettingsRepository
	Recommender   Recommender
	NewSession    SessionFactory
	Clock         clock.Clock
	AllowedOrigin string
	// SessionIdleTimeout defaults to DefaultSessionIdleTimeout.
	SessionIdleTimeout time.Duration
}

type Handler struct {
	deps     Dependencies
	sessions *sessionRegistry
	logger   *slog.Logger
}

func NewHandler(deps Dependencies) *Handler {
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	return &Handler{
		deps:     deps,
		sessions: newSessionRegistry(deps.SessionIdleTimeout),
		logger:   slog.Default(),
	}
}

// Routes returns the router serving every endpoint.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(corsMiddleware(h.deps.AllowedOrigin))

	r.Get("/lessons", h.listLessons)
	r.Get("/words", h.listWords)
	r.Get("/settings", h.getSettings)
	r.Put("/settings", h.putSettings)

	r.Route("/users/{userID}", func(r chi.Router) {
		r.Get("/progress", h.listProgress)
		r.Get("/progress/{wordID}", h.getProgress)
		r.Post("/progress/{wordID}/attempts", h.recordAttempt)
		r.Get("/recommendations", h.recommendations)
	})

	r.Post("/sessions", h.createSession)
	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Get("/", h.getSession)
		r.Delete("/", h.deleteSession)
		r.Post("/difficulty", h.selectDifficulty)
		r.Post("/answers", h.answer)
		r.Post("/advance", h.advance)
		r.Post("/restart", h.restart)
		r.Post("/retry", h.retry)
	})
	return r
}

func corsMiddleware(allowedOrigin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allowedOrigin != "" {
				w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Max-Age", "3600")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (h *Handler) listLessons(w http.ResponseWriter, r *http.Request) {
	lessons, err := h.deps.Vocabulary.Lessons(r.Context())
	if err != nil {
		h.respondWithServerError(w, r, err)
		return
	}
	response := make([]lessonResponse, 0, len(lessons))
	for _, lesson := range lessons {
		words, err := h.deps.Vocabulary.LessonWords(r.Context(), lesson.ID)
		if err != nil {
			h.respondWithServerError(w, r, err)
			return
		}
		response = append(response, lessonResponse{Lesson: lesson, Words: words})
	}
	respondWithJSON(w, http.StatusOK, response)
}

func (h *Handler) listWords(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("difficulty")
	if query == "" {
		words, err := h.deps.Vocabulary.All(r.Context())
		if err != nil {
			h.respondWithServerError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, words)
		return
	}

	level, err := strconv.Atoi(query)
	if err != nil || !vocabulary.ValidDifficulty(level) {
		respondWithError(w, http.StatusBadRequest, vocabulary.ErrInvalidDifficulty.Error())
		return
	}
	words, err := h.deps.Vocabulary.WordsByDifficulty(r.Context(), level)
	if err != nil {
		h.respondWithServerError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, words)
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	// defaults are returned even when the stored settings are unreadable
	settings, _ := h.deps.Settings.Get(r.Context())
	respondWithJSON(w, http.StatusOK, settings)
}

func (h *Handler) putSettings(w http.ResponseWriter, r *http.Request) {
	var settings progress.UserSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.deps.Settings.Save(r.Context(), settings); err != nil {
		var perr *progress.PersistenceError
		if errors.As(err, &perr) {
			h.respondWithServerError(w, r, err)
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, settings)
}

func (h *Handler) listProgress(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	records, err := h.deps.Progress.List(r.Context(), userID)
	incomplete := err != nil
	if records == nil {
		records = []progress.MasteryRecord{}
	}
	settings, _ := h.deps.Settings.Get(r.Context())
	summary := statistics.Summarize(records, settings, h.deps.Clock.Now(), 0, 0)

	respondWithJSON(w, http.StatusOK, progressResponse{
		Records:    records,
		Summary:    toSummaryResponse(summary),
		Incomplete: incomplete,
	})
}

func (h *Handler) getProgress(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	wordID := chi.URLParam(r, "wordID")
	record, err := h.deps.Progress.Get(r.Context(), userID, wordID)
	if err != nil {
		h.respondWithServerError(w, r, err)
		return
	}
	if record == nil {
		respondWithError(w, http.StatusNotFound, "no progress for this word")
		return
	}
	respondWithJSON(w, http.StatusOK, record)
}

func (h *Handler) recordAttempt(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	wordID := chi.URLParam(r, "wordID")

	var request attemptRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.Correct == nil {
		respondWithError(w, http.StatusBadRequest, "correct is required")
		return
	}
	word, err := h.deps.Vocabulary.FindByID(r.Context(), wordID)
	if err != nil {
		h.respondWithServerError(w, r, err)
		return
	}
	if word == nil {
		respondWithError(w, http.StatusNotFound, "unknown word")
		return
	}

	record, err := h.deps.Progress.RecordAttempt(r.Context(), userID, wordID, *request.Correct)
	respondWithJSON(w, http.StatusOK, attemptResponse{Record: record, Persisted: err == nil})
}

func (h *Handler) recommendations(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	count := defaultRecommendationCount
	if query := r.URL.Query().Get("count"); query != "" {
		n, err := strconv.Atoi(query)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "count must be an integer")
			return
		}
		count = n
	}

	words, err := h.deps.Recommender.Recommend(r.Context(), userID, count)
	if err != nil {
		h.respondWithServerError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, words)
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var request createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.UserID == "" {
		respondWithError(w, http.StatusBadRequest, "userId is required")
		return
	}
	if !vocabulary.ValidDifficulty(request.Difficulty) {
		respondWithError(w, http.StatusBadRequest, vocabulary.ErrInvalidDifficulty.Error())
		return
	}

	controller := h.deps.NewSession(request.UserID)
	hosted := h.sessions.add(request.UserID, controller, h.deps.Clock.Now())
	// a failed load is part of the session state and can be retried
	if err := controller.SelectDifficulty(r.Context(), request.Difficulty); err != nil && !session.IsCatalogLoadError(err) {
		h.respondWithServerError(w, r, err)
		return
	}
	h.logger.Info("session started",
		"session_id", hosted.id,
		"user_id", request.UserID,
		"difficulty", request.Difficulty,
	)
	respondWithJSON(w, http.StatusCreated, toSessionResponse(hosted, controller.Snapshot()))
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	hosted, ok := h.hostedSession(w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, toSessionResponse(hosted, hosted.controller.Snapshot()))
}

func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	if !h.sessions.remove(id) {
		respondWithError(w, http.StatusNotFound, "session not found")
		return
	}
	h.logger.Info("session closed", "session_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) selectDifficulty(w http.ResponseWriter, r *http.Request) {
	hosted, ok := h.hostedSession(w, r)
	if !ok {
		return
	}
	var request difficultyRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || !vocabulary.ValidDifficulty(request.Difficulty) {
		respondWithError(w, http.StatusBadRequest, vocabulary.ErrInvalidDifficulty.Error())
		return
	}

	err := hosted.controller.SelectDifficulty(r.Context(), request.Difficulty)
	if errors.Is(err, session.ErrStaleLoad) {
		respondWithError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil && !session.IsCatalogLoadError(err) {
		h.respondWithServerError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, toSessionResponse(hosted, hosted.controller.Snapshot()))
}

func (h *Handler) answer(w http.ResponseWriter, r *http.Request) {
	hosted, ok := h.hostedSession(w, r)
	if !ok {
		return
	}
	var request attemptRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.Correct == nil {
		respondWithError(w, http.StatusBadRequest, "correct is required")
		return
	}

	result, err := hosted.controller.Answer(r.Context(), *request.Correct)
	if err != nil {
		h.respondWithSessionError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, answerResponse{
		Session:   toSessionResponse(hosted, hosted.controller.Snapshot()),
		Correct:   result.Correct,
		Record:    result.Record,
		Persisted: result.PersistenceErr == nil,
	})
}

func (h *Handler) advance(w http.ResponseWriter, r *http.Request) {
	hosted, ok := h.hostedSession(w, r)
	if !ok {
		return
	}
	if _, err := hosted.controller.Advance(); err != nil {
		h.respondWithSessionError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, toSessionResponse(hosted, hosted.controller.Snapshot()))
}

func (h *Handler) restart(w http.ResponseWriter, r *http.Request) {
	hosted, ok := h.hostedSession(w, r)
	if !ok {
		return
	}
	if err := hosted.controller.Restart(); err != nil {
		h.respondWithSessionError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, toSessionResponse(hosted, hosted.controller.Snapshot()))
}

func (h *Handler) retry(w http.ResponseWriter, r *http.Request) {
	hosted, ok := h.hostedSession(w, r)
	if !ok {
		return
	}
	err := hosted.controller.Retry(r.Context())
	if err != nil && !session.IsCatalogLoadError(err) {
		h.respondWithSessionError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, toSessionResponse(hosted, hosted.controller.Snapshot()))
}

func (h *Handler) hostedSession(w http.ResponseWriter, r *http.Request) (*hostedSession, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid session id")
		return nil, false
	}
	hosted, ok := h.sessions.get(id, h.deps.Clock.Now())
	if !ok {
		respondWithError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return hosted, true
}

func (h *Handler) respondWithSessionError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, session.ErrNotReady),
		errors.Is(err, session.ErrNotFinished),
		errors.Is(err, session.ErrAdvancePending),
		errors.Is(err, session.ErrNothingToRetry),
		errors.Is(err, session.ErrStaleLoad),
		errors.Is(err, session.ErrClosed):
		respondWithError(w, http.StatusConflict, err.Error())
	default:
		h.respondWithServerError(w, r, err)
	}
}

func (h *Handler) respondWithServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", chimiddleware.GetReqID(r.Context()),
		"error", err,
	)
	respondWithError(w, http.StatusInternalServerError, "internal server error")
}

func respondWithJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Default().Error("failed to encode JSON response", "error", err)
	}
}

func respondWithError(w http.ResponseWriter, status int, message string) {
	respondWithJSON(w, status, errorResponse{Error: message})
}
