// Package api exposes the NLP pipeline over HTTP.
package api

import (
	"encoding/json"
	"net/http"

	chi "github.com/go-chi/chi/v5"

	"github.com/lc2/ambispeech/internal/common"
	"github.com/lc2/ambispeech/internal/common/telemetry"
	"github.com/lc2/ambispeech/internal/icd10"
	"github.com/lc2/ambispeech/internal/llm"
	"github.com/lc2/ambispeech/internal/nlp"
)

const maxBodyBytes = 1 << 20

type Server struct {
	router   chi.Router
	pipeline *nlp.Pipeline
	index    *icd10.Index
	provider llm.Provider
	limiter  *rateLimiter
}

func New(pipeline *nlp.Pipeline, index *icd10.Index, provider llm.Provider) *Server {
	s := &Server{
		pipeline: pipeline,
		index:    index,
		provider: provider,
		limiter:  newRateLimiter(),
	}
	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Use(cors)
	r.Use(telemetry.HTTPMetrics)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", telemetry.Handler())
	r.Get("/api/logging", s.handleLogging)

	r.Route("/api/nlp", func(r chi.Router) {
		r.Use(s.limiter.middleware)
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/embedding", s.handleEmbedding)
		r.Post("/completion/{model}", s.handleCompletion)
	})

	s.router = r
	return s
}

// Router returns the HTTP handler for the server.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "The Ambient Speech Recognition NLP server is working",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"provider":    s.provider.Name(),
		"corpus_size": s.index.Len(),
	})
}

func (s *Server) handleLogging(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, common.LogEntries())
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		common.Logger().Error("api: failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
