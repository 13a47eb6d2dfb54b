package api

import (
	"net/http"
	"strings"

	chi "github.com/go-chi/chi/v5"

	"github.com/lc2/ambispeech/internal/llm"
)

type analyzeBody struct {
	Text string `json:"text"`
}

type embeddingBody struct {
	Text   string `json:"text"`
	Amount int    `json:"amount"`
}

type embeddingRow struct {
	Code string `json:"code"`
	Text string `json:"text"`
}

type completionBody struct {
	Messages []completionMessage `json:"messages"`
	Config   completionConfig    `json:"config"`
}

type completionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionConfig struct {
	MaxTokens  int64 `json:"max_tokens"`
	JSONObject bool  `json:"json_object"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var body analyzeBody
	if !decodeBody(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		respondError(w, http.StatusBadRequest, "text is required")
		return
	}
	out := s.pipeline.Analyze(r.Context(), body.Text)
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleEmbedding(w http.ResponseWriter, r *http.Request) {
	var body embeddingBody
	if !decodeBody(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		respondError(w, http.StatusBadRequest, "text is required")
		return
	}
	if body.Amount <= 0 {
		body.Amount = 10
	}
	matches, err := s.index.Search(r.Context(), body.Text, body.Amount)
	if err != nil {
		respondError(w, http.StatusBadGateway, "similarity search failed")
		return
	}
	rows := make([]embeddingRow, 0, len(matches))
	for _, match := range matches {
		rows = append(rows, embeddingRow{Code: match.Entry.Code, Text: match.Entry.Description})
	}
	respondJSON(w, http.StatusOK, rows)
}

func (s *Server) handleCompletion(w http.ResponseWriter, r *http.Request) {
	model := chi.URLParam(r, "model")
	var body completionBody
	if !decodeBody(w, r, &body) {
		return
	}
	if len(body.Messages) == 0 {
		respondError(w, http.StatusBadRequest, "messages are required")
		return
	}
	messages := make([]llm.Message, 0, len(body.Messages))
	for _, msg := range body.Messages {
		messages = append(messages, llm.Message{Role: msg.Role, Content: msg.Content})
	}
	content, err := s.provider.Complete(r.Context(), messages, llm.CompletionConfig{
		MaxTokens:  body.Config.MaxTokens,
		JSONObject: body.Config.JSONObject,
	}, model)
	if err != nil {
		respondError(w, http.StatusBadGateway, "completion service failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"content": content})
}
