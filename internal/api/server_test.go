package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lc2/ambispeech/internal/icd10"
	"github.com/lc2/ambispeech/internal/llm"
	"github.com/lc2/ambispeech/internal/nlp"
	"github.com/lc2/ambispeech/internal/prompt"
)

type stubProvider struct {
	completion string
	err        error
}

func (s *stubProvider) Complete(ctx context.Context, messages []llm.Message, cfg llm.CompletionConfig, model string) (string, error) {
	return s.completion, s.err
}

func (s *stubProvider) Embed(ctx context.Context, input []string) ([][]float32, error) {
	out := make([][]float32, len(input))
	for i, text := range input {
		switch {
		case strings.Contains(strings.ToLower(text), "cough"):
			out[i] = []float32{1, 0}
		case strings.Contains(strings.ToLower(text), "fever"):
			out[i] = []float32{0, 1}
		default:
			out[i] = []float32{0.5, 0.5}
		}
	}
	return out, nil
}

func (s *stubProvider) Name() string { return "stub" }

func newTestServer(provider *stubProvider) *Server {
	entries := []icd10.ReferenceEntry{
		{Code: "R05", Description: "Cough", Vector: []float32{1, 0}},
		{Code: "R50.9", Description: "Fever, unspecified", Vector: []float32{0, 1}},
	}
	index := icd10.NewIndex(entries, provider)
	pipeline := nlp.New(prompt.NewStore(prompt.DefaultCatalog()), provider, index, "test-model")
	return New(pipeline, index, provider)
}

func TestAnalyzeEndpoint(t *testing.T) {
	provider := &stubProvider{
		completion: `{"symptoms": [{"symptom":"cough","context":"dry cough","location":"chest","onset":"2 days"}]}`,
	}
	server := newTestServer(provider)

	req := httptest.NewRequest(http.MethodPost, "/api/nlp/analyze", strings.NewReader(`{"text":"doctor patient conversation"}`))
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var out nlp.AnalysisOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out.Symptoms) != 1 {
		t.Fatalf("expected 1 symptom, got %d", len(out.Symptoms))
	}
	if out.Symptoms[0].ICD10 != "R05 - Cough" {
		t.Fatalf("unexpected label: %q", out.Symptoms[0].ICD10)
	}
}

func TestAnalyzeEndpointRequiresText(t *testing.T) {
	server := newTestServer(&stubProvider{})

	req := httptest.NewRequest(http.MethodPost, "/api/nlp/analyze", strings.NewReader(`{"text":"  "}`))
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestEmbeddingEndpoint(t *testing.T) {
	server := newTestServer(&stubProvider{})

	req := httptest.NewRequest(http.MethodPost, "/api/nlp/embedding", strings.NewReader(`{"text":"fever", "amount": 1}`))
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var rows []embeddingRow
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Code != "R50.9" || rows[0].Text != "Fever, unspecified" {
		t.Fatalf("unexpected row: %+v", rows[0])
	}
}

func TestCompletionEndpoint(t *testing.T) {
	server := newTestServer(&stubProvider{completion: "hello back"})

	body := `{"messages":[{"role":"user","content":"hello"}],"config":{"max_tokens":16}}`
	req := httptest.NewRequest(http.MethodPost, "/api/nlp/completion/test-model", strings.NewReader(body))
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var out map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out["content"] != "hello back" {
		t.Fatalf("unexpected content: %q", out["content"])
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(&stubProvider{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var health map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if health["status"] != "ok" || health["provider"] != "stub" {
		t.Fatalf("unexpected health payload: %+v", health)
	}
}

func TestCORSPreflight(t *testing.T) {
	server := newTestServer(&stubProvider{})

	req := httptest.NewRequest(http.MethodOptions, "/api/nlp/analyze", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("missing CORS header")
	}
}
