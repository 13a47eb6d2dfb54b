package nlp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/lc2/ambispeech/internal/common"
	"github.com/lc2/ambispeech/internal/common/telemetry"
	"github.com/lc2/ambispeech/internal/extraction"
	"github.com/lc2/ambispeech/internal/icd10"
	"github.com/lc2/ambispeech/internal/llm"
	"github.com/lc2/ambispeech/internal/prompt"
)

// DefaultModel is the completion model used when none is configured.
const DefaultModel = "gpt-3.5-turbo-1106"

const extractionMaxTokens = 4096

// Pipeline orchestrates the two analysis branches over a shared prompt
// store, completion provider and similarity index.
type Pipeline struct {
	prompts  *prompt.Store
	provider llm.Provider
	index    *icd10.Index
	model    string
}

func New(prompts *prompt.Store, provider llm.Provider, index *icd10.Index, model string) *Pipeline {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	return &Pipeline{prompts: prompts, provider: provider, index: index, model: model}
}

// Analyze runs the symptom-extraction and anamnesis branches independently
// and merges whatever succeeded. A failing branch leaves its field absent;
// Analyze itself never fails.
func (p *Pipeline) Analyze(ctx context.Context, text string) AnalysisOutput {
	logger := common.Logger()
	var out AnalysisOutput

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		symptoms, err := p.extractSymptoms(ctx, text)
		if err != nil {
			logBranch(logger, "symptoms", err)
			return
		}
		telemetry.RecordBranch("symptoms", "ok")
		out.Symptoms = symptoms
	}()
	go func() {
		defer wg.Done()
		anamnesis, err := p.summarizeAnamnesis(ctx, text)
		if err != nil {
			logBranch(logger, "anamnesis", err)
			return
		}
		telemetry.RecordBranch("anamnesis", "ok")
		out.Anamnesis = anamnesis
	}()
	wg.Wait()

	return out
}

func logBranch(logger *slog.Logger, branch string, err error) {
	if errors.Is(err, prompt.ErrNotFound) {
		telemetry.RecordBranch(branch, "skipped")
		logger.Debug("nlp: branch skipped, no template", "branch", branch)
		return
	}
	telemetry.RecordBranch(branch, "failed")
	logger.Warn("nlp: branch failed", "branch", branch, "error", err)
}

// extractSymptoms runs resolve → complete → parse → validate → enrich.
// Parse and validation failures both surface as errors here: the branch
// omits symptoms rather than returning raw model text.
func (p *Pipeline) extractSymptoms(ctx context.Context, text string) ([]CodedSymptom, error) {
	tpl, err := p.prompts.Resolve(text, prompt.SymptomExtractJSON)
	if err != nil {
		return nil, err
	}
	raw, err := p.provider.Complete(ctx, toMessages(tpl), llm.CompletionConfig{
		MaxTokens:  extractionMaxTokens,
		JSONObject: true,
	}, p.model)
	if err != nil {
		return nil, fmt.Errorf("symptom completion: %w", err)
	}
	payload, err := extraction.ExtractJSON(raw)
	if err != nil {
		return nil, err
	}
	symptoms, err := extraction.ValidateSymptoms(payload)
	if err != nil {
		return nil, err
	}
	return p.Enrich(ctx, symptoms)
}

// summarizeAnamnesis returns the completion text verbatim; this branch does
// not expect structured output.
func (p *Pipeline) summarizeAnamnesis(ctx context.Context, text string) (string, error) {
	tpl, err := p.prompts.Resolve(text, prompt.AnamnesisExtract)
	if err != nil {
		return "", err
	}
	raw, err := p.provider.Complete(ctx, toMessages(tpl), llm.CompletionConfig{
		MaxTokens: extractionMaxTokens,
	}, p.model)
	if err != nil {
		return "", fmt.Errorf("anamnesis completion: %w", err)
	}
	return raw, nil
}

func toMessages(tpl prompt.Template) []llm.Message {
	messages := make([]llm.Message, 0, len(tpl.Messages))
	for _, msg := range tpl.Messages {
		messages = append(messages, llm.Message{Role: string(msg.Role), Content: msg.Content})
	}
	return messages
}
