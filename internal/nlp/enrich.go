package nlp

import (
	"context"
	"fmt"
	"strings"

	"github.com/lc2/ambispeech/internal/extraction"
)

// Enrich attaches the nearest ICD-10 label to each validated symptom. The
// query combines context and symptom text, which matches better than either
// field alone. Output order and length mirror the input; symptoms are
// processed sequentially, the index itself serializes concurrent callers.
func (p *Pipeline) Enrich(ctx context.Context, symptoms []extraction.Symptom) ([]CodedSymptom, error) {
	coded := make([]CodedSymptom, 0, len(symptoms))
	for _, sym := range symptoms {
		query := strings.TrimSpace(sym.Context + " " + sym.Symptom)
		matches, err := p.index.Search(ctx, query, 1)
		if err != nil {
			return nil, fmt.Errorf("enrich %q: %w", sym.Symptom, err)
		}
		label := ""
		if len(matches) > 0 {
			label = matches[0].Entry.Label()
		}
		coded = append(coded, CodedSymptom{
			ICD10:    label,
			Symptom:  sym.Symptom,
			Context:  sym.Context,
			Location: sym.Location,
			Onset:    sym.Onset,
		})
	}
	return coded, nil
}
