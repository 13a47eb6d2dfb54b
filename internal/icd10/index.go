package icd10

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/lc2/ambispeech/internal/common"
	"github.com/lc2/ambispeech/internal/common/telemetry"
)

// Embedder turns text into fixed-length vectors. Satisfied by llm.Provider.
type Embedder interface {
	Embed(ctx context.Context, input []string) ([][]float32, error)
}

// Index answers top-k nearest-description queries over the reference corpus.
// The corpus is loaded once and never mutated; the mutex serializes the
// whole embed-and-score sequence because query-time work shares scratch
// state across calls. One search at a time process-wide is a deliberate
// throughput trade for correctness.
type Index struct {
	mu       sync.Mutex
	entries  []ReferenceEntry
	embedder Embedder
}

func NewIndex(entries []ReferenceEntry, embedder Embedder) *Index {
	common.Logger().Info("icd10: index ready", "entries", len(entries))
	return &Index{entries: entries, embedder: embedder}
}

// Len reports the corpus size.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Search returns the top-k corpus entries by descending cosine similarity to
// the query text. Ties keep corpus order. k is clamped to the corpus size;
// k < 1 means 1.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]Match, error) {
	if ix.embedder == nil {
		return nil, errors.New("icd10: no embedder configured")
	}
	if k < 1 {
		k = 1
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	start := time.Now()
	defer func() {
		telemetry.RecordIndexSearch(time.Since(start))
	}()

	if len(ix.entries) == 0 {
		return nil, nil
	}
	vectors, err := ix.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, errors.New("icd10: embedder returned no vector")
	}
	queryVec := vectors[0]

	matches := make([]Match, 0, len(ix.entries))
	for _, entry := range ix.entries {
		matches = append(matches, Match{Entry: entry, Score: cosine(queryVec, entry.Vector)})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if k > len(matches) {
		k = len(matches)
	}
	return matches[:k], nil
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
