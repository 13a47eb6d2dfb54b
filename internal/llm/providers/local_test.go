package providers

import (
	"context"
	"math"
	"testing"
)

func TestLocalEmbedDeterministic(t *testing.T) {
	p := NewLocalProvider()
	vectors, err := p.Embed(context.Background(), []string{"chest cough", "chest cough", "fever"})
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	if len(vectors) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(vectors))
	}
	for i := range vectors[0] {
		if vectors[0][i] != vectors[1][i] {
			t.Fatalf("identical input produced different vectors at %d", i)
		}
	}
	var norm float64
	for _, v := range vectors[0] {
		norm += float64(v) * float64(v)
	}
	if math.Abs(norm-1) > 1e-5 {
		t.Fatalf("expected unit norm, got %f", norm)
	}
}

func TestLocalCompleteRequiresMessages(t *testing.T) {
	p := NewLocalProvider()
	if _, err := p.Complete(context.Background(), nil, CompletionConfig{}, "any"); err == nil {
		t.Fatal("expected error for empty message list")
	}
	out, err := p.Complete(context.Background(), []Message{{Role: "user", Content: " hello "}}, CompletionConfig{}, "any")
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if out != "[local-stub] hello" {
		t.Fatalf("unexpected stub output: %q", out)
	}
}
