package icd10

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "icd10.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestImportCSVAndLoadEntries(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	csvPath := filepath.Join(t.TempDir(), "corpus.csv")
	content := "code;description\nR05;Cough\nR50.9;Fever, unspecified\n;missing code\n"
	if err := os.WriteFile(csvPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	imported, err := store.ImportCSV(ctx, csvPath)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if imported != 2 {
		t.Fatalf("expected 2 imported rows, got %d", imported)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 rows, got %d", count)
	}

	entries, err := store.Entries(ctx)
	if err != nil {
		t.Fatalf("load entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Code != "R05" || entries[0].Description != "Cough" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[0].Vector != nil {
		t.Fatalf("expected no vector before vectorization, got %v", entries[0].Vector)
	}
}

func TestVectorizePersistsVectors(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	csvPath := filepath.Join(t.TempDir(), "corpus.csv")
	if err := os.WriteFile(csvPath, []byte("R05;Cough\nR51;Headache\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if _, err := store.ImportCSV(ctx, csvPath); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	embedder := &fixedEmbedder{vectors: map[string][]float32{
		"Cough":    {1, 2, 3},
		"Headache": {4, 5, 6},
	}}
	vectorized, err := store.Vectorize(ctx, embedder, 1)
	if err != nil {
		t.Fatalf("vectorize failed: %v", err)
	}
	if vectorized != 2 {
		t.Fatalf("expected 2 vectorized rows, got %d", vectorized)
	}

	entries, err := store.Entries(ctx)
	if err != nil {
		t.Fatalf("load entries: %v", err)
	}
	want := []float32{1, 2, 3}
	if len(entries[0].Vector) != len(want) {
		t.Fatalf("unexpected vector length: %d", len(entries[0].Vector))
	}
	for i, v := range want {
		if entries[0].Vector[i] != v {
			t.Fatalf("vector roundtrip mismatch at %d: %f != %f", i, entries[0].Vector[i], v)
		}
	}

	// A second pass has nothing left to vectorize.
	vectorized, err = store.Vectorize(ctx, embedder, 10)
	if err != nil {
		t.Fatalf("second vectorize failed: %v", err)
	}
	if vectorized != 0 {
		t.Fatalf("expected no rows on second pass, got %d", vectorized)
	}
}
