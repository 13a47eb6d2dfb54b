// Package icd10 holds the ICD-10 reference corpus and answers
// nearest-neighbor queries over its embedding vectors.
package icd10

import "fmt"

// ReferenceEntry is one row of the reference corpus: a diagnosis code, its
// description and the precomputed embedding of the description.
type ReferenceEntry struct {
	Code        string
	Description string
	Vector      []float32
}

// Label renders the entry in the "code - description" form attached to
// enriched symptoms.
func (e ReferenceEntry) Label() string {
	return fmt.Sprintf("%s - %s", e.Code, e.Description)
}

// Match pairs a corpus entry with its similarity to a query.
type Match struct {
	Entry ReferenceEntry
	Score float64
}
