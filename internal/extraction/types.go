// Package extraction isolates and validates the structured payload embedded
// in raw model output.
package extraction

// Symptom is one extracted complaint as the model reports it, before any
// ICD-10 enrichment.
type Symptom struct {
	Symptom  string `json:"symptom"`
	Context  string `json:"context"`
	Location string `json:"location"`
	Onset    string `json:"onset"`
}

// Extraction is the symptom list schema the model is asked to produce.
type Extraction struct {
	Symptoms []Symptom `json:"symptoms"`
}
