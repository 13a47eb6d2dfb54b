// Package nlp composes the analyze pipeline: prompt resolution, completion,
// extraction, ICD-10 enrichment and result merging.
package nlp

// CodedSymptom is a validated symptom with its nearest ICD-10 match
// attached as a "code - description" label.
type CodedSymptom struct {
	ICD10    string `json:"icd10"`
	Symptom  string `json:"symptom"`
	Context  string `json:"context"`
	Location string `json:"location"`
	Onset    string `json:"onset"`
}

// AnalysisOutput is the merged pipeline result. Either field may be absent
// when its branch failed; a fully empty output means nothing was extractable.
type AnalysisOutput struct {
	Symptoms  []CodedSymptom `json:"symptoms,omitempty"`
	Anamnesis string         `json:"anamnesis,omitempty"`
}
