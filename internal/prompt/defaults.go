package prompt

// Placeholder is the reserved token marking where conversation text is
// inserted. Chosen so it is vanishingly unlikely to appear in a transcript;
// substitution is plain token replacement and is not escaped.
const Placeholder = "<<USERINPUT>>"

const symptomSystemPrompt = `You are a medical assistant that extracts structured data from a conversation between a doctor and a patient.
Respond with a single JSON object of the form:
{"symptoms": [{"symptom": "...", "context": "...", "location": "...", "onset": "..."}]}
Every field is a string. "symptom" names the complaint, "context" is the surrounding description from the conversation, "location" is the body site and "onset" is when it started. Do not add any other keys or commentary.`

const anamnesisSystemPrompt = `You are a medical assistant. Summarize the following conversation between a doctor and a patient as a concise free-text anamnesis. Mention relevant history, current complaints and their course. Respond with the anamnesis text only.`

// DefaultCatalog returns the built-in template catalog.
func DefaultCatalog() Catalog {
	return Catalog{
		UserinputPlaceholder: Placeholder,
		Prompts: []Template{
			{
				Identifier: SymptomExtractJSON,
				Messages: []Message{
					{Role: RoleSystem, Content: symptomSystemPrompt},
					{Role: RoleUser, Content: Placeholder},
				},
			},
			{
				Identifier: AnamnesisExtract,
				Messages: []Message{
					{Role: RoleSystem, Content: anamnesisSystemPrompt},
					{Role: RoleUser, Content: Placeholder},
				},
			},
		},
	}
}
