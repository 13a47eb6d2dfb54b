package extraction

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON reports that no parseable JSON object could be located in the
// raw text. Distinct from ValidationError: the payload was found but does
// not match the symptom schema.
var ErrNoJSON = errors.New("extraction: no JSON object found")

type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction: invalid symptom payload: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("extraction: invalid symptom payload: %s", e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ExtractJSON locates the JSON object embedded in raw model output. Models
// wrap payloads in prose or markdown fences; the content of the first fenced
// block is preferred, then the first balanced brace region that parses.
func ExtractJSON(raw string) (json.RawMessage, error) {
	if fenced, ok := fencedBlock(raw); ok {
		if payload, ok := balancedObject(fenced); ok {
			return payload, nil
		}
	}
	if payload, ok := balancedObject(raw); ok {
		return payload, nil
	}
	return nil, ErrNoJSON
}

// fencedBlock returns the content between the first pair of ``` fences,
// with an optional language tag stripped.
func fencedBlock(raw string) (string, bool) {
	start := strings.Index(raw, "```")
	if start < 0 {
		return "", false
	}
	rest := raw[start+3:]
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	block := rest[:end]
	if nl := strings.IndexByte(block, '\n'); nl >= 0 {
		tag := strings.TrimSpace(block[:nl])
		if tag == "" || !strings.ContainsAny(tag, "{}") {
			block = block[nl+1:]
		}
	}
	return block, true
}

// balancedObject scans for the first balanced {...} region that is valid
// JSON. Brace counting respects string literals and escapes.
func balancedObject(raw string) (json.RawMessage, bool) {
	offset := 0
	for {
		start := strings.IndexByte(raw[offset:], '{')
		if start < 0 {
			return nil, false
		}
		start += offset
		depth := 0
		inString := false
		escaped := false
		for i := start; i < len(raw); i++ {
			c := raw[i]
			switch {
			case escaped:
				escaped = false
			case inString:
				if c == '\\' {
					escaped = true
				} else if c == '"' {
					inString = false
				}
			case c == '"':
				inString = true
			case c == '{':
				depth++
			case c == '}':
				depth--
				if depth == 0 {
					candidate := raw[start : i+1]
					if json.Valid([]byte(candidate)) {
						return json.RawMessage(candidate), true
					}
					i = len(raw)
				}
			}
		}
		offset = start + 1
	}
}

// ValidateSymptoms checks the extracted payload against the symptom list
// schema. A missing symptoms key, a non-list value or a wrong field type all
// yield a *ValidationError.
func ValidateSymptoms(payload json.RawMessage) ([]Symptom, error) {
	var probe struct {
		Symptoms *[]map[string]json.RawMessage `json:"symptoms"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return nil, &ValidationError{Reason: "symptoms is not a list of objects", Err: err}
	}
	if probe.Symptoms == nil {
		return nil, &ValidationError{Reason: "symptoms key missing"}
	}
	symptoms := make([]Symptom, 0, len(*probe.Symptoms))
	for idx, fields := range *probe.Symptoms {
		var sym Symptom
		for _, field := range []struct {
			name string
			dst  *string
		}{
			{"symptom", &sym.Symptom},
			{"context", &sym.Context},
			{"location", &sym.Location},
			{"onset", &sym.Onset},
		} {
			raw, ok := fields[field.name]
			if !ok {
				return nil, &ValidationError{Reason: fmt.Sprintf("symptoms[%d].%s missing", idx, field.name)}
			}
			if err := json.Unmarshal(raw, field.dst); err != nil {
				return nil, &ValidationError{Reason: fmt.Sprintf("symptoms[%d].%s is not a string", idx, field.name), Err: err}
			}
		}
		symptoms = append(symptoms, sym)
	}
	return symptoms, nil
}
