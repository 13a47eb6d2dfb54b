// Package prompt holds the catalog of chat prompt templates used by the NLP
// pipeline and resolves them against caller-supplied conversation text.
package prompt

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Identifier selects a template by purpose.
type Identifier string

const (
	// SymptomExtractJSON asks the model for a JSON symptom extraction.
	SymptomExtractJSON Identifier = "SYMPTOM_EXTRACT_JSON"
	// AnamnesisExtract asks the model for a free-text anamnesis summary.
	AnamnesisExtract Identifier = "ANAMNESIS_EXTRACT"
)

// Role tags a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Template is an ordered list of role-tagged messages for one purpose.
type Template struct {
	Identifier Identifier `json:"identifier"`
	Messages   []Message  `json:"messages"`
}

// Catalog is the full template set plus the placeholder token marking where
// user input is substituted.
type Catalog struct {
	UserinputPlaceholder string     `json:"userinput_placeholder"`
	Prompts              []Template `json:"prompts"`
}

// ErrNotFound reports that no template exists for the requested identifier.
// Callers treat this as "feature unavailable", not a fatal error.
var ErrNotFound = errors.New("prompt: no template for identifier")

// Validate checks catalog shape: a non-empty placeholder and, for every
// template, exactly one placeholder occurrence across its message list.
func (c Catalog) Validate() error {
	placeholder := c.UserinputPlaceholder
	if strings.TrimSpace(placeholder) == "" {
		return errors.New("prompt: catalog placeholder is empty")
	}
	for _, tpl := range c.Prompts {
		if strings.TrimSpace(string(tpl.Identifier)) == "" {
			return errors.New("prompt: template with empty identifier")
		}
		count := 0
		for _, msg := range tpl.Messages {
			count += strings.Count(msg.Content, placeholder)
		}
		if count != 1 {
			return fmt.Errorf("prompt: template %s contains placeholder %d times, want 1", tpl.Identifier, count)
		}
	}
	return nil
}

func (c Catalog) clone() Catalog {
	out := Catalog{UserinputPlaceholder: c.UserinputPlaceholder}
	if len(c.Prompts) == 0 {
		return out
	}
	out.Prompts = make([]Template, len(c.Prompts))
	for i, tpl := range c.Prompts {
		out.Prompts[i] = tpl.clone()
	}
	return out
}

func (t Template) clone() Template {
	out := Template{Identifier: t.Identifier}
	if len(t.Messages) > 0 {
		out.Messages = make([]Message, len(t.Messages))
		copy(out.Messages, t.Messages)
	}
	return out
}

// Store guards shared access to the catalog. The catalog is read-only in
// practice, but reads still snapshot under the lock so that callers receive
// an independently mutable template.
type Store struct {
	mu      sync.Mutex
	catalog Catalog
}

func NewStore(catalog Catalog) *Store {
	return &Store{catalog: catalog.clone()}
}

// snapshot deep-copies the catalog under the lock. The lock is held only for
// the copy; filtering and substitution run on the snapshot afterwards, so a
// slow caller never blocks other readers.
func (s *Store) snapshot() Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.clone()
}

// Resolve returns the first template matching id with every placeholder
// occurrence replaced by text. The returned template is caller-owned and
// safe to mutate. Returns ErrNotFound when no template matches.
func (s *Store) Resolve(text string, id Identifier) (Template, error) {
	catalog := s.snapshot()

	var found *Template
	for i := range catalog.Prompts {
		if catalog.Prompts[i].Identifier == id {
			found = &catalog.Prompts[i]
			break
		}
	}
	if found == nil {
		return Template{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	for i, msg := range found.Messages {
		if strings.Contains(msg.Content, catalog.UserinputPlaceholder) {
			found.Messages[i].Content = strings.ReplaceAll(msg.Content, catalog.UserinputPlaceholder, text)
		}
	}
	return *found, nil
}
