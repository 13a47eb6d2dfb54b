// Package providers contains the concrete completion/embedding backends.
package providers

import "context"

type Message struct {
	Role    string
	Content string
}

// CompletionConfig carries per-call generation parameters.
type CompletionConfig struct {
	MaxTokens int64
	// JSONObject asks the service to constrain the response to a single
	// JSON object.
	JSONObject bool
}

// Provider is the contract the pipeline depends on: chat completion and
// text embedding. Implementations must be safe for concurrent use.
type Provider interface {
	Complete(ctx context.Context, messages []Message, cfg CompletionConfig, model string) (string, error)
	Embed(ctx context.Context, input []string) ([][]float32, error)
	Name() string
}
