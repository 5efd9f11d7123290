// Package ai classifies user interest with hosted language models.
//
// A Completer sends one prompt and returns raw text. Resilient wraps any
// Completer with rate limiting, a concurrency cap, retries and a circuit
// breaker. Classifier turns the model's JSON answer into an interest level.
package ai

import (
	"context"
	"fmt"
)

// Provider names accepted by NewCompleter
const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Default models per provider
const (
	// ModelHaiku is the cost-efficient Anthropic model; classification is a small task
	ModelHaiku = "claude-3-5-haiku-20241022"
	// ModelGeminiFlash is the default Gemini model
	ModelGeminiFlash = "gemini-2.0-flash"
)

// Completer sends a single-turn request and returns the model's text
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// CompleterFunc adapts a function to the Completer interface
type CompleterFunc func(ctx context.Context, system, prompt string) (string, error)

// Complete calls f
func (f CompleterFunc) Complete(ctx context.Context, system, prompt string) (string, error) {
	return f(ctx, system, prompt)
}

// NewCompleter builds the completer for provider. An empty model selects the
// provider default.
func NewCompleter(ctx context.Context, provider, apiKey, model string) (Completer, error) {
	switch provider {
	case ProviderAnthropic:
		return NewAnthropicCompleter(apiKey, model)
	case ProviderGemini:
		return NewGeminiCompleter(ctx, apiKey, model)
	default:
		return nil, fmt.Errorf("unknown AI provider %q (want %s or %s)", provider, ProviderAnthropic, ProviderGemini)
	}
}
