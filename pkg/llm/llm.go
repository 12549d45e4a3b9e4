// Package llm defines the single-prompt completion service used for intent
// classification and response generation, plus provider implementations in
// its subpackages.
package llm

import (
	"context"
	"errors"
)

// Provider names.
const (
	Groq      = "groq"
	OpenAI    = "openai"
	Anthropic = "anthropic"
	Ollama    = "ollama"
)

var (
	// ErrMissingCredentials is returned when a hosted provider has no API key.
	ErrMissingCredentials = errors.New("missing LLM credentials")

	// ErrEmptyCompletion is returned when a provider answers with no text.
	ErrEmptyCompletion = errors.New("empty completion")
)

// Service completes a single user prompt.
type Service interface {
	Complete(ctx context.Context, prompt string, opts ...Option) (string, error)
}

// Options are per-call generation parameters. Zero values leave the
// provider default in place.
type Options struct {
	Temperature float64
	MaxTokens   int
}

// Option mutates Options.
type Option func(*Options)

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(o *Options) { o.Temperature = t }
}

// WithMaxTokens caps the completion length.
func WithMaxTokens(n int) Option {
	return func(o *Options) { o.MaxTokens = n }
}

// ApplyOptions folds opts into an Options value.
func ApplyOptions(opts []Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// SupportedProviders returns the list of all supported provider names.
func SupportedProviders() []string {
	return []string{Groq, OpenAI, Anthropic, Ollama}
}

// ServiceFunc adapts a function to Service.
type ServiceFunc func(ctx context.Context, prompt string, o Options) (string, error)

// Complete calls f.
func (f ServiceFunc) Complete(ctx context.Context, prompt string, opts ...Option) (string, error) {
	return f(ctx, prompt, ApplyOptions(opts))
}
