// Package llmutils builds llm.Service implementations from configuration.
package llmutils

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/papercomputeco/kotori/pkg/credentials"
	"github.com/papercomputeco/kotori/pkg/llm"
	"github.com/papercomputeco/kotori/pkg/llm/anthropic"
	"github.com/papercomputeco/kotori/pkg/llm/ollama"
	"github.com/papercomputeco/kotori/pkg/llm/openai"
)

// KeyResolver resolves an API key for a provider. *credentials.Manager
// satisfies it.
type KeyResolver interface {
	Resolve(provider, explicit string) (string, error)
}

type NewServiceOpts struct {
	// Provider is one of groq, openai, anthropic, ollama.
	Provider string
	Model    string
	BaseURL  string

	// APIKey takes precedence over CredMgr and the provider env var.
	APIKey  string
	CredMgr KeyResolver
	Timeout time.Duration
}

// NewService creates the configured provider. Hosted providers without a
// resolvable API key fail with llm.ErrMissingCredentials.
func NewService(o *NewServiceOpts) (llm.Service, error) {
	provider := strings.ToLower(o.Provider)

	apiKey, err := resolveKey(provider, o)
	if err != nil {
		return nil, fmt.Errorf("resolving %s API key: %w", provider, err)
	}

	switch provider {
	case llm.Groq:
		baseURL := o.BaseURL
		if baseURL == "" {
			baseURL = openai.GroqBaseURL
		}
		svc, err := openai.NewClient(openai.Config{
			APIKey:  apiKey,
			Model:   o.Model,
			BaseURL: baseURL,
			Timeout: o.Timeout,
		})
		return checked(provider, svc, err)
	case llm.OpenAI:
		svc, err := openai.NewClient(openai.Config{
			APIKey:  apiKey,
			Model:   o.Model,
			BaseURL: o.BaseURL,
			Timeout: o.Timeout,
		})
		return checked(provider, svc, err)
	case llm.Anthropic:
		svc, err := anthropic.NewClient(anthropic.Config{
			APIKey:  apiKey,
			Model:   o.Model,
			BaseURL: o.BaseURL,
			Timeout: o.Timeout,
		})
		return checked(provider, svc, err)
	case llm.Ollama:
		return ollama.NewClient(ollama.Config{
			BaseURL: o.BaseURL,
			Model:   o.Model,
			Timeout: o.Timeout,
		})
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s (supported: %s)",
			o.Provider, strings.Join(llm.SupportedProviders(), ", "))
	}
}

func resolveKey(provider string, o *NewServiceOpts) (string, error) {
	if provider == llm.Ollama {
		return "", nil
	}
	if o.CredMgr != nil {
		return o.CredMgr.Resolve(provider, o.APIKey)
	}
	if o.APIKey != "" {
		return o.APIKey, nil
	}
	if env := credentials.EnvVarForProvider(provider); env != "" {
		return os.Getenv(env), nil
	}
	return "", nil
}

// checked names the env var to set when a hosted provider has no key.
func checked[T llm.Service](provider string, svc T, err error) (llm.Service, error) {
	if err == nil {
		return svc, nil
	}
	if env := credentials.EnvVarForProvider(provider); env != "" && errors.Is(err, llm.ErrMissingCredentials) {
		return nil, fmt.Errorf("%w: set %s, llm.api_key, or run 'kotori auth %s'", err, env, provider)
	}
	return nil, err
}
