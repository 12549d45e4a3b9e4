// Package anthropic implements llm.Service over the Anthropic Messages API.
package anthropic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/papercomputeco/kotori/pkg/llm"
)

// defaultMaxTokens is sent when the caller sets no cap; the API requires one.
const defaultMaxTokens = 1024

// Client completes prompts with a Claude model.
type Client struct {
	client *anthropic.Client
	model  string
}

// Config holds configuration for the client.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// NewClient creates a client. An API key is required.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, llm.ErrMissingCredentials
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	client := anthropic.NewClient(opts...)
	return &Client{client: &client, model: cfg.Model}, nil
}

// Complete sends prompt as a single user message and joins the text blocks
// of the reply.
func (c *Client) Complete(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	o := llm.ApplyOptions(opts)

	maxTokens := int64(o.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if o.Temperature > 0 {
		params.Temperature = anthropic.Float(o.Temperature)
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}

	if strings.TrimSpace(b.String()) == "" {
		return "", llm.ErrEmptyCompletion
	}
	return b.String(), nil
}

var _ llm.Service = (*Client)(nil)
