package agent

import (
	"context"
	"log/slog"
	"strings"

	"github.com/papercomputeco/kotori/pkg/llm"
	"github.com/papercomputeco/kotori/pkg/logger"
)

const (
	welcomeTemperature = 0.7
	welcomeMaxTokens   = 50
)

const welcomeTemplate = `You are Kotori, a friendly and caring companion for navigating Empty Nest Syndrome. Your purpose is to greet the user warmly and offer clear options for how you can help them today.

Respond with a warm, friendly greeting using only simple sentences. Keep it concise and inviting. After your greeting, offer clear options for what they might want to do next.

Example:
User: Hi Kotori!
Kotori: ` + Greeting + `

User's Message: {query}

Your Greeting:`

// Welcomer greets the user. It uses no context and saves nothing.
type Welcomer struct {
	llm    llm.Service
	logger *slog.Logger
}

// NewWelcomer creates a Welcomer. A nil svc always returns Greeting.
func NewWelcomer(svc llm.Service, log *slog.Logger) *Welcomer {
	if log == nil {
		log = slog.Default()
	}
	return &Welcomer{llm: svc, logger: log.With(logger.ModeKey, "welcome")}
}

// Respond returns a greeting for query. Greetings are never saved, so the
// memory ID is always empty.
func (w *Welcomer) Respond(ctx context.Context, query string) (string, string) {
	return w.Generate(ctx, query), ""
}

// Generate returns a greeting for query.
func (w *Welcomer) Generate(ctx context.Context, query string) string {
	if w.llm == nil {
		return Greeting
	}

	prompt := strings.ReplaceAll(welcomeTemplate, "{query}", query)
	out, err := w.llm.Complete(ctx, prompt,
		llm.WithTemperature(welcomeTemperature),
		llm.WithMaxTokens(welcomeMaxTokens),
	)
	if err != nil {
		w.logger.Error("welcome generation failed, using fixed greeting", "error", err)
		return Greeting
	}

	out = strings.TrimSpace(out)
	if out == "" {
		w.logger.Warn("empty greeting, using fixed greeting")
		return Greeting
	}
	return out
}
