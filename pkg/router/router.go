// Package router classifies a user turn into one of the four
// conversational intents.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/papercomputeco/kotori/pkg/cascade"
	"github.com/papercomputeco/kotori/pkg/dialogue"
	"github.com/papercomputeco/kotori/pkg/llm"
)

const (
	classifyTemperature = 0.1
	classifyMaxTokens   = 20
)

// Stage names the cascade layer that decided an intent.
type Stage string

const (
	StageGreeting     Stage = "greeting"
	StageFollowUp     Stage = "follow_up"
	StageModel        Stage = "model"
	StageKeyword      Stage = "keyword"
	StageErrorKeyword Stage = "error_keyword"
)

// Decision is a classification and the stage that produced it.
type Decision struct {
	Intent dialogue.Intent
	Stage  Stage
	Rule   string
}

// Config holds router settings.
type Config struct {
	// AgentName is recognized in greetings such as "hi kotori".
	AgentName string
}

// Router runs the classification cascade: greeting rules, follow-up
// phrases, model classification, then keyword rules.
type Router struct {
	llm       llm.Service
	greetings cascade.Table[dialogue.Intent]
	logger    *slog.Logger
}

// New creates a Router. svc may be nil, in which case keyword rules stand
// in for the model.
func New(svc llm.Service, cfg Config, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		llm:       svc,
		greetings: greetingRules(cfg.AgentName),
		logger:    logger,
	}
}

// Classify returns the intent for text. It never fails.
func (r *Router) Classify(ctx context.Context, text string) dialogue.Intent {
	return r.Decide(ctx, text).Intent
}

// Decide classifies text and reports which stage decided.
func (r *Router) Decide(ctx context.Context, text string) Decision {
	d := r.decide(ctx, text)
	r.logger.Info("routed input", "intent", d.Intent, "stage", d.Stage, "rule", d.Rule)
	return d
}

func (r *Router) decide(ctx context.Context, text string) Decision {
	lower := strings.ToLower(strings.TrimSpace(text))

	if intent, rule, ok := r.greetings.Evaluate(lower); ok {
		return Decision{Intent: intent, Stage: StageGreeting, Rule: rule}
	}
	if intent, rule, ok := followUpRules.Evaluate(lower); ok {
		return Decision{Intent: intent, Stage: StageFollowUp, Rule: rule}
	}

	if r.llm != nil {
		answer, err := r.llm.Complete(ctx, classifyPrompt(text),
			llm.WithTemperature(classifyTemperature),
			llm.WithMaxTokens(classifyMaxTokens),
		)
		if err != nil {
			r.logger.Error("model routing failed", "error", err)
			intent, rule, _ := errorKeywordRules.Evaluate(lower)
			if intent == "" {
				intent, rule = dialogue.IntentQnA, "default"
			}
			return Decision{Intent: intent, Stage: StageErrorKeyword, Rule: rule}
		}

		answer = strings.ToLower(strings.TrimSpace(answer))
		r.logger.Debug("model routing answer", "answer", answer)
		if intent, rule, ok := answerRules.Evaluate(answer); ok {
			return Decision{Intent: intent, Stage: StageModel, Rule: rule}
		}
	}

	if intent, rule, ok := keywordRules.Evaluate(lower); ok {
		return Decision{Intent: intent, Stage: StageKeyword, Rule: rule}
	}
	return Decision{Intent: dialogue.IntentQnA, Stage: StageKeyword, Rule: "default"}
}

func classifyPrompt(query string) string {
	return fmt.Sprintf(`You are a classifier. Classify this user input into exactly ONE category: qna, emotional, or suggestion.

Examples:
- "What is Empty Nest Syndrome?" → qna
- "How do I cope with ENS?" → qna
- "Tell me about empty nest syndrome" → qna
- "I feel sad today" → emotional
- "I'm lonely and depressed" → emotional
- "I miss my children" → emotional
- "Can you suggest activities?" → suggestion
- "Give me ways to feel better" → suggestion
- "What should I do now?" → suggestion

User input: "%s"

Respond with only one word: qna, emotional, or suggestion`, query)
}
