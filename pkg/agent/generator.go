package agent

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/papercomputeco/kotori/pkg/llm"
	"github.com/papercomputeco/kotori/pkg/logger"
	"github.com/papercomputeco/kotori/pkg/memory"
)

// Bullet marks each point of a well-formed answer.
const Bullet = "•"

// ContextSource assembles generation context.
type ContextSource interface {
	Assemble(ctx context.Context, query string, referenceK, memoryK, maxChars int) string
}

// MemorySaver records a finished turn and returns the saved record ID, or
// "" when nothing was saved.
type MemorySaver interface {
	Save(ctx context.Context, query, response string, t memory.Type) string
}

// Outcome reports which path produced an answer.
type Outcome string

const (
	OutcomeModel      Outcome = "model"
	OutcomeRepaired   Outcome = "repaired"
	OutcomeValidation Outcome = "validation_fallback"
	OutcomeError      Outcome = "error_fallback"
)

// Generator answers in one Mode. It never fails: model errors and poor
// completions are replaced by canned answers.
type Generator struct {
	mode   Mode
	llm    llm.Service
	source ContextSource
	memory MemorySaver
	logger *slog.Logger
}

// New creates a generator. ctxSource and mem may be nil; a nil svc always
// takes the error fallback.
func New(mode Mode, svc llm.Service, ctxSource ContextSource, mem MemorySaver, log *slog.Logger) *Generator {
	if log == nil {
		log = slog.Default()
	}
	return &Generator{
		mode:   mode,
		llm:    svc,
		source: ctxSource,
		memory: mem,
		logger: log.With(logger.ModeKey, string(mode.Type)),
	}
}

// Mode returns the generator's tuning.
func (g *Generator) Mode() Mode {
	return g.mode
}

// Generate answers query and saves the turn to memory.
func (g *Generator) Generate(ctx context.Context, query string) string {
	response, _, _ := g.generate(ctx, query)
	return response
}

// GenerateWithOutcome is Generate, also reporting which path answered.
func (g *Generator) GenerateWithOutcome(ctx context.Context, query string) (string, Outcome) {
	response, outcome, _ := g.generate(ctx, query)
	return response, outcome
}

// Respond is Generate, also returning the memory record ID. The ID is empty
// when no memory is configured or the save failed.
func (g *Generator) Respond(ctx context.Context, query string) (string, string) {
	response, _, memoryID := g.generate(ctx, query)
	return response, memoryID
}

func (g *Generator) generate(ctx context.Context, query string) (string, Outcome, string) {
	lower := strings.ToLower(query)

	var background string
	if g.source != nil {
		background = g.source.Assemble(ctx, query, g.mode.ReferenceK, g.mode.MemoryK, g.mode.ContextCap)
	}

	response, outcome := g.complete(ctx, query, lower, background)
	response = strip(response)

	var memoryID string
	if g.memory != nil {
		memoryID = g.memory.Save(ctx, query, response, g.mode.Type)
	}
	return response, outcome, memoryID
}

func (g *Generator) complete(ctx context.Context, query, lower, background string) (string, Outcome) {
	if g.llm == nil {
		g.logger.Error("no language model configured, using fallback")
		return g.mode.ErrorAnswer(lower), OutcomeError
	}

	prompt := strings.NewReplacer("{context}", background, "{question}", query).Replace(g.mode.Template)
	out, err := g.llm.Complete(ctx, prompt,
		llm.WithTemperature(g.mode.Temperature),
		llm.WithMaxTokens(g.mode.MaxTokens),
	)
	if err != nil {
		g.logger.Error("generation failed, using fallback", "error", err)
		return g.mode.ErrorAnswer(lower), OutcomeError
	}

	out = strings.TrimSpace(out)
	if utf8.RuneCountInString(out) < g.mode.MinLength {
		g.logger.Warn("completion too short, using fallback", "length", utf8.RuneCountInString(out))
		return g.mode.ValidationAnswer(lower), OutcomeValidation
	}

	if !strings.Contains(out, Bullet) {
		g.logger.Warn("completion missing bullets, repairing")
		body := out
		if g.mode.RepairIntro != "" {
			body = g.mode.RepairIntro + " " + out
		}
		return Bullet + " " + body + "\n\n" + Menu, OutcomeRepaired
	}

	return out, OutcomeModel
}

func strip(s string) string {
	for _, sc := range scaffolds {
		s = strings.ReplaceAll(s, sc, "")
	}
	return strings.TrimSpace(s)
}
