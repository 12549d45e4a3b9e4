// Package orchestrator runs one dialogue turn: route, generate, persist,
// and report.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/papercomputeco/kotori/pkg/dialogue"
	"github.com/papercomputeco/kotori/pkg/eventstream"
	"github.com/papercomputeco/kotori/pkg/router"
)

// Classifier decides the intent of a turn.
type Classifier interface {
	Decide(ctx context.Context, text string) router.Decision
}

// Responder produces the response text for a turn. Non-welcome responders
// persist the turn to memory themselves and return the saved record ID, or
// "" when nothing was saved.
type Responder interface {
	Respond(ctx context.Context, query string) (response, memoryID string)
}

// Config wires the collaborators of an Orchestrator.
type Config struct {
	Router     Classifier
	Welcome    Responder
	QnA        Responder
	Emotional  Responder
	Suggestion Responder

	// Publisher receives a turn event after each turn. Optional.
	Publisher eventstream.Publisher

	// Closers are released by Close in order, e.g. the memory store and
	// reference index.
	Closers []io.Closer
}

// Turn is a finished turn plus how it was produced.
type Turn struct {
	State    dialogue.State
	Stage    router.Stage
	Rule     string
	MemoryID string
	Duration time.Duration
}

// Orchestrator sequences Router, Generator and memory write for a single
// turn. It holds no per-turn state and is safe for concurrent use when its
// collaborators are.
type Orchestrator struct {
	router     Classifier
	responders map[dialogue.Intent]Responder
	publisher  eventstream.Publisher
	closers    []io.Closer
	logger     *slog.Logger
}

// New validates c and creates an Orchestrator. Every intent must have a
// responder.
func New(c Config, logger *slog.Logger) (*Orchestrator, error) {
	if c.Router == nil {
		return nil, errors.New("orchestrator requires a router")
	}
	if logger == nil {
		logger = slog.Default()
	}

	responders := map[dialogue.Intent]Responder{
		dialogue.IntentWelcome:    c.Welcome,
		dialogue.IntentQnA:        c.QnA,
		dialogue.IntentEmotional:  c.Emotional,
		dialogue.IntentSuggestion: c.Suggestion,
	}
	for _, intent := range dialogue.Intents() {
		if responders[intent] == nil {
			return nil, fmt.Errorf("orchestrator requires a responder for intent %q", intent)
		}
	}

	return &Orchestrator{
		router:     c.Router,
		responders: responders,
		publisher:  c.Publisher,
		closers:    c.Closers,
		logger:     logger,
	}, nil
}

// Run executes one turn and returns the populated state. It never fails.
func (o *Orchestrator) Run(ctx context.Context, req dialogue.Request) dialogue.State {
	return o.RunTurn(ctx, req).State
}

// RunTurn is Run, also reporting the routing stage, memory id and timing.
func (o *Orchestrator) RunTurn(ctx context.Context, req dialogue.Request) Turn {
	started := time.Now()
	b := dialogue.NewBuilder(req)

	// Start -> Routed
	decision := o.router.Decide(ctx, b.Input())
	b.Routed(decision.Intent)

	// Routed -> Generated (-> Persisted inside non-welcome responders)
	responder, ok := o.responders[decision.Intent]
	if !ok {
		o.logger.Error("no responder for intent", "intent", decision.Intent)
		return Turn{State: b.Build(), Stage: decision.Stage, Rule: decision.Rule, Duration: time.Since(started)}
	}
	response, memoryID := responder.Respond(ctx, b.Input())
	b.Generated(response)

	// Done
	state := b.Build()
	turn := Turn{
		State:    state,
		Stage:    decision.Stage,
		Rule:     decision.Rule,
		MemoryID: memoryID,
		Duration: time.Since(started),
	}

	o.publish(ctx, turn)
	o.logger.Debug("turn completed",
		"intent", state.Intent,
		"agent", state.Agent,
		"stage", turn.Stage,
		"duration", turn.Duration,
	)
	return turn
}

func (o *Orchestrator) publish(ctx context.Context, turn Turn) {
	if o.publisher == nil {
		return
	}

	s := turn.State
	event := eventstream.NewTurnCompletedEvent(string(s.Intent), string(s.Agent), s.Input, s.Response, turn.MemoryID)
	if err := o.publisher.PublishTurn(ctx, event); err != nil {
		o.logger.Warn("failed to publish turn event", "error", err, "event_id", event.EventID)
	}
}

// Close releases the publisher and every configured closer.
func (o *Orchestrator) Close() error {
	var errs []error
	if o.publisher != nil {
		if err := o.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing publisher: %w", err))
		}
	}
	for _, c := range o.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
