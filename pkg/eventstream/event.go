package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeTurnCompleted is emitted after a dialogue turn finishes.
	EventTypeTurnCompleted = "kotori.turn.completed"
)

// TurnCompletedEvent is a transport-neutral event payload for a finished turn.
type TurnCompletedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`

	Intent   string `json:"intent"`
	Agent    string `json:"agent"`
	Input    string `json:"input"`
	Response string `json:"response"`

	// MemoryID is the id of the memory record written for the turn. It is
	// empty for welcome turns and when the save failed.
	MemoryID string `json:"memory_id,omitempty"`
}

// NewTurnCompletedEvent stamps a new event with a fresh id and time.
func NewTurnCompletedEvent(intent, agent, input, response, memoryID string) *TurnCompletedEvent {
	return &TurnCompletedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeTurnCompleted,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Intent:        intent,
		Agent:         agent,
		Input:         input,
		Response:      response,
		MemoryID:      memoryID,
	}
}
