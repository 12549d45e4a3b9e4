package logger

import "log/slog"

// Attribute keys shared by every kotori component.
const (
	// ComponentKey names the pipeline part that emitted a record, e.g.
	// router, memory, assembler, agent.
	ComponentKey = "component"

	// ModeKey names the generator mode (qna, emotional, suggestion, welcome).
	ModeKey = "mode"
)

// Component returns a child of l tagged with the component name. A nil l
// yields a discarding logger.
func Component(l *slog.Logger, name string) *slog.Logger {
	if l == nil {
		return Nop()
	}
	return l.With(ComponentKey, name)
}
