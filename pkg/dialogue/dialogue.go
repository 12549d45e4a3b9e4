// Package dialogue holds the per-turn request and state types that flow
// through the orchestrator.
package dialogue

// Intent is the conversational mode assigned to a user turn.
type Intent string

const (
	IntentWelcome    Intent = "welcome"
	IntentQnA        Intent = "qna"
	IntentEmotional  Intent = "emotional"
	IntentSuggestion Intent = "suggestion"
)

// Intents lists every intent the router can return.
func Intents() []Intent {
	return []Intent{IntentWelcome, IntentQnA, IntentEmotional, IntentSuggestion}
}

// Valid reports whether i is one of the four routable intents.
func (i Intent) Valid() bool {
	switch i {
	case IntentWelcome, IntentQnA, IntentEmotional, IntentSuggestion:
		return true
	}
	return false
}

// Agent names the generator that produced a response.
type Agent string

const (
	AgentWelcome    Agent = "welcome"
	AgentQnA        Agent = "qna"
	AgentEmotional  Agent = "emotional"
	AgentSuggestion Agent = "suggestion"
	AgentUnknown    Agent = "unknown"
)

// AgentFor maps an intent to the agent that handles it.
func AgentFor(i Intent) Agent {
	switch i {
	case IntentWelcome:
		return AgentWelcome
	case IntentQnA:
		return AgentQnA
	case IntentEmotional:
		return AgentEmotional
	case IntentSuggestion:
		return AgentSuggestion
	}
	return AgentUnknown
}

// Request is the immutable input of one turn.
type Request struct {
	Input string `json:"input"`
}

// State is the finalized result of one turn.
type State struct {
	Input    string `json:"input"`
	Response string `json:"response"`
	Agent    Agent  `json:"agent"`
	Intent   Intent `json:"intent"`
}
