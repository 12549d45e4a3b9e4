package dialogue

// Builder accumulates the fields of a State as the pipeline advances. The
// agent is only set once a response has been recorded, so a turn that never
// reaches generation builds with AgentUnknown.
type Builder struct {
	req       Request
	intent    Intent
	response  string
	generated bool

	final *State
}

// NewBuilder starts a state for req.
func NewBuilder(req Request) *Builder {
	return &Builder{req: req}
}

// Input returns the request text.
func (b *Builder) Input() string {
	return b.req.Input
}

// Routed records the router's decision.
func (b *Builder) Routed(i Intent) *Builder {
	b.intent = i
	return b
}

// Intent returns the recorded intent, empty before routing.
func (b *Builder) Intent() Intent {
	return b.intent
}

// Generated records the response text.
func (b *Builder) Generated(response string) *Builder {
	b.response = response
	b.generated = true
	return b
}

// Build finalizes the state. Calls after the first return the same value
// and ignore later mutations.
func (b *Builder) Build() State {
	if b.final != nil {
		return *b.final
	}

	agent := AgentUnknown
	if b.generated {
		agent = AgentFor(b.intent)
	}
	b.final = &State{
		Input:    b.req.Input,
		Response: b.response,
		Agent:    agent,
		Intent:   b.intent,
	}
	return *b.final
}
