package agent

// Event is one item of a runner's streamed output. The orchestrator
// switches on the concrete type.
type Event interface{ isEvent() }

// TokenDelta is an incremental fragment of assistant text.
type TokenDelta struct {
	Text string
}

// ToolCallEvent fires once per distinct tool name within a turn.
type ToolCallEvent struct {
	Name string
}

// FinalText closes a turn with the full assistant text.
type FinalText struct {
	Text string
}

func (TokenDelta) isEvent()    {}
func (ToolCallEvent) isEvent() {}
func (FinalText) isEvent()     {}
