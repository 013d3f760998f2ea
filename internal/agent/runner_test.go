package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/tradeforge/tradeai-gateway/internal/platform/logger"
	"github.com/tradeforge/tradeai-gateway/internal/platform/openai"
)

// scriptedLLM plays back one StreamResult per completion round.
type scriptedLLM struct {
	rounds   []scriptedRound
	call     int
	messages [][]openai.ChatMessage
}

type scriptedRound struct {
	deltas []string
	result openai.StreamResult
}

func (s *scriptedLLM) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	return nil, nil
}

func (s *scriptedLLM) EmbedDim() int { return 4 }

func (s *scriptedLLM) GenerateText(ctx context.Context, system, user string) (string, error) {
	return "", nil
}

func (s *scriptedLLM) StreamChatCompletion(ctx context.Context, model string, msgs []openai.ChatMessage, tools []openai.ToolDef, onDelta func(string) error) (*openai.StreamResult, error) {
	s.messages = append(s.messages, append([]openai.ChatMessage(nil), msgs...))
	if s.call >= len(s.rounds) {
		return &openai.StreamResult{}, nil
	}
	round := s.rounds[s.call]
	s.call++
	for _, d := range round.deltas {
		if err := onDelta(d); err != nil {
			return nil, err
		}
	}
	return &round.result, nil
}

func echoTool(name string) Tool {
	return Tool{
		Name: name,
		Invoke: func(ctx context.Context, args map[string]any) string {
			return `{"passages":["stub"]}`
		},
	}
}

func collectEvents(t *testing.T) (func(Event) error, *[]Event) {
	t.Helper()
	var events []Event
	return func(e Event) error {
		events = append(events, e)
		return nil
	}, &events
}

func TestRunStreamedPlainAnswer(t *testing.T) {
	llm := &scriptedLLM{rounds: []scriptedRound{
		{deltas: []string{"안녕", "하세요"}},
	}}
	r := NewRunner(llm, logger.NewNop())
	ag := &Agent{Name: "test", Model: "gpt-4o", Instructions: "be brief"}

	onEvent, events := collectEvents(t)
	full, err := r.RunStreamed(context.Background(), ag, nil, "인사해줘", onEvent)
	if err != nil {
		t.Fatalf("RunStreamed: %v", err)
	}
	if full != "안녕하세요" {
		t.Errorf("full = %q", full)
	}
	if len(*events) != 3 {
		t.Fatalf("events = %d, want 3", len(*events))
	}
	if d, ok := (*events)[0].(TokenDelta); !ok || d.Text != "안녕" {
		t.Errorf("event 0 = %#v", (*events)[0])
	}
	if f, ok := (*events)[2].(FinalText); !ok || f.Text != "안녕하세요" {
		t.Errorf("event 2 = %#v", (*events)[2])
	}

	first := llm.messages[0]
	if first[0].Role != "system" || first[0].Content != "be brief" {
		t.Errorf("system message = %+v", first[0])
	}
	if first[len(first)-1].Role != "user" || first[len(first)-1].Content != "인사해줘" {
		t.Errorf("user message = %+v", first[len(first)-1])
	}
}

func TestRunStreamedToolRound(t *testing.T) {
	llm := &scriptedLLM{rounds: []scriptedRound{
		{result: openai.StreamResult{ToolCalls: []openai.ToolCall{
			{ID: "call_1", Name: "search_trade_documents", Arguments: `{"query":"인코텀즈"}`},
		}}},
		{deltas: []string{"FOB는 ", "본선 인도 조건입니다."}},
	}}
	r := NewRunner(llm, logger.NewNop())
	ag := &Agent{
		Model: "gpt-4o",
		Tools: []Tool{echoTool("search_trade_documents")},
	}

	onEvent, events := collectEvents(t)
	full, err := r.RunStreamed(context.Background(), ag, nil, "FOB가 뭐야", onEvent)
	if err != nil {
		t.Fatalf("RunStreamed: %v", err)
	}
	if full != "FOB는 본선 인도 조건입니다." {
		t.Errorf("full = %q", full)
	}

	var toolEvents int
	for _, e := range *events {
		if tc, ok := e.(ToolCallEvent); ok {
			toolEvents++
			if tc.Name != "search_trade_documents" {
				t.Errorf("tool event name = %q", tc.Name)
			}
		}
	}
	if toolEvents != 1 {
		t.Errorf("tool events = %d, want 1", toolEvents)
	}

	// The second round must carry the assistant tool-call message and the
	// tool result.
	second := llm.messages[1]
	var sawToolMsg bool
	for _, m := range second {
		if m.Role == "tool" && m.ToolCallID == "call_1" {
			sawToolMsg = true
			if !strings.Contains(m.Content, "stub") {
				t.Errorf("tool message content = %q", m.Content)
			}
		}
	}
	if !sawToolMsg {
		t.Errorf("no tool message in second round: %+v", second)
	}
}

func TestRunStreamedDedupsRepeatedTool(t *testing.T) {
	call := openai.ToolCall{ID: "c", Name: "search_web", Arguments: "{}"}
	llm := &scriptedLLM{rounds: []scriptedRound{
		{result: openai.StreamResult{ToolCalls: []openai.ToolCall{call, {ID: "c2", Name: "search_web", Arguments: "{}"}}}},
		{result: openai.StreamResult{ToolCalls: []openai.ToolCall{{ID: "c3", Name: "search_web", Arguments: "{}"}}}},
		{deltas: []string{"done"}},
	}}
	r := NewRunner(llm, logger.NewNop())
	ag := &Agent{Model: "gpt-4o", Tools: []Tool{echoTool("search_web")}}

	onEvent, events := collectEvents(t)
	if _, err := r.RunStreamed(context.Background(), ag, nil, "검색", onEvent); err != nil {
		t.Fatalf("RunStreamed: %v", err)
	}
	var toolEvents int
	for _, e := range *events {
		if _, ok := e.(ToolCallEvent); ok {
			toolEvents++
		}
	}
	if toolEvents != 1 {
		t.Errorf("tool events = %d, want 1", toolEvents)
	}
}

func TestRunStreamedUnknownToolFoldsToWarning(t *testing.T) {
	llm := &scriptedLLM{rounds: []scriptedRound{
		{result: openai.StreamResult{ToolCalls: []openai.ToolCall{
			{ID: "c", Name: "no_such_tool", Arguments: "{}"},
		}}},
		{deltas: []string{"ok"}},
	}}
	r := NewRunner(llm, logger.NewNop())
	ag := &Agent{Model: "gpt-4o"}

	onEvent, _ := collectEvents(t)
	full, err := r.RunStreamed(context.Background(), ag, nil, "x", onEvent)
	if err != nil {
		t.Fatalf("RunStreamed: %v", err)
	}
	if full != "ok" {
		t.Errorf("full = %q", full)
	}
	second := llm.messages[1]
	last := second[len(second)-1]
	if last.Role != "tool" || !strings.Contains(last.Content, "warning") {
		t.Errorf("tool message = %+v", last)
	}
}

func TestRunStreamedHistoryOrdering(t *testing.T) {
	llm := &scriptedLLM{rounds: []scriptedRound{{deltas: []string{"reply"}}}}
	r := NewRunner(llm, logger.NewNop())
	ag := &Agent{Model: "gpt-4o", Instructions: "sys"}
	history := []openai.ChatMessage{
		{Role: "user", Content: "earlier question"},
		{Role: "assistant", Content: "earlier answer"},
	}
	onEvent, _ := collectEvents(t)
	if _, err := r.RunStreamed(context.Background(), ag, history, "now", onEvent); err != nil {
		t.Fatalf("RunStreamed: %v", err)
	}
	got := llm.messages[0]
	roles := make([]string, len(got))
	for i, m := range got {
		roles[i] = m.Role
	}
	want := []string{"system", "user", "assistant", "user"}
	if len(roles) != len(want) {
		t.Fatalf("roles = %v", roles)
	}
	for i := range want {
		if roles[i] != want[i] {
			t.Fatalf("roles = %v, want %v", roles, want)
		}
	}
}
