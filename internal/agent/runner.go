package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tradeforge/tradeai-gateway/internal/apperr"
	"github.com/tradeforge/tradeai-gateway/internal/platform/logger"
	"github.com/tradeforge/tradeai-gateway/internal/platform/openai"
)

// maxToolRounds bounds the completion/tool loop per turn.
const maxToolRounds = 5

// Runner drives one agent turn against the LLM, executing tool calls
// between streamed completion rounds and forwarding typed events to the
// caller in order.
type Runner struct {
	log *logger.Logger
	llm openai.Client
}

func NewRunner(llm openai.Client, baseLog *logger.Logger) *Runner {
	return &Runner{log: baseLog.With("service", "agent_runner"), llm: llm}
}

// RunStreamed executes the agent on the given history plus the new user
// input. The final text is the concatenation of all token deltas; a
// ToolCallEvent is emitted at most once per tool name within the turn.
func (r *Runner) RunStreamed(
	ctx context.Context,
	ag *Agent,
	history []openai.ChatMessage,
	userInput string,
	onEvent func(Event) error,
) (string, error) {
	msgs := make([]openai.ChatMessage, 0, len(history)+2)
	msgs = append(msgs, openai.ChatMessage{Role: "system", Content: ag.Instructions})
	msgs = append(msgs, history...)
	msgs = append(msgs, openai.ChatMessage{Role: "user", Content: userInput})

	tools := make([]openai.ToolDef, len(ag.Tools))
	byName := make(map[string]Tool, len(ag.Tools))
	for i, t := range ag.Tools {
		tools[i] = openai.ToolDef{Name: t.Name, Description: t.Description, Parameters: t.Parameters}
		byName[t.Name] = t
	}

	var full string
	announced := map[string]bool{}

	for round := 0; round < maxToolRounds; round++ {
		result, err := r.llm.StreamChatCompletion(ctx, ag.Model, msgs, tools, func(delta string) error {
			full += delta
			return onEvent(TokenDelta{Text: delta})
		})
		if err != nil {
			return full, fmt.Errorf("%w: llm stream: %v", apperr.ErrUpstream, err)
		}
		if len(result.ToolCalls) == 0 {
			break
		}

		msgs = append(msgs, openai.ChatMessage{
			Role:      "assistant",
			Content:   result.Text,
			ToolCalls: result.ToolCalls,
		})
		for _, call := range result.ToolCalls {
			if !announced[call.Name] {
				announced[call.Name] = true
				if err := onEvent(ToolCallEvent{Name: call.Name}); err != nil {
					return full, err
				}
			}
			msgs = append(msgs, openai.ChatMessage{
				Role:       "tool",
				ToolCallID: call.ID,
				Name:       call.Name,
				Content:    r.invokeTool(ctx, byName, call),
			})
		}
	}

	if err := onEvent(FinalText{Text: full}); err != nil {
		return full, err
	}
	return full, nil
}

// invokeTool never fails the turn: unknown names and bad arguments come
// back to the model as a warning payload.
func (r *Runner) invokeTool(ctx context.Context, byName map[string]Tool, call openai.ToolCall) string {
	tool, ok := byName[call.Name]
	if !ok {
		r.log.Warn("model requested unknown tool", "tool", call.Name)
		return passagesResult(nil, fmt.Errorf("unknown tool %q", call.Name))
	}
	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			r.log.Warn("tool arguments not parseable", "tool", call.Name, "error", err)
			return passagesResult(nil, fmt.Errorf("arguments were not valid JSON"))
		}
	}
	r.log.Debug("tool invoked", "tool", call.Name)
	return tool.Invoke(ctx, args)
}
