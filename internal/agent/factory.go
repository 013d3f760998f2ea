package agent

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tradeforge/tradeai-gateway/internal/platform/langfuse"
	"github.com/tradeforge/tradeai-gateway/internal/platform/logger"
)

const (
	promptTradeAssistant    = "trade_assistant_v1"
	promptWritingAssistant  = "writing_assistant_v1"
	promptDocumentAssistant = "document_assistant_v1"
)

// Agent is an immutable configuration for one turn: instructions already
// compiled, tools bound. The factory builds a fresh one per request so
// there is no shared "current agent".
type Agent struct {
	Name         string
	Model        string
	Instructions string
	Tools        []Tool
}

// ToolNames lists the bound tool names in declaration order.
func (a *Agent) ToolNames() []string {
	names := make([]string, len(a.Tools))
	for i, t := range a.Tools {
		names[i] = t.Name
	}
	return names
}

type Factory struct {
	log      *logger.Logger
	registry langfuse.Registry
	tools    *Toolset
	model    string
}

func NewFactory(registry langfuse.Registry, tools *Toolset, model string, baseLog *logger.Logger) *Factory {
	if model == "" {
		model = "gpt-4o"
	}
	return &Factory{
		log:      baseLog.With("service", "agent_factory"),
		registry: registry,
		tools:    tools,
		model:    model,
	}
}

// TradeAssistant answers general trade questions with knowledge and web
// search.
func (f *Factory) TradeAssistant(ctx context.Context) (*Agent, error) {
	instructions, err := f.instructions(ctx, promptTradeAssistant, nil)
	if err != nil {
		return nil, err
	}
	return &Agent{
		Name:         "Trade Compliance Analyst",
		Model:        f.model,
		Instructions: instructions,
		Tools:        []Tool{f.tools.KnowledgeSearch(), f.tools.WebSearch()},
	}, nil
}

// DocumentWriter helps fill a document being edited; the current editor
// body is compiled into the instructions.
func (f *Factory) DocumentWriter(ctx context.Context, documentContent string) (*Agent, error) {
	instructions, err := f.instructions(ctx, promptWritingAssistant, map[string]string{
		"document_content": documentContent,
	})
	if err != nil {
		return nil, err
	}
	return &Agent{
		Name:         "Document Writing Assistant",
		Model:        f.model,
		Instructions: instructions,
		Tools:        []Tool{f.tools.KnowledgeSearch(), f.tools.WebSearch()},
	}, nil
}

// DocumentReader answers questions about an uploaded, already-ingested
// document; its user-doc search tool is pinned to that doc.
func (f *Factory) DocumentReader(ctx context.Context, docID int64, documentName, documentType string) (*Agent, error) {
	instructions, err := f.instructions(ctx, promptDocumentAssistant, map[string]string{
		"document_id":   strconv.FormatInt(docID, 10),
		"document_name": documentName,
		"document_type": documentType,
	})
	if err != nil {
		return nil, err
	}
	return &Agent{
		Name:         "Document Reader Assistant",
		Model:        f.model,
		Instructions: instructions,
		Tools:        []Tool{f.tools.UserDocSearch(docID), f.tools.KnowledgeSearch(), f.tools.WebSearch()},
	}, nil
}

func (f *Factory) instructions(ctx context.Context, name string, vars map[string]string) (string, error) {
	tmpl, err := f.registry.GetTemplate(ctx, name, 0, "latest")
	if err != nil {
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}
	if vars == nil {
		vars = map[string]string{}
	}
	return tmpl.Compile(vars)
}
