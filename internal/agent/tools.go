package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tradeforge/tradeai-gateway/internal/platform/logger"
	"github.com/tradeforge/tradeai-gateway/internal/platform/openai"
	"github.com/tradeforge/tradeai-gateway/internal/platform/qdrant"
	"github.com/tradeforge/tradeai-gateway/internal/platform/tavily"
)

const (
	ToolKnowledgeSearch = "search_trade_documents"
	ToolUserDocSearch   = "search_user_document"
	ToolWebSearch       = "search_web"
)

// Passage is one retrieved snippet handed back to the model.
type Passage struct {
	Text   string  `json:"text"`
	Source string  `json:"source"`
	Score  float64 `json:"score,omitempty"`
}

// Tool is a callable the model may invoke. Invoke returns the JSON body
// fed back as the tool message; it must not fail the turn, so errors are
// folded into a warning payload by the helpers below.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
	Invoke      func(ctx context.Context, args map[string]any) string
}

// Toolset builds the concrete search tools over the shared clients.
type Toolset struct {
	log                 *logger.Logger
	store               qdrant.Client
	llm                 openai.Client
	web                 tavily.Client
	knowledgeCollection string
	userDocsCollection  string
}

func NewToolset(store qdrant.Client, llm openai.Client, web tavily.Client, knowledgeCollection, userDocsCollection string, baseLog *logger.Logger) *Toolset {
	return &Toolset{
		log:                 baseLog.With("service", "tools"),
		store:               store,
		llm:                 llm,
		web:                 web,
		knowledgeCollection: knowledgeCollection,
		userDocsCollection:  userDocsCollection,
	}
}

func queryParams() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string", "description": "검색할 내용"},
		},
		"required": []string{"query"},
	}
}

// KnowledgeSearch searches the shared trade-knowledge collection.
func (t *Toolset) KnowledgeSearch() Tool {
	return Tool{
		Name:        ToolKnowledgeSearch,
		Description: "사내 무역 지식 베이스에서 규정, 절차, 표준 문구를 검색합니다.",
		Parameters:  queryParams(),
		Invoke: func(ctx context.Context, args map[string]any) string {
			query, _ := args["query"].(string)
			passages, err := t.vectorSearch(ctx, t.knowledgeCollection, query, nil)
			return passagesResult(passages, err)
		},
	}
}

// UserDocSearch searches the uploaded-document collection, pinned to the
// document the conversation is about.
func (t *Toolset) UserDocSearch(docID int64) Tool {
	return Tool{
		Name:        ToolUserDocSearch,
		Description: "사용자가 업로드한 현재 문서의 내용을 검색합니다.",
		Parameters:  queryParams(),
		Invoke: func(ctx context.Context, args map[string]any) string {
			query, _ := args["query"].(string)
			filter := map[string]any{"doc_id": docID}
			passages, err := t.vectorSearch(ctx, t.userDocsCollection, query, filter)
			return passagesResult(passages, err)
		},
	}
}

// WebSearch queries the external web-search provider.
func (t *Toolset) WebSearch() Tool {
	return Tool{
		Name:        ToolWebSearch,
		Description: "최신 정보가 필요할 때 웹에서 검색합니다.",
		Parameters:  queryParams(),
		Invoke: func(ctx context.Context, args map[string]any) string {
			query, _ := args["query"].(string)
			if t.web == nil || !t.web.Enabled() {
				return passagesResult(nil, fmt.Errorf("web search is not configured"))
			}
			results, err := t.web.Search(ctx, query, 5)
			if err != nil {
				return passagesResult(nil, err)
			}
			passages := make([]Passage, 0, len(results))
			for _, r := range results {
				passages = append(passages, Passage{Text: r.Content, Source: r.URL, Score: r.Score})
			}
			return passagesResult(passages, nil)
		},
	}
}

func (t *Toolset) vectorSearch(ctx context.Context, collection, query string, filter map[string]any) ([]Passage, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is required")
	}
	vectors, err := t.llm.Embed(ctx, []string{query})
	if err != nil || len(vectors) == 0 {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	points, err := t.store.Search(ctx, collection, vectors[0], 5, filter)
	if err != nil {
		return nil, err
	}
	passages := make([]Passage, 0, len(points))
	for _, p := range points {
		text, _ := p.Payload["text"].(string)
		if text == "" {
			continue
		}
		source, _ := p.Payload["source_object_key"].(string)
		if source == "" {
			source = collection
		}
		passages = append(passages, Passage{Text: text, Source: source, Score: p.Score})
	}
	return passages, nil
}

// passagesResult encodes the tool reply. On error the model receives an
// empty passage list plus a warning instead of a failed turn.
func passagesResult(passages []Passage, err error) string {
	body := map[string]any{"passages": passages}
	if passages == nil {
		body["passages"] = []Passage{}
	}
	if err != nil {
		body["warning"] = err.Error()
	}
	buf, marshalErr := json.Marshal(body)
	if marshalErr != nil {
		return `{"passages":[],"warning":"failed to encode tool result"}`
	}
	return string(buf)
}
