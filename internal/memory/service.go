package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tradeforge/tradeai-gateway/internal/apperr"
	"github.com/tradeforge/tradeai-gateway/internal/platform/logger"
	"github.com/tradeforge/tradeai-gateway/internal/platform/openai"
	"github.com/tradeforge/tradeai-gateway/internal/platform/qdrant"
)

// Message is one role-tagged turn handed to a summarizing write.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Item is one retrieved memory.
type Item struct {
	ID        string  `json:"id"`
	Memory    string  `json:"memory"`
	Score     float64 `json:"score,omitempty"`
	CreatedAt string  `json:"created_at,omitempty"`
}

// SaveRequest drives SaveSmart. Scope writes run only when both the flag
// and the matching identifier are present.
type SaveRequest struct {
	Messages  []Message
	UserID    int64
	DocID     int64
	GenChatID int64
	BuyerName string
	SaveDoc   bool
	SaveUser  bool
	SaveBuyer bool
}

// SaveResult reports per-scope outcomes: 1 written, 0 skipped or failed.
type SaveResult struct {
	Doc     int `json:"doc"`
	GenChat int `json:"gen_chat"`
	User    int `json:"user"`
	Buyer   int `json:"buyer"`
	Total   int `json:"total"`
}

// DocContext is the assembled memory context for a document session.
type DocContext struct {
	Doc     []Item `json:"doc"`
	User    []Item `json:"user"`
	Buyer   []Item `json:"buyer"`
	Summary string `json:"summary"`
}

// GenChatContext is the assembled memory context for a general chat.
type GenChatContext struct {
	Chat    []Item `json:"chat"`
	User    []Item `json:"user"`
	Summary string `json:"summary"`
}

type Service interface {
	AddDoc(ctx context.Context, docID, userID int64, msgs []Message) (bool, error)
	AddGenChat(ctx context.Context, genChatID, userID int64, msgs []Message) (bool, error)
	AddUser(ctx context.Context, userID int64, msgs []Message) (bool, error)
	AddBuyer(ctx context.Context, userID int64, buyerName string, msgs []Message) (bool, error)
	// AddLongSummary condenses a wider message window into the given
	// session scope. Used by the every-tenth-turn tier.
	AddLongSummary(ctx context.Context, scopeKey string, userID int64, msgs []Message) (bool, error)

	GetDoc(ctx context.Context, docID int64, query string, limit int) ([]Item, error)
	GetGenChat(ctx context.Context, genChatID int64, query string, limit int) ([]Item, error)
	GetUser(ctx context.Context, userID int64, query string, limit int) ([]Item, error)
	GetBuyer(ctx context.Context, userID int64, buyerName, query string, limit int) ([]Item, error)
	Search(ctx context.Context, scopeKey, query string, limit int) ([]Item, error)

	DeleteDoc(ctx context.Context, docID int64) error
	DeleteGenChat(ctx context.Context, genChatID int64) error
	DeleteTrade(ctx context.Context, tradeID int64, docIDs []int64) int

	SaveSmart(ctx context.Context, req SaveRequest) SaveResult
	BuildDocContext(ctx context.Context, docID, userID int64, query, buyerName string) DocContext
	BuildGenChatContext(ctx context.Context, genChatID, userID int64, query string, isFirstMessage bool) GenChatContext
}

type service struct {
	log        *logger.Logger
	store      qdrant.Client
	llm        openai.Client
	collection string
}

func NewService(store qdrant.Client, llm openai.Client, collection string, baseLog *logger.Logger) (Service, error) {
	if store == nil || llm == nil {
		return nil, fmt.Errorf("%w: memory requires vector store and llm clients", apperr.ErrConfig)
	}
	s := &service{
		log:        baseLog.With("service", "memory"),
		store:      store,
		llm:        llm,
		collection: collection,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := store.EnsureCollection(ctx, collection, llm.EmbedDim()); err != nil {
		s.log.Warn("memory collection not ready yet", "collection", collection, "error", err)
	}
	return s, nil
}

// ---- writes ----

func (s *service) AddDoc(ctx context.Context, docID, userID int64, msgs []Message) (bool, error) {
	return s.add(ctx, TypeDocSession, DocScope(docID), scopePrompts[TypeDocSession], userID, msgs, map[string]any{"doc_id": docID})
}

func (s *service) AddGenChat(ctx context.Context, genChatID, userID int64, msgs []Message) (bool, error) {
	return s.add(ctx, TypeGenChatSession, GenChatScope(genChatID), scopePrompts[TypeGenChatSession], userID, msgs, map[string]any{"gen_chat_id": genChatID})
}

func (s *service) AddUser(ctx context.Context, userID int64, msgs []Message) (bool, error) {
	return s.add(ctx, TypeUserPreference, UserScope(userID), scopePrompts[TypeUserPreference], userID, msgs, nil)
}

func (s *service) AddBuyer(ctx context.Context, userID int64, buyerName string, msgs []Message) (bool, error) {
	norm := NormalizeBuyer(buyerName)
	if norm == "" {
		return false, fmt.Errorf("%w: buyer name %q normalizes to empty", apperr.ErrValidation, buyerName)
	}
	extra := map[string]any{"buyer_name": buyerName, "buyer_normalized": norm}
	return s.add(ctx, TypeBuyerMemo, BuyerScope(userID, norm), scopePrompts[TypeBuyerMemo], userID, msgs, extra)
}

func (s *service) AddLongSummary(ctx context.Context, scopeKey string, userID int64, msgs []Message) (bool, error) {
	extra := map[string]any{"kind": "long_summary"}
	memoryType := TypeDocSession
	if strings.HasPrefix(scopeKey, "gen_chat_") {
		memoryType = TypeGenChatSession
	}
	return s.add(ctx, memoryType, scopeKey, longSummaryPrompt, userID, msgs, extra)
}

func (s *service) add(ctx context.Context, memoryType, scopeKey, prompt string, userID int64, msgs []Message, extra map[string]any) (bool, error) {
	if len(msgs) == 0 {
		return false, nil
	}
	summary, err := s.llm.GenerateText(ctx, prompt, transcript(msgs))
	if err != nil {
		return false, fmt.Errorf("%w: summarize %s: %v", apperr.ErrMemoryWrite, scopeKey, err)
	}
	summary = strings.TrimSpace(summary)
	if summary == "" || strings.EqualFold(summary, "NONE") {
		return false, nil
	}
	vectors, err := s.llm.Embed(ctx, []string{summary})
	if err != nil || len(vectors) == 0 {
		return false, fmt.Errorf("%w: embed %s: %v", apperr.ErrMemoryWrite, scopeKey, err)
	}
	payload := map[string]any{
		"memory_type": memoryType,
		"scope_key":   scopeKey,
		"user_id":     userID,
		"memory":      summary,
		"created_at":  time.Now().UTC().Format(time.RFC3339Nano),
	}
	for k, v := range extra {
		payload[k] = v
	}
	point := qdrant.Point{ID: uuid.NewString(), Vector: vectors[0], Payload: payload}
	if err := s.store.Upsert(ctx, s.collection, []qdrant.Point{point}); err != nil {
		return false, fmt.Errorf("%w: upsert %s: %v", apperr.ErrMemoryWrite, scopeKey, err)
	}
	s.log.Debug("memory written", "scope", scopeKey, "type", memoryType)
	return true, nil
}

func transcript(msgs []Message) string {
	var b strings.Builder
	for _, m := range msgs {
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	return b.String()
}

// ---- reads ----

func (s *service) GetDoc(ctx context.Context, docID int64, query string, limit int) ([]Item, error) {
	return s.Search(ctx, DocScope(docID), query, limit)
}

func (s *service) GetGenChat(ctx context.Context, genChatID int64, query string, limit int) ([]Item, error) {
	return s.Search(ctx, GenChatScope(genChatID), query, limit)
}

func (s *service) GetUser(ctx context.Context, userID int64, query string, limit int) ([]Item, error) {
	return s.Search(ctx, UserScope(userID), query, limit)
}

func (s *service) GetBuyer(ctx context.Context, userID int64, buyerName, query string, limit int) ([]Item, error) {
	norm := NormalizeBuyer(buyerName)
	if norm == "" {
		return nil, fmt.Errorf("%w: buyer name %q normalizes to empty", apperr.ErrValidation, buyerName)
	}
	return s.Search(ctx, BuyerScope(userID, norm), query, limit)
}

// Search runs a similarity search inside one scope, or a recency scan
// when no query is given.
func (s *service) Search(ctx context.Context, scopeKey, query string, limit int) ([]Item, error) {
	if limit <= 0 {
		limit = 5
	}
	filter := map[string]any{"scope_key": scopeKey}
	if strings.TrimSpace(query) == "" {
		points, err := s.store.Scroll(ctx, s.collection, filter, limit)
		if err != nil {
			return nil, err
		}
		return toItems(points), nil
	}
	vectors, err := s.llm.Embed(ctx, []string{query})
	if err != nil || len(vectors) == 0 {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	points, err := s.store.Search(ctx, s.collection, vectors[0], limit, filter)
	if err != nil {
		return nil, err
	}
	return toItems(points), nil
}

func toItems(points []qdrant.ScoredPoint) []Item {
	items := make([]Item, 0, len(points))
	for _, p := range points {
		item := Item{ID: p.ID, Score: p.Score}
		if m, ok := p.Payload["memory"].(string); ok {
			item.Memory = m
		}
		if c, ok := p.Payload["created_at"].(string); ok {
			item.CreatedAt = c
		}
		if item.Memory == "" {
			continue
		}
		items = append(items, item)
	}
	return items
}

// ---- deletes ----

func (s *service) DeleteDoc(ctx context.Context, docID int64) error {
	return s.store.DeleteByFilter(ctx, s.collection, map[string]any{"scope_key": DocScope(docID)})
}

func (s *service) DeleteGenChat(ctx context.Context, genChatID int64) error {
	return s.store.DeleteByFilter(ctx, s.collection, map[string]any{"scope_key": GenChatScope(genChatID)})
}

// DeleteTrade clears each document scope, counting successes. Partial
// success is fine; failures are logged and skipped.
func (s *service) DeleteTrade(ctx context.Context, tradeID int64, docIDs []int64) int {
	deleted := 0
	for _, docID := range docIDs {
		if err := s.DeleteDoc(ctx, docID); err != nil {
			s.log.Warn("doc memory delete failed", "trade_id", tradeID, "doc_id", docID, "error", err)
			continue
		}
		deleted++
	}
	s.log.Info("trade memories deleted", "trade_id", tradeID, "requested", len(docIDs), "deleted", deleted)
	return deleted
}
