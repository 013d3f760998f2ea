package memory

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

const contextSearchLimit = 3

// SaveSmart fans the enabled scope writes out in parallel and reports a
// per-scope success map. A failing write logs and scores 0; the call
// itself never fails.
func (s *service) SaveSmart(ctx context.Context, req SaveRequest) SaveResult {
	var result SaveResult
	if len(req.Messages) == 0 {
		return result
	}

	type write struct {
		name string
		slot *int
		run  func(context.Context) (bool, error)
	}
	var writes []write

	if req.SaveDoc && req.DocID > 0 {
		writes = append(writes, write{"doc", &result.Doc, func(c context.Context) (bool, error) {
			return s.AddDoc(c, req.DocID, req.UserID, req.Messages)
		}})
	}
	if req.SaveDoc && req.GenChatID > 0 {
		writes = append(writes, write{"gen_chat", &result.GenChat, func(c context.Context) (bool, error) {
			return s.AddGenChat(c, req.GenChatID, req.UserID, req.Messages)
		}})
	}
	if req.SaveUser && req.UserID > 0 {
		writes = append(writes, write{"user", &result.User, func(c context.Context) (bool, error) {
			return s.AddUser(c, req.UserID, req.Messages)
		}})
	}
	if req.SaveBuyer && strings.TrimSpace(req.BuyerName) != "" {
		writes = append(writes, write{"buyer", &result.Buyer, func(c context.Context) (bool, error) {
			return s.AddBuyer(c, req.UserID, req.BuyerName, req.Messages)
		}})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(3)
	for _, w := range writes {
		w := w
		g.Go(func() error {
			ok, err := w.run(gctx)
			if err != nil {
				s.log.Warn("smart save scope failed", "scope", w.name, "error", err)
				return nil
			}
			if ok {
				*w.slot = 1
			}
			return nil
		})
	}
	_ = g.Wait()

	result.Total = result.Doc + result.GenChat + result.User + result.Buyer
	return result
}

// BuildDocContext runs the scoped searches for a document turn in
// parallel. A failing sub-query leaves its list empty without touching
// the others.
func (s *service) BuildDocContext(ctx context.Context, docID, userID int64, query, buyerName string) DocContext {
	var out DocContext

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(3)

	g.Go(func() error {
		items, err := s.GetDoc(gctx, docID, query, contextSearchLimit)
		if err != nil {
			s.log.Warn("doc memory search failed", "doc_id", docID, "error", err)
			return nil
		}
		out.Doc = items
		return nil
	})
	if userID > 0 {
		g.Go(func() error {
			items, err := s.GetUser(gctx, userID, query, contextSearchLimit)
			if err != nil {
				s.log.Warn("user memory search failed", "user_id", userID, "error", err)
				return nil
			}
			out.User = items
			return nil
		})
	}
	if strings.TrimSpace(buyerName) != "" && userID > 0 {
		g.Go(func() error {
			items, err := s.GetBuyer(gctx, userID, buyerName, query, contextSearchLimit)
			if err != nil {
				s.log.Warn("buyer memory search failed", "user_id", userID, "buyer", buyerName, "error", err)
				return nil
			}
			out.Buyer = items
			return nil
		})
	}
	_ = g.Wait()

	parts := []string{
		fmt.Sprintf("문서 이력 %d건", len(out.Doc)),
		fmt.Sprintf("사용자 선호 %d건", len(out.User)),
	}
	if strings.TrimSpace(buyerName) != "" {
		parts = append(parts, fmt.Sprintf("거래처 메모 %d건", len(out.Buyer)))
	}
	out.Summary = strings.Join(parts, ", ")
	return out
}

// BuildGenChatContext mirrors BuildDocContext for general chat. A brand
// new session skips the chat-scope search entirely.
func (s *service) BuildGenChatContext(ctx context.Context, genChatID, userID int64, query string, isFirstMessage bool) GenChatContext {
	var out GenChatContext

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(2)

	if !isFirstMessage && genChatID > 0 {
		g.Go(func() error {
			items, err := s.GetGenChat(gctx, genChatID, query, contextSearchLimit)
			if err != nil {
				s.log.Warn("chat memory search failed", "gen_chat_id", genChatID, "error", err)
				return nil
			}
			out.Chat = items
			return nil
		})
	}
	if userID > 0 {
		g.Go(func() error {
			items, err := s.GetUser(gctx, userID, query, contextSearchLimit)
			if err != nil {
				s.log.Warn("user memory search failed", "user_id", userID, "error", err)
				return nil
			}
			out.User = items
			return nil
		})
	}
	_ = g.Wait()

	out.Summary = fmt.Sprintf("대화 기록 %d건, 사용자 선호 %d건", len(out.Chat), len(out.User))
	return out
}
