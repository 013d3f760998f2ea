package chat

import (
	"context"
	"strings"

	"github.com/tradeforge/tradeai-gateway/internal/memory"
	"github.com/tradeforge/tradeai-gateway/internal/platform/openai"
	"github.com/tradeforge/tradeai-gateway/internal/types"
)

// TradeChatRequest is a general trade question outside any document.
// UserRef carries the raw user_id field, which clients send either as a
// numeric id or an employee number.
type TradeChatRequest struct {
	Message   string
	UserRef   string
	GenChatID int64
}

// StreamTradeChat runs the general-chat pipeline. All failures inside
// the stream become a single error frame; the stream always closes
// cleanly.
func (s *Service) StreamTradeChat(ctx context.Context, req TradeChatRequest, w FrameWriter) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		_ = w.Send(NewErrorFrame("메시지가 필요합니다."))
		return
	}

	user := s.resolveUser(ctx, req.UserRef)

	// Session bookkeeping only happens for identified users; anonymous
	// chat still streams but persists nothing.
	var (
		genChat        *types.GenChat
		isFirstMessage bool
		userMsgID      int64
	)
	if user != nil {
		genChat, isFirstMessage = s.loadOrCreateGenChat(ctx, user, req.GenChatID)
		if genChat != nil {
			userMsg := &types.GenMessage{GenChatID: genChat.GenChatID, SenderType: types.SenderUser, Content: message}
			if err := s.genMsgs.Create(ctx, nil, userMsg); err != nil {
				s.log.Error("user turn persist failed", "gen_chat_id", genChat.GenChatID, "error", err)
				_ = w.Send(NewErrorFrame("대화를 저장하지 못했습니다."))
				return
			}
			userMsgID = userMsg.GenMessageID
		}
	}

	var history []openai.ChatMessage
	if genChat != nil {
		prev, err := s.genMsgs.ListRecentExcluding(ctx, nil, genChat.GenChatID, userMsgID, historyLimit)
		if err != nil {
			s.log.Warn("history load failed", "gen_chat_id", genChat.GenChatID, "error", err)
		}
		for _, m := range prev {
			role := "user"
			if m.SenderType == types.SenderAgent {
				role = "assistant"
			}
			history = append(history, openai.ChatMessage{Role: role, Content: m.Content})
		}
		if err := w.Send(newInitFrame(0, 0, genChat.GenChatID)); err != nil {
			return
		}
	}

	var sections []contextSection
	if s.mem != nil && user != nil {
		var genChatID int64
		if genChat != nil {
			genChatID = genChat.GenChatID
		}
		mc := s.mem.BuildGenChatContext(ctx, genChatID, user.UserID, message, isFirstMessage)
		if err := w.Send(newContextFrame(mc.Summary)); err != nil {
			return
		}
		sections = append(sections,
			memorySection("이전 대화 기록", mc.Chat),
			memorySection("사용자 선호도", mc.User),
			summarySection(mc.Summary),
		)
	}
	if len(history) > 0 {
		sections = append(sections, historyPreviewSection(history))
	}
	input := buildAugmentedMessage(sections, message)

	ag, err := s.factory.TradeAssistant(ctx)
	if err != nil {
		s.log.Error("agent build failed", "error", err)
		_ = w.Send(NewErrorFrame("어시스턴트를 준비하지 못했습니다."))
		return
	}
	if err := w.Send(newAgentInfoFrame(ag.Name, ag.Model, "", ag.ToolNames())); err != nil {
		return
	}

	full, toolsUsed, runErr := s.runAgent(ctx, ag, history, input, w)
	if runErr != nil {
		s.log.Error("agent run failed", "error", runErr)
		_ = w.Send(NewErrorFrame("응답 생성 중 오류가 발생했습니다."))
		s.persistAssistantGenMessage(ctx, genChat, full)
		return
	}
	if err := w.Send(newDoneFrame(toolsUsed)); err != nil {
		return
	}

	s.persistAssistantGenMessage(ctx, genChat, full)

	if user != nil && genChat != nil && full != "" {
		s.saveMemories(ctx, memory.SaveRequest{
			Messages: []memory.Message{
				{Role: "user", Content: message},
				{Role: "assistant", Content: full},
			},
			UserID:    user.UserID,
			GenChatID: genChat.GenChatID,
			SaveDoc:   true,
			SaveUser:  true,
		})
		s.maybeWriteGenChatLongSummary(ctx, genChat.GenChatID, user.UserID)
	}
}

// loadOrCreateGenChat prefers the client-pinned session when it exists;
// anything else gets a fresh server-assigned one surfaced via init.
func (s *Service) loadOrCreateGenChat(ctx context.Context, user *types.User, genChatID int64) (*types.GenChat, bool) {
	if genChatID > 0 {
		if c, err := s.genChats.GetByID(ctx, nil, genChatID); err == nil {
			return c, false
		}
	}
	c := &types.GenChat{UserID: user.UserID, Title: "일반 채팅"}
	if err := s.genChats.Create(ctx, nil, c); err != nil {
		s.log.Warn("gen chat create failed", "user_id", user.UserID, "error", err)
		return nil, false
	}
	return c, true
}

// persistAssistantGenMessage skips empty buffers so an aborted turn
// leaves only the user message behind.
func (s *Service) persistAssistantGenMessage(ctx context.Context, genChat *types.GenChat, full string) {
	if genChat == nil || strings.TrimSpace(full) == "" {
		return
	}
	msg := &types.GenMessage{GenChatID: genChat.GenChatID, SenderType: types.SenderAgent, Content: full}
	if err := s.genMsgs.Create(context.WithoutCancel(ctx), nil, msg); err != nil {
		s.log.Error("assistant turn persist failed", "gen_chat_id", genChat.GenChatID, "error", err)
	}
}
