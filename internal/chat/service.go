package chat

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tradeforge/tradeai-gateway/internal/agent"
	"github.com/tradeforge/tradeai-gateway/internal/memory"
	"github.com/tradeforge/tradeai-gateway/internal/platform/logger"
	"github.com/tradeforge/tradeai-gateway/internal/platform/openai"
	"github.com/tradeforge/tradeai-gateway/internal/repos"
	"github.com/tradeforge/tradeai-gateway/internal/types"
)

const (
	historyLimit       = 10
	memoryWriteTimeout = 10 * time.Second
	longSummaryEvery   = 10
	longSummaryWindow  = 20
)

// Service is the per-request chat pipeline: history load, context
// assembly, agent selection, SSE relay, edit parsing, persistence, and
// best-effort memory write-back.
type Service struct {
	log      *logger.Logger
	users    repos.UserRepo
	docs     repos.DocumentRepo
	versions repos.DocVersionRepo
	docMsgs  repos.DocMessageRepo
	genChats repos.GenChatRepo
	genMsgs  repos.GenMessageRepo
	mem      memory.Service
	factory  *agent.Factory
	runner   *agent.Runner
}

func NewService(
	users repos.UserRepo,
	docs repos.DocumentRepo,
	versions repos.DocVersionRepo,
	docMsgs repos.DocMessageRepo,
	genChats repos.GenChatRepo,
	genMsgs repos.GenMessageRepo,
	mem memory.Service,
	factory *agent.Factory,
	runner *agent.Runner,
	baseLog *logger.Logger,
) *Service {
	return &Service{
		log:      baseLog.With("service", "chat"),
		users:    users,
		docs:     docs,
		versions: versions,
		docMsgs:  docMsgs,
		genChats: genChats,
		genMsgs:  genMsgs,
		mem:      mem,
		factory:  factory,
		runner:   runner,
	}
}

// resolveUser accepts an employee number or a numeric id, auto-creating
// unknown users. Resolution failure only disables the memory features,
// so it returns nil instead of an error.
func (s *Service) resolveUser(ctx context.Context, ref string) *types.User {
	ref = strings.TrimSpace(ref)
	if ref == "" || ref == "0" {
		return nil
	}
	if u, err := s.users.GetByEmpNo(ctx, nil, ref); err == nil {
		return u
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		if u, err := s.users.GetByID(ctx, nil, id); err == nil {
			return u
		}
	}
	u := &types.User{EmpNo: ref, Name: "User_" + ref}
	if err := s.users.Create(ctx, nil, u); err != nil {
		s.log.Warn("user auto-create failed", "ref", ref, "error", err)
		return nil
	}
	s.log.Info("user auto-created", "emp_no", ref, "user_id", u.UserID)
	return u
}

// runAgent relays runner events to SSE frames, buffering the full text
// and collecting display info for each distinct tool.
func (s *Service) runAgent(
	ctx context.Context,
	ag *agent.Agent,
	history []openai.ChatMessage,
	input string,
	w FrameWriter,
) (string, []ToolInfo, error) {
	var toolsUsed []ToolInfo
	full, err := s.runner.RunStreamed(ctx, ag, history, input, func(ev agent.Event) error {
		switch e := ev.(type) {
		case agent.TokenDelta:
			return w.Send(newTextFrame(e.Text))
		case agent.ToolCallEvent:
			info := displayFor(e.Name)
			toolsUsed = append(toolsUsed, info)
			return w.Send(newToolFrame(info))
		}
		return nil
	})
	return full, toolsUsed, err
}

// saveMemories runs the post-done write-back. It detaches from the
// request context so a slow write cannot stall the closed stream, but a
// canceled request (client gone) writes nothing.
func (s *Service) saveMemories(parent context.Context, req memory.SaveRequest) {
	if s.mem == nil || req.UserID == 0 {
		return
	}
	if parent.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), memoryWriteTimeout)
	defer cancel()
	result := s.mem.SaveSmart(ctx, req)
	s.log.Debug("memories saved", "doc", result.Doc, "gen_chat", result.GenChat,
		"user", result.User, "buyer", result.Buyer)
}

// maybeWriteDocLongSummary writes the periodic long-tier memory for a
// document session: every tenth turn, a condensed summary of the last
// twenty messages.
func (s *Service) maybeWriteDocLongSummary(parent context.Context, docID, userID int64) {
	if s.mem == nil || userID == 0 || parent.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), memoryWriteTimeout)
	defer cancel()
	total, err := s.docMsgs.CountByDocID(ctx, nil, docID)
	if err != nil {
		return
	}
	turnCount := total / 2
	if turnCount == 0 || turnCount%longSummaryEvery != 0 {
		return
	}
	msgs, err := s.docMsgs.ListLastN(ctx, nil, docID, longSummaryWindow)
	if err != nil {
		return
	}
	window := make([]memory.Message, 0, len(msgs))
	for _, m := range msgs {
		role := "user"
		if m.Role == types.DocRoleAgent {
			role = "assistant"
		}
		window = append(window, memory.Message{Role: role, Content: m.Content})
	}
	if _, err := s.mem.AddLongSummary(ctx, memory.DocScope(docID), userID, window); err != nil {
		s.log.Warn("doc long summary failed", "doc_id", docID, "error", err)
	}
}

func (s *Service) maybeWriteGenChatLongSummary(parent context.Context, genChatID, userID int64) {
	if s.mem == nil || userID == 0 || parent.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), memoryWriteTimeout)
	defer cancel()
	total, err := s.genMsgs.CountByChatID(ctx, nil, genChatID)
	if err != nil {
		return
	}
	turnCount := total / 2
	if turnCount == 0 || turnCount%longSummaryEvery != 0 {
		return
	}
	msgs, err := s.genMsgs.ListLastN(ctx, nil, genChatID, longSummaryWindow)
	if err != nil {
		return
	}
	window := make([]memory.Message, 0, len(msgs))
	for _, m := range msgs {
		role := "user"
		if m.SenderType == types.SenderAgent {
			role = "assistant"
		}
		window = append(window, memory.Message{Role: role, Content: m.Content})
	}
	if _, err := s.mem.AddLongSummary(ctx, memory.GenChatScope(genChatID), userID, window); err != nil {
		s.log.Warn("gen chat long summary failed", "gen_chat_id", genChatID, "error", err)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
