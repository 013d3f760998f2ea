package chat

import (
	"context"
	"encoding/json"
	"strings"

	"gorm.io/datatypes"

	"github.com/tradeforge/tradeai-gateway/internal/agent"
	"github.com/tradeforge/tradeai-gateway/internal/memory"
	"github.com/tradeforge/tradeai-gateway/internal/platform/openai"
	"github.com/tradeforge/tradeai-gateway/internal/types"
)

type docChatMode int

const (
	modeWrite docChatMode = iota
	modeRead
)

// DocChatRequest covers both document chat variants. DocumentContent is
// the current editor body (write); DocumentName/DocumentType override
// the stored upload metadata (read).
type DocChatRequest struct {
	DocID           int64
	Message         string
	UserRef         string
	DocumentContent string
	DocumentName    string
	DocumentType    string
}

func (s *Service) StreamDocumentWrite(ctx context.Context, req DocChatRequest, w FrameWriter) {
	s.streamDocChat(ctx, req, modeWrite, w)
}

func (s *Service) StreamDocumentRead(ctx context.Context, req DocChatRequest, w FrameWriter) {
	s.streamDocChat(ctx, req, modeRead, w)
}

func (s *Service) streamDocChat(ctx context.Context, req DocChatRequest, mode docChatMode, w FrameWriter) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		_ = w.Send(NewErrorFrame("메시지가 필요합니다."))
		return
	}
	if req.DocID <= 0 {
		_ = w.Send(NewErrorFrame("doc_id가 필요합니다."))
		return
	}
	doc, err := s.docs.GetByID(ctx, nil, req.DocID)
	if err != nil {
		if isNotFound(err) {
			_ = w.Send(NewErrorFrame("문서를 찾을 수 없습니다."))
		} else {
			s.log.Error("document load failed", "doc_id", req.DocID, "error", err)
			_ = w.Send(NewErrorFrame("문서를 불러오지 못했습니다."))
		}
		return
	}

	user := s.resolveUser(ctx, req.UserRef)

	userMsg := &types.DocMessage{DocID: doc.DocID, Role: types.DocRoleUser, Content: message}
	if err := s.docMsgs.Create(ctx, nil, userMsg); err != nil {
		s.log.Error("user turn persist failed", "doc_id", doc.DocID, "error", err)
		_ = w.Send(NewErrorFrame("대화를 저장하지 못했습니다."))
		return
	}

	prev, err := s.docMsgs.ListRecentExcluding(ctx, nil, doc.DocID, userMsg.MessageID, historyLimit)
	if err != nil {
		s.log.Warn("history load failed", "doc_id", doc.DocID, "error", err)
	}
	history := make([]openai.ChatMessage, 0, len(prev))
	for _, m := range prev {
		role := "user"
		if m.Role == types.DocRoleAgent {
			role = "assistant"
		}
		history = append(history, openai.ChatMessage{Role: role, Content: m.Content})
	}

	if err := w.Send(newInitFrame(doc.DocID, doc.TradeID, 0)); err != nil {
		return
	}

	// The latest version's HTML feeds both the counterparty extractor
	// and nothing else; the editor body arrives in the request.
	var latestHTML string
	if v, verr := s.versions.GetLatestByDocID(ctx, nil, doc.DocID); verr == nil && v != nil {
		latestHTML = v.HTML()
	}
	buyerName := ExtractBuyerName(latestHTML)

	var sections []contextSection
	if s.mem != nil && user != nil {
		mc := s.mem.BuildDocContext(ctx, doc.DocID, user.UserID, message, buyerName)
		if err := w.Send(newContextFrame(mc.Summary)); err != nil {
			return
		}
		sections = append(sections,
			memorySection("이전 문서 작업 내역", mc.Doc),
			memorySection("사용자 선호도", mc.User),
			memorySection("거래처 메모", mc.Buyer),
		)
	}
	if sib := s.siblingSection(ctx, doc); sib.body != "" {
		sections = append(sections, sib)
	}
	editorContent := ""
	if mode == modeWrite && strings.TrimSpace(req.DocumentContent) != "" {
		editorContent = truncateRunes(stripHTML(req.DocumentContent), editorContentLimit)
		sections = append(sections, contextSection{label: "현재 작성 중인 문서 내용", body: editorContent})
	}
	if len(history) > 0 {
		sections = append(sections, historyPreviewSection(history))
	}
	input := buildAugmentedMessage(sections, message)

	ag, err := s.selectDocAgent(ctx, doc, req, mode, editorContent)
	if err != nil {
		s.log.Error("agent build failed", "doc_id", doc.DocID, "error", err)
		_ = w.Send(NewErrorFrame("어시스턴트를 준비하지 못했습니다."))
		return
	}
	if err := w.Send(newAgentInfoFrame(ag.Name, ag.Model, doc.DocMode, ag.ToolNames())); err != nil {
		return
	}

	full, toolsUsed, runErr := s.runAgent(ctx, ag, history, input, w)
	if runErr != nil {
		s.log.Error("agent run failed", "doc_id", doc.DocID, "error", runErr)
		_ = w.Send(NewErrorFrame("응답 생성 중 오류가 발생했습니다."))
		s.persistAssistantDocMessage(ctx, doc.DocID, full, toolsUsed, nil)
		return
	}

	var edit *EditResponse
	if mode == modeWrite {
		edit = ParseEditResponse(full)
		if edit != nil {
			if err := w.Send(newEditFrame(edit.Message, edit.Changes)); err != nil {
				return
			}
		}
	}
	if err := w.Send(newDoneFrame(toolsUsed)); err != nil {
		return
	}

	s.persistAssistantDocMessage(ctx, doc.DocID, full, toolsUsed, edit)

	if user != nil && full != "" {
		s.saveMemories(ctx, memory.SaveRequest{
			Messages: []memory.Message{
				{Role: "user", Content: message},
				{Role: "assistant", Content: full},
			},
			UserID:    user.UserID,
			DocID:     doc.DocID,
			BuyerName: buyerName,
			SaveDoc:   true,
			SaveUser:  true,
			SaveBuyer: buyerName != "",
		})
		s.maybeWriteDocLongSummary(ctx, doc.DocID, user.UserID)
	}
}

// selectDocAgent picks the reader for ingested uploads and the writer
// for everything else; the read endpoint always gets the reader.
func (s *Service) selectDocAgent(ctx context.Context, doc *types.Document, req DocChatRequest, mode docChatMode, editorContent string) (*agent.Agent, error) {
	readable := doc.DocMode == types.DocModeUpload && doc.UploadStatus == types.UploadStatusReady
	if mode == modeRead || readable {
		name := req.DocumentName
		if name == "" {
			name = doc.OriginalFilename
		}
		docType := req.DocumentType
		if docType == "" {
			docType = types.DocTypeDisplay[doc.DocType]
		}
		return s.factory.DocumentReader(ctx, doc.DocID, name, docType)
	}
	return s.factory.DocumentWriter(ctx, editorContent)
}

// siblingSection snapshots the other documents of the trade so the agent
// can carry values forward between workflow steps.
func (s *Service) siblingSection(ctx context.Context, doc *types.Document) contextSection {
	siblings, err := s.docs.ListSiblings(ctx, nil, doc.TradeID, doc.DocID)
	if err != nil {
		s.log.Warn("sibling load failed", "trade_id", doc.TradeID, "error", err)
		return contextSection{}
	}
	var parts []string
	for _, sib := range siblings {
		v, verr := s.versions.GetLatestByDocID(ctx, nil, sib.DocID)
		if verr != nil || v == nil {
			continue
		}
		text := truncateRunes(stripHTML(v.HTML()), siblingDocLimit)
		if text == "" {
			continue
		}
		display := types.DocTypeDisplay[sib.DocType]
		if display == "" {
			display = sib.DocType
		}
		parts = append(parts, "## "+display+"\n"+text)
	}
	return contextSection{label: "이전 step 문서 내용 - 참조용", body: strings.Join(parts, "\n\n")}
}

// persistAssistantDocMessage records the reply with its tool and edit
// metadata. Empty buffers are skipped.
func (s *Service) persistAssistantDocMessage(ctx context.Context, docID int64, full string, toolsUsed []ToolInfo, edit *EditResponse) {
	if strings.TrimSpace(full) == "" {
		return
	}
	meta := map[string]any{
		"tools_used": toolsUsed,
		"is_edit":    edit != nil,
	}
	if edit != nil {
		meta["changes"] = edit.Changes
		meta["edit_message"] = edit.Message
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		metaJSON = []byte("{}")
	}
	msg := &types.DocMessage{
		DocID:    docID,
		Role:     types.DocRoleAgent,
		Content:  full,
		Metadata: datatypes.JSON(metaJSON),
	}
	if err := s.docMsgs.Create(context.WithoutCancel(ctx), nil, msg); err != nil {
		s.log.Error("assistant turn persist failed", "doc_id", docID, "error", err)
	}
}
