package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tradeforge/tradeai-gateway/internal/chat"
	"github.com/tradeforge/tradeai-gateway/internal/memory"
	"github.com/tradeforge/tradeai-gateway/internal/platform/logger"
	"github.com/tradeforge/tradeai-gateway/internal/repos"
)

type ChatHandler struct {
	log      *logger.Logger
	svc      *chat.Service
	genChats repos.GenChatRepo
	mem      memory.Service
}

func NewChatHandler(svc *chat.Service, genChats repos.GenChatRepo, mem memory.Service, baseLog *logger.Logger) *ChatHandler {
	return &ChatHandler{
		log:      baseLog.With("handler", "chat"),
		svc:      svc,
		genChats: genChats,
		mem:      mem,
	}
}

// streamAvailable reports whether the chat service started; without an
// LLM the streaming endpoints answer with a single error frame.
func (h *ChatHandler) streamAvailable(w chat.FrameWriter) bool {
	if h.svc == nil {
		_ = w.Send(chat.NewErrorFrame("채팅 서비스를 사용할 수 없습니다."))
		return false
	}
	return true
}

// userRef normalizes the user_id body field, which clients send either
// as a JSON number or an employee-number string.
func userRef(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil && n > 0 {
		return strconv.FormatInt(n, 10)
	}
	return ""
}

type tradeChatBody struct {
	Message   string          `json:"message"`
	UserID    json.RawMessage `json:"user_id"`
	GenChatID int64           `json:"gen_chat_id"`
	Context   string          `json:"context"`
	History   json.RawMessage `json:"history"`
}

// TradeChatStream handles POST /api/trade/chat/stream.
func (h *ChatHandler) TradeChatStream(c *gin.Context) {
	w, err := newSSEWriter(c)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "streaming_unsupported", err, h.log)
		return
	}
	if !h.streamAvailable(w) {
		return
	}
	var body tradeChatBody
	if err := c.ShouldBindJSON(&body); err != nil {
		_ = w.Send(chat.NewErrorFrame("Invalid JSON"))
		return
	}
	h.svc.StreamTradeChat(c.Request.Context(), chat.TradeChatRequest{
		Message:   body.Message,
		UserRef:   userRef(body.UserID),
		GenChatID: body.GenChatID,
	}, w)
}

type docChatBody struct {
	DocID           int64           `json:"doc_id"`
	Message         string          `json:"message"`
	UserID          json.RawMessage `json:"user_id"`
	DocumentContent string          `json:"document_content"`
	DocumentName    string          `json:"document_name"`
	DocumentType    string          `json:"document_type"`
	History         json.RawMessage `json:"history"`
}

func (b docChatBody) toRequest() chat.DocChatRequest {
	return chat.DocChatRequest{
		DocID:           b.DocID,
		Message:         b.Message,
		UserRef:         userRef(b.UserID),
		DocumentContent: b.DocumentContent,
		DocumentName:    b.DocumentName,
		DocumentType:    b.DocumentType,
	}
}

// DocumentWriteStream handles POST /api/document/write/chat/stream.
func (h *ChatHandler) DocumentWriteStream(c *gin.Context) {
	w, err := newSSEWriter(c)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "streaming_unsupported", err, h.log)
		return
	}
	if !h.streamAvailable(w) {
		return
	}
	var body docChatBody
	if err := c.ShouldBindJSON(&body); err != nil {
		_ = w.Send(chat.NewErrorFrame("Invalid JSON"))
		return
	}
	h.svc.StreamDocumentWrite(c.Request.Context(), body.toRequest(), w)
}

// DocumentReadStream handles POST /api/document/read/chat/stream.
func (h *ChatHandler) DocumentReadStream(c *gin.Context) {
	w, err := newSSEWriter(c)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "streaming_unsupported", err, h.log)
		return
	}
	if !h.streamAvailable(w) {
		return
	}
	var body docChatBody
	if err := c.ShouldBindJSON(&body); err != nil {
		_ = w.Send(chat.NewErrorFrame("Invalid JSON"))
		return
	}
	h.svc.StreamDocumentRead(c.Request.Context(), body.toRequest(), w)
}

// DeleteGenChat handles DELETE /api/chat/general/:gen_chat_id. The
// session memories go first, best-effort, then the row and its messages.
func (h *ChatHandler) DeleteGenChat(c *gin.Context) {
	genChatID, err := strconv.ParseInt(c.Param("gen_chat_id"), 10, 64)
	if err != nil || genChatID <= 0 {
		RespondError(c, http.StatusBadRequest, "invalid_gen_chat_id", err, h.log)
		return
	}
	if _, err := h.genChats.GetByID(c.Request.Context(), nil, genChatID); err != nil {
		RespondError(c, http.StatusNotFound, "gen_chat_not_found", err, h.log)
		return
	}
	if h.mem != nil {
		if err := h.mem.DeleteGenChat(c.Request.Context(), genChatID); err != nil {
			h.log.Warn("gen chat memory delete failed", "gen_chat_id", genChatID, "error", err)
		}
	}
	if err := h.genChats.Delete(c.Request.Context(), nil, genChatID); err != nil {
		RespondError(c, http.StatusInternalServerError, "delete_failed", err, h.log)
		return
	}
	RespondOK(c, gin.H{"message": "삭제 완료"})
}
