package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tradeforge/tradeai-gateway/internal/memory"
	"github.com/tradeforge/tradeai-gateway/internal/platform/logger"
)

type MemoryHandler struct {
	log *logger.Logger
	mem memory.Service
}

func NewMemoryHandler(mem memory.Service, baseLog *logger.Logger) *MemoryHandler {
	return &MemoryHandler{log: baseLog.With("handler", "memory"), mem: mem}
}

// available guards every route: when the memory service failed to start
// the endpoints answer 503 instead of panicking.
func (h *MemoryHandler) available(c *gin.Context) bool {
	if h.mem == nil {
		RespondError(c, http.StatusServiceUnavailable, "memory_unavailable", nil, h.log)
		return false
	}
	return true
}

type memorySearchBody struct {
	Query     string `json:"query"`
	UserID    int64  `json:"user_id"`
	DocID     int64  `json:"doc_id"`
	BuyerName string `json:"buyer_name"`
	Limit     int    `json:"limit"`
}

// Search handles POST /api/memory/search. Scope selection mirrors the
// write side: doc_id wins, then buyer, then user preferences.
func (h *MemoryHandler) Search(c *gin.Context) {
	if !h.available(c) {
		return
	}
	var body memorySearchBody
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err, h.log)
		return
	}
	ctx := c.Request.Context()
	var (
		items []memory.Item
		err   error
	)
	switch {
	case body.DocID > 0:
		items, err = h.mem.GetDoc(ctx, body.DocID, body.Query, body.Limit)
	case body.BuyerName != "" && body.UserID > 0:
		items, err = h.mem.GetBuyer(ctx, body.UserID, body.BuyerName, body.Query, body.Limit)
	case body.UserID > 0:
		items, err = h.mem.GetUser(ctx, body.UserID, body.Query, body.Limit)
	default:
		RespondError(c, http.StatusBadRequest, "scope_required", nil, h.log)
		return
	}
	if err != nil {
		RespondError(c, http.StatusBadGateway, "memory_search_failed", err, h.log)
		return
	}
	if items == nil {
		items = []memory.Item{}
	}
	RespondOK(c, gin.H{"memories": items, "count": len(items)})
}

type memorySaveBody struct {
	Messages  []memory.Message `json:"messages"`
	UserID    int64            `json:"user_id"`
	DocID     int64            `json:"doc_id"`
	GenChatID int64            `json:"gen_chat_id"`
	BuyerName string           `json:"buyer_name"`
	SaveUser  bool             `json:"save_user"`
	SaveDoc   bool             `json:"save_doc"`
	SaveBuyer bool             `json:"save_buyer"`
}

// Save handles POST /api/memory/save.
func (h *MemoryHandler) Save(c *gin.Context) {
	if !h.available(c) {
		return
	}
	var body memorySaveBody
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err, h.log)
		return
	}
	if len(body.Messages) == 0 || body.UserID <= 0 {
		RespondError(c, http.StatusBadRequest, "messages_and_user_required", nil, h.log)
		return
	}
	result := h.mem.SaveSmart(c.Request.Context(), memory.SaveRequest{
		Messages:  body.Messages,
		UserID:    body.UserID,
		DocID:     body.DocID,
		GenChatID: body.GenChatID,
		BuyerName: body.BuyerName,
		SaveDoc:   body.SaveDoc,
		SaveUser:  body.SaveUser,
		SaveBuyer: body.SaveBuyer,
	})
	RespondOK(c, gin.H{
		"success":     true,
		"saved_count": result.Total,
		"user":        result.User,
		"doc":         result.Doc + result.GenChat,
		"buyer":       result.Buyer,
	})
}

type memoryContextBody struct {
	DocID     int64  `json:"doc_id"`
	UserID    int64  `json:"user_id"`
	Query     string `json:"query"`
	BuyerName string `json:"buyer_name"`
}

// Context handles POST /api/memory/context.
func (h *MemoryHandler) Context(c *gin.Context) {
	if !h.available(c) {
		return
	}
	var body memoryContextBody
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err, h.log)
		return
	}
	if body.DocID <= 0 {
		RespondError(c, http.StatusBadRequest, "doc_id_required", nil, h.log)
		return
	}
	ctx := h.mem.BuildDocContext(c.Request.Context(), body.DocID, body.UserID, body.Query, body.BuyerName)
	RespondOK(c, ctx)
}

type memoryDeleteBody struct {
	TradeID int64   `json:"trade_id"`
	DocIDs  []int64 `json:"doc_ids"`
}

// DeleteTrade handles POST /api/memory/delete. Partial success is
// reported, not failed.
func (h *MemoryHandler) DeleteTrade(c *gin.Context) {
	if !h.available(c) {
		return
	}
	var body memoryDeleteBody
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err, h.log)
		return
	}
	deleted := h.mem.DeleteTrade(c.Request.Context(), body.TradeID, body.DocIDs)
	RespondOK(c, gin.H{"success": true, "deleted_count": deleted})
}

type genChatDeleteBody struct {
	GenChatID int64 `json:"gen_chat_id"`
}

// DeleteGenChat handles POST /api/memory/delete/gen-chat.
func (h *MemoryHandler) DeleteGenChat(c *gin.Context) {
	if !h.available(c) {
		return
	}
	var body genChatDeleteBody
	if err := c.ShouldBindJSON(&body); err != nil || body.GenChatID <= 0 {
		RespondError(c, http.StatusBadRequest, "gen_chat_id_required", err, h.log)
		return
	}
	if err := h.mem.DeleteGenChat(c.Request.Context(), body.GenChatID); err != nil {
		RespondError(c, http.StatusBadGateway, "memory_delete_failed", err, h.log)
		return
	}
	RespondOK(c, gin.H{"success": true, "deleted_count": 1})
}
