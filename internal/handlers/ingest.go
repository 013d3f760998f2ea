package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/tradeforge/tradeai-gateway/internal/apperr"
	"github.com/tradeforge/tradeai-gateway/internal/ingest"
	"github.com/tradeforge/tradeai-gateway/internal/platform/logger"
	"github.com/tradeforge/tradeai-gateway/internal/repos"
	"github.com/tradeforge/tradeai-gateway/internal/types"
)

type IngestHandler struct {
	log  *logger.Logger
	svc  ingest.Service
	docs repos.DocumentRepo
}

func NewIngestHandler(svc ingest.Service, docs repos.DocumentRepo, baseLog *logger.Logger) *IngestHandler {
	return &IngestHandler{log: baseLog.With("handler", "ingest"), svc: svc, docs: docs}
}

type ingestBody struct {
	DocID          int64  `json:"doc_id"`
	S3Key          string `json:"s3_key"`
	CollectionName string `json:"collection_name"`
}

// Ingest handles POST /api/ingest/document. When the doc_id matches a
// stored Document its upload_status tracks the run: processing while
// working, ready or error afterward.
func (h *IngestHandler) Ingest(c *gin.Context) {
	if h.svc == nil {
		RespondError(c, http.StatusServiceUnavailable, "ingest_unavailable", nil, h.log)
		return
	}
	var body ingestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err, h.log)
		return
	}
	ctx := c.Request.Context()

	tracked := false
	if h.docs != nil {
		if _, err := h.docs.GetByID(ctx, nil, body.DocID); err == nil {
			tracked = true
			if err := h.docs.UpdateUploadStatus(ctx, nil, body.DocID, types.UploadStatusProcessing, ""); err != nil {
				h.log.Warn("upload status update failed", "doc_id", body.DocID, "error", err)
			}
		}
	}

	result, err := h.svc.Ingest(ctx, body.DocID, body.S3Key, body.CollectionName)
	if err != nil {
		if tracked {
			if uerr := h.docs.UpdateUploadStatus(ctx, nil, body.DocID, types.UploadStatusError, err.Error()); uerr != nil {
				h.log.Warn("upload status update failed", "doc_id", body.DocID, "error", uerr)
			}
		}
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, apperr.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, apperr.ErrIngest):
			status = http.StatusUnprocessableEntity
		}
		RespondError(c, status, "ingest_failed", err, h.log)
		return
	}

	if tracked {
		if err := h.docs.UpdateUploadStatus(ctx, nil, body.DocID, types.UploadStatusReady, ""); err != nil {
			h.log.Warn("upload status update failed", "doc_id", body.DocID, "error", err)
		}
		if ids, err := json.Marshal(result.PointIDs); err == nil {
			if err := h.docs.SetVectorPointIDs(ctx, nil, body.DocID, datatypes.JSON(ids)); err != nil {
				h.log.Warn("vector point ids update failed", "doc_id", body.DocID, "error", err)
			}
		}
	}

	RespondOK(c, gin.H{
		"success":      true,
		"doc_id":       body.DocID,
		"chunks_count": result.ChunksCount,
		"collection":   body.CollectionName,
	})
}

type ingestDeleteBody struct {
	DocID          int64  `json:"doc_id"`
	CollectionName string `json:"collection_name"`
}

// Delete handles DELETE /api/ingest/document.
func (h *IngestHandler) Delete(c *gin.Context) {
	if h.svc == nil {
		RespondError(c, http.StatusServiceUnavailable, "ingest_unavailable", nil, h.log)
		return
	}
	var body ingestDeleteBody
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err, h.log)
		return
	}
	deleted, err := h.svc.DeleteDocument(c.Request.Context(), body.DocID, body.CollectionName)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, apperr.ErrValidation) {
			status = http.StatusBadRequest
		}
		RespondError(c, status, "ingest_delete_failed", err, h.log)
		return
	}
	RespondOK(c, gin.H{"success": true, "doc_id": body.DocID, "deleted_count": deleted})
}
