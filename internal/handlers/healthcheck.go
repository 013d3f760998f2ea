package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tradeforge/tradeai-gateway/internal/db"
	"github.com/tradeforge/tradeai-gateway/internal/platform/logger"
	"github.com/tradeforge/tradeai-gateway/internal/platform/qdrant"
)

const serviceVersion = "1.0.0"

type HealthHandler struct {
	log      *logger.Logger
	pg       *db.PostgresService
	vectors  qdrant.Client
	services map[string]bool
}

// NewHealthHandler takes static configured-or-not flags for the
// credential-gated clients; postgres and qdrant are checked live.
func NewHealthHandler(pg *db.PostgresService, vectors qdrant.Client, configured map[string]bool, baseLog *logger.Logger) *HealthHandler {
	return &HealthHandler{
		log:      baseLog.With("handler", "health"),
		pg:       pg,
		vectors:  vectors,
		services: configured,
	}
}

// Health handles GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	services := gin.H{}
	for name, ok := range h.services {
		services[name] = statusWord(ok)
	}
	pgOK := h.pg != nil && h.pg.Ping() == nil
	services["postgres"] = statusWord(pgOK)
	qdrantOK := h.vectors != nil && h.vectors.Ping(ctx) == nil
	services["qdrant"] = statusWord(qdrantOK)

	status := "ok"
	if !pgOK || !qdrantOK {
		status = "degraded"
	}
	RespondOK(c, gin.H{
		"status":   status,
		"version":  serviceVersion,
		"services": services,
	})
}

func statusWord(ok bool) string {
	if ok {
		return "ok"
	}
	return "unavailable"
}
