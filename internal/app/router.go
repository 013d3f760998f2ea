package app

import (
	"github.com/gin-gonic/gin"

	"github.com/tradeforge/tradeai-gateway/internal/handlers"
	"github.com/tradeforge/tradeai-gateway/internal/platform/logger"
)

func buildRouter(
	log *logger.Logger,
	chatHandler *handlers.ChatHandler,
	memoryHandler *handlers.MemoryHandler,
	ingestHandler *handlers.IngestHandler,
	healthHandler *handlers.HealthHandler,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(log))
	router.Use(corsMiddleware())

	router.GET("/health", healthHandler.Health)

	api := router.Group("/api")
	{
		// Streaming chat
		api.POST("/trade/chat/stream", chatHandler.TradeChatStream)
		api.POST("/document/write/chat/stream", chatHandler.DocumentWriteStream)
		api.POST("/document/read/chat/stream", chatHandler.DocumentReadStream)
		api.DELETE("/chat/general/:gen_chat_id", chatHandler.DeleteGenChat)

		// Memory
		api.POST("/memory/search", memoryHandler.Search)
		api.POST("/memory/save", memoryHandler.Save)
		api.POST("/memory/context", memoryHandler.Context)
		api.POST("/memory/delete", memoryHandler.DeleteTrade)
		api.POST("/memory/delete/gen-chat", memoryHandler.DeleteGenChat)

		// Ingest
		api.POST("/ingest/document", ingestHandler.Ingest)
		api.DELETE("/ingest/document", ingestHandler.Delete)
	}

	return router
}
