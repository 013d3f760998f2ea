package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/tradeforge/tradeai-gateway/internal/platform/logger"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError writes the stable JSON error envelope used by every
// non-streaming endpoint.
func RespondError(c *gin.Context, status int, code string, err error, log *logger.Logger) {
	msg := code
	if err != nil {
		msg = err.Error()
	}
	if log != nil {
		log.Warn("request failed", "status", status, "code", code, "error", msg, "path", c.FullPath())
	}
	c.JSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(200, payload)
}
