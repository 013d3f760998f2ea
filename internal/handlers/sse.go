package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// sseWriter owns one event-stream response. Frames are written and
// flushed one at a time by the single request goroutine, which is what
// keeps per-stream frame ordering total.
type sseWriter struct {
	c       *gin.Context
	flusher http.Flusher
}

// newSSEWriter sets the stream headers and verifies the connection can
// flush. A non-flushable writer cannot stream; callers fall back to a
// plain error response.
func newSSEWriter(c *gin.Context) (*sseWriter, error) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support streaming")
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	return &sseWriter{c: c, flusher: flusher}, nil
}

func (w *sseWriter) Send(frame any) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w.c.Writer, "data: %s\n\n", payload); err != nil {
		return err
	}
	w.flusher.Flush()
	return nil
}
