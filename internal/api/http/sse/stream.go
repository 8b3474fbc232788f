// Package sse writes Server-Sent Events on a gin response.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// KeepAliveInterval is how often an idle stream sends a comment line.
const KeepAliveInterval = 15 * time.Second

type Stream struct {
	w       gin.ResponseWriter
	flusher http.Flusher
}

// Start sets the event-stream headers. It writes a 500 and returns false when the writer
// cannot flush.
func Start(c *gin.Context) (*Stream, bool) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "streaming unsupported"})
		return nil, false
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering
	c.Status(http.StatusOK)

	return &Stream{w: c.Writer, flusher: flusher}, true
}

// Event writes one named event with v encoded as JSON.
func (s *Stream) Event(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", name, err)
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

func (s *Stream) KeepAlive() error {
	if _, err := fmt.Fprint(s.w, ": keep-alive\n\n"); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
