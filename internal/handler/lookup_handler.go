package handler

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ekamauln/livo-next/internal/lookup"
)

type LookupHandler struct {
	manager   *lookup.Manager
	heartbeat time.Duration
}

func NewLookupHandler(m *lookup.Manager) *LookupHandler {
	return &LookupHandler{manager: m, heartbeat: 30 * time.Second}
}

// Stream GET /api/v1/lookups/:kind/stream?token=xxx
func (h *LookupHandler) Stream(c *gin.Context) {
	s, err := h.manager.Open(RequestContext(c), GetUserID(c), c.Param("kind"))
	if errors.Is(err, lookup.ErrUnknownKind) {
		NotFound(c, "Unknown lookup kind")
		return
	}
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	defer h.manager.Close(s.ID)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	fmt.Fprintf(c.Writer, "event: %s\ndata: {\"session_id\":%q}\n\n", lookup.EventConnected, s.ID)
	c.Writer.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()
	clientGone := c.Request.Context().Done()

	for {
		select {
		case <-clientGone:
			return
		case event, ok := <-s.Client.Events:
			if !ok {
				return
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event.EventType, event.Data)
			c.Writer.Flush()
		case <-heartbeat.C:
			c.Writer.WriteString(": keepalive\n\n")
			c.Writer.Flush()
		}
	}
}

type keyRequest struct {
	Term string `json:"term"`
}

// Key POST /api/v1/lookups/sessions/:id/keys
func (h *LookupHandler) Key(c *gin.Context) {
	var req keyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "term is required")
		return
	}
	seq, err := h.manager.Key(c.Param("id"), GetUserID(c), req.Term)
	if errors.Is(err, lookup.ErrSessionNotFound) {
		NotFound(c, "Lookup session not found")
		return
	}
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Accepted(c, "queued", gin.H{"seq": seq})
}
