package handler

import (
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/balloon_quote/internal/middleware"
	"github.com/GTDGit/balloon_quote/internal/service"
	"github.com/GTDGit/balloon_quote/internal/sse"
	"github.com/GTDGit/balloon_quote/internal/utils"
)

// SSEHandler handles Server-Sent Events for live session updates.
type SSEHandler struct {
	hub      *sse.Hub
	sessions *service.SessionService
}

// NewSSEHandler creates a new SSEHandler.
func NewSSEHandler(hub *sse.Hub, sessions *service.SessionService) *SSEHandler {
	return &SSEHandler{hub: hub, sessions: sessions}
}

// SessionStream handles GET /v1/sessions/:id/events
func (h *SSEHandler) SessionStream(c *gin.Context) {
	sessionID := c.Param("id")
	if _, err := h.sessions.Get(sessionID); err != nil {
		utils.FromError(c, err, "Failed to open stream")
		return
	}
	h.stream(c, sessionID)
}

// Stream handles GET /v1/events and receives the events of every session
// of the operator.
func (h *SSEHandler) Stream(c *gin.Context) {
	h.stream(c, "")
}

func (h *SSEHandler) stream(c *gin.Context, sessionID string) {
	operatorID := c.GetInt(middleware.OperatorIDKey)
	clientID := fmt.Sprintf("operator-%d-%d", operatorID, time.Now().UnixNano())

	// SSE headers
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // Disable nginx buffering

	client := h.hub.Register(clientID, sessionID, operatorID)
	defer h.hub.Unregister(clientID)

	c.SSEvent("connected", gin.H{
		"clientId":  clientID,
		"sessionId": sessionID,
		"timestamp": time.Now().Format(time.RFC3339),
	})
	c.Writer.Flush()

	log.Info().Str("client_id", clientID).Str("session_id", sessionID).Int("operator_id", operatorID).Msg("SSE stream started")

	c.Stream(func(w io.Writer) bool {
		select {
		case data, ok := <-client.Events:
			if !ok {
				return false
			}
			c.SSEvent("session", string(data))
			return true
		case <-time.After(30 * time.Second):
			c.SSEvent("ping", gin.H{"timestamp": time.Now().Format(time.RFC3339)})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
