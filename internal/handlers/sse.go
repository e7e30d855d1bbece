package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ideaboard-backend/internal/logger"
	"ideaboard-backend/internal/sse"
)

type SSEHandler struct {
	log *logger.Logger
	hub *sse.Hub
}

func NewSSEHandler(log *logger.Logger, hub *sse.Hub) *SSEHandler {
	return &SSEHandler{log: log, hub: hub}
}

// GET /api/profiles/:profile/events
//
// Streams board events for one profile. A browser tab keeps exactly one
// stream open; closing the tab tears the client down.
func (h *SSEHandler) Stream(c *gin.Context) {
	profile := c.Param("profile")
	if profile == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "profile is required"})
		return
	}

	client := h.hub.NewClient()
	h.hub.AddChannel(client, profile)
	h.log.Info("SSE stream open", "profile", profile, "client", client.ID)

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.hub.CloseClient(client)
	h.log.Info("SSE stream closed", "profile", profile, "client", client.ID)
}
