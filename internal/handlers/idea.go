package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ideaboard-backend/internal/services"
	"ideaboard-backend/internal/types"
)

type IdeaHandler struct {
	svc      services.IdeaService
	inflight *services.InFlightTracker
}

func NewIdeaHandler(svc services.IdeaService, inflight *services.InFlightTracker) *IdeaHandler {
	return &IdeaHandler{svc: svc, inflight: inflight}
}

func ideaID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid idea id"})
		return uuid.Nil, false
	}
	return id, true
}

// GET /api/profiles/:profile/board
func (h *IdeaHandler) Board(c *gin.Context) {
	board, err := h.svc.Board(c.Request.Context(), c.Param("profile"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"board":     board,
		"in_flight": h.inflight.Snapshot(),
	})
}

// POST /api/profiles/:profile/ideas
func (h *IdeaHandler) Create(c *gin.Context) {
	var req struct {
		Ideas []types.IdeaDraft `json:"ideas" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ideas array is required"})
		return
	}
	for i := range req.Ideas {
		if req.Ideas[i].Provenance == "" {
			req.Ideas[i].Provenance = "Manual"
		}
	}

	ideas, err := h.svc.Create(c.Request.Context(), c.Param("profile"), req.Ideas)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ideas": ideas})
}

// GET /api/profiles/:profile/ideas/:id
func (h *IdeaHandler) Get(c *gin.Context) {
	id, ok := ideaID(c)
	if !ok {
		return
	}
	idea, err := h.svc.Get(c.Request.Context(), c.Param("profile"), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"idea": idea})
}

// PATCH /api/profiles/:profile/ideas/:id
func (h *IdeaHandler) Update(c *gin.Context) {
	id, ok := ideaID(c)
	if !ok {
		return
	}
	var patch services.IdeaPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid patch body"})
		return
	}

	idea, err := h.svc.Update(c.Request.Context(), c.Param("profile"), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	// Unknown ids are acknowledged without effect.
	c.JSON(http.StatusOK, gin.H{"idea": idea})
}

// POST /api/profiles/:profile/ideas/:id/status
func (h *IdeaHandler) SetStatus(c *gin.Context) {
	id, ok := ideaID(c)
	if !ok {
		return
	}
	var req struct {
		Status types.IdeaStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	idea, err := h.svc.SetStatus(c.Request.Context(), c.Param("profile"), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"idea": idea})
}

// DELETE /api/profiles/:profile/ideas/:id
func (h *IdeaHandler) Discard(c *gin.Context) {
	id, ok := ideaID(c)
	if !ok {
		return
	}
	idea, err := h.svc.Discard(c.Request.Context(), c.Param("profile"), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"idea": idea})
}
