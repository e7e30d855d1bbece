package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ideaboard-backend/internal/services"
)

// Enrichment calls block on upstream AI round trips, so every request gets
// an explicit deadline instead of hanging on a slow provider.
const (
	generateDeadline = 2 * time.Minute
	validateDeadline = 90 * time.Second
)

type EnrichHandler struct {
	generation services.GenerationService
	enrichment services.EnrichmentService
	validator  services.ValidatorService
}

func NewEnrichHandler(generation services.GenerationService, enrichment services.EnrichmentService, validator services.ValidatorService) *EnrichHandler {
	return &EnrichHandler{
		generation: generation,
		enrichment: enrichment,
		validator:  validator,
	}
}

// POST /api/profiles/:profile/generate
func (h *EnrichHandler) Generate(c *gin.Context) {
	var req services.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid generation request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), generateDeadline)
	defer cancel()

	result, err := h.generation.Generate(ctx, c.Param("profile"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// POST /api/profiles/:profile/ideas/:id/expand
func (h *EnrichHandler) Expand(c *gin.Context) {
	id, ok := ideaID(c)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), generateDeadline)
	defer cancel()

	result, err := h.generation.Expand(ctx, c.Param("profile"), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// POST /api/profiles/:profile/ideas/:id/keywords
func (h *EnrichHandler) Keywords(c *gin.Context) {
	id, ok := ideaID(c)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), generateDeadline)
	defer cancel()

	idea, err := h.enrichment.Keywords(ctx, c.Param("profile"), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"idea": idea})
}

// POST /api/profiles/:profile/ideas/:id/titles
func (h *EnrichHandler) Titles(c *gin.Context) {
	id, ok := ideaID(c)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), generateDeadline)
	defer cancel()

	idea, err := h.enrichment.Titles(ctx, c.Param("profile"), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"idea": idea})
}

// POST /api/profiles/:profile/ideas/:id/script
func (h *EnrichHandler) Script(c *gin.Context) {
	id, ok := ideaID(c)
	if !ok {
		return
	}
	var req struct {
		DurationMinutes int `json:"duration_minutes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid script request"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), generateDeadline)
	defer cancel()

	idea, err := h.enrichment.Script(ctx, c.Param("profile"), id, req.DurationMinutes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"idea": idea})
}

// POST /api/profiles/:profile/ideas/:id/validate
func (h *EnrichHandler) Validate(c *gin.Context) {
	id, ok := ideaID(c)
	if !ok {
		return
	}
	force := c.Query("force") == "true"

	ctx, cancel := context.WithTimeout(c.Request.Context(), validateDeadline)
	defer cancel()

	idea, err := h.validator.Validate(ctx, c.Param("profile"), id, force)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"idea": idea})
}
