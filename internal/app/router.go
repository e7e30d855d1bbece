package app

import (
	"github.com/gin-gonic/gin"

	"ideaboard-backend/internal/logger"
	"ideaboard-backend/internal/server"
)

func wireRouter(log *logger.Logger, cfg Config, handlerset Handlers) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		Log:            log,
		Mode:           cfg.Mode,
		AllowedOrigins: cfg.AllowedOrigins,
		ProfileHandler: handlerset.Profile,
		IdeaHandler:    handlerset.Idea,
		EnrichHandler:  handlerset.Enrich,
		SSEHandler:     handlerset.SSE,
	})
}
