package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"ideaboard-backend/internal/handlers"
	"ideaboard-backend/internal/logger"
	"ideaboard-backend/internal/middleware"
)

type RouterConfig struct {
	Log            *logger.Logger
	Mode           string
	AllowedOrigins []string

	ProfileHandler *handlers.ProfileHandler
	IdeaHandler    *handlers.IdeaHandler
	EnrichHandler  *handlers.EnrichHandler
	SSEHandler     *handlers.SSEHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(cfg.Log))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/profiles", cfg.ProfileHandler.Activate)
		api.GET("/profiles", cfg.ProfileHandler.List)
		api.GET("/profiles/active", cfg.ProfileHandler.Active)

		profile := api.Group("/profiles/:profile")
		{
			profile.GET("/events", cfg.SSEHandler.Stream)
			profile.GET("/board", cfg.IdeaHandler.Board)

			profile.POST("/ideas", cfg.IdeaHandler.Create)
			profile.GET("/ideas/:id", cfg.IdeaHandler.Get)
			profile.PATCH("/ideas/:id", cfg.IdeaHandler.Update)
			profile.DELETE("/ideas/:id", cfg.IdeaHandler.Discard)
			profile.POST("/ideas/:id/status", cfg.IdeaHandler.SetStatus)

			profile.POST("/generate", cfg.EnrichHandler.Generate)
			profile.POST("/ideas/:id/expand", cfg.EnrichHandler.Expand)
			profile.POST("/ideas/:id/keywords", cfg.EnrichHandler.Keywords)
			profile.POST("/ideas/:id/titles", cfg.EnrichHandler.Titles)
			profile.POST("/ideas/:id/script", cfg.EnrichHandler.Script)
			profile.POST("/ideas/:id/validate", cfg.EnrichHandler.Validate)
		}
	}

	return router
}
