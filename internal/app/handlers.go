package app

import (
	"ideaboard-backend/internal/handlers"
	"ideaboard-backend/internal/logger"
	"ideaboard-backend/internal/sse"
)

type Handlers struct {
	Profile *handlers.ProfileHandler
	Idea    *handlers.IdeaHandler
	Enrich  *handlers.EnrichHandler
	SSE     *handlers.SSEHandler
}

func wireHandlers(log *logger.Logger, serviceset Services, hub *sse.Hub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Profile: handlers.NewProfileHandler(serviceset.Profile),
		Idea:    handlers.NewIdeaHandler(serviceset.Idea, serviceset.InFlight),
		Enrich:  handlers.NewEnrichHandler(serviceset.Generation, serviceset.Enrichment, serviceset.Validator),
		SSE:     handlers.NewSSEHandler(log, hub),
	}
}
