package app

import (
	"gorm.io/gorm"

	"ideaboard-backend/internal/logger"
	"ideaboard-backend/internal/services"
	"ideaboard-backend/internal/sse"
)

type Services struct {
	Notifier   services.Notifier
	InFlight   *services.InFlightTracker
	Profile    services.ProfileService
	Idea       services.IdeaService
	Generation services.GenerationService
	Enrichment services.EnrichmentService
	Validator  services.ValidatorService
}

func wireServices(db *gorm.DB, log *logger.Logger, reposet Repos, clients Clients, hub *sse.Hub) Services {
	log.Info("Wiring services...")

	notifier := services.NewNotifier(log, hub, clients.NotifyBus)
	inflight := services.NewInFlightTracker()

	ideaService := services.NewIdeaService(db, log, reposet.Idea)

	return Services{
		Notifier:   notifier,
		InFlight:   inflight,
		Profile:    services.NewProfileService(db, log, reposet.Profile),
		Idea:       ideaService,
		Generation: services.NewGenerationService(db, log, ideaService, clients.TextGen, inflight, notifier),
		Enrichment: services.NewEnrichmentService(db, log, reposet.Idea, clients.TextGen, inflight, notifier),
		Validator:  services.NewValidatorService(db, log, reposet.Idea, clients.VideoSearch, clients.TextGen, inflight, notifier),
	}
}
