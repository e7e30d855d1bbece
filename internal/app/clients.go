package app

import (
	"fmt"
	"os"

	redisclient "ideaboard-backend/internal/clients/redis"
	"ideaboard-backend/internal/clients/textgen"
	"ideaboard-backend/internal/clients/videosearch"
	"ideaboard-backend/internal/logger"
)

type Clients struct {
	TextGen     textgen.Client
	VideoSearch videosearch.Client
	NotifyBus   redisclient.NotifyBus
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring upstream clients...")

	textClient, err := textgen.NewClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init textgen client: %w", err)
	}

	searchClient, err := videosearch.NewClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init videosearch client: %w", err)
	}

	// The redis bus is optional; a single instance runs fine on the local
	// hub alone.
	var bus redisclient.NotifyBus
	if os.Getenv("REDIS_ADDR") != "" {
		bus, err = redisclient.NewNotifyBus(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init notify bus: %w", err)
		}
	}

	return Clients{
		TextGen:     textClient,
		VideoSearch: searchClient,
		NotifyBus:   bus,
	}, nil
}
