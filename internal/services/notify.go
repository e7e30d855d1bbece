package services

import (
	"context"

	redisclient "ideaboard-backend/internal/clients/redis"
	"ideaboard-backend/internal/logger"
	"ideaboard-backend/internal/pkg/ctxutil"
	"ideaboard-backend/internal/sse"
)

// Notifier pushes transient notifications onto a profile's event stream.
// With a redis bus configured the message goes through pub/sub so every
// instance's hub sees it; otherwise it lands on the local hub directly.
type Notifier interface {
	Notify(ctx context.Context, profileKey string, event sse.Event, data any)
}

type notifier struct {
	log *logger.Logger
	hub *sse.Hub
	bus redisclient.NotifyBus
}

func NewNotifier(log *logger.Logger, hub *sse.Hub, bus redisclient.NotifyBus) Notifier {
	return &notifier{
		log: log.With("service", "Notifier"),
		hub: hub,
		bus: bus,
	}
}

func (n *notifier) Notify(ctx context.Context, profileKey string, event sse.Event, data any) {
	msg := sse.Message{Channel: profileKey, Event: event, Data: data}
	if n.bus != nil {
		if err := n.bus.Publish(ctxutil.Default(ctx), msg); err != nil {
			n.log.Warn("Notify publish failed; falling back to local hub", "event", event, "error", err)
			n.hub.Broadcast(msg)
		}
		return
	}
	n.hub.Broadcast(msg)
}
