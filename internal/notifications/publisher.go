package notifications

import (
	"context"
	"log/slog"

	"github.com/YURESSA/foodgram-st/internal/middleware"
	"github.com/YURESSA/foodgram-st/internal/observability"
)

// Publisher delivers events to users. With Redis available events go through
// the notifier so every instance's hub sees them; otherwise they are
// delivered to the local hub directly.
type Publisher struct {
	hub      *Hub
	notifier *Notifier
}

// NewPublisher returns a publisher over hub and notifier. Either may be nil.
func NewPublisher(hub *Hub, notifier *Notifier) *Publisher {
	return &Publisher{hub: hub, notifier: notifier}
}

// Publish sends event to every listed user.
func (p *Publisher) Publish(ctx context.Context, event Event, userIDs ...uint) {
	if p == nil || len(userIDs) == 0 {
		return
	}
	message, err := event.Encode()
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to encode realtime event",
			slog.String("event", event.Type), slog.String("error", err.Error()))
		return
	}

	for _, userID := range userIDs {
		if p.notifier.Enabled() {
			if err := p.notifier.PublishUser(ctx, userID, message); err != nil {
				middleware.Logger.WarnContext(ctx, "failed to publish realtime event",
					slog.String("event", event.Type), slog.Uint64("user_id", uint64(userID)), slog.String("error", err.Error()))
				continue
			}
		} else if p.hub != nil {
			p.hub.Broadcast(userID, message)
		}
		observability.WebSocketEventsTotal.WithLabelValues(event.Type).Inc()
	}
}
