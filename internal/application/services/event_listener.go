package services

import (
	"context"

	"github.com/artisanconnect/booking-backend/internal/domain/entities"
	"github.com/artisanconnect/booking-backend/internal/domain/providers"
	"github.com/artisanconnect/booking-backend/internal/infrastructure/observability"
)

// BookingEventListener consumes lifecycle events from the event bus and
// writes them to the log as an audit trail. It is the in-process consumer
// of the channel the booking service publishes to; external consumers
// (notification workers, dashboards) subscribe to the same channel.
type BookingEventListener struct {
	eventBus providers.EventBus
}

// NewBookingEventListener creates a listener for booking lifecycle events
func NewBookingEventListener(eventBus providers.EventBus) *BookingEventListener {
	return &BookingEventListener{eventBus: eventBus}
}

// Run subscribes to the booking events channel and consumes it until ctx is
// cancelled or the bus closes the subscription.
func (l *BookingEventListener) Run(ctx context.Context) error {
	events, err := l.eventBus.Subscribe(ctx, entities.BookingEventsChannel)
	if err != nil {
		return err
	}

	logger := observability.GetLogger()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			logger.Info().
				Str("event_id", event.ID).
				Str("event_type", string(event.Type)).
				Str("public_code", event.PublicCode).
				Time("start_at", event.StartAt).
				Msg("booking event received")
		}
	}
}
