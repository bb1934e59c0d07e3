package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/artisanconnect/booking-backend/internal/domain/entities"
	"github.com/artisanconnect/booking-backend/internal/domain/providers"
	"github.com/artisanconnect/booking-backend/internal/domain/repositories"
	"github.com/artisanconnect/booking-backend/internal/infrastructure/observability"
	apperrors "github.com/artisanconnect/booking-backend/pkg/errors"
)

// PaymentSyncService applies verified payment-provider events to booking
// deposit state. Events are delivered at-least-once, so every transition
// here must be idempotent.
type PaymentSyncService struct {
	bookingRepo repositories.BookingRepository
	eventBus    providers.EventBus
}

// NewPaymentSyncService creates a new payment sync service
func NewPaymentSyncService(bookingRepo repositories.BookingRepository, eventBus providers.EventBus) *PaymentSyncService {
	return &PaymentSyncService{
		bookingRepo: bookingRepo,
		eventBus:    eventBus,
	}
}

// ApplyPaymentEvent routes a verified payment event. Only the intent-succeeded
// type mutates state; everything else is acknowledged and dropped.
func (s *PaymentSyncService) ApplyPaymentEvent(ctx context.Context, event *entities.PaymentEvent) (*entities.Booking, error) {
	logger := observability.LoggerFromContext(ctx)

	if event.Type != entities.PaymentEventIntentSucceeded {
		logger.Debug().
			Str("event_type", event.Type).
			Msg("ignoring payment event type")
		return nil, nil
	}
	if event.PaymentIntentID == "" {
		return nil, apperrors.NewInvalidBookingDataError("payment event carries no payment intent id")
	}

	return s.ApplyPaymentCaptured(ctx, event.PaymentIntentID)
}

// ApplyPaymentCaptured marks the deposit of the booking holding intentID as
// captured. Replays against an already-captured deposit return the booking
// unchanged, without touching updated_at.
func (s *PaymentSyncService) ApplyPaymentCaptured(ctx context.Context, intentID string) (*entities.Booking, error) {
	logger := observability.LoggerFromContext(ctx)

	booking, err := s.bookingRepo.FindByPaymentIntentID(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, apperrors.NewBookingNotFoundError("no booking holds this payment intent")
	}

	if booking.DepositStatus == entities.DepositStatusCaptured {
		logger.Info().
			Str("booking_id", booking.ID).
			Str("payment_intent_id", intentID).
			Msg("deposit already captured, skipping")
		return booking, nil
	}

	updated, err := s.bookingRepo.UpdateDepositStatus(ctx, intentID, entities.DepositStatusCaptured)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperrors.NewBookingNotFoundError("no booking holds this payment intent")
	}

	logger.Info().
		Str("booking_id", updated.ID).
		Str("payment_intent_id", intentID).
		Msg("deposit captured")

	if s.eventBus != nil {
		event := &entities.BookingEvent{
			ID:         uuid.New().String(),
			Type:       entities.BookingEventDepositCaptured,
			BookingID:  updated.ID,
			PublicCode: updated.PublicCode,
			ProviderID: updated.ProviderID,
			StartAt:    updated.StartAt,
			OccurredAt: time.Now().UTC(),
		}
		if err := s.eventBus.Publish(ctx, entities.BookingEventsChannel, event); err != nil {
			logger.Warn().Err(err).
				Str("booking_id", updated.ID).
				Msg("failed to publish deposit captured event")
		}
	}

	return updated, nil
}
