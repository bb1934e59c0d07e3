package services

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/artisanconnect/booking-backend/internal/domain/entities"
	"github.com/artisanconnect/booking-backend/internal/domain/providers"
	"github.com/artisanconnect/booking-backend/internal/domain/repositories"
	"github.com/artisanconnect/booking-backend/internal/infrastructure/observability"
	"github.com/artisanconnect/booking-backend/pkg/bookingcode"
	apperrors "github.com/artisanconnect/booking-backend/pkg/errors"
)

// TimeLayout is the wire format for slot times.
const TimeLayout = "15:04"

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern  = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// CreateBookingRequest carries the customer's booking intent.
type CreateBookingRequest struct {
	ServiceID     string
	Date          string
	Time          string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Notifications *entities.NotificationPrefs
}

// BookingService owns the booking lifecycle: creation, lookup, cancellation
// and reschedule. Create and Reschedule run their availability check and
// write under the conflict guard, so two concurrent attempts at the same
// slot resolve to exactly one winner.
type BookingService struct {
	serviceRepo  repositories.ServiceRepository
	providerRepo repositories.ProviderRepository
	bookingRepo  repositories.BookingRepository
	availability *AvailabilityService
	guard        providers.ConflictGuard
	payments     providers.PaymentProvider
	eventBus     providers.EventBus
}

// NewBookingService creates a new booking service
func NewBookingService(
	serviceRepo repositories.ServiceRepository,
	providerRepo repositories.ProviderRepository,
	bookingRepo repositories.BookingRepository,
	availability *AvailabilityService,
	guard providers.ConflictGuard,
	payments providers.PaymentProvider,
	eventBus providers.EventBus,
) *BookingService {
	return &BookingService{
		serviceRepo:  serviceRepo,
		providerRepo: providerRepo,
		bookingRepo:  bookingRepo,
		availability: availability,
		guard:        guard,
		payments:     payments,
		eventBus:     eventBus,
	}
}

// Create books a slot. The slot re-check, code generation and insert run
// under the provider/day lock; the deposit payment intent is created after
// the booking committed and its failure degrades to a booking without an
// intent rather than rolling back.
func (s *BookingService) Create(ctx context.Context, req CreateBookingRequest) (*entities.Booking, *entities.PaymentIntentRef, error) {
	logger := observability.LoggerFromContext(ctx)

	if err := validateCreateRequest(req); err != nil {
		return nil, nil, err
	}

	service, err := s.serviceRepo.FindByID(ctx, req.ServiceID)
	if err != nil {
		return nil, nil, err
	}
	if !service.IsActive {
		return nil, nil, apperrors.NewServiceNotFoundError("service is no longer offered")
	}

	provider, err := s.providerRepo.FindByID(ctx, service.ProviderID)
	if err != nil {
		return nil, nil, err
	}
	loc, err := time.LoadLocation(provider.Timezone)
	if err != nil {
		return nil, nil, apperrors.NewInternalError("invalid provider timezone", err)
	}

	startAt, err := parseSlotStart(req.Date, req.Time, loc)
	if err != nil {
		return nil, nil, err
	}
	if err := rejectPastDate(req.Date, loc); err != nil {
		return nil, nil, err
	}

	notifications := entities.NotificationPrefs{Email: true}
	if req.Notifications != nil {
		notifications = *req.Notifications
	}

	booking := &entities.Booking{
		ID:              uuid.New().String(),
		ProviderID:      service.ProviderID,
		ServiceID:       service.ID,
		Status:          entities.BookingStatusConfirmed,
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerEmail:   strings.TrimSpace(req.CustomerEmail),
		CustomerPhone:   strings.TrimSpace(req.CustomerPhone),
		StartAt:         startAt,
		DurationMinutes: service.DurationMinutes,
		PriceCents:      service.BasePriceCents,
		DepositCents:    service.DepositAmountCents(),
		DepositRate:     service.DepositRate,
		DepositStatus:   entities.DepositStatusPending,
		Notifications:   notifications,
	}

	err = s.guard.WithSlotLock(ctx, service.ProviderID, startAt, func(ctx context.Context) error {
		if err := s.ensureSlotFree(ctx, service.ProviderID, service.ID, service.DurationMinutes, req.Date, req.Time, ""); err != nil {
			return err
		}

		code, err := bookingcode.GenerateUnique(ctx, func(ctx context.Context, candidate string) (bool, error) {
			exists, err := s.bookingRepo.CodeExists(ctx, candidate)
			return !exists, err
		})
		if err != nil {
			return err
		}
		booking.PublicCode = code

		return s.bookingRepo.Create(ctx, booking)
	})
	if err != nil {
		return nil, nil, err
	}

	observability.BookingLogger(ctx, booking.ID, booking.PublicCode).Info().
		Str("service_id", service.ID).
		Time("start_at", booking.StartAt).
		Msg("booking created")

	var intent *entities.PaymentIntentRef
	if booking.DepositCents > 0 && s.payments != nil {
		intent, err = s.payments.CreateDepositIntent(ctx, booking)
		if err != nil {
			logger.Warn().Err(err).
				Str("booking_id", booking.ID).
				Msg("deposit payment intent creation failed, booking kept without intent")
			intent = nil
		} else {
			if err := s.bookingRepo.UpdatePaymentIntent(ctx, booking.ID, intent.Provider, intent.IntentID); err != nil {
				logger.Warn().Err(err).
					Str("booking_id", booking.ID).
					Msg("failed to attach payment intent to booking")
			} else {
				booking.PaymentProvider = intent.Provider
				booking.PaymentIntentID = intent.IntentID
			}
		}
	}

	s.publishEvent(ctx, entities.BookingEventCreated, booking)

	return booking, intent, nil
}

// FindByCodeAndEmail authenticates a lookup by public code plus customer
// email. A malformed code is rejected before touching storage.
func (s *BookingService) FindByCodeAndEmail(ctx context.Context, code, email string) (*entities.Booking, error) {
	booking, err := s.authenticate(ctx, code, email)
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// Cancel moves a booking to its terminal state. Cancelling twice fails with
// an already-cancelled error rather than succeeding idempotently.
func (s *BookingService) Cancel(ctx context.Context, code, email string) (*entities.Booking, error) {
	booking, err := s.authenticate(ctx, code, email)
	if err != nil {
		return nil, err
	}
	if booking.IsCancelled() {
		return nil, apperrors.NewBookingAlreadyCancelledError("booking is already cancelled")
	}

	cancelled, err := s.bookingRepo.UpdateStatus(ctx, booking.ID, entities.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}

	observability.BookingLogger(ctx, cancelled.ID, cancelled.PublicCode).Info().
		Msg("booking cancelled")

	s.publishEvent(ctx, entities.BookingEventCancelled, cancelled)

	return cancelled, nil
}

// Reschedule moves a booking to a new slot. The availability re-check
// excludes the booking itself, so moving within its own interval (say
// 10:00 to 10:30 for a 60-minute booking) is allowed.
func (s *BookingService) Reschedule(ctx context.Context, code, email, newDate, newTime string) (*entities.Booking, error) {
	booking, err := s.authenticate(ctx, code, email)
	if err != nil {
		return nil, err
	}
	if booking.IsCancelled() {
		return nil, apperrors.NewBookingAlreadyCancelledError("cancelled bookings cannot be rescheduled")
	}

	provider, err := s.providerRepo.FindByID(ctx, booking.ProviderID)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(provider.Timezone)
	if err != nil {
		return nil, apperrors.NewInternalError("invalid provider timezone", err)
	}

	newStart, err := parseSlotStart(newDate, newTime, loc)
	if err != nil {
		return nil, err
	}
	if err := rejectPastDate(newDate, loc); err != nil {
		return nil, err
	}

	var moved *entities.Booking
	err = s.guard.WithSlotLock(ctx, booking.ProviderID, newStart, func(ctx context.Context) error {
		if err := s.ensureSlotFree(ctx, booking.ProviderID, booking.ServiceID, booking.DurationMinutes, newDate, newTime, booking.ID); err != nil {
			return err
		}

		moved, err = s.bookingRepo.Reschedule(ctx, booking.ID, newStart)
		return err
	})
	if err != nil {
		return nil, err
	}

	observability.BookingLogger(ctx, moved.ID, moved.PublicCode).Info().
		Time("start_at", moved.StartAt).
		Msg("booking rescheduled")

	s.publishEvent(ctx, entities.BookingEventRescheduled, moved)

	return moved, nil
}

// ensureSlotFree recomputes availability for the day and fails with a
// slot-unavailable error unless the requested time is an open, free slot.
func (s *BookingService) ensureSlotFree(ctx context.Context, providerID, serviceID string, durationMinutes int, date, slotTime, excludeBookingID string) error {
	availability, err := s.availability.ComputeAvailability(ctx, AvailabilityRequest{
		ProviderID:       providerID,
		ServiceID:        serviceID,
		DurationMinutes:  durationMinutes,
		Date:             date,
		ExcludeBookingID: excludeBookingID,
	})
	if err != nil {
		return err
	}
	if availability.Opening == nil {
		return apperrors.NewSlotUnavailableError("the provider is closed on the requested date")
	}

	for _, slot := range availability.Slots {
		if slot.Time != slotTime {
			continue
		}
		if !slot.Available {
			return apperrors.NewSlotUnavailableError("the requested slot is already taken")
		}
		return nil
	}
	return apperrors.NewSlotUnavailableError("the requested time is outside opening hours")
}

// authenticate resolves (code, email) to a booking or a booking-not-found
// error. Which of the two identifiers failed is never revealed.
func (s *BookingService) authenticate(ctx context.Context, code, email string) (*entities.Booking, error) {
	code = strings.TrimSpace(code)
	if !bookingcode.IsValid(code) {
		return nil, apperrors.NewInvalidBookingDataError("booking code format is invalid")
	}
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		return nil, apperrors.NewInvalidBookingDataError("email format is invalid")
	}

	booking, err := s.bookingRepo.FindByCodeAndEmail(ctx, code, email)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, apperrors.NewBookingNotFoundError("no booking matches this code and email")
	}
	return booking, nil
}

func (s *BookingService) publishEvent(ctx context.Context, eventType entities.BookingEventType, booking *entities.Booking) {
	if s.eventBus == nil {
		return
	}
	event := &entities.BookingEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		BookingID:  booking.ID,
		PublicCode: booking.PublicCode,
		ProviderID: booking.ProviderID,
		StartAt:    booking.StartAt,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.eventBus.Publish(ctx, entities.BookingEventsChannel, event); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("booking_id", booking.ID).
			Str("event_type", string(eventType)).
			Msg("failed to publish booking event")
	}
}

func validateCreateRequest(req CreateBookingRequest) error {
	if strings.TrimSpace(req.ServiceID) == "" {
		return apperrors.NewInvalidBookingDataError("serviceId is required")
	}
	if !datePattern.MatchString(req.Date) {
		return apperrors.NewInvalidBookingDataError("date must be in YYYY-MM-DD format")
	}
	if !timePattern.MatchString(req.Time) {
		return apperrors.NewInvalidBookingDataError("time must be in HH:MM format")
	}
	if strings.TrimSpace(req.CustomerName) == "" {
		return apperrors.NewInvalidBookingDataError("customer name is required")
	}
	if !emailPattern.MatchString(strings.TrimSpace(req.CustomerEmail)) {
		return apperrors.NewInvalidBookingDataError("customer email format is invalid")
	}
	return nil
}

// parseSlotStart combines a civil date and wall-clock time into an instant
// in the provider's timezone.
func parseSlotStart(date, slotTime string, loc *time.Location) (time.Time, error) {
	startAt, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+slotTime, loc)
	if err != nil {
		return time.Time{}, apperrors.NewInvalidBookingDataError("date or time is not a valid calendar value")
	}
	return startAt, nil
}

// rejectPastDate fails when the requested calendar day is before today in
// the provider's timezone. Same-day bookings stay allowed.
func rejectPastDate(date string, loc *time.Location) error {
	day, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return apperrors.NewInvalidBookingDataError("date must be in YYYY-MM-DD format")
	}
	now := time.Now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if day.Before(today) {
		return apperrors.NewInvalidBookingDataError("date cannot be in the past")
	}
	return nil
}
