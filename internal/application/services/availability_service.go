package services

import (
	"context"
	"fmt"
	"time"

	"github.com/artisanconnect/booking-backend/internal/domain/entities"
	"github.com/artisanconnect/booking-backend/internal/domain/repositories"
	"github.com/artisanconnect/booking-backend/internal/infrastructure/observability"
	apperrors "github.com/artisanconnect/booking-backend/pkg/errors"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// AvailabilityRequest describes one availability computation.
type AvailabilityRequest struct {
	ProviderID      string
	ServiceID       string
	DurationMinutes int
	// Date is the calendar day (YYYY-MM-DD) in the provider's timezone.
	Date string
	// ExcludeBookingID removes one booking from the blocker set, so a
	// reschedule's old interval never blocks its own new interval.
	ExcludeBookingID string
}

// AvailabilityService derives bookable slots from the provider's recurring
// opening hours and breaks, existing non-cancelled bookings, and imported
// external busy blocks.
//
// The computation is a pure read over persisted state: same inputs, same
// output, slots always in ascending time order.
type AvailabilityService struct {
	providerRepo repositories.ProviderRepository
	scheduleRepo repositories.ScheduleRepository
	bookingRepo  repositories.BookingRepository
	busyRepo     repositories.BusyBlockRepository
	stepMinutes  int
}

// NewAvailabilityService creates a new availability service
func NewAvailabilityService(
	providerRepo repositories.ProviderRepository,
	scheduleRepo repositories.ScheduleRepository,
	bookingRepo repositories.BookingRepository,
	busyRepo repositories.BusyBlockRepository,
	stepMinutes int,
) *AvailabilityService {
	if stepMinutes <= 0 {
		stepMinutes = 30
	}
	return &AvailabilityService{
		providerRepo: providerRepo,
		scheduleRepo: scheduleRepo,
		bookingRepo:  bookingRepo,
		busyRepo:     busyRepo,
		stepMinutes:  stepMinutes,
	}
}

// ComputeAvailability returns the opening window and slot schedule for a
// service and date. A day without an opening rule yields a nil window and
// no slots; that is a closed day, not an error.
func (s *AvailabilityService) ComputeAvailability(ctx context.Context, req AvailabilityRequest) (*entities.Availability, error) {
	if req.DurationMinutes <= 0 {
		return nil, apperrors.NewInvalidBookingDataError("duration must be positive")
	}

	provider, err := s.providerRepo.FindByID(ctx, req.ProviderID)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(provider.Timezone)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("invalid provider timezone %q", provider.Timezone), err)
	}

	day, err := time.ParseInLocation(DateLayout, req.Date, loc)
	if err != nil {
		return nil, apperrors.NewInvalidBookingDataError("date must be in YYYY-MM-DD format")
	}

	availability := &entities.Availability{
		ServiceID: req.ServiceID,
		Date:      req.Date,
		Slots:     []entities.Slot{},
	}

	opening, err := s.scheduleRepo.OpeningRuleByDay(ctx, req.ProviderID, int(day.Weekday()))
	if err != nil {
		return nil, err
	}
	if opening == nil {
		observability.LoggerFromContext(ctx).Debug().
			Str("provider_id", req.ProviderID).
			Str("date", req.Date).
			Msg("no opening rule for requested day")
		return availability, nil
	}
	availability.Opening = &entities.OpeningWindow{
		StartMinutes: opening.StartMinutes,
		EndMinutes:   opening.EndMinutes,
	}

	breaks, err := s.scheduleRepo.BreakRulesByDay(ctx, req.ProviderID, int(day.Weekday()))
	if err != nil {
		return nil, err
	}

	dayStart := day
	dayEnd := day.AddDate(0, 0, 1)

	bookings, err := s.bookingRepo.ListActiveByProviderAndRange(ctx, req.ProviderID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	blocks, err := s.busyRepo.ListExternalByProviderAndRange(ctx, req.ProviderID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	for minutes := opening.StartMinutes; minutes+req.DurationMinutes <= opening.EndMinutes; minutes += s.stepMinutes {
		slotStart := dayStart.Add(time.Duration(minutes) * time.Minute)
		slotEnd := slotStart.Add(time.Duration(req.DurationMinutes) * time.Minute)

		slot := entities.Slot{
			Time:    entities.MinutesToClock(minutes),
			StartAt: slotStart,
			EndAt:   slotEnd,
		}

		for _, br := range breaks {
			breakStart := dayStart.Add(time.Duration(br.StartMinutes) * time.Minute)
			breakEnd := dayStart.Add(time.Duration(br.EndMinutes) * time.Minute)
			if entities.IntervalsOverlap(slotStart, slotEnd, breakStart, breakEnd) {
				slot.BlockedBy = append(slot.BlockedBy, entities.SlotBlocker{
					Type:    entities.SlotBlockedByBreak,
					Summary: "Break",
				})
			}
		}

		for _, booking := range bookings {
			if req.ExcludeBookingID != "" && booking.ID == req.ExcludeBookingID {
				continue
			}
			if entities.IntervalsOverlap(slotStart, slotEnd, booking.StartAt, booking.EndAt()) {
				slot.BlockedBy = append(slot.BlockedBy, entities.SlotBlocker{
					Type:        entities.SlotBlockedByBooking,
					BookingCode: booking.PublicCode,
					Summary:     fmt.Sprintf("Booking - %s", booking.CustomerName),
				})
			}
		}

		for _, block := range blocks {
			if entities.IntervalsOverlap(slotStart, slotEnd, block.StartAt, block.EndAt) {
				summary := block.Summary
				if summary == "" {
					summary = "External calendar event"
				}
				slot.BlockedBy = append(slot.BlockedBy, entities.SlotBlocker{
					Type:       entities.SlotBlockedByCalendar,
					CalendarID: block.CalendarID,
					Summary:    summary,
				})
			}
		}

		slot.Available = len(slot.BlockedBy) == 0
		availability.Slots = append(availability.Slots, slot)
	}

	return availability, nil
}
