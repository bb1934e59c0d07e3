package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/artisanconnect/booking-backend/internal/application/services"
	"github.com/artisanconnect/booking-backend/internal/domain/entities"
	apperrors "github.com/artisanconnect/booking-backend/pkg/errors"
)

const (
	testProviderID = "prov-1"
	testServiceID  = "svc-1"
	testDate       = "2030-06-10"
	testTimezone   = "Europe/Paris"
)

type availabilityFixture struct {
	providerRepo *MockProviderRepository
	scheduleRepo *MockScheduleRepository
	bookingRepo  *MockBookingRepository
	busyRepo     *MockBusyBlockRepository
	service      *services.AvailabilityService
	loc          *time.Location
}

func newAvailabilityFixture(t *testing.T) *availabilityFixture {
	t.Helper()

	loc, err := time.LoadLocation(testTimezone)
	require.NoError(t, err)

	f := &availabilityFixture{
		providerRepo: new(MockProviderRepository),
		scheduleRepo: new(MockScheduleRepository),
		bookingRepo:  new(MockBookingRepository),
		busyRepo:     new(MockBusyBlockRepository),
		loc:          loc,
	}
	f.service = services.NewAvailabilityService(f.providerRepo, f.scheduleRepo, f.bookingRepo, f.busyRepo, 30)

	f.providerRepo.On("FindByID", mock.Anything, testProviderID).Return(&entities.Provider{
		ID:       testProviderID,
		Name:     "Atelier Moreau",
		Timezone: testTimezone,
		IsActive: true,
	}, nil).Maybe()

	return f
}

// at builds an instant on the test date at minutes from midnight, provider time.
func (f *availabilityFixture) at(minutes int) time.Time {
	day, _ := time.ParseInLocation(services.DateLayout, testDate, f.loc)
	return day.Add(time.Duration(minutes) * time.Minute)
}

// openWeekday wires a 08:30-18:00 opening with a 12:00-13:00 lunch break.
func (f *availabilityFixture) openWeekday() {
	f.scheduleRepo.On("OpeningRuleByDay", mock.Anything, testProviderID, mock.Anything).
		Return(&entities.OpeningRule{ProviderID: testProviderID, StartMinutes: 510, EndMinutes: 1080}, nil)
	f.scheduleRepo.On("BreakRulesByDay", mock.Anything, testProviderID, mock.Anything).
		Return([]*entities.BreakRule{
			{ProviderID: testProviderID, StartMinutes: 720, EndMinutes: 780},
		}, nil)
}

func (f *availabilityFixture) noBookings() {
	f.bookingRepo.On("ListActiveByProviderAndRange", mock.Anything, testProviderID, mock.Anything, mock.Anything).
		Return([]*entities.Booking{}, nil)
}

func (f *availabilityFixture) noBusyBlocks() {
	f.busyRepo.On("ListExternalByProviderAndRange", mock.Anything, testProviderID, mock.Anything, mock.Anything).
		Return([]*entities.BusyBlock{}, nil)
}

func slotAt(t *testing.T, availability *entities.Availability, clock string) entities.Slot {
	t.Helper()
	for _, slot := range availability.Slots {
		if slot.Time == clock {
			return slot
		}
	}
	t.Fatalf("no slot at %s", clock)
	return entities.Slot{}
}

func hasSlot(availability *entities.Availability, clock string) bool {
	for _, slot := range availability.Slots {
		if slot.Time == clock {
			return true
		}
	}
	return false
}

func TestAvailabilityService_ComputeAvailability(t *testing.T) {
	t.Run("generates 30-minute slots with break blocked", func(t *testing.T) {
		f := newAvailabilityFixture(t)
		f.openWeekday()
		f.noBookings()
		f.noBusyBlocks()

		availability, err := f.service.ComputeAvailability(context.Background(), services.AvailabilityRequest{
			ProviderID:      testProviderID,
			ServiceID:       testServiceID,
			DurationMinutes: 30,
			Date:            testDate,
		})

		require.NoError(t, err)
		require.NotNil(t, availability.Opening)
		assert.Equal(t, 510, availability.Opening.StartMinutes)
		assert.Equal(t, 1080, availability.Opening.EndMinutes)

		// 08:30 through 17:30 in 30-minute steps
		require.Len(t, availability.Slots, 19)
		assert.Equal(t, "08:30", availability.Slots[0].Time)
		assert.Equal(t, "17:30", availability.Slots[len(availability.Slots)-1].Time)

		// Lunch break blocks 12:00 and 12:30 but not the neighbours
		for _, clock := range []string{"12:00", "12:30"} {
			slot := slotAt(t, availability, clock)
			assert.False(t, slot.Available, clock)
			require.Len(t, slot.BlockedBy, 1)
			assert.Equal(t, entities.SlotBlockedByBreak, slot.BlockedBy[0].Type)
		}
		assert.True(t, slotAt(t, availability, "11:30").Available)
		assert.True(t, slotAt(t, availability, "13:00").Available)
	})

	t.Run("slots are in ascending order", func(t *testing.T) {
		f := newAvailabilityFixture(t)
		f.openWeekday()
		f.noBookings()
		f.noBusyBlocks()

		availability, err := f.service.ComputeAvailability(context.Background(), services.AvailabilityRequest{
			ProviderID:      testProviderID,
			ServiceID:       testServiceID,
			DurationMinutes: 30,
			Date:            testDate,
		})

		require.NoError(t, err)
		for i := 1; i < len(availability.Slots); i++ {
			assert.True(t, availability.Slots[i-1].StartAt.Before(availability.Slots[i].StartAt))
		}
	})

	t.Run("trailing slots that cannot fit the duration are omitted", func(t *testing.T) {
		f := newAvailabilityFixture(t)
		f.openWeekday()
		f.noBookings()
		f.noBusyBlocks()

		availability, err := f.service.ComputeAvailability(context.Background(), services.AvailabilityRequest{
			ProviderID:      testProviderID,
			ServiceID:       testServiceID,
			DurationMinutes: 90,
			Date:            testDate,
		})

		require.NoError(t, err)
		// 16:30 + 90 minutes hits closing exactly; 17:00 would run past it
		assert.True(t, hasSlot(availability, "16:30"))
		assert.False(t, hasSlot(availability, "17:00"))
		assert.False(t, hasSlot(availability, "17:30"))

		// A 90-minute slot starting 11:00 runs into the 12:00 break
		assert.False(t, slotAt(t, availability, "11:00").Available)
		assert.True(t, slotAt(t, availability, "09:30").Available)
	})

	t.Run("existing booking blocks every slot it overlaps", func(t *testing.T) {
		f := newAvailabilityFixture(t)
		f.openWeekday()
		f.noBusyBlocks()

		// 45-minute booking from 10:00 to 10:45
		f.bookingRepo.On("ListActiveByProviderAndRange", mock.Anything, testProviderID, mock.Anything, mock.Anything).
			Return([]*entities.Booking{
				{
					ID:              "bk-1",
					PublicCode:      "AC-ABC234",
					CustomerName:    "Claire Fontaine",
					StartAt:         f.at(600),
					DurationMinutes: 45,
				},
			}, nil)

		availability, err := f.service.ComputeAvailability(context.Background(), services.AvailabilityRequest{
			ProviderID:      testProviderID,
			ServiceID:       testServiceID,
			DurationMinutes: 30,
			Date:            testDate,
		})

		require.NoError(t, err)
		for _, clock := range []string{"10:00", "10:30"} {
			slot := slotAt(t, availability, clock)
			assert.False(t, slot.Available, clock)
			require.Len(t, slot.BlockedBy, 1)
			assert.Equal(t, entities.SlotBlockedByBooking, slot.BlockedBy[0].Type)
			assert.Equal(t, "AC-ABC234", slot.BlockedBy[0].BookingCode)
		}
		// The booking ends at 10:45, so 11:00 is free; 09:30 ends as it starts
		assert.True(t, slotAt(t, availability, "09:30").Available)
		assert.True(t, slotAt(t, availability, "11:00").Available)
	})

	t.Run("excluded booking does not block its own slots", func(t *testing.T) {
		f := newAvailabilityFixture(t)
		f.openWeekday()
		f.noBusyBlocks()

		f.bookingRepo.On("ListActiveByProviderAndRange", mock.Anything, testProviderID, mock.Anything, mock.Anything).
			Return([]*entities.Booking{
				{ID: "bk-1", PublicCode: "AC-ABC234", StartAt: f.at(600), DurationMinutes: 60},
			}, nil)

		availability, err := f.service.ComputeAvailability(context.Background(), services.AvailabilityRequest{
			ProviderID:       testProviderID,
			ServiceID:        testServiceID,
			DurationMinutes:  30,
			Date:             testDate,
			ExcludeBookingID: "bk-1",
		})

		require.NoError(t, err)
		assert.True(t, slotAt(t, availability, "10:00").Available)
		assert.True(t, slotAt(t, availability, "10:30").Available)
	})

	t.Run("external busy block blocks slots with calendar blocker", func(t *testing.T) {
		f := newAvailabilityFixture(t)
		f.openWeekday()
		f.noBookings()

		f.busyRepo.On("ListExternalByProviderAndRange", mock.Anything, testProviderID, mock.Anything, mock.Anything).
			Return([]*entities.BusyBlock{
				{
					ID:         "blk-1",
					CalendarID: "google-primary",
					Source:     entities.BusyBlockSourceExternal,
					Summary:    "Supplier visit",
					StartAt:    f.at(840),
					EndAt:      f.at(900),
				},
			}, nil)

		availability, err := f.service.ComputeAvailability(context.Background(), services.AvailabilityRequest{
			ProviderID:      testProviderID,
			ServiceID:       testServiceID,
			DurationMinutes: 30,
			Date:            testDate,
		})

		require.NoError(t, err)
		slot := slotAt(t, availability, "14:00")
		assert.False(t, slot.Available)
		require.Len(t, slot.BlockedBy, 1)
		assert.Equal(t, entities.SlotBlockedByCalendar, slot.BlockedBy[0].Type)
		assert.Equal(t, "google-primary", slot.BlockedBy[0].CalendarID)
		assert.Equal(t, "Supplier visit", slot.BlockedBy[0].Summary)
		assert.True(t, slotAt(t, availability, "15:00").Available)
	})

	t.Run("closed day yields no opening and no slots", func(t *testing.T) {
		f := newAvailabilityFixture(t)
		f.scheduleRepo.On("OpeningRuleByDay", mock.Anything, testProviderID, mock.Anything).
			Return(nil, nil)

		availability, err := f.service.ComputeAvailability(context.Background(), services.AvailabilityRequest{
			ProviderID:      testProviderID,
			ServiceID:       testServiceID,
			DurationMinutes: 30,
			Date:            testDate,
		})

		require.NoError(t, err)
		assert.Nil(t, availability.Opening)
		assert.Empty(t, availability.Slots)
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		f := newAvailabilityFixture(t)

		_, err := f.service.ComputeAvailability(context.Background(), services.AvailabilityRequest{
			ProviderID:      testProviderID,
			ServiceID:       testServiceID,
			DurationMinutes: 30,
			Date:            "10-06-2030",
		})

		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.KindInvalidBookingData))
	})

	t.Run("rejects non-positive duration", func(t *testing.T) {
		f := newAvailabilityFixture(t)

		_, err := f.service.ComputeAvailability(context.Background(), services.AvailabilityRequest{
			ProviderID:      testProviderID,
			ServiceID:       testServiceID,
			DurationMinutes: 0,
			Date:            testDate,
		})

		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.KindInvalidBookingData))
	})
}
