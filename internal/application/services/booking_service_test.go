package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/artisanconnect/booking-backend/internal/adapters/locks"
	"github.com/artisanconnect/booking-backend/internal/application/services"
	"github.com/artisanconnect/booking-backend/internal/domain/entities"
	"github.com/artisanconnect/booking-backend/pkg/bookingcode"
	apperrors "github.com/artisanconnect/booking-backend/pkg/errors"
)

type bookingFixture struct {
	serviceRepo  *MockServiceRepository
	providerRepo *MockProviderRepository
	bookingRepo  *MockBookingRepository
	scheduleRepo *MockScheduleRepository
	busyRepo     *MockBusyBlockRepository
	payments     *MockPaymentProvider
	service      *services.BookingService
	loc          *time.Location
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()

	loc, err := time.LoadLocation(testTimezone)
	require.NoError(t, err)

	f := &bookingFixture{
		serviceRepo:  new(MockServiceRepository),
		providerRepo: new(MockProviderRepository),
		bookingRepo:  new(MockBookingRepository),
		scheduleRepo: new(MockScheduleRepository),
		busyRepo:     new(MockBusyBlockRepository),
		payments:     new(MockPaymentProvider),
		loc:          loc,
	}

	availability := services.NewAvailabilityService(f.providerRepo, f.scheduleRepo, f.bookingRepo, f.busyRepo, 30)
	f.service = services.NewBookingService(
		f.serviceRepo,
		f.providerRepo,
		f.bookingRepo,
		availability,
		locks.NewMemoryGuard(),
		f.payments,
		nil,
	)

	f.providerRepo.On("FindByID", mock.Anything, testProviderID).Return(&entities.Provider{
		ID:       testProviderID,
		Timezone: testTimezone,
		IsActive: true,
	}, nil).Maybe()

	return f
}

func (f *bookingFixture) withService() *entities.Service {
	svc := &entities.Service{
		ID:              testServiceID,
		ProviderID:      testProviderID,
		Name:            "Workshop session",
		DurationMinutes: 60,
		BasePriceCents:  10000,
		DepositRate:     0.2,
		IsActive:        true,
	}
	f.serviceRepo.On("FindByID", mock.Anything, testServiceID).Return(svc, nil)
	return svc
}

func (f *bookingFixture) withOpenCalendar() {
	f.scheduleRepo.On("OpeningRuleByDay", mock.Anything, testProviderID, mock.Anything).
		Return(&entities.OpeningRule{ProviderID: testProviderID, StartMinutes: 510, EndMinutes: 1080}, nil)
	f.scheduleRepo.On("BreakRulesByDay", mock.Anything, testProviderID, mock.Anything).
		Return([]*entities.BreakRule{}, nil)
	f.busyRepo.On("ListExternalByProviderAndRange", mock.Anything, testProviderID, mock.Anything, mock.Anything).
		Return([]*entities.BusyBlock{}, nil)
}

func validCreateRequest() services.CreateBookingRequest {
	return services.CreateBookingRequest{
		ServiceID:     testServiceID,
		Date:          testDate,
		Time:          "10:00",
		CustomerName:  "Claire Fontaine",
		CustomerEmail: "claire@example.com",
		CustomerPhone: "+33 6 00 00 00 00",
	}
}

func TestBookingService_Create(t *testing.T) {
	t.Run("creates a confirmed booking with deposit and payment intent", func(t *testing.T) {
		f := newBookingFixture(t)
		f.withService()
		f.withOpenCalendar()
		f.bookingRepo.On("ListActiveByProviderAndRange", mock.Anything, testProviderID, mock.Anything, mock.Anything).
			Return([]*entities.Booking{}, nil)
		f.bookingRepo.On("CodeExists", mock.Anything, mock.Anything).Return(false, nil)
		f.bookingRepo.On("Create", mock.Anything, mock.MatchedBy(func(b *entities.Booking) bool {
			return b.Status == entities.BookingStatusConfirmed &&
				b.DepositStatus == entities.DepositStatusPending &&
				b.DepositCents == 2000 &&
				b.DurationMinutes == 60 &&
				bookingcode.IsValid(b.PublicCode)
		})).Return(nil)
		f.payments.On("CreateDepositIntent", mock.Anything, mock.Anything).
			Return(&entities.PaymentIntentRef{Provider: "stripe", IntentID: "pi_123", ClientSecret: "pi_123_secret"}, nil)
		f.bookingRepo.On("UpdatePaymentIntent", mock.Anything, mock.Anything, "stripe", "pi_123").Return(nil)

		booking, intent, err := f.service.Create(context.Background(), validCreateRequest())

		require.NoError(t, err)
		require.NotNil(t, booking)
		assert.Equal(t, entities.BookingStatusConfirmed, booking.Status)
		assert.Equal(t, int64(2000), booking.DepositCents)
		assert.Equal(t, "pi_123", booking.PaymentIntentID)
		require.NotNil(t, intent)
		assert.Equal(t, "pi_123_secret", intent.ClientSecret)

		// Slot start is 10:00 provider time
		expected := time.Date(2030, 6, 10, 10, 0, 0, 0, f.loc)
		assert.True(t, booking.StartAt.Equal(expected))

		f.bookingRepo.AssertExpectations(t)
		f.payments.AssertExpectations(t)
	})

	t.Run("keeps booking when payment intent creation fails", func(t *testing.T) {
		f := newBookingFixture(t)
		f.withService()
		f.withOpenCalendar()
		f.bookingRepo.On("ListActiveByProviderAndRange", mock.Anything, testProviderID, mock.Anything, mock.Anything).
			Return([]*entities.Booking{}, nil)
		f.bookingRepo.On("CodeExists", mock.Anything, mock.Anything).Return(false, nil)
		f.bookingRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.payments.On("CreateDepositIntent", mock.Anything, mock.Anything).
			Return(nil, errors.New("stripe is down"))

		booking, intent, err := f.service.Create(context.Background(), validCreateRequest())

		require.NoError(t, err)
		require.NotNil(t, booking)
		assert.Nil(t, intent)
		assert.Empty(t, booking.PaymentIntentID)
		f.bookingRepo.AssertNotCalled(t, "UpdatePaymentIntent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects a slot already taken", func(t *testing.T) {
		f := newBookingFixture(t)
		f.withService()
		f.withOpenCalendar()
		f.bookingRepo.On("ListActiveByProviderAndRange", mock.Anything, testProviderID, mock.Anything, mock.Anything).
			Return([]*entities.Booking{
				{ID: "bk-1", PublicCode: "AC-ABC234", StartAt: time.Date(2030, 6, 10, 10, 0, 0, 0, f.loc), DurationMinutes: 45},
			}, nil)

		_, _, err := f.service.Create(context.Background(), validCreateRequest())

		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.KindSlotUnavailable))
		f.bookingRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects a closed day", func(t *testing.T) {
		f := newBookingFixture(t)
		f.withService()
		f.scheduleRepo.On("OpeningRuleByDay", mock.Anything, testProviderID, mock.Anything).
			Return(nil, nil)

		_, _, err := f.service.Create(context.Background(), validCreateRequest())

		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.KindSlotUnavailable))
	})

	t.Run("rejects a time outside opening hours", func(t *testing.T) {
		f := newBookingFixture(t)
		f.withService()
		f.withOpenCalendar()
		f.bookingRepo.On("ListActiveByProviderAndRange", mock.Anything, testProviderID, mock.Anything, mock.Anything).
			Return([]*entities.Booking{}, nil)

		req := validCreateRequest()
		req.Time = "07:00"
		_, _, err := f.service.Create(context.Background(), req)

		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.KindSlotUnavailable))
	})

	t.Run("rejects an inactive service", func(t *testing.T) {
		f := newBookingFixture(t)
		f.serviceRepo.On("FindByID", mock.Anything, testServiceID).Return(&entities.Service{
			ID:         testServiceID,
			ProviderID: testProviderID,
			IsActive:   false,
		}, nil)

		_, _, err := f.service.Create(context.Background(), validCreateRequest())

		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.KindServiceNotFound))
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		cases := map[string]func(*services.CreateBookingRequest){
			"blank name":      func(r *services.CreateBookingRequest) { r.CustomerName = "   " },
			"bad email":       func(r *services.CreateBookingRequest) { r.CustomerEmail = "not-an-email" },
			"bad date format": func(r *services.CreateBookingRequest) { r.Date = "10/06/2030" },
			"bad time format": func(r *services.CreateBookingRequest) { r.Time = "9:00" },
			"past date":       func(r *services.CreateBookingRequest) { r.Date = "2020-01-01" },
		}

		for name, mutate := range cases {
			t.Run(name, func(t *testing.T) {
				f := newBookingFixture(t)
				f.withService()

				req := validCreateRequest()
				mutate(&req)
				_, _, err := f.service.Create(context.Background(), req)

				require.Error(t, err)
				assert.True(t, apperrors.Is(err, apperrors.KindInvalidBookingData))
				f.bookingRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			})
		}
	})
}

func TestBookingService_Cancel(t *testing.T) {
	existing := func(status entities.BookingStatus) *entities.Booking {
		return &entities.Booking{
			ID:              "bk-1",
			PublicCode:      "AC-ABC234",
			ProviderID:      testProviderID,
			ServiceID:       testServiceID,
			Status:          status,
			CustomerEmail:   "claire@example.com",
			StartAt:         time.Date(2030, 6, 10, 10, 0, 0, 0, time.UTC),
			DurationMinutes: 60,
		}
	}

	t.Run("cancels a confirmed booking", func(t *testing.T) {
		f := newBookingFixture(t)
		f.bookingRepo.On("FindByCodeAndEmail", mock.Anything, "AC-ABC234", "claire@example.com").
			Return(existing(entities.BookingStatusConfirmed), nil)
		f.bookingRepo.On("UpdateStatus", mock.Anything, "bk-1", entities.BookingStatusCancelled).
			Return(existing(entities.BookingStatusCancelled), nil)

		booking, err := f.service.Cancel(context.Background(), "AC-ABC234", "claire@example.com")

		require.NoError(t, err)
		assert.Equal(t, entities.BookingStatusCancelled, booking.Status)
		f.bookingRepo.AssertExpectations(t)
	})

	t.Run("cancelling twice fails", func(t *testing.T) {
		f := newBookingFixture(t)
		f.bookingRepo.On("FindByCodeAndEmail", mock.Anything, "AC-ABC234", "claire@example.com").
			Return(existing(entities.BookingStatusCancelled), nil)

		_, err := f.service.Cancel(context.Background(), "AC-ABC234", "claire@example.com")

		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.KindBookingAlreadyCancelled))
		f.bookingRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown code and email pair yields not found", func(t *testing.T) {
		f := newBookingFixture(t)
		f.bookingRepo.On("FindByCodeAndEmail", mock.Anything, "AC-ABC234", "other@example.com").
			Return(nil, nil)

		_, err := f.service.Cancel(context.Background(), "AC-ABC234", "other@example.com")

		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.KindBookingNotFound))
	})

	t.Run("malformed code is rejected before storage", func(t *testing.T) {
		f := newBookingFixture(t)

		_, err := f.service.Cancel(context.Background(), "AC-101010", "claire@example.com")

		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.KindInvalidBookingData))
		f.bookingRepo.AssertNotCalled(t, "FindByCodeAndEmail", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestBookingService_Reschedule(t *testing.T) {
	existing := func(loc *time.Location) *entities.Booking {
		return &entities.Booking{
			ID:              "bk-1",
			PublicCode:      "AC-ABC234",
			ProviderID:      testProviderID,
			ServiceID:       testServiceID,
			Status:          entities.BookingStatusConfirmed,
			CustomerEmail:   "claire@example.com",
			StartAt:         time.Date(2030, 6, 10, 10, 0, 0, 0, loc),
			DurationMinutes: 60,
		}
	}

	t.Run("moves the booking to a free slot", func(t *testing.T) {
		f := newBookingFixture(t)
		f.withOpenCalendar()
		booking := existing(f.loc)
		f.bookingRepo.On("FindByCodeAndEmail", mock.Anything, "AC-ABC234", "claire@example.com").
			Return(booking, nil)
		f.bookingRepo.On("ListActiveByProviderAndRange", mock.Anything, testProviderID, mock.Anything, mock.Anything).
			Return([]*entities.Booking{booking}, nil)

		newStart := time.Date(2030, 6, 10, 14, 0, 0, 0, f.loc)
		moved := existing(f.loc)
		moved.Status = entities.BookingStatusRescheduled
		moved.StartAt = newStart
		f.bookingRepo.On("Reschedule", mock.Anything, "bk-1", mock.MatchedBy(func(ts time.Time) bool {
			return ts.Equal(newStart)
		})).Return(moved, nil)

		result, err := f.service.Reschedule(context.Background(), "AC-ABC234", "claire@example.com", testDate, "14:00")

		require.NoError(t, err)
		assert.Equal(t, entities.BookingStatusRescheduled, result.Status)
		assert.True(t, result.StartAt.Equal(newStart))
		f.bookingRepo.AssertExpectations(t)
	})

	t.Run("own interval does not block the move", func(t *testing.T) {
		f := newBookingFixture(t)
		f.withOpenCalendar()
		booking := existing(f.loc)
		f.bookingRepo.On("FindByCodeAndEmail", mock.Anything, "AC-ABC234", "claire@example.com").
			Return(booking, nil)
		// Only blocker on the day is the booking being moved
		f.bookingRepo.On("ListActiveByProviderAndRange", mock.Anything, testProviderID, mock.Anything, mock.Anything).
			Return([]*entities.Booking{booking}, nil)

		newStart := time.Date(2030, 6, 10, 10, 30, 0, 0, f.loc)
		moved := existing(f.loc)
		moved.Status = entities.BookingStatusRescheduled
		moved.StartAt = newStart
		f.bookingRepo.On("Reschedule", mock.Anything, "bk-1", mock.Anything).Return(moved, nil)

		// 10:30 overlaps the booking's own 10:00-11:00 interval
		_, err := f.service.Reschedule(context.Background(), "AC-ABC234", "claire@example.com", testDate, "10:30")

		require.NoError(t, err)
	})

	t.Run("cancelled bookings cannot be rescheduled", func(t *testing.T) {
		f := newBookingFixture(t)
		booking := existing(f.loc)
		booking.Status = entities.BookingStatusCancelled
		f.bookingRepo.On("FindByCodeAndEmail", mock.Anything, "AC-ABC234", "claire@example.com").
			Return(booking, nil)

		_, err := f.service.Reschedule(context.Background(), "AC-ABC234", "claire@example.com", testDate, "14:00")

		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.KindBookingAlreadyCancelled))
		f.bookingRepo.AssertNotCalled(t, "Reschedule", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("occupied target slot is rejected", func(t *testing.T) {
		f := newBookingFixture(t)
		f.withOpenCalendar()
		booking := existing(f.loc)
		other := existing(f.loc)
		other.ID = "bk-2"
		other.PublicCode = "AC-XYZ789"
		other.StartAt = time.Date(2030, 6, 10, 14, 0, 0, 0, f.loc)
		f.bookingRepo.On("FindByCodeAndEmail", mock.Anything, "AC-ABC234", "claire@example.com").
			Return(booking, nil)
		f.bookingRepo.On("ListActiveByProviderAndRange", mock.Anything, testProviderID, mock.Anything, mock.Anything).
			Return([]*entities.Booking{booking, other}, nil)

		_, err := f.service.Reschedule(context.Background(), "AC-ABC234", "claire@example.com", testDate, "14:00")

		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.KindSlotUnavailable))
	})
}

// memoryBookingRepo is a minimal thread-safe repository used by the
// concurrency test, where availability must observe writes immediately.
type memoryBookingRepo struct {
	mu       sync.Mutex
	bookings []*entities.Booking
}

func (r *memoryBookingRepo) Create(ctx context.Context, booking *entities.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *booking
	r.bookings = append(r.bookings, &copied)
	return nil
}

func (r *memoryBookingRepo) FindByCode(ctx context.Context, code string) (*entities.Booking, error) {
	return nil, nil
}

func (r *memoryBookingRepo) FindByCodeAndEmail(ctx context.Context, code, email string) (*entities.Booking, error) {
	return nil, nil
}

func (r *memoryBookingRepo) FindByPaymentIntentID(ctx context.Context, intentID string) (*entities.Booking, error) {
	return nil, nil
}

func (r *memoryBookingRepo) ListActiveByProviderAndRange(ctx context.Context, providerID string, from, to time.Time) ([]*entities.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Booking
	for _, b := range r.bookings {
		if b.ProviderID == providerID && b.Status != entities.BookingStatusCancelled &&
			b.StartAt.Before(to) && b.EndAt().After(from) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memoryBookingRepo) UpdateStatus(ctx context.Context, id string, status entities.BookingStatus) (*entities.Booking, error) {
	return nil, nil
}

func (r *memoryBookingRepo) Reschedule(ctx context.Context, id string, newStart time.Time) (*entities.Booking, error) {
	return nil, nil
}

func (r *memoryBookingRepo) UpdatePaymentIntent(ctx context.Context, id, provider, intentID string) error {
	return nil
}

func (r *memoryBookingRepo) UpdateDepositStatus(ctx context.Context, intentID string, status entities.DepositStatus) (*entities.Booking, error) {
	return nil, nil
}

func (r *memoryBookingRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.PublicCode == code {
			return true, nil
		}
	}
	return false, nil
}

func TestBookingService_ConcurrentCreates(t *testing.T) {
	serviceRepo := new(MockServiceRepository)
	providerRepo := new(MockProviderRepository)
	scheduleRepo := new(MockScheduleRepository)
	busyRepo := new(MockBusyBlockRepository)
	repo := &memoryBookingRepo{}

	serviceRepo.On("FindByID", mock.Anything, testServiceID).Return(&entities.Service{
		ID:              testServiceID,
		ProviderID:      testProviderID,
		DurationMinutes: 60,
		BasePriceCents:  10000,
		DepositRate:     0.2,
		IsActive:        true,
	}, nil)
	providerRepo.On("FindByID", mock.Anything, testProviderID).Return(&entities.Provider{
		ID:       testProviderID,
		Timezone: testTimezone,
		IsActive: true,
	}, nil)
	scheduleRepo.On("OpeningRuleByDay", mock.Anything, testProviderID, mock.Anything).
		Return(&entities.OpeningRule{ProviderID: testProviderID, StartMinutes: 510, EndMinutes: 1080}, nil)
	scheduleRepo.On("BreakRulesByDay", mock.Anything, testProviderID, mock.Anything).
		Return([]*entities.BreakRule{}, nil)
	busyRepo.On("ListExternalByProviderAndRange", mock.Anything, testProviderID, mock.Anything, mock.Anything).
		Return([]*entities.BusyBlock{}, nil)

	availability := services.NewAvailabilityService(providerRepo, scheduleRepo, repo, busyRepo, 30)
	service := services.NewBookingService(serviceRepo, providerRepo, repo, availability, locks.NewMemoryGuard(), nil, nil)

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, _, errs[n] = service.Create(context.Background(), validCreateRequest())
		}(i)
	}
	wg.Wait()

	var succeeded, conflicted int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case apperrors.Is(err, apperrors.KindSlotUnavailable):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded, "exactly one create may win the slot")
	assert.Equal(t, attempts-1, conflicted)
	assert.Len(t, repo.bookings, 1)
}
