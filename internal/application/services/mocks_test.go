package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/artisanconnect/booking-backend/internal/domain/entities"
)

// Mocks

type MockServiceRepository struct {
	mock.Mock
}

func (m *MockServiceRepository) FindByID(ctx context.Context, id string) (*entities.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Service), args.Error(1)
}

func (m *MockServiceRepository) ListActive(ctx context.Context) ([]*entities.Service, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Service), args.Error(1)
}

type MockProviderRepository struct {
	mock.Mock
}

func (m *MockProviderRepository) FindByID(ctx context.Context, id string) (*entities.Provider, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Provider), args.Error(1)
}

type MockScheduleRepository struct {
	mock.Mock
}

func (m *MockScheduleRepository) OpeningRuleByDay(ctx context.Context, providerID string, dayOfWeek int) (*entities.OpeningRule, error) {
	args := m.Called(ctx, providerID, dayOfWeek)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.OpeningRule), args.Error(1)
}

func (m *MockScheduleRepository) BreakRulesByDay(ctx context.Context, providerID string, dayOfWeek int) ([]*entities.BreakRule, error) {
	args := m.Called(ctx, providerID, dayOfWeek)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.BreakRule), args.Error(1)
}

type MockBusyBlockRepository struct {
	mock.Mock
}

func (m *MockBusyBlockRepository) ListExternalByProviderAndRange(ctx context.Context, providerID string, from, to time.Time) ([]*entities.BusyBlock, error) {
	args := m.Called(ctx, providerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.BusyBlock), args.Error(1)
}

func (m *MockBusyBlockRepository) DeleteByProviderAndCalendar(ctx context.Context, providerID, calendarID string, source entities.BusyBlockSource) error {
	args := m.Called(ctx, providerID, calendarID, source)
	return args.Error(0)
}

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *entities.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) FindByCode(ctx context.Context, code string) (*entities.Booking, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Booking), args.Error(1)
}

func (m *MockBookingRepository) FindByCodeAndEmail(ctx context.Context, code, email string) (*entities.Booking, error) {
	args := m.Called(ctx, code, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Booking), args.Error(1)
}

func (m *MockBookingRepository) FindByPaymentIntentID(ctx context.Context, intentID string) (*entities.Booking, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListActiveByProviderAndRange(ctx context.Context, providerID string, from, to time.Time) ([]*entities.Booking, error) {
	args := m.Called(ctx, providerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Booking), args.Error(1)
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, id string, status entities.BookingStatus) (*entities.Booking, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Booking), args.Error(1)
}

func (m *MockBookingRepository) Reschedule(ctx context.Context, id string, newStart time.Time) (*entities.Booking, error) {
	args := m.Called(ctx, id, newStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Booking), args.Error(1)
}

func (m *MockBookingRepository) UpdatePaymentIntent(ctx context.Context, id, provider, intentID string) error {
	args := m.Called(ctx, id, provider, intentID)
	return args.Error(0)
}

func (m *MockBookingRepository) UpdateDepositStatus(ctx context.Context, intentID string, status entities.DepositStatus) (*entities.Booking, error) {
	args := m.Called(ctx, intentID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Booking), args.Error(1)
}

func (m *MockBookingRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

type MockPaymentProvider struct {
	mock.Mock
}

func (m *MockPaymentProvider) Name() string {
	return "mock"
}

func (m *MockPaymentProvider) CreateDepositIntent(ctx context.Context, booking *entities.Booking) (*entities.PaymentIntentRef, error) {
	args := m.Called(ctx, booking)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PaymentIntentRef), args.Error(1)
}

type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.BookingEvent) error {
	args := m.Called(ctx, channel, event)
	return args.Error(0)
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.BookingEvent, error) {
	args := m.Called(ctx, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan *entities.BookingEvent), args.Error(1)
}

func (m *MockEventBus) Close() error {
	args := m.Called()
	return args.Error(0)
}
