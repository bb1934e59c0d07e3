package providers

import (
	"context"
	"time"

	"github.com/artisanconnect/booking-backend/internal/domain/entities"
)

// CacheProvider defines the interface for caching operations
type CacheProvider interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// EventBus defines the interface for publishing booking lifecycle events
type EventBus interface {
	Publish(ctx context.Context, channel string, event *entities.BookingEvent) error
	Subscribe(ctx context.Context, channel string) (<-chan *entities.BookingEvent, error)
	Close() error
}

// PaymentProvider creates deposit payment intents at the external payment
// service. Signature verification of inbound webhooks is the HTTP boundary's
// concern, not this port's.
type PaymentProvider interface {
	// Name identifies the provider ("stripe", "mock").
	Name() string
	// CreateDepositIntent registers a payment intent for the booking's
	// deposit amount and returns its reference.
	CreateDepositIntent(ctx context.Context, booking *entities.Booking) (*entities.PaymentIntentRef, error)
}

// ConflictGuard serializes check-then-write booking mutations that target
// the same provider calendar day. The guarded function re-reads availability
// and writes while no concurrent caller can interleave, which is what keeps
// the no-overlap invariant true under parallel create/reschedule attempts.
type ConflictGuard interface {
	WithSlotLock(ctx context.Context, providerID string, day time.Time, fn func(ctx context.Context) error) error
}
