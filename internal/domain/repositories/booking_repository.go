package repositories

import (
	"context"
	"time"

	"github.com/artisanconnect/booking-backend/internal/domain/entities"
)

// BookingRepository defines the interface for booking persistence.
//
// Create and the two mutation methods also maintain the booking's mirror
// busy block (source "booking") inside the same transaction, so a failed
// write leaves neither a partial booking nor an orphaned block.
type BookingRepository interface {
	// Create persists a new booking together with its mirror busy block.
	Create(ctx context.Context, booking *entities.Booking) error

	// FindByCode returns the booking for a public code, nil when absent.
	FindByCode(ctx context.Context, code string) (*entities.Booking, error)

	// FindByCodeAndEmail returns the booking matching both the public code
	// and the customer email (trimmed, case-insensitive), nil when absent.
	FindByCodeAndEmail(ctx context.Context, code, email string) (*entities.Booking, error)

	// FindByPaymentIntentID returns the booking holding the given deposit
	// payment intent, nil when absent.
	FindByPaymentIntentID(ctx context.Context, intentID string) (*entities.Booking, error)

	// ListActiveByProviderAndRange returns non-cancelled bookings of the
	// provider whose interval intersects [from, to), ordered by start time.
	ListActiveByProviderAndRange(ctx context.Context, providerID string, from, to time.Time) ([]*entities.Booking, error)

	// UpdateStatus sets the lifecycle status, removing the mirror busy
	// block when the new status is cancelled.
	UpdateStatus(ctx context.Context, id string, status entities.BookingStatus) (*entities.Booking, error)

	// Reschedule moves the booking to a new start, sets the status to
	// rescheduled and moves the mirror busy block, all in one transaction.
	Reschedule(ctx context.Context, id string, newStart time.Time) (*entities.Booking, error)

	// UpdatePaymentIntent attaches the deposit payment intent reference.
	UpdatePaymentIntent(ctx context.Context, id, provider, intentID string) error

	// UpdateDepositStatus advances the deposit payment sub-state of the
	// booking holding the intent, returning the updated booking or nil
	// when no booking holds it.
	UpdateDepositStatus(ctx context.Context, intentID string, status entities.DepositStatus) (*entities.Booking, error)

	// CodeExists reports whether a public code is already taken.
	CodeExists(ctx context.Context, code string) (bool, error)
}
