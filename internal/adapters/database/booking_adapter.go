package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/artisanconnect/booking-backend/internal/domain/entities"
	"github.com/artisanconnect/booking-backend/internal/domain/repositories"
	"github.com/artisanconnect/booking-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/artisanconnect/booking-backend/pkg/errors"
)

var bookingColumns = []interface{}{
	"id", "public_code", "provider_id", "service_id", "status",
	"customer_name", "customer_email", "customer_phone",
	"start_at", "duration_minutes", "price_cents", "deposit_cents",
	"deposit_rate", "deposit_status", "payment_provider", "payment_intent_id",
	"notifications_email", "notifications_sms", "created_at", "updated_at",
}

// BookingAdapter implements the BookingRepository interface.
//
// Mutations that change a booking's slot footprint also maintain the mirror
// busy block (source "booking") in the same transaction.
type BookingAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewBookingAdapter creates a new booking adapter
func NewBookingAdapter(client *postgres.Client) repositories.BookingRepository {
	return &BookingAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create persists a new booking and its mirror busy block atomically
func (a *BookingAdapter) Create(ctx context.Context, booking *entities.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	insertBooking, args, err := a.db.Insert("bookings").Rows(goqu.Record{
		"id":                  booking.ID,
		"public_code":         booking.PublicCode,
		"provider_id":         booking.ProviderID,
		"service_id":          booking.ServiceID,
		"status":              booking.Status,
		"customer_name":       booking.CustomerName,
		"customer_email":      booking.CustomerEmail,
		"customer_phone":      booking.CustomerPhone,
		"start_at":            booking.StartAt,
		"duration_minutes":    booking.DurationMinutes,
		"price_cents":         booking.PriceCents,
		"deposit_cents":       booking.DepositCents,
		"deposit_rate":        booking.DepositRate,
		"deposit_status":      booking.DepositStatus,
		"payment_provider":    booking.PaymentProvider,
		"payment_intent_id":   booking.PaymentIntentID,
		"notifications_email": booking.Notifications.Email,
		"notifications_sms":   booking.Notifications.SMS,
		"created_at":          booking.CreatedAt,
		"updated_at":          booking.UpdatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build booking insert", err)
	}

	insertMirror, mirrorArgs, err := a.mirrorInsertSQL(booking, now)
	if err != nil {
		return err
	}

	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, insertBooking, args...); err != nil {
		return apperrors.NewInternalError("failed to create booking", err)
	}
	if _, err := tx.ExecContext(ctx, insertMirror, mirrorArgs...); err != nil {
		return apperrors.NewInternalError("failed to create mirror busy block", err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit booking", err)
	}
	return nil
}

// FindByCode retrieves a booking by its public code, nil when absent
func (a *BookingAdapter) FindByCode(ctx context.Context, code string) (*entities.Booking, error) {
	return a.findOne(ctx, goqu.Ex{"public_code": code})
}

// FindByCodeAndEmail retrieves a booking by code and customer email.
// The email comparison trims whitespace and ignores case.
func (a *BookingAdapter) FindByCodeAndEmail(ctx context.Context, code, email string) (*entities.Booking, error) {
	return a.findOne(ctx,
		goqu.Ex{"public_code": code},
		goqu.L("LOWER(TRIM(customer_email)) = LOWER(?)", strings.TrimSpace(email)),
	)
}

// FindByPaymentIntentID retrieves the booking holding a payment intent
func (a *BookingAdapter) FindByPaymentIntentID(ctx context.Context, intentID string) (*entities.Booking, error) {
	return a.findOne(ctx, goqu.Ex{"payment_intent_id": intentID})
}

func (a *BookingAdapter) findOne(ctx context.Context, conditions ...goqu.Expression) (*entities.Booking, error) {
	query, args, err := a.db.Select(bookingColumns...).
		From("bookings").
		Where(conditions...).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build booking query", err)
	}

	booking, err := scanBooking(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get booking", err)
	}
	return booking, nil
}

// ListActiveByProviderAndRange returns non-cancelled bookings intersecting [from, to)
func (a *BookingAdapter) ListActiveByProviderAndRange(ctx context.Context, providerID string, from, to time.Time) ([]*entities.Booking, error) {
	query, args, err := a.db.Select(bookingColumns...).
		From("bookings").
		Where(
			goqu.Ex{"provider_id": providerID},
			goqu.C("status").Neq(entities.BookingStatusCancelled),
			goqu.C("start_at").Lt(to),
			goqu.L("start_at + (duration_minutes * interval '1 minute') > ?", from),
		).
		Order(goqu.I("start_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build bookings range query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list bookings", err)
	}
	defer rows.Close()

	var bookings []*entities.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan booking", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

// UpdateStatus sets the lifecycle status; cancelling removes the mirror block
func (a *BookingAdapter) UpdateStatus(ctx context.Context, id string, status entities.BookingStatus) (*entities.Booking, error) {
	now := time.Now().UTC()

	updateSQL, args, err := a.db.Update("bookings").
		Set(goqu.Record{"status": status, "updated_at": now}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build status update", err)
	}

	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, updateSQL, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to update booking status", err)
	}
	if affected, err := result.RowsAffected(); err != nil {
		return nil, apperrors.NewInternalError("failed to get rows affected", err)
	} else if affected == 0 {
		return nil, apperrors.NewBookingNotFoundError(fmt.Sprintf("booking %s not found", id))
	}

	if status == entities.BookingStatusCancelled {
		deleteSQL, deleteArgs, err := a.db.Delete("busy_blocks").
			Where(goqu.Ex{"booking_id": id, "source": entities.BusyBlockSourceBooking}).
			ToSQL()
		if err != nil {
			return nil, apperrors.NewInternalError("failed to build mirror delete", err)
		}
		if _, err := tx.ExecContext(ctx, deleteSQL, deleteArgs...); err != nil {
			return nil, apperrors.NewInternalError("failed to delete mirror busy block", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewInternalError("failed to commit status update", err)
	}

	return a.findOne(ctx, goqu.Ex{"id": id})
}

// Reschedule moves the booking and its mirror block to a new start
func (a *BookingAdapter) Reschedule(ctx context.Context, id string, newStart time.Time) (*entities.Booking, error) {
	now := time.Now().UTC()

	updateSQL, args, err := a.db.Update("bookings").
		Set(goqu.Record{
			"start_at":   newStart,
			"status":     entities.BookingStatusRescheduled,
			"updated_at": now,
		}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build reschedule update", err)
	}

	mirrorSQL, mirrorArgs, err := a.db.Update("busy_blocks").
		Set(goqu.Record{
			"start_at":   newStart,
			"end_at":     goqu.L("? + (SELECT duration_minutes FROM bookings WHERE id = ?) * interval '1 minute'", newStart, id),
			"updated_at": now,
		}).
		Where(goqu.Ex{"booking_id": id, "source": entities.BusyBlockSourceBooking}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build mirror update", err)
	}

	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, updateSQL, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to reschedule booking", err)
	}
	if affected, err := result.RowsAffected(); err != nil {
		return nil, apperrors.NewInternalError("failed to get rows affected", err)
	} else if affected == 0 {
		return nil, apperrors.NewBookingNotFoundError(fmt.Sprintf("booking %s not found", id))
	}

	if _, err := tx.ExecContext(ctx, mirrorSQL, mirrorArgs...); err != nil {
		return nil, apperrors.NewInternalError("failed to move mirror busy block", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewInternalError("failed to commit reschedule", err)
	}

	return a.findOne(ctx, goqu.Ex{"id": id})
}

// UpdatePaymentIntent attaches the deposit payment intent reference
func (a *BookingAdapter) UpdatePaymentIntent(ctx context.Context, id, provider, intentID string) error {
	query, args, err := a.db.Update("bookings").
		Set(goqu.Record{
			"payment_provider":  provider,
			"payment_intent_id": intentID,
			"updated_at":        time.Now().UTC(),
		}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build payment intent update", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update payment intent", err)
	}
	if affected, err := result.RowsAffected(); err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	} else if affected == 0 {
		return apperrors.NewBookingNotFoundError(fmt.Sprintf("booking %s not found", id))
	}

	return nil
}

// UpdateDepositStatus advances the deposit sub-state by payment intent id
func (a *BookingAdapter) UpdateDepositStatus(ctx context.Context, intentID string, status entities.DepositStatus) (*entities.Booking, error) {
	query, args, err := a.db.Update("bookings").
		Set(goqu.Record{
			"deposit_status": status,
			"updated_at":     time.Now().UTC(),
		}).
		Where(goqu.Ex{"payment_intent_id": intentID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build deposit status update", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to update deposit status", err)
	}
	if affected, err := result.RowsAffected(); err != nil {
		return nil, apperrors.NewInternalError("failed to get rows affected", err)
	} else if affected == 0 {
		return nil, nil
	}

	return a.findOne(ctx, goqu.Ex{"payment_intent_id": intentID})
}

// CodeExists reports whether a public code is already taken
func (a *BookingAdapter) CodeExists(ctx context.Context, code string) (bool, error) {
	query, args, err := a.db.Select(goqu.L("1")).
		From("bookings").
		Where(goqu.Ex{"public_code": code}).
		Limit(1).
		ToSQL()
	if err != nil {
		return false, apperrors.NewInternalError("failed to build code query", err)
	}

	var one int
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, apperrors.NewInternalError("failed to check code", err)
	}
	return true, nil
}

func (a *BookingAdapter) mirrorInsertSQL(booking *entities.Booking, now time.Time) (string, []interface{}, error) {
	query, args, err := a.db.Insert("busy_blocks").Rows(goqu.Record{
		"id":          uuid.New().String(),
		"provider_id": booking.ProviderID,
		"calendar_id": "internal",
		"source":      entities.BusyBlockSourceBooking,
		"summary":     fmt.Sprintf("Booking %s - %s", booking.PublicCode, booking.CustomerName),
		"start_at":    booking.StartAt,
		"end_at":      booking.EndAt(),
		"booking_id":  booking.ID,
		"created_at":  now,
		"updated_at":  now,
	}).ToSQL()
	if err != nil {
		return "", nil, apperrors.NewInternalError("failed to build mirror insert", err)
	}
	return query, args, nil
}

func scanBooking(row rowScanner) (*entities.Booking, error) {
	booking := &entities.Booking{}
	var customerPhone, paymentProvider, paymentIntentID sql.NullString

	err := row.Scan(
		&booking.ID,
		&booking.PublicCode,
		&booking.ProviderID,
		&booking.ServiceID,
		&booking.Status,
		&booking.CustomerName,
		&booking.CustomerEmail,
		&customerPhone,
		&booking.StartAt,
		&booking.DurationMinutes,
		&booking.PriceCents,
		&booking.DepositCents,
		&booking.DepositRate,
		&booking.DepositStatus,
		&paymentProvider,
		&paymentIntentID,
		&booking.Notifications.Email,
		&booking.Notifications.SMS,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.CustomerPhone = customerPhone.String
	booking.PaymentProvider = paymentProvider.String
	booking.PaymentIntentID = paymentIntentID.String
	return booking, nil
}
