package entities

import (
	"time"
)

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	BookingStatusConfirmed   BookingStatus = "confirmed"
	BookingStatusCancelled   BookingStatus = "cancelled"
	BookingStatusRescheduled BookingStatus = "rescheduled"
)

// DepositStatus represents the payment sub-state of a booking's deposit.
// It only advances via payment-status sync or initial creation and is never
// derived from the booking status.
type DepositStatus string

const (
	DepositStatusPending    DepositStatus = "pending"
	DepositStatusAuthorized DepositStatus = "authorized"
	DepositStatusCaptured   DepositStatus = "captured"
	DepositStatusRefunded   DepositStatus = "refunded"
	DepositStatusFailed     DepositStatus = "failed"
)

// NotificationPrefs holds the customer's notification preferences.
type NotificationPrefs struct {
	Email bool `json:"email" db:"notifications_email"`
	SMS   bool `json:"sms" db:"notifications_sms"`
}

// Booking represents a customer reservation of a provider time slot.
// Duration, price and deposit are copied from the service at creation time
// so later service changes never retroactively alter existing bookings.
type Booking struct {
	ID              string        `json:"id" db:"id"`
	PublicCode      string        `json:"public_code" db:"public_code"`
	ProviderID      string        `json:"provider_id" db:"provider_id"`
	ServiceID       string        `json:"service_id" db:"service_id"`
	Status          BookingStatus `json:"status" db:"status"`
	CustomerName    string        `json:"customer_name" db:"customer_name"`
	CustomerEmail   string        `json:"customer_email" db:"customer_email"`
	CustomerPhone   string        `json:"customer_phone" db:"customer_phone"`
	StartAt         time.Time     `json:"start_at" db:"start_at"`
	DurationMinutes int           `json:"duration_minutes" db:"duration_minutes"`
	PriceCents      int64         `json:"price_cents" db:"price_cents"`
	DepositCents    int64         `json:"deposit_cents" db:"deposit_cents"`
	DepositRate     float64       `json:"deposit_rate" db:"deposit_rate"`
	DepositStatus   DepositStatus `json:"deposit_status" db:"deposit_status"`
	PaymentProvider string        `json:"payment_provider,omitempty" db:"payment_provider"`
	PaymentIntentID string        `json:"payment_intent_id,omitempty" db:"payment_intent_id"`
	Notifications   NotificationPrefs
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// EndAt returns the exclusive end of the booking interval [StartAt, EndAt).
func (b *Booking) EndAt() time.Time {
	return b.StartAt.Add(time.Duration(b.DurationMinutes) * time.Minute)
}

// IsCancelled reports whether the booking reached its terminal state.
func (b *Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}
