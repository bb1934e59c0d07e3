package entities

import (
	"time"
)

// BookingEventsChannel carries all booking lifecycle events on the bus.
const BookingEventsChannel = "booking.events"

// BookingEventType identifies a booking lifecycle event on the event bus.
type BookingEventType string

const (
	BookingEventCreated         BookingEventType = "booking.created"
	BookingEventCancelled       BookingEventType = "booking.cancelled"
	BookingEventRescheduled     BookingEventType = "booking.rescheduled"
	BookingEventDepositCaptured BookingEventType = "booking.deposit_captured"
)

// BookingEvent is published after a booking mutation commits.
type BookingEvent struct {
	ID         string           `json:"id"`
	Type       BookingEventType `json:"type"`
	BookingID  string           `json:"booking_id"`
	PublicCode string           `json:"public_code"`
	ProviderID string           `json:"provider_id"`
	StartAt    time.Time        `json:"start_at"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// PaymentEvent is a payment-provider notification that has already passed
// signature verification at the boundary. The core trusts it as-is.
type PaymentEvent struct {
	ID              string            `json:"id"`
	Type            string            `json:"type"`
	PaymentIntentID string            `json:"payment_intent_id"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	OccurredAt      time.Time         `json:"occurred_at"`
}

// PaymentEventIntentSucceeded is the only payment event type that mutates
// booking state; all others are acknowledged without side effects.
const PaymentEventIntentSucceeded = "payment_intent.succeeded"

// PaymentIntentRef references a deposit payment intent at the provider.
type PaymentIntentRef struct {
	Provider     string `json:"provider"`
	IntentID     string `json:"intent_id"`
	ClientSecret string `json:"client_secret,omitempty"`
}
