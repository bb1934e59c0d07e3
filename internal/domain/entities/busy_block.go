package entities

import (
	"time"
)

// BusyBlockSource tags where a busy block came from.
type BusyBlockSource string

const (
	// BusyBlockSourceExternal marks time imported from a foreign calendar;
	// only these blocks feed the availability computation.
	BusyBlockSourceExternal BusyBlockSource = "external"
	// BusyBlockSourceBooking marks a block mirroring an internal booking,
	// kept for export to foreign calendars.
	BusyBlockSourceBooking BusyBlockSource = "booking"
)

// BusyBlock represents an interval during which the provider is unavailable.
type BusyBlock struct {
	ID              string          `json:"id" db:"id"`
	ProviderID      string          `json:"provider_id" db:"provider_id"`
	CalendarID      string          `json:"calendar_id" db:"calendar_id"`
	Source          BusyBlockSource `json:"source" db:"source"`
	Summary         string          `json:"summary" db:"summary"`
	StartAt         time.Time       `json:"start_at" db:"start_at"`
	EndAt           time.Time       `json:"end_at" db:"end_at"`
	BookingID       *string         `json:"booking_id,omitempty" db:"booking_id"`
	ExternalEventID string          `json:"external_event_id,omitempty" db:"external_event_id"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}
