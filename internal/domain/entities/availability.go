package entities

import (
	"time"
)

// SlotBlockerType tags which unavailability source blocks a slot.
type SlotBlockerType string

const (
	SlotBlockedByBreak    SlotBlockerType = "break"
	SlotBlockedByBooking  SlotBlockerType = "booking"
	SlotBlockedByCalendar SlotBlockerType = "calendar"
)

// SlotBlocker identifies one interval that overlaps a slot, with enough
// identity for the caller to render a human explanation.
type SlotBlocker struct {
	Type        SlotBlockerType `json:"type"`
	BookingCode string          `json:"booking_code,omitempty"`
	CalendarID  string          `json:"calendar_id,omitempty"`
	Summary     string          `json:"summary"`
}

// Slot is a candidate reservable interval of a fixed service duration,
// anchored at the slot step quantum within the opening window.
type Slot struct {
	Time      string        `json:"time"`
	StartAt   time.Time     `json:"start_at"`
	EndAt     time.Time     `json:"end_at"`
	Available bool          `json:"available"`
	BlockedBy []SlotBlocker `json:"blocked_by,omitempty"`
}

// OpeningWindow is the day's opening interval in minutes from local midnight.
type OpeningWindow struct {
	StartMinutes int `json:"start_minutes"`
	EndMinutes   int `json:"end_minutes"`
}

// Availability is the computed slot schedule for one service and date.
// Opening is nil when the day has no opening rule (closed, not an error).
type Availability struct {
	ServiceID string         `json:"service_id"`
	Date      string         `json:"date"`
	Opening   *OpeningWindow `json:"opening"`
	Slots     []Slot         `json:"slots"`
}

// IntervalsOverlap reports whether the half-open intervals [aStart, aEnd)
// and [bStart, bEnd) overlap.
func IntervalsOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
