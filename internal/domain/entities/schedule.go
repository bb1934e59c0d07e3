package entities

import (
	"fmt"
	"time"
)

// OpeningRule is a provider's recurring opening window for a weekday.
// Minutes count from midnight local time; 0 = Sunday, 6 = Saturday.
// At most one rule exists per (provider, day).
type OpeningRule struct {
	ID           string    `json:"id" db:"id"`
	ProviderID   string    `json:"provider_id" db:"provider_id"`
	DayOfWeek    int       `json:"day_of_week" db:"day_of_week"`
	StartMinutes int       `json:"start_minutes" db:"start_minutes"`
	EndMinutes   int       `json:"end_minutes" db:"end_minutes"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// BreakRule is a recurring unbookable sub-interval of the opening window.
// Zero or more exist per (provider, day); purely subtractive.
type BreakRule struct {
	ID           string    `json:"id" db:"id"`
	ProviderID   string    `json:"provider_id" db:"provider_id"`
	DayOfWeek    int       `json:"day_of_week" db:"day_of_week"`
	StartMinutes int       `json:"start_minutes" db:"start_minutes"`
	EndMinutes   int       `json:"end_minutes" db:"end_minutes"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// MinutesToClock renders minutes-from-midnight as "HH:MM".
func MinutesToClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
