package repositories

import (
	"context"
	"time"

	"github.com/artisanconnect/booking-backend/internal/domain/entities"
)

// ScheduleRepository defines the interface for recurring calendar rules
type ScheduleRepository interface {
	// OpeningRuleByDay returns the single opening rule for the weekday,
	// nil when the provider is closed that day.
	OpeningRuleByDay(ctx context.Context, providerID string, dayOfWeek int) (*entities.OpeningRule, error)

	// BreakRulesByDay returns the break rules for the weekday ordered by
	// start minutes; empty when none exist.
	BreakRulesByDay(ctx context.Context, providerID string, dayOfWeek int) ([]*entities.BreakRule, error)
}

// BusyBlockRepository defines the interface for busy block access
type BusyBlockRepository interface {
	// ListExternalByProviderAndRange returns external-source blocks whose
	// interval intersects [from, to), ordered by start time.
	ListExternalByProviderAndRange(ctx context.Context, providerID string, from, to time.Time) ([]*entities.BusyBlock, error)

	// DeleteByProviderAndCalendar removes all blocks a calendar import
	// produced, so a re-import starts clean.
	DeleteByProviderAndCalendar(ctx context.Context, providerID, calendarID string, source entities.BusyBlockSource) error
}
