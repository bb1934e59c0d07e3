package database

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"

	"github.com/artisanconnect/booking-backend/internal/domain/entities"
	"github.com/artisanconnect/booking-backend/internal/domain/repositories"
	"github.com/artisanconnect/booking-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/artisanconnect/booking-backend/pkg/errors"
)

// ScheduleAdapter implements the ScheduleRepository interface
type ScheduleAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewScheduleAdapter creates a new schedule adapter
func NewScheduleAdapter(client *postgres.Client) repositories.ScheduleRepository {
	return &ScheduleAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// OpeningRuleByDay retrieves the opening rule for a weekday, nil when closed
func (a *ScheduleAdapter) OpeningRuleByDay(ctx context.Context, providerID string, dayOfWeek int) (*entities.OpeningRule, error) {
	query, args, err := a.db.Select(
		"id", "provider_id", "day_of_week", "start_minutes", "end_minutes",
		"created_at", "updated_at",
	).From("opening_rules").
		Where(goqu.Ex{"provider_id": providerID, "day_of_week": dayOfWeek}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build opening rule query", err)
	}

	rule := &entities.OpeningRule{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&rule.ID,
		&rule.ProviderID,
		&rule.DayOfWeek,
		&rule.StartMinutes,
		&rule.EndMinutes,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		// No rule means the provider is closed that day, not an error.
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get opening rule", err)
	}

	return rule, nil
}

// BreakRulesByDay retrieves break rules for a weekday ordered by start
func (a *ScheduleAdapter) BreakRulesByDay(ctx context.Context, providerID string, dayOfWeek int) ([]*entities.BreakRule, error) {
	query, args, err := a.db.Select(
		"id", "provider_id", "day_of_week", "start_minutes", "end_minutes",
		"created_at", "updated_at",
	).From("break_rules").
		Where(goqu.Ex{"provider_id": providerID, "day_of_week": dayOfWeek}).
		Order(goqu.I("start_minutes").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build break rules query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list break rules", err)
	}
	defer rows.Close()

	var rules []*entities.BreakRule
	for rows.Next() {
		rule := &entities.BreakRule{}
		err := rows.Scan(
			&rule.ID,
			&rule.ProviderID,
			&rule.DayOfWeek,
			&rule.StartMinutes,
			&rule.EndMinutes,
			&rule.CreatedAt,
			&rule.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan break rule", err)
		}
		rules = append(rules, rule)
	}

	return rules, rows.Err()
}
