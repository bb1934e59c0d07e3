package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/artisanconnect/booking-backend/internal/domain/entities"
	"github.com/artisanconnect/booking-backend/internal/domain/repositories"
	"github.com/artisanconnect/booking-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/artisanconnect/booking-backend/pkg/errors"
)

// BusyBlockAdapter implements the BusyBlockRepository interface
type BusyBlockAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewBusyBlockAdapter creates a new busy block adapter
func NewBusyBlockAdapter(client *postgres.Client) repositories.BusyBlockRepository {
	return &BusyBlockAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// ListExternalByProviderAndRange returns external-source blocks intersecting [from, to)
func (a *BusyBlockAdapter) ListExternalByProviderAndRange(ctx context.Context, providerID string, from, to time.Time) ([]*entities.BusyBlock, error) {
	query, args, err := a.db.Select(
		"id", "provider_id", "calendar_id", "source", "summary",
		"start_at", "end_at", "booking_id", "external_event_id",
		"created_at", "updated_at",
	).From("busy_blocks").
		Where(
			goqu.Ex{"provider_id": providerID, "source": entities.BusyBlockSourceExternal},
			goqu.C("start_at").Lt(to),
			goqu.C("end_at").Gt(from),
		).
		Order(goqu.I("start_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build busy blocks query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list busy blocks", err)
	}
	defer rows.Close()

	var blocks []*entities.BusyBlock
	for rows.Next() {
		block := &entities.BusyBlock{}
		var summary, externalEventID sql.NullString
		var bookingID sql.NullString

		err := rows.Scan(
			&block.ID,
			&block.ProviderID,
			&block.CalendarID,
			&block.Source,
			&summary,
			&block.StartAt,
			&block.EndAt,
			&bookingID,
			&externalEventID,
			&block.CreatedAt,
			&block.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan busy block", err)
		}

		block.Summary = summary.String
		block.ExternalEventID = externalEventID.String
		if bookingID.Valid {
			block.BookingID = &bookingID.String
		}
		blocks = append(blocks, block)
	}

	return blocks, rows.Err()
}

// DeleteByProviderAndCalendar removes all blocks of a calendar import
func (a *BusyBlockAdapter) DeleteByProviderAndCalendar(ctx context.Context, providerID, calendarID string, source entities.BusyBlockSource) error {
	query, args, err := a.db.Delete("busy_blocks").
		Where(goqu.Ex{
			"provider_id": providerID,
			"calendar_id": calendarID,
			"source":      source,
		}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build busy block delete", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to delete busy blocks", err)
	}

	return nil
}
