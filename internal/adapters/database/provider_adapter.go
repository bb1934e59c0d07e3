package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/artisanconnect/booking-backend/internal/domain/entities"
	"github.com/artisanconnect/booking-backend/internal/domain/repositories"
	"github.com/artisanconnect/booking-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/artisanconnect/booking-backend/pkg/errors"
)

// ProviderAdapter implements the ProviderRepository interface
type ProviderAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewProviderAdapter creates a new provider adapter
func NewProviderAdapter(client *postgres.Client) repositories.ProviderRepository {
	return &ProviderAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// FindByID retrieves a provider by ID
func (a *ProviderAdapter) FindByID(ctx context.Context, id string) (*entities.Provider, error) {
	query, args, err := a.db.Select(
		"id", "name", "email", "phone", "timezone", "is_active",
		"created_at", "updated_at",
	).From("providers").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build provider query", err)
	}

	provider := &entities.Provider{}
	var phone sql.NullString

	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&provider.ID,
		&provider.Name,
		&provider.Email,
		&phone,
		&provider.Timezone,
		&provider.IsActive,
		&provider.CreatedAt,
		&provider.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewInternalError(fmt.Sprintf("provider %s not found", id), nil)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get provider", err)
	}

	provider.Phone = phone.String
	return provider, nil
}
