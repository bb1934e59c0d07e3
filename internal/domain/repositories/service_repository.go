package repositories

import (
	"context"

	"github.com/artisanconnect/booking-backend/internal/domain/entities"
)

// ServiceRepository defines the interface for service catalog access
type ServiceRepository interface {
	// FindByID returns the service or a not-found error. Inactive services
	// are returned as stored; callers decide whether inactive is acceptable.
	FindByID(ctx context.Context, id string) (*entities.Service, error)
	// ListActive returns all active services ordered by name.
	ListActive(ctx context.Context) ([]*entities.Service, error)
}

// ProviderRepository defines the interface for provider access
type ProviderRepository interface {
	FindByID(ctx context.Context, id string) (*entities.Provider, error)
}
