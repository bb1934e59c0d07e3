package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/artisanconnect/booking-backend/internal/domain/entities"
	"github.com/artisanconnect/booking-backend/internal/domain/providers"
	"github.com/artisanconnect/booking-backend/internal/domain/repositories"
	"github.com/artisanconnect/booking-backend/internal/infrastructure/observability"
)

// CachedServiceAdapter wraps a ServiceRepository with Redis caching.
// The catalog changes rarely relative to how often availability queries
// load services, so short TTLs are enough.
type CachedServiceAdapter struct {
	adapter repositories.ServiceRepository
	cache   providers.CacheProvider
}

// NewCachedServiceAdapter creates a new cached service adapter
func NewCachedServiceAdapter(adapter repositories.ServiceRepository, cache providers.CacheProvider) repositories.ServiceRepository {
	return &CachedServiceAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

// Cache TTLs (in seconds)
const (
	serviceByIDTTL    = 300
	activeServicesTTL = 180
)

func serviceCacheKey(id string) string {
	return fmt.Sprintf("service:%s", id)
}

const activeServicesCacheKey = "services:active"

// FindByID retrieves a service by ID with caching
func (a *CachedServiceAdapter) FindByID(ctx context.Context, id string) (*entities.Service, error) {
	cacheKey := serviceCacheKey(id)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var svc entities.Service
		if err := json.Unmarshal(cached, &svc); err == nil {
			return &svc, nil
		}
		observability.GetLogger().Warn().Str("key", cacheKey).Msg("failed to unmarshal cached service")
	}

	svc, err := a.adapter.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Update cache asynchronously to avoid blocking the response
	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(svc); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, serviceByIDTTL); err != nil {
				observability.GetLogger().Warn().Err(err).Str("key", cacheKey).Msg("failed to cache service")
			}
		}
	}()

	return svc, nil
}

// ListActive retrieves active services with caching
func (a *CachedServiceAdapter) ListActive(ctx context.Context) ([]*entities.Service, error) {
	if cached, err := a.cache.Get(ctx, activeServicesCacheKey); err == nil {
		var services []*entities.Service
		if err := json.Unmarshal(cached, &services); err == nil {
			return services, nil
		}
	}

	services, err := a.adapter.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(services); err == nil {
			if err := a.cache.Set(bgCtx, activeServicesCacheKey, data, activeServicesTTL); err != nil {
				observability.GetLogger().Warn().Err(err).Msg("failed to cache active services")
			}
		}
	}()

	return services, nil
}
