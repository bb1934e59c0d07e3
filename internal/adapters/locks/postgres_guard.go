package locks

import (
	"context"
	"fmt"
	"time"

	"github.com/artisanconnect/booking-backend/internal/domain/providers"
	"github.com/artisanconnect/booking-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/artisanconnect/booking-backend/pkg/errors"
)

// PostgresGuard implements ConflictGuard with Postgres advisory locks.
//
// The lock key is derived from (provider, calendar day), so concurrent
// booking attempts against the same day serialize while other days stay
// unaffected. The lock lives on a dedicated pooled connection and is
// released when the guarded function returns, success or not.
type PostgresGuard struct {
	client *postgres.Client
}

// NewPostgresGuard creates a new advisory-lock conflict guard
func NewPostgresGuard(client *postgres.Client) providers.ConflictGuard {
	return &PostgresGuard{client: client}
}

// WithSlotLock runs fn while holding the advisory lock for (providerID, day)
func (g *PostgresGuard) WithSlotLock(ctx context.Context, providerID string, day time.Time, fn func(ctx context.Context) error) error {
	conn, err := g.client.Conn(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to acquire connection for slot lock", err)
	}
	defer conn.Close()

	key := fmt.Sprintf("%s:%s", providerID, day.Format("2006-01-02"))

	if _, err := conn.ExecContext(ctx, "SELECT pg_advisory_lock(hashtextextended($1, 0))", key); err != nil {
		return apperrors.NewInternalError("failed to acquire slot lock", err)
	}
	defer func() {
		// Unlock on the same connection; closing the connection would also
		// release the lock if this exec fails.
		_, _ = conn.ExecContext(context.WithoutCancel(ctx), "SELECT pg_advisory_unlock(hashtextextended($1, 0))", key)
	}()

	return fn(ctx)
}
