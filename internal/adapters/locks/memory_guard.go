package locks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/artisanconnect/booking-backend/internal/domain/providers"
)

// MemoryGuard implements ConflictGuard with in-process keyed mutexes.
// Correct only for a single-process deployment; used by tests and dev mode.
type MemoryGuard struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewMemoryGuard creates a new in-process conflict guard
func NewMemoryGuard() providers.ConflictGuard {
	return &MemoryGuard{locks: make(map[string]*sync.Mutex)}
}

// WithSlotLock runs fn while holding the mutex for (providerID, day)
func (g *MemoryGuard) WithSlotLock(ctx context.Context, providerID string, day time.Time, fn func(ctx context.Context) error) error {
	key := fmt.Sprintf("%s:%s", providerID, day.Format("2006-01-02"))

	g.mu.Lock()
	lock, ok := g.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		g.locks[key] = lock
	}
	g.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}
