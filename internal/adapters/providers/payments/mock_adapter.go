package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/artisanconnect/booking-backend/internal/domain/entities"
)

// MockAdapter provides deterministic payment intents for local development.
type MockAdapter struct{}

// NewMockAdapter creates a mock payment provider
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{}
}

// Name identifies the provider
func (m *MockAdapter) Name() string {
	return "mock"
}

// CreateDepositIntent returns a mock payment intent reference
func (m *MockAdapter) CreateDepositIntent(ctx context.Context, booking *entities.Booking) (*entities.PaymentIntentRef, error) {
	id := fmt.Sprintf("pi_mock_%d", time.Now().UnixNano())
	return &entities.PaymentIntentRef{
		Provider:     m.Name(),
		IntentID:     id,
		ClientSecret: id + "_secret",
	}, nil
}
