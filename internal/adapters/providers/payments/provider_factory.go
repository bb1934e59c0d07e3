package payments

import (
	"github.com/artisanconnect/booking-backend/internal/domain/providers"
	stripeclient "github.com/artisanconnect/booking-backend/internal/infrastructure/clients/stripe"
	"github.com/artisanconnect/booking-backend/pkg/config"
)

// NewPaymentProvider selects the payment provider from configuration.
// Without a Stripe secret key the mock provider is used for dev.
func NewPaymentProvider(cfg *config.StripeConfig) (providers.PaymentProvider, error) {
	if cfg.SecretKey == "" {
		return NewMockAdapter(), nil
	}

	client, err := stripeclient.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return NewStripeAdapter(client), nil
}
