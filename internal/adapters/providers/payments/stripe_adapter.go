package payments

import (
	"context"
	"fmt"

	stripego "github.com/stripe/stripe-go/v79"

	"github.com/artisanconnect/booking-backend/internal/domain/entities"
	stripeclient "github.com/artisanconnect/booking-backend/internal/infrastructure/clients/stripe"
	apperrors "github.com/artisanconnect/booking-backend/pkg/errors"
)

// StripeAdapter creates deposit payment intents via Stripe.
type StripeAdapter struct {
	client *stripeclient.Client
}

// NewStripeAdapter creates a new Stripe payment adapter
func NewStripeAdapter(client *stripeclient.Client) *StripeAdapter {
	return &StripeAdapter{client: client}
}

// Name identifies the provider
func (a *StripeAdapter) Name() string {
	return "stripe"
}

// CreateDepositIntent registers a payment intent for the booking's deposit
func (a *StripeAdapter) CreateDepositIntent(ctx context.Context, booking *entities.Booking) (*entities.PaymentIntentRef, error) {
	params := &stripego.PaymentIntentParams{
		Amount:       stripego.Int64(booking.DepositCents),
		Currency:     stripego.String(a.client.Currency()),
		Description:  stripego.String(fmt.Sprintf("Deposit for booking %s", booking.PublicCode)),
		ReceiptEmail: stripego.String(booking.CustomerEmail),
	}
	params.Context = ctx
	params.AddMetadata("booking_id", booking.ID)
	params.AddMetadata("booking_code", booking.PublicCode)
	params.AddMetadata("customer_email", booking.CustomerEmail)

	intent, err := a.client.API().PaymentIntents.New(params)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to create payment intent", err)
	}

	return &entities.PaymentIntentRef{
		Provider:     a.Name(),
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}
