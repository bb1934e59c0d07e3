package stripe

import (
	"fmt"
	"time"

	stripego "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/artisanconnect/booking-backend/pkg/config"
)

// Client wraps the Stripe API client plus the webhook verification secret.
type Client struct {
	api              *client.API
	webhookSecret    string
	webhookTolerance time.Duration
	currency         string
}

// NewClient creates a new Stripe client
func NewClient(cfg *config.StripeConfig) (*Client, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("stripe secret key is not configured")
	}

	api := &client.API{}
	api.Init(cfg.SecretKey, nil)

	return &Client{
		api:              api,
		webhookSecret:    cfg.WebhookSecret,
		webhookTolerance: cfg.WebhookTolerance,
		currency:         cfg.Currency,
	}, nil
}

// API returns the underlying Stripe API client
func (c *Client) API() *client.API {
	return c.api
}

// Currency returns the configured charge currency
func (c *Client) Currency() string {
	return c.currency
}

// VerifyWebhook checks the event signature and returns the decoded event.
// Signature verification is the authentication for the webhook endpoint.
func (c *Client) VerifyWebhook(payload []byte, sigHeader string) (stripego.Event, error) {
	if c.webhookSecret == "" {
		return stripego.Event{}, fmt.Errorf("stripe webhook secret is not configured")
	}
	return webhook.ConstructEventWithTolerance(payload, sigHeader, c.webhookSecret, c.webhookTolerance)
}
