package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	stripego "github.com/stripe/stripe-go/v79"

	"github.com/artisanconnect/booking-backend/internal/application/services"
	"github.com/artisanconnect/booking-backend/internal/domain/entities"
	"github.com/artisanconnect/booking-backend/internal/infrastructure/observability"
	apperrors "github.com/artisanconnect/booking-backend/pkg/errors"
)

const maxWebhookBodyBytes = 64 * 1024

// WebhookVerifier authenticates a raw webhook payload against its signature
// header and returns the decoded event.
type WebhookVerifier interface {
	VerifyWebhook(payload []byte, sigHeader string) (stripego.Event, error)
}

// StripeWebhookHandler receives Stripe webhook notifications and forwards
// verified payment events to the sync service.
type StripeWebhookHandler struct {
	verifier    WebhookVerifier
	paymentSync *services.PaymentSyncService
}

// NewStripeWebhookHandler creates a new Stripe webhook handler
func NewStripeWebhookHandler(verifier WebhookVerifier, paymentSync *services.PaymentSyncService) *StripeWebhookHandler {
	return &StripeWebhookHandler{
		verifier:    verifier,
		paymentSync: paymentSync,
	}
}

// HandleWebhook handles POST /api/v1/webhooks/stripe
func (h *StripeWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	logger := observability.LoggerFromContext(r.Context())

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, string(apperrors.KindInvalidBookingData), "failed to read request body")
		return
	}

	event, err := h.verifier.VerifyWebhook(body, r.Header.Get("Stripe-Signature"))
	if err != nil {
		logger.Warn().Err(err).Msg("stripe webhook signature verification failed")
		respondWithError(w, http.StatusUnauthorized, string(apperrors.KindInvalidBookingData), "invalid webhook signature")
		return
	}

	var intent stripego.PaymentIntent
	if len(event.Data.Raw) > 0 {
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			logger.Warn().Err(err).Str("event_id", event.ID).Msg("failed to decode webhook event object")
			respondWithError(w, http.StatusBadRequest, string(apperrors.KindInvalidBookingData), "invalid event payload")
			return
		}
	}

	paymentEvent := &entities.PaymentEvent{
		ID:              event.ID,
		Type:            string(event.Type),
		PaymentIntentID: intent.ID,
	}

	booking, err := h.paymentSync.ApplyPaymentEvent(r.Context(), paymentEvent)
	if err != nil {
		// A replayed or test-mode intent with no matching booking is not a
		// delivery failure; acknowledge so Stripe stops retrying.
		if apperrors.Is(err, apperrors.KindBookingNotFound) {
			logger.Warn().
				Str("event_id", event.ID).
				Str("payment_intent_id", intent.ID).
				Msg("payment event matched no booking")
			respondWithJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
			return
		}
		respondWithAppError(w, err)
		return
	}

	status := "ignored"
	if booking != nil {
		status = "processed"
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": status})
}
