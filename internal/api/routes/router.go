package routes

import (
	"net/http"

	"github.com/artisanconnect/booking-backend/internal/api/handlers"
	"github.com/artisanconnect/booking-backend/internal/api/middleware"
	"github.com/artisanconnect/booking-backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	serviceHandler      *handlers.ServiceHandler
	availabilityHandler *handlers.AvailabilityHandler
	bookingHandler      *handlers.BookingHandler

	stripeWebhookHandler *handlers.StripeWebhookHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	serviceHandler *handlers.ServiceHandler,
	availabilityHandler *handlers.AvailabilityHandler,
	bookingHandler *handlers.BookingHandler,
	stripeWebhookHandler *handlers.StripeWebhookHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		serviceHandler:      serviceHandler,
		availabilityHandler: availabilityHandler,
		bookingHandler:      bookingHandler,

		stripeWebhookHandler: stripeWebhookHandler,

		metrics: metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Service catalog endpoints
	r.mux.HandleFunc("GET /api/v1/services", r.serviceHandler.ListServices)

	// Availability endpoint
	r.mux.HandleFunc("GET /api/v1/availability", r.availabilityHandler.GetAvailability)

	// Booking endpoints
	r.mux.HandleFunc("POST /api/v1/bookings", r.bookingHandler.CreateBooking)
	r.mux.HandleFunc("GET /api/v1/bookings", r.bookingHandler.GetBooking)
	r.mux.HandleFunc("POST /api/v1/bookings/{code}/cancel", r.bookingHandler.CancelBooking)
	r.mux.HandleFunc("POST /api/v1/bookings/{code}/reschedule", r.bookingHandler.RescheduleBooking)

	// Stripe webhook endpoint for deposit payment notifications
	if r.stripeWebhookHandler != nil {
		r.mux.HandleFunc("POST /api/v1/webhooks/stripe", r.stripeWebhookHandler.HandleWebhook)
	}

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so error responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	if r.metrics != nil {
		handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	}
	handler = middleware.CORSMiddleware(handler)

	return handler
}
