package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/artisanconnect/booking-backend/internal/application/services"
	"github.com/artisanconnect/booking-backend/internal/domain/entities"
	apperrors "github.com/artisanconnect/booking-backend/pkg/errors"
)

// BookingHandler handles booking lifecycle HTTP requests
type BookingHandler struct {
	bookingService *services.BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingService *services.BookingService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
	}
}

type createBookingPayload struct {
	ServiceID string `json:"serviceId"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Customer  struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	} `json:"customer"`
	Notifications *entities.NotificationPrefs `json:"notifications"`
}

type reschedulePayload struct {
	Email   string `json:"email"`
	NewDate string `json:"newDate"`
	NewTime string `json:"newTime"`
}

// CreateBooking handles POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var payload createBookingPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, string(apperrors.KindInvalidBookingData), "invalid JSON body")
		return
	}

	booking, intent, err := h.bookingService.Create(r.Context(), services.CreateBookingRequest{
		ServiceID:     payload.ServiceID,
		Date:          payload.Date,
		Time:          payload.Time,
		CustomerName:  payload.Customer.Name,
		CustomerEmail: payload.Customer.Email,
		CustomerPhone: payload.Customer.Phone,
		Notifications: payload.Notifications,
	})
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	response := map[string]interface{}{
		"booking": booking,
	}
	if intent != nil {
		response["payment"] = intent
	}
	respondWithJSON(w, http.StatusCreated, response)
}

// GetBooking handles GET /api/v1/bookings?code=&email=
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	email := r.URL.Query().Get("email")
	if code == "" || email == "" {
		respondWithError(w, http.StatusBadRequest, string(apperrors.KindInvalidBookingData), "code and email query parameters are required")
		return
	}

	booking, err := h.bookingService.FindByCodeAndEmail(r.Context(), code, email)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"booking": booking})
}

// CancelBooking handles POST /api/v1/bookings/{code}/cancel
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	var payload struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, string(apperrors.KindInvalidBookingData), "invalid JSON body")
		return
	}

	booking, err := h.bookingService.Cancel(r.Context(), code, payload.Email)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"booking": booking})
}

// RescheduleBooking handles POST /api/v1/bookings/{code}/reschedule
func (h *BookingHandler) RescheduleBooking(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	var payload reschedulePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, string(apperrors.KindInvalidBookingData), "invalid JSON body")
		return
	}

	booking, err := h.bookingService.Reschedule(r.Context(), code, payload.Email, payload.NewDate, payload.NewTime)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"booking": booking})
}
