package handlers

import (
	"net/http"

	"github.com/artisanconnect/booking-backend/internal/application/services"
	"github.com/artisanconnect/booking-backend/internal/domain/repositories"
	apperrors "github.com/artisanconnect/booking-backend/pkg/errors"
)

// AvailabilityHandler handles slot availability HTTP requests
type AvailabilityHandler struct {
	serviceRepo         repositories.ServiceRepository
	availabilityService *services.AvailabilityService
}

// NewAvailabilityHandler creates a new availability handler
func NewAvailabilityHandler(serviceRepo repositories.ServiceRepository, availabilityService *services.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{
		serviceRepo:         serviceRepo,
		availabilityService: availabilityService,
	}
}

// GetAvailability handles GET /api/v1/availability?serviceId=&date=
func (h *AvailabilityHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	serviceID := r.URL.Query().Get("serviceId")
	date := r.URL.Query().Get("date")
	if serviceID == "" || date == "" {
		respondWithError(w, http.StatusBadRequest, string(apperrors.KindInvalidBookingData), "serviceId and date query parameters are required")
		return
	}

	service, err := h.serviceRepo.FindByID(r.Context(), serviceID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	if !service.IsActive {
		respondWithAppError(w, apperrors.NewServiceNotFoundError("service is no longer offered"))
		return
	}

	availability, err := h.availabilityService.ComputeAvailability(r.Context(), services.AvailabilityRequest{
		ProviderID:      service.ProviderID,
		ServiceID:       service.ID,
		DurationMinutes: service.DurationMinutes,
		Date:            date,
	})
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, availability)
}
