package handlers

import (
	"net/http"

	"github.com/artisanconnect/booking-backend/internal/domain/repositories"
)

// ServiceHandler handles service catalog HTTP requests
type ServiceHandler struct {
	serviceRepo repositories.ServiceRepository
}

// NewServiceHandler creates a new service handler
func NewServiceHandler(serviceRepo repositories.ServiceRepository) *ServiceHandler {
	return &ServiceHandler{
		serviceRepo: serviceRepo,
	}
}

// ListServices handles GET /api/v1/services
func (h *ServiceHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.serviceRepo.ListActive(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"services": services,
		"count":    len(services),
	})
}
