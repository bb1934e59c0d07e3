package handlers

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/artisanconnect/booking-backend/pkg/errors"
)

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, code, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"code":  code,
		"error": message,
	})
}

// respondWithAppError maps the application error taxonomy onto HTTP status
// codes. Unknown errors never leak their message to the client.
func respondWithAppError(w http.ResponseWriter, err error) {
	kind := apperrors.KindOf(err)

	var message string
	if e, ok := err.(*apperrors.AppError); ok {
		message = e.Message
	}

	switch kind {
	case apperrors.KindServiceNotFound, apperrors.KindBookingNotFound:
		respondWithError(w, http.StatusNotFound, string(kind), message)
	case apperrors.KindSlotUnavailable, apperrors.KindBookingAlreadyCancelled:
		respondWithError(w, http.StatusConflict, string(kind), message)
	case apperrors.KindInvalidBookingData:
		respondWithError(w, http.StatusBadRequest, string(kind), message)
	default:
		respondWithError(w, http.StatusInternalServerError, string(apperrors.KindInternal), "internal server error")
	}
}
