package webapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"akari/models"

	log "github.com/sirupsen/logrus"
)

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.WithError(err).Error("Failed to encode JSON response")
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondServiceError classifies a service error and writes the matching
// HTTP response. Internal error detail is logged, never echoed.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, models.ErrInvalidArgument):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrInvalidState):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrUnauthorized):
		respondError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, models.ErrInsufficientBalance):
		respondError(w, http.StatusUnprocessableEntity, "insufficient balance")
	default:
		log.WithError(err).Error("Unhandled service error")
		respondError(w, http.StatusInternalServerError, "something went wrong")
	}
}
