package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/nestegg/backend/internal/apperror"
	"github.com/nestegg/backend/internal/logger"
	"github.com/nestegg/backend/internal/service"
)

// ErrorResponse represents a JSON error response body.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// respondJSON writes a JSON response with the given status code.
// It sets the Content-Type header to application/json.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// respondError writes a JSON error response with the given status code and message.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondAppError writes a JSON error response from an AppError.
// The wrapped cause of a 5xx is logged but never sent to the client.
func respondAppError(w http.ResponseWriter, err *apperror.AppError) {
	if err.StatusCode >= http.StatusInternalServerError && err.Err != nil {
		logger.Error("internal error", "error", err.Err)
	}
	respondJSON(w, err.StatusCode, ErrorResponse{Error: err.Message, Field: err.Field})
}

// respondServiceError maps service and repository errors onto HTTP statuses.
// Repository sentinels carry their own status via apperror; service validation
// sentinels are mapped here; anything else becomes an opaque 500.
func respondServiceError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	switch {
	case errors.As(err, &appErr):
		respondAppError(w, appErr)
	case errors.Is(err, service.ErrGoalNameRequired),
		errors.Is(err, service.ErrInvalidTarget),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidFrequency),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrInvalidEmail):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrGoalCompleted),
		errors.Is(err, service.ErrEmailTaken):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, err.Error())
	default:
		respondAppError(w, apperror.Internal(err))
	}
}

// parseLimitQuery reads a positive ?limit= value, or 0 when absent or invalid.
func parseLimitQuery(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
