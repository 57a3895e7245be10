package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/confspotter/confspotter-be/internal/auth"
	"github.com/confspotter/confspotter-be/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// WriteError writes a JSON error body with the given status.
func WriteError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Status: "error", Message: message})
}

// writeServiceError maps service sentinel errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound):
		WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrConflict):
		WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, "Invalid credentials")
	default:
		log.Error().Err(err).Msg(fallback)
		WriteError(w, http.StatusInternalServerError, fallback)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// idParam parses a positive integer URL parameter, writing 400 on failure.
func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// selfParam parses {id} and requires it to be the authenticated user.
func selfParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return 0, false
	}
	claims, err := auth.ClaimsFromContext(r.Context())
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Missing auth token")
		return 0, false
	}
	if claims.UserID != id {
		WriteError(w, http.StatusForbidden, "Cannot access another user's data")
		return 0, false
	}
	return id, true
}

// NotFound is the fallback for unknown routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusNotFound, "Endpoint not found")
}

// MethodNotAllowed is the fallback for known routes with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
}
