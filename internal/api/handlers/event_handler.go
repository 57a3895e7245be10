package handlers

import (
	"net/http"
	"strconv"

	"github.com/confspotter/confspotter-be/internal/auth"
	"github.com/confspotter/confspotter-be/internal/services"
)

// EventHandler handles HTTP requests related to activity and notifications.
type EventHandler struct {
	service services.EventServiceProvider
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(service services.EventServiceProvider) *EventHandler {
	return &EventHandler{service: service}
}

// GetRecent handles the request to get the caller's recent events.
func (h *EventHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.ClaimsFromContext(r.Context())
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Missing auth token")
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 20 // Default limit
	}

	events, err := h.service.GetRecentEvents(r.Context(), &claims.UserID, limit)
	if err != nil {
		writeServiceError(w, err, "Failed to retrieve events")
		return
	}
	writeJSON(w, http.StatusOK, events)
}
