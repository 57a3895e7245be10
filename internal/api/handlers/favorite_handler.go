package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/confspotter/confspotter-be/internal/services"
	"github.com/go-chi/chi/v5"
)

// FavoriteHandler handles starring conferences and interest-based lookups.
type FavoriteHandler struct {
	favorites       services.FavoriteServiceProvider
	recommendations services.RecommendationServiceProvider
	deadlineDays    int
	now             func() time.Time
}

// NewFavoriteHandler creates a new FavoriteHandler. deadlineDays is the
// default window for /deadlines.
func NewFavoriteHandler(favorites services.FavoriteServiceProvider, recommendations services.RecommendationServiceProvider, deadlineDays int) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites, recommendations: recommendations, deadlineDays: deadlineDays, now: time.Now}
}

// List returns the user's starred conferences.
func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := selfParam(w, r)
	if !ok {
		return
	}
	favs, err := h.favorites.ListFavorites(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "Failed to retrieve favorites")
		return
	}
	writeJSON(w, http.StatusOK, favs)
}

// Add stars a conference. The conference id comes from the path or from a
// {"conference_id": n} body.
func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := selfParam(w, r)
	if !ok {
		return
	}

	var conferenceID int64
	if chi.URLParam(r, "cid") != "" {
		if conferenceID, ok = idParam(w, r, "cid"); !ok {
			return
		}
	} else {
		var payload struct {
			ConferenceID flexInt `json:"conference_id"`
		}
		if !decodeJSON(w, r, &payload) {
			return
		}
		if conferenceID = int64(payload.ConferenceID); conferenceID <= 0 {
			WriteError(w, http.StatusBadRequest, "conference_id is required")
			return
		}
	}

	if err := h.favorites.AddFavorite(r.Context(), userID, conferenceID); err != nil {
		writeServiceError(w, err, "Failed to add favorite")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"user_id": userID, "conference_id": conferenceID})
}

// Remove unstars a conference.
func (h *FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := selfParam(w, r)
	if !ok {
		return
	}
	conferenceID, ok := idParam(w, r, "cid")
	if !ok {
		return
	}
	if err := h.favorites.RemoveFavorite(r.Context(), userID, conferenceID); err != nil {
		writeServiceError(w, err, "Failed to remove favorite")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Recommendations returns conferences matching the user's interests.
func (h *FavoriteHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := selfParam(w, r)
	if !ok {
		return
	}
	recs, err := h.recommendations.Recommend(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "Failed to compute recommendations")
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// Deadlines returns matching conferences with a paper deadline in the next ?days= days.
func (h *FavoriteHandler) Deadlines(w http.ResponseWriter, r *http.Request) {
	userID, ok := selfParam(w, r)
	if !ok {
		return
	}

	days := h.deadlineDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			WriteError(w, http.StatusBadRequest, "Invalid days")
			return
		}
		days = n
	}

	recs, err := h.recommendations.UpcomingDeadlines(r.Context(), userID, h.now(), days)
	if err != nil {
		writeServiceError(w, err, "Failed to compute deadlines")
		return
	}
	writeJSON(w, http.StatusOK, recs)
}
