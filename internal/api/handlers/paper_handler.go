package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/confspotter/confspotter-be/internal/models"
	"github.com/confspotter/confspotter-be/internal/services"
	"github.com/rs/zerolog/log"
)

// PaperHandler handles HTTP requests for papers.
type PaperHandler struct {
	service services.PaperServiceProvider
}

// NewPaperHandler creates a new PaperHandler.
func NewPaperHandler(service services.PaperServiceProvider) *PaperHandler {
	return &PaperHandler{service: service}
}

// PaperPayload is the body accepted when submitting a paper.
type PaperPayload struct {
	Title        string  `json:"title"`
	Abstract     string  `json:"abstract"`
	Type         string  `json:"type"`
	DueDate      string  `json:"due_date"`
	PersonID     flexInt `json:"person_id"`
	ConferenceID flexInt `json:"conference_id"`
}

// flexInt decodes a JSON number or a numeric string; form inputs send the latter.
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("expected integer, got %s", b)
	}
	*f = flexInt(n)
	return nil
}

// GetAll lists papers, optionally for one conference via ?conferenceId=.
func (h *PaperHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("conferenceId")
	if raw == "" {
		raw = r.URL.Query().Get("conference_id")
	}

	var conferenceID int64
	if raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			WriteError(w, http.StatusBadRequest, "Invalid conferenceId")
			return
		}
		conferenceID = id
	}

	papers, err := h.service.ListPapers(r.Context(), conferenceID)
	if err != nil {
		writeServiceError(w, err, "Failed to retrieve papers")
		return
	}
	writeJSON(w, http.StatusOK, papers)
}

// Get handles retrieving a single paper.
func (h *PaperHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	paper, err := h.service.GetPaper(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "Failed to retrieve paper")
		return
	}
	writeJSON(w, http.StatusOK, paper)
}

// Create handles paper submission.
func (h *PaperHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload PaperPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	due, err := models.ParseOptionalDate(payload.DueDate)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	paper, err := h.service.CreatePaper(r.Context(), models.Paper{
		Title:        payload.Title,
		Abstract:     payload.Abstract,
		Type:         payload.Type,
		DueDate:      due,
		PersonID:     int64(payload.PersonID),
		ConferenceID: int64(payload.ConferenceID),
	})
	if err != nil {
		writeServiceError(w, err, "Failed to create paper")
		return
	}
	log.Info().Int64("paper_id", paper.ID).Int64("conference_id", paper.ConferenceID).Msg("Paper submitted")
	writeJSON(w, http.StatusCreated, paper)
}
