package handlers

import (
	"net/http"

	"github.com/confspotter/confspotter-be/internal/models"
	"github.com/confspotter/confspotter-be/internal/services"
	"github.com/rs/zerolog/log"
)

// ConferenceHandler handles HTTP requests for conferences.
type ConferenceHandler struct {
	service services.ConferenceServiceProvider
}

// NewConferenceHandler creates a new ConferenceHandler.
func NewConferenceHandler(service services.ConferenceServiceProvider) *ConferenceHandler {
	return &ConferenceHandler{service: service}
}

// ConferencePayload is the body accepted when creating a conference.
type ConferencePayload struct {
	Name          string `json:"name"`
	Acronym       string `json:"acronym"`
	Location      string `json:"location"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	URL           string `json:"url"`
	Description   string `json:"description"`
	PaperDeadline string `json:"paper_deadline"`
}

// GetAll lists conferences. Both ?search= and ?query= filter the list.
func (h *ConferenceHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("search")
	if q == "" {
		q = r.URL.Query().Get("query")
	}

	conferences, err := h.service.ListConferences(r.Context(), q)
	if err != nil {
		writeServiceError(w, err, "Failed to retrieve conferences")
		return
	}
	writeJSON(w, http.StatusOK, conferences)
}

// Get handles retrieving a single conference.
func (h *ConferenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	conf, err := h.service.GetConference(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "Failed to retrieve conference")
		return
	}
	writeJSON(w, http.StatusOK, conf)
}

// Create handles adding a conference.
func (h *ConferenceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload ConferencePayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	conf, err := payload.toModel()
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.service.CreateConference(r.Context(), conf)
	if err != nil {
		writeServiceError(w, err, "Failed to create conference")
		return
	}
	log.Info().Int64("conference_id", created.ID).Str("name", created.Name).Msg("Conference created")
	writeJSON(w, http.StatusCreated, created)
}

func (p ConferencePayload) toModel() (models.Conference, error) {
	conf := models.Conference{
		Name:        p.Name,
		Acronym:     p.Acronym,
		Location:    p.Location,
		URL:         p.URL,
		Description: p.Description,
	}

	start, err := models.ParseOptionalDate(p.StartDate)
	if err != nil {
		return conf, err
	}
	if start != nil {
		conf.StartDate = *start
	}
	if conf.EndDate, err = models.ParseOptionalDate(p.EndDate); err != nil {
		return conf, err
	}
	if conf.PaperDeadline, err = models.ParseOptionalDate(p.PaperDeadline); err != nil {
		return conf, err
	}
	return conf, nil
}
