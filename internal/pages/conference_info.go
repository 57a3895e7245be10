package pages

import (
	"context"
	"fmt"
	"strings"

	"github.com/confspotter/confspotter-be/internal/models"
)

// ConferenceInfo is the search screen with a detail panel and the papers
// of the selected conference. Message is its single status line.
type ConferenceInfo struct {
	Loading     bool
	Message     string
	Failed      bool
	Query       string
	Conferences []models.Conference
	Detail      *models.Conference
	Papers      []models.Paper

	api ConferenceAPI
}

// NewConferenceInfo creates the conference search page.
func NewConferenceInfo(api ConferenceAPI) *ConferenceInfo {
	return &ConferenceInfo{api: api}
}

func (p *ConferenceInfo) start(msg string) {
	p.Loading = true
	p.Failed = false
	p.Message = msg
}

func (p *ConferenceInfo) finish(msg string, failed bool) {
	p.Loading = false
	p.Failed = failed
	p.Message = msg
}

// ListAll loads every conference.
func (p *ConferenceInfo) ListAll(ctx context.Context) error {
	p.start("Loading...")
	confs, err := p.api.ListConferences(ctx, "")
	if err != nil {
		p.finish("Error fetching conferences", true)
		return err
	}
	p.Conferences = confs
	p.finish(fmt.Sprintf("%d total conferences", len(confs)), false)
	return nil
}

// Search asks the server for conferences matching Query.
func (p *ConferenceInfo) Search(ctx context.Context) error {
	p.start("Searching...")
	confs, err := p.api.ListConferences(ctx, strings.TrimSpace(p.Query))
	if err != nil {
		p.finish("Error searching conferences", true)
		return err
	}
	p.Conferences = confs
	p.finish(fmt.Sprintf("%d result(s)", len(confs)), false)
	return nil
}

// LoadDetail opens the detail panel for one conference.
func (p *ConferenceInfo) LoadDetail(ctx context.Context, id int64) error {
	p.start("Loading details...")
	conf, err := p.api.GetConference(ctx, id)
	if err != nil {
		p.finish("Error loading details", true)
		return err
	}
	p.Detail = &conf
	p.finish("", false)
	return nil
}

// LoadPapers lists the papers submitted to a conference.
func (p *ConferenceInfo) LoadPapers(ctx context.Context, conferenceID int64) error {
	p.start("Loading papers...")
	papers, err := p.api.ListPapers(ctx, conferenceID)
	if err != nil {
		p.finish("Failed to fetch papers", true)
		return err
	}
	p.Papers = papers
	p.finish(fmt.Sprintf("%d paper(s)", len(papers)), false)
	return nil
}

// HideDetail closes the detail panel.
func (p *ConferenceInfo) HideDetail() {
	p.Detail = nil
	p.Papers = nil
}
