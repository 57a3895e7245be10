package pages

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/confspotter/confspotter-be/internal/client"
	"github.com/confspotter/confspotter-be/internal/models"
)

// PaperForm holds the raw form inputs; ids arrive as text.
type PaperForm struct {
	Title        string
	Abstract     string
	Type         string
	PersonID     string
	ConferenceID string
}

// PaperPage lists papers and submits new ones.
type PaperPage struct {
	Status
	Form   PaperForm
	Papers []models.Paper

	api PaperAPI
}

// NewPaperPage creates the paper page.
func NewPaperPage(api PaperAPI) *PaperPage {
	return &PaperPage{api: api}
}

// Load fetches every paper.
func (p *PaperPage) Load(ctx context.Context) error {
	p.begin()
	papers, err := p.api.ListPapers(ctx, 0)
	if err != nil {
		p.fail("Error loading papers")
		return err
	}
	p.Papers = papers
	p.Loading = false
	return nil
}

// Submit validates and sends the form, then reloads the list.
func (p *PaperPage) Submit(ctx context.Context) (models.Paper, error) {
	f := p.Form
	title, abstract := strings.TrimSpace(f.Title), strings.TrimSpace(f.Abstract)
	if title == "" || abstract == "" || strings.TrimSpace(f.PersonID) == "" || strings.TrimSpace(f.ConferenceID) == "" {
		p.fail("All fields are required")
		return models.Paper{}, errors.New(p.Error)
	}

	personID, err1 := strconv.ParseInt(strings.TrimSpace(f.PersonID), 10, 64)
	conferenceID, err2 := strconv.ParseInt(strings.TrimSpace(f.ConferenceID), 10, 64)
	if err1 != nil || err2 != nil || personID <= 0 || conferenceID <= 0 {
		p.fail("Person ID and Conference ID must be positive numbers")
		return models.Paper{}, errors.New(p.Error)
	}

	p.begin()
	paper, err := p.api.CreatePaper(ctx, client.PaperRequest{
		Title:        title,
		Abstract:     abstract,
		Type:         strings.TrimSpace(f.Type),
		PersonID:     personID,
		ConferenceID: conferenceID,
	})
	if err != nil {
		p.fail(messageFor(err, "Error creating paper"))
		return models.Paper{}, err
	}

	p.Form = PaperForm{}
	if err := p.Load(ctx); err != nil {
		return paper, err
	}
	p.succeed("Paper added successfully!")
	return paper, nil
}
