package scraper

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/confspotter/confspotter-be/internal/models"
	"github.com/rs/zerolog/log"
)

// ConferenceStore lists conferences and records their paper deadlines.
type ConferenceStore interface {
	ListConferences(ctx context.Context, query string) ([]models.Conference, error)
	SetPaperDeadline(ctx context.Context, id int64, deadline time.Time) error
}

// FoundDeadline is a deadline attributed to a stored conference.
type FoundDeadline struct {
	ConferenceID    int64
	ConferenceTitle string
	Deadline
}

// UpdateResult summarises a deadline update run.
type UpdateResult struct {
	Checked   int
	Updated   int
	Deadlines []FoundDeadline
}

// DeadlineUpdater scrapes the site of every stored conference and saves
// the next submission deadline it finds.
type DeadlineUpdater struct {
	scraper *DeadlineScraper
	store   ConferenceStore
	now     func() time.Time
}

// NewDeadlineUpdater creates a DeadlineUpdater.
func NewDeadlineUpdater(scraper *DeadlineScraper, store ConferenceStore) *DeadlineUpdater {
	return &DeadlineUpdater{scraper: scraper, store: store, now: time.Now}
}

// Run visits each conference that has a URL. Sites that cannot be read
// are logged and skipped; store failures end the run.
func (u *DeadlineUpdater) Run(ctx context.Context) (UpdateResult, error) {
	var res UpdateResult

	conferences, err := u.store.ListConferences(ctx, "")
	if err != nil {
		return res, err
	}

	for _, conf := range conferences {
		if conf.URL == "" {
			continue
		}
		log.Info().Int64("conference_id", conf.ID).Str("url", conf.URL).Msg("Fetching paper deadlines")

		deadlines, err := u.scraper.Scrape(ctx, conf.URL, conf.StartDate.Year())
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			log.Warn().Err(err).Int64("conference_id", conf.ID).Msg("Conference site unavailable")
			continue
		}
		res.Checked++
		for _, d := range deadlines {
			res.Deadlines = append(res.Deadlines, FoundDeadline{ConferenceID: conf.ID, ConferenceTitle: conf.Name, Deadline: d})
		}

		next, ok := NextDeadline(deadlines, u.now())
		if !ok || (conf.PaperDeadline != nil && conf.PaperDeadline.Equal(next.Date)) {
			continue
		}
		if err := u.store.SetPaperDeadline(ctx, conf.ID, next.Date); err != nil {
			return res, err
		}
		res.Updated++
		log.Info().Int64("conference_id", conf.ID).Str("type", next.Type).Time("deadline", next.Date).Msg("Paper deadline updated")
	}
	return res, nil
}

// DeadlineColumns is the header of the deadline report.
var DeadlineColumns = []string{"conference_id", "conference_title", "type", "deadline", "date", "source_url", "context"}

// WriteDeadlinesCSV writes the deadlines found by a run.
func WriteDeadlinesCSV(w io.Writer, deadlines []FoundDeadline) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(DeadlineColumns); err != nil {
		return err
	}
	for _, d := range deadlines {
		record := []string{
			strconv.FormatInt(d.ConferenceID, 10),
			d.ConferenceTitle,
			d.Type,
			d.Raw,
			d.Date.Format(isoDate),
			d.SourceURL,
			d.Context,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
