// Package importer loads scraped conference listings from CSV.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/confspotter/confspotter-be/internal/models"
	"github.com/confspotter/confspotter-be/internal/services"
	"github.com/rs/zerolog/log"
)

const (
	maxNameLength        = 255
	maxDescriptionLength = 500
)

// Columns is the header the scraper writes.
var Columns = []string{"source", "name", "link", "year", "location", "start_date", "end_date"}

// ErrSkipRow marks a row that cannot become a conference.
var ErrSkipRow = errors.New("row skipped")

// Store persists imported conferences. CreateConferenceIfAbsent reports
// false when a conference with the same name already exists.
type Store interface {
	CreateConferenceIfAbsent(ctx context.Context, conf models.Conference) (bool, error)
}

// Result summarises an import run.
type Result struct {
	Imported int
	Skipped  int
}

// Importer reads conference rows and writes them to a Store.
type Importer struct {
	store Store
}

// New creates an Importer backed by store.
func New(store Store) *Importer {
	return &Importer{store: store}
}

// Import reads CSV with a header row from r. Rows that are invalid or
// duplicate are counted as skipped; storage failures abort the run.
func (im *Importer) Import(ctx context.Context, r io.Reader) (Result, error) {
	var res Result

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return res, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	if _, ok := index["name"]; !ok {
		return res, fmt.Errorf("header has no name column: %w", services.ErrInvalidInput)
	}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Warn().Err(err).Int("line", line).Msg("Skipping unreadable row")
			res.Skipped++
			continue
		}

		row := make(map[string]string, len(index))
		for col, i := range index {
			if i < len(record) {
				row[col] = record[i]
			}
		}

		conf, err := ParseRow(row)
		if err != nil {
			log.Info().Err(err).Int("line", line).Str("name", conf.Name).Msg("Skipping row")
			res.Skipped++
			continue
		}

		created, err := im.store.CreateConferenceIfAbsent(ctx, conf)
		switch {
		case errors.Is(err, services.ErrInvalidInput):
			log.Info().Err(err).Int("line", line).Str("name", conf.Name).Msg("Skipping invalid conference")
			res.Skipped++
		case err != nil:
			return res, fmt.Errorf("store %q (line %d): %w", conf.Name, line, err)
		case !created:
			log.Info().Str("name", conf.Name).Msg("Skipped duplicate conference")
			res.Skipped++
		default:
			log.Debug().Str("name", conf.Name).Msg("Imported conference")
			res.Imported++
		}
	}
	return res, nil
}

// ParseRow turns one CSV row keyed by column name into a conference. The
// returned conference carries the cleaned name even when err is non-nil.
func ParseRow(row map[string]string) (models.Conference, error) {
	conf := models.Conference{
		Name:     CleanText(row["name"], maxNameLength),
		Location: CleanText(row["location"], 0),
		URL:      CleanText(row["link"], 0),
	}
	if conf.Name == "" {
		return conf, fmt.Errorf("missing name: %w", ErrSkipRow)
	}

	start := cleanDate(row["start_date"])
	end := cleanDate(row["end_date"])

	// A bare year stands in for unknown dates.
	if year := strings.TrimSpace(row["year"]); start == nil && len(year) == 4 {
		if y, err := strconv.Atoi(year); err == nil {
			s := time.Date(y, time.January, 1, 9, 0, 0, 0, time.UTC)
			start = &s
			if end == nil {
				e := time.Date(y, time.January, 1, 17, 0, 0, 0, time.UTC)
				end = &e
			}
		}
	}
	if start == nil || end == nil {
		return conf, fmt.Errorf("missing valid dates: %w", ErrSkipRow)
	}
	conf.StartDate = *start
	conf.EndDate = end

	var parts []string
	if source := CleanText(row["source"], 0); source != "" {
		parts = append(parts, "Source: "+source)
	}
	if conf.Location != "" {
		parts = append(parts, "Location: "+conf.Location)
	}
	if conf.URL != "" {
		parts = append(parts, "Link: "+conf.URL)
	}
	conf.Description = truncate(strings.Join(parts, " | "), maxDescriptionLength)

	return conf, nil
}

// CleanText collapses runs of whitespace into single spaces. A positive
// maxLen truncates the result, ending it with "...".
func CleanText(s string, maxLen int) string {
	cleaned := strings.Join(strings.Fields(s), " ")
	if maxLen > 0 {
		cleaned = truncate(cleaned, maxLen)
	}
	return cleaned
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

func cleanDate(s string) *time.Time {
	t, err := models.ParseOptionalDate(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return t
}
