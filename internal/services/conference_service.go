package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/confspotter/confspotter-be/internal/models"
)

// ConferenceServiceProvider defines the interface for conference services.
type ConferenceServiceProvider interface {
	ListConferences(ctx context.Context, query string) ([]models.Conference, error)
	GetConference(ctx context.Context, id int64) (models.Conference, error)
	CreateConference(ctx context.Context, conf models.Conference) (models.Conference, error)
	CreateConferenceIfAbsent(ctx context.Context, conf models.Conference) (bool, error)
	CountConferences(ctx context.Context) (int, error)
}

// ConferenceService provides business logic for conference records.
type ConferenceService struct {
	db *sql.DB
}

// NewConferenceService creates a new ConferenceService.
func NewConferenceService(db *sql.DB) *ConferenceService {
	return &ConferenceService{db: db}
}

const conferenceColumns = `id, name, acronym, location, start_date, end_date, url, description, paper_deadline, created_at`

// ListConferences returns conferences ordered by start date. A non-empty query
// keeps only conferences whose name, acronym or location contains it,
// ignoring case.
func (s *ConferenceService) ListConferences(ctx context.Context, query string) ([]models.Conference, error) {
	q := strings.TrimSpace(query)

	var (
		rows *sql.Rows
		err  error
	)
	if q == "" {
		rows, err = s.db.QueryContext(ctx, `SELECT `+conferenceColumns+` FROM conferences ORDER BY start_date ASC, id ASC`)
	} else {
		pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
		rows, err = s.db.QueryContext(ctx, `
			SELECT `+conferenceColumns+` FROM conferences
			WHERE lower(name) LIKE ? ESCAPE '\'
			   OR lower(acronym) LIKE ? ESCAPE '\'
			   OR lower(location) LIKE ? ESCAPE '\'
			ORDER BY start_date ASC, id ASC`, pattern, pattern, pattern)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanConferences(rows)
}

// GetConference retrieves a single conference by its ID.
func (s *ConferenceService) GetConference(ctx context.Context, id int64) (models.Conference, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+conferenceColumns+` FROM conferences WHERE id = ?`, id)
	conf, err := scanConference(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Conference{}, fmt.Errorf("conference %d: %w", id, ErrNotFound)
		}
		return models.Conference{}, err
	}
	return conf, nil
}

// CreateConference validates and stores a new conference.
func (s *ConferenceService) CreateConference(ctx context.Context, conf models.Conference) (models.Conference, error) {
	if err := validateConference(&conf); err != nil {
		return models.Conference{}, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO conferences (name, acronym, location, start_date, end_date, url, description, paper_deadline, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		conf.Name, conf.Acronym, conf.Location, conf.StartDate, conf.EndDate, conf.URL, conf.Description, conf.PaperDeadline, time.Now().UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return models.Conference{}, fmt.Errorf("conference %q: %w", conf.Name, ErrConflict)
		}
		return models.Conference{}, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.Conference{}, err
	}
	return s.GetConference(ctx, id)
}

// CreateConferenceIfAbsent stores the conference unless one with the same name
// exists. It reports whether a row was inserted.
func (s *ConferenceService) CreateConferenceIfAbsent(ctx context.Context, conf models.Conference) (bool, error) {
	if err := validateConference(&conf); err != nil {
		return false, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO conferences (name, acronym, location, start_date, end_date, url, description, paper_deadline, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		conf.Name, conf.Acronym, conf.Location, conf.StartDate, conf.EndDate, conf.URL, conf.Description, conf.PaperDeadline, time.Now().UTC())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SetPaperDeadline records the paper submission deadline of a conference.
func (s *ConferenceService) SetPaperDeadline(ctx context.Context, id int64, deadline time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE conferences SET paper_deadline = ? WHERE id = ?`, deadline.UTC(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("conference %d: %w", id, ErrNotFound)
	}
	return nil
}

// CountConferences returns the number of stored conferences.
func (s *ConferenceService) CountConferences(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM conferences`).Scan(&n)
	return n, err
}

func validateConference(conf *models.Conference) error {
	conf.Name = strings.TrimSpace(conf.Name)
	conf.Acronym = strings.TrimSpace(conf.Acronym)
	conf.Location = strings.TrimSpace(conf.Location)
	conf.URL = strings.TrimSpace(conf.URL)

	if conf.Name == "" {
		return fmt.Errorf("conference name is required: %w", ErrInvalidInput)
	}
	if conf.StartDate.IsZero() {
		return fmt.Errorf("conference start date is required: %w", ErrInvalidInput)
	}
	if conf.EndDate != nil && conf.EndDate.Before(conf.StartDate) {
		return fmt.Errorf("conference end date precedes start date: %w", ErrInvalidInput)
	}

	// Stored in UTC so that text ordering in SQLite matches time ordering.
	conf.StartDate = conf.StartDate.UTC()
	conf.EndDate = utcPtr(conf.EndDate)
	conf.PaperDeadline = utcPtr(conf.PaperDeadline)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConference(row rowScanner) (models.Conference, error) {
	var c models.Conference
	var createdAt sql.NullTime
	err := row.Scan(&c.ID, &c.Name, &c.Acronym, &c.Location, &c.StartDate, &c.EndDate, &c.URL, &c.Description, &c.PaperDeadline, &createdAt)
	if err != nil {
		return models.Conference{}, err
	}
	c.CreatedAt = createdAt.Time
	return c, nil
}

func scanConferences(rows *sql.Rows) ([]models.Conference, error) {
	conferences := []models.Conference{}
	for rows.Next() {
		c, err := scanConference(rows)
		if err != nil {
			return nil, err
		}
		conferences = append(conferences, c)
	}
	return conferences, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
