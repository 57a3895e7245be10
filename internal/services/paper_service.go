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

// PaperServiceProvider defines the interface for paper services.
type PaperServiceProvider interface {
	ListPapers(ctx context.Context, conferenceID int64) ([]models.Paper, error)
	GetPaper(ctx context.Context, id int64) (models.Paper, error)
	CreatePaper(ctx context.Context, paper models.Paper) (models.Paper, error)
}

// PaperService provides business logic for paper submissions.
type PaperService struct {
	db *sql.DB
}

// NewPaperService creates a new PaperService.
func NewPaperService(db *sql.DB) *PaperService {
	return &PaperService{db: db}
}

const paperColumns = `id, title, abstract, type, due_date, person_id, conference_id, created_at`

// ListPapers returns all papers, or only those of one conference when
// conferenceID is positive.
func (s *PaperService) ListPapers(ctx context.Context, conferenceID int64) ([]models.Paper, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if conferenceID > 0 {
		rows, err = s.db.QueryContext(ctx, `SELECT `+paperColumns+` FROM papers WHERE conference_id = ? ORDER BY id ASC`, conferenceID)
	} else {
		rows, err = s.db.QueryContext(ctx, `SELECT `+paperColumns+` FROM papers ORDER BY id ASC`)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	papers := []models.Paper{}
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

// GetPaper retrieves a single paper by its ID.
func (s *PaperService) GetPaper(ctx context.Context, id int64) (models.Paper, error) {
	p, err := scanPaper(s.db.QueryRowContext(ctx, `SELECT `+paperColumns+` FROM papers WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Paper{}, fmt.Errorf("paper %d: %w", id, ErrNotFound)
		}
		return models.Paper{}, err
	}
	return p, nil
}

// CreatePaper validates and stores a paper. The referenced person and
// conference must already exist.
func (s *PaperService) CreatePaper(ctx context.Context, paper models.Paper) (models.Paper, error) {
	paper.Title = strings.TrimSpace(paper.Title)
	paper.Abstract = strings.TrimSpace(paper.Abstract)
	paper.Type = strings.TrimSpace(paper.Type)

	if paper.Title == "" || paper.Abstract == "" || paper.PersonID <= 0 || paper.ConferenceID <= 0 {
		return models.Paper{}, fmt.Errorf("title, abstract, person_id and conference_id are required: %w", ErrInvalidInput)
	}
	if err := s.mustExist(ctx, "users", paper.PersonID); err != nil {
		return models.Paper{}, fmt.Errorf("person %d does not exist: %w", paper.PersonID, err)
	}
	if err := s.mustExist(ctx, "conferences", paper.ConferenceID); err != nil {
		return models.Paper{}, fmt.Errorf("conference %d does not exist: %w", paper.ConferenceID, err)
	}

	paper.DueDate = utcPtr(paper.DueDate)
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO papers (title, abstract, type, due_date, person_id, conference_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		paper.Title, paper.Abstract, paper.Type, paper.DueDate, paper.PersonID, paper.ConferenceID, time.Now().UTC())
	if err != nil {
		return models.Paper{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Paper{}, err
	}
	return s.GetPaper(ctx, id)
}

// mustExist returns ErrInvalidInput when no row with the given id exists.
// table is always a constant supplied by this package.
func (s *PaperService) mustExist(ctx context.Context, table string, id int64) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM `+table+` WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrInvalidInput
	}
	return err
}

func scanPaper(row rowScanner) (models.Paper, error) {
	var p models.Paper
	var createdAt sql.NullTime
	if err := row.Scan(&p.ID, &p.Title, &p.Abstract, &p.Type, &p.DueDate, &p.PersonID, &p.ConferenceID, &createdAt); err != nil {
		return models.Paper{}, err
	}
	p.CreatedAt = createdAt.Time
	return p, nil
}
