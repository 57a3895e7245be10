package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/confspotter/confspotter-be/internal/models"
)

// FavoriteServiceProvider defines the interface for starring conferences.
type FavoriteServiceProvider interface {
	ListFavorites(ctx context.Context, userID int64) ([]models.Conference, error)
	AddFavorite(ctx context.Context, userID, conferenceID int64) error
	RemoveFavorite(ctx context.Context, userID, conferenceID int64) error
}

// FavoriteService persists user-to-conference bookmarks.
type FavoriteService struct {
	db *sql.DB
}

// NewFavoriteService creates a new FavoriteService.
func NewFavoriteService(db *sql.DB) *FavoriteService {
	return &FavoriteService{db: db}
}

// ListFavorites returns the user's starred conferences ordered by start date.
func (s *FavoriteService) ListFavorites(ctx context.Context, userID int64) ([]models.Conference, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.acronym, c.location, c.start_date, c.end_date, c.url, c.description, c.paper_deadline, c.created_at
		FROM favorites f JOIN conferences c ON c.id = f.conference_id
		WHERE f.user_id = ?
		ORDER BY c.start_date ASC, c.id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanConferences(rows)
}

// AddFavorite stars a conference for the user. Starring twice is a no-op.
func (s *FavoriteService) AddFavorite(ctx context.Context, userID, conferenceID int64) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM conferences WHERE id = ?`, conferenceID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("conference %d: %w", conferenceID, ErrNotFound)
	}
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO favorites (user_id, conference_id, created_at) VALUES (?, ?, ?)`,
		userID, conferenceID, time.Now().UTC())
	return err
}

// RemoveFavorite unstars a conference. It returns ErrNotFound when the
// conference was not starred.
func (s *FavoriteService) RemoveFavorite(ctx context.Context, userID, conferenceID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = ? AND conference_id = ?`, userID, conferenceID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("favorite %d/%d: %w", userID, conferenceID, ErrNotFound)
	}
	return nil
}
