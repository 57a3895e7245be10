// Package pages holds the state and actions behind each client screen.
// Every action issues at most one API call and records its outcome in the
// page's loading flag and message fields.
package pages

import (
	"context"

	"github.com/confspotter/confspotter-be/internal/client"
	"github.com/confspotter/confspotter-be/internal/models"
	"github.com/confspotter/confspotter-be/internal/session"
)

// AuthAPI covers account calls.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (client.LoginResult, error)
	SignUp(ctx context.Context, req client.SignUpRequest) (models.User, error)
}

// ConferenceAPI covers conference lookups.
type ConferenceAPI interface {
	ListConferences(ctx context.Context, query string) ([]models.Conference, error)
	GetConference(ctx context.Context, id int64) (models.Conference, error)
	ListPapers(ctx context.Context, conferenceID int64) ([]models.Paper, error)
}

// PaperAPI covers paper listing and submission.
type PaperAPI interface {
	ListPapers(ctx context.Context, conferenceID int64) ([]models.Paper, error)
	CreatePaper(ctx context.Context, req client.PaperRequest) (models.Paper, error)
}

// DashboardAPI covers the dashboard's conference and favorite calls.
type DashboardAPI interface {
	ListConferences(ctx context.Context, query string) ([]models.Conference, error)
	ListFavorites(ctx context.Context, userID int64) ([]models.Conference, error)
	AddFavorite(ctx context.Context, userID, conferenceID int64) error
	RemoveFavorite(ctx context.Context, userID, conferenceID int64) error
}

// SessionStore persists the logged-in user.
type SessionStore interface {
	Save(sess session.Session) error
	Load() (session.Session, error)
	Clear() error
}

// Status is the loading flag and banner text shared by the form pages.
// At most one of Error and Success is set.
type Status struct {
	Loading bool
	Error   string
	Success string
}

func (s *Status) begin() {
	s.Loading = true
	s.Error = ""
	s.Success = ""
}

func (s *Status) fail(msg string) {
	s.Loading = false
	s.Error = msg
	s.Success = ""
}

func (s *Status) succeed(msg string) {
	s.Loading = false
	s.Error = ""
	s.Success = msg
}

// messageFor prefers the server's message over fallback.
func messageFor(err error, fallback string) string {
	if msg := client.ServerMessage(err); msg != "" {
		return msg
	}
	return fallback
}
