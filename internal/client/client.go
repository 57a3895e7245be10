// Package client is a typed HTTP client for the ConfSpotter API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/confspotter/confspotter-be/internal/models"
)

// APIError is a non-2xx response. Message carries the server's message
// field when the body had one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("api error: %d %s", e.StatusCode, e.Message)
}

// ServerMessage returns the server-provided message of an *APIError in
// err's chain, or "" when there is none.
func ServerMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// Client talks to one API base URL. Requests go to the /api prefix.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// New creates a Client for baseURL, e.g. http://localhost:5001.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/") + "/api",
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken replaces the bearer token; an empty token sends none.
func (c *Client) SetToken(token string) { c.token = token }

// SignUpRequest is the body of a registration.
type SignUpRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Password  string `json:"password"`
	Interest1 string `json:"interest_1,omitempty"`
	Interest2 string `json:"interest_2,omitempty"`
	Interest3 string `json:"interest_3,omitempty"`
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// PaperRequest is the body of a paper submission.
type PaperRequest struct {
	Title        string `json:"title"`
	Abstract     string `json:"abstract"`
	Type         string `json:"type,omitempty"`
	PersonID     int64  `json:"person_id"`
	ConferenceID int64  `json:"conference_id"`
}

// ListConferences returns every conference, or those matching query.
func (c *Client) ListConferences(ctx context.Context, query string) ([]models.Conference, error) {
	path := "/conferences"
	if q := strings.TrimSpace(query); q != "" {
		path += "?query=" + url.QueryEscape(q)
	}
	var out []models.Conference
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// GetConference returns a single conference.
func (c *Client) GetConference(ctx context.Context, id int64) (models.Conference, error) {
	var out models.Conference
	err := c.do(ctx, http.MethodGet, "/conferences/"+itoa(id), nil, &out)
	return out, err
}

// ListPapers returns all papers, or those of one conference when
// conferenceID is positive.
func (c *Client) ListPapers(ctx context.Context, conferenceID int64) ([]models.Paper, error) {
	path := "/papers"
	if conferenceID > 0 {
		path += "?conferenceId=" + itoa(conferenceID)
	}
	var out []models.Paper
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// CreatePaper submits a paper.
func (c *Client) CreatePaper(ctx context.Context, req PaperRequest) (models.Paper, error) {
	var out models.Paper
	err := c.do(ctx, http.MethodPost, "/papers", req, &out)
	return out, err
}

// SignUp registers a new account.
func (c *Client) SignUp(ctx context.Context, req SignUpRequest) (models.User, error) {
	var out models.User
	err := c.do(ctx, http.MethodPost, "/users", req, &out)
	return out, err
}

// Login verifies credentials and keeps the returned token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var out LoginResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/users/verify-login", body, &out); err != nil {
		return LoginResult{}, err
	}
	c.token = out.Token
	return out, nil
}

// Me returns the user the current token belongs to.
func (c *Client) Me(ctx context.Context) (models.User, error) {
	var out models.User
	err := c.do(ctx, http.MethodGet, "/users/me", nil, &out)
	return out, err
}

// ListFavorites returns the user's starred conferences.
func (c *Client) ListFavorites(ctx context.Context, userID int64) ([]models.Conference, error) {
	var out []models.Conference
	err := c.do(ctx, http.MethodGet, "/users/"+itoa(userID)+"/favorites", nil, &out)
	return out, err
}

// AddFavorite stars a conference.
func (c *Client) AddFavorite(ctx context.Context, userID, conferenceID int64) error {
	return c.do(ctx, http.MethodPost, "/users/"+itoa(userID)+"/favorites/"+itoa(conferenceID), nil, nil)
}

// RemoveFavorite unstars a conference.
func (c *Client) RemoveFavorite(ctx context.Context, userID, conferenceID int64) error {
	return c.do(ctx, http.MethodDelete, "/users/"+itoa(userID)+"/favorites/"+itoa(conferenceID), nil, nil)
}

// Recommendations returns conferences matching the user's interests.
func (c *Client) Recommendations(ctx context.Context, userID int64) ([]models.Recommendation, error) {
	var out []models.Recommendation
	err := c.do(ctx, http.MethodGet, "/users/"+itoa(userID)+"/recommendations", nil, &out)
	return out, err
}

// Deadlines returns recommended conferences whose paper deadline falls in
// the next days days. Zero uses the server default.
func (c *Client) Deadlines(ctx context.Context, userID int64, days int) ([]models.Recommendation, error) {
	path := "/users/" + itoa(userID) + "/deadlines"
	if days > 0 {
		path += "?days=" + strconv.Itoa(days)
	}
	var out []models.Recommendation
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// RecentEvents returns the caller's latest notifications.
func (c *Client) RecentEvents(ctx context.Context, limit int) ([]models.Event, error) {
	path := "/events"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out []models.Event
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Message string `json:"message"`
		}
		if json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&payload) == nil {
			apiErr.Message = payload.Message
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
