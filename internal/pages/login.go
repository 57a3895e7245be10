package pages

import (
	"context"
	"errors"
	"strings"

	"github.com/confspotter/confspotter-be/internal/models"
	"github.com/confspotter/confspotter-be/internal/session"
)

// LoginPage is the email and password form.
type LoginPage struct {
	Status
	Email    string
	Password string

	api   AuthAPI
	store SessionStore
}

// NewLoginPage creates a login page that saves the session to store.
func NewLoginPage(api AuthAPI, store SessionStore) *LoginPage {
	return &LoginPage{api: api, store: store}
}

// Submit logs in and persists the session. The password is cleared
// whatever the outcome.
func (p *LoginPage) Submit(ctx context.Context) (models.User, error) {
	defer func() { p.Password = "" }()

	email := strings.TrimSpace(p.Email)
	if email == "" || p.Password == "" {
		p.fail("Email and password are required.")
		return models.User{}, errors.New(p.Error)
	}

	p.begin()
	res, err := p.api.Login(ctx, email, p.Password)
	if err != nil {
		p.fail(messageFor(err, "Unable to log in. Please try again."))
		return models.User{}, err
	}
	if err := p.store.Save(session.Session{Token: res.Token, User: res.User}); err != nil {
		p.fail("Logged in, but the session could not be saved.")
		return res.User, err
	}

	p.succeed("Welcome back, " + res.User.Username + "!")
	return res.User, nil
}
