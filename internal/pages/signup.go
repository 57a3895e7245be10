package pages

import (
	"context"
	"errors"
	"strings"

	"github.com/confspotter/confspotter-be/internal/client"
	"github.com/confspotter/confspotter-be/internal/models"
)

// SignUpForm is the registration form.
type SignUpForm struct {
	Username        string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
	Interests       [3]string
}

// SignUpPage creates accounts.
type SignUpPage struct {
	Status
	Form SignUpForm

	api AuthAPI
}

// NewSignUpPage creates a sign-up page.
func NewSignUpPage(api AuthAPI) *SignUpPage {
	return &SignUpPage{api: api}
}

// Submit validates the form and registers the account. On success the
// form is reset.
func (p *SignUpPage) Submit(ctx context.Context) (models.User, error) {
	f := p.Form
	if f.Password != f.ConfirmPassword {
		p.fail("Passwords do not match.")
		return models.User{}, errors.New(p.Error)
	}
	if strings.TrimSpace(f.Username) == "" || strings.TrimSpace(f.Email) == "" || f.Password == "" {
		p.fail("Username, email and password are required.")
		return models.User{}, errors.New(p.Error)
	}

	interests := packInterests(f.Interests)
	req := client.SignUpRequest{
		Username:  strings.TrimSpace(f.Username),
		Email:     strings.TrimSpace(f.Email),
		Phone:     digitsOnly(f.Phone),
		Password:  f.Password,
		Interest1: interests[0],
		Interest2: interests[1],
		Interest3: interests[2],
	}

	p.begin()
	user, err := p.api.SignUp(ctx, req)
	if err != nil {
		p.fail(messageFor(err, "Failed to create account. Please try again."))
		return models.User{}, err
	}

	p.Form = SignUpForm{}
	p.succeed("Account created successfully!")
	return user, nil
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// packInterests trims each interest and moves blanks to the end.
func packInterests(in [3]string) [3]string {
	var out [3]string
	n := 0
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out[n] = s
			n++
		}
	}
	return out
}
