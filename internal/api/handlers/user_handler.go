package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/confspotter/confspotter-be/internal/auth"
	"github.com/confspotter/confspotter-be/internal/models"
	"github.com/confspotter/confspotter-be/internal/services"
	"github.com/rs/zerolog/log"
)

// UserHandler handles HTTP requests for user management.
type UserHandler struct {
	service      services.UserServiceProvider
	events       services.EventServiceProvider
	tokens       *auth.Manager
	secureCookie bool
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider, events services.EventServiceProvider, tokens *auth.Manager, secureCookie bool) *UserHandler {
	return &UserHandler{service: service, events: events, tokens: tokens, secureCookie: secureCookie}
}

// AuthPayload defines the structure for login requests. Either field may
// carry the login name.
type AuthPayload struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterPayload defines the structure for registration requests.
// LegacyPassword accepts older clients that sent the plain password as password_hash.
type RegisterPayload struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Password       string `json:"password"`
	LegacyPassword string `json:"password_hash"`
	Interest1      string `json:"interest_1"`
	Interest2      string `json:"interest_2"`
	Interest3      string `json:"interest_3"`
}

// ProfilePayload defines the structure for profile updates.
type ProfilePayload struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Interest1 string `json:"interest_1"`
	Interest2 string `json:"interest_2"`
	Interest3 string `json:"interest_3"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Register handles new user registration.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	password := payload.Password
	if password == "" {
		password = payload.LegacyPassword
	}

	user, err := h.service.CreateUser(r.Context(), services.SignUpInput{
		Username:  payload.Username,
		Email:     payload.Email,
		Phone:     payload.Phone,
		Password:  password,
		Interests: [3]string{payload.Interest1, payload.Interest2, payload.Interest3},
	})
	if err != nil {
		log.Warn().Err(err).Str("email", payload.Email).Msg("Failed to register user")
		writeServiceError(w, err, "Failed to register user")
		return
	}

	if _, err := h.events.CreateEvent(r.Context(), "user.signup", "info", fmt.Sprintf("Welcome to ConfSpotter, %s!", user.Username), &user.ID); err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to record signup event")
	}

	writeJSON(w, http.StatusCreated, user)
}

// Login handles credential verification and JWT generation.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload AuthPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	login := payload.Email
	if login == "" {
		login = payload.Username
	}

	user, err := h.service.AuthenticateUser(r.Context(), login, payload.Password)
	if err != nil {
		log.Warn().Err(err).Str("login", login).Msg("Failed authentication attempt")
		writeServiceError(w, err, "Failed to verify login")
		return
	}

	token, err := h.tokens.GenerateJWT(user)
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to generate JWT")
		WriteError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Expires:  time.Now().Add(auth.TokenTTL),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})

	writeJSON(w, http.StatusOK, LoginResponse{Token: token, User: user})
}

// Logout clears the token cookie.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
	w.WriteHeader(http.StatusNoContent)
}

// GetMe retrieves the currently authenticated user from the token.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.ClaimsFromContext(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Could not retrieve user claims from context")
		WriteError(w, http.StatusUnauthorized, "Could not retrieve user from token")
		return
	}

	user, err := h.service.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, err, "Failed to retrieve user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// List returns every user.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, err, "Failed to retrieve users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Get handles retrieving a user by their ID.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := selfParam(w, r)
	if !ok {
		return
	}
	user, err := h.service.GetUserByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "Failed to retrieve user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Update handles updating a user's profile information.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := selfParam(w, r)
	if !ok {
		return
	}
	var payload ProfilePayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	user, err := h.service.UpdateUser(r.Context(), id, services.ProfileInput{
		Username:  payload.Username,
		Email:     payload.Email,
		Phone:     payload.Phone,
		Interests: [3]string{payload.Interest1, payload.Interest2, payload.Interest3},
	})
	if err != nil {
		writeServiceError(w, err, "Failed to update user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Delete handles the permanent deletion of a user account.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := selfParam(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		writeServiceError(w, err, "Failed to delete user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChangePassword handles changing a user's password.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := selfParam(w, r)
	if !ok {
		return
	}
	var payload struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`

		// Earlier clients sent camelCase names.
		LegacyCurrent string `json:"currentPassword"`
		LegacyNew     string `json:"newPassword"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	if payload.CurrentPassword == "" {
		payload.CurrentPassword = payload.LegacyCurrent
	}
	if payload.NewPassword == "" {
		payload.NewPassword = payload.LegacyNew
	}

	if err := h.service.UpdatePassword(r.Context(), id, payload.CurrentPassword, payload.NewPassword); err != nil {
		writeServiceError(w, err, "Failed to change password")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}
