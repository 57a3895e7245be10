package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/confspotter/confspotter-be/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUserByID(ctx context.Context, id int64) (models.User, error)
	CreateUser(ctx context.Context, input SignUpInput) (models.User, error)
	UpdateUser(ctx context.Context, id int64, input ProfileInput) (models.User, error)
	UpdatePassword(ctx context.Context, id int64, currentPassword, newPassword string) error
	DeleteUser(ctx context.Context, id int64) error
	AuthenticateUser(ctx context.Context, login, password string) (models.User, error)
}

// SignUpInput carries the fields accepted on registration.
type SignUpInput struct {
	Username  string
	Email     string
	Phone     string
	Password  string
	Interests [3]string
}

// ProfileInput carries the editable profile fields.
type ProfileInput struct {
	Username  string
	Email     string
	Phone     string
	Interests [3]string
}

// UserService provides business logic for user management.
type UserService struct {
	db         *sql.DB
	bcryptCost int
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db, bcryptCost: bcrypt.DefaultCost}
}

// WithBcryptCost overrides the hashing cost; tests use bcrypt.MinCost.
func (s *UserService) WithBcryptCost(cost int) *UserService {
	s.bcryptCost = cost
	return s
}

const userColumns = `id, username, email, phone, password_hash, interest_1, interest_2, interest_3, created_at`

// ListUsers returns every user ordered by ID.
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = ""
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, fmt.Errorf("user %d: %w", id, ErrNotFound)
		}
		return models.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

// getUserByLogin retrieves a user by email or username, including the password hash.
func (s *UserService) getUserByLogin(ctx context.Context, login string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower(?) OR username = ? LIMIT 1`, login, login)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, fmt.Errorf("user %s: %w", login, ErrNotFound)
		}
		return models.User{}, err
	}
	return user, nil
}

// CreateUser creates a new user, hashing their password.
func (s *UserService) CreateUser(ctx context.Context, input SignUpInput) (models.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	if username == "" || email == "" || input.Password == "" {
		return models.User{}, fmt.Errorf("username, email and password are required: %w", ErrInvalidInput)
	}
	if !strings.Contains(email, "@") {
		return models.User{}, fmt.Errorf("email %q is not valid: %w", email, ErrInvalidInput)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	interests := trimInterests(input.Interests)
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, email, phone, password_hash, interest_1, interest_2, interest_3, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		username, email, nullIfEmpty(NormalizePhone(input.Phone)), string(hashedPassword),
		nullIfEmpty(interests[0]), nullIfEmpty(interests[1]), nullIfEmpty(interests[2]), time.Now().UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, fmt.Errorf("username or email already registered: %w", ErrConflict)
		}
		return models.User{}, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, err
	}
	return s.GetUserByID(ctx, id)
}

// UpdateUser updates a user's non-sensitive information.
func (s *UserService) UpdateUser(ctx context.Context, id int64, input ProfileInput) (models.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	if username == "" || email == "" {
		return models.User{}, fmt.Errorf("username and email are required: %w", ErrInvalidInput)
	}

	interests := trimInterests(input.Interests)
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET username = ?, email = ?, phone = ?, interest_1 = ?, interest_2 = ?, interest_3 = ?
		WHERE id = ?`,
		username, email, nullIfEmpty(NormalizePhone(input.Phone)),
		nullIfEmpty(interests[0]), nullIfEmpty(interests[1]), nullIfEmpty(interests[2]), id)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, fmt.Errorf("username or email already registered: %w", ErrConflict)
		}
		return models.User{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.User{}, err
	}
	if n == 0 {
		return models.User{}, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return s.GetUserByID(ctx, id)
}

// UpdatePassword verifies the current password, then hashes and sets a new password for a user.
func (s *UserService) UpdatePassword(ctx context.Context, id int64, currentPassword, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("new password is required: %w", ErrInvalidInput)
	}

	var hash string
	err := s.db.QueryRowContext(ctx, "SELECT password_hash FROM users WHERE id = ?", id).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("user %d: %w", id, ErrNotFound)
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(currentPassword)); err != nil {
		return fmt.Errorf("current password is incorrect: %w", ErrInvalidCredentials)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	_, err = s.db.ExecContext(ctx, "UPDATE users SET password_hash = ? WHERE id = ?", string(hashedPassword), id)
	return err
}

// DeleteUser removes a user and, through cascading keys, their favorites.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return nil
}

// AuthenticateUser verifies a user's credentials. login may be an email or a username.
func (s *UserService) AuthenticateUser(ctx context.Context, login, password string) (models.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return models.User{}, fmt.Errorf("email and password are required: %w", ErrInvalidInput)
	}

	user, err := s.getUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.User{}, fmt.Errorf("authentication failed: %w", ErrInvalidCredentials)
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, fmt.Errorf("authentication failed: %w", ErrInvalidCredentials)
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}

// NormalizePhone keeps only the digits of a phone number.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// trimInterests trims each tag and packs the non-blank ones to the front.
func trimInterests(in [3]string) [3]string {
	var out [3]string
	i := 0
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out[i] = t
			i++
		}
	}
	return out
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func scanUser(row rowScanner) (models.User, error) {
	var (
		u                 models.User
		phone, i1, i2, i3 sql.NullString
		createdAt         sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &phone, &u.PasswordHash, &i1, &i2, &i3, &createdAt); err != nil {
		return models.User{}, err
	}
	u.Phone = phone.String
	u.Interest1, u.Interest2, u.Interest3 = i1.String, i2.String, i3.String
	u.CreatedAt = createdAt.Time
	return u, nil
}
