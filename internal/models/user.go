package models

import (
	"strings"
	"time"
)

// User represents a ConfSpotter account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	Interest1    string    `json:"interest_1,omitempty"`
	Interest2    string    `json:"interest_2,omitempty"`
	Interest3    string    `json:"interest_3,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Interests returns the user's non-blank interest tags, trimmed.
func (u User) Interests() []string {
	var out []string
	for _, i := range []string{u.Interest1, u.Interest2, u.Interest3} {
		if s := strings.TrimSpace(i); s != "" {
			out = append(out, s)
		}
	}
	return out
}
