package models

import "time"

// Paper is a submission linked to a conference and an author.
type Paper struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Abstract     string     `json:"abstract"`
	Type         string     `json:"type,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	PersonID     int64      `json:"person_id"`
	ConferenceID int64      `json:"conference_id"`
	CreatedAt    time.Time  `json:"created_at"`
}
