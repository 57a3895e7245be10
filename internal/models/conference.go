package models

import "time"

// Conference is an academic event with scheduling and location metadata.
type Conference struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Acronym       string     `json:"acronym"`
	Location      string     `json:"location"`
	StartDate     time.Time  `json:"start_date"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	URL           string     `json:"url"`
	Description   string     `json:"description"`
	PaperDeadline *time.Time `json:"paper_deadline,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Recommendation is a conference matched against a user's interests.
type Recommendation struct {
	Conference
	MatchedInterests []string `json:"matched_interests"`
}
