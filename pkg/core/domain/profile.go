package domain

import "time"

// Profile is the editable, publishable result of a parsed resume.
type Profile struct {
	ID         string       `json:"id"`
	OwnerEmail string       `json:"owner_email"`
	Username   string       `json:"username"` // Unique, stored lower-case
	FullName   string       `json:"full_name"`
	Headline   string       `json:"headline"`
	About      string       `json:"about"`
	Location   string       `json:"location"`
	Skills     []string     `json:"skills"`
	Experience []Experience `json:"experience"`
	Education  []Education  `json:"education"`
	Links      []string     `json:"links"`
	Published  bool         `json:"published"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

type Experience struct {
	Company     string `json:"company"`
	Role        string `json:"role"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date,omitempty"`
	Description string `json:"description,omitempty"`
}

type Education struct {
	School string `json:"school"`
	Degree string `json:"degree"`
	Year   string `json:"year,omitempty"`
}

// ProfileInput carries the editable fields for create and update.
type ProfileInput struct {
	Username   string       `json:"username"`
	FullName   string       `json:"full_name"`
	Headline   string       `json:"headline"`
	About      string       `json:"about"`
	Location   string       `json:"location"`
	Skills     []string     `json:"skills"`
	Experience []Experience `json:"experience"`
	Education  []Education  `json:"education"`
	Links      []string     `json:"links"`
	Published  *bool        `json:"published,omitempty"`
}
