package models

import "time"

// Exam is a catalog entry users pick during onboarding.
type Exam struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Field       string    `json:"field,omitempty"`
	Country     string    `json:"country,omitempty"`
	Category    string    `json:"category,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
