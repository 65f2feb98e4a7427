package api

import (
	"strings"

	"github.com/AliAamir1/budsapp/internal/models"
)

// Request payloads are validated client-side before dispatch; a failed
// validation never reaches the network.

type SignUpRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	FullName        string `json:"full_name"`
	ConfirmPassword string `json:"-"`
}

func (r *SignUpRequest) Validate() error {
	if !looksLikeEmail(r.Email) {
		return newValidationError("email", "must be a valid email address")
	}
	if len(r.Password) < 6 {
		return newValidationError("password", "must be at least 6 characters")
	}
	if strings.TrimSpace(r.FullName) == "" {
		return newValidationError("full_name", "is required")
	}
	if r.ConfirmPassword != "" && r.ConfirmPassword != r.Password {
		return newValidationError("confirm_password", "passwords do not match")
	}
	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	if !looksLikeEmail(r.Email) {
		return newValidationError("email", "must be a valid email address")
	}
	if len(r.Password) < 6 {
		return newValidationError("password", "must be at least 6 characters")
	}
	return nil
}

// UpdateProfileRequest carries a partial profile edit; zero-valued fields are
// omitted from the payload and left untouched server-side.
type UpdateProfileRequest struct {
	Name               string                     `json:"name,omitempty"`
	Gender             string                     `json:"gender,omitempty"`
	Birthdate          string                     `json:"birthdate,omitempty"`
	Region             string                     `json:"region,omitempty"`
	Course             string                     `json:"course,omitempty"`
	ExamDate           string                     `json:"examDate,omitempty"`
	PartnerPreferences *models.PartnerPreferences `json:"partner_preferences,omitempty"`
	Bio                string                     `json:"bio,omitempty"`
	ExamPreferences    *models.ExamPreferences    `json:"examPreferences,omitempty"`
}

func (r *UpdateProfileRequest) Validate() error {
	if r.Gender != "" {
		switch r.Gender {
		case "male", "female", "other":
		default:
			return newValidationError("gender", "must be one of male, female, other")
		}
	}
	if r.ExamPreferences != nil {
		switch r.ExamPreferences.Intensity {
		case models.IntensityLight, models.IntensityModerate, models.IntensityIntense:
		default:
			return newValidationError("examPreferences.intensity", "must be one of light, moderate, intense")
		}
		if r.ExamPreferences.ExamID == "" {
			return newValidationError("examPreferences.exam_id", "is required")
		}
	}
	return nil
}

// PageOptions selects a page of potential matches. Zero values mean
// server-side defaults.
type PageOptions struct {
	Page  int
	Limit int
}

// AuthResult is the session + user snapshot returned by the auth endpoints.
type AuthResult struct {
	Session models.Session `json:"session"`
	User    *models.User   `json:"user"`
}

// PotentialMatchesResult is one page of swipe candidates with the server-side
// categorization buckets and pagination metadata.
type PotentialMatchesResult struct {
	Matches     []models.PotentialMatch   `json:"matches"`
	Categorized models.CategorizedMatches `json:"categorized"`
	Pagination  models.Pagination         `json:"pagination"`
}

func looksLikeEmail(s string) bool {
	at := strings.Index(s, "@")
	if at <= 0 || at == len(s)-1 {
		return false
	}
	return strings.Contains(s[at+1:], ".")
}
