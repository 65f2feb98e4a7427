// Package models defines client-side data models mirrored from the StudyBuds
// backend. Match, Chat and Message records are server-owned; the client keeps
// read-through copies only.
package models

import "time"

// PartnerPreferences describes how a user wants to study with a partner.
type PartnerPreferences struct {
	StudySchedule      string `json:"study_schedule,omitempty"`
	CommunicationStyle string `json:"communication_style,omitempty"`
}

// ExamPreferences binds a user to an exam and a study plan for it.
type ExamPreferences struct {
	ExamID         string `json:"exam_id"`
	StudyStartDate string `json:"study_start_date"`
	StudyEndDate   string `json:"study_end_date"`
	DailyStudyTime string `json:"daily_study_time"`
	Intensity      string `json:"intensity"`
}

// Study intensity levels accepted by the backend.
const (
	IntensityLight    = "light"
	IntensityModerate = "moderate"
	IntensityIntense  = "intense"
)

// User is the authenticated account with its profile fields.
type User struct {
	ID                 string              `json:"id"`
	Email              string              `json:"email"`
	Name               string              `json:"name"`
	Gender             string              `json:"gender,omitempty"`
	Birthdate          string              `json:"birthdate,omitempty"`
	Region             string              `json:"region,omitempty"`
	Course             string              `json:"course,omitempty"`
	ExamDate           string              `json:"examDate,omitempty"`
	PartnerPreferences *PartnerPreferences `json:"partner_preferences,omitempty"`
	Bio                string              `json:"bio,omitempty"`
	IsPremium          bool                `json:"is_premium"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
	ExamPreferences    *ExamPreferences    `json:"examPreferences,omitempty"`
}

// OnboardingComplete reports whether the profile carries everything the match
// screens need. A user missing any of exam preferences, partner preferences,
// course or exam date is routed to onboarding instead of the main tabs.
func (u *User) OnboardingComplete() bool {
	if u == nil {
		return false
	}
	return u.ExamPreferences != nil &&
		u.PartnerPreferences != nil &&
		u.Course != "" &&
		u.ExamDate != ""
}

// Session carries the credential pair issued by the auth endpoints.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
}
