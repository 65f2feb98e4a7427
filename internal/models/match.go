package models

import (
	"errors"
	"time"
)

// Match statuses. A match starts pending when one user swipes right and is
// resolved by the receiving side.
const (
	MatchStatusPending  = "pending"
	MatchStatusMatched  = "matched"
	MatchStatusRejected = "rejected"
)

// ErrNotParticipant is returned when a user id is on neither side of a
// match or chat relation.
var ErrNotParticipant = errors.New("user is not a participant")

// MatchProfile is the slim profile embedded in match records.
type MatchProfile struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Gender   string `json:"gender"`
}

// Match is a proposed or confirmed pairing between two users. The partner is
// never stored; it is re-derived from the current user id on every read.
type Match struct {
	ID           string       `json:"id"`
	User1ID      string       `json:"user1_id"`
	User2ID      string       `json:"user2_id"`
	MatchedAt    time.Time    `json:"matched_at"`
	Status       string       `json:"status"`
	User1Profile MatchProfile `json:"user1_profile"`
	User2Profile MatchProfile `json:"user2_profile"`
	MatchScore   float64      `json:"match_score,omitempty"`
}

// PartnerOf resolves the other participant of the match relative to userID.
func (m *Match) PartnerOf(userID string) (MatchProfile, error) {
	switch userID {
	case m.User1ID:
		return m.User2Profile, nil
	case m.User2ID:
		return m.User1Profile, nil
	default:
		return MatchProfile{}, ErrNotParticipant
	}
}

// ActionableBy reports whether userID can accept or reject the match: only the
// receiving side of a pending match may act on it.
func (m *Match) ActionableBy(userID string) bool {
	return m.Status == MatchStatusPending && m.User2ID == userID
}

// PotentialMatch is a swipe candidate with its server-computed score.
type PotentialMatch struct {
	ID             string  `json:"id"`
	UserID         string  `json:"user_id"`
	ExamID         string  `json:"exam_id"`
	StudyStartDate string  `json:"study_start_date"`
	StudyEndDate   string  `json:"study_end_date"`
	DailyStudyTime string  `json:"daily_study_time"`
	Intensity      string  `json:"intensity"`
	FullName       string  `json:"full_name"`
	Gender         string  `json:"gender"`
	ExamName       string  `json:"exam_name"`
	ExamCategory   string  `json:"exam_category"`
	ExamCountry    string  `json:"exam_country"`
	ExamField      string  `json:"exam_field"`
	MatchScore     float64 `json:"match_score"`
	ExamMatch      bool    `json:"exam_match"`
	IntensityMatch bool    `json:"intensity_match"`
	DateOverlap    bool    `json:"date_overlap"`
	OverlapDays    int     `json:"overlap_days"`
}

// CategorizedMatches buckets candidates by server-side score tier.
type CategorizedMatches struct {
	Perfect   []PotentialMatch `json:"perfect"`
	Excellent []PotentialMatch `json:"excellent"`
	Good      []PotentialMatch `json:"good"`
	Potential []PotentialMatch `json:"potential"`
	Counts    CategoryCounts   `json:"counts"`
}

type CategoryCounts struct {
	Perfect   int `json:"perfect"`
	Excellent int `json:"excellent"`
	Good      int `json:"good"`
	Potential int `json:"potential"`
	Total     int `json:"total"`
}

// Pagination is the page metadata returned with potential matches.
type Pagination struct {
	CurrentPage     int  `json:"currentPage"`
	TotalPages      int  `json:"totalPages"`
	TotalCount      int  `json:"totalCount"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
	Limit           int  `json:"limit"`
}
