package cache

import (
	"fmt"
	"time"
)

// Staleness budgets per query family. Potential matches are always-fresh
// because swipe state is latency-sensitive; matched users tolerate a short
// window since realtime push also keeps them fresh; the exam catalog barely
// changes.
const (
	TTLPotentialMatches = 0
	TTLMatchedUsers     = 2 * time.Minute
	TTLExams            = time.Hour
	TTLUserChats        = time.Minute
)

// Query keys. Keys are hierarchical so mutations can sweep a whole family
// with InvalidatePrefix.
func KeyPotentialMatches(userID string, page int) string {
	return fmt.Sprintf("matches:potential:%s:%d", userID, page)
}

func KeyPotentialMatchesPrefix(userID string) string {
	return "matches:potential:" + userID + ":"
}

func KeyMatchedUsers(userID string) string {
	return "matches:matched:" + userID
}

// KeyMatchesPrefix sweeps every match query for every user.
const KeyMatchesPrefix = "matches:"

const KeyExams = "exams"

func KeyUserChats(userID string) string {
	return "chats:" + userID
}
