// Package api is the typed boundary to the StudyBuds REST backend. Errors are
// normalized once here and propagated as *Error values; rendering failures is
// the CLI's job alone.
package api

import (
	"context"

	"github.com/AliAamir1/budsapp/internal/models"
)

// Gateway is the remote data gateway consumed by the service layer.
type Gateway interface {
	SignUp(ctx context.Context, req SignUpRequest) (*AuthResult, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResult, error)
	Logout(ctx context.Context) error
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*models.User, error)
	PotentialMatches(ctx context.Context, userID string, opts PageOptions) (*PotentialMatchesResult, error)
	MatchedUsers(ctx context.Context, userID string) ([]models.Match, error)
	CreateMatch(ctx context.Context, user1ID, user2ID string) (string, error)
	UpdateMatchStatus(ctx context.Context, matchID, status string) error
	Exams(ctx context.Context) ([]models.Exam, error)
	UserChats(ctx context.Context, userID string) ([]models.Chat, error)
	CreateChat(ctx context.Context, recipientOne, recipientTwo string) (*models.Chat, error)
	ChatMessages(ctx context.Context, chatID string) ([]models.Message, error)
	SendMessage(ctx context.Context, chatID, senderID, receiverID, content string) (*models.Message, error)
}

// Credentials is the slice of the session store the gateway needs: reading the
// current token pair, persisting a fresh session before an auth call resolves,
// and purging credentials when the backend rejects them.
type Credentials interface {
	Tokens(ctx context.Context) (access string, refresh string)
	StoreSession(ctx context.Context, session *models.Session, user *models.User) error
	ClearCredentials(ctx context.Context) error
}
