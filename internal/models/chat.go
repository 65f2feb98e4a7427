package models

import "time"

// Chat is a conversation container between exactly two users, created lazily
// on the first match acceptance.
type Chat struct {
	ID           string    `json:"id"`
	RecipientOne string    `json:"recipient_one"`
	RecipientTwo string    `json:"recipient_two"`
	LastMessage  string    `json:"last_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PartnerOf resolves the other participant of the chat relative to userID.
func (c *Chat) PartnerOf(userID string) (string, error) {
	switch userID {
	case c.RecipientOne:
		return c.RecipientTwo, nil
	case c.RecipientTwo:
		return c.RecipientOne, nil
	default:
		return "", ErrNotParticipant
	}
}

// Involves reports whether userID is on either side of the chat.
func (c *Chat) Involves(userID string) bool {
	return c.RecipientOne == userID || c.RecipientTwo == userID
}

// Message is an append-only chat message.
type Message struct {
	ID         string    `json:"id"`
	ChatID     string    `json:"chat_id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}
