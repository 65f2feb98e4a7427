package realtime

import (
	"encoding/json"

	"github.com/AliAamir1/budsapp/internal/models"
)

// Tables the backend publishes row changes for.
const (
	TableMatches  = "matches"
	TableChats    = "chats"
	TableMessages = "messages"
)

// Change kinds carried by an event.
const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
	EventDelete = "DELETE"
)

// Event is a single row-change notification. Record holds the changed row as
// raw JSON; decode it with the typed helpers below. Events carry no ordering
// guarantee, treat each one as a "something changed" signal and re-derive or
// upsert by primary key.
type Event struct {
	Table  string          `json:"table"`
	Type   string          `json:"event"`
	Record json.RawMessage `json:"record"`
}

// Match decodes the event record as a match row.
func (e Event) Match() (*models.Match, error) {
	var m models.Match
	if err := json.Unmarshal(e.Record, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Chat decodes the event record as a chat row.
func (e Event) Chat() (*models.Chat, error) {
	var c models.Chat
	if err := json.Unmarshal(e.Record, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Message decodes the event record as a message row.
func (e Event) Message() (*models.Message, error) {
	var m models.Message
	if err := json.Unmarshal(e.Record, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Callback receives delivered events. It runs on the manager's read loop, so
// it must not block; hand off heavy work to the consumer's own goroutine.
type Callback func(Event)
