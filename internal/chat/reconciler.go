package chat

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/AliAamir1/budsapp/internal/api"
	"github.com/AliAamir1/budsapp/internal/logging"
	"github.com/AliAamir1/budsapp/internal/models"
	"github.com/AliAamir1/budsapp/internal/realtime"
	"github.com/google/uuid"
)

// confirmWindow bounds how far apart an optimistic entry and a realtime row
// may sit and still be treated as the same send. Covers the race where the
// pushed row lands before the HTTP response carrying the final id.
const confirmWindow = 10 * time.Second

type entry struct {
	msg     models.Message
	pending bool
	seq     int
}

// Conversation is one open chat. It keeps the message list ordered newest
// first and duplicate free while sends are confirmed out of band: an
// optimistic entry appears immediately, is replaced by the authoritative row
// on confirmation, and is removed on failure. Realtime rows for already-known
// ids are dropped.
type Conversation struct {
	Chat *models.Chat

	selfID string
	gw     api.Gateway
	log    logging.Logger
	sub    *realtime.Subscription

	mu      sync.Mutex
	entries []entry
	seen    map[string]struct{}
	nextSeq int

	// onUpdate fires after every list mutation, outside the lock.
	onUpdate func()

	now   func() time.Time
	newID func() string
}

func newConversation(ch *models.Chat, selfID string, gw api.Gateway, log logging.Logger) *Conversation {
	return &Conversation{
		Chat:   ch,
		selfID: selfID,
		gw:     gw,
		log:    log,
		seen:   make(map[string]struct{}),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// OnUpdate registers a callback invoked whenever the message list changes,
// including on realtime deliveries. Set it before events can arrive.
func (c *Conversation) OnUpdate(fn func()) {
	c.mu.Lock()
	c.onUpdate = fn
	c.mu.Unlock()
}

// Close detaches the realtime feed.
func (c *Conversation) Close() {
	c.sub.Close()
}

func (c *Conversation) load(ctx context.Context) error {
	msgs, err := c.gw.ChatMessages(ctx, c.Chat.ID)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range msgs {
		c.insertLocked(m, false)
	}
	return nil
}

// Send inserts an optimistic copy of the message, issues the network send,
// and on success swaps the copy for the authoritative row. On failure the
// copy is removed and the error returned; there is no automatic retry.
func (c *Conversation) Send(ctx context.Context, content string) (*models.Message, error) {
	partner, err := c.Chat.PartnerOf(c.selfID)
	if err != nil {
		return nil, err
	}

	temp := models.Message{
		ID:         c.newID(),
		ChatID:     c.Chat.ID,
		SenderID:   c.selfID,
		ReceiverID: partner,
		Content:    content,
		CreatedAt:  c.now(),
	}

	c.mu.Lock()
	c.insertLocked(temp, true)
	c.mu.Unlock()
	c.notify()

	msg, err := c.gw.SendMessage(ctx, c.Chat.ID, temp.SenderID, temp.ReceiverID, content)
	if err != nil {
		c.mu.Lock()
		c.removeLocked(temp.ID)
		c.mu.Unlock()
		c.notify()
		return nil, err
	}

	c.mu.Lock()
	c.confirmLocked(temp.ID, *msg)
	c.mu.Unlock()
	c.notify()
	return msg, nil
}

// Messages returns a snapshot of the list, newest first. Rows with the same
// timestamp keep their insertion order.
func (c *Conversation) Messages() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Message, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.msg
	}
	return out
}

// Pending reports whether the message with the given id is still awaiting
// server confirmation.
func (c *Conversation) Pending(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.msg.ID == id {
			return e.pending
		}
	}
	return false
}

// handleEvent feeds a realtime row into the list. The transport makes no
// ordering promise, so every row is treated as an upsert by id.
func (c *Conversation) handleEvent(e realtime.Event) {
	if e.Table != realtime.TableMessages || e.Type != realtime.EventInsert {
		return
	}
	msg, err := e.Message()
	if err != nil {
		c.log.Warn(context.Background(), "undecodable realtime message dropped", "err", err)
		return
	}
	if msg.ChatID != c.Chat.ID {
		return
	}

	c.mu.Lock()
	c.upsertLocked(*msg)
	c.mu.Unlock()
	c.notify()
}

// upsertLocked applies an authoritative row: drop if already known, confirm a
// matching pending entry, otherwise insert.
func (c *Conversation) upsertLocked(msg models.Message) {
	if _, ok := c.seen[msg.ID]; ok {
		return
	}
	// the pushed row may beat the HTTP response; correlate with a pending
	// entry by sender, content and time proximity
	for _, e := range c.entries {
		if e.pending && e.msg.SenderID == msg.SenderID && e.msg.Content == msg.Content &&
			absDuration(msg.CreatedAt.Sub(e.msg.CreatedAt)) <= confirmWindow {
			c.confirmLocked(e.msg.ID, msg)
			return
		}
	}
	c.insertLocked(msg, false)
}

func (c *Conversation) insertLocked(msg models.Message, pending bool) {
	c.seen[msg.ID] = struct{}{}
	c.nextSeq++
	c.entries = append(c.entries, entry{msg: msg, pending: pending, seq: c.nextSeq})
	sort.SliceStable(c.entries, func(i, j int) bool {
		return c.entries[i].msg.CreatedAt.After(c.entries[j].msg.CreatedAt)
	})
}

func (c *Conversation) removeLocked(id string) {
	delete(c.seen, id)
	for i, e := range c.entries {
		if e.msg.ID == id {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return
		}
	}
}

func (c *Conversation) confirmLocked(tempID string, final models.Message) {
	for i, e := range c.entries {
		if e.msg.ID == tempID {
			delete(c.seen, tempID)
			c.seen[final.ID] = struct{}{}
			c.entries[i].msg = final
			c.entries[i].pending = false
			// the server timestamp can differ from the optimistic one
			sort.SliceStable(c.entries, func(i, j int) bool {
				return c.entries[i].msg.CreatedAt.After(c.entries[j].msg.CreatedAt)
			})
			return
		}
	}
	// No entry carries the temp id: either the pushed row already confirmed
	// it, in which case the final id is tracked and there is nothing to do,
	// or the entry was removed and the authoritative row must be kept.
	if _, ok := c.seen[final.ID]; ok {
		return
	}
	c.insertLocked(final, false)
}

func (c *Conversation) notify() {
	c.mu.Lock()
	fn := c.onUpdate
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
