// Package realtime maintains the websocket connection to the push backend and
// multiplexes row-change subscriptions over it. Consumers register a callback
// per (user, resource) pair and get a disposable handle back; the manager
// owns reconnection and resubscribes everything after a drop.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/AliAamir1/budsapp/internal/logging"
	"github.com/gorilla/websocket"
	"github.com/sethvargo/go-retry"
)

// frames on the wire. The client sends commands, the server pushes changes.
type commandFrame struct {
	Action string `json:"action"` // "subscribe" | "unsubscribe"
	ID     int64  `json:"id"`
	Table  string `json:"table,omitempty"`
	Filter string `json:"filter,omitempty"`
}

type changeFrame struct {
	ID     int64           `json:"id"`
	Table  string          `json:"table"`
	Event  string          `json:"event"`
	Record json.RawMessage `json:"record"`
}

// Subscription is a live registration. Close it when the consumer goes away,
// otherwise remounting a screen delivers every event twice.
type Subscription struct {
	m   *Manager
	ids []int64
}

// Close unregisters the subscription and tells the server to stop pushing.
// Safe to call on a nil subscription.
func (s *Subscription) Close() {
	if s == nil || s.m == nil {
		return
	}
	s.m.unsubscribe(s.ids)
}

type filterSub struct {
	table  string
	filter string
	fn     Callback
}

// Manager multiplexes change subscriptions over one websocket connection.
// Construct with NewManager, then run exactly one Run goroutine for the
// lifetime of the authenticated session.
type Manager struct {
	url string
	log logging.Logger

	// mu guards subs, conn, ready and nextID. Command frames are written
	// while holding it, so a subscribe racing a reconnect registers each
	// filter exactly once.
	mu     sync.RWMutex
	subs   map[int64]filterSub
	conn   *websocket.Conn
	ready  bool
	nextID int64

	// reconnect tuning, overridden in tests
	reconnectBase time.Duration
	reconnectCap  time.Duration
	healthyAfter  time.Duration
}

func NewManager(url string, log logging.Logger) *Manager {
	return &Manager{
		url:           url,
		log:           log,
		subs:          make(map[int64]filterSub),
		reconnectBase: 500 * time.Millisecond,
		reconnectCap:  30 * time.Second,
		healthyAfter:  time.Minute,
	}
}

// SubscribeMatchUpdates delivers every change to a match record the user
// participates in. The user can sit on either side of the relation, so two
// server-side filters are registered and fanned into the same callback.
func (m *Manager) SubscribeMatchUpdates(userID string, fn Callback) *Subscription {
	return m.subscribe(fn,
		filterSub{table: TableMatches, filter: "user1_id=eq." + userID},
		filterSub{table: TableMatches, filter: "user2_id=eq." + userID},
	)
}

// SubscribeChatUpdates delivers chat-row changes (new chats, last-message
// updates) for every chat the user is a recipient of.
func (m *Manager) SubscribeChatUpdates(userID string, fn Callback) *Subscription {
	return m.subscribe(fn,
		filterSub{table: TableChats, filter: "recipient_one=eq." + userID},
		filterSub{table: TableChats, filter: "recipient_two=eq." + userID},
	)
}

// SubscribeChatMessages delivers new messages for a single open chat.
func (m *Manager) SubscribeChatMessages(chatID string, fn Callback) *Subscription {
	return m.subscribe(fn,
		filterSub{table: TableMessages, filter: "chat_id=eq." + chatID},
	)
}

func (m *Manager) subscribe(fn Callback, filters ...filterSub) *Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub := &Subscription{m: m}
	for _, f := range filters {
		f.fn = fn
		m.nextID++
		id := m.nextID
		m.subs[id] = f
		sub.ids = append(sub.ids, id)

		if m.ready {
			frame := commandFrame{Action: "subscribe", ID: id, Table: f.table, Filter: f.filter}
			if err := m.conn.WriteJSON(frame); err != nil {
				// the connection is going down; the next session resubscribes
				m.log.Debug(context.Background(), "subscribe deferred to reconnect", "table", f.table)
			}
		}
	}
	return sub
}

func (m *Manager) unsubscribe(ids []int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		delete(m.subs, id)
		if m.ready {
			_ = m.conn.WriteJSON(commandFrame{Action: "unsubscribe", ID: id})
		}
	}
}

// errSessionEnded signals a connection that lived long enough to be called
// healthy; the retry loop restarts with a fresh backoff instead of escalating.
var errSessionEnded = errors.New("realtime: session ended")

// Run connects, resubscribes, and pumps events until ctx is cancelled.
// Dropped connections are retried with capped exponential backoff plus
// jitter; a connection that stayed up past the health threshold resets the
// backoff so a flaky network does not permanently degrade to the cap.
func (m *Manager) Run(ctx context.Context) error {
	for {
		b := retry.WithCappedDuration(m.reconnectCap,
			retry.WithJitterPercent(20, retry.NewExponential(m.reconnectBase)))

		err := retry.Do(ctx, b, func(ctx context.Context) error {
			start := time.Now()
			err := m.session(ctx)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if time.Since(start) >= m.healthyAfter {
				return errSessionEnded
			}
			m.log.Warn(ctx, "realtime connection lost, retrying", "err", err)
			return retry.RetryableError(err)
		})
		if errors.Is(err, errSessionEnded) {
			continue
		}
		return err
	}
}

// session runs one websocket connection to completion.
func (m *Manager) session(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, m.url, nil)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.conn = conn
	for id, f := range m.subs {
		if err := conn.WriteJSON(commandFrame{Action: "subscribe", ID: id, Table: f.table, Filter: f.filter}); err != nil {
			m.mu.Unlock()
			conn.Close()
			return err
		}
	}
	m.ready = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.conn = nil
		m.ready = false
		m.mu.Unlock()
		conn.Close()
	}()

	m.log.Info(ctx, "realtime connected", "url", m.url)

	// unblock the read loop when the caller shuts down
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var f changeFrame
		if err := conn.ReadJSON(&f); err != nil {
			return err
		}
		m.dispatch(f)
	}
}

func (m *Manager) dispatch(f changeFrame) {
	m.mu.RLock()
	sub, ok := m.subs[f.ID]
	m.mu.RUnlock()
	if !ok {
		// late delivery for a disposed subscription, drop it
		return
	}
	sub.fn(Event{Table: f.Table, Type: f.Event, Record: f.Record})
}
