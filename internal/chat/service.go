// Package chat owns conversations: lazy chat creation, message history, and
// the reconciliation of optimistic sends with realtime-pushed rows.
package chat

import (
	"context"
	"errors"

	"github.com/AliAamir1/budsapp/internal/api"
	"github.com/AliAamir1/budsapp/internal/cache"
	"github.com/AliAamir1/budsapp/internal/logging"
	"github.com/AliAamir1/budsapp/internal/models"
	"github.com/AliAamir1/budsapp/internal/realtime"
)

// subscriber is the slice of the realtime manager the chat layer needs.
type subscriber interface {
	SubscribeChatMessages(chatID string, fn realtime.Callback) *realtime.Subscription
	SubscribeChatUpdates(userID string, fn realtime.Callback) *realtime.Subscription
}

// Service resolves chats and opens conversations for the current user.
type Service struct {
	gw    api.Gateway
	cache *cache.Store
	rt    subscriber
	log   logging.Logger
}

func NewService(gw api.Gateway, c *cache.Store, rt subscriber, log logging.Logger) *Service {
	return &Service{gw: gw, cache: c, rt: rt, log: log}
}

// Chats lists the user's conversations, newest activity first on the server
// side, through the query cache.
func (s *Service) Chats(ctx context.Context, userID string) ([]models.Chat, error) {
	return cache.Lookup(ctx, s.cache, cache.KeyUserChats(userID), cache.TTLUserChats,
		func(ctx context.Context) ([]models.Chat, error) {
			return s.gw.UserChats(ctx, userID)
		})
}

// FindOrCreateChat resolves the chat for the unordered participant pair,
// creating it when absent. Two clients may race to create the same pair; the
// backend enforces pair uniqueness, so a conflict answer means someone else
// won and the existing row is re-read instead of surfacing an error.
func (s *Service) FindOrCreateChat(ctx context.Context, userID, partnerID string) (*models.Chat, error) {
	if found, err := s.lookupChat(ctx, userID, partnerID); err != nil {
		return nil, err
	} else if found != nil {
		return found, nil
	}

	chat, err := s.gw.CreateChat(ctx, userID, partnerID)
	if err != nil {
		if !errors.Is(err, api.ErrConflict) {
			return nil, err
		}
		s.log.Debug(ctx, "chat already created by the other side, re-reading", "partner", partnerID)
		found, lerr := s.lookupChat(ctx, userID, partnerID)
		if lerr != nil {
			return nil, lerr
		}
		if found == nil {
			return nil, err
		}
		chat = found
	}

	s.cache.Invalidate(cache.KeyUserChats(userID), cache.KeyUserChats(partnerID))
	return chat, nil
}

func (s *Service) lookupChat(ctx context.Context, userID, partnerID string) (*models.Chat, error) {
	chats, err := s.gw.UserChats(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range chats {
		if chats[i].Involves(userID) && chats[i].Involves(partnerID) {
			return &chats[i], nil
		}
	}
	return nil, nil
}

// WatchChats subscribes to chat-row changes for the user (new chats,
// last-message updates). Each event invalidates the cached chat list before
// the consumer callback runs, so the next read re-derives.
func (s *Service) WatchChats(userID string, fn realtime.Callback) *realtime.Subscription {
	return s.rt.SubscribeChatUpdates(userID, func(e realtime.Event) {
		s.cache.Invalidate(cache.KeyUserChats(userID))
		if fn != nil {
			fn(e)
		}
	})
}

// Open resolves the chat with the partner, loads its history and attaches the
// realtime feed. The caller must Close the conversation when leaving the
// screen.
func (s *Service) Open(ctx context.Context, userID, partnerID string) (*Conversation, error) {
	ch, err := s.FindOrCreateChat(ctx, userID, partnerID)
	if err != nil {
		return nil, err
	}

	conv := newConversation(ch, userID, s.gw, s.log)
	if err := conv.load(ctx); err != nil {
		return nil, err
	}
	conv.sub = s.rt.SubscribeChatMessages(ch.ID, conv.handleEvent)
	return conv, nil
}
