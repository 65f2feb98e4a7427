package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/AliAamir1/budsapp/internal/api"
	"github.com/AliAamir1/budsapp/internal/cache"
	"github.com/AliAamir1/budsapp/internal/logging"
	"github.com/AliAamir1/budsapp/internal/models"
	"github.com/AliAamir1/budsapp/internal/realtime"
)

// ErrNotActionable is returned when a user tries to respond to a match that
// is not pending on their side.
var ErrNotActionable = errors.New("match is not awaiting a response from this user")

// matchSubscriber is the slice of the realtime manager the service needs.
type matchSubscriber interface {
	SubscribeMatchUpdates(userID string, fn realtime.Callback) *realtime.Subscription
}

// MatchService defines match browsing and swiping for the CLI.
//
// Contract:
//   - PotentialMatches: candidate partners with scores and buckets; always
//     fetched fresh because swipe state is latency-sensitive.
//   - MatchedUsers: the user's match records, cached with a short staleness
//     window since realtime push also keeps them fresh.
//   - Like: swipe right, creating a pending match.
//   - Respond: accept or reject a match pending on the user's side.
//   - Watch: realtime feed of match-record changes; every event invalidates
//     the cached match queries so the next read re-derives.
type MatchService interface {
	PotentialMatches(ctx context.Context, userID string, opts api.PageOptions) (*api.PotentialMatchesResult, error)
	MatchedUsers(ctx context.Context, userID string) ([]models.Match, error)
	Like(ctx context.Context, userID, partnerID string) (string, error)
	Respond(ctx context.Context, userID string, match models.Match, accept bool) error
	Watch(userID string, fn realtime.Callback) *realtime.Subscription
}

type matchService struct {
	gw    api.Gateway
	cache *cache.Store
	rt    matchSubscriber
	log   logging.Logger
}

func NewMatchService(gw api.Gateway, c *cache.Store, rt matchSubscriber, log logging.Logger) MatchService {
	return &matchService{gw: gw, cache: c, rt: rt, log: log}
}

func (s *matchService) PotentialMatches(ctx context.Context, userID string, opts api.PageOptions) (*api.PotentialMatchesResult, error) {
	return cache.Lookup(ctx, s.cache, cache.KeyPotentialMatches(userID, opts.Page), cache.TTLPotentialMatches,
		func(ctx context.Context) (*api.PotentialMatchesResult, error) {
			return s.gw.PotentialMatches(ctx, userID, opts)
		})
}

func (s *matchService) MatchedUsers(ctx context.Context, userID string) ([]models.Match, error) {
	return cache.Lookup(ctx, s.cache, cache.KeyMatchedUsers(userID), cache.TTLMatchedUsers,
		func(ctx context.Context) ([]models.Match, error) {
			return s.gw.MatchedUsers(ctx, userID)
		})
}

// Like creates a pending match with the partner and invalidates both sides'
// cached match queries.
func (s *matchService) Like(ctx context.Context, userID, partnerID string) (string, error) {
	id, err := s.gw.CreateMatch(ctx, userID, partnerID)
	if err != nil {
		return "", fmt.Errorf("create match error: %w", err)
	}
	s.invalidateFor(userID, partnerID)
	return id, nil
}

// Respond accepts or rejects a match. Only the receiving side of a pending
// match may respond; anything else is rejected locally before any network
// call.
func (s *matchService) Respond(ctx context.Context, userID string, match models.Match, accept bool) error {
	if !match.ActionableBy(userID) {
		return ErrNotActionable
	}

	status := models.MatchStatusRejected
	if accept {
		status = models.MatchStatusMatched
	}
	if err := s.gw.UpdateMatchStatus(ctx, match.ID, status); err != nil {
		return fmt.Errorf("match status update error: %w", err)
	}
	s.invalidateFor(match.User1ID, match.User2ID)
	return nil
}

// Watch subscribes to match-record changes for the user. Each event is an
// idempotent "something changed" signal: the cached match queries are
// invalidated before the consumer callback runs, so a re-read observes the
// new state.
func (s *matchService) Watch(userID string, fn realtime.Callback) *realtime.Subscription {
	return s.rt.SubscribeMatchUpdates(userID, func(e realtime.Event) {
		s.invalidateFor(userID)
		if fn != nil {
			fn(e)
		}
	})
}

// invalidateFor sweeps every cached match query touching the given users.
func (s *matchService) invalidateFor(userIDs ...string) {
	for _, id := range userIDs {
		s.cache.Invalidate(cache.KeyMatchedUsers(id))
		s.cache.InvalidatePrefix(cache.KeyPotentialMatchesPrefix(id))
	}
}
