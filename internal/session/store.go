// Package session is the single source of truth for who is logged in and
// whether onboarding is complete. All mutation goes through the store's
// methods so the durable copy keeps mirroring memory.
package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/AliAamir1/budsapp/internal/logging"
	"github.com/AliAamir1/budsapp/internal/models"
	"github.com/AliAamir1/budsapp/internal/storage"
)

// Durable storage keys. Tokens are namespaced per backend the way the mobile
// client namespaced its AsyncStorage entries.
const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyUserData     = "user_data"
)

// Store holds the authenticated identity in memory, mirrored to the local
// key-value store. Construct one at app start and share it; it is safe for
// concurrent use.
type Store struct {
	kv  storage.KeyValue
	log logging.Logger

	mu      sync.RWMutex
	access  string
	refresh string
	user    *models.User
}

func NewStore(kv storage.KeyValue, log logging.Logger) *Store {
	return &Store{kv: kv, log: log}
}

// RefreshAuthState rehydrates the store from durable storage. The identity is
// considered authenticated only if both a credential token and a cached user
// snapshot are present. Corrupted or missing stored state means "not
// authenticated", never a fatal error.
func (s *Store) RefreshAuthState(ctx context.Context) {
	access, err := s.kv.Get(ctx, keyAccessToken)
	if err != nil {
		s.log.Warn(ctx, "failed to read stored access token", "err", err)
	}
	refresh, err := s.kv.Get(ctx, keyRefreshToken)
	if err != nil {
		s.log.Warn(ctx, "failed to read stored refresh token", "err", err)
	}
	rawUser, err := s.kv.Get(ctx, keyUserData)
	if err != nil {
		s.log.Warn(ctx, "failed to read stored user snapshot", "err", err)
	}

	var user *models.User
	if len(rawUser) > 0 {
		user = &models.User{}
		if err := json.Unmarshal(rawUser, user); err != nil {
			s.log.Warn(ctx, "stored user snapshot is corrupted, treating as logged out", "err", err)
			user = nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(access) == 0 || user == nil {
		s.access, s.refresh, s.user = "", "", nil
		return
	}
	s.access = string(access)
	s.refresh = string(refresh)
	s.user = user
}

// SetAuthState replaces the in-memory identity and mirrors the user snapshot
// to durable storage. Storage writes are fire-and-forget: the snapshot is
// re-derivable from the next login, so a failed write only logs.
func (s *Store) SetAuthState(ctx context.Context, authenticated bool, user *models.User) {
	s.mu.Lock()
	if authenticated && user != nil {
		s.user = user
	} else {
		s.user = nil
		s.access = ""
		s.refresh = ""
	}
	s.mu.Unlock()

	if authenticated && user != nil {
		raw, err := json.Marshal(user)
		if err == nil {
			err = s.kv.Set(ctx, keyUserData, raw)
		}
		if err != nil {
			s.log.Warn(ctx, "failed to persist user snapshot", "err", err)
		}
		return
	}
	if err := s.kv.Delete(ctx, keyUserData); err != nil {
		s.log.Warn(ctx, "failed to remove user snapshot", "err", err)
	}
}

// CurrentUserID returns the logged-in user id, or "" when no authenticated
// session exists.
func (s *Store) CurrentUserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.access == "" || s.user == nil {
		return ""
	}
	return s.user.ID
}

// CurrentUser returns a copy of the cached user snapshot, or nil.
func (s *Store) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsAuthenticated reports whether a credential and a user snapshot are both
// present.
func (s *Store) IsAuthenticated() bool {
	return s.CurrentUserID() != ""
}

// OnboardingComplete reports whether the current profile may enter the main
// tabs; an incomplete profile routes to onboarding instead.
func (s *Store) OnboardingComplete() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.OnboardingComplete()
}

// Tokens returns the current credential pair. Part of the gateway's
// Credentials contract.
func (s *Store) Tokens(ctx context.Context) (string, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access, s.refresh
}

// StoreSession persists a fresh credential pair (and user snapshot, when the
// backend sent one) durably before returning, so an immediate read of the
// store observes the new session. A nil session keeps the current credential
// pair; a nil user keeps the existing snapshot. Profile updates pass a nil
// session to refresh only the snapshot.
func (s *Store) StoreSession(ctx context.Context, session *models.Session, user *models.User) error {
	values := make(map[string][]byte, 3)
	if session != nil {
		values[keyAccessToken] = []byte(session.AccessToken)
		values[keyRefreshToken] = []byte(session.RefreshToken)
	}
	if user != nil {
		raw, err := json.Marshal(user)
		if err != nil {
			return err
		}
		values[keyUserData] = raw
	}
	if len(values) > 0 {
		if err := s.kv.SetMany(ctx, values); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if session != nil {
		s.access = session.AccessToken
		s.refresh = session.RefreshToken
	}
	if user != nil {
		s.user = user
	}
	return nil
}

// ClearCredentials drops the credential pair from memory and durable storage.
// Called by the gateway on 401-class responses; navigation back to login is
// the caller's responsibility, never this store's.
func (s *Store) ClearCredentials(ctx context.Context) error {
	s.mu.Lock()
	s.access, s.refresh = "", ""
	s.mu.Unlock()

	if err := s.kv.Delete(ctx, keyAccessToken); err != nil {
		return err
	}
	return s.kv.Delete(ctx, keyRefreshToken)
}
