// Package cache is the client-side query cache: keyed lookups with a per-key
// staleness budget, mutation-driven invalidation, and last-good fallback when
// a background refresh fails. It gives screens synchronous-feeling reads
// without hammering the backend.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/AliAamir1/budsapp/internal/logging"
	"golang.org/x/sync/singleflight"
)

// FetchFunc loads the authoritative value for a key.
type FetchFunc func(ctx context.Context) (any, error)

type entry struct {
	value     any
	fetchedAt time.Time
}

// Store is a process-wide query cache. Construct one at app start; it is safe
// for concurrent use.
type Store struct {
	log logging.Logger

	mu      sync.RWMutex
	entries map[string]entry

	// group collapses concurrent refreshes of the same key into one fetch.
	group singleflight.Group

	// now is a test seam.
	now func() time.Time
}

func NewStore(log logging.Logger) *Store {
	return &Store{
		log:     log,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the cached value for key when it is younger than ttl, otherwise
// it refetches. A ttl of zero means always-fresh: every call refetches.
//
// When a refetch fails but a previous value exists, the last-good value is
// returned together with the error; existing data is never dropped on a
// failed refresh (stale-but-available beats empty).
func (s *Store) Get(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) (any, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if ok && ttl > 0 && s.now().Sub(e.fetchedAt) < ttl {
		return e.value, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		// a concurrent caller may have refreshed while we waited
		s.mu.RLock()
		e, ok := s.entries[key]
		s.mu.RUnlock()
		if ok && ttl > 0 && s.now().Sub(e.fetchedAt) < ttl {
			return e.value, nil
		}

		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.entries[key] = entry{value: v, fetchedAt: s.now()}
		s.mu.Unlock()
		return v, nil
	})

	if err != nil {
		if ok {
			s.log.Warn(ctx, "refresh failed, serving last-good value", "key", key, "err", err)
			return e.value, err
		}
		return nil, err
	}
	return v, nil
}

// Peek returns the cached value regardless of age, without fetching.
func (s *Store) Peek(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Put stores a value directly, stamping it fresh. Used when a mutation or a
// realtime event already carries the authoritative data.
func (s *Store) Put(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{value: value, fetchedAt: s.now()}
}

// Invalidate drops the given keys so the next read bypasses the cache.
func (s *Store) Invalidate(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.entries, k)
	}
}

// InvalidatePrefix drops every key sharing the given prefix. Mutations use it
// to sweep whole resource families (e.g. all match queries).
func (s *Store) InvalidatePrefix(prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.entries {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(s.entries, k)
		}
	}
}

// Clear empties the whole cache, e.g. on logout.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]entry)
}

// Lookup is a typed wrapper around Store.Get.
func Lookup[T any](ctx context.Context, s *Store, key string, ttl time.Duration, fetch func(ctx context.Context) (T, error)) (T, error) {
	v, err := s.Get(ctx, key, ttl, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if v == nil {
		var zero T
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		var zero T
		return zero, err
	}
	return typed, err
}
