package session

import (
	"context"
	"database/sql"
	"io"
	"testing"

	"github.com/AliAamir1/budsapp/internal/logging"
	"github.com/AliAamir1/budsapp/internal/models"
	"github.com/AliAamir1/budsapp/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupKV(t *testing.T) (*storage.KeyValueStore, *sql.DB) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE metadata (key TEXT PRIMARY KEY, value BLOB NOT NULL)`)
	require.NoError(t, err)
	return storage.NewKeyValueStore(db), db
}

func newStore(t *testing.T) (*Store, *storage.KeyValueStore) {
	t.Helper()
	kv, _ := setupKV(t)
	return NewStore(kv, logging.New(io.Discard, "error", "text")), kv
}

func completeUser() *models.User {
	return &models.User{
		ID:                 "u1",
		Email:              "a@x.com",
		Course:             "medicine",
		ExamDate:           "2026-10-01",
		PartnerPreferences: &models.PartnerPreferences{StudySchedule: "mornings"},
		ExamPreferences:    &models.ExamPreferences{ExamID: "e1", Intensity: models.IntensityModerate},
	}
}

func TestRefreshAuthState_RequiresTokenAndSnapshot(t *testing.T) {
	ctx := context.Background()

	t.Run("both present", func(t *testing.T) {
		s, kv := newStore(t)
		require.NoError(t, kv.Set(ctx, keyAccessToken, []byte("at")))
		require.NoError(t, kv.Set(ctx, keyUserData, []byte(`{"id":"u1","email":"a@x.com"}`)))

		s.RefreshAuthState(ctx)
		assert.Equal(t, "u1", s.CurrentUserID())
		assert.True(t, s.IsAuthenticated())
	})

	t.Run("token only", func(t *testing.T) {
		s, kv := newStore(t)
		require.NoError(t, kv.Set(ctx, keyAccessToken, []byte("at")))

		s.RefreshAuthState(ctx)
		assert.Empty(t, s.CurrentUserID())
	})

	t.Run("snapshot only", func(t *testing.T) {
		s, kv := newStore(t)
		require.NoError(t, kv.Set(ctx, keyUserData, []byte(`{"id":"u1"}`)))

		s.RefreshAuthState(ctx)
		assert.Empty(t, s.CurrentUserID())
	})
}

func TestRefreshAuthState_CorruptedSnapshotIsLoggedOutNotFatal(t *testing.T) {
	ctx := context.Background()
	s, kv := newStore(t)
	require.NoError(t, kv.Set(ctx, keyAccessToken, []byte("at")))
	require.NoError(t, kv.Set(ctx, keyUserData, []byte(`{{{not json`)))

	s.RefreshAuthState(ctx)
	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.CurrentUser())
}

func TestStoreSession_ImmediatelyReadable(t *testing.T) {
	ctx := context.Background()
	s, kv := newStore(t)

	err := s.StoreSession(ctx, &models.Session{AccessToken: "at", RefreshToken: "rt"}, &models.User{ID: "u1"})
	require.NoError(t, err)

	access, refresh := s.Tokens(ctx)
	assert.Equal(t, "at", access)
	assert.Equal(t, "rt", refresh)
	assert.Equal(t, "u1", s.CurrentUserID())

	// durable copy is written before StoreSession resolves
	v, err := kv.Get(ctx, keyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, []byte("at"), v)
}

func TestStoreSession_NilUserKeepsSnapshot(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	require.NoError(t, s.StoreSession(ctx, &models.Session{AccessToken: "at", RefreshToken: "rt"}, &models.User{ID: "u1"}))
	require.NoError(t, s.StoreSession(ctx, &models.Session{AccessToken: "at2", RefreshToken: "rt2"}, nil))

	assert.Equal(t, "u1", s.CurrentUserID())
	access, _ := s.Tokens(ctx)
	assert.Equal(t, "at2", access)
}

func TestStoreSession_NilSessionUpdatesOnlySnapshot(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	require.NoError(t, s.StoreSession(ctx, &models.Session{AccessToken: "at", RefreshToken: "rt"}, &models.User{ID: "u1"}))
	require.NoError(t, s.StoreSession(ctx, nil, &models.User{ID: "u1", Bio: "updated"}))

	access, refresh := s.Tokens(ctx)
	assert.Equal(t, "at", access)
	assert.Equal(t, "rt", refresh)
	assert.Equal(t, "updated", s.CurrentUser().Bio)
}

func TestClearCredentials_LeavesNoUsableIdentity(t *testing.T) {
	ctx := context.Background()
	s, kv := newStore(t)
	require.NoError(t, s.StoreSession(ctx, &models.Session{AccessToken: "at", RefreshToken: "rt"}, &models.User{ID: "u1"}))

	require.NoError(t, s.ClearCredentials(ctx))

	assert.Empty(t, s.CurrentUserID())
	access, refresh := s.Tokens(ctx)
	assert.Empty(t, access)
	assert.Empty(t, refresh)
	v, err := kv.Get(ctx, keyAccessToken)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSetAuthState_FalseClearsEverything(t *testing.T) {
	ctx := context.Background()
	s, kv := newStore(t)
	require.NoError(t, s.StoreSession(ctx, &models.Session{AccessToken: "at", RefreshToken: "rt"}, &models.User{ID: "u1"}))

	s.SetAuthState(ctx, false, nil)

	assert.False(t, s.IsAuthenticated())
	v, err := kv.Get(ctx, keyUserData)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestOnboardingGate(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	// login response lacking profile fields routes to onboarding
	incomplete := &models.User{ID: "u1", Email: "a@x.com"}
	require.NoError(t, s.StoreSession(ctx, &models.Session{AccessToken: "at", RefreshToken: "rt"}, incomplete))
	assert.True(t, s.IsAuthenticated())
	assert.False(t, s.OnboardingComplete())

	s.SetAuthState(ctx, true, completeUser())
	assert.True(t, s.OnboardingComplete())
}

func TestCurrentUser_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	require.NoError(t, s.StoreSession(ctx, &models.Session{AccessToken: "at", RefreshToken: "rt"}, &models.User{ID: "u1", Name: "Alice"}))

	u := s.CurrentUser()
	u.Name = "mutated"
	assert.Equal(t, "Alice", s.CurrentUser().Name)
}
