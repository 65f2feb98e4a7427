package services

import (
	"context"
	"io"
	"testing"

	"github.com/AliAamir1/budsapp/internal/api"
	"github.com/AliAamir1/budsapp/internal/cache"
	"github.com/AliAamir1/budsapp/internal/logging"
	"github.com/AliAamir1/budsapp/internal/models"
	"github.com/AliAamir1/budsapp/internal/realtime"
	"github.com/AliAamir1/budsapp/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway overrides the methods a test needs; unimplemented calls panic.
type fakeGateway struct {
	api.Gateway

	SignUpFn            func(ctx context.Context, req api.SignUpRequest) (*api.AuthResult, error)
	LoginFn             func(ctx context.Context, req api.LoginRequest) (*api.AuthResult, error)
	LogoutFn            func(ctx context.Context) error
	UpdateProfileFn     func(ctx context.Context, req api.UpdateProfileRequest) (*models.User, error)
	PotentialMatchesFn  func(ctx context.Context, userID string, opts api.PageOptions) (*api.PotentialMatchesResult, error)
	MatchedUsersFn      func(ctx context.Context, userID string) ([]models.Match, error)
	CreateMatchFn       func(ctx context.Context, user1ID, user2ID string) (string, error)
	UpdateMatchStatusFn func(ctx context.Context, matchID, status string) error
	ExamsFn             func(ctx context.Context) ([]models.Exam, error)

	potentialCalls    int
	matchedCalls      int
	examsCalls        int
	lastMatchID       string
	lastMatchStatus   string
	updateStatusCalls int
}

func (f *fakeGateway) SignUp(ctx context.Context, req api.SignUpRequest) (*api.AuthResult, error) {
	return f.SignUpFn(ctx, req)
}

func (f *fakeGateway) Login(ctx context.Context, req api.LoginRequest) (*api.AuthResult, error) {
	return f.LoginFn(ctx, req)
}

func (f *fakeGateway) Logout(ctx context.Context) error { return f.LogoutFn(ctx) }

func (f *fakeGateway) UpdateProfile(ctx context.Context, req api.UpdateProfileRequest) (*models.User, error) {
	return f.UpdateProfileFn(ctx, req)
}

func (f *fakeGateway) PotentialMatches(ctx context.Context, userID string, opts api.PageOptions) (*api.PotentialMatchesResult, error) {
	f.potentialCalls++
	return f.PotentialMatchesFn(ctx, userID, opts)
}

func (f *fakeGateway) MatchedUsers(ctx context.Context, userID string) ([]models.Match, error) {
	f.matchedCalls++
	return f.MatchedUsersFn(ctx, userID)
}

func (f *fakeGateway) CreateMatch(ctx context.Context, user1ID, user2ID string) (string, error) {
	return f.CreateMatchFn(ctx, user1ID, user2ID)
}

func (f *fakeGateway) UpdateMatchStatus(ctx context.Context, matchID, status string) error {
	f.updateStatusCalls++
	f.lastMatchID = matchID
	f.lastMatchStatus = status
	return f.UpdateMatchStatusFn(ctx, matchID, status)
}

func (f *fakeGateway) Exams(ctx context.Context) ([]models.Exam, error) {
	f.examsCalls++
	return f.ExamsFn(ctx)
}

type fakeSessionWriter struct {
	LastSession *models.Session
	LastUser    *models.User
	Err         error

	authStateCalls int
	lastAuthState  bool
	lastAuthUser   *models.User
}

func (f *fakeSessionWriter) StoreSession(ctx context.Context, s *models.Session, u *models.User) error {
	f.LastSession = s
	f.LastUser = u
	return f.Err
}

func (f *fakeSessionWriter) SetAuthState(ctx context.Context, authenticated bool, u *models.User) {
	f.authStateCalls++
	f.lastAuthState = authenticated
	f.lastAuthUser = u
}

type fakeMatchSubscriber struct {
	lastUserID string
	fn         realtime.Callback
}

func (f *fakeMatchSubscriber) SubscribeMatchUpdates(userID string, fn realtime.Callback) *realtime.Subscription {
	f.lastUserID = userID
	f.fn = fn
	return nil
}

func testLogger() logging.Logger {
	return logging.New(io.Discard, "error", "text")
}

// memKV is an in-memory key-value store for session-backed tests.
type memKV struct {
	data map[string][]byte
}

func (f *memKV) Get(ctx context.Context, key string) ([]byte, error) { return f.data[key], nil }
func (f *memKV) Set(ctx context.Context, key string, value []byte) error {
	f.data[key] = value
	return nil
}
func (f *memKV) SetMany(ctx context.Context, values map[string][]byte) error {
	for k, v := range values {
		f.data[k] = v
	}
	return nil
}
func (f *memKV) Delete(ctx context.Context, key string) error {
	delete(f.data, key)
	return nil
}
func (f *memKV) Clear(ctx context.Context) error {
	f.data = map[string][]byte{}
	return nil
}

func newSessionStore(t *testing.T) *session.Store {
	t.Helper()
	return session.NewStore(&memKV{data: map[string][]byte{}}, testLogger())
}

func TestLogin_ReturnsUser(t *testing.T) {
	gw := &fakeGateway{
		LoginFn: func(ctx context.Context, req api.LoginRequest) (*api.AuthResult, error) {
			assert.Equal(t, "a@b.com", req.Email)
			return &api.AuthResult{User: &models.User{ID: "u1"}}, nil
		},
	}
	svc := NewAuthService(gw, &fakeSessionWriter{}, cache.NewStore(testLogger()), testLogger())

	user, err := svc.Login(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
}

func TestLogout_ClearsCacheEvenOnRemoteFailure(t *testing.T) {
	gw := &fakeGateway{
		LogoutFn: func(ctx context.Context) error { return api.ErrUnavailable },
	}
	c := cache.NewStore(testLogger())
	c.Put(cache.KeyExams, []models.Exam{{ID: "e1"}})
	sw := &fakeSessionWriter{}
	svc := NewAuthService(gw, sw, c, testLogger())

	err := svc.Logout(context.Background())
	assert.ErrorIs(t, err, api.ErrUnavailable)

	_, ok := c.Peek(cache.KeyExams)
	assert.False(t, ok)

	// the identity is gone too, a dead backend never traps the user
	assert.Equal(t, 1, sw.authStateCalls)
	assert.False(t, sw.lastAuthState)
	assert.Nil(t, sw.lastAuthUser)
}

func TestLogout_ClearsUserSnapshot(t *testing.T) {
	gw := &fakeGateway{
		LogoutFn: func(ctx context.Context) error { return nil },
	}
	st := newSessionStore(t)
	require.NoError(t, st.StoreSession(context.Background(),
		&models.Session{AccessToken: "at", RefreshToken: "rt"},
		&models.User{ID: "u1", Email: "a@b.com"}))
	require.NotNil(t, st.CurrentUser())

	svc := NewAuthService(gw, st, cache.NewStore(testLogger()), testLogger())
	require.NoError(t, svc.Logout(context.Background()))

	assert.Nil(t, st.CurrentUser())
	assert.False(t, st.IsAuthenticated())
}

func TestUpdateProfile_RefreshesSnapshotAndInvalidatesMatches(t *testing.T) {
	updated := &models.User{ID: "u1", Bio: "new bio"}
	gw := &fakeGateway{
		UpdateProfileFn: func(ctx context.Context, req api.UpdateProfileRequest) (*models.User, error) {
			return updated, nil
		},
	}
	sw := &fakeSessionWriter{}
	c := cache.NewStore(testLogger())
	c.Put(cache.KeyMatchedUsers("u1"), []models.Match{})
	svc := NewAuthService(gw, sw, c, testLogger())

	user, err := svc.UpdateProfile(context.Background(), api.UpdateProfileRequest{Bio: "new bio"})
	require.NoError(t, err)
	assert.Equal(t, "new bio", user.Bio)

	// the stored snapshot is refreshed without touching tokens
	assert.Nil(t, sw.LastSession)
	require.NotNil(t, sw.LastUser)
	assert.Equal(t, "new bio", sw.LastUser.Bio)

	// a profile edit changes scoring inputs, so match queries are swept
	_, ok := c.Peek(cache.KeyMatchedUsers("u1"))
	assert.False(t, ok)
}

func TestPotentialMatches_AlwaysFresh(t *testing.T) {
	gw := &fakeGateway{
		PotentialMatchesFn: func(ctx context.Context, userID string, opts api.PageOptions) (*api.PotentialMatchesResult, error) {
			return &api.PotentialMatchesResult{}, nil
		},
	}
	svc := NewMatchService(gw, cache.NewStore(testLogger()), &fakeMatchSubscriber{}, testLogger())

	opts := api.PageOptions{Page: 1, Limit: 10}
	_, err := svc.PotentialMatches(context.Background(), "u1", opts)
	require.NoError(t, err)
	_, err = svc.PotentialMatches(context.Background(), "u1", opts)
	require.NoError(t, err)
	assert.Equal(t, 2, gw.potentialCalls)
}

func TestMatchedUsers_CachedWithinStalenessWindow(t *testing.T) {
	gw := &fakeGateway{
		MatchedUsersFn: func(ctx context.Context, userID string) ([]models.Match, error) {
			return []models.Match{{ID: "m1"}}, nil
		},
	}
	svc := NewMatchService(gw, cache.NewStore(testLogger()), &fakeMatchSubscriber{}, testLogger())

	_, err := svc.MatchedUsers(context.Background(), "u1")
	require.NoError(t, err)
	_, err = svc.MatchedUsers(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, gw.matchedCalls)
}

func TestRespond_InvalidatesBothParticipants(t *testing.T) {
	gw := &fakeGateway{
		UpdateMatchStatusFn: func(ctx context.Context, matchID, status string) error { return nil },
	}
	c := cache.NewStore(testLogger())
	c.Put(cache.KeyMatchedUsers("u1"), []models.Match{})
	c.Put(cache.KeyMatchedUsers("u2"), []models.Match{})
	c.Put(cache.KeyPotentialMatches("u2", 1), []models.PotentialMatch{})
	svc := NewMatchService(gw, c, &fakeMatchSubscriber{}, testLogger())

	match := models.Match{ID: "m1", User1ID: "u1", User2ID: "u2", Status: models.MatchStatusPending}
	require.NoError(t, svc.Respond(context.Background(), "u2", match, true))

	assert.Equal(t, models.MatchStatusMatched, gw.lastMatchStatus)
	for _, key := range []string{cache.KeyMatchedUsers("u1"), cache.KeyMatchedUsers("u2"), cache.KeyPotentialMatches("u2", 1)} {
		_, ok := c.Peek(key)
		assert.False(t, ok, key)
	}
}

func TestRespond_RejectedStatus(t *testing.T) {
	gw := &fakeGateway{
		UpdateMatchStatusFn: func(ctx context.Context, matchID, status string) error { return nil },
	}
	svc := NewMatchService(gw, cache.NewStore(testLogger()), &fakeMatchSubscriber{}, testLogger())

	match := models.Match{ID: "m1", User1ID: "u1", User2ID: "u2", Status: models.MatchStatusPending}
	require.NoError(t, svc.Respond(context.Background(), "u2", match, false))
	assert.Equal(t, models.MatchStatusRejected, gw.lastMatchStatus)
}

func TestRespond_OnlyReceivingSideMayAct(t *testing.T) {
	gw := &fakeGateway{}
	svc := NewMatchService(gw, cache.NewStore(testLogger()), &fakeMatchSubscriber{}, testLogger())

	match := models.Match{ID: "m1", User1ID: "u1", User2ID: "u2", Status: models.MatchStatusPending}
	err := svc.Respond(context.Background(), "u1", match, true)
	assert.ErrorIs(t, err, ErrNotActionable)
	assert.Zero(t, gw.updateStatusCalls)
}

func TestLike_InvalidatesBothSides(t *testing.T) {
	gw := &fakeGateway{
		CreateMatchFn: func(ctx context.Context, user1ID, user2ID string) (string, error) {
			return "m-new", nil
		},
	}
	c := cache.NewStore(testLogger())
	c.Put(cache.KeyPotentialMatches("u1", 1), []models.PotentialMatch{})
	c.Put(cache.KeyMatchedUsers("u2"), []models.Match{})
	svc := NewMatchService(gw, c, &fakeMatchSubscriber{}, testLogger())

	id, err := svc.Like(context.Background(), "u1", "u2")
	require.NoError(t, err)
	assert.Equal(t, "m-new", id)

	_, ok := c.Peek(cache.KeyPotentialMatches("u1", 1))
	assert.False(t, ok)
	_, ok = c.Peek(cache.KeyMatchedUsers("u2"))
	assert.False(t, ok)
}

func TestWatch_EventInvalidatesBeforeCallback(t *testing.T) {
	c := cache.NewStore(testLogger())
	c.Put(cache.KeyMatchedUsers("u1"), []models.Match{})
	sub := &fakeMatchSubscriber{}
	svc := NewMatchService(&fakeGateway{}, c, sub, testLogger())

	delivered := false
	svc.Watch("u1", func(e realtime.Event) {
		_, ok := c.Peek(cache.KeyMatchedUsers("u1"))
		assert.False(t, ok)
		delivered = true
	})

	require.NotNil(t, sub.fn)
	sub.fn(realtime.Event{Table: realtime.TableMatches, Type: realtime.EventUpdate})
	assert.True(t, delivered)
}

func TestExams_CachedLongTerm(t *testing.T) {
	gw := &fakeGateway{
		ExamsFn: func(ctx context.Context) ([]models.Exam, error) {
			return []models.Exam{{ID: "e1", Name: "LGS"}}, nil
		},
	}
	svc := NewExamService(gw, cache.NewStore(testLogger()))

	exams, err := svc.Exams(context.Background())
	require.NoError(t, err)
	require.Len(t, exams, 1)

	_, err = svc.Exams(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, gw.examsCalls)
}
