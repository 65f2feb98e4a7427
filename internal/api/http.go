package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/AliAamir1/budsapp/internal/logging"
	"github.com/AliAamir1/budsapp/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// refreshSkew is how close to expiry the access token may get before the
// gateway refreshes it ahead of a request.
const refreshSkew = 30 * time.Second

// HTTPGateway implements Gateway over the REST backend.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
	creds   Credentials
	log     logging.Logger

	// now is a test seam for expiry checks.
	now func() time.Time

	// refreshMu serializes token refreshes so concurrent requests do not
	// burn the same refresh token twice.
	refreshMu sync.Mutex
}

func NewHTTPGateway(baseURL string, timeout time.Duration, creds Credentials, log logging.Logger) *HTTPGateway {
	return &HTTPGateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		creds:   creds,
		log:     log,
		now:     time.Now,
	}
}

// envelope is the {"data": ...} wrapper every backend response uses.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// errorBody is the error payload shape of the backend.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Details any    `json:"details"`
}

// do issues one JSON request and decodes the "data" member into out. The
// access token is attached as a bearer header when present; on a 401 the
// gateway refreshes once and retries, then purges stored credentials if the
// backend still rejects them. Navigation after a purge is the caller's
// responsibility.
func (g *HTTPGateway) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	access, refresh := g.creds.Tokens(ctx)
	if access != "" && refresh != "" && g.tokenExpiringSoon(access) {
		if err := g.refreshTokens(ctx, refresh); err == nil {
			access, _ = g.creds.Tokens(ctx)
		} else {
			g.log.Warn(ctx, "token refresh ahead of expiry failed", "err", err)
		}
	}

	status, data, err := g.send(ctx, method, path, query, payload, access)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized {
		_, refresh = g.creds.Tokens(ctx)
		if refresh != "" {
			if rerr := g.refreshTokens(ctx, refresh); rerr == nil {
				access, _ = g.creds.Tokens(ctx)
				status, data, err = g.send(ctx, method, path, query, payload, access)
				if err != nil {
					return err
				}
			}
		}
		if status == http.StatusUnauthorized {
			if cerr := g.creds.ClearCredentials(ctx); cerr != nil {
				g.log.Warn(ctx, "failed to clear credentials", "err", cerr)
			}
			return statusErrorFromBody(status, data)
		}
	}

	if status < 200 || status > 299 {
		return statusErrorFromBody(status, data)
	}

	if out == nil {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil || env.Data == nil {
		// some endpoints answer without the envelope
		if uerr := json.Unmarshal(data, out); uerr != nil {
			return fmt.Errorf("decode response: %w", uerr)
		}
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// send performs a single HTTP round trip and returns status and raw body.
func (g *HTTPGateway) send(ctx context.Context, method, path string, query url.Values, payload []byte, access string) (int, []byte, error) {
	u := g.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return 0, nil, newTransportError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, nil, newTransportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, newTransportError(err)
	}
	return resp.StatusCode, data, nil
}

func statusErrorFromBody(status int, data []byte) *Error {
	var eb errorBody
	_ = json.Unmarshal(data, &eb)
	msg := eb.Message
	if msg == "" {
		msg = eb.Error
	}
	return newStatusError(status, msg, eb.Details)
}

// tokenExpiringSoon inspects the unverified exp claim of the access token.
// Signature verification is the server's job; the client only needs the
// timestamp. Unparseable tokens are treated as expiring so the refresh path
// gets a chance to replace them.
func (g *HTTPGateway) tokenExpiringSoon(access string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return g.now().Add(refreshSkew).After(exp.Time)
}

// refreshTokens trades the refresh token for a new session and persists it.
func (g *HTTPGateway) refreshTokens(ctx context.Context, refresh string) error {
	g.refreshMu.Lock()
	defer g.refreshMu.Unlock()

	// another request may have refreshed while we waited for the lock
	if access, _ := g.creds.Tokens(ctx); access != "" && !g.tokenExpiringSoon(access) {
		return nil
	}

	status, data, err := g.send(ctx, http.MethodPost, "/auth/refresh", nil,
		mustJSON(map[string]string{"refresh_token": refresh}), "")
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return statusErrorFromBody(status, data)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decode refresh response: %w", err)
	}
	var res AuthResult
	if err := json.Unmarshal(env.Data, &res); err != nil {
		return fmt.Errorf("decode refresh response: %w", err)
	}
	return g.creds.StoreSession(ctx, &res.Session, res.User)
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// SignUp creates an account. The new credential pair and user snapshot are
// persisted before the call resolves, so an immediate session read observes
// them.
func (g *HTTPGateway) SignUp(ctx context.Context, req SignUpRequest) (*AuthResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var res AuthResult
	if err := g.do(ctx, http.MethodPost, "/auth/signup", nil, req, &res); err != nil {
		return nil, err
	}
	if err := g.creds.StoreSession(ctx, &res.Session, res.User); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	return &res, nil
}

// Login authenticates and persists the credential pair and user snapshot
// before resolving.
func (g *HTTPGateway) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var res AuthResult
	if err := g.do(ctx, http.MethodPost, "/auth/login", nil, req, &res); err != nil {
		return nil, err
	}
	if err := g.creds.StoreSession(ctx, &res.Session, res.User); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	return &res, nil
}

// Logout clears local credentials regardless of the remote call's outcome;
// a stuck logged-in state is worse than an orphaned remote session.
func (g *HTTPGateway) Logout(ctx context.Context) error {
	if err := g.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil); err != nil {
		g.log.Warn(ctx, "remote logout failed, clearing local state anyway", "err", err)
	}
	return g.creds.ClearCredentials(ctx)
}

func (g *HTTPGateway) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var user models.User
	if err := g.do(ctx, http.MethodPost, "/profiles/edit", nil, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (g *HTTPGateway) PotentialMatches(ctx context.Context, userID string, opts PageOptions) (*PotentialMatchesResult, error) {
	query := url.Values{}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	var res PotentialMatchesResult
	if err := g.do(ctx, http.MethodGet, "/matches/"+userID, query, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (g *HTTPGateway) MatchedUsers(ctx context.Context, userID string) ([]models.Match, error) {
	var res struct {
		Matches []models.Match `json:"matches"`
		Count   int            `json:"count"`
	}
	if err := g.do(ctx, http.MethodGet, "/matches/"+userID+"/all", nil, nil, &res); err != nil {
		return nil, err
	}
	return res.Matches, nil
}

func (g *HTTPGateway) CreateMatch(ctx context.Context, user1ID, user2ID string) (string, error) {
	body := map[string]string{"user1Id": user1ID, "user2Id": user2ID}
	var res struct {
		ID string `json:"id"`
	}
	if err := g.do(ctx, http.MethodPost, "/matches", nil, body, &res); err != nil {
		return "", err
	}
	return res.ID, nil
}

func (g *HTTPGateway) UpdateMatchStatus(ctx context.Context, matchID, status string) error {
	body := map[string]string{"matchId": matchID, "status": status}
	var res struct {
		Success bool `json:"success"`
	}
	if err := g.do(ctx, http.MethodPatch, "/matches/status", nil, body, &res); err != nil {
		return err
	}
	if !res.Success {
		return &Error{Message: "match status update rejected"}
	}
	return nil
}

func (g *HTTPGateway) Exams(ctx context.Context) ([]models.Exam, error) {
	var exams []models.Exam
	if err := g.do(ctx, http.MethodGet, "/exams", nil, nil, &exams); err != nil {
		return nil, err
	}
	return exams, nil
}

func (g *HTTPGateway) UserChats(ctx context.Context, userID string) ([]models.Chat, error) {
	var chats []models.Chat
	if err := g.do(ctx, http.MethodGet, "/chats/"+userID, nil, nil, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

// CreateChat asks the backend for a conversation container keyed on the
// unordered participant pair. The backend treats the pair as unique; a 409
// means the chat already exists and callers re-read instead of failing.
func (g *HTTPGateway) CreateChat(ctx context.Context, recipientOne, recipientTwo string) (*models.Chat, error) {
	body := map[string]string{"recipientOne": recipientOne, "recipientTwo": recipientTwo}
	var chat models.Chat
	if err := g.do(ctx, http.MethodPost, "/chats", nil, body, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

func (g *HTTPGateway) ChatMessages(ctx context.Context, chatID string) ([]models.Message, error) {
	var msgs []models.Message
	if err := g.do(ctx, http.MethodGet, "/chats/"+chatID+"/messages", nil, nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// SendMessage stores a message and returns the authoritative row, including
// the final id used for optimistic-entry replacement.
func (g *HTTPGateway) SendMessage(ctx context.Context, chatID, senderID, receiverID, content string) (*models.Message, error) {
	body := map[string]string{
		"chatId":     chatID,
		"senderId":   senderID,
		"receiverId": receiverID,
		"content":    content,
	}
	var msg models.Message
	if err := g.do(ctx, http.MethodPost, "/messages", nil, body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
