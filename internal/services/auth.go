// Package services contains the application services behind the CLI: account
// and profile management, match browsing and responses, and the exam catalog.
// Services coordinate the gateway, the session store and the query cache;
// rendering is the CLI's job.
package services

import (
	"context"
	"fmt"

	"github.com/AliAamir1/budsapp/internal/api"
	"github.com/AliAamir1/budsapp/internal/cache"
	"github.com/AliAamir1/budsapp/internal/logging"
	"github.com/AliAamir1/budsapp/internal/models"
)

// sessionWriter is the slice of the session store the auth service needs:
// refreshing the persisted user snapshot after a profile update and dropping
// the identity on logout.
type sessionWriter interface {
	StoreSession(ctx context.Context, session *models.Session, user *models.User) error
	SetAuthState(ctx context.Context, authenticated bool, user *models.User)
}

// AuthService defines account operations for the CLI.
//
// Contract:
//   - Register: create an account; the session is live when it returns.
//   - Login: authenticate; the session is live when it returns.
//   - Logout: end the session; local state is cleared even when the
//     backend call fails.
//   - UpdateProfile: patch profile fields and refresh the local snapshot.
//
// All methods honor context cancellation and timeouts.
type AuthService interface {
	Register(ctx context.Context, email, password, fullName string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	Logout(ctx context.Context) error
	UpdateProfile(ctx context.Context, req api.UpdateProfileRequest) (*models.User, error)
}

type authService struct {
	gw      api.Gateway
	session sessionWriter
	cache   *cache.Store
	log     logging.Logger
}

func NewAuthService(gw api.Gateway, st sessionWriter, c *cache.Store, log logging.Logger) AuthService {
	return &authService{gw: gw, session: st, cache: c, log: log}
}

// Register creates the account. The gateway persists credentials and the user
// snapshot before resolving, so the session store is immediately consistent.
func (a *authService) Register(ctx context.Context, email, password, fullName string) (*models.User, error) {
	res, err := a.gw.SignUp(ctx, api.SignUpRequest{Email: email, Password: password, FullName: fullName})
	if err != nil {
		return nil, fmt.Errorf("signup error: %w", err)
	}
	return res.User, nil
}

func (a *authService) Login(ctx context.Context, email, password string) (*models.User, error) {
	res, err := a.gw.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}
	return res.User, nil
}

// Logout drops the local session and cache regardless of whether the backend
// call succeeded; a dead backend must never trap the user in a session.
func (a *authService) Logout(ctx context.Context) error {
	err := a.gw.Logout(ctx)
	a.session.SetAuthState(ctx, false, nil)
	a.cache.Clear()
	if err != nil {
		return fmt.Errorf("logout error: %w", err)
	}
	return nil
}

func (a *authService) UpdateProfile(ctx context.Context, req api.UpdateProfileRequest) (*models.User, error) {
	user, err := a.gw.UpdateProfile(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("profile update error: %w", err)
	}
	if err := a.session.StoreSession(ctx, nil, user); err != nil {
		a.log.Warn(ctx, "profile snapshot not persisted", "err", err)
	}
	a.cache.InvalidatePrefix(cache.KeyMatchesPrefix)
	return user, nil
}
