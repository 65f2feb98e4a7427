// Package cli is the interactive StudyBuds client: a REPL over the session
// store, the service layer and the realtime feed.
package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/AliAamir1/budsapp/internal/api"
	"github.com/AliAamir1/budsapp/internal/cache"
	"github.com/AliAamir1/budsapp/internal/chat"
	"github.com/AliAamir1/budsapp/internal/config"
	"github.com/AliAamir1/budsapp/internal/logging"
	"github.com/AliAamir1/budsapp/internal/realtime"
	"github.com/AliAamir1/budsapp/internal/services"
	"github.com/AliAamir1/budsapp/internal/session"
	"github.com/AliAamir1/budsapp/internal/storage"
)

// App wires the client together and backs every REPL command.
type App struct {
	config  *config.Config
	log     logging.Logger
	session *session.Store
	auth    services.AuthService
	matches services.MatchService
	exams   services.ExamService
	chats   *chat.Service
	rt      *realtime.Manager
	reader  *bufio.Reader

	// standing subscriptions, live while logged in
	watch     *realtime.Subscription
	chatWatch *realtime.Subscription
}

func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	db, err := storage.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	st := session.NewStore(storage.NewKeyValueStore(db), log)
	st.RefreshAuthState(ctx)

	gw := api.NewHTTPGateway(cfg.APIBaseURL, cfg.HTTPTimeout, st, log)
	c := cache.NewStore(log)
	rt := realtime.NewManager(cfg.RealtimeURL, log)

	return &App{
		config:  cfg,
		log:     log,
		session: st,
		auth:    services.NewAuthService(gw, st, c, log),
		matches: services.NewMatchService(gw, c, rt, log),
		exams:   services.NewExamService(gw, c),
		chats:   chat.NewService(gw, c, rt, log),
		rt:      rt,
		reader:  bufio.NewReader(os.Stdin),
	}, nil
}

// Run starts the realtime pump and the REPL, blocking until the user exits.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		if err := a.rt.Run(ctx); err != nil && ctx.Err() == nil {
			a.log.Error(ctx, "realtime pump stopped", "err", err)
		}
	}()

	if a.isLoggedIn() {
		a.watchMatches()
	}

	printlnFn("Welcome to StudyBuds (type 'help' for commands)")
	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

// status feeds the REPL prompt: email plus an onboarding reminder.
func (a *App) status() string {
	user := a.session.CurrentUser()
	if user == nil {
		return ""
	}
	if !a.session.OnboardingComplete() {
		return user.Email + ", onboarding incomplete"
	}
	return user.Email
}

// watchMatches keeps the cached match and chat queries honest while the user
// is logged in: every pushed change invalidates them so the next read
// re-derives.
func (a *App) watchMatches() {
	userID := a.session.CurrentUserID()
	if userID == "" || a.watch != nil {
		return
	}
	a.watch = a.matches.Watch(userID, func(e realtime.Event) {
		if e.Type == realtime.EventInsert {
			printlnFn("* someone new liked your profile, see 'matches'")
		}
	})
	a.chatWatch = a.chats.WatchChats(userID, nil)
}

func (a *App) unwatchMatches() {
	a.watch.Close()
	a.chatWatch.Close()
	a.watch = nil
	a.chatWatch = nil
}
