package cli

import (
	"context"
	"os"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getOptionalText = GetOptionalText
var getPassword = GetPassword

// Register prompts for email, password and full name and creates an account.
// The session is live when it returns, but the profile still needs
// onboarding before browsing works.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	fullName, err := getSimpleText(a.reader, "Enter full name", os.Stdout)
	if err != nil {
		return err
	}

	user, err := a.auth.Register(ctx, email, password, fullName)
	if err != nil {
		return err
	}

	printlnFn("Welcome,", user.Name+"! Run 'onboard' to complete your study profile.")
	a.watchMatches()
	return nil
}

// Login prompts for credentials and authenticates. On success the session
// store already holds the tokens and user snapshot; the standing match
// subscription is started here.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	user, err := a.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}

	printlnFn("Logged in as", user.Email)
	if !a.session.OnboardingComplete() {
		printlnFn("Your study profile is incomplete, run 'onboard' to finish it.")
	}
	a.watchMatches()
	return nil
}

// Logout ends the session. Local state is gone even when the backend call
// fails, so the error is only reported, never blocking.
func (a *App) Logout(ctx context.Context) error {
	a.unwatchMatches()
	if err := a.auth.Logout(ctx); err != nil {
		a.log.Warn(ctx, "remote logout failed, local session cleared anyway", "err", err)
	}
	printlnFn("Logged out.")
	return nil
}
