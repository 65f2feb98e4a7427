package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/AliAamir1/budsapp/internal/api"
	"github.com/AliAamir1/budsapp/internal/models"
)

// Browse lists one page of potential study partners with their match scores
// and the server-side categorization buckets. Usage: browse [page]
func (a *App) Browse(ctx context.Context, args []string) error {
	if !a.requireOnboarding() {
		return nil
	}

	page := 1
	if len(args) > 0 {
		p, err := strconv.Atoi(args[0])
		if err != nil || p < 1 {
			printlnFn("Usage: browse [page]")
			return nil
		}
		page = p
	}

	res, err := a.matches.PotentialMatches(ctx, a.session.CurrentUserID(), api.PageOptions{Page: page, Limit: 10})
	if err != nil {
		return err
	}

	c := res.Categorized.Counts
	printlnFn(fmt.Sprintf("Buckets: %d perfect, %d excellent, %d good, %d potential",
		c.Perfect, c.Excellent, c.Good, c.Potential))

	for _, pm := range res.Matches {
		printlnFn(fmt.Sprintf("  %s  %-20s %s  score %.0f%%", pm.UserID, pm.FullName, pm.ExamName, pm.MatchScore))
	}
	p := res.Pagination
	printlnFn(fmt.Sprintf("Page %d/%d (%d candidates). Use 'like <userId>' to reach out.",
		p.CurrentPage, p.TotalPages, p.TotalCount))
	return nil
}

// Like swipes right on a candidate. Usage: like <userId>
func (a *App) Like(ctx context.Context, args []string) error {
	if !a.requireOnboarding() {
		return nil
	}
	if len(args) == 0 {
		printlnFn("Usage: like <userId>")
		return nil
	}

	if _, err := a.matches.Like(ctx, a.session.CurrentUserID(), args[0]); err != nil {
		return err
	}
	printlnFn("Liked. You will be notified when they respond.")
	return nil
}

// Matches lists confirmed matches first, then the likes awaiting this user's
// response.
func (a *App) Matches(ctx context.Context) error {
	if !a.isLoggedIn() {
		printlnFn("Log in first.")
		return nil
	}

	userID := a.session.CurrentUserID()
	matches, err := a.matches.MatchedUsers(ctx, userID)
	if err != nil {
		return err
	}

	printlnFn("Matched:")
	for _, m := range matches {
		if m.Status != models.MatchStatusMatched {
			continue
		}
		partner, perr := m.PartnerOf(userID)
		if perr != nil {
			continue
		}
		printlnFn(fmt.Sprintf("  %s  %s (chat %s)", m.ID, partner.FullName, partner.ID))
	}

	printlnFn("Waiting for your response:")
	for _, m := range matches {
		if !m.ActionableBy(userID) {
			continue
		}
		partner, perr := m.PartnerOf(userID)
		if perr != nil {
			continue
		}
		printlnFn(fmt.Sprintf("  %s  %s  accept/reject %s", m.ID, partner.FullName, m.ID))
	}
	return nil
}

// Respond accepts or rejects a pending like. Usage: accept|reject <matchId>
func (a *App) Respond(ctx context.Context, args []string, accept bool) error {
	if !a.isLoggedIn() {
		printlnFn("Log in first.")
		return nil
	}
	if len(args) == 0 {
		printlnFn("Usage: accept|reject <matchId>")
		return nil
	}

	userID := a.session.CurrentUserID()
	matches, err := a.matches.MatchedUsers(ctx, userID)
	if err != nil {
		return err
	}
	for _, m := range matches {
		if m.ID != args[0] {
			continue
		}
		if err := a.matches.Respond(ctx, userID, m, accept); err != nil {
			return err
		}
		if accept {
			partner, _ := m.PartnerOf(userID)
			printlnFn("It's a match! Open the conversation with 'chat " + partner.ID + "'.")
		} else {
			printlnFn("Rejected.")
		}
		return nil
	}
	printlnFn("No such match:", args[0])
	return nil
}

// requireOnboarding gates the match screens behind a complete profile.
func (a *App) requireOnboarding() bool {
	if !a.isLoggedIn() {
		printlnFn("Log in first.")
		return false
	}
	if !a.session.OnboardingComplete() {
		printlnFn("Complete your study profile first: run 'onboard'.")
		return false
	}
	return true
}
