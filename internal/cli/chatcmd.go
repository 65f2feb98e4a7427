package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Chats lists the user's conversations with their last message.
func (a *App) Chats(ctx context.Context) error {
	if !a.isLoggedIn() {
		printlnFn("Log in first.")
		return nil
	}

	userID := a.session.CurrentUserID()
	chats, err := a.chats.Chats(ctx, userID)
	if err != nil {
		return err
	}
	if len(chats) == 0 {
		printlnFn("No conversations yet. Accept a match to start one.")
		return nil
	}
	for _, c := range chats {
		partner, perr := c.PartnerOf(userID)
		if perr != nil {
			continue
		}
		last := c.LastMessage
		if last == "" {
			last = "(no messages yet)"
		}
		printlnFn(fmt.Sprintf("  %s  with %s: %s", c.ID, partner, last))
	}
	return nil
}

// OpenChat opens the conversation with a matched partner and enters a small
// send loop: every line is sent as a message, incoming messages are printed
// as they arrive, and a single "." leaves the conversation.
// Usage: chat <userId>
func (a *App) OpenChat(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		printlnFn("Log in first.")
		return nil
	}
	if len(args) == 0 {
		printlnFn("Usage: chat <userId>")
		return nil
	}

	userID := a.session.CurrentUserID()
	conv, err := a.chats.Open(ctx, userID, args[0])
	if err != nil {
		return err
	}
	defer conv.Close()

	printed := make(map[string]struct{})
	var printedMu sync.Mutex

	history := conv.Messages()
	// history is kept newest first; print oldest first for reading flow
	for i := len(history) - 1; i >= 0; i-- {
		printed[history[i].ID] = struct{}{}
		printMessage(userID, history[i].SenderID, history[i].Content)
	}

	conv.OnUpdate(func() {
		// several rows can land between reads; print every partner message
		// not shown yet, oldest first
		msgs := conv.Messages()
		printedMu.Lock()
		defer printedMu.Unlock()
		for i := len(msgs) - 1; i >= 0; i-- {
			m := msgs[i]
			if m.SenderID == userID {
				continue
			}
			if _, ok := printed[m.ID]; ok {
				continue
			}
			printed[m.ID] = struct{}{}
			printMessage(userID, m.SenderID, m.Content)
		}
	})

	printlnFn("Type a message and press Enter ('.' to leave the chat)")
	for {
		line, rerr := a.reader.ReadString('\n')
		if rerr != nil {
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "." {
			return nil
		}
		if line == "" {
			continue
		}
		if _, serr := conv.Send(ctx, line); serr != nil {
			printlnFn("not sent:", serr.Error())
		}
	}
}

func printMessage(selfID, senderID, content string) {
	who := "them"
	if senderID == selfID {
		who = "you"
	}
	printlnFn(fmt.Sprintf("  [%s] %s", who, content))
}
