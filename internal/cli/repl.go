package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Onboard(ctx context.Context) error
	ShowExams(ctx context.Context) error
	Browse(ctx context.Context, args []string) error
	Like(ctx context.Context, args []string) error
	Matches(ctx context.Context) error
	Respond(ctx context.Context, args []string, accept bool) error
	Chats(ctx context.Context) error
	OpenChat(ctx context.Context, args []string) error
}

// runREPL starts a simple read-eval-print loop for the StudyBuds CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help             - show available commands
//	  - register         - create an account
//	  - login            - authenticate
//	  - exit | quit      - leave the program
//
//	Logged in:
//	  - help             - show available commands
//	  - onboard          - complete or edit the study profile
//	  - exams            - list the exam catalog
//	  - browse [page]    - browse potential study partners
//	  - like <userId>    - like a potential partner
//	  - matches          - list matches and pending likes
//	  - accept <matchId> - accept a pending like
//	  - reject <matchId> - reject a pending like
//	  - chats            - list conversations
//	  - chat <userId>    - open a conversation with a match
//	  - logout           - log out
//	  - exit | quit      - leave the program
//
// Errors returned by command handlers are printed here and the loop keeps
// going; a failed command must never take the REPL down.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("buds> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: onboard, exams, browse, like, matches, accept, reject, chats, chat, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			err = a.Register(ctx)

		case "login":
			err = a.Login(ctx)

		case "logout":
			err = a.Logout(ctx)

		case "onboard", "profile":
			err = a.Onboard(ctx)

		case "exams":
			err = a.ShowExams(ctx)

		case "b", "browse":
			err = a.Browse(ctx, args)

		case "like":
			err = a.Like(ctx, args)

		case "m", "matches":
			err = a.Matches(ctx)

		case "accept":
			err = a.Respond(ctx, args, true)

		case "reject":
			err = a.Respond(ctx, args, false)

		case "chats":
			err = a.Chats(ctx)

		case "chat":
			err = a.OpenChat(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("error:", err.Error())
		}
	}
}
