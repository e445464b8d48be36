package cli

import (
	"bufio"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/ewaste/internal/client/services"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	state() services.State

	Login(ctx context.Context) error
	Register(ctx context.Context) error
	ResetPassword(ctx context.Context) error

	Verify(ctx context.Context) error
	Resend(ctx context.Context) error
	Cancel(ctx context.Context) error

	WhoAmI(ctx context.Context) error
	Dashboard(ctx context.Context) error
	Listings(ctx context.Context) error
	Listing(ctx context.Context, args []string) error
	AddListing(ctx context.Context) error
	EditListing(ctx context.Context, args []string) error
	DeleteListing(ctx context.Context, args []string) error
	Transactions(ctx context.Context) error
	Transaction(ctx context.Context, args []string) error
	AddTransaction(ctx context.Context) error
	Reviews(ctx context.Context) error
	AddReview(ctx context.Context) error
	Profile(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	Logout(ctx context.Context) error
}

// commandsByState lists the commands accepted in each flow state, in the
// order help prints them.
var commandsByState = map[services.State][]string{
	services.Anonymous: {
		"help", "login", "register", "reset", "exit",
	},
	services.AwaitingOTP: {
		"help", "verify", "resend", "cancel", "register", "exit",
	},
	services.Authenticated: {
		"help", "whoami", "dashboard",
		"listings", "listing", "addlisting", "editlisting", "deletelisting",
		"transactions", "transaction", "addtransaction",
		"reviews", "addreview",
		"profile", "passwd", "logout", "exit",
	},
}

func allowed(state services.State, cmd string) bool {
	if cmd == "quit" {
		cmd = "exit"
	}
	return slices.Contains(commandsByState[state], cmd)
}

func helpText(state services.State) string {
	return "Available commands: " + strings.Join(commandsByState[state], ", ")
}

// runREPL starts a simple read-eval-print loop for the e-waste CLI.
//
// It reads a line from reader, parses the first token as the command and the
// rest as arguments, and dispatches to methods on 'a'. Commands not offered
// in the current state are reported back to the user. The loop exits on EOF
// or when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Anonymous:
//	  - login, register, reset (password)
//
//	Awaiting OTP:
//	  - verify         enter the emailed code
//	  - resend         request a new code (after the countdown)
//	  - cancel         abandon the registration
//	  - register       start over with other details
//
//	Authenticated:
//	  - whoami, dashboard, profile, passwd, logout
//	  - listings, listing <id>, addlisting, editlisting <id>, deletelisting <id>
//	  - transactions, transaction <id>, addtransaction
//	  - reviews, addreview
//
// Any errors returned by command handlers are ignored here; handlers report
// their own errors. This keeps the REPL loop resilient and focused on I/O.
// Commands run one at a time, so a command cannot be re-entered while it is
// running.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("ewaste %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		parts := strings.Fields(line)
		if len(parts) == 0 {
			if err != nil {
				return
			}
			continue
		}
		cmd, args := parts[0], parts[1:]
		state := a.state()

		switch {
		case cmd == "exit" || cmd == "quit":
			printlnFn("Bye!")
			return
		case cmd == "help":
			printlnFn(helpText(state))
		case !allowed(state, cmd):
			printlnFn("Unknown command:", cmd)
		default:
			_ = dispatch(ctx, a, cmd, args)
		}

		if err != nil {
			return
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.Login(ctx)
	case "register":
		return a.Register(ctx)
	case "reset":
		return a.ResetPassword(ctx)
	case "verify":
		return a.Verify(ctx)
	case "resend":
		return a.Resend(ctx)
	case "cancel":
		return a.Cancel(ctx)
	case "whoami":
		return a.WhoAmI(ctx)
	case "dashboard":
		return a.Dashboard(ctx)
	case "listings":
		return a.Listings(ctx)
	case "listing":
		return a.Listing(ctx, args)
	case "addlisting":
		return a.AddListing(ctx)
	case "editlisting":
		return a.EditListing(ctx, args)
	case "deletelisting":
		return a.DeleteListing(ctx, args)
	case "transactions":
		return a.Transactions(ctx)
	case "transaction":
		return a.Transaction(ctx, args)
	case "addtransaction":
		return a.AddTransaction(ctx)
	case "reviews":
		return a.Reviews(ctx)
	case "addreview":
		return a.AddReview(ctx)
	case "profile":
		return a.Profile(ctx)
	case "passwd":
		return a.ChangePassword(ctx)
	case "logout":
		return a.Logout(ctx)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}
