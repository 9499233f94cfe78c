package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context, email string) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Submit(ctx context.Context, file string) error
	List(ctx context.Context, status string) error
	Show(ctx context.Context, id string) error
	Approve(ctx context.Context, id, notes string) error
	Reject(ctx context.Context, id, notes string) error
	Seed(ctx context.Context) error
	Catalog(ctx context.Context, section string) error
}

// runREPL reads commands line by line from r and dispatches them to a until
// EOF, "exit" or "quit", or until ctx is cancelled.
//
//	Always:
//	  - help                     show available commands
//	  - nfts | vaults | pools | proposals
//	  - exit | quit
//
//	Not logged in:
//	  - login [email]
//
//	Logged in:
//	  - whoami | logout
//	  - submit [form file]
//	  - list [status] | pending | show <id>
//	  - approve <id> [notes] | reject <id> [notes]   (SPV only)
//	  - seed
//
// Handler errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, r *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("nanofi %s> ", statusFn()))

		line, err := readLine(ctx, r)
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, submit, (l)ist, pending, show, approve, reject, seed, nfts, vaults, pools, proposals, logout, exit")
			} else {
				printlnFn("Available commands: login, nfts, vaults, pools, proposals, exit")
			}

		case "login":
			cmdErr = a.Login(ctx, arg(args, 0))

		case "logout":
			cmdErr = a.Logout(ctx)

		case "whoami":
			cmdErr = a.WhoAmI(ctx)

		case "submit":
			cmdErr = a.Submit(ctx, arg(args, 0))

		case "l", "list":
			cmdErr = a.List(ctx, arg(args, 0))

		case "pending":
			cmdErr = a.List(ctx, "pending")

		case "show":
			cmdErr = a.Show(ctx, arg(args, 0))

		case "approve":
			cmdErr = a.Approve(ctx, arg(args, 0), notes(args))

		case "reject":
			cmdErr = a.Reject(ctx, arg(args, 0), notes(args))

		case "seed":
			cmdErr = a.Seed(ctx)

		case "nfts", "vaults", "pools", "proposals":
			cmdErr = a.Catalog(ctx, cmd)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("error:", cmdErr)
		}
	}
}

type readResult struct {
	line string
	err  error
}

// readLine reads one line from r and gives up when ctx is done. An abandoned
// read keeps running in the background and its line is dropped.
func readLine(ctx context.Context, r *bufio.Reader) (string, error) {
	ch := make(chan readResult, 1)
	go func() {
		line, err := r.ReadString('\n')
		ch <- readResult{line: line, err: err}
	}()

	select {
	case res := <-ch:
		return res.line, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func notes(args []string) string {
	if len(args) < 2 {
		return ""
	}
	return joinNotes(args[1:])
}
