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
	prompt() string
	flushToasts()

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error

	List(ctx context.Context) error
	Search(ctx context.Context) error
	Show(ctx context.Context, id string) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Bookmark(ctx context.Context, id string) error
	Bookmarks(ctx context.Context) error
	Mine(ctx context.Context) error
	Refresh(ctx context.Context) error
}

const (
	helpGuest = "Available commands: register, login, (l)ist, search, show <id>, refresh, exit"
	helpUser  = "Available commands: (l)ist, search, show <id>, add, edit <id>, delete <id>, " +
		"bookmark <id>, bookmarks, mine, refresh, whoami, logout, exit"
)

// runREPL starts a simple read–eval–print loop for the recipebox CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on a. Toasts raised by a command are printed once it
// returns. The loop exits on EOF, on "exit"/"quit" or when ctx is done.
//
// Handler errors are not printed here: the stores already raised a toast
// for every failed action, and input errors are printed by the handlers.
func runREPL(ctx context.Context, a execIface, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("recipebox %s> ", a.prompt()))

		line, err := readLine(reader)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				printlnFn("read error:", err)
			}
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		withID := func(fn func(context.Context, string) error) {
			if len(args) == 0 {
				printlnFn(fmt.Sprintf("Usage: %s <id>", cmd))
				return
			}
			_ = fn(ctx, args[0])
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpUser)
			} else {
				printlnFn(helpGuest)
			}

		case "register":
			_ = a.Register(ctx)
		case "login":
			_ = a.Login(ctx)
		case "logout":
			_ = a.Logout(ctx)
		case "whoami":
			_ = a.WhoAmI(ctx)

		case "l", "list":
			_ = a.List(ctx)
		case "search":
			_ = a.Search(ctx)
		case "show":
			withID(a.Show)
		case "add":
			_ = a.Add(ctx)
		case "edit":
			withID(a.Edit)
		case "delete":
			withID(a.Delete)
		case "bookmark":
			withID(a.Bookmark)
		case "bookmarks":
			_ = a.Bookmarks(ctx)
		case "mine":
			_ = a.Mine(ctx)
		case "refresh":
			_ = a.Refresh(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		a.flushToasts()
	}
}
