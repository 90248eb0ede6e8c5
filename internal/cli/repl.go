package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App satisfies
// it; tests use a stub.
type execIface interface {
	isLoggedIn() bool
	keepAlive(ctx context.Context)

	Register(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
	Reset(ctx context.Context, args []string) error

	Todos(ctx context.Context, args []string) error
	AddTodo(ctx context.Context, args []string) error
	EditTodo(ctx context.Context, args []string) error
	Done(ctx context.Context, args []string) error
	DelTodo(ctx context.Context, args []string) error

	Ideas(ctx context.Context, args []string) error
	AddIdea(ctx context.Context, args []string) error
	EditIdea(ctx context.Context, args []string) error
	Fav(ctx context.Context, args []string) error
	DelIdea(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error

	Achievements(ctx context.Context, args []string) error
	AddAch(ctx context.Context, args []string) error
	EditAch(ctx context.Context, args []string) error
	DelAch(ctx context.Context, args []string) error
	DelImg(ctx context.Context, args []string) error
	Tags(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Available commands: register, login, reset, help, exit"
	helpLoggedIn  = `Available commands:
  todos [all|pending|done]      list todos
  addtodo | edittodo <id>       create or change a todo
  done <id> | deltodo <id>      toggle or delete a todo
  ideas [all|fav] [keyword]     list ideas
  addidea | editidea <id>       create or change an idea
  fav <id> | delidea <id>       toggle favorite or delete an idea
  search <keyword>              search ideas
  achievements [recent|month|range <from> <to>]
  addach | editach <id>         create or change an achievement
  delach <id> | delimg <id> <index>
  tags [tag...|clear]           list tags or filter achievements
  logout, help, exit`
)

var public = map[string]bool{"register": true, "login": true, "reset": true}

// runREPL reads commands from reader and dispatches them to a until EOF or
// "exit". The prompt shows statusFn(). Prompts issued by commands read from
// the same reader, so the REPL never buffers ahead of them.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("lifetrack %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || strings.TrimSpace(line) == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var handler func(context.Context, []string) error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		case "register":
			handler = a.Register
		case "login":
			handler = a.Login
		case "reset":
			handler = a.Reset
		}

		if handler == nil {
			switch cmd {
			case "logout":
				handler = a.Logout
			case "todos":
				handler = a.Todos
			case "addtodo":
				handler = a.AddTodo
			case "edittodo":
				handler = a.EditTodo
			case "done":
				handler = a.Done
			case "deltodo":
				handler = a.DelTodo
			case "ideas":
				handler = a.Ideas
			case "addidea":
				handler = a.AddIdea
			case "editidea":
				handler = a.EditIdea
			case "fav":
				handler = a.Fav
			case "delidea":
				handler = a.DelIdea
			case "search":
				handler = a.Search
			case "achievements":
				handler = a.Achievements
			case "addach":
				handler = a.AddAch
			case "editach":
				handler = a.EditAch
			case "delach":
				handler = a.DelAch
			case "delimg":
				handler = a.DelImg
			case "tags":
				handler = a.Tags
			}
		}

		if handler == nil {
			printlnFn("Unknown command:", cmd)
			continue
		}
		if !public[cmd] {
			a.keepAlive(ctx)
			if !a.isLoggedIn() {
				printlnFn("Please login first")
				continue
			}
		}
		// Handlers report their own failures.
		_ = handler(ctx, args)

		if err != nil {
			return
		}
	}
}
