package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/ergochat/readline"

	"github.com/lewisedginton/shopping_chat_client/internal/widget"
	"github.com/lewisedginton/shopping_chat_client/pkg/logger"
)

const prompt = "you> "

const helpText = `Commands:
  /login        log in, or log out when logged in
  /logout       log out
  /reset        start a new conversation
  /cart <n>     add product card n to the cart
  /status       show login status and session
  /history      print the transcript again
  /help         show this help
  /quit         leave
Anything else is sent to the assistant.`

// lineReader is the part of a readline instance the REPL uses.
type lineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

// REPL reads commands and messages and dispatches them to the controller. Chat sends run
// on their own goroutines so a slow reply never blocks the prompt.
type REPL struct {
	ctrl       *widget.Controller
	view       *TerminalView
	in         lineReader
	readSecret func(prompt string) (string, error)
	log        logger.Logger

	wg sync.WaitGroup
}

// NewREPL creates a REPL. readSecret reads the password without echo.
func NewREPL(ctrl *widget.Controller, view *TerminalView, in lineReader, readSecret func(string) (string, error), log logger.Logger) *REPL {
	return &REPL{
		ctrl:       ctrl,
		view:       view,
		in:         in,
		readSecret: readSecret,
		log:        log,
	}
}

// newReadline builds the interactive line editor with command completion.
func newReadline(historyFile string) (*readline.Instance, error) {
	completer := readline.NewPrefixCompleter(
		readline.PcItem("/login"),
		readline.PcItem("/logout"),
		readline.PcItem("/reset"),
		readline.PcItem("/cart"),
		readline.PcItem("/status"),
		readline.PcItem("/history"),
		readline.PcItem("/help"),
		readline.PcItem("/quit"),
	)
	return readline.NewFromConfig(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     historyFile,
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "/quit",
	})
}

func (r *REPL) spawn(fn func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		fn()
	}()
}

// Run reads until /quit, EOF or ctx is done, then waits for in-flight actions.
func (r *REPL) Run(ctx context.Context) error {
	defer r.wg.Wait()

	r.view.Println("Type /help for commands.")
	for {
		if ctx.Err() != nil {
			return nil
		}
		r.in.SetPrompt(prompt)
		line, err := r.in.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		if quit := r.dispatch(ctx, line); quit {
			return nil
		}
	}
}

// dispatch handles one input line and reports whether the REPL should stop.
func (r *REPL) dispatch(ctx context.Context, line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "/") {
		if trimmed != "" {
			r.spawn(func() { r.ctrl.SendMessage(ctx, line, nil) })
		}
		return false
	}

	fields := strings.Fields(trimmed)
	switch fields[0] {
	case "/quit", "/exit":
		return true
	case "/help":
		r.view.Println(helpText)
	case "/login":
		r.login(ctx)
	case "/logout":
		if _, in := r.ctrl.LoginState().(widget.LoggedIn); !in {
			r.view.Println("Not logged in.")
			return false
		}
		r.ctrl.HandleLogout(ctx)
	case "/reset":
		r.ctrl.Reset(ctx)
	case "/cart":
		r.addToCart(ctx, fields[1:])
	case "/status":
		st := r.ctrl.UpdateLoginStatus()
		sid := r.ctrl.Session().SessionID
		if sid == "" {
			sid = "(none yet)"
		}
		r.view.Println(fmt.Sprintf("%s, session %s", st.Label, sid))
	case "/history":
		r.view.PrintEntries(r.ctrl.Entries())
	default:
		r.view.Println(fmt.Sprintf("Unknown command %s. Type /help for commands.", fields[0]))
	}
	return false
}

func (r *REPL) addToCart(ctx context.Context, args []string) {
	if len(args) != 1 {
		r.view.Println("Usage: /cart <card number>")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		r.view.Println("Usage: /cart <card number>")
		return
	}
	r.spawn(func() {
		if err := r.ctrl.AddToCart(ctx, n); err != nil {
			r.view.Println(fmt.Sprintf("There is no product card %d.", n))
		}
	})
}

// login toggles: when logged in it logs out, otherwise it prompts with the form prefill.
// An empty username with no prefill cancels the form.
func (r *REPL) login(ctx context.Context) {
	if !r.ctrl.ToggleLogin(ctx) {
		return
	}
	defUser, defPass := r.view.Prefill()

	r.in.SetPrompt(fmt.Sprintf("username [%s]: ", defUser))
	username, err := r.in.Readline()
	if err != nil {
		r.ctrl.CloseLoginForm()
		return
	}
	username = strings.TrimSpace(username)
	if username == "" {
		username = defUser
	}
	if username == "" {
		r.ctrl.CloseLoginForm()
		return
	}

	password, err := r.readSecret("password (enter for default): ")
	if err != nil {
		r.log.Warn("Failed to read password", logger.ErrorField(err))
		r.ctrl.CloseLoginForm()
		return
	}
	if password == "" {
		password = defPass
	}

	r.ctrl.HandleLogin(ctx, username, password)
	if r.ctrl.LoginFormOpen() {
		r.view.Println("Type /login to try again.")
		r.ctrl.CloseLoginForm()
	}
}
