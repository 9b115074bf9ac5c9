package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/lewisedginton/shopping_chat_client/internal/widget"
	"github.com/lewisedginton/shopping_chat_client/pkg/logger"
)

// ChatCommand starts the interactive chat.
func ChatCommand() *cli.Command {
	return &cli.Command{
		Name:   "chat",
		Usage:  "Start an interactive chat session",
		Action: ChatAction,
	}
}

// ChatAction runs the interactive chat. It is also the app's default action.
func ChatAction(ctx *cli.Context) error {
	log := getLogger(ctx)

	cfg, err := loadConfig(ctx)
	if err != nil {
		log.Error("Failed to load configuration", logger.ErrorField(err))
		return err
	}

	runCtx, stop := signal.NotifyContext(ctx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := openSession(runCtx, cfg, log, NewTerminalView(ctx.App.Writer, useColor(ctx)))
	if err != nil {
		return fmt.Errorf("failed to start chat: %w", err)
	}
	defer s.Close()

	if n := s.ctrl.RestoreHistory(runCtx); n > 0 {
		log.Info("Restored conversation", logger.IntField("entries", n))
	}

	rl, err := newReadline(cfg.HistoryFile)
	if err != nil {
		return fmt.Errorf("failed to start line editor: %w", err)
	}
	defer func() { _ = rl.Close() }()

	repl := NewREPL(s.ctrl, s.view, rl, readPassword(rl, term.IsTerminal(int(os.Stdin.Fd()))), log)
	return repl.Run(runCtx)
}

// passwordReader is a line reader that can also read without echo. *readline.Instance is one.
type passwordReader interface {
	lineReader
	ReadPassword(prompt string) ([]byte, error)
}

// readPassword reads without echo through the line editor when stdin is a terminal, and
// falls back to a plain line otherwise.
func readPassword(in passwordReader, interactive bool) func(string) (string, error) {
	return func(p string) (string, error) {
		if !interactive {
			in.SetPrompt(p)
			defer in.SetPrompt(prompt)
			return in.Readline()
		}
		b, err := in.ReadPassword(p)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(b), nil
	}
}

// withSession runs fn against a session whose view only prints transcript entries.
func withSession(ctx *cli.Context, fn func(context.Context, *chatSession) error) error {
	log := getLogger(ctx)

	cfg, err := loadConfig(ctx)
	if err != nil {
		log.Error("Failed to load configuration", logger.ErrorField(err))
		return err
	}

	// Quiet before the controller exists, which paints the status line on creation.
	view := NewTerminalView(ctx.App.Writer, useColor(ctx))
	view.SetQuiet(true)

	s, err := openSession(ctx.Context, cfg, log, view)
	if err != nil {
		return err
	}
	defer s.Close()

	return fn(ctx.Context, s)
}

// SendCommand sends one message and prints the reply.
func SendCommand() *cli.Command {
	return &cli.Command{
		Name:      "send",
		Usage:     "Send one message and print the reply",
		ArgsUsage: "<message>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "product-id",
				Usage: "Product id sent along with the message",
			},
		},
		Action: func(ctx *cli.Context) error {
			query := strings.Join(ctx.Args().Slice(), " ")
			var extra map[string]any
			if id := ctx.String("product-id"); id != "" {
				extra = map[string]any{widget.ExtraProductID: id}
			}
			if strings.TrimSpace(query) == "" && extra == nil {
				return fmt.Errorf("nothing to send")
			}
			return withSession(ctx, func(c context.Context, s *chatSession) error {
				s.ctrl.SendMessage(c, query, extra)
				return nil
			})
		},
	}
}

// LoginCommand logs in and stores the identity in the profile.
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Log in to the store",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "Username (defaults to the configured prefill)"},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Password (defaults to the configured prefill)", EnvVars: []string{"CHAT_PASSWORD"}},
		},
		Action: func(ctx *cli.Context) error {
			return withSession(ctx, func(c context.Context, s *chatSession) error {
				username := ctx.String("username")
				if username == "" {
					username = s.cfg.Login.PrefillUsername
				}
				password := ctx.String("password")
				if password == "" {
					password = s.cfg.Login.PrefillPassword
				}

				s.ctrl.HandleLogin(c, username, password)
				if _, in := s.ctrl.LoginState().(widget.LoggedIn); !in {
					return fmt.Errorf("login failed: %s", s.view.LoginMessage())
				}
				_, _ = fmt.Fprintln(ctx.App.Writer, s.ctrl.UpdateLoginStatus().Label)
				return nil
			})
		},
	}
}

// LogoutCommand forgets the stored login.
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Forget the stored login",
		Action: func(ctx *cli.Context) error {
			return withSession(ctx, func(c context.Context, s *chatSession) error {
				s.ctrl.HandleLogout(c)
				return nil
			})
		},
	}
}

// ResetCommand starts a new conversation.
func ResetCommand() *cli.Command {
	return &cli.Command{
		Name:  "reset",
		Usage: "Forget the conversation and start a new one",
		Action: func(ctx *cli.Context) error {
			return withSession(ctx, func(c context.Context, s *chatSession) error {
				s.ctrl.Reset(c)
				return nil
			})
		},
	}
}

// StatusCommand prints login status and the held session.
func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show login status and session",
		Action: func(ctx *cli.Context) error {
			return withSession(ctx, func(c context.Context, s *chatSession) error {
				sess := s.ctrl.Session()
				w := ctx.App.Writer
				_, _ = fmt.Fprintf(w, "profile:  %s\n", s.cfg.Profile)
				_, _ = fmt.Fprintf(w, "status:   %s\n", s.ctrl.UpdateLoginStatus().Label)
				_, _ = fmt.Fprintf(w, "session:  %s\n", orNone(sess.SessionID))
				_, _ = fmt.Fprintf(w, "user id:  %s\n", orNone(sess.UserID))
				return nil
			})
		},
	}
}

// HistoryCommand prints the gateway's stored history for the held session.
func HistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Print the stored conversation",
		Action: func(ctx *cli.Context) error {
			return withSession(ctx, func(c context.Context, s *chatSession) error {
				if s.ctrl.RestoreHistory(c) == 0 {
					_, _ = fmt.Fprintln(ctx.App.Writer, "No stored conversation.")
				}
				return nil
			})
		},
	}
}

// PingCommand checks that both backends and the profile store are reachable.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Usage: "Check that the backends and the profile store are reachable",
		Action: func(ctx *cli.Context) error {
			return withSession(ctx, func(c context.Context, s *chatSession) error {
				report, err := s.checker.Run(c)
				for _, r := range report.Checks {
					mark := "✅"
					detail := r.Latency.String()
					if !r.Healthy {
						mark = "❌"
						detail = r.Error
					}
					_, _ = fmt.Fprintf(ctx.App.Writer, "%s %-14s %s\n", mark, r.Name, detail)
				}
				if err != nil {
					s.log.Error("Ping failed", logger.ErrorField(err))
					return err
				}
				return nil
			})
		},
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
