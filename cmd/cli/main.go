package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	commands "github.com/lewisedginton/shopping_chat_client/internal/cli"
	"github.com/lewisedginton/shopping_chat_client/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:    "shopping-chat",
		Usage:   "Chat with the shopping assistant from your terminal",
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "text",
				Usage:   "Log format (text, json)",
				EnvVars: []string{"LOG_FORMAT"},
			},
			&cli.StringFlag{
				Name:    "config-file",
				Value:   "",
				Usage:   "Path to configuration file",
				EnvVars: []string{"CONFIG_FILE"},
			},
			&cli.StringFlag{
				Name:  "profile",
				Usage: "Profile holding the session and login (overrides CHAT_PROFILE)",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable ANSI styling",
			},
		},
		Before: func(ctx *cli.Context) error {
			// Logs go to stderr so they never interleave with the transcript
			log := logger.NewLogger(logger.Config{
				Level:   logger.ParseLevel(ctx.String("log-level")),
				Format:  ctx.String("log-format"),
				Service: "shopping-chat-client",
			})

			ctx.App.Metadata = map[string]interface{}{
				"logger": log,
			}
			return nil
		},
		Action: commands.ChatAction,
		Commands: []*cli.Command{
			commands.ChatCommand(),
			commands.SendCommand(),
			commands.LoginCommand(),
			commands.LogoutCommand(),
			commands.ResetCommand(),
			commands.StatusCommand(),
			commands.HistoryCommand(),
			commands.PingCommand(),
			commands.ConfigCommand(),
		},
	}

	if err := app.RunContext(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
