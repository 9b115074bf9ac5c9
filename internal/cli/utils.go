package cli

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	appconfig "github.com/lewisedginton/shopping_chat_client/internal/config"
	"github.com/lewisedginton/shopping_chat_client/pkg/config"
	"github.com/lewisedginton/shopping_chat_client/pkg/logger"
)

// getLogger retrieves the logger from the CLI context metadata
func getLogger(ctx *cli.Context) logger.Logger {
	if ctx.App.Metadata != nil {
		if log, ok := ctx.App.Metadata["logger"].(logger.Logger); ok {
			return log
		}
	}

	// Fallback to default logger if not found
	return logger.NewLogger(logger.Config{
		Level:   logger.WarnLevel,
		Format:  "text",
		Service: "shopping-chat-client",
	})
}

// loadConfig reads --config-file, overlays the environment and applies the --profile flag.
func loadConfig(ctx *cli.Context) (*appconfig.AppConfig, error) {
	cfg := &appconfig.AppConfig{}
	if err := config.GetConfig(cfg, ctx.String("config-file"), false); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if p := ctx.String("profile"); p != "" {
		cfg.Profile = p
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
	}
	return cfg, nil
}

// useColor reports whether stdout is a terminal and styling has not been turned off.
func useColor(ctx *cli.Context) bool {
	if ctx.Bool("no-color") || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}
