// Command adabot runs the Ada LINE relay bot.
//
// Configuration comes from environment variables (a .env file is loaded when
// present). LINE_ACCESS_TOKEN and OPENAI_API_KEY are required; everything
// else has a sensible default.
package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/tyhsieh/adabot/common/environment"
	"github.com/tyhsieh/adabot/common/version"
	"github.com/tyhsieh/adabot/internal/adabot/app"
	"github.com/tyhsieh/adabot/internal/adabot/line"
	"github.com/tyhsieh/adabot/internal/adabot/llm"
	"github.com/tyhsieh/adabot/internal/adabot/memory"
	"github.com/tyhsieh/adabot/internal/adabot/observability"
	"github.com/tyhsieh/adabot/internal/adabot/profile"
	"github.com/tyhsieh/adabot/internal/adabot/session"
)

func main() {
	// Best effort; in production the environment comes from the deployment.
	_ = godotenv.Load()

	observability.Setup(
		environment.StringOr("LOG_LEVEL", "info"),
		environment.StringOr("LOG_FORMAT", "text"),
	)

	cfg, err := configFromEnv()
	if err != nil {
		slog.Error("configuration error", "err", err)
		os.Exit(1)
	}

	slog.Info("starting adabot", "build", version.Info())

	a, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize", "err", err)
		os.Exit(1)
	}

	if err := a.Run(); err != nil {
		slog.Error("adabot exited with error", "err", err)
		os.Exit(1)
	}
}

// configFromEnv assembles the application configuration from environment
// variables.
func configFromEnv() (*app.Config, error) {
	lineToken, err := environment.RequiredString("LINE_ACCESS_TOKEN")
	if err != nil {
		return nil, err
	}
	openAIKey, err := environment.RequiredString("OPENAI_API_KEY")
	if err != nil {
		return nil, err
	}

	return &app.Config{
		HTTPAddr: ":" + environment.StringOr("PORT", "3000"),
		Line: line.ClientConfig{
			AccessToken: lineToken,
			BaseURL:     environment.StringOr("LINE_API_BASE", ""),
		},
		Model: llm.Config{
			APIKey:  openAIKey,
			BaseURL: environment.StringOr("OPENAI_BASE_URL", ""),
			Model:   environment.StringOr("OPENAI_MODEL", ""),
			Timeout: environment.DurationOr("OPENAI_TIMEOUT", 30*time.Second),
			Retries: environment.IntOr("OPENAI_RETRIES", 0),
		},
		Session: session.Config{
			TTL:   environment.DurationOr("SESSION_TTL", session.DefaultConfig().TTL),
			Turns: environment.IntOr("SESSION_TURNS", session.DefaultConfig().Turns),
		},
		Memory: memory.Config{
			Turns: environment.IntOr("MEMORY_TURNS", memory.DefaultConfig().Turns),
			TTL:   environment.DurationOr("MEMORY_TTL", memory.DefaultConfig().TTL),
		},
		ProfilePath: environment.StringOr("BOT_PROFILE", ""),
		ProfileOverrides: profile.Overrides{
			Persona:     environment.StringOr("BOT_PERSONA", ""),
			Mention:     environment.StringOr("BOT_MENTION", ""),
			EndCommands: environment.StringSliceOr("BOT_END_COMMANDS", nil),
		},
	}, nil
}
