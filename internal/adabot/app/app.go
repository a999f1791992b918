// Package app assembles and runs the Ada relay bot.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tyhsieh/adabot/internal/adabot/bot"
	"github.com/tyhsieh/adabot/internal/adabot/clock"
	"github.com/tyhsieh/adabot/internal/adabot/gateway"
	"github.com/tyhsieh/adabot/internal/adabot/line"
	"github.com/tyhsieh/adabot/internal/adabot/llm"
	"github.com/tyhsieh/adabot/internal/adabot/memory"
	"github.com/tyhsieh/adabot/internal/adabot/profile"
	"github.com/tyhsieh/adabot/internal/adabot/session"
)

// Config holds application configuration.
type Config struct {
	// HTTPAddr is the TCP address the webhook/health/metrics server binds
	// (e.g. ":3000").
	HTTPAddr string

	// Line configures the outbound LINE Messaging API client. AccessToken
	// is required.
	Line line.ClientConfig

	// Model configures the text-completion provider. APIKey is required.
	Model llm.Config

	// Session holds the awake-window parameters.
	Session session.Config

	// Memory holds the conversation memory window parameters.
	Memory memory.Config

	// ProfilePath is an optional path to a profile YAML document. When
	// empty the built-in Ada profile is used.
	ProfilePath string

	// ProfileOverrides are applied on top of every loaded profile
	// (environment configuration wins over the file).
	ProfileOverrides profile.Overrides
}

// App is the assembled bot.
type App struct {
	config   *Config
	profiles *profile.Manager
	server   *gateway.Server
	cancel   context.CancelFunc
}

// New validates the configuration and wires the application. No network
// activity happens here; listeners and watchers start in Run.
func New(cfg *Config) (*App, error) {
	if cfg.Line.AccessToken == "" {
		return nil, fmt.Errorf("app: LINE access token is required")
	}
	if cfg.Model.APIKey == "" {
		return nil, fmt.Errorf("app: model API key is required")
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":3000"
	}

	profiles, err := profile.NewManager(cfg.ProfilePath, cfg.ProfileOverrides)
	if err != nil {
		return nil, err
	}

	clk := clock.System{}
	sessions := session.NewManager(cfg.Session, clk)
	mem := memory.NewStore(cfg.Memory, clk)
	model := llm.New(cfg.Model)
	messenger := line.NewClient(cfg.Line)

	processor := bot.NewProcessor(profiles, mem, sessions, model, messenger)
	server := gateway.New(cfg.HTTPAddr, processor)

	return &App{
		config:   cfg,
		profiles: profiles,
		server:   server,
	}, nil
}

// Run starts the HTTP server and the profile watcher, then blocks until
// SIGINT/SIGTERM or Stop.
func (a *App) Run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	a.cancel = cancel
	defer cancel()

	if err := a.profiles.Watch(ctx); err != nil {
		return err
	}
	if err := a.server.Start(ctx); err != nil {
		return err
	}

	slog.Info("adabot running",
		"addr", a.config.HTTPAddr,
		"model", a.config.Model.Model,
		"mention", a.profiles.Get().Mention,
	)

	<-ctx.Done()
	slog.Info("shutting down")
	return nil
}

// Stop shuts the application down. Safe to call before Run.
func (a *App) Stop() {
	if a.cancel != nil {
		a.cancel()
	}
	a.server.Stop()
}
