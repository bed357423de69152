package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/floodworks/sesloc/internal/config"
	"github.com/floodworks/sesloc/internal/engine"
	"github.com/floodworks/sesloc/internal/queue"
	"github.com/floodworks/sesloc/internal/remote"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags: -ldflags "-X main.Version=1.0.0"
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:          "sesloc",
	Short:        "sesloc - offline-first field location logger",
	Long:         "Log points of interest from the field, queue them durably while offline, and sync them to the shared backend when connectivity returns.",
	Version:      Version,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(pendingCmd)
}

// app bundles the wired components a command needs.
type app struct {
	cfg    *config.Config
	engine *engine.Engine
	queue  *queue.Store
}

func (a *app) Close() {
	if err := a.queue.Close(); err != nil {
		slog.Error("queue close error", "error", err)
	}
}

// newApp loads configuration, initializes logging and wires the engine. A
// view-only deployment gets a tokenless gateway, so every write entry point
// refuses at the boundary rather than relying on command-level checks.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	initLogger(cfg)

	token := cfg.Backend.Token
	if cfg.Logger.ViewOnly {
		token = ""
	}
	gw := remote.New(cfg.Backend.URL, token, time.Duration(cfg.Backend.Timeout))

	q, err := queue.Open(cfg.Database.Path, queue.WithNotifier(func(count int) {
		slog.Debug("pending queue changed", "count", count)
	}))
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:    cfg,
		engine: engine.New(gw, q),
		queue:  q,
	}, nil
}

func initLogger(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Log.Level)}

	var handler slog.Handler
	if cfg.Log.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
