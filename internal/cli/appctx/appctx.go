// Package appctx provides a shared bootstrap helper for CLI commands.
// It centralizes config loading, flag overrides, logging and API client
// construction to reduce boilerplate across commands.
package appctx

import (
	"fmt"
	"log/slog"

	"github.com/lherron/listsync/internal/config"
	"github.com/lherron/listsync/internal/logging"
	"github.com/lherron/listsync/internal/notify"
	"github.com/lherron/listsync/internal/remote"
	"github.com/lherron/listsync/internal/render"
	"github.com/lherron/listsync/internal/service"
	"github.com/spf13/cobra"
)

// App holds the shared application context for commands.
type App struct {
	// Config is the loaded configuration with flag overrides applied
	Config *config.Config

	Logger *slog.Logger

	// Service talks to the list API (nil if NeedsService is false)
	Service service.Service

	// Notifier prints notices to the command's stderr
	Notifier notify.Notifier

	// Renderer writes command output in the selected format
	Renderer *render.Renderer
}

// Close releases resources held by the App.
// Safe to call multiple times.
func (a *App) Close() {
	if c, ok := a.Service.(interface{ CloseIdleConnections() }); ok {
		c.CloseIdleConnections()
	}
	a.Service = nil
}

// Options configures the bootstrap behavior.
type Options struct {
	// NeedsService indicates whether to build the API client.
	NeedsService bool
}

// DefaultOptions returns default options (API client required).
func DefaultOptions() Options {
	return Options{NeedsService: true}
}

// NewService builds the API client from the configuration. Tests replace it
// to run commands against an in-memory service.
var NewService = func(cfg *config.Config) service.Service {
	return remote.New(cfg.APIURL, cfg.Token, cfg.APITimeout)
}

// RunFunc is the signature for command run functions.
type RunFunc func(app *App, cmd *cobra.Command, args []string) error

// WithApp wraps a command's run function with shared bootstrap logic.
// Idle API connections are released when the wrapped function returns.
func WithApp(opts Options, fn RunFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := Bootstrap(cmd, opts)
		if err != nil {
			return err
		}
		defer app.Close()

		return fn(app, cmd, args)
	}
}

// Bootstrap initializes the App according to the given options.
// Callers are responsible for calling App.Close() when done.
func Bootstrap(cmd *cobra.Command, opts Options) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	applyStringFlag(cmd, "api-url", &cfg.APIURL)
	applyStringFlag(cmd, "token", &cfg.Token)
	applyStringFlag(cmd, "output", &cfg.Output)
	applyStringFlag(cmd, "log-level", &cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	format, err := render.ParseFormat(cfg.Output)
	if err != nil {
		return nil, err
	}

	porcelain := boolFlag(cmd, "porcelain")
	app := &App{
		Config: cfg,
		Logger: logging.New(cfg.LogLevel, cmd.ErrOrStderr()),
		// Notices stay unstyled next to structured output.
		Notifier: notify.NewPrinter(cmd.ErrOrStderr(), porcelain || format != render.FormatTable),
		Renderer: render.NewRenderer(cmd.OutOrStdout(), render.Options{Format: format, Porcelain: porcelain}),
	}

	if opts.NeedsService {
		app.Service = NewService(cfg)
	}

	return app, nil
}

// applyStringFlag overrides dst with the flag value when the flag was set.
func applyStringFlag(cmd *cobra.Command, name string, dst *string) {
	f := cmd.Flag(name)
	if f == nil {
		return
	}
	if v := f.Value.String(); v != "" {
		*dst = v
	}
}

func boolFlag(cmd *cobra.Command, name string) bool {
	f := cmd.Flag(name)
	return f != nil && f.Value.String() == "true"
}
