package commands

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/odg-delivery/console/internal/api"
	"github.com/odg-delivery/console/internal/auth"
	"github.com/odg-delivery/console/internal/config"
	"github.com/odg-delivery/console/internal/console"
	"github.com/odg-delivery/console/internal/logger"
	"github.com/odg-delivery/console/internal/storage"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Env carries the global flags and lazily builds the App from them, so
// commands that never talk to the API don't need a readable store.
type Env struct {
	ConfigPath string
	LogLevel   string

	app *App
}

// App wires the configured store, API client, auth gate and console service
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Store   storage.Store
	Client  *api.Client
	Gate    *auth.Gate
	Console *console.Service

	// Now is the clock used for "today" counts and token expiry
	Now func() time.Time
}

// App returns the application, building it on first use
func (e *Env) App(cmd *cobra.Command) (*App, error) {
	if e.app != nil {
		return e.app, nil
	}

	cfg, err := config.Load(e.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if e.LogLevel != "" {
		cfg.Logging.Level = e.LogLevel
	}

	log := logger.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

	app, err := NewApp(cfg, log)
	if err != nil {
		return nil, err
	}

	e.app = app
	return app, nil
}

// Close releases the store if one was opened
func (e *Env) Close() error {
	if e.app == nil {
		return nil
	}
	err := e.app.Close()
	e.app = nil
	return err
}

var openStore = storage.Open

// NewApp opens the store and builds the API stack on top of it. The store
// is closed again if anything after it fails.
func NewApp(cfg *config.Config, log zerolog.Logger) (*App, error) {
	store, err := openStore(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	opts := []api.Option{
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(log),
	}
	if cfg.API.Origin != "" {
		origin, err := url.Parse(cfg.API.Origin)
		if err != nil {
			return nil, errors.Join(
				fmt.Errorf("invalid api origin %q: %w", cfg.API.Origin, err),
				closeStore(store),
			)
		}
		opts = append(opts, api.WithOrigin(origin))
	}

	client := api.New(cfg.API.BaseURL, opts...)

	gate, err := auth.NewGate(store, client)
	if err != nil {
		return nil, errors.Join(err, closeStore(store))
	}

	return &App{
		Config:  cfg,
		Logger:  log,
		Store:   store,
		Client:  client,
		Gate:    gate,
		Console: console.NewService(client, log),
		Now:     time.Now,
	}, nil
}

// Close closes stores that hold a handle, such as SQLite
func (a *App) Close() error {
	return closeStore(a.Store)
}

func closeStore(store storage.Store) error {
	if c, ok := store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// GuardError reports a route the current session may not open
type GuardError struct {
	Path     string
	Decision auth.Decision
}

func (e *GuardError) Error() string {
	if e.Decision.Outcome == auth.Unauthenticated {
		return fmt.Sprintf("%s requires login (run 'odg login')", e.Path)
	}
	return fmt.Sprintf("%s is not available to this account (try %s)", e.Path, e.Decision.Redirect)
}

// Guard applies the route guard to path for the current session
func (a *App) Guard(path string) error {
	d := auth.Evaluate(a.Gate.Session(), path)
	if d.Allowed() {
		return nil
	}

	a.Logger.Debug().
		Str("path", path).
		Str("outcome", d.Outcome.String()).
		Str("redirect", d.Redirect).
		Msg("Route guarded")

	return &GuardError{Path: path, Decision: d}
}

// VendorID resolves the vendor that vendor commands act on
func (a *App) VendorID(cmd *cobra.Command) (int64, error) {
	id, err := a.Console.ResolveVendorID(cmd.Context(), a.Config.Vendor.ID, a.Store)
	if errors.Is(err, console.ErrNoVendor) {
		return 0, fmt.Errorf("%w: set vendor.id in the config or ODG_VENDOR_ID", err)
	}
	return id, err
}
