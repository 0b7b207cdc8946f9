// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/modcurator/modcurator/internal/collection"
	"github.com/modcurator/modcurator/internal/config"
	"github.com/modcurator/modcurator/internal/exchange"
	"github.com/modcurator/modcurator/internal/game"
	"github.com/modcurator/modcurator/internal/issue"
	"github.com/modcurator/modcurator/internal/msgbus"
	"github.com/modcurator/modcurator/internal/reader"
	"github.com/modcurator/modcurator/internal/reconcile"
	"github.com/modcurator/modcurator/internal/reportexport"
	"github.com/modcurator/modcurator/internal/storage"
	"github.com/modcurator/modcurator/pkg/hashreport"
	"github.com/modcurator/modcurator/pkg/types"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root of the CLI layer: every Cobra handler receives an App and opens a
	// session through it.
	App struct {
		Config      ConfigProvider
		OpenStorage StorageOpener
		stdout      io.Writer
		stderr      io.Writer
		flags       rootFlags
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config      ConfigProvider
		OpenStorage StorageOpener
		Stdout      io.Writer
		Stderr      io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// StorageOpener creates the storage provider selected by configuration.
	StorageOpener func(opts storage.Options) (storage.Provider, error)

	// rootFlags holds the persistent flags of the root command.
	rootFlags struct {
		verbose    bool
		configFile string
		configDir  string
	}

	// session holds the services of one command invocation.
	session struct {
		cfg         *config.Config
		logger      *log.Logger
		store       storage.Provider
		bus         *msgbus.Bus
		files       *reader.FileReader
		games       *game.Service
		collections *collection.Service
		reports     reportexport.JSONExporter
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.OpenStorage == nil {
		deps.OpenStorage = storage.Open
	}
	return &App{
		Config:      deps.Config,
		OpenStorage: deps.OpenStorage,
		stdout:      deps.Stdout,
		stderr:      deps.Stderr,
	}
}

// loadOptions translates the persistent flags into config load options.
func (a *App) loadOptions() config.LoadOptions {
	return config.LoadOptions{
		ConfigFilePath: types.FilesystemPath(a.flags.configFile),
		ConfigDirPath:  types.FilesystemPath(a.flags.configDir),
	}
}

// configDir returns the --config-dir value or the platform config directory.
func (a *App) configDir() (string, error) {
	if a.flags.configDir != "" {
		return a.flags.configDir, nil
	}
	return config.ConfigDir()
}

func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, a.loadOptions())
	if err != nil {
		return nil, err
	}
	if a.flags.verbose {
		cfg.UI.Verbose = true
	}
	return cfg, nil
}

// open loads configuration and builds the services of one invocation. The
// caller must close the returned session.
func (a *App) open(ctx context.Context) (*session, error) {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	logger := newLogger(a.stderr, cfg)

	store, err := a.OpenStorage(storage.Options{
		Backend: cfg.Storage.Backend,
		Path:    cfg.Storage.Path,
		Redis: storage.RedisOptions{
			Addr:      cfg.Storage.Redis.Addr,
			DB:        cfg.Storage.Redis.DB,
			KeyPrefix: cfg.Storage.Redis.KeyPrefix,
		},
	})
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("open storage").
			WithResource(cfg.Storage.Backend.String()).
			WithSuggestion("Check storage.backend and storage.path in your configuration").
			WithIssue(issue.StorageUnavailableId).
			Wrap(err).
			BuildError()
	}

	digester, err := hashreport.NewDigester(cfg.Hash.Algorithm)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	files, err := reader.New(digester, cfg.Reader.CacheSize, reader.WithLogger(logger))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	bus := msgbus.New(logger)
	games := game.NewService(store, logger)
	collections := collection.NewService(collection.Dependencies{
		Games:     games,
		Storage:   store,
		Exporter:  exchange.TOMLExchange{},
		ModWriter: exchange.DirectoryWriter{},
		Reader:    files,
		Reports:   reportexport.JSONExporter{},
		Events:    bus,
		Reconciler: reconcile.New(digester,
			reconcile.WithConcurrency(cfg.Hash.Concurrency),
			reconcile.WithLogger(logger)),
		Logger:      logger,
		DefaultMode: cfg.Priority.Mode,
	})

	logger.Debug("session opened", "backend", cfg.Storage.Backend, "algorithm", digester.Name())
	return &session{
		cfg:         cfg,
		logger:      logger,
		store:       store,
		bus:         bus,
		files:       files,
		games:       games,
		collections: collections,
	}, nil
}

// close waits for in-flight events and releases storage.
func (s *session) close() error {
	s.bus.Wait()
	return s.store.Close()
}

// withSession opens a session, runs fn and closes the session.
func (a *App) withSession(ctx context.Context, fn func(*session) error) (err error) {
	s, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close storage: %w", closeErr)
		}
	}()
	return fn(s)
}

// newLogger builds the CLI logger. Verbose mode forces the debug level.
func newLogger(w io.Writer, cfg *config.Config) *log.Logger {
	level, err := log.ParseLevel(cfg.Log.Level.String())
	if err != nil {
		level = log.InfoLevel
	}
	if cfg.UI.Verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: config.AppName,
		Level:  level,
	})
}

// requireGame returns the selected game or an actionable error.
func (s *session) requireGame(ctx context.Context) error {
	g, err := s.games.GetSelected(ctx)
	if err != nil {
		return err
	}
	if g == nil {
		return issue.NewErrorContext().
			WithOperation("resolve selected game").
			WithSuggestion("Register a game with 'modcurator game register' and select it with 'modcurator game select'").
			WithIssue(issue.NoGameSelectedId).
			Wrap(errNoGameSelected).
			BuildError()
	}
	return nil
}

var (
	errNoGameSelected       = errors.New("no game selected")
	errNoCollectionSelected = errors.New("no collection selected")
)
