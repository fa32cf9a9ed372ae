package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/ba1414/studydeck/internal/config"
	"github.com/ba1414/studydeck/internal/domain/srs"
	"github.com/ba1414/studydeck/internal/platform/postgres"
	"github.com/ba1414/studydeck/internal/platform/sqlite"
	"github.com/ba1414/studydeck/internal/store"
	"github.com/ba1414/studydeck/internal/study"
	"github.com/ba1414/studydeck/internal/task"
)

// application holds the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	db    *sql.DB
	kv    store.KV
	saver *task.Saver

	deckStore *store.DeckStore
	scheduler srs.Service
	sessions  *study.Manager
}

// newApplication creates an application instance with all dependencies
// initialized: the persistence backend, the async saver, the in-memory
// deck store hydrated from the backend, and the study services.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	var err error
	app.db, app.kv, err = openStorage(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, err
	}

	saverCfg := task.DefaultSaverConfig()
	saverCfg.WorkerCount = cfg.Storage.SaveWorkers
	saverCfg.QueueSize = cfg.Storage.SaveQueueSize
	app.saver = task.NewSaver(app.kv, saverCfg, logger)
	app.saver.Start()

	app.deckStore = store.NewDeckStore(app.saver, logger)
	if err := app.deckStore.Load(ctx, app.kv); err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to load decks: %w", err)
	}

	params := srs.NewDefaultParams()
	params.FirstInterval = cfg.Study.FirstIntervalDays
	params.SecondInterval = cfg.Study.SecondIntervalDays
	params.MasteryThreshold = cfg.Study.MasteryThreshold
	app.scheduler = srs.NewServiceWithParams(params)

	app.sessions = study.NewManager(app.deckStore, app.scheduler, logger)

	logger.Info("Application initialized",
		"decks_loaded", len(app.deckStore.ListDecks()),
		"save_workers", saverCfg.WorkerCount)

	return app, nil
}

// openStorage opens the configured persistence backend and returns the
// database handle together with its KV facade.
func openStorage(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (*sql.DB, store.KV, error) {
	switch cfg.Driver {
	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite storage: %w", err)
		}
		return db, sqlite.NewKV(db, logger), nil

	case "postgres":
		db, err := postgres.Open(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open postgres storage: %w", err)
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			closeErr := db.Close()
			if closeErr != nil {
				logger.Error("failed to close database after migration error", "error", closeErr)
			}
			return nil, nil, fmt.Errorf("failed to migrate postgres storage: %w", err)
		}
		return db, postgres.NewKV(db, logger), nil

	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources. The
// saver is stopped before the database closes so queued writes drain
// into a live connection.
func (app *application) cleanup() {
	if app.saver != nil {
		done := make(chan struct{})
		go func() {
			app.saver.Stop()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(10 * time.Second):
			app.logger.Error("Timed out waiting for pending saves")
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
