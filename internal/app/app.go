// Package app wires configuration, storage, and the REST server into a
// running service.
package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/aeharding/skewt/internal/controllers/restserver"
	"github.com/aeharding/skewt/internal/database"
	"github.com/aeharding/skewt/internal/log"
	"github.com/aeharding/skewt/pkg/config"
)

// App represents the main application
type App struct {
	cfg    *config.Config
	logger *zap.SugaredLogger
}

// New creates a new application instance
func New(cfg *config.Config, logger *zap.SugaredLogger) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	rest, err := restserver.NewController(ctx, &wg, a.cfg, store, a.logger)
	if err != nil {
		return err
	}
	if err := rest.StartController(); err != nil {
		return err
	}

	log.Infof("listening on %s", rest.Server.Addr)

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	cancel()

	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}

// openStore selects the archive backend from configuration: PostgreSQL
// when a DSN is configured, the SQLite file otherwise.
func (a *App) openStore() (database.Store, error) {
	if a.cfg.Database.PostgresDSN != "" {
		log.Info("connecting to PostgreSQL sounding archive...")
		return database.NewPostgresStore(a.cfg.Database.PostgresDSN)
	}
	log.Infof("opening SQLite sounding archive at %s", a.cfg.Database.SQLitePath)
	return database.NewSQLiteStore(a.cfg.Database.SQLitePath)
}
