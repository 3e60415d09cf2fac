package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quolldev/grantd/internal/issuer/cache"
	httpapi "github.com/quolldev/grantd/internal/issuer/http"
	"github.com/quolldev/grantd/internal/issuer/notify"
	"github.com/quolldev/grantd/internal/issuer/service"
	"github.com/quolldev/grantd/internal/issuer/store"
	"github.com/quolldev/grantd/internal/issuer/store/drivers/sqlite"
	"github.com/quolldev/grantd/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the issuer service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db         store.Store
	codes      cache.Codes
	dispatcher *notify.Dispatcher
	sink       notify.Sink

	// Services
	issueService        *service.IssueService
	clientService       *service.ClientService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "grantd",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := app.initCache(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	if err := app.initNotify(ctx); err != nil {
		_ = app.codes.Close()
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()

	if err := app.seedClients(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("issuer service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"cache_enabled", app.cfg.CacheEnabled,
		"notify_sink", app.cfg.NotifySink,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down issuer service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	// Drain queued notifications before tearing down the sink.
	app.dispatcher.Close()
	if closer, ok := app.sink.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			app.logger.Error("error closing notification sink", "error", err)
		}
	}

	if err := app.codes.Close(); err != nil {
		app.logger.Error("error closing code cache", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("issuer service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initCache connects the secondary code cache, or installs the no-op
// cache when disabled.
func (app *Application) initCache(ctx context.Context) error {
	if !app.cfg.CacheEnabled {
		app.codes = cache.Noop{}
		app.logger.Info("code cache disabled")
		return nil
	}

	codes, err := cache.NewRedisCodes(ctx, cache.RedisOptions{
		Addr:      app.cfg.CacheAddr,
		Password:  app.cfg.CachePassword,
		DB:        app.cfg.CacheDB,
		KeyPrefix: app.cfg.CacheKeyPrefix,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize code cache: %w", err)
	}

	app.codes = codes
	app.logger.Info("code cache enabled", "addr", app.cfg.CacheAddr)
	return nil
}

// initNotify wires the event sink and the async dispatcher in front of it.
func (app *Application) initNotify(ctx context.Context) error {
	switch app.cfg.NotifySink {
	case "redis":
		sink, err := notify.NewRedisSink(ctx,
			app.cfg.CacheAddr, app.cfg.CachePassword, app.cfg.CacheDB,
			app.cfg.NotifyChannel,
		)
		if err != nil {
			return fmt.Errorf("failed to initialize notification sink: %w", err)
		}
		app.sink = sink
	case "log", "":
		app.sink = notify.LoggingSink{Logger: app.logger}
	default:
		return fmt.Errorf("unknown notification sink %q", app.cfg.NotifySink)
	}

	app.dispatcher = notify.NewDispatcher(app.sink, app.logger, app.cfg.NotifyBuffer)
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	registry := service.NewClientRegistry(app.db.Clients())

	app.issueService = &service.IssueService{
		Store:           app.db,
		Registry:        registry,
		Codes:           app.codes,
		Issuer:          service.RandomCodeIssuer{},
		Dispatcher:      app.dispatcher,
		DefaultValidity: app.cfg.DefaultCodeTTL,
	}

	app.clientService = &service.ClientService{
		Store:    app.db,
		Registry: registry,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)

	// Wire services to router
	router.IssueService = app.issueService
	router.ClientService = app.clientService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
