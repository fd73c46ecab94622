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

	httpapi "github.com/storefrontbuilder/ledger/internal/ledger/http"
	"github.com/storefrontbuilder/ledger/internal/ledger/queue"
	"github.com/storefrontbuilder/ledger/internal/ledger/service"
	"github.com/storefrontbuilder/ledger/internal/ledger/storage"
	"github.com/storefrontbuilder/ledger/internal/ledger/store"
	"github.com/storefrontbuilder/ledger/internal/ledger/store/drivers/sqlite"
	"github.com/storefrontbuilder/ledger/pkg/cryptox"
	"github.com/storefrontbuilder/ledger/pkg/jwtx"
	"github.com/storefrontbuilder/ledger/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application wires the ledger service together: database, signing keys,
// object storage, event publisher, services and the HTTP server.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db        store.Store
	keys      *jwtx.KeySet
	signer    jwtx.Signer
	verifier  jwtx.Verifier
	publisher queue.Publisher
	objects   *storage.Store

	// Services
	authService         *service.AuthService
	verificationService *service.VerificationService
	profileService      *service.ProfileService
	categoryService     *service.CategoryService
	transactionService  *service.TransactionService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "ledger-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	keys, signer, verifier, err := InitSigningKeys(app.cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize signing keys: %w", err)
	}
	app.keys = keys
	app.signer = signer
	app.verifier = verifier

	if err := app.initStorage(); err != nil {
		return nil, err
	}

	if err := app.initQueue(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("ledger service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
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

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down ledger service...")

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

	if err := app.publisher.Close(); err != nil {
		app.logger.Error("error closing event publisher", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("ledger service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
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

// initStorage prepares the on-disk object store for receipts and avatars.
func (app *Application) initStorage() error {
	objects, err := storage.NewStore(app.cfg.StorageRoot, app.cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize object storage: %w", err)
	}
	app.objects = objects
	return nil
}

// initQueue connects the event publisher. Without an AMQP URL events go to
// the log, which keeps local development free of a broker dependency while
// the verification link stays visible.
func (app *Application) initQueue() error {
	if app.cfg.AMQPURL == "" {
		app.logger.Info("no AMQP URL configured, domain events will be logged")
		app.publisher = queue.NewLog(app.logger)
		return nil
	}

	pub, err := queue.NewRabbit(app.cfg.AMQPURL, service.QueueExchange)
	if err != nil {
		return fmt.Errorf("failed to connect event publisher: %w", err)
	}
	app.publisher = pub

	app.logger.Info("event publisher connected", "exchange", service.QueueExchange)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	accessTTL := app.cfg.AccessTTL
	if accessTTL <= 0 {
		accessTTL = jwtx.DefaultAccessTokenTTL
	}
	refreshTTL := app.cfg.RefreshTTL
	if refreshTTL <= 0 {
		refreshTTL = jwtx.DefaultRefreshTokenTTL
	}

	app.profileService = &service.ProfileService{Store: app.db}

	app.verificationService = &service.VerificationService{
		Store:     app.db,
		Publisher: app.publisher,
		BaseURL:   app.cfg.BaseURL,
		OTPTTL:    app.cfg.OTPTTL,
	}

	app.authService = &service.AuthService{
		Store:      app.db,
		Signer:     app.signer,
		Publisher:  app.publisher,
		Verifier:   app.verificationService,
		Issuer:     app.cfg.Issuer,
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
	}

	// Verification mints a session on successful confirmation, so the two
	// services reference each other.
	app.verificationService.Auth = app.authService

	app.categoryService = &service.CategoryService{Store: app.db}
	app.transactionService = &service.TransactionService{
		Store:   app.db,
		Storage: app.objects,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keys,
		app.verifier,
		BuildVersion,
		app.db,
		app.objects,
		app.logger,
	)

	// Wire services to router
	router.AuthService = app.authService
	router.VerificationService = app.verificationService
	router.ProfileService = app.profileService
	router.CategoryService = app.categoryService
	router.TransactionService = app.transactionService
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// Router exposes the configured HTTP handler. The e2e tests mount it on an
// httptest server instead of binding a real port.
func (app *Application) Router() http.Handler {
	return app.router
}
