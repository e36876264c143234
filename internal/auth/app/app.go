package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/taskauth/internal/auth/http"
	"github.com/aussiebroadwan/taskauth/internal/auth/observability"
	"github.com/aussiebroadwan/taskauth/internal/auth/service"
	"github.com/aussiebroadwan/taskauth/internal/auth/store"
	"github.com/aussiebroadwan/taskauth/internal/auth/store/drivers/postgres"
	"github.com/aussiebroadwan/taskauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/taskauth/pkg/httpx"
	"github.com/aussiebroadwan/taskauth/pkg/jwtx"
	"github.com/aussiebroadwan/taskauth/pkg/ratelimit"
	"github.com/aussiebroadwan/taskauth/pkg/slogx"
)

const ServiceName = "auth-service"

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db      store.Store
	guard   *store.Guard
	limiter *ratelimit.Limiter
	tokens  *jwtx.HS256
	metrics *observability.Metrics

	// Services
	authService         *service.AuthService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	return NewWithLogger(cfg, slogx.New(slogx.Config{
		Service: ServiceName,
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	}))
}

// NewWithLogger is New with a caller supplied logger.
func NewWithLogger(cfg Config, logger *slog.Logger) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg:     cfg,
		logger:  logger,
		metrics: observability.NewMetrics(),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// Handler returns the fully wired HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("auth service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"db_driver", app.cfg.DBDriver,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		app.housekeepingService.Stop()
		_ = app.db.Close()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the housekeeping service
	app.housekeepingService.Stop()

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// Close releases the store without touching the HTTP server. It is for
// applications that were never Run.
func (app *Application) Close() error {
	return app.db.Close()
}

// OpenStore opens the configured driver. Migrations are not applied.
func OpenStore(ctx context.Context, cfg Config) (store.Store, error) {
	switch cfg.DBDriver {
	case DriverPostgres:
		return postgres.NewStore(ctx, cfg.DBDSN, cfg.DBMaxConns)
	case DriverSQLite:
		return sqlite.NewStore(cfg.DBDSN, sqlite.WithMaxOpenConns(cfg.DBMaxConns))
	default:
		return nil, fmt.Errorf("unknown db driver %q", cfg.DBDriver)
	}
}

// initDatabase opens the store, applies migrations and puts the guard in
// front of it.
func (app *Application) initDatabase() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := OpenStore(ctx, app.cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}
	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DBDriver)

	app.guard = store.NewGuard(db, store.GuardOptions{
		MaxInFlight: app.cfg.DBMaxConns,
		MaxQueue:    app.cfg.DBQueueDepth,
		Timeout:     app.cfg.DBTimeout,
	})
	app.db = app.guard
	app.metrics.WatchGuard(app.guard)

	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	limiter, err := ratelimit.New(app.cfg.RateLimits)
	if err != nil {
		return fmt.Errorf("failed to initialize rate limiter: %w", err)
	}
	app.limiter = limiter
	app.metrics.WatchLimiter(limiter)

	for action, p := range app.cfg.RateLimits {
		app.logger.Debug("rate limit policy", "action", string(action), "policy", p.String())
	}

	var opts []jwtx.Option
	if app.cfg.Issuer != "" {
		opts = append(opts, jwtx.WithIssuer(app.cfg.Issuer))
	}
	tokens, err := jwtx.NewHS256([]byte(app.cfg.JWTSecret), app.cfg.TokenTTL, opts...)
	if err != nil {
		return fmt.Errorf("failed to initialize token signer: %w", err)
	}
	app.tokens = tokens

	app.authService, err = service.NewAuthService(app.db, limiter, tokens, app.metrics)
	if err != nil {
		return err
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		limiter,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	app.housekeepingService.OnSweep = app.metrics.WindowsEvicted

	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.authService, app.db, httpapi.Options{
		ServiceName:    ServiceName,
		BuildVersion:   BuildVersion,
		AllowedOrigins: app.cfg.AllowedOrigins,
		KeyFunc:        httpx.ClientKeyExtractor(app.cfg.TrustProxyHeaders),
		Metrics:        app.metrics.Handler(),
		EnableSwagger:  app.cfg.SwaggerEnabled,
		Logger:         app.logger,
	})
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
