// Package app initializes configuration, logging, storage, and the HTTP
// server, and owns the shutdown sequence.
package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"fob/internal/admin"
	"fob/internal/click"
	"fob/internal/config"
	"fob/internal/killswitch"
	"fob/internal/metrics"
	"fob/internal/rate"
	"fob/internal/redirect"
	"fob/internal/server"
)

// App holds the application dependencies and configuration.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	DBPool   *pgxpool.Pool
	Recorder *click.Recorder
	Server   *server.Server
}

// New initializes and returns a new App instance with all dependencies
// wired up. A missing or unreachable database is not fatal: the service
// starts in degraded mode and simply stops recording clicks.
func New(ctx context.Context) (*App, error) {
	if err := loadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := setupLogger(cfg.App.LogLevel)

	logger.Info("starting application",
		"env", cfg.App.Environment,
		"persistence", cfg.Database.Enabled(),
	)

	var (
		pool  *pgxpool.Pool
		store click.Store
	)
	if cfg.Database.Enabled() {
		pool, err = connectDatabase(ctx, cfg, logger)
		if err != nil {
			logger.Error("click persistence unavailable, continuing without recording",
				"error", err.Error(),
			)
			pool = nil
		} else {
			pgStore := click.NewPGStore(pool)
			if err := pgStore.EnsureSchema(ctx); err != nil {
				logger.Error("failed to initialize click schema, continuing without recording",
					"error", err.Error(),
				)
				pool.Close()
				pool = nil
			} else {
				store = pgStore
			}
		}
	}

	// Setup application dependencies
	ks := killswitch.New()
	m := metrics.New()
	recorder := click.NewRecorder(store, logger, 0)

	redirectHandler := redirect.NewHandler(redirect.HandlerConfig{
		Validator: redirect.NewValidator(cfg.Redirect.AllowedHosts),
		Limiter:   rate.New(cfg.Redirect.RateLimit, cfg.Redirect.RateWindow),
		Recorder:  recorder,
		Clicks:    m.ClicksTotal,
		Logger:    logger,
	})
	adminHandler := admin.NewHandler(admin.HandlerConfig{
		Auth:       admin.NewAuthenticator(cfg.Admin.Secret),
		KillSwitch: ks,
		Store:      store,
		Logger:     logger,
	})

	// Create server
	srv := server.New(cfg, logger, server.Deps{
		Redirect:   redirectHandler,
		Admin:      adminHandler,
		Metrics:    m,
		KillSwitch: ks,
		Store:      store,
	})

	logger.Info("application initialized",
		"port", cfg.Server.Port,
		"rate_limit", cfg.Redirect.RateLimit,
		"allowed_hosts", len(cfg.Redirect.AllowedHosts),
	)

	return &App{
		Config:   cfg,
		Logger:   logger,
		DBPool:   pool,
		Recorder: recorder,
		Server:   srv,
	}, nil
}

// Start starts the application server.
func (a *App) Start(ctx context.Context) error {
	a.Logger.Info("server starting",
		"port", a.Config.Server.Port,
	)

	if err := a.Server.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the application: drain in-flight click
// recordings within the grace period, then release the pool.
func (a *App) Shutdown() error {
	a.Logger.Info("shutting down application")

	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Recorder.Drain(ctx); err != nil {
		a.Logger.Warn("click recorder did not drain cleanly",
			"error", err.Error(),
		)
	}

	if a.DBPool != nil {
		a.DBPool.Close()
		a.Logger.Info("database connection closed")
	}

	return nil
}

// loadEnv loads .env file only in non-production environments.
func loadEnv() error {
	env := os.Getenv("APP_ENV")
	if env == "" || env == "development" || env == "test" {
		if err := godotenv.Load(); err != nil {
			log.Println("no .env file found.")
		}
	}
	return nil
}

// setupLogger creates a structured logger based on the log level.
func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}

// connectDatabase establishes the click store connection pool. Queries
// are bounded server-side so a hung statement cannot hold a connection
// indefinitely.
func connectDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// Set pool configuration
	poolConfig.MaxConns = cfg.Database.MaxConns
	poolConfig.MinConns = cfg.Database.MinConns
	poolConfig.ConnConfig.ConnectTimeout = cfg.Database.ConnectTimeout
	poolConfig.ConnConfig.RuntimeParams["statement_timeout"] =
		strconv.FormatInt(cfg.Database.StatementTimeout.Milliseconds(), 10)
	poolConfig.ConnConfig.RuntimeParams["idle_in_transaction_session_timeout"] =
		strconv.FormatInt(cfg.Database.IdleTxTimeout.Milliseconds(), 10)

	logger.Info("connecting to database",
		"max_conns", cfg.Database.MaxConns,
		"statement_timeout", cfg.Database.StatementTimeout.String(),
	)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	pingCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established")

	return pool, nil
}
