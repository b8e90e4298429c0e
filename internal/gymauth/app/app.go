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

	"github.com/go-redis/redis/v8"

	httpapi "github.com/aussiebroadwan/gymauth/internal/gymauth/http"
	"github.com/aussiebroadwan/gymauth/internal/gymauth/mail"
	"github.com/aussiebroadwan/gymauth/internal/gymauth/metrics"
	"github.com/aussiebroadwan/gymauth/internal/gymauth/service"
	"github.com/aussiebroadwan/gymauth/internal/gymauth/store/drivers/postgres"
	"github.com/aussiebroadwan/gymauth/internal/gymauth/store/drivers/sqldb"
	"github.com/aussiebroadwan/gymauth/internal/gymauth/store/drivers/sqlite"
	"github.com/aussiebroadwan/gymauth/pkg/cryptox"
	"github.com/aussiebroadwan/gymauth/pkg/httpx"
	"github.com/aussiebroadwan/gymauth/pkg/jwtx"
	"github.com/aussiebroadwan/gymauth/pkg/slogx"
)

// BuildVersion is overridden at build time with
// -ldflags "-X github.com/aussiebroadwan/gymauth/internal/gymauth/app.BuildVersion=...".
var BuildVersion = "v0.1.0"

// TokenIssuer is stamped into, and required of, every token this service
// signs.
const TokenIssuer = "gymauth"

var postgresPool = postgres.PoolConfig{
	MaxOpenConns:    25,
	MaxIdleConns:    5,
	ConnMaxLifetime: 5 * time.Minute,
}

// Application encapsulates the gym auth service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db      *sqldb.Store
	hasher  *cryptox.Hasher
	access  *jwtx.HS256
	refresh *jwtx.HS256
	metrics *metrics.Metrics

	// Outbound connections, nil unless configured
	mailQueue *mail.Async
	rabbit    *mail.RabbitMQ
	redis     *redis.Client

	// Services
	authService         *service.AuthService
	userService         *service.UserService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "gymauth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		metrics: metrics.New(),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initKeys(); err != nil {
		app.closeAll()
		return nil, err
	}

	mailer, err := app.initMail()
	if err != nil {
		app.closeAll()
		return nil, err
	}

	limiters, err := app.initRateLimiting()
	if err != nil {
		app.closeAll()
		return nil, err
	}

	app.initServices(mailer)
	app.initHTTP(limiters)

	return app, nil
}

// Handler returns the fully wired HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("gymauth starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"database", app.cfg.DatabaseDriver,
		"mail", app.cfg.MailDriver,
		"ratelimit", app.cfg.RateLimitBackend,
	)

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
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			app.closeAll()
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
	app.logger.Info("shutting down gymauth...")

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

	err := app.closeAll()

	app.logger.Info("gymauth stopped")
	return err
}

// closeAll drains queued mail and releases outbound connections. It is
// safe to call on a partially initialised Application.
func (app *Application) closeAll() error {
	if app.mailQueue != nil {
		app.mailQueue.Wait()
	}
	if app.rabbit != nil {
		if err := app.rabbit.Close(); err != nil {
			app.logger.Error("error closing rabbitmq", "error", err)
		}
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
		}
	}
	if app.db == nil {
		return nil
	}

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}
	return nil
}

// initDatabase opens the configured store and applies migrations
func (app *Application) initDatabase() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := OpenStore(ctx, app.cfg)
	if err != nil {
		return err
	}
	app.db = db

	if err := app.metrics.RegisterDB(db.DB(), app.cfg.DatabaseDriver); err != nil {
		app.logger.Warn("database pool metrics unavailable", "error", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// OpenStore connects to the configured database and brings its schema up
// to date.
func OpenStore(ctx context.Context, cfg Config) (*sqldb.Store, error) {
	var (
		db  *sqldb.Store
		err error
	)
	switch cfg.DatabaseDriver {
	case "postgres":
		db, err = postgres.NewStore(cfg.DatabaseURL, postgresPool)
	default:
		db, err = sqlite.NewStore(cfg.DatabaseFile)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	if err := db.ApplyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}
	return db, nil
}

// initKeys builds the password hasher and the two token keys
func (app *Application) initKeys() error {
	app.hasher = cryptox.NewHasher(app.cfg.BcryptCost)

	access, err := jwtx.NewHS256([]byte(app.cfg.AccessSecret), app.cfg.AccessTTL, jwtx.WithIssuer(TokenIssuer))
	if err != nil {
		return fmt.Errorf("failed to initialize access token key: %w", err)
	}
	refresh, err := jwtx.NewHS256([]byte(app.cfg.RefreshSecret), app.cfg.RefreshTTL, jwtx.WithIssuer(TokenIssuer))
	if err != nil {
		return fmt.Errorf("failed to initialize refresh token key: %w", err)
	}

	app.access, app.refresh = access, refresh
	return nil
}

// initMail picks the mail transport. Delivery always happens off the
// request path.
func (app *Application) initMail() (*mail.Sender, error) {
	var transport mail.Transport = mail.LogTransport{Logger: app.logger}

	if app.cfg.MailDriver == "rabbitmq" {
		rabbit, err := mail.DialRabbitMQ(app.cfg.RabbitMQURL, app.cfg.MailQueue)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
		}
		app.rabbit = rabbit
		transport = rabbit
		app.logger.Info("mail jobs published to rabbitmq", "queue", rabbit.Queue())
	}

	app.mailQueue = &mail.Async{Next: transport, Logger: app.logger, Timeout: mail.DefaultAsyncTimeout}

	return &mail.Sender{
		Transport: app.mailQueue,
		From:      app.cfg.MailFrom,
		AppName:   app.cfg.AppName,
		ResetTTL:  app.cfg.ResetTTL,
	}, nil
}

// initRateLimiting selects where limiter state lives
func (app *Application) initRateLimiting() (httpapi.LimiterFactory, error) {
	if app.cfg.RateLimitBackend != "redis" {
		return httpapi.MemoryLimiters, nil
	}

	client := redis.NewClient(&redis.Options{Addr: app.cfg.RedisAddr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	app.redis = client

	app.logger.Info("rate limiting backed by redis", "addr", app.cfg.RedisAddr)
	return func(name string, cfg httpx.RateLimitConfig) httpx.Limiter {
		return httpx.NewRedisLimiter(client, cfg, "ratelimit:"+name)
	}, nil
}

// initServices initializes all business logic services
func (app *Application) initServices(mailer *mail.Sender) {
	app.authService = &service.AuthService{
		Store:             app.db,
		Hasher:            app.hasher,
		AccessKey:         app.access,
		RefreshKey:        app.refresh,
		Mailer:            mailer,
		Events:            app.metrics,
		ResetTTL:          app.cfg.ResetTTL,
		ClientURL:         app.cfg.ClientURL,
		RotateOnRefresh:   app.cfg.RotateOnRefresh,
		AllowRegisterRole: app.cfg.AllowRegisterRole,
	}

	app.userService = &service.UserService{Store: app.db, Hasher: app.hasher}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP(limiters httpapi.LimiterFactory) {
	router := httpapi.NewRouter(app.access, BuildVersion, app.db, app.logger)

	// Wire services to router
	router.AuthService = app.authService
	router.UserService = app.userService
	router.Metrics = app.metrics
	router.Limits = app.cfg.RateLimits
	router.NewLimiter = limiters
	router.Dev = app.cfg.Dev()
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
