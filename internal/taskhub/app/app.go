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

	httpapi "github.com/aussiebroadwan/taskhub/internal/taskhub/http"
	"github.com/aussiebroadwan/taskhub/internal/taskhub/mail"
	"github.com/aussiebroadwan/taskhub/internal/taskhub/risk"
	"github.com/aussiebroadwan/taskhub/internal/taskhub/service"
	"github.com/aussiebroadwan/taskhub/internal/taskhub/store"
	"github.com/aussiebroadwan/taskhub/internal/taskhub/store/drivers/postgres"
	"github.com/aussiebroadwan/taskhub/internal/taskhub/store/drivers/sqlite"
	"github.com/aussiebroadwan/taskhub/pkg/cryptox"
	"github.com/aussiebroadwan/taskhub/pkg/httpx"
	"github.com/aussiebroadwan/taskhub/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application owns the TaskHub server and everything it depends on.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	redis  *redis.Client // nil when REDIS_ADDR is unset
	mailGW mail.Gateway  // set by WithMailer, otherwise from MAIL_DRIVER

	tokenService        *service.TokenService
	authService         *service.AuthService
	mfaService          *service.MFAService
	workspaceService    *service.WorkspaceService
	projectService      *service.ProjectService
	avatarService       *service.AvatarService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// Option adjusts an Application before its services are built.
type Option func(*Application)

// WithMailer replaces the configured mail driver. Tests use it to capture
// outgoing email.
func WithMailer(g mail.Gateway) Option {
	return func(app *Application) { app.mailGW = g }
}

// New validates cfg and initializes every dependency.
func New(cfg Config, opts ...Option) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "taskhub",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	for _, opt := range opts {
		opt(app)
	}

	cryptox.SetPepperPath(cfg.PepperFile)

	ctx := context.Background()
	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}
	if err := app.initServices(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler exposes the configured router, mostly for tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("taskhub starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"database", app.cfg.DatabaseDriver,
		"mail", app.cfg.MailDriver,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// Shutdown drains in-flight requests, then closes the database and Redis.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down taskhub...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.Close(); err != nil {
		return err
	}

	app.logger.Info("taskhub stopped")
	return nil
}

// Close releases the database and Redis connections without touching the
// HTTP server.
func (app *Application) Close() error {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}
	return nil
}

func (app *Application) initDatabase(ctx context.Context) error {
	var (
		db  store.Store
		err error
	)
	switch app.cfg.DatabaseDriver {
	case "postgres":
		db, err = postgres.NewStore(ctx, app.cfg.DatabaseURL)
	default:
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
		db, err = sqlite.NewStore(dsn)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

func (app *Application) initServices(ctx context.Context) error {
	tokens, err := service.NewTokenService([]byte(app.cfg.JWTSecret), app.cfg.JWTIssuer)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}
	app.tokenService = tokens

	app.mfaService = &service.MFAService{
		Store:  app.db,
		Issuer: "TaskHub",
	}

	app.authService = &service.AuthService{
		Store:   app.db,
		Tokens:  app.tokenService,
		Mailer:  app.mailer(),
		Risk:    app.riskChecker(),
		Domains: risk.NewDomainPolicy(),
		MFA:     app.mfaService,
		AppURL:  app.cfg.AppURL,
	}

	app.workspaceService = &service.WorkspaceService{Store: app.db}
	app.projectService = &service.ProjectService{Store: app.db}

	app.avatarService = &service.AvatarService{Store: app.db}
	if app.cfg.S3Bucket != "" {
		presigner, err := service.NewS3Presigner(ctx, service.S3Config{
			Bucket:    app.cfg.S3Bucket,
			Region:    app.cfg.S3Region,
			Endpoint:  app.cfg.S3Endpoint,
			AccessKey: app.cfg.S3AccessKey,
			SecretKey: app.cfg.S3SecretKey,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize object storage: %w", err)
		}
		app.avatarService.Presigner = presigner
		app.avatarService.Bucket = app.cfg.S3Bucket
		app.logger.Info("avatar uploads enabled", "bucket", app.cfg.S3Bucket)
	} else {
		app.logger.Info("avatar uploads disabled (S3_BUCKET unset)")
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	return nil
}

func (app *Application) mailer() mail.Gateway {
	if app.mailGW != nil {
		return app.mailGW
	}
	if app.cfg.MailDriver == "smtp" {
		return mail.NewSMTPGateway(
			app.cfg.SMTPHost,
			app.cfg.SMTPPort,
			app.cfg.SMTPUser,
			app.cfg.SMTPPassword,
			app.cfg.MailFrom,
		)
	}
	app.logger.Warn("mail driver is log, emails are not delivered")
	return mail.LogGateway{}
}

// riskChecker connects to Redis when configured. Without it every sign-up is
// allowed.
func (app *Application) riskChecker() risk.Checker {
	if app.cfg.RedisAddr == "" {
		app.logger.Info("risk checks disabled (REDIS_ADDR unset)")
		return risk.AllowAll{}
	}

	app.redis = redis.NewClient(&redis.Options{
		Addr:     app.cfg.RedisAddr,
		Password: app.cfg.RedisPassword,
		DB:       0,
	})
	app.logger.Info("risk checks enabled", "max_attempts", app.cfg.RiskMaxAttempts, "window", app.cfg.RiskWindow)
	return risk.NewRedisChecker(app.redis, app.cfg.RiskMaxAttempts, app.cfg.RiskWindow)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)

	if len(app.cfg.CORSOrigins) > 0 {
		router.Use(httpx.CORS(httpx.CORSConfig{AllowedOrigins: app.cfg.CORSOrigins}))
	}
	if app.redis != nil {
		client := app.redis
		router.AddReadinessCheck("redis", func(ctx context.Context) error {
			return risk.Ping(ctx, client)
		})
	}

	router.AuthService = app.authService
	router.MFAService = app.mfaService
	router.WorkspaceService = app.workspaceService
	router.ProjectService = app.projectService
	router.AvatarService = app.avatarService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
