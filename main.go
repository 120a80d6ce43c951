package main

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abdusco/linkhub/internal/auth"
	"github.com/abdusco/linkhub/internal/db"
	"github.com/abdusco/linkhub/internal/handler"
	"github.com/abdusco/linkhub/internal/logger"
	"github.com/abdusco/linkhub/internal/metrics"
	"github.com/abdusco/linkhub/internal/repo"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

const devJWTSecret = "your-secret-key-change-in-production"

type Config struct {
	Host            string
	Port            string
	DBPath          string
	JWTSecret       string
	DefaultPassword string
	LogLevel        string
	Debug           bool
	Production      bool
	ProtectWrites   bool
}

func (c Config) MarshalZerologObject(e *zerolog.Event) {
	e.Str("host", c.Host).
		Str("port", c.Port).
		Str("db_path", c.DBPath).
		Str("log_level", c.LogLevel).
		Bool("debug", c.Debug).
		Bool("production", c.Production).
		Bool("protect_writes", c.ProtectWrites).
		Bool("jwt_secret_set", c.JWTSecret != devJWTSecret)
}

func newConfigFromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	cfg := Config{
		Host:            cmp.Or(os.Getenv("HOST"), "localhost"),
		Port:            cmp.Or(os.Getenv("PORT"), "8080"),
		DBPath:          cmp.Or(os.Getenv("DB_PATH"), "data/linkhub.db"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		DefaultPassword: os.Getenv("ADMIN_DEFAULT_PASSWORD"),
		LogLevel:        cmp.Or(os.Getenv("LOG_LEVEL"), "info"),
		Debug:           os.Getenv("DEBUG") == "1",
		Production:      os.Getenv("ENV") == "production",
		ProtectWrites:   os.Getenv("PROTECT_WRITES") == "1",
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = devJWTSecret
	}
	if cfg.DefaultPassword == "" {
		cfg.DefaultPassword = auth.DefaultPassword
	}

	return cfg, nil
}

// insecureDefaults lists the built-in fallbacks cfg relies on.
func (c Config) insecureDefaults() []string {
	var warnings []string
	if c.JWTSecret == devJWTSecret {
		warnings = append(warnings, "using built-in JWT secret - set JWT_SECRET for production")
	}
	if c.DefaultPassword == auth.DefaultPassword {
		warnings = append(warnings, "admin account will be created with the default password - change it after first login")
	}
	return warnings
}

func main() {
	cfg, err := newConfigFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse configuration from environment")
	}

	if err := logger.Setup(cfg.LogLevel, cfg.Debug); err != nil {
		log.Fatal().Err(err).Str("level", cfg.LogLevel).Msg("failed to parse log level")
	}

	log.Info().
		Object("config", cfg).
		Msg("current configuration")
	for _, warning := range cfg.insecureDefaults() {
		log.Warn().Msg(warning)
	}

	ctx := context.Background()
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("application error")
	}
}

func run(ctx context.Context, cfg Config) error {
	log.Info().
		Str("version", version).
		Str("build_time", buildTime).
		Msg("starting application")

	dbInstance, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer dbInstance.Close()

	e := newServer(cfg, dbInstance, metrics.New())
	defer e.Close()

	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	log.Info().Str("address", addr).Msg("server starting")

	return runServer(ctx, e, addr)
}

func newServer(cfg Config, dbInstance *sql.DB, m *metrics.Metrics) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler

	e.Use(logger.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	// Data URL icons arrive inside JSON bodies.
	e.Use(middleware.BodyLimit("2M"))
	e.Use(m.Middleware())

	linksRepo := repo.NewLinksRepo(dbInstance)
	credentials := auth.NewCredentialStore(repo.NewAdminRepo(dbInstance), cfg.DefaultPassword)
	sessions := auth.NewSessionIssuer(cfg.JWTSecret, cfg.Production)
	requireSession := auth.RequireSession(sessions)

	authHandler := handler.NewAuthHandler(credentials, sessions, m)
	authGroup := e.Group("/auth")
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/verify", authHandler.Verify)
	authGroup.POST("/change-password", authHandler.ChangePassword, requireSession)

	var writeGuard []echo.MiddlewareFunc
	if cfg.ProtectWrites {
		writeGuard = append(writeGuard, requireSession)
	}

	linkHandler := handler.NewLinkHandler(linksRepo)
	links := e.Group("/links")
	links.GET("", linkHandler.ListLinks)
	links.POST("", linkHandler.CreateLink, writeGuard...)
	links.POST("/reorder", linkHandler.ReorderLinks, writeGuard...)
	links.PUT("/:id", linkHandler.UpdateLink, writeGuard...)
	links.DELETE("/:id", linkHandler.DeleteLink, writeGuard...)

	e.POST("/icons", handler.UploadIcon, writeGuard...)

	initHandler := handler.NewInitHandler(linksRepo, credentials)
	e.POST("/init", initHandler.Initialize)
	e.GET("/init", initHandler.Status)

	e.GET("/metrics", echo.WrapHandler(m.Handler()))
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return e
}

func runServer(ctx context.Context, e *echo.Echo, addr string) error {
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- e.Start(addr)
	}()

	// Wait for context cancellation (Ctrl+C or SIGTERM)
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)
	}

	log.Info().Msg("shutdown signal received, gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during graceful shutdown")
	}

	if err := <-serverErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server error")
	}

	log.Info().Msg("server stopped")
	return nil
}
