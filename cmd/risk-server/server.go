package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ehr/healthrisk/internal/config"
	"github.com/ehr/healthrisk/internal/domain/assessment"
	"github.com/ehr/healthrisk/internal/domain/disclosure"
	"github.com/ehr/healthrisk/internal/platform/auth"
	"github.com/ehr/healthrisk/internal/platform/clock"
	"github.com/ehr/healthrisk/internal/platform/db"
	"github.com/ehr/healthrisk/internal/platform/middleware"
	"github.com/ehr/healthrisk/internal/platform/telemetry"
)

// server bundles the HTTP router with the background pieces serve starts.
type server struct {
	echo     *echo.Echo
	sessions *disclosure.Manager
}

// serverDeps are the collaborators buildServer wires together. Pinger and
// Repo are nil-able so the router can be built without a database.
type serverDeps struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Pinger  db.Pinger
	Repo    assessment.Repository
	Metrics *telemetry.Metrics
	Clock   clock.Clock
	Sched   clock.Scheduler
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}

func buildServer(d serverDeps) *server {
	cfg := d.Config
	logger := d.Logger

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	if d.Metrics != nil {
		e.Use(d.Metrics.Middleware())
	}
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID", "X-User-ID"},
	}))
	e.Use(echomw.BodyLimit("1M"))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if d.Pinger != nil {
		e.GET("/health/db", db.HealthHandler(d.Pinger))
	}
	if d.Metrics != nil && cfg.MetricsEnabled {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	apiV1 := e.Group("/api/v1")
	if cfg.ResolvedAuthMode() == "development" {
		apiV1.Use(auth.DevAuthMiddleware())
	} else {
		apiV1.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			SigningKey: []byte(cfg.AuthSigningKey),
		}))
	}
	rl := middleware.DefaultRateLimitConfig()
	rl.RequestsPerSecond = cfg.RateLimitRPS
	rl.BurstSize = cfg.RateLimitBurst
	apiV1.Use(middleware.RateLimit(rl))

	svc := assessment.NewService(assessment.DefaultRegistry(), d.Repo, logger, d.Metrics)
	assessment.NewHandler(svc).RegisterRoutes(apiV1)

	var dcfg disclosure.Config
	copy(dcfg.Dwell[:], cfg.DisclosureDwell)
	sessions := disclosure.NewManager(d.Clock, dcfg, cfg.SessionTTL, logger, d.Metrics)
	disclosure.NewHandler(sessions, svc, d.Sched, cfg.RelaxationDuration).RegisterRoutes(apiV1)

	return &server{echo: e, sessions: sessions}
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Error().Err(err).Msg("invalid configuration")
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to database")
		return err
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	var metrics *telemetry.Metrics
	if cfg.MetricsEnabled {
		metrics = telemetry.New()
	}
	srv := buildServer(serverDeps{
		Config:  cfg,
		Logger:  logger,
		Pinger:  pool,
		Repo:    assessment.NewRepoPG(pool),
		Metrics: metrics,
		Clock:   clock.Real{},
		Sched:   clock.Real{},
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		srv.sessions.RunSweeper(gctx, clock.Real{}, cfg.SessionSweep)
		return nil
	})
	g.Go(func() error {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Bool("tls", cfg.TLSEnabled).Msg("starting server")
		var err error
		if cfg.TLSEnabled {
			err = srv.echo.StartTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = srv.echo.Start(addr)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.echo.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
