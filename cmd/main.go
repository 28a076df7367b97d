package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Dosada05/tournament-console/apiclient"
	"github.com/Dosada05/tournament-console/brackets"
	"github.com/Dosada05/tournament-console/config"
	"github.com/Dosada05/tournament-console/db"
	"github.com/Dosada05/tournament-console/handlers"
	"github.com/Dosada05/tournament-console/metrics"
	"github.com/Dosada05/tournament-console/repositories"
	api "github.com/Dosada05/tournament-console/routes"
	"github.com/Dosada05/tournament-console/services"
	"github.com/Dosada05/tournament-console/storage"
	"github.com/Dosada05/tournament-console/views"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

const sessionPurgeInterval = 15 * time.Minute

func main() {
	bootLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		bootLogger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("tournament_api", cfg.TournamentAPIURL),
		slog.Bool("exports_enabled", cfg.R2Configured()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	if err := db.EnsureSchema(ctx, dbConn); err != nil {
		logger.Error("failed to prepare database schema", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database connection established")

	recorder := metrics.New()

	tournamentAPI, err := apiclient.NewClient(apiclient.Config{
		BaseURL:    cfg.TournamentAPIURL,
		Token:      cfg.TournamentAPIToken,
		Timeout:    cfg.TournamentAPITimeout,
		MaxRetries: cfg.TournamentAPIRetries,
		RatePerSec: cfg.TournamentAPIRPS,
		Logger:     logger.With(slog.String("component", "apiclient")),
		Metrics:    recorder,
	})
	if err != nil {
		logger.Error("failed to create tournament api client", slog.Any("error", err))
		os.Exit(1)
	}

	// Exports are optional; without R2 credentials the endpoint answers 503.
	var uploader storage.FileUploader
	if cfg.R2Configured() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized", slog.String("bucket", cfg.R2BucketName))
	}

	wsHub := brackets.NewHub(logger.With(slog.String("component", "hub")), recorder)
	go wsHub.Run(ctx)
	logger.Info("WebSocket Hub started")

	registry := views.NewRegistry()

	sessionRepo := repositories.NewPostgresSessionRepository(dbConn)
	exportRepo := repositories.NewPostgresExportRepository(dbConn)

	sessionService := services.NewSessionService(sessionRepo, registry, logger)
	authService := services.NewAuthService(services.AuthConfig{
		Operator:     cfg.AdminUser,
		PasswordHash: cfg.AdminPasswordHash,
		JWTSecret:    cfg.JWTSecretKey,
		TokenTTL:     cfg.TokenTTL,
	}, sessionService)
	fixturesService := services.NewFixturesService(tournamentAPI, registry, logger)
	scoreService := services.NewScoreService(tournamentAPI, registry, wsHub, logger)
	courtService := services.NewCourtService(tournamentAPI, registry, wsHub, recorder, logger)
	standingsService := services.NewStandingsService(tournamentAPI)
	knockoutService := services.NewKnockoutService(tournamentAPI, registry, wsHub, logger)
	playerService := services.NewPlayerService(tournamentAPI, wsHub, logger)
	poolService := services.NewPoolService(tournamentAPI, wsHub, logger)
	exportService := services.NewExportService(tournamentAPI, standingsService, uploader, exportRepo, logger)
	logger.Info("Services initialized")

	go purgeIdleSessions(ctx, sessionService, cfg.SessionMaxIdle, logger)

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Auth:      handlers.NewAuthHandler(authService),
		Session:   handlers.NewSessionHandler(sessionService),
		Fixtures:  handlers.NewFixturesHandler(fixturesService),
		Matches:   handlers.NewMatchHandler(scoreService),
		Courts:    handlers.NewCourtHandler(courtService),
		Standings: handlers.NewStandingsHandler(standingsService),
		Knockout:  handlers.NewKnockoutHandler(knockoutService),
		Players:   handlers.NewPlayerHandler(playerService),
		Pools:     handlers.NewPoolHandler(poolService),
		Exports:   handlers.NewExportHandler(exportService),
		WebSocket: handlers.NewWebSocketHandler(wsHub, cfg.CORSAllowedOrigins, logger),
	}, api.Options{
		Tokens:         authService,
		Sessions:       sessionService,
		Metrics:        recorder,
		Logger:         logger,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})
	logger.Info("Routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", cfg.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}

// purgeIdleSessions removes sessions untouched for longer than maxIdle,
// once at startup and then on every tick.
func purgeIdleSessions(ctx context.Context, sessions services.SessionService, maxIdle time.Duration, logger *slog.Logger) {
	if maxIdle <= 0 {
		return
	}
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	logger.Info("session purge scheduler started",
		slog.Duration("interval", sessionPurgeInterval), slog.Duration("max_idle", maxIdle))

	for {
		n, err := sessions.PurgeIdle(ctx, maxIdle)
		switch {
		case err != nil && ctx.Err() == nil:
			logger.Error("session purge failed", slog.Any("error", err))
		case n > 0:
			logger.Info("idle sessions purged", slog.Int("count", n))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
