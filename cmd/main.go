package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/courtside/league-system/config"
	"github.com/courtside/league-system/db"
	"github.com/courtside/league-system/events"
	"github.com/courtside/league-system/handlers"
	"github.com/courtside/league-system/repositories"
	api "github.com/courtside/league-system/routes"
	"github.com/courtside/league-system/services"
	"github.com/courtside/league-system/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

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
	logger.Info("database connection established")

	// Calendar publishing is optional. Without R2 settings invites are
	// still rendered, just not uploaded.
	var uploader storage.FileUploader
	if cfg.CalendarStorageConfigured() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
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
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Info("calendar storage not configured, invites will not be published")
	}

	hub := events.NewHub(logger)
	go hub.Run()
	logger.Info("event hub started")

	availabilityRepo := repositories.NewPostgresAvailabilityRepository(dbConn)
	tierConfigRepo := repositories.NewPostgresTierConfigRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	slateRepo := repositories.NewPostgresSlateRepository(dbConn)
	slotRepo := repositories.NewPostgresSlotRepository(dbConn)
	overrideRepo := repositories.NewPostgresOverrideRepository(dbConn)
	scorecardRepo := repositories.NewPostgresScorecardRepository(dbConn)
	standingRepo := repositories.NewPostgresStandingRepository(dbConn)
	snapshotRepo := repositories.NewPostgresSnapshotRepository(dbConn)
	metaRepo := repositories.NewPostgresScheduleMetaRepository(dbConn)
	database := repositories.NewDatabase(dbConn)
	logger.Info("repositories initialized")

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	availabilityService := services.NewAvailabilityService(availabilityRepo)
	scheduleService := services.NewScheduleService(
		database,
		tierConfigRepo,
		availabilityRepo,
		matchRepo,
		slateRepo,
		metaRepo,
		hub,
		logger,
	)
	matchService := services.NewMatchService(database, matchRepo, slotRepo, overrideRepo, hub, logger, rng)
	standingsService := services.NewStandingsService(matchRepo, scorecardRepo, standingRepo, snapshotRepo)
	scorecardService := services.NewScorecardService(
		database,
		matchRepo,
		scorecardRepo,
		snapshotRepo,
		standingsService,
		hub,
		logger,
	)
	calendarService := services.NewCalendarService(uploader)
	logger.Info("services initialized")

	availabilityHandler := handlers.NewAvailabilityHandler(availabilityService)
	scheduleHandler := handlers.NewScheduleHandler(scheduleService)
	matchHandler := handlers.NewMatchHandler(matchService, calendarService)
	scorecardHandler := handlers.NewScorecardHandler(scorecardService)
	standingsHandler := handlers.NewStandingsHandler(standingsService)
	webSocketHandler := handlers.NewWebSocketHandler(hub, logger)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		availabilityHandler,
		scheduleHandler,
		matchHandler,
		scorecardHandler,
		standingsHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

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
