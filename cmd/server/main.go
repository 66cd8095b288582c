package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/eswarnandha-a/sece-space/internal/config"
	"github.com/eswarnandha-a/sece-space/internal/database"
	"github.com/eswarnandha-a/sece-space/internal/handler"
	"github.com/eswarnandha-a/sece-space/internal/logger"
	"github.com/eswarnandha-a/sece-space/internal/repository"
	"github.com/eswarnandha-a/sece-space/internal/router"
	"github.com/eswarnandha-a/sece-space/internal/service"
	"github.com/eswarnandha-a/sece-space/internal/storage"
	"github.com/eswarnandha-a/sece-space/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting SECE Space Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis (optional) ───────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// ─── Connect to Object Storage ─────────────────────────────────────
	gateway, err := storage.NewCloudinary(cfg.CloudinaryURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure object storage")
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	classroomRepo := repository.NewClassroomRepository(pool)
	fileRepo := repository.NewFileRepository(pool)
	eventRepo := repository.NewEventRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg)
	classroomService := service.NewClassroomService(classroomRepo, fileRepo, eventRepo)
	uploadService := service.NewUploadService(fileRepo, classroomRepo, gateway, cfg, log)
	fileAccessService := service.NewFileAccessService(fileRepo, gateway, rdb, cfg, log)
	userService := service.NewUserService(userRepo)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Classroom: handler.NewClassroomHandler(classroomService),
		Upload:    handler.NewUploadHandler(uploadService),
		File:      handler.NewFileHandler(fileAccessService, log),
		User:      handler.NewUserHandler(userService),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
