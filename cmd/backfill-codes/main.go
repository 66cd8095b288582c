package main

import (
	"context"
	"fmt"

	"github.com/eswarnandha-a/sece-space/internal/config"
	"github.com/eswarnandha-a/sece-space/internal/database"
	"github.com/eswarnandha-a/sece-space/internal/logger"
	"github.com/eswarnandha-a/sece-space/internal/repository"
	"github.com/eswarnandha-a/sece-space/internal/service"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Initialize Service ────────────────────────────────────────────
	classroomRepo := repository.NewClassroomRepository(pool)
	fileRepo := repository.NewFileRepository(pool)
	eventRepo := repository.NewEventRepository(pool)
	classroomService := service.NewClassroomService(classroomRepo, fileRepo, eventRepo)

	fmt.Println("=== Backfill Classroom Join Codes ===")
	fmt.Println("This command assigns a join code to every classroom missing one.")

	n, err := classroomService.BackfillMissingCodes(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Backfill failed")
	}

	if n == 0 {
		fmt.Println("\nNothing to do: every classroom already has a join code.")
		return
	}

	fmt.Printf("\nSuccess! Assigned join codes to %d classroom(s).\n", n)
}
