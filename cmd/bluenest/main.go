package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bluenest/internal/bot"
	"bluenest/internal/config"
	"bluenest/internal/query"
	"bluenest/internal/repository"
	"bluenest/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	taskRepo := repository.NewTaskRepository(db)
	rolloverRepo := repository.NewRolloverRepository(db)
	metricRepo := repository.NewMetricRepository(db)
	collabRepo := repository.NewCollabRepository(db)

	rolloverSvc := service.NewRolloverService(taskRepo, rolloverRepo, cfg.RolloverMaxChainDays)
	taskSvc := service.NewTaskService(taskRepo, rolloverSvc, cfg.Owners)
	metricsSvc := service.NewMetricsService(taskRepo, rolloverRepo, metricRepo)
	aggregator := query.NewAggregator(taskRepo, collabRepo, collabRepo, collabRepo, cfg.Owners)

	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_TOKEN is required")
	}
	planner, err := bot.New(cfg.TelegramToken, &cfg, taskSvc, rolloverSvc, metricsSvc, metricRepo, aggregator)
	if err != nil {
		log.Fatalf("bot: %v", err)
	}

	scheduler := service.NewSchedulerService(time.Local)
	if _, err := scheduler.ScheduleDaily(cfg.MetricsTime, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		metricsSvc.SnapshotAll(jobCtx, cfg.Owners, time.Now())
	}); err != nil {
		log.Fatalf("schedule metrics: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	log.Println("BlueNest planner started.")
	if err := planner.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("bot stopped with error: %v", err)
	}
	log.Println("Shutdown complete.")
}
