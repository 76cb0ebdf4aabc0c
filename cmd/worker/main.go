package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geo-gateway/internal/config"
	"github.com/geo-gateway/internal/pkg/logger"
	"github.com/geo-gateway/internal/repository/cache"
	"github.com/geo-gateway/internal/repository/postgres"
	redisRepo "github.com/geo-gateway/internal/repository/redis"
	"github.com/geo-gateway/internal/worker"
	"github.com/geo-gateway/internal/worker/history"
	"github.com/geo-gateway/migrations"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Check if worker is enabled
	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, cfg.Server.Env, "geo-gateway-worker")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting history worker")
	log.Info("Configuration loaded",
		zap.String("consumer_group", cfg.Worker.ConsumerGroup),
		zap.Int("batch_size", cfg.Worker.BatchSize))

	if !cfg.Database.Enabled {
		log.Fatal("History worker requires PostgreSQL, set DB_ENABLED=true")
	}

	// 3. Connect to PostgreSQL
	db, err := postgres.New(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close PostgreSQL connection", zap.Error(err))
		}
	}()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	err = db.ApplyMigrations(migrateCtx, migrations.FS)
	cancelMigrate()
	if err != nil {
		log.Fatal("Failed to apply migrations", zap.Error(err))
	}

	// 4. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	// 5. Initialize repositories
	historyRepo := postgres.NewHistoryRepository(db)
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)

	// 6. Initialize workers
	historyWorker := history.NewWorker(
		streamRepo,
		historyRepo,
		cfg.Worker.ConsumerGroup,
		cfg.Worker.BatchSize,
		log,
	)

	// 7. Create worker manager and register workers
	workerManager := worker.NewWorkerManager(log)
	workerManager.Register(historyWorker)

	// 8. Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("Received shutdown signal")

	// Stop даёт воркеру дописать текущую пачку, ctx отменяется после
	stopCtx, stopCancel := context.WithTimeout(context.Background(), worker.DefaultShutdownTimeout)
	defer stopCancel()

	if err := workerManager.Stop(stopCtx); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}
	cancel()

	log.Info("Worker shutdown complete")
}
