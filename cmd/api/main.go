package main

// @title Geo Gateway API
// @version 1.0.0
// @description Бэкенд голосовой карты: поиск мест рядом по разговорной категории (Overpass API), прямое и обратное геокодирование (Nominatim), история поисков и маркеры для офлайн-синхронизации.
// @description
// @description Основные возможности:
// @description - Поиск POI в радиусе с сортировкой по расстоянию
// @description - Геокодирование с кешированием в Redis
// @description - Лимит запросов на клиента в фиксированном окне

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8001
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/geo-gateway/docs"
	"github.com/geo-gateway/internal/config"
	httpDelivery "github.com/geo-gateway/internal/delivery/http"
	"github.com/geo-gateway/internal/delivery/http/handler"
	"github.com/geo-gateway/internal/domain/repository"
	"github.com/geo-gateway/internal/infrastructure/nominatim"
	"github.com/geo-gateway/internal/infrastructure/overpass"
	"github.com/geo-gateway/internal/pkg/logger"
	"github.com/geo-gateway/internal/ratelimit"
	"github.com/geo-gateway/internal/repository/cache"
	"github.com/geo-gateway/internal/repository/postgres"
	redisRepo "github.com/geo-gateway/internal/repository/redis"
	"github.com/geo-gateway/internal/usecase"
	"github.com/geo-gateway/migrations"
	"go.uber.org/zap"
)

const (
	statsBucketTTL  = 24 * time.Hour
	shutdownTimeout = 30 * time.Second
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, cfg.Server.Env, "geo-gateway-api")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Geo Gateway")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("history_sink", cfg.History.Sink),
		zap.Bool("database_enabled", cfg.Database.Enabled),
	)

	// 3. Connect to Redis; без Redis сервис работает без кеша, статистики и стрима истории
	var redisClient *cache.Redis
	redisClient, err = cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Warn("Redis unavailable, running without cache and history stream", zap.Error(err))
		redisClient = nil
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Failed to close Redis connection", zap.Error(err))
			}
		}()
		log.Info("Redis connected")
	}

	// 4. Connect to PostgreSQL (опционально) и применить схему истории
	var db *postgres.DB
	if cfg.Database.Enabled {
		db, err = postgres.New(&cfg.Database, log)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Failed to close PostgreSQL connection", zap.Error(err))
			}
		}()

		migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err = db.ApplyMigrations(migrateCtx, migrations.FS)
		cancel()
		if err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
		log.Info("PostgreSQL connected")
	}

	// 5. Initialize repositories and upstream clients
	var (
		cacheRepo  repository.CacheRepository
		statsStore repository.RateLimitStatsStore
		historyRep repository.HistoryRepository
	)
	if redisClient != nil {
		cacheRepo = cache.NewCacheRepository(redisClient)
		if cfg.RateLimit.StatsEnabled {
			statsStore = ratelimit.NewRedisStatsStore(redisClient.Client(), "", statsBucketTTL)
		}
	}
	if statsStore == nil {
		statsStore = ratelimit.NewMemoryStatsStore()
	}
	if db != nil {
		historyRep = postgres.NewHistoryRepository(db)
	}

	historySink := selectHistorySink(cfg.History.Sink, redisClient, historyRep, log)

	poiProvider := overpass.NewOverpassClient(&cfg.Overpass, log)
	geocoder := nominatim.NewNominatimClient(&cfg.Nominatim, log)

	log.Info("Repositories initialized")

	// 6. Rate limiter: одна квота на клиента для всех операций
	limiter := ratelimit.NewFixedWindowLimiter(
		cfg.RateLimit.Requests,
		cfg.RateLimit.Window,
		ratelimit.WithSweepInterval(cfg.RateLimit.SweepInterval),
	)
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	limiter.StartJanitor(janitorCtx)

	// 7. Initialize use cases
	gate := usecase.NewRateGate(limiter, statsStore, log)
	normalizer := usecase.NewNormalizer(log)
	recorder := usecase.NewHistoryRecorder(historySink, cfg.History.WriteTimeout, log)

	nearbyUC := usecase.NewNearbyUseCase(gate, poiProvider, normalizer, recorder, log)
	geocodeUC := usecase.NewGeocodeUseCase(gate, geocoder, cacheRepo, normalizer, recorder, log, cfg.Cache.GeocodeCacheTTL)
	historyUC := usecase.NewHistoryUseCase(gate, recorder, historyRep, log)
	statsUC := usecase.NewStatsUseCase(limiter, statsStore, log)

	checkers := map[string]usecase.HealthChecker{
		"redis":    nil,
		"postgres": nil,
	}
	if redisClient != nil {
		checkers["redis"] = redisClient
	}
	if db != nil {
		checkers["postgres"] = db
	}
	systemUC := usecase.NewSystemUseCase(checkers, cfg.APIKeys, log)

	log.Info("Use cases initialized")

	// 8. Initialize HTTP handlers and server
	server := httpDelivery.NewServer(cfg, log, httpDelivery.Handlers{
		Nearby:  handler.NewNearbyHandler(nearbyUC, log),
		Geocode: handler.NewGeocodeHandler(geocodeUC, log),
		History: handler.NewHistoryHandler(historyUC, log),
		System:  handler.NewSystemHandler(systemUC, statsUC, log),
	})

	log.Info("HTTP server initialized")

	// 9. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 10. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	// дописываем историю, принятую до остановки сервера
	if err := recorder.Close(ctx); err != nil {
		log.Error("History recorder did not drain", zap.Error(err))
	}

	stopJanitor()

	log.Info("Server stopped successfully")
}

// selectHistorySink выбирает приёмник истории; недоступный приёмник отключает запись
func selectHistorySink(kind string, redisClient *cache.Redis, historyRepo repository.HistoryRepository, log *zap.Logger) repository.HistorySink {
	switch kind {
	case "stream":
		if redisClient == nil {
			log.Warn("History sink 'stream' requires Redis, history disabled")
			return nil
		}
		streams := redisRepo.NewStreamRepository(redisClient.Client(), log)
		return redisRepo.NewHistoryStreamSink(streams)
	case "postgres":
		if historyRepo == nil {
			log.Warn("History sink 'postgres' requires DB_ENABLED=true, history disabled")
			return nil
		}
		return historyRepo
	case "none":
		return nil
	default:
		log.Warn("Unknown history sink, history disabled", zap.String("sink", kind))
		return nil
	}
}
