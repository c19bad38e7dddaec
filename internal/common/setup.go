package common

import (
	"context"
	"log"
	"strings"

	"bet-ledger-go/internal/api"
	"bet-ledger-go/internal/cache"
	"bet-ledger-go/internal/database"
	"bet-ledger-go/internal/events"
	"bet-ledger-go/internal/metrics"
	"bet-ledger-go/internal/models"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// init loads environment variables from .env file if it exists
func init() {
	// Environment variables can also be set via shell export, docker, etc.
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
		log.Println("Make sure to set environment variables via export or other means")
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

type Services struct {
	DbService *database.Service
	Ledger    *api.LedgerService
	Registry  *prometheus.Registry
	Metrics   *metrics.Metrics

	redis     *redis.Client
	publisher events.Publisher
}

// InitializeLogger builds the global logger. ENV=local switches to the
// development encoder.
func InitializeLogger(serviceName, env string) (*zap.Logger, func()) {
	cfg := zap.NewProductionConfig()
	if env == "local" {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build(zap.Fields(
		zap.String("service", serviceName),
		zap.String("env", env),
	))
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// InitializeServices opens the database and wires the optional summary cache
// and event publisher around the ledger service. Redis and Kafka are skipped
// when not configured.
func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	services := &Services{
		DbService: dbService,
		Registry:  prometheus.NewRegistry(),
		publisher: events.NopPublisher{},
	}
	services.Metrics = metrics.New(services.Registry)

	var summaryCache cache.SummaryCache = cache.NopCache{}
	if cfg.Cache.RedisAddr != "" {
		zap.L().Info("Connecting to Redis", zap.String("addr", cfg.Cache.RedisAddr))
		client, err := cache.ConnectRedis(ctx, cfg.Cache.RedisAddr)
		if err != nil {
			services.Close()
			return nil, err
		}
		services.redis = client
		summaryCache = cache.NewRedisSummaryCache(client, cfg.Cache.SummaryTTL)
	}

	if len(cfg.Events.KafkaBrokers) > 0 {
		zap.L().Info("Publishing ledger events to Kafka",
			zap.Strings("brokers", cfg.Events.KafkaBrokers),
			zap.String("topic", cfg.Events.KafkaTopic))
		services.publisher = events.NewKafkaPublisher(cfg.Events.KafkaBrokers, cfg.Events.KafkaTopic)
	}

	services.Ledger = api.NewLedgerService(api.LedgerServiceConfig{
		Store:     dbService,
		Publisher: services.publisher,
		Cache:     summaryCache,
		Metrics:   services.Metrics,
	})
	return services, nil
}

// InitializeDatabaseOnly initializes just the database service.
// Useful for command-line tools that only read or seed the ledger.
func InitializeDatabaseOnly(ctx context.Context, cfg *models.Config) (*database.Service, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	return dbService, nil
}

func (cs *Services) Close() {
	if cs.publisher != nil {
		if err := cs.publisher.Close(); err != nil {
			zap.L().Warn("Failed to close event publisher", zap.Error(err))
		}
	}
	if cs.redis != nil {
		if err := cs.redis.Close(); err != nil {
			zap.L().Warn("Failed to close redis client", zap.Error(err))
		}
	}
	if cs.DbService != nil {
		cs.DbService.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
