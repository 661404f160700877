package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tuanvle/dacsan-backend/internal/notifications"
	"github.com/tuanvle/dacsan-backend/pkg/config"
	"github.com/tuanvle/dacsan-backend/pkg/db"
	"github.com/tuanvle/dacsan-backend/pkg/logger"
	"github.com/tuanvle/dacsan-backend/pkg/outbox/idempotency"
	"github.com/tuanvle/dacsan-backend/pkg/pubsub"
	"github.com/tuanvle/dacsan-backend/pkg/redis"
)

const serviceName = "dacsan-worker"

// processedEventTTL bounds how long a consumed event id is remembered.
const processedEventTTL = 7 * 24 * time.Hour

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: serviceName})

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, "no .env file found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to connect to database", err)
		os.Exit(1)
	}
	defer func() { _ = dbClient.Close() }()

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to connect to redis", err)
		os.Exit(1)
	}
	defer func() { _ = redisClient.Close() }()

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(ctx, "failed to create pubsub client", err)
		os.Exit(1)
	}
	defer func() { _ = pubsubClient.Close() }()

	idempotencyManager, err := idempotency.NewManager(redisClient, processedEventTTL)
	if err != nil {
		logg.Error(ctx, "failed to build idempotency manager", err)
		os.Exit(1)
	}

	consumer, err := notifications.NewConsumer(
		notifications.NewRepository(dbClient.DB()),
		pubsubClient.OrderEventsSubscription(),
		idempotencyManager,
		logg,
	)
	if err != nil {
		logg.Error(ctx, "failed to build notifications consumer", err)
		os.Exit(1)
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logg.Info(ctx, "order events consumer started")
	if err := consumer.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "consumer exited with error", err)
		os.Exit(1)
	}
	logg.Info(ctx, "consumer stopped")
}
