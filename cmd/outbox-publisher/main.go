package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tuanvle/dacsan-backend/pkg/config"
	"github.com/tuanvle/dacsan-backend/pkg/db"
	"github.com/tuanvle/dacsan-backend/pkg/logger"
	"github.com/tuanvle/dacsan-backend/pkg/outbox"
	"github.com/tuanvle/dacsan-backend/pkg/outbox/registry"
	"github.com/tuanvle/dacsan-backend/pkg/pubsub"
)

const serviceName = "dacsan-outbox-publisher"

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

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(ctx, "failed to create pubsub client", err)
		os.Exit(1)
	}
	defer func() { _ = pubsubClient.Close() }()

	eventRegistry, err := registry.NewEventRegistry(cfg.PubSub)
	if err != nil {
		logg.Error(ctx, "failed to build event registry", err)
		os.Exit(1)
	}

	service, err := NewService(ServiceParams{
		DB:         dbClient,
		PubSub:     pubsubClient,
		Repo:       outbox.NewRepository(dbClient.DB()),
		Registry:   eventRegistry,
		Publishers: gcpPublisherFactory{client: pubsubClient},
		Logger:     logg,
		Outbox:     cfg.Outbox,
	})
	if err != nil {
		logg.Error(ctx, "failed to build publisher service", err)
		os.Exit(1)
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := service.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "publisher exited with error", err)
		os.Exit(1)
	}
}
