package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/tuanvle/dacsan-backend/pkg/config"
	"github.com/tuanvle/dacsan-backend/pkg/db"
	"github.com/tuanvle/dacsan-backend/pkg/db/models"
	"github.com/tuanvle/dacsan-backend/pkg/logger"
)

const serviceName = "dacsan-migrate"

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
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to connect to database", err)
		os.Exit(1)
	}
	defer func() { _ = dbClient.Close() }()

	err = dbClient.DB().AutoMigrate(
		&models.User{},
		&models.Vendor{},
		&models.Product{},
		&models.VariantGroup{},
		&models.Variant{},
		&models.Address{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.SubOrder{},
		&models.OrderItem{},
		&models.Notification{},
		&models.OutboxEvent{},
	)
	if err != nil {
		logg.Error(ctx, "migration failed", err)
		os.Exit(1)
	}

	logg.Info(ctx, "schema migrated")
}
