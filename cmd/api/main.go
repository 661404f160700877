package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tuanvle/dacsan-backend/api/routes"
	"github.com/tuanvle/dacsan-backend/internal/address"
	internalauth "github.com/tuanvle/dacsan-backend/internal/auth"
	"github.com/tuanvle/dacsan-backend/internal/cart"
	"github.com/tuanvle/dacsan-backend/internal/checkout"
	"github.com/tuanvle/dacsan-backend/internal/kitchen"
	"github.com/tuanvle/dacsan-backend/internal/notifications"
	"github.com/tuanvle/dacsan-backend/internal/orders"
	"github.com/tuanvle/dacsan-backend/internal/products"
	"github.com/tuanvle/dacsan-backend/internal/vendors"
	"github.com/tuanvle/dacsan-backend/pkg/auth/session"
	"github.com/tuanvle/dacsan-backend/pkg/config"
	"github.com/tuanvle/dacsan-backend/pkg/db"
	"github.com/tuanvle/dacsan-backend/pkg/env"
	"github.com/tuanvle/dacsan-backend/pkg/logger"
	"github.com/tuanvle/dacsan-backend/pkg/outbox"
	"github.com/tuanvle/dacsan-backend/pkg/redis"
)

const serviceName = "dacsan-api"

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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(ctx, "failed to build session manager", err)
		os.Exit(1)
	}

	conn := dbClient.DB()
	outboxService := outbox.NewService(outbox.NewRepository(conn), logg)

	authService, err := internalauth.NewService(internalauth.NewRepository(conn), dbClient, sessionManager, cfg.JWT, cfg.Password)
	if err != nil {
		logg.Error(ctx, "failed to build auth service", err)
		os.Exit(1)
	}
	addressService, err := address.NewService(address.NewRepository(conn), dbClient)
	if err != nil {
		logg.Error(ctx, "failed to build address service", err)
		os.Exit(1)
	}
	productsService, err := products.NewService(products.NewRepository(conn), dbClient)
	if err != nil {
		logg.Error(ctx, "failed to build products service", err)
		os.Exit(1)
	}
	cartService, err := cart.NewService(cart.NewRepository(conn))
	if err != nil {
		logg.Error(ctx, "failed to build cart service", err)
		os.Exit(1)
	}
	checkoutService, err := checkout.NewService(checkout.NewRepository(conn), dbClient, outboxService)
	if err != nil {
		logg.Error(ctx, "failed to build checkout service", err)
		os.Exit(1)
	}
	ordersService, err := orders.NewService(orders.NewRepository(conn), dbClient, outboxService)
	if err != nil {
		logg.Error(ctx, "failed to build orders service", err)
		os.Exit(1)
	}
	vendorsService, err := vendors.NewService(vendors.NewRepository(conn))
	if err != nil {
		logg.Error(ctx, "failed to build vendors service", err)
		os.Exit(1)
	}
	notificationsService, err := notifications.NewService(notifications.NewRepository(conn))
	if err != nil {
		logg.Error(ctx, "failed to build notifications service", err)
		os.Exit(1)
	}

	scheduler, err := kitchen.NewScheduler(cfg.Kitchen, ordersService, logg)
	if err != nil {
		logg.Error(ctx, "failed to build kitchen scheduler", err)
		os.Exit(1)
	}

	router := routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, routes.Services{
		Auth:          authService,
		Addresses:     addressService,
		Products:      productsService,
		Cart:          cartService,
		Checkout:      checkoutService,
		Orders:        ordersService,
		Vendors:       vendorsService,
		Notifications: notificationsService,
		Countdown:     scheduler,
	})

	port := env.Get("PORT", cfg.App.Port)
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go scheduler.Run(runCtx)

	go func() {
		logg.Info(logg.WithField(ctx, "port", port), "http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "http server failed", err)
			stop()
		}
	}()

	<-runCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "graceful shutdown failed", err)
		os.Exit(1)
	}
	logg.Info(ctx, "server stopped")
}
