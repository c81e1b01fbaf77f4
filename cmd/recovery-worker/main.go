package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	ordersvc "github.com/rxsupplyhq/rxsupply-backend/internal/orders"
	"github.com/rxsupplyhq/rxsupply-backend/internal/recovery"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/config"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/db"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/gateway"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/instance"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/logger"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/metrics"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/migrate"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "recovery-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "recovery-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gatewayClient, err := gateway.NewClient(context.Background(), cfg.Gateway, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create gateway client", err)
		os.Exit(1)
	}

	lock, err := recovery.NewRedisLock(redisClient, redisClient.LockKey("recovery-worker"), cfg.Recovery.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create recovery lock", err)
		os.Exit(1)
	}

	notifyJob, err := recovery.NewOrderNotifyJob(recovery.OrderNotifyJobParams{
		Logger:    logg,
		Orders:    ordersvc.NewRepo(dbClient.DB()),
		Notifier:  gatewayClient,
		BatchSize: cfg.Recovery.BatchSize,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create order notify job", err)
		os.Exit(1)
	}

	service, err := recovery.NewService(recovery.ServiceParams{
		Logger:   logg,
		Registry: recovery.NewRegistry(notifyJob),
		Lock:     lock,
		Metrics:  metrics.NewJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Recovery.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create recovery service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting recovery worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "recovery worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "recovery worker shutting down gracefully")
}
