package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/rxsupplyhq/rxsupply-backend/api/routes"
	authsvc "github.com/rxsupplyhq/rxsupply-backend/internal/auth"
	cartsvc "github.com/rxsupplyhq/rxsupply-backend/internal/cart"
	invoicesvc "github.com/rxsupplyhq/rxsupply-backend/internal/invoices"
	ordersvc "github.com/rxsupplyhq/rxsupply-backend/internal/orders"
	paymentsvc "github.com/rxsupplyhq/rxsupply-backend/internal/payments"
	productsvc "github.com/rxsupplyhq/rxsupply-backend/internal/products"
	profilesvc "github.com/rxsupplyhq/rxsupply-backend/internal/profiles"
	"github.com/rxsupplyhq/rxsupply-backend/internal/sequence"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/auth/session"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/config"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/db"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/gateway"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/logger"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/migrate"
	"github.com/rxsupplyhq/rxsupply-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gatewayClient, err := gateway.NewClient(context.Background(), cfg.Gateway, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create gateway client", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	profilesRepo := profilesvc.NewRepo(gormDB)
	productsRepo := productsvc.NewRepo(gormDB)
	ordersRepo := ordersvc.NewRepo(gormDB)
	invoicesRepo := invoicesvc.NewRepo(gormDB)
	cartRepo := cartsvc.NewRepo(gormDB)

	cartService := cartsvc.NewService(cartRepo, productsRepo)
	ordersService := ordersvc.NewService(ordersvc.ServiceParams{
		Tx:       dbClient,
		Repo:     ordersRepo,
		Invoices: invoicesRepo,
		Stock:    productsRepo,
		Profiles: profilesRepo,
		Sequence: sequence.NewService(),
		Notifier: gatewayClient,
		Carts:    cartService,
		Config:   cfg.Orders,
		Logger:   logg,
	})
	paymentsService := paymentsvc.NewService(dbClient, ordersRepo, invoicesRepo, gatewayClient, logg)
	invoicesService := invoicesvc.NewService(invoicesRepo, ordersRepo, gatewayClient, logg)
	profilesService := profilesvc.NewService(profilesRepo, gatewayClient, cfg.Password, logg)
	authService := authsvc.NewService(profilesRepo, sessionManager, cfg.JWT)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:   cfg,
			Logger:   logg,
			DB:       dbClient,
			Redis:    redisClient,
			Sessions: sessionManager,
			Auth:     authService,
			Cart:     cartService,
			Orders:   ordersService,
			Payments: paymentsService,
			Invoices: invoicesService,
			Profiles: profilesService,
			Products: productsRepo,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
