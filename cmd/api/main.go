package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ceylonharvest/spicetrade-backend/api/routes"
	"github.com/ceylonharvest/spicetrade-backend/internal/catalog"
	"github.com/ceylonharvest/spicetrade-backend/internal/inventory"
	"github.com/ceylonharvest/spicetrade-backend/internal/orders"
	"github.com/ceylonharvest/spicetrade-backend/internal/payments"
	"github.com/ceylonharvest/spicetrade-backend/internal/quotations"
	gatewaywebhook "github.com/ceylonharvest/spicetrade-backend/internal/webhooks/gateway"
	"github.com/ceylonharvest/spicetrade-backend/pkg/config"
	"github.com/ceylonharvest/spicetrade-backend/pkg/db"
	"github.com/ceylonharvest/spicetrade-backend/pkg/gateway"
	"github.com/ceylonharvest/spicetrade-backend/pkg/logger"
	"github.com/ceylonharvest/spicetrade-backend/pkg/metrics"
	"github.com/ceylonharvest/spicetrade-backend/pkg/migrate"
	"github.com/ceylonharvest/spicetrade-backend/pkg/redis"
)

const sweepInterval = 5 * time.Minute

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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
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
		logg.Error(context.Background(), "failed to bootstrap payment gateway", err)
		os.Exit(1)
	}

	metricsRegistry := metrics.New(prometheus.DefaultRegisterer)

	catalogRepo := catalog.NewRepository(dbClient.DB())
	inventoryRepo := inventory.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	quotationsRepo := quotations.NewRepository(dbClient.DB())
	paymentsRepo := payments.NewRepository(dbClient.DB())

	reconciler, err := inventory.NewReconciler(inventoryRepo, metricsRegistry)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory reconciler", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:       ordersRepo,
		Catalog:    catalogRepo,
		Tx:         dbClient,
		Reconciler: reconciler,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	quotationsService, err := quotations.NewService(quotations.ServiceParams{
		Repo:    quotationsRepo,
		Orders:  ordersRepo,
		Catalog: catalogRepo,
		Tx:      dbClient,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create quotations service", err)
		os.Exit(1)
	}

	paymentsService, err := payments.NewService(payments.ServiceParams{
		Repo:    paymentsRepo,
		Orders:  ordersRepo,
		Gateway: gatewayClient,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	webhookGuard := gatewaywebhook.NewIdempotencyGuard(redisClient, cfg.Webhook.IdempotencyTTL, logg)
	webhookService, err := gatewaywebhook.NewService(gatewaywebhook.ServiceParams{
		OrdersRepo:   ordersRepo,
		PaymentsRepo: paymentsRepo,
		Tx:           dbClient,
		Guard:        webhookGuard,
		Metrics:      metricsRegistry,
		Logger:       logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	sweepJob, err := inventory.NewSweepJob(inventoryRepo, reconciler, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory sweep job", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go sweepJob.RunEvery(ctx, sweepInterval)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			gatewayClient,
			ordersService,
			quotationsService,
			paymentsService,
			webhookService,
		),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "error shutting down server", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "api server shut down gracefully")
}
