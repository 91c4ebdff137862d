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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/ogsoda/delivery-backend/api/routes"
	"github.com/ogsoda/delivery-backend/internal/admin"
	"github.com/ogsoda/delivery-backend/internal/auth"
	"github.com/ogsoda/delivery-backend/internal/customers"
	"github.com/ogsoda/delivery-backend/internal/orders"
	"github.com/ogsoda/delivery-backend/internal/users"
	"github.com/ogsoda/delivery-backend/pkg/auth/session"
	"github.com/ogsoda/delivery-backend/pkg/config"
	"github.com/ogsoda/delivery-backend/pkg/db"
	"github.com/ogsoda/delivery-backend/pkg/logger"
	"github.com/ogsoda/delivery-backend/pkg/metrics"
	"github.com/ogsoda/delivery-backend/pkg/migrate"
	"github.com/ogsoda/delivery-backend/pkg/redis"
	"github.com/ogsoda/delivery-backend/pkg/security"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "ogsoda-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "ogsoda-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	authMetrics := metrics.NewAuthMetrics(registry)

	hasher := security.NewHasher(cfg.Password)
	userRepo := users.NewRepository(dbClient.DB())

	customerService, err := customers.NewService(customers.NewRepository(dbClient.DB()))
	if err != nil {
		return err
	}

	orderRepo := orders.NewRepository(dbClient.DB())
	orderService, err := orders.NewService(orders.ServiceParams{Repo: orderRepo, Customers: customerService})
	if err != nil {
		return err
	}
	orderTempService, err := orders.NewService(orders.ServiceParams{
		Repo:            orders.NewTempRepository(dbClient.DB()),
		Customers:       customerService,
		NotFoundMessage: "Order temp not found",
	})
	if err != nil {
		return err
	}

	aggregator, err := orders.NewAggregator(orders.AggregatorParams{
		Repo:    orderRepo,
		Users:   userRepo,
		Metrics: metrics.NewQueryMetrics(registry),
	})
	if err != nil {
		return err
	}

	userService, err := users.NewService(users.ServiceParams{
		Repo:              userRepo,
		Hasher:            hasher,
		MinPasswordLength: cfg.Password.MinLength,
	})
	if err != nil {
		return err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		Credentials:    hasher,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		Metrics:        authMetrics,
		Logger:         logg,
	})
	if err != nil {
		return err
	}

	adminService, err := admin.NewService(admin.ServiceParams{
		Customers: customerService,
		Orders:    orderRepo,
		Payments:  aggregator,
	})
	if err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":    cfg.App.Env,
		"addr":   addr,
		"driver": dbClient.Driver(),
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			Sessions:    sessionManager,
			Gatherer:    registry,
			HTTPMetrics: metrics.NewHTTPMetrics(registry),
			AuthMetrics: authMetrics,
			Auth:        authService,
			Customers:   customerService,
			Orders:      orderService,
			OrderTemp:   orderTempService,
			Aggregator:  aggregator,
			Users:       userService,
			Admin:       adminService,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
