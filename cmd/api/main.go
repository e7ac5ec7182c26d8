package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"pier/config"
	"pier/internal/handlers"
	"pier/internal/postgres"
	"pier/internal/rabbitmq"
	"pier/internal/repositories"
	"pier/internal/repositories/memory"
	"pier/internal/services"
	"pier/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, flush := logger.Init(cfg.Log.Level)
	defer flush()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	store, closeStore, err := openStore(cfg, log)
	if err != nil {
		log.Fatal("failed to open store", zap.Error(err))
	}
	defer closeStore()

	var publisher services.OrderEventPublisher
	if cfg.RabbitMQ.Enabled {
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQ)
		if err != nil {
			log.Fatal("failed to connect to RabbitMQ", zap.Error(err))
		}
		defer p.Close()
		publisher = p
		log.Info("publishing order events",
			zap.String("order_queue", cfg.RabbitMQ.OrderQueue),
			zap.String("order_item_queue", cfg.RabbitMQ.OrderItemQueue),
		)
	}

	customers, err := services.NewCustomerService(store)
	if err != nil {
		log.Fatal("failed to build customer service", zap.Error(err))
	}
	assets, err := services.NewAssetService(store)
	if err != nil {
		log.Fatal("failed to build asset service", zap.Error(err))
	}
	orders, err := services.NewOrderService(services.OrderServiceDeps{
		Store:     store,
		Publisher: publisher,
		Logger:    log,
	})
	if err != nil {
		log.Fatal("failed to build order service", zap.Error(err))
	}
	reports, err := services.NewReportService(store)
	if err != nil {
		log.Fatal("failed to build report service", zap.Error(err))
	}

	router := handlers.NewRouter(
		handlers.WithLogger(log),
		handlers.WithHealthHandlers(handlers.NewHealthHandlers(store)),
		handlers.WithRoutes(
			handlers.NewCustomerHandlers(customers).Routes,
			handlers.NewAssetHandlers(assets).Routes,
			handlers.NewOrderHandlers(orders).Routes,
			handlers.NewQueryHandlers(reports).Routes,
		),
	)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := log.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("listening", zap.String("store", cfg.Store.Driver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	log.Info("shutdown signal received; draining requests")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

func openStore(cfg *config.Config, log *zap.Logger) (repositories.Store, func(), error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		log.Warn("using in-memory store; data is lost on exit")
		return memory.NewStore(), func() {}, nil
	}

	client, err := postgres.NewClient(postgres.FromConfig(cfg.Postgres), log.Named("postgres"))
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := client.Close(); err != nil {
			log.Warn("closing postgres", zap.Error(err))
		}
	}
	return postgres.NewStore(client), closeFn, nil
}
