package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"pier/config"
	"pier/internal/clickhouse"
	"pier/internal/postgres"
	"pier/internal/rabbitmq"
	"pier/internal/workers"
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
	log.Info("starting workers service")

	if err := cfg.ValidateWorkers(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	log.Info("configuration loaded",
		zap.String("clickhouse", cfg.ClickHouse.Host),
		zap.String("clickhouse_database", cfg.ClickHouse.Database),
		zap.String("postgres", cfg.Postgres.Host),
		zap.String("order_queue", cfg.RabbitMQ.OrderQueue),
		zap.String("order_item_queue", cfg.RabbitMQ.OrderItemQueue),
	)

	pgClient, err := postgres.NewClient(postgres.FromConfig(cfg.Postgres), log.Named("postgres"))
	if err != nil {
		log.Fatal("failed to connect to Postgres", zap.Error(err))
	}
	defer pgClient.Close()
	store := postgres.NewStore(pgClient)

	chClient, err := clickhouse.NewClient(cfg.ClickHouse, log.Named("clickhouse"))
	if err != nil {
		log.Fatal("failed to connect to ClickHouse", zap.Error(err))
	}
	defer chClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := chClient.EnsureSchema(ctx); err != nil {
		log.Fatal("failed to prepare ClickHouse schema", zap.Error(err))
	}

	// One connection per consumer so a slow queue cannot stall the other.
	orderConsumer, err := rabbitmq.NewConsumer(cfg.RabbitMQ, log.Named("rabbitmq"))
	if err != nil {
		log.Fatal("failed to create order consumer", zap.Error(err))
	}
	defer orderConsumer.Close()

	orderItemConsumer, err := rabbitmq.NewConsumer(cfg.RabbitMQ, log.Named("rabbitmq"))
	if err != nil {
		log.Fatal("failed to create order item consumer", zap.Error(err))
	}
	defer orderItemConsumer.Close()

	orderWorker := workers.NewOrderWorker(orderConsumer, store, chClient, cfg.RabbitMQ.OrderQueue, log.Named("order_worker"))
	orderItemWorker := workers.NewOrderItemWorker(orderItemConsumer, store, chClient, cfg.RabbitMQ.OrderItemQueue, log.Named("order_item_worker"))

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		if err := orderWorker.Start(ctx); err != nil {
			log.Error("order worker stopped", zap.Error(err))
			stop()
		}
	}()

	go func() {
		defer wg.Done()
		if err := orderItemWorker.Start(ctx); err != nil {
			log.Error("order item worker stopped", zap.Error(err))
			stop()
		}
	}()

	log.Info("all workers started")

	<-ctx.Done()
	log.Info("shutting down workers")
	wg.Wait()
	log.Info("workers stopped")
}
