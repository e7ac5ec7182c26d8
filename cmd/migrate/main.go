package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"pier/config"
	"pier/internal/clickhouse"
	"pier/internal/postgres"
	"pier/pkg/logger"
)

func main() {
	analytics := flag.Bool("analytics", false, "also create the ClickHouse fact tables")
	timeout := flag.Duration("timeout", time.Minute, "overall migration deadline")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, flush := logger.Init(cfg.Log.Level)
	defer flush()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pgClient, err := postgres.NewClient(postgres.FromConfig(cfg.Postgres), log.Named("postgres"))
	if err != nil {
		log.Fatal("failed to connect to Postgres", zap.Error(err))
	}
	defer pgClient.Close()

	if err := pgClient.Migrate(ctx); err != nil {
		log.Fatal("postgres migration failed", zap.Error(err))
	}
	log.Info("postgres schema up to date", zap.String("database", cfg.Postgres.Database))

	if !*analytics {
		return
	}

	chClient, err := clickhouse.NewClient(cfg.ClickHouse, log.Named("clickhouse"))
	if err != nil {
		log.Fatal("failed to connect to ClickHouse", zap.Error(err))
	}
	defer chClient.Close()

	if err := chClient.EnsureSchema(ctx); err != nil {
		log.Fatal("clickhouse schema failed", zap.Error(err))
	}
	log.Info("clickhouse schema up to date", zap.String("database", cfg.ClickHouse.Database))
}
