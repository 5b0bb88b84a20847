// cmd/historian/main.go drains game log records from the Redis queue into Postgres.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/hanamikoji/internal/cache"
	"github.com/jason-s-yu/hanamikoji/internal/config"
	"github.com/jason-s-yu/hanamikoji/internal/database"
	"github.com/jason-s-yu/hanamikoji/internal/historian"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

var configPath = flag.String("config", "", "path to a YAML configuration file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("failed to load configuration: %v", err)
	}
	logger, err := cfg.Log.NewLogger()
	if err != nil {
		logrus.Fatalf("invalid log configuration: %v", err)
	}
	if cfg.Postgres.URL == "" {
		logger.Fatal("postgres.url is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.DB)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	defer rdb.Close()

	pool, err := database.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	defer pool.Close()
	if err := database.EnsureSchema(ctx, pool); err != nil {
		logger.Fatalf("%v", err)
	}

	svc := historian.NewService(
		historian.NewRedisSource(rdb, cfg.Historian.Queue),
		historian.NewPostgresSink(pool),
		cfg.Historian.BatchSize,
		cfg.Historian.FlushInterval,
		logger,
	)
	if err := svc.Run(ctx); err != nil {
		logger.WithError(err).Error("historian exited")
	}
	logger.Info("Historian shutdown complete.")
}
