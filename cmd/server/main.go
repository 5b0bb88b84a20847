// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/hanamikoji/internal/auth"
	"github.com/jason-s-yu/hanamikoji/internal/cache"
	"github.com/jason-s-yu/hanamikoji/internal/catalog"
	"github.com/jason-s-yu/hanamikoji/internal/config"
	"github.com/jason-s-yu/hanamikoji/internal/database"
	"github.com/jason-s-yu/hanamikoji/internal/game"
	"github.com/jason-s-yu/hanamikoji/internal/handlers"
	"github.com/jason-s-yu/hanamikoji/internal/service"
	"github.com/jason-s-yu/hanamikoji/internal/store"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
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

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		logger.Fatalf("failed to load catalog: %v", err)
	}
	engine, err := game.NewEngine(cat, game.WithRules(cfg.Rules), game.WithLogger(logrus.NewEntry(logger)))
	if err != nil {
		logger.Fatalf("failed to create engine: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rdb *redis.Client
	if cfg.Store.Backend == config.BackendRedis || cfg.Historian.Publish {
		rdb, err = cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.DB)
		if err != nil {
			logger.Fatalf("%v", err)
		}
		defer rdb.Close()
	}

	var repo store.Repository
	switch cfg.Store.Backend {
	case config.BackendRedis:
		repo = store.NewRedisStore(rdb, cfg.Redis.TTL)
	case config.BackendPostgres:
		pool := openPostgres(ctx, cfg.Postgres.URL, logger)
		defer pool.Close()
		repo = store.NewPostgresStore(pool)
	default:
		repo = store.NewMemoryStore()
	}
	logger.WithField("backend", cfg.Store.Backend).Info("game store ready")

	opts := []service.Option{service.WithLogger(logger)}
	if cfg.Historian.Publish {
		pub := cache.NewActionPublisher(rdb, cfg.Historian.Queue)
		opts = append(opts, service.WithPublisher(pub))
		logger.WithField("queue", pub.Queue()).Info("publishing game actions")
	}
	svc := service.NewGameService(engine, repo, opts...)

	issuer := newIssuer(cfg.Auth, logger)
	api := handlers.NewAPIServer(svc, issuer, handlers.NewHub(logger), logger)

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infof("Running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server exited: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}

func openPostgres(ctx context.Context, url string, logger *logrus.Logger) *pgxpool.Pool {
	pool, err := database.Connect(ctx, url)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	if err := database.EnsureSchema(ctx, pool); err != nil {
		logger.Fatalf("%v", err)
	}
	return pool
}

func newIssuer(cfg config.AuthConfig, logger *logrus.Logger) *auth.Issuer {
	if cfg.KeyPath != "" {
		issuer, err := auth.NewIssuerFromPath(cfg.KeyPath, cfg.TokenTTL)
		if err != nil {
			logger.Fatalf("failed to load signing key: %v", err)
		}
		return issuer
	}
	logger.Warn("auth.key_path not set; seat tokens will not survive a restart")
	issuer, err := auth.NewIssuer(cfg.TokenTTL)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	return issuer
}
