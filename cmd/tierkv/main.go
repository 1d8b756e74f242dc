// Command tierkv serves the cache-aside command API over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/gommon/log"

	"github.com/adeilh/tierkv/api"
	"github.com/adeilh/tierkv/cache"
	cachemem "github.com/adeilh/tierkv/cache/memory"
	cacheredis "github.com/adeilh/tierkv/cache/redis"
	"github.com/adeilh/tierkv/cacheaside"
	"github.com/adeilh/tierkv/config"
	"github.com/adeilh/tierkv/db/sql/postgres"
	"github.com/adeilh/tierkv/httpx"
	"github.com/adeilh/tierkv/store"
	storemem "github.com/adeilh/tierkv/store/memory"
)

func main() {
	configPath := flag.String("config", os.Getenv("TIERKV_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := cfg.Log.Logger(os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("tierkv stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	c, closeCache, err := openCache(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	docs, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	orch, err := cacheaside.New(c, docs,
		cacheaside.WithTTL(cfg.Cache.TTL),
		cacheaside.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	echoLogger := log.New("tierkv")
	echoLogger.SetOutput(os.Stdout)
	server := httpx.NewServer(
		httpx.WithAddress(cfg.HTTP.Addr),
		httpx.WithTimeouts(cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout),
		httpx.WithLogger(echoLogger),
		httpx.WithLogLevel(httpx.ParseLogLevel(cfg.Log.Level)),
	)
	server.RegisterRoutes(api.NewHandler(orch, api.WithLogger(logger)).Register)

	logger.Info("starting server",
		"addr", server.Address(),
		"cache", cfg.Backends.Cache,
		"store", cfg.Backends.Store,
		"ttl", orch.TTL(),
	)
	err = server.Start(ctx, httpx.WithShutdownTimeout(cfg.HTTP.ShutdownTimeout))
	if errors.Is(err, context.Canceled) {
		logger.Info("shutdown signal received")
		return nil
	}
	return err
}

func openCache(ctx context.Context, cfg config.Config, logger *slog.Logger) (cache.Store, func(), error) {
	if cfg.Backends.Cache == config.BackendMemory {
		logger.Warn("using in-memory cache; values are lost on restart")
		return cachemem.NewStore(), func() {}, nil
	}

	s := cacheredis.NewStore(cacheredis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	})
	if err := s.Ping(ctx); err != nil {
		_ = s.Close()
		return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
	}
	logger.Info("connected to redis", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
	return s, closer(logger, "redis", s), nil
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (store.Documents, func(), error) {
	if cfg.Backends.Store == config.BackendMemory {
		logger.Warn("using in-memory document store; documents are lost on restart")
		return storemem.NewDocuments(), func() {}, nil
	}

	if cfg.Postgres.Migrate {
		if err := postgres.Migrate(cfg.Postgres.DSN, logger); err != nil {
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	repo, db, err := postgres.Connect(ctx,
		postgres.WithDSN(cfg.Postgres.DSN),
		postgres.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
		postgres.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
		postgres.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to postgres")
	return repo, closer(logger, "postgres", db), nil
}

func closer(logger *slog.Logger, name string, c io.Closer) func() {
	return func() {
		if err := c.Close(); err != nil {
			logger.Error("failed to close "+name, "error", err)
		}
	}
}
