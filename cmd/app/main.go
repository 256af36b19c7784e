package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"order-manager/internal/auth"
	"order-manager/internal/catalog"
	"order-manager/internal/config"
	"order-manager/internal/httpserver"
	"order-manager/internal/logging"
	"order-manager/internal/metrics"
	"order-manager/internal/nairobi"
	"order-manager/internal/orders"
	"order-manager/internal/queue"
	"order-manager/internal/repo"
	"order-manager/migrations"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting order-manager api", "env", cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricRegistry := metrics.Registry(cfg.MetricsNamespace)

	repository, err := repo.New(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("init repository: %w", err)
	}
	defer repository.Close()

	if err := repository.RunMigrations(ctx, migrations.Files); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrated")

	broker := queue.NewRedis(queue.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		UseTLS:   cfg.RedisTLS,
		Queue:    cfg.RedisQueue,
		Metrics:  metricRegistry,
	}, logger)
	defer func() {
		if err := broker.Close(); err != nil {
			logger.Warn("failed closing redis", "error", err)
		}
	}()
	if err := broker.Ping(ctx); err != nil {
		logger.Warn("redis ping failed", "error", err)
	}

	users, err := auth.ParseDirectory(cfg.AuthUsers)
	if err != nil {
		return fmt.Errorf("parse auth users: %w", err)
	}
	if users.Len() == 0 {
		logger.Warn("no auth users configured, api login will always fail")
	}
	tokens := auth.NewTokenStrategy(cfg.AuthSecret, cfg.AuthTokenTTL)

	resolver := catalog.NewResolver(repository)
	orderService := orders.NewService(repository, resolver, broker, logger)
	nairobiService := nairobi.NewService(repository, broker, logger)

	server := httpserver.New(cfg.HTTPAddr, logger, metricRegistry, httpserver.Dependencies{
		Store:    repository,
		Orders:   orderService,
		Nairobi:  nairobiService,
		Resolver: resolver,
		Users:    users,
		Tokens:   tokens,
	}, "")

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	logger.Info("api stopped")
	return nil
}
