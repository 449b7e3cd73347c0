package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"consent-expiry/internal/api"
	"consent-expiry/internal/config"
	"consent-expiry/internal/expiry"
	"consent-expiry/internal/logs"
	"consent-expiry/internal/metrics"
	"consent-expiry/internal/store"
	"consent-expiry/internal/sweep"
)

func main() {
	configDir := flag.String("config", "", "extra directory to search for config.yaml")
	flag.Parse()

	if err := run(*configDir); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configDir string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Config
	var extra []string
	if configDir != "" {
		extra = append(extra, configDir)
	}
	cfg, err := config.Load(extra...)
	if err != nil {
		return err
	}

	// Logger
	logger, logBuffer, err := logs.New(logs.Config{
		Level:       cfg.Logs.Level,
		BufferSize:  cfg.Logs.BufferSize,
		Development: cfg.Logs.Development,
	})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// Metrics
	metricsRegistry := metrics.NewRegistry()

	// Store
	backend, err := openBackend(ctx, cfg.Store, metricsRegistry)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Warn("closing store backend", zap.Error(err))
		}
	}()

	// Expiry checker + sweeper
	checker := expiry.NewChecker(
		expiry.WithLogger(logger.Named("expiry")),
		expiry.WithMetrics(metricsRegistry),
	)
	sweeper := sweep.NewSweeper(checker, backend,
		sweep.WithSchedule(cfg.Sweep.Schedule),
		sweep.WithNamespaces(cfg.Sweep.Namespaces...),
		sweep.WithLogger(logger.Named("sweep")),
		sweep.WithMetrics(metricsRegistry),
	)

	if cfg.Sweep.OnStart {
		if _, err := sweeper.RunOnce(ctx); err != nil {
			logger.Warn("startup sweep finished with errors", zap.Error(err))
		}
	}
	if cfg.Sweep.Enabled {
		if err := sweeper.Start(); err != nil {
			return err
		}
		defer func() { <-sweeper.Stop().Done() }()
	}

	// API
	handler := api.NewHandler(
		backend,
		checker,
		sweeper,
		metricsRegistry,
		logBuffer,
		logger,
		cfg.Consent.RequiredVendors,
	)

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: api.RegisterRoutes(handler),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", zap.String("addr", cfg.Server.Addr), zap.String("store", cfg.Store.Backend))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openBackend(ctx context.Context, cfg config.StoreConfig, reg *metrics.Registry) (store.Backend, error) {
	switch cfg.Backend {
	case config.BackendRedis:
		client, err := store.OpenRedis(ctx, store.RedisConfig{
			URL:          cfg.Redis.URL,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			return nil, err
		}
		return store.NewRedisBackend(client, cfg.Redis.KeyPrefix, reg), nil

	case config.BackendSQLite:
		db, err := store.OpenSQLite(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		return store.NewDatabaseBackend(db, reg), nil

	default:
		return store.NewMemoryBackend(reg), nil
	}
}
