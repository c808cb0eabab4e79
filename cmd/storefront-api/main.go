package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Allengabo/Yankicks-web/internal/cache"
	"github.com/Allengabo/Yankicks-web/internal/config"
	h "github.com/Allengabo/Yankicks-web/internal/http"
	"github.com/Allengabo/Yankicks-web/internal/publisher"
	"github.com/Allengabo/Yankicks-web/internal/repository"
	"github.com/Allengabo/Yankicks-web/internal/service"
	"github.com/Allengabo/Yankicks-web/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(os.Getenv("STOREFRONT_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(logger.Config{Mode: cfg.LogMode, Filename: cfg.LogFile})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync()

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	zl.Info("storefront-api starting", zap.String("port", cfg.HTTPPort))
	var wg sync.WaitGroup

	// Database setup
	creds := cfg.Credentials()
	repo, err := repository.NewRepository(creds)
	if err != nil {
		zl.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer repo.Close()

	if err := repo.RunMigrations(creds); err != nil {
		zl.Fatal("Failed to run migrations", zap.Error(err))
	}
	zl.Info("Database migrations completed")

	// Catalog cache is optional
	var catalogCache cache.CatalogCache = cache.Noop{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			zl.Warn("Redis unavailable, catalog cache disabled", zap.Error(err))
		} else {
			catalogCache = cache.NewRedisCache(rdb, cfg.CatalogCacheTTL)
			// migrations may have changed the seeded catalog
			if err := catalogCache.Invalidate(pingCtx); err != nil {
				zl.Warn("Failed to invalidate catalog cache", zap.Error(err))
			}
		}
		cancel()
	}

	// Outbox publisher is optional
	pollerCtx, pollerCancel := context.WithCancel(context.Background())
	var poller *publisher.OutboxPoller
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		poller = publisher.NewOutboxPoller(repo, cfg.OutboxInterval, cfg.KafkaTopic, brokers...)
		wg.Add(1)
		go func() {
			defer wg.Done()
			poller.Run(pollerCtx)
		}()
		zl.Info("Outbox publisher started", zap.Strings("brokers", brokers), zap.String("topic", cfg.KafkaTopic))
	}

	router := h.NewRouter(h.Handlers{
		Catalog: h.NewCatalogHandler(service.NewCatalogService(repo, catalogCache), cfg.RequestTimeout),
		Auth:    h.NewAuthHandler(service.NewAuthService(repo), cfg.RequestTimeout),
		Orders:  h.NewOrdersHandler(service.NewOrderService(repo), cfg.RequestTimeout),
	}, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zl.Info("Storefront API listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}

	pollerCancel()
	doneChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(doneChan)
	}()

	select {
	case <-doneChan:
	case <-ctx.Done():
		zl.Warn("outbox publisher didn't stop in time")
	}
	if poller != nil {
		if err := poller.Close(); err != nil {
			zl.Warn("failed to close kafka writer", zap.Error(err))
		}
	}

	zl.Info("server exited")
}
