package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/absign/storefront/internal/platform/cache"
	"github.com/absign/storefront/internal/platform/config"
	"github.com/absign/storefront/internal/platform/observability"
	"github.com/absign/storefront/internal/seo"
	"github.com/absign/storefront/internal/storefront/apiclient"
	"github.com/absign/storefront/internal/storefront/web"
)

const serviceName = "storefront-web"

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger(serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("web")

	cfg, err := config.LoadWeb()
	if err != nil {
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			logger.Fatal("invalid configuration", zap.Strings("fields", verr.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	responseCache, closeCache := newCache(ctx, logger, cfg.Cache)
	defer closeCache()

	client := apiclient.New(cfg.API.BaseURL,
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithCache(responseCache, cfg.Cache.TTL),
	)
	resolver := seo.NewResolver(seo.Site{
		URL:                cfg.Site.URL,
		DefaultTitle:       cfg.Site.DefaultTitle,
		DefaultDescription: cfg.Site.DefaultDescription,
		DefaultImage:       cfg.Site.DefaultImage,
	}, client)

	srv, err := web.New(web.Deps{
		Catalog:  client,
		Resolver: resolver,
		Logger:   logger,
	})
	if err != nil {
		logger.Fatal("failed to initialise storefront", zap.Error(err))
	}

	router := srv.Routes(
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(serviceName),
		observability.RecoveryMiddleware(logger.Named("http"), nil),
		observability.RequestLoggerMiddleware(),
	)
	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(
		zap.String("addr", server.Addr),
		zap.String("api", cfg.API.BaseURL),
	)
	go func() {
		serverLogger.Info("storefront listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newCache prefers Redis when an address is configured and falls back to the in-process
// cache when Redis is unreachable at startup.
func newCache(ctx context.Context, logger *zap.Logger, cfg config.CacheConfig) (cache.Cache, func()) {
	if cfg.RedisAddr == "" {
		return cache.NewMemory(), func() {}
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	redisCache, err := cache.NewRedis(pingCtx, cache.RedisOptions{
		Addr:      cfg.RedisAddr,
		DB:        cfg.RedisDB,
		KeyPrefix: cfg.KeyPrefix,
	})
	if err != nil {
		logger.Warn("redis cache unavailable; using in-process cache", zap.Error(err))
		return cache.NewMemory(), func() {}
	}
	return redisCache, func() {
		if err := redisCache.Close(); err != nil {
			logger.Warn("redis close error", zap.Error(err))
		}
	}
}
