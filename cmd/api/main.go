package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/absign/storefront/internal/handlers"
	"github.com/absign/storefront/internal/platform/config"
	pfirestore "github.com/absign/storefront/internal/platform/firestore"
	"github.com/absign/storefront/internal/platform/httpx"
	"github.com/absign/storefront/internal/platform/observability"
	"github.com/absign/storefront/internal/repositories"
	firestoreRepo "github.com/absign/storefront/internal/repositories/firestore"
	"github.com/absign/storefront/internal/repositories/memory"
	"github.com/absign/storefront/internal/repositories/seed"
	"github.com/absign/storefront/internal/services"
)

const serviceName = "storefront-api"

func main() {
	ctx := context.Background()
	startedAt := time.Now().UTC()

	baseLogger, err := observability.NewLogger(serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load()
	if err != nil {
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			logger.Fatal("invalid configuration", zap.Strings("fields", verr.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	registry, err := newRegistry(ctx, logger, cfg)
	if err != nil {
		logger.Fatal("failed to initialise repositories", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := registry.Close(closeCtx); err != nil {
			logger.Warn("repository close error", zap.Error(err))
		}
	}()

	catalogService, err := services.NewCatalogService(services.CatalogServiceDeps{Repository: registry.Catalog()})
	if err != nil {
		logger.Fatal("failed to initialise catalog service", zap.Error(err))
	}
	companyService, err := services.NewCompanyService(services.CompanyServiceDeps{Repository: registry.Company()})
	if err != nil {
		logger.Fatal("failed to initialise company service", zap.Error(err))
	}
	seoService, err := services.NewSeoEntryService(services.SeoEntryServiceDeps{
		Repository: registry.SeoEntries(),
		Clock:      time.Now,
	})
	if err != nil {
		logger.Fatal("failed to initialise seo entry service", zap.Error(err))
	}
	contactService, err := services.NewContactService(services.ContactServiceDeps{
		Repository: registry.Contacts(),
		Clock:      time.Now,
	})
	if err != nil {
		logger.Fatal("failed to initialise contact service", zap.Error(err))
	}

	publicHandlers := handlers.NewPublicHandlers(
		handlers.WithPublicCatalogService(catalogService),
		handlers.WithPublicCompanyService(companyService),
		handlers.WithPublicSeoEntryService(seoService),
		handlers.WithPublicContactService(contactService),
		handlers.WithPublicAssetResolver(handlers.NewPublicStorageResolver(cfg.Storage.PublicBaseURL)),
	)
	adminHandlers := handlers.NewAdminSeoHandlers(seoService)
	healthHandlers := handlers.NewHealthHandlers(
		handlers.WithHealthRepository(registry.Health()),
		handlers.WithHealthBuildInfo(handlers.BuildInfo{
			Version:   buildVersion(),
			StartedAt: startedAt,
		}),
	)

	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(serviceName),
		observability.RecoveryMiddleware(logger.Named("http"), func(w http.ResponseWriter, r *http.Request) {
			httpx.WriteError(r.Context(), w, httpx.NewError("internal_error", "internal server error", http.StatusInternalServerError))
		}),
		observability.RequestLoggerMiddleware(),
	}

	router := handlers.NewRouter(
		handlers.WithMiddlewares(middlewares...),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithPublicRoutes(publicHandlers.Routes),
		handlers.WithAdminRoutes(adminHandlers.Routes),
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

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr), zap.String("store", cfg.Catalog.Store))
	go func() {
		serverLogger.Info("catalog api listening")
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

// newRegistry selects the persistence backend. The memory store is seeded from the fixture
// file when one is configured; Firestore is expected to be seeded with catalogctl.
func newRegistry(ctx context.Context, logger *zap.Logger, cfg config.Config) (repositories.Registry, error) {
	switch cfg.Catalog.Store {
	case config.StoreFirestore:
		provider := pfirestore.NewProvider(cfg.Firestore)
		if _, err := provider.Client(ctx); err != nil {
			return nil, err
		}
		return firestoreRepo.NewRegistry(provider)
	default:
		store := memory.NewStore()
		if path := strings.TrimSpace(cfg.Catalog.SeedFile); path != "" {
			fx, err := seed.LoadFile(path)
			if err != nil {
				return nil, err
			}
			sum, err := seed.Apply(ctx, store, fx)
			if err != nil {
				return nil, err
			}
			logger.Info("memory store seeded",
				zap.String("file", path),
				zap.Int("products", sum.Products),
				zap.Int("companies", sum.Companies),
				zap.Int("seoEntries", sum.SeoEntries),
			)
		}
		return store, nil
	}
}

func buildVersion() string {
	if v := strings.TrimSpace(os.Getenv("API_BUILD_VERSION")); v != "" {
		return v
	}
	return "dev"
}
