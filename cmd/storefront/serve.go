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

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/marble-idols/storefront/internal/ai"
	"github.com/marble-idols/storefront/internal/handlers"
	"github.com/marble-idols/storefront/internal/platform/config"
	"github.com/marble-idols/storefront/internal/platform/observability"
	"github.com/marble-idols/storefront/internal/repositories"
	"github.com/marble-idols/storefront/internal/services"
)

type serveOptions struct {
	port string
}

func newServeCommand() *cobra.Command {
	var opts serveOptions
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the storefront HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}
	bindServeFlags(cmd.Flags(), &opts)
	return cmd
}

func bindServeFlags(fs *pflag.FlagSet, opts *serveOptions) {
	fs.StringVar(&opts.port, "port", "", "listen port (overrides STOREFRONT_PORT)")
}

func runServe(cmd *cobra.Command, opts serveOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	startedAt := time.Now().UTC()

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.close()

	cfg := a.cfg
	if opts.port != "" {
		cfg.Server.Port = opts.port
	}
	logger := a.logger.Named("api")

	metrics, err := observability.NewMetrics()
	if err != nil {
		logger.Fatal("failed to initialise metrics", zap.Error(err))
	}

	catalogService, err := services.NewCatalogService(services.CatalogServiceDeps{
		Catalog:       a.catalog,
		Metrics:       metrics,
		FeaturedLimit: cfg.Cache.FeaturedLimit,
	})
	if err != nil {
		logger.Fatal("failed to initialise catalog service", zap.Error(err))
	}

	checkoutService, err := services.NewCheckoutService(services.CheckoutServiceDeps{
		Catalog:        a.catalog,
		Metrics:        metrics,
		WhatsAppNumber: cfg.Checkout.WhatsAppNumber,
		PublicBaseURL:  cfg.Server.PublicBaseURL,
	})
	if err != nil {
		logger.Fatal("failed to initialise checkout service", zap.Error(err))
	}

	completer, err := newCompleter(ctx, cfg.AI)
	if err != nil {
		logger.Fatal("failed to initialise description provider", zap.Error(err))
	}
	if completer == nil {
		logger.Warn("description provider not configured; generation disabled", zap.String("provider", cfg.AI.Provider))
	}
	descriptionService, err := services.NewDescriptionService(services.DescriptionServiceDeps{
		Catalog:     a.catalog,
		Completer:   completer,
		Metrics:     metrics,
		Temperature: cfg.AI.Temperature,
	})
	if err != nil {
		logger.Fatal("failed to initialise description service", zap.Error(err))
	}

	contentService, err := services.NewContentService(services.ContentServiceDeps{
		Dir:      cfg.Content.Dir,
		CacheTTL: cfg.Content.CacheTTL,
	})
	if err != nil {
		logger.Fatal("failed to initialise content service", zap.Error(err))
	}

	healthRepo, err := repositories.NewDependencyHealthRepository([]repositories.DependencyCheck{
		{Name: "sanity", Check: a.sanity.Ping},
	})
	if err != nil {
		logger.Fatal("failed to initialise health repository", zap.Error(err))
	}
	buildInfo := services.BuildInfo{
		Version:     fmt.Sprintf("%s.%s", version, commit),
		Environment: cfg.Server.Environment,
		StartedAt:   startedAt,
	}
	systemService, err := services.NewSystemService(services.SystemServiceDeps{
		HealthRepository: healthRepo,
		Build:            buildInfo,
	})
	if err != nil {
		logger.Fatal("failed to initialise system service", zap.Error(err))
	}

	publicHandlers := handlers.NewPublicHandlers(
		handlers.WithPublicCatalogService(catalogService),
		handlers.WithPublicContentService(contentService),
		handlers.WithPublicBaseURL(cfg.Server.PublicBaseURL),
	)
	checkoutHandlers := handlers.NewCheckoutHandlers(checkoutService)
	descriptionHandlers := handlers.NewDescriptionHandlers(descriptionService,
		handlers.WithDescriptionRateLimit(cfg.RateLimits.DescriptionPerMinute, time.Minute, nil),
	)
	healthHandlers := handlers.NewHealthHandlers(
		handlers.WithHealthBuildInfo(buildInfo),
		handlers.WithHealthSystemService(systemService),
	)

	router := handlers.NewRouter(
		handlers.WithMiddlewares(
			observability.TraceMiddleware(),
			observability.InjectLoggerMiddleware(logger),
			observability.RequestLoggerMiddleware(),
			observability.RecoveryMiddleware(logger),
		),
		handlers.WithCORSOrigins(cfg.Server.CORSOrigins...),
		handlers.WithTrustedProxy(cfg.Server.TrustProxy),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithPublicRoutes(publicHandlers.Routes),
		handlers.WithCheckoutRoutes(checkoutHandlers.Routes),
		handlers.WithRootRoutes(checkoutHandlers.RedirectRoutes, descriptionHandlers.Routes),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	purge := make(chan os.Signal, 1)
	signal.Notify(purge, syscall.SIGHUP)
	defer signal.Stop(purge)
	go purgeOnSignal(purge, a.catalog, logger)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("starting http server", zap.String("version", buildInfo.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	return nil
}

type purger interface {
	Purge()
}

// purgeOnSignal empties the catalog cache on every signal until signals is closed. Operators
// send SIGHUP after publishing in the studio to skip waiting out the TTL.
func purgeOnSignal(signals <-chan os.Signal, cache purger, logger *zap.Logger) {
	for sig := range signals {
		cache.Purge()
		logger.Info("catalog cache purged", zap.String("signal", sig.String()))
	}
}

// newCompleter returns the configured description provider, or nil when it has no credentials.
func newCompleter(ctx context.Context, cfg config.AIConfig) (ai.Completer, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	switch cfg.Provider {
	case config.AIProviderGemini:
		client, err := ai.NewGeminiClient(ctx, ai.GeminiConfig{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.GeminiModel,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		client, err := ai.NewChatClient(ai.ChatConfig{
			Name:    config.AIProviderGroq,
			APIKey:  cfg.GroqAPIKey,
			BaseURL: cfg.GroqBaseURL,
			Model:   cfg.GroqModel,
			Timeout: cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}
