package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marble-idols/storefront/internal/platform/config"
	"github.com/marble-idols/storefront/internal/platform/observability"
	platformsanity "github.com/marble-idols/storefront/internal/platform/sanity"
	"github.com/marble-idols/storefront/internal/repositories/cache"
	sanityrepo "github.com/marble-idols/storefront/internal/repositories/sanity"
)

// app holds the dependencies shared by every subcommand.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	sanity  *sanityrepo.CatalogRepository
	catalog *cache.CatalogCache
}

func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	envFile, err := cmd.Flags().GetString("env-file")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(ctx, config.WithEnvFile(envFile))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := observability.NewLogger(observability.FileSink{
		Path:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	if err != nil {
		return nil, fmt.Errorf("initialise logger: %w", err)
	}

	client, err := platformsanity.NewClient(platformsanity.Config{
		ProjectID:  cfg.Sanity.ProjectID,
		Dataset:    cfg.Sanity.Dataset,
		APIVersion: cfg.Sanity.APIVersion,
		Token:      cfg.Sanity.Token,
		UseCDN:     cfg.Sanity.UseCDN,
		Timeout:    cfg.Sanity.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("initialise sanity client: %w", err)
	}
	repo, err := sanityrepo.NewCatalogRepository(client)
	if err != nil {
		return nil, fmt.Errorf("initialise catalog repository: %w", err)
	}
	cached, err := cache.NewCatalogCache(repo, cfg.Cache.TTL)
	if err != nil {
		return nil, fmt.Errorf("initialise catalog cache: %w", err)
	}

	return &app{
		cfg:     cfg,
		logger:  logger.With(zap.String("env", cfg.Server.Environment)),
		sanity:  repo,
		catalog: cached,
	}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}
