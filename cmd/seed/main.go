package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pharma-plus/internal/config"
	"pharma-plus/internal/database"
	"pharma-plus/internal/repository"
	"pharma-plus/internal/seed"
	"pharma-plus/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	source := flag.String("source", cfg.Seed.Source, "seed document path (local file, or key under S3_PREFIX)")
	flag.Parse()

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Str("source", *source).Msg("starting pharma-plus seed")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// S3 with local fallback
	fileLoader := seed.NewFileLoader(logger)
	var s3Loader seed.Loader
	if cfg.S3.Enabled {
		s3Loader, err = seed.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		}
	}
	loader := seed.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, cfg.S3.Enabled, logger)

	productRepo := repository.NewProductRepository(pool, logger)
	productService := service.NewProductService(productRepo, service.Normalizer{BaseURL: cfg.Catalog.PublicBaseURL}, logger)

	summary, err := seed.NewSeeder(productRepo, productService, logger).LoadAndRun(ctx, loader, *source)
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	fmt.Printf("Seed complete: created=%d updated=%d skipped=%d\n", summary.Created, summary.Updated, summary.Skipped)
	return nil
}
