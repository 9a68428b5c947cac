package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pharma-plus/internal/config"
	"pharma-plus/internal/database"
	"pharma-plus/internal/handler"
	"pharma-plus/internal/metrics"
	"pharma-plus/internal/middleware"
	"pharma-plus/internal/repository"
	"pharma-plus/internal/router"
	"pharma-plus/internal/service"
	"pharma-plus/internal/token"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting pharma-plus API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := time.Now()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)

	tokens := token.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)
	registry := metrics.New()

	// Initialize services
	productService := service.NewProductService(productRepo, service.Normalizer{BaseURL: cfg.Catalog.PublicBaseURL}, logger)
	authService := service.NewAuthService(userRepo, tokens, logger, service.WithRecorder(registry))

	// Initialize router
	mux := router.New(router.Handlers{
		Product: handler.NewProductHandler(productService, logger),
		Auth:    handler.NewAuthHandler(authService, logger),
		Health:  handler.NewHealthHandler(pool, started),
	}, router.Options{
		CORS: middleware.CORSPolicy{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			PreviewSuffix:  cfg.CORS.PreviewSuffix,
		},
		ProtectWrites:  cfg.Auth.ProtectWrites,
		Verifier:       tokens,
		Metrics:        registry,
		MetricsHandler: registry.Handler(),
	}, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Bool("protect_writes", cfg.Auth.ProtectWrites).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
