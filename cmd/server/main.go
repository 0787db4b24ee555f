package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/shard-legends/squad-planner-service/internal/catalog"
	"github.com/shard-legends/squad-planner-service/internal/config"
	"github.com/shard-legends/squad-planner-service/internal/handlers"
	"github.com/shard-legends/squad-planner-service/internal/service"
	"github.com/shard-legends/squad-planner-service/internal/storage"
	"github.com/shard-legends/squad-planner-service/pkg/logger"
	"github.com/shard-legends/squad-planner-service/pkg/metrics"
)

const version = "1.0.0"

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	metrics.ServiceInfo.WithLabelValues(version).Set(1)

	ctx := context.Background()

	kv, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer closeStore()

	repository := storage.NewSnapshotRepository(kv, storage.RepositoryConfig{
		SnapshotKey:   cfg.Storage.SnapshotKey,
		PreferenceKey: cfg.Storage.PreferenceKey,
		Timeout:       cfg.Timeouts.Storage,
	}, logger.Named("storage"))

	roster := catalog.LoadOrEmpty(cfg.Catalog.Path, logger.Named("catalog"))
	metrics.SetCatalogSize(roster.Len())

	planner := service.NewPlanner(ctx, service.Dependencies{
		Repository: repository,
		Catalog:    roster,
		Layout:     service.NewLayout(cfg.Layout.FrontSlots, cfg.Layout.FrontSelfDivisor, cfg.Layout.BackSelfDivisor),
		Logger:     logger.Named("planner"),
	})

	allHandlers := handlers.NewHandlers(&handlers.HandlerDependencies{
		Planner:     planner,
		Storage:     repository,
		CatalogSize: planner.CatalogSize,
		Version:     version,
		Logger:      logger.Named("http"),
	})

	publicServer := newHTTPServer(cfg.Server.Address(), newPublicRouter(cfg, allHandlers, logger.Get()), cfg)
	internalServer := newHTTPServer(cfg.Server.InternalAddress(), newInternalRouter(cfg, allHandlers, logger.Get()), cfg)

	go func() {
		logger.Info("Starting Squad Planner public server",
			zap.String("address", publicServer.Addr),
			zap.String("storage", kv.Name()),
			zap.Int("heroes", roster.Len()),
		)

		if err := publicServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start public server", zap.Error(err))
		}
	}()

	go func() {
		logger.Info("Starting Squad Planner internal server", zap.String("address", internalServer.Addr))

		if err := internalServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start internal server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.GracefulShutdown)
	defer cancel()

	shutdownErr := make(chan error, 2)

	go func() {
		if err := publicServer.Shutdown(shutdownCtx); err != nil {
			shutdownErr <- fmt.Errorf("public server shutdown error: %w", err)
		} else {
			shutdownErr <- nil
		}
	}()

	go func() {
		if err := internalServer.Shutdown(shutdownCtx); err != nil {
			shutdownErr <- fmt.Errorf("internal server shutdown error: %w", err)
		} else {
			shutdownErr <- nil
		}
	}()

	for i := 0; i < 2; i++ {
		if err := <-shutdownErr; err != nil {
			logger.Error("Server forced to shutdown", zap.Error(err))
		}
	}

	logger.Info("Servers exited")
}
