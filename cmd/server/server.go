package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/shard-legends/squad-planner-service/internal/config"
	"github.com/shard-legends/squad-planner-service/internal/database"
	"github.com/shard-legends/squad-planner-service/internal/handlers"
	customMiddleware "github.com/shard-legends/squad-planner-service/internal/middleware"
	"github.com/shard-legends/squad-planner-service/internal/storage"
)

// openStore connects the configured key-value backend. The returned close
// function releases the underlying connections.
func openStore(ctx context.Context, cfg *config.Config) (storage.KeyValueStore, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverRedis:
		client, err := database.NewRedisClient(&cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return storage.Instrument(storage.NewRedisStore(client)), func() { _ = client.Close() }, nil

	case config.DriverPostgres:
		db, err := database.NewDB(&cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		store := storage.NewPostgresStore(db.SQLX())
		schemaCtx, cancel := context.WithTimeout(ctx, cfg.Timeouts.Storage)
		defer cancel()
		if err := store.EnsureSchema(schemaCtx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return storage.Instrument(store), db.Close, nil

	case config.DriverMemory:
		return storage.Instrument(storage.NewMemoryStore()), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

func baseMiddleware(r chi.Router, cfg *config.Config, log *zap.Logger) {
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logging(log))
	r.Use(customMiddleware.Metrics())
	r.Use(customMiddleware.Recovery(log))
	r.Use(middleware.Timeout(cfg.Timeouts.HTTPMiddleware))
}

func newPublicRouter(cfg *config.Config, h *handlers.Handlers, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	baseMiddleware(r, cfg, log)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Route("/api/v1", h.Planner.Routes)
	return r
}

func newInternalRouter(cfg *config.Config, h *handlers.Handlers, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	baseMiddleware(r, cfg, log)

	r.Get("/health", h.Health.Health)
	r.Get("/ready", h.Health.Ready)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func newHTTPServer(addr string, handler http.Handler, cfg *config.Config) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}
