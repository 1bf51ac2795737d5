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

	"github.com/rs/zerolog/log"

	"github.com/campushub/portal/backend/internal/adapters/cache"
	"github.com/campushub/portal/backend/internal/adapters/database"
	"github.com/campushub/portal/backend/internal/api/handlers"
	"github.com/campushub/portal/backend/internal/api/routes"
	"github.com/campushub/portal/backend/internal/application/services"
	"github.com/campushub/portal/backend/internal/domain/repositories"
	"github.com/campushub/portal/backend/internal/infrastructure/clients/postgres"
	"github.com/campushub/portal/backend/internal/infrastructure/clients/redis"
	"github.com/campushub/portal/backend/internal/infrastructure/observability"
	"github.com/campushub/portal/backend/internal/query/adapters"
	queryservices "github.com/campushub/portal/backend/internal/query/services"
	"github.com/campushub/portal/backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Log.Env, cfg.Log.Level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	var store repositories.RecordStore = database.NewRecordStore(pgClient)

	// The search keeps working without Redis, just uncached.
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, record cache disabled")
		} else {
			defer redisClient.Close()
			store = database.NewCachedRecordStore(store, cache.NewRedisAdapter(redisClient), cfg.Search.CacheTTL, metrics)
			log.Info().Dur("ttl", cfg.Search.CacheTTL).Msg("Record cache enabled")
		}
	}

	analytics := services.NewSearchAnalyticsService(database.NewSearchAnalyticsAdapter(pgClient))
	defer analytics.Flush()

	searchService := queryservices.NewSearchService(
		adapters.NewNotesAdapter(store, cfg.Search.ResultLimit),
		adapters.NewEventsAdapter(store, cfg.Search.ResultLimit),
		adapters.NewLostFoundAdapter(store, cfg.Search.ResultLimit),
		queryservices.WithAdapterTimeout(cfg.Search.AdapterTimeout),
		queryservices.WithTracker(analytics),
		queryservices.WithMetrics(metrics),
	)

	router := routes.NewRouter(handlers.NewSearchHandler(searchService, analytics), metrics)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	log.Info().Msg("Server stopped")
}
