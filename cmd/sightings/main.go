package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	"github.com/couchcryptid/sightings-map-service/internal/adapter/coords"
	"github.com/couchcryptid/sightings-map-service/internal/adapter/filestore"
	"github.com/couchcryptid/sightings-map-service/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/sightings-map-service/internal/adapter/kafka"
	"github.com/couchcryptid/sightings-map-service/internal/adapter/source"
	"github.com/couchcryptid/sightings-map-service/internal/adapter/sqlite"
	"github.com/couchcryptid/sightings-map-service/internal/config"
	"github.com/couchcryptid/sightings-map-service/internal/domain"
	"github.com/couchcryptid/sightings-map-service/internal/observability"
	"github.com/couchcryptid/sightings-map-service/internal/session"
)

const sweepInterval = time.Minute

// store is a repository that can report readiness.
type store interface {
	domain.Repository
	CheckReadiness(ctx context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	repo, closeRepo, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.StoreDriver, "path", cfg.StorePath, "error", err)
		os.Exit(1)
	}
	logger.Info("store opened", "driver", cfg.StoreDriver, "path", cfg.StorePath)

	// Sessions read from the remote source when one is configured, otherwise
	// straight from the store.
	var src domain.SightingSource = source.NewRepository(repo)
	if cfg.SourceURL != "" {
		src = source.NewHTTP(cfg.SourceURL, cfg.SourceTimeout, cfg.SourceRetries, logger)
		logger.Info("remote sightings source enabled", "url", cfg.SourceURL, "retries", cfg.SourceRetries)
	}

	registry := session.NewRegistry(src, coordinateLookup(cfg, logger), clock, cfg.SessionTTL, logger, metrics)

	var (
		publisher httpadapter.Publisher
		kafkaPub  *kafkaadapter.Publisher
	)
	if cfg.KafkaEnabled {
		kafkaPub = kafkaadapter.NewPublisher(cfg, logger)
		publisher = kafkaPub
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.WriteRateLimit), cfg.WriteRateBurst)
	api := httpadapter.NewAPI(repo, registry, publisher, limiter, clock, metrics, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, api, repo, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Expire idle sessions.
	go registry.Run(ctx, sweepInterval)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPub != nil {
		if err := kafkaPub.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}
	if err := closeRepo(); err != nil {
		logger.Error("store close error", "error", err)
	}

	logger.Info("shutdown complete")
}

func coordinateLookup(cfg *config.Config, logger *slog.Logger) domain.CoordinateLookup {
	table := coords.Default()
	if !cfg.MarkerFallbackEnabled {
		return table
	}
	logger.Info("marker fallback enabled", "lat", cfg.MarkerFallbackLat, "lon", cfg.MarkerFallbackLon)
	return table.WithFallback(domain.Geo{Lat: cfg.MarkerFallbackLat, Lon: cfg.MarkerFallbackLon})
}

func openStore(cfg *config.Config, logger *slog.Logger) (store, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.StorePath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create store directory: %w", err)
	}

	switch cfg.StoreDriver {
	case config.StoreDriverSQLite:
		s, err := sqlite.Open(cfg.StorePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return filestore.New(cfg.StorePath, logger), func() error { return nil }, nil
	}
}
