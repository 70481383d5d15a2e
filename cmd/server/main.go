package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/couchcryptid/dish-discovery-service/internal/adapter/googleplaces"
	httpadapter "github.com/couchcryptid/dish-discovery-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/dish-discovery-service/internal/adapter/kafka"
	"github.com/couchcryptid/dish-discovery-service/internal/adapter/placecache"
	"github.com/couchcryptid/dish-discovery-service/internal/config"
	"github.com/couchcryptid/dish-discovery-service/internal/discovery"
	"github.com/couchcryptid/dish-discovery-service/internal/observability"
	"github.com/couchcryptid/dish-discovery-service/internal/uploads"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	client := googleplaces.NewClient(cfg.PlacesAPIKey, cfg.PlacesBaseURL, cfg.PlacesTimeout, metrics, logger)

	// Detail cache backend: Redis when configured, otherwise in-process LRU.
	var cache placecache.Cache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		cache = placecache.NewRedis(rdb, cfg.PlaceCacheTTL, logger)
		logger.Info("place cache backed by redis", "addr", cfg.RedisAddr, "ttl", cfg.PlaceCacheTTL)
	} else {
		cache = placecache.NewMemory(cfg.PlaceCacheSize)
		logger.Info("place cache in memory", "size", cfg.PlaceCacheSize)
	}

	searcher := googleplaces.NewCachedSearcher(client, cache, metrics)
	aggregator := discovery.New(searcher, logger, metrics, cfg.DetailConcurrency)

	var auditor httpadapter.AuditPublisher
	if cfg.AuditEnabled() {
		writer := kafkaadapter.NewAuditWriter(cfg.KafkaBrokers, cfg.KafkaAuditTopic, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("audit writer close error", "error", err)
			}
		}()
		auditor = writer
		logger.Info("audit sink enabled", "topic", cfg.KafkaAuditTopic)
	}

	srv := httpadapter.NewServer(httpadapter.Options{
		Addr:            cfg.HTTPAddr,
		Discoverer:      aggregator,
		Issuer:          uploads.NewIssuer(cfg.UploadBaseURL),
		Ready:           aggregator,
		Auditor:         auditor,
		Metrics:         metrics,
		Logger:          logger,
		SigningKey:      []byte(cfg.JWTSigningKey),
		MaintenanceMode: cfg.MaintenanceMode,
		MinAppVersion:   cfg.MinAppVersion,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
