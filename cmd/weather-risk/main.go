package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/couchcryptid/event-weather-risk-service/internal/adapter/aemet"
	httpadapter "github.com/couchcryptid/event-weather-risk-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/event-weather-risk-service/internal/adapter/kafka"
	"github.com/couchcryptid/event-weather-risk-service/internal/adapter/postgres"
	redisadapter "github.com/couchcryptid/event-weather-risk-service/internal/adapter/redis"
	"github.com/couchcryptid/event-weather-risk-service/internal/config"
	"github.com/couchcryptid/event-weather-risk-service/internal/observability"
	"github.com/couchcryptid/event-weather-risk-service/internal/report"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startupCtx, cancelStartup := context.WithTimeout(ctx, 30*time.Second)
	pool, err := postgres.Open(startupCtx, cfg.DatabaseURL)
	if err == nil {
		err = postgres.RunMigrations(startupCtx, pool)
	}
	cancelStartup()
	if err != nil {
		logger.Error("database setup failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	store := postgres.NewStore(pool, logger)

	client := aemet.NewClient(aemet.Options{
		APIKey:    cfg.AemetAPIKey,
		BaseURL:   cfg.AemetBaseURL,
		Timeout:   cfg.AemetTimeout,
		RateLimit: cfg.AemetRateLimit,
		RateBurst: cfg.AemetRateBurst,
		Backoff:   aemet.Backoff{MaxRetries: cfg.AemetMaxRetries},
	}, metrics, logger)

	// Forecast caching (Redis when REDIS_ADDR is set, otherwise in-memory).
	var forecasts report.ForecastProvider = client
	var closers []func() error
	checks := []report.ReadinessChecker{store}
	switch {
	case cfg.ForecastCacheTTL == 0:
		logger.Info("forecast cache disabled")
	case cfg.RedisAddr != "":
		rdb := redisadapter.NewClient(cfg.RedisAddr)
		closers = append(closers, rdb.Close)
		cache := redisadapter.NewCache(rdb, client, cfg.ForecastCacheTTL, metrics, logger)
		forecasts = cache
		checks = append(checks, cache)
		logger.Info("redis forecast cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.ForecastCacheTTL)
	default:
		forecasts = aemet.NewCachedProvider(client, cfg.ForecastCacheSize, cfg.ForecastCacheTTL, clockwork.NewRealClock(), metrics)
		logger.Info("in-memory forecast cache enabled", "size", cfg.ForecastCacheSize, "ttl", cfg.ForecastCacheTTL)
	}

	var publisher report.Publisher
	if cfg.PublishEnabled() {
		p := kafkaadapter.NewPublisher(cfg, clockwork.NewRealClock(), logger)
		closers = append(closers, p.Close)
		publisher = p
		logger.Info("report publishing enabled", "topic", cfg.KafkaReportTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("report publishing disabled")
	}

	assembler := report.NewAssembler(store, store, forecasts)
	svc := report.NewService(assembler, publisher, logger, metrics, checks...)

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, store, svc, logger)

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
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			logger.Error("close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
