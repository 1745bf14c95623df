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

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/joho/godotenv"

	"github.com/couchcryptid/weather-fusion-service/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/weather-fusion-service/internal/adapter/kafka"
	"github.com/couchcryptid/weather-fusion-service/internal/adapter/kvstore"
	"github.com/couchcryptid/weather-fusion-service/internal/adapter/textgen"
	"github.com/couchcryptid/weather-fusion-service/internal/config"
	"github.com/couchcryptid/weather-fusion-service/internal/domain"
	"github.com/couchcryptid/weather-fusion-service/internal/enhance"
	"github.com/couchcryptid/weather-fusion-service/internal/observability"
	"github.com/couchcryptid/weather-fusion-service/internal/pipeline"
	"github.com/couchcryptid/weather-fusion-service/internal/scheduler"
)

const publishTimeout = 5 * time.Second

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	reporter := observability.NewReporter(logger, metrics)

	// Text generation is feature-flagged via AI_ENABLED / AI_API_KEY.
	var generator enhance.Generator
	if cfg.AIEnabled {
		generator = textgen.NewClient(textgen.Config{
			APIKey:        cfg.AIAPIKey,
			BaseURL:       cfg.AIBaseURL,
			Model:         cfg.AIModel,
			Timeout:       cfg.AITimeout,
			RatePerMinute: cfg.AIRatePerMinute,
		}, logger, metrics)
		logger.Info("advisory enhancement enabled", "model", cfg.AIModel, "timeout", cfg.AITimeout)
	} else {
		logger.Info("advisory enhancement disabled")
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)

	store := kvstore.NewMemoryStore(cfg.CacheMaxEntries)
	cache := enhance.NewCache[enhance.Enhancement](store, cfg.AICacheTTL, nil)
	orchestrator := enhance.New(cache, generator, reporter, logger, metrics, enhance.Options{
		Debounce: cfg.EnhanceDebounce,
		Timeout:  cfg.AITimeout,
		OnApply:  publishEnhanced(writer, logger, metrics),
	})

	transformer := pipeline.NewTransformer(domain.NewFuser(cfg.FusionOptions()), logger, metrics)
	p := pipeline.New(reader, transformer, writer, orchestrator, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, orchestrator, logger)
	sweeps := scheduler.New(orchestrator, cfg.CacheSweepInterval, cfg.CacheMaxAge, reporter, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	if err := sweeps.Start(); err != nil {
		logger.Error("failed to schedule cache sweep", "error", err)
	}

	// Start fusion pipeline.
	pipelineDone := make(chan struct{})
	go func() {
		defer close(pipelineDone)
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	select {
	case <-pipelineDone:
	case <-shutdownCtx.Done():
		logger.Warn("pipeline did not stop before shutdown timeout")
	}

	sweeps.Stop()
	orchestrator.Close()

	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}

// publishEnhanced writes enhanced reports to the sink topic under the same
// location key as the rules-based report they replace.
func publishEnhanced(writer *kafkaadapter.Writer, logger *slog.Logger, metrics *observability.Metrics) func(domain.FusionReport) {
	return func(r domain.FusionReport) {
		out, err := domain.SerializeReport(r)
		if err != nil {
			logger.Error("serialize enhanced report failed", "error", err, "location", r.Location.Key)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if err := writer.Publish(ctx, out); err != nil {
			logger.Error("publish enhanced report failed", "error", err, "location", r.Location.Key)
			return
		}
		metrics.MessagesProduced.Inc()
	}
}
