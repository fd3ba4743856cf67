package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/vizdata-etl-service/internal/adapter/fetch"
	httpadapter "github.com/couchcryptid/vizdata-etl-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/vizdata-etl-service/internal/adapter/kafka"
	"github.com/couchcryptid/vizdata-etl-service/internal/config"
	"github.com/couchcryptid/vizdata-etl-service/internal/observability"
	"github.com/couchcryptid/vizdata-etl-service/internal/pipeline"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
)

func main() {
	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Object storage is only needed for s3:// sources.
	var s3 *minio.Client
	if cfg.S3Endpoint != "" {
		s3, err = fetch.NewS3Client(fetch.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
		})
		if err != nil {
			logger.Error("failed to create s3 client", "error", err)
			os.Exit(1)
		}
		logger.Info("s3 sources enabled", "endpoint", cfg.S3Endpoint)
	}
	opener := fetch.NewClient(cfg.FetchTimeout, s3, metrics, logger)

	var (
		loader pipeline.SnapshotLoader
		writer *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, metrics, logger)
		loader = writer
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	var sources pipeline.Sources
	if cfg.RecipesEnabled {
		sources.Recipes = cfg.RecipesURI
	}
	if cfg.CountiesEnabled {
		sources.Worship = cfg.WorshipURI
		sources.Population = cfg.PopulationURI
		sources.Topology = cfg.TopologyURI
	}

	p, err := pipeline.New(opener, loader, logger, metrics, pipeline.Options{
		Sources:              sources,
		MinSharedIngredients: cfg.LinkMinShared,
		Schedule:             cfg.RefreshSchedule,
	})
	if err != nil {
		logger.Error("failed to create pipeline", "error", err)
		os.Exit(1)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the scheduled pipeline.
	done := make(chan struct{})
	go func() {
		defer close(done)
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
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("pipeline did not stop before shutdown timeout")
	}

	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
