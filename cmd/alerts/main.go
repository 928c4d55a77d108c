package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/forecast-alert-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/forecast-alert-service/internal/adapter/kafka"
	"github.com/couchcryptid/forecast-alert-service/internal/adapter/source"
	"github.com/couchcryptid/forecast-alert-service/internal/config"
	"github.com/couchcryptid/forecast-alert-service/internal/observability"
	"github.com/couchcryptid/forecast-alert-service/internal/pipeline"
	"golang.org/x/sync/errgroup"
)

// forecastSource is a source the API can read from that also reports readiness.
type forecastSource interface {
	httpadapter.ForecastSource
	httpadapter.ReadinessChecker
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	var src forecastSource
	if cfg.ForecastURL != "" {
		src = source.NewHTTPSource(cfg.ForecastURL, cfg.ForecastTimeout, metrics, logger)
		logger.Info("forecast source: upstream", "url", cfg.ForecastURL, "timeout", cfg.ForecastTimeout)
	} else {
		src = source.NewFileSource(cfg.ForecastFile, metrics, logger)
		logger.Info("forecast source: file", "path", cfg.ForecastFile)
	}
	api := httpadapter.NewForecastAPI(src, cfg.ForecastSourceTag, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	var ready httpadapter.ReadinessChecker = src
	var reader *kafkaadapter.Reader
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		transformer := pipeline.NewTransformer(cfg.ForecastSourceTag, metrics, logger)
		p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)
		ready = httpadapter.AllReady(p, src)

		g.Go(func() error {
			return p.Run(gctx)
		})
	} else {
		logger.Info("kafka pipeline disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, ready, api, logger)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("service error", "error", err)
	}

	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
