package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kjstillabower/weather-ingest-service/internal/client"
	"github.com/kjstillabower/weather-ingest-service/internal/config"
	"github.com/kjstillabower/weather-ingest-service/internal/events"
	httphandler "github.com/kjstillabower/weather-ingest-service/internal/http"
	"github.com/kjstillabower/weather-ingest-service/internal/ingest"
	"github.com/kjstillabower/weather-ingest-service/internal/lifecycle"
	"github.com/kjstillabower/weather-ingest-service/internal/observability"
	"github.com/kjstillabower/weather-ingest-service/internal/store"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	weatherClient, err := client.NewWeatherAPIClient(cfg.WeatherAPIKey, cfg.WeatherAPIURL, cfg.WeatherAPITimeout)
	if err != nil {
		logger.Fatal("weather client", zap.Error(err))
	}

	var docStore store.Store
	var storePing func() error
	var storeClose func() error
	switch cfg.StoreBackend {
	case "redis":
		rs, err := store.NewRedisStore(context.Background(), cfg.RedisURL, cfg.ContainerKeyspace())
		if err != nil {
			logger.Fatal("redis store", zap.Error(err))
		}
		docStore = rs
		storePing = rs.Ping
		storeClose = rs.Close
		logger.Info("store backend: redis", zap.String("keyspace", cfg.ContainerKeyspace()))
	case "memcached":
		ms, err := store.NewMemcachedStore(cfg.MemcachedAddrs, cfg.ContainerKeyspace(), cfg.MemcachedTimeout, cfg.MemcachedMaxIdleConns)
		if err != nil {
			logger.Fatal("memcached store", zap.Error(err))
		}
		docStore = ms
		storePing = ms.Ping
		storeClose = ms.Close
		logger.Info("store backend: memcached", zap.String("addrs", cfg.MemcachedAddrs))
	default:
		docStore = store.NewMemoryStore()
		logger.Info("store backend: memory")
	}

	var publisher *events.Publisher
	var recordPublisher ingest.RecordPublisher
	if cfg.KafkaBrokers != "" {
		publisher, err = events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		if err != nil {
			logger.Fatal("event publisher", zap.Error(err))
		}
		recordPublisher = publisher
		logger.Info("event publishing enabled", zap.String("topic", cfg.KafkaTopic))
	}

	ingestor := ingest.NewIngestor(weatherClient, docStore, recordPublisher, cfg.Cities, logger)
	logger.Info("roster configured", zap.Strings("cities", cfg.Cities))

	handler := httphandler.NewHandler(ingestor, logger, storePing)

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}

	router := mux.NewRouter()
	router.Use(httphandler.CorrelationIDMiddleware(logger))
	router.Use(httphandler.MetricsMiddleware)
	router.HandleFunc("/health", handler.GetHealth).Methods("GET")
	router.Handle("/metrics", observability.MetricsHandler())
	runRouter := router.PathPrefix("/run").Subrouter()
	runRouter.Use(httphandler.RateLimitMiddleware(limiter))
	runRouter.HandleFunc("", handler.RunIngest).Methods("GET", "POST")

	srv := &http.Server{
		Addr:        ":" + cfg.ServerPort,
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		// No WriteTimeout: /run blocks for the full batch, which has no
		// upper bound when the upstream hangs.
	}

	go func() {
		logger.Info("server starting", zap.String("addr", ":"+cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	lifecycle.SetShuttingDown(true)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	inFlight := httphandler.InFlightCount()
	logger.Info("waiting for in-flight requests", zap.Int64("count", inFlight))
	waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.ShutdownInFlightTimeout)
	defer waitCancel()
	if err := httphandler.WaitForInFlight(waitCtx, cfg.ShutdownInFlightCheckInterval); err != nil {
		logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", httphandler.InFlightCount()))
	}

	if err := observability.FlushTelemetry(context.Background(), logger); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}

	if publisher != nil {
		publisher.Close()
	}
	if storeClose != nil {
		if err := storeClose(); err != nil {
			logger.Error("store close", zap.Error(err))
		}
	}
	logger.Info("shutdown complete")
}
