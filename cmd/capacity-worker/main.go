package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	capacityrepo "github.com/Developer-Square/Park254-Backend/internal/capacity/repository"
	capacityservice "github.com/Developer-Square/Park254-Backend/internal/capacity/service"
	"github.com/Developer-Square/Park254-Backend/internal/capacity/worker"
	"github.com/Developer-Square/Park254-Backend/internal/events"
	"github.com/Developer-Square/Park254-Backend/internal/health"
	lotrepo "github.com/Developer-Square/Park254-Backend/internal/parkinglots/repository"
	"github.com/Developer-Square/Park254-Backend/pkg/config"
	"github.com/Developer-Square/Park254-Backend/pkg/metrics"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const ServiceName = "park254-capacity-worker"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	err := run(cfg)
	cfg.GracefulShutdown()
	if err != nil {
		cfg.Log.Fatal("Capacity worker failed", "error", err)
	}
}

// run owns everything except the Mongo client, which main disconnects on
// every exit path.
func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	publisher, err := events.NewPublisher(cfg, ServiceName, metrics.NewEventMetrics(registry))
	if err != nil {
		return fmt.Errorf("failed to initialize event publisher: %w", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	}()

	jobs := capacityrepo.NewMongoJobRepository(cfg)
	w, err := worker.New(worker.Params{
		Logger:    cfg.Log,
		Jobs:      jobs,
		Runner:    capacityservice.NewAdjuster(jobs, lotrepo.NewMongoParkingLotRepository(cfg), cfg.Log),
		Publisher: publisher,
		Metrics:   metrics.NewCapacityJobMetrics(registry),
		Config: worker.Config{
			PollInterval: cfg.CapacityPollInterval,
			BatchSize:    cfg.CapacityBatchSize,
			Concurrency:  cfg.CapacityWorkerConcurrency,
			Lease:        cfg.CapacityLeaseDuration,
			MaxAttempts:  cfg.CapacityMaxAttempts,
			RetryBackoff: cfg.CapacityRetryBackoff,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create capacity worker: %w", err)
	}

	server := opsServer(cfg, registry)
	go func() {
		cfg.Log.Info("Starting ops server", "address", server.Addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			cfg.Log.Error("Ops server failed", "error", err)
			stop()
		}
	}()

	runErr := w.Run(ctx)
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		cfg.Log.Warn("Ops server shutdown failed", "error", err)
	}
	cfg.Log.Info("Capacity worker stopped")
	return runErr
}

// opsServer serves /metrics, /health and /ready on the metrics port.
func opsServer(cfg *config.Config, registry *prometheus.Registry) *http.Server {
	router := httprouter.New()
	health.NewHandler(cfg.Client, cfg.Log).RegisterRoutes(router)
	router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	return &http.Server{
		Addr:        ":" + cfg.MetricsPort,
		Handler:     router,
		ReadTimeout: cfg.ReadTimeout,
		IdleTimeout: cfg.IdleTimeout,
	}
}
