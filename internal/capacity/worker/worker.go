package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Developer-Square/Park254-Backend/internal/capacity/repository"
	"github.com/Developer-Square/Park254-Backend/internal/capacity/service"
	"github.com/Developer-Square/Park254-Backend/internal/events"
	"github.com/Developer-Square/Park254-Backend/pkg/logger"
	"github.com/Developer-Square/Park254-Backend/pkg/metrics"
	"github.com/Developer-Square/Park254-Backend/pkg/model"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// JobClaimer hands out due jobs and reschedules failed ones.
type JobClaimer interface {
	ClaimDue(ctx context.Context, now time.Time, lease time.Duration) (*model.CapacityJob, error)
	Retry(ctx context.Context, jobID, token, reason string, nextFire time.Time) error
}

// JobRunner executes and drops claimed jobs.
type JobRunner interface {
	Fire(ctx context.Context, job *model.CapacityJob) (*model.ParkingLot, error)
	Drop(ctx context.Context, job *model.CapacityJob, reason string) error
}

type Config struct {
	PollInterval time.Duration
	BatchSize    int
	Concurrency  int
	Lease        time.Duration
	MaxAttempts  int
	RetryBackoff time.Duration
}

type Params struct {
	Logger    *logger.Logger
	Jobs      JobClaimer
	Runner    JobRunner
	Publisher events.Publisher
	Metrics   *metrics.CapacityJobMetrics
	Config    Config
}

// Worker polls for due capacity jobs and fires them.
type Worker struct {
	log       *logger.Logger
	jobs      JobClaimer
	runner    JobRunner
	publisher events.Publisher
	metrics   *metrics.CapacityJobMetrics
	cfg       Config
	now       func() time.Time
}

func New(params Params) (*Worker, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Jobs == nil {
		return nil, fmt.Errorf("job claimer required")
	}
	if params.Runner == nil {
		return nil, fmt.Errorf("job runner required")
	}
	cfg := params.Config
	if cfg.PollInterval <= 0 || cfg.BatchSize <= 0 || cfg.Concurrency <= 0 || cfg.Lease <= 0 || cfg.MaxAttempts <= 0 {
		return nil, fmt.Errorf("invalid worker config: %+v", cfg)
	}
	publisher := params.Publisher
	if publisher == nil {
		publisher = events.NewNoopPublisher()
	}
	return &Worker{
		log:       params.Logger,
		jobs:      params.Jobs,
		runner:    params.Runner,
		publisher: publisher,
		metrics:   params.Metrics,
		cfg:       cfg,
		now:       time.Now,
	}, nil
}

// Run polls until ctx is cancelled. Cycle errors are logged, never fatal.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("Capacity worker started",
		"poll_interval", w.cfg.PollInterval,
		"batch_size", w.cfg.BatchSize,
		"concurrency", w.cfg.Concurrency,
	)

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		w.cycle(ctx)

		select {
		case <-ctx.Done():
			w.log.Info("Capacity worker stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func (w *Worker) cycle(ctx context.Context) {
	processed, err := w.RunOnce(ctx)
	if err != nil {
		w.log.Error("Capacity job cycle finished with errors", "processed", processed, "error", err)
		return
	}
	if processed > 0 {
		w.log.Debug("Capacity job cycle finished", "processed", processed)
	}
}

// RunOnce claims up to BatchSize due jobs and fires them with bounded
// concurrency. It returns how many jobs were claimed and the combined errors
// of jobs that will be retried or could not be settled.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	var (
		mu      sync.Mutex
		errs    error
		claimed int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.cfg.Concurrency)

	for claimed < w.cfg.BatchSize {
		if gctx.Err() != nil {
			break
		}
		job, err := w.jobs.ClaimDue(gctx, w.now(), w.cfg.Lease)
		if err != nil {
			if !errors.Is(err, repository.ErrNoDueJobs) {
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("claim: %w", err))
				mu.Unlock()
			}
			break
		}
		claimed++
		w.metrics.IncClaimed()

		g.Go(func() error {
			if err := w.process(gctx, job); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}

	_ = g.Wait()
	mu.Lock()
	defer mu.Unlock()
	return claimed, errs
}

func (w *Worker) process(ctx context.Context, job *model.CapacityJob) error {
	start := w.now()
	w.metrics.ObserveLag(start.Sub(job.FiresAt))

	log := w.log.With(
		"job_id", job.ID,
		"booking_id", job.BookingID,
		"parking_lot_id", job.ParkingLotID,
		"direction", job.Direction,
		"attempt", job.Attempts,
	)

	lot, err := w.runner.Fire(ctx, job)
	w.metrics.ObserveDuration(job.Direction, w.now().Sub(start))

	switch {
	case err == nil:
		w.metrics.IncOutcome(job.Direction, metrics.OutcomeApplied)
		log.Info("Capacity job applied", "delta", job.Delta(), "available_spaces", lot.AvailableSpaces)
		w.publish(ctx, events.CapacityEvent(events.TypeCapacityAdjusted, job, ""))
		return nil

	case errors.Is(err, repository.ErrLeaseLost):
		w.metrics.IncOutcome(job.Direction, metrics.OutcomeStale)
		log.Info("Capacity job lease lost, skipping")
		return nil

	case errors.Is(err, service.ErrLotNotFound):
		return w.drop(ctx, log, job, metrics.OutcomeDropped, "parking lot not found")

	case job.Attempts >= w.cfg.MaxAttempts:
		return w.drop(ctx, log, job, metrics.OutcomeFailed, err.Error())

	default:
		next := w.now().Add(time.Duration(job.Attempts) * w.cfg.RetryBackoff)
		if retryErr := w.jobs.Retry(ctx, job.ID, job.Token, err.Error(), next); retryErr != nil {
			w.metrics.IncOutcome(job.Direction, metrics.OutcomeInternal)
			return fmt.Errorf("job %s: %w", job.ID, multierr.Combine(err, retryErr))
		}
		w.metrics.IncOutcome(job.Direction, metrics.OutcomeRetried)
		log.Warn("Capacity job failed, retrying", "next_fire", next, "error", err)
		return fmt.Errorf("job %s: %w", job.ID, err)
	}
}

func (w *Worker) drop(ctx context.Context, log *logger.Logger, job *model.CapacityJob, outcome, reason string) error {
	if err := w.runner.Drop(ctx, job, reason); err != nil {
		if errors.Is(err, repository.ErrLeaseLost) {
			w.metrics.IncOutcome(job.Direction, metrics.OutcomeStale)
			return nil
		}
		w.metrics.IncOutcome(job.Direction, metrics.OutcomeInternal)
		return fmt.Errorf("drop job %s: %w", job.ID, err)
	}

	w.metrics.IncOutcome(job.Direction, outcome)
	log.Warn("Capacity job dropped", "reason", reason)
	w.publish(ctx, events.CapacityEvent(events.TypeCapacityJobDropped, job, reason))
	return nil
}

func (w *Worker) publish(ctx context.Context, evt events.Event) {
	if err := w.publisher.Publish(ctx, evt); err != nil {
		w.log.Warn("Failed to publish capacity event", "event_type", evt.Type, "key", evt.Key, "error", err)
	}
}
