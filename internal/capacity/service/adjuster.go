package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Developer-Square/Park254-Backend/internal/capacity/repository"
	parkinglotserrors "github.com/Developer-Square/Park254-Backend/internal/parkinglots/errors"
	mongotx "github.com/Developer-Square/Park254-Backend/pkg/db/mongo"
	"github.com/Developer-Square/Park254-Backend/pkg/logger"
	"github.com/Developer-Square/Park254-Backend/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrLotNotFound is returned by Fire when the job's parking lot no longer
// exists. Such jobs are dropped rather than retried.
var ErrLotNotFound = errors.New("capacity job parking lot not found")

// Scheduler persists capacity jobs. It is implemented by the Mongo job
// repository and faked in tests.
type Scheduler interface {
	Schedule(ctx context.Context, jobs ...*model.CapacityJob) error
	FindByBooking(ctx context.Context, bookingID string) ([]*model.CapacityJob, error)
	CancelPending(ctx context.Context, pairID string) (int64, error)
	Reschedule(ctx context.Context, jobID string, fireAt time.Time) error
	Complete(ctx context.Context, jobID, token string) error
	Fail(ctx context.Context, jobID, token, reason string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

// LotAdjuster applies a signed delta to a lot's available spaces atomically.
type LotAdjuster interface {
	AdjustAvailableSpaces(ctx context.Context, lotID string, delta int) (*model.ParkingLot, error)
}

type CancelResult struct {
	Cancelled        int64
	DecrementApplied bool
	Compensated      bool
}

type Adjuster struct {
	jobs Scheduler
	lots LotAdjuster
	log  *logger.Logger
	now  func() time.Time
}

func NewAdjuster(jobs Scheduler, lots LotAdjuster, log *logger.Logger) *Adjuster {
	return &Adjuster{
		jobs: jobs,
		lots: lots,
		log:  log,
		now:  time.Now,
	}
}

// Schedule creates the job pair for a booking: a decrement firing at entry
// and an increment firing at exit.
func (a *Adjuster) Schedule(ctx context.Context, bookingID, lotID string, spaces int, entry, exit time.Time) error {
	pairID := uuid.NewString()
	decrement := &model.CapacityJob{
		PairID:       pairID,
		BookingID:    bookingID,
		ParkingLotID: lotID,
		Spaces:       spaces,
		Direction:    model.DirectionDecrement,
		FiresAt:      entry,
	}
	increment := &model.CapacityJob{
		PairID:       pairID,
		BookingID:    bookingID,
		ParkingLotID: lotID,
		Spaces:       spaces,
		Direction:    model.DirectionIncrement,
		FiresAt:      exit,
	}
	if err := a.jobs.Schedule(ctx, decrement, increment); err != nil {
		return fmt.Errorf("failed to schedule capacity jobs for booking %s: %w", bookingID, err)
	}

	a.log.Debug("Capacity jobs scheduled",
		"booking_id", bookingID,
		"parking_lot_id", lotID,
		"spaces", spaces,
		"entry_time", entry,
		"exit_time", exit,
	)
	return nil
}

// CancelAll withdraws the booking's pending jobs in one transaction, so each
// pair is cancelled together or not at all.
//
// A pair whose decrement has not completed is cancelled outright and capacity
// is untouched. Once a decrement has completed, its increment is what gives
// the spaces back: with compensate it is moved to fire now, otherwise it stays
// at exit time.
func (a *Adjuster) CancelAll(ctx context.Context, bookingID string, compensate bool) (CancelResult, error) {
	var result CancelResult

	err := a.jobs.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		result = CancelResult{}

		jobs, err := a.jobs.FindByBooking(sessCtx, bookingID)
		if err != nil {
			return err
		}

		for _, p := range groupPairs(jobs) {
			if p.decrement == nil || p.decrement.IsPending() {
				cancelled, err := a.jobs.CancelPending(sessCtx, p.id)
				if err != nil {
					return err
				}
				result.Cancelled += cancelled
				continue
			}
			if p.decrement.Status != model.JobStatusCompleted || p.increment == nil || !p.increment.IsPending() {
				continue
			}

			result.DecrementApplied = true
			if !compensate || p.increment.Status != model.JobStatusScheduled {
				continue
			}
			if err := a.jobs.Reschedule(sessCtx, p.increment.ID, a.now()); err != nil {
				if errors.Is(err, repository.ErrNotPending) {
					continue
				}
				return err
			}
			result.Compensated = true
		}
		return nil
	})
	if err != nil {
		return CancelResult{}, fmt.Errorf("failed to cancel capacity jobs for booking %s: %w", bookingID, err)
	}

	a.log.Debug("Capacity jobs cancelled",
		"booking_id", bookingID,
		"cancelled", result.Cancelled,
		"decrement_applied", result.DecrementApplied,
		"compensated", result.Compensated,
	)
	return result, nil
}

// Fire applies a claimed job. Completing the job and adjusting the lot share
// one transaction, and completion is conditional on the claim token, so a
// job's delta lands at most once however often it is delivered.
func (a *Adjuster) Fire(ctx context.Context, job *model.CapacityJob) (*model.ParkingLot, error) {
	var lot *model.ParkingLot

	err := a.jobs.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := a.jobs.Complete(sessCtx, job.ID, job.Token); err != nil {
			return err
		}
		adjusted, err := a.lots.AdjustAvailableSpaces(sessCtx, job.ParkingLotID, job.Delta())
		if err != nil {
			if errors.Is(err, parkinglotserrors.ErrNotFound) || errors.Is(err, parkinglotserrors.ErrInvalidID) {
				return ErrLotNotFound
			}
			return err
		}
		lot = adjusted
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lot, nil
}

// Drop marks a claimed job failed. A dropped decrement also cancels its
// pending increment, since the spaces it would return were never taken.
func (a *Adjuster) Drop(ctx context.Context, job *model.CapacityJob, reason string) error {
	return a.jobs.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := a.jobs.Fail(sessCtx, job.ID, job.Token, reason); err != nil {
			return err
		}
		if job.Direction != model.DirectionDecrement {
			return nil
		}
		_, err := a.jobs.CancelPending(sessCtx, job.PairID)
		return err
	})
}

type jobPair struct {
	id        string
	decrement *model.CapacityJob
	increment *model.CapacityJob
}

// groupPairs splits a booking's jobs by pair, keeping the order in which
// pairs first appear.
func groupPairs(jobs []*model.CapacityJob) []*jobPair {
	var pairs []*jobPair
	byID := map[string]*jobPair{}
	for _, job := range jobs {
		p, ok := byID[job.PairID]
		if !ok {
			p = &jobPair{id: job.PairID}
			byID[job.PairID] = p
			pairs = append(pairs, p)
		}
		switch job.Direction {
		case model.DirectionDecrement:
			p.decrement = job
		case model.DirectionIncrement:
			p.increment = job
		}
	}
	return pairs
}
