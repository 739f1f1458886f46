package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Developer-Square/Park254-Backend/internal/capacity/repository"
	parkinglotserrors "github.com/Developer-Square/Park254-Backend/internal/parkinglots/errors"
	mongotx "github.com/Developer-Square/Park254-Backend/pkg/db/mongo"
	"github.com/Developer-Square/Park254-Backend/pkg/logger"
	"github.com/Developer-Square/Park254-Backend/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

// memoryJobs is an in-memory Scheduler. ExecuteTransaction restores the
// previous state when fn fails.
type memoryJobs struct {
	jobs   map[string]*model.CapacityJob
	nextID int
}

func newMemoryJobs() *memoryJobs {
	return &memoryJobs{jobs: map[string]*model.CapacityJob{}}
}

func (m *memoryJobs) Schedule(_ context.Context, jobs ...*model.CapacityJob) error {
	for _, j := range jobs {
		m.nextID++
		j.ID = fmt.Sprintf("job-%d", m.nextID)
		j.Status = model.JobStatusScheduled
		stored := *j
		m.jobs[j.ID] = &stored
	}
	return nil
}

func (m *memoryJobs) FindByBooking(_ context.Context, bookingID string) ([]*model.CapacityJob, error) {
	var out []*model.CapacityJob
	for _, j := range m.jobs {
		if j.BookingID == bookingID {
			copied := *j
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memoryJobs) CancelPending(_ context.Context, pairID string) (int64, error) {
	var n int64
	for _, j := range m.jobs {
		if j.PairID == pairID && j.IsPending() {
			j.Status = model.JobStatusCancelled
			j.Token = ""
			n++
		}
	}
	return n, nil
}

func (m *memoryJobs) Reschedule(_ context.Context, jobID string, fireAt time.Time) error {
	j, ok := m.jobs[jobID]
	if !ok || j.Status != model.JobStatusScheduled {
		return repository.ErrNotPending
	}
	j.FiresAt = fireAt
	return nil
}

func (m *memoryJobs) claim(jobID string) *model.CapacityJob {
	j := m.jobs[jobID]
	j.Status = model.JobStatusRunning
	j.Attempts++
	j.Token = fmt.Sprintf("token-%s-%d", jobID, j.Attempts)
	copied := *j
	return &copied
}

func (m *memoryJobs) transition(jobID, token, status string) error {
	j, ok := m.jobs[jobID]
	if !ok || j.Status != model.JobStatusRunning || j.Token != token {
		return repository.ErrLeaseLost
	}
	j.Status = status
	return nil
}

func (m *memoryJobs) Complete(_ context.Context, jobID, token string) error {
	return m.transition(jobID, token, model.JobStatusCompleted)
}

func (m *memoryJobs) Fail(_ context.Context, jobID, token, reason string) error {
	if err := m.transition(jobID, token, model.JobStatusFailed); err != nil {
		return err
	}
	m.jobs[jobID].LastError = reason
	return nil
}

func (m *memoryJobs) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	snapshot := map[string]*model.CapacityJob{}
	for id, j := range m.jobs {
		copied := *j
		snapshot[id] = &copied
	}
	if err := fn(mongo.NewSessionContext(ctx, nil)); err != nil {
		m.jobs = snapshot
		return err
	}
	return nil
}

// byDirection returns the booking's most recently scheduled job of direction.
func (m *memoryJobs) byDirection(bookingID, direction string) *model.CapacityJob {
	var found *model.CapacityJob
	for _, j := range m.jobs {
		if j.BookingID != bookingID || j.Direction != direction {
			continue
		}
		if found == nil || jobSeq(j.ID) > jobSeq(found.ID) {
			found = j
		}
	}
	return found
}

func jobSeq(id string) int {
	var n int
	fmt.Sscanf(id, "job-%d", &n)
	return n
}

type memoryLots struct {
	lots  map[string]*model.ParkingLot
	err   error
	calls int
}

func (m *memoryLots) AdjustAvailableSpaces(_ context.Context, lotID string, delta int) (*model.ParkingLot, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	lot, ok := m.lots[lotID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", parkinglotserrors.ErrNotFound, lotID)
	}
	lot.AvailableSpaces = min(lot.Spaces, max(0, lot.AvailableSpaces+delta))
	copied := *lot
	return &copied, nil
}

var (
	entry = time.Date(2021, 8, 22, 11, 30, 0, 0, time.UTC)
	exit  = time.Date(2021, 8, 22, 12, 30, 0, 0, time.UTC)
	now   = time.Date(2021, 8, 22, 12, 0, 0, 0, time.UTC)
)

func newAdjuster(jobs *memoryJobs, lots *memoryLots) *Adjuster {
	a := NewAdjuster(jobs, lots, logger.New(logger.Config{Level: "error", Service: "test"}))
	a.now = func() time.Time { return now }
	return a
}

func newLots() *memoryLots {
	return &memoryLots{lots: map[string]*model.ParkingLot{
		"lot-1": {ID: "lot-1", Spaces: 800, AvailableSpaces: 800},
	}}
}

func TestSchedule_CreatesPair(t *testing.T) {
	jobs := newMemoryJobs()
	a := newAdjuster(jobs, newLots())

	require.NoError(t, a.Schedule(context.Background(), "b1", "lot-1", 2, entry, exit))
	require.Len(t, jobs.jobs, 2)

	dec := jobs.byDirection("b1", model.DirectionDecrement)
	inc := jobs.byDirection("b1", model.DirectionIncrement)
	require.NotNil(t, dec)
	require.NotNil(t, inc)
	assert.Equal(t, entry, dec.FiresAt)
	assert.Equal(t, exit, inc.FiresAt)
	assert.NotEmpty(t, dec.PairID)
	assert.Equal(t, dec.PairID, inc.PairID)
	assert.Equal(t, -2, dec.Delta())
	assert.Equal(t, 2, inc.Delta())
}

func TestFire_AppliesOnce(t *testing.T) {
	jobs := newMemoryJobs()
	lots := newLots()
	a := newAdjuster(jobs, lots)
	ctx := context.Background()
	require.NoError(t, a.Schedule(ctx, "b1", "lot-1", 2, entry, exit))

	claimed := jobs.claim(jobs.byDirection("b1", model.DirectionDecrement).ID)
	lot, err := a.Fire(ctx, claimed)
	require.NoError(t, err)
	assert.Equal(t, 798, lot.AvailableSpaces)

	_, err = a.Fire(ctx, claimed)
	assert.ErrorIs(t, err, repository.ErrLeaseLost)
	assert.Equal(t, 798, lots.lots["lot-1"].AvailableSpaces)
}

func TestFire_StaleTokenAfterReclaim(t *testing.T) {
	jobs := newMemoryJobs()
	lots := newLots()
	a := newAdjuster(jobs, lots)
	ctx := context.Background()
	require.NoError(t, a.Schedule(ctx, "b1", "lot-1", 5, entry, exit))

	id := jobs.byDirection("b1", model.DirectionDecrement).ID
	first := jobs.claim(id)
	second := jobs.claim(id)

	_, err := a.Fire(ctx, first)
	assert.ErrorIs(t, err, repository.ErrLeaseLost)
	_, err = a.Fire(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, 795, lots.lots["lot-1"].AvailableSpaces)
}

func TestFire_MissingLotRollsBackCompletion(t *testing.T) {
	jobs := newMemoryJobs()
	a := newAdjuster(jobs, &memoryLots{lots: map[string]*model.ParkingLot{}})
	ctx := context.Background()
	require.NoError(t, a.Schedule(ctx, "b1", "gone", 1, entry, exit))

	claimed := jobs.claim(jobs.byDirection("b1", model.DirectionDecrement).ID)
	_, err := a.Fire(ctx, claimed)
	assert.ErrorIs(t, err, ErrLotNotFound)
	assert.Equal(t, model.JobStatusRunning, jobs.jobs[claimed.ID].Status)
}

func TestFire_OtherErrorsPassThrough(t *testing.T) {
	jobs := newMemoryJobs()
	boom := errors.New("socket closed")
	a := newAdjuster(jobs, &memoryLots{err: boom})
	ctx := context.Background()
	require.NoError(t, a.Schedule(ctx, "b1", "lot-1", 1, entry, exit))

	claimed := jobs.claim(jobs.byDirection("b1", model.DirectionDecrement).ID)
	_, err := a.Fire(ctx, claimed)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrLotNotFound)
}

func TestDrop_DecrementCancelsIncrement(t *testing.T) {
	jobs := newMemoryJobs()
	a := newAdjuster(jobs, newLots())
	ctx := context.Background()
	require.NoError(t, a.Schedule(ctx, "b1", "lot-1", 1, entry, exit))

	claimed := jobs.claim(jobs.byDirection("b1", model.DirectionDecrement).ID)
	require.NoError(t, a.Drop(ctx, claimed, "lot deleted"))

	assert.Equal(t, model.JobStatusFailed, jobs.byDirection("b1", model.DirectionDecrement).Status)
	assert.Equal(t, "lot deleted", jobs.byDirection("b1", model.DirectionDecrement).LastError)
	assert.Equal(t, model.JobStatusCancelled, jobs.byDirection("b1", model.DirectionIncrement).Status)
}

func TestCancelAll_BeforeEntryCancelsBoth(t *testing.T) {
	jobs := newMemoryJobs()
	lots := newLots()
	a := newAdjuster(jobs, lots)
	ctx := context.Background()
	require.NoError(t, a.Schedule(ctx, "b1", "lot-1", 2, entry, exit))

	res, err := a.CancelAll(ctx, "b1", false)
	require.NoError(t, err)
	assert.Equal(t, CancelResult{Cancelled: 2}, res)
	assert.Equal(t, model.JobStatusCancelled, jobs.byDirection("b1", model.DirectionDecrement).Status)
	assert.Equal(t, model.JobStatusCancelled, jobs.byDirection("b1", model.DirectionIncrement).Status)
	assert.Zero(t, lots.calls)
}

func TestCancelAll_RunningDecrementLosesItsLease(t *testing.T) {
	jobs := newMemoryJobs()
	lots := newLots()
	a := newAdjuster(jobs, lots)
	ctx := context.Background()
	require.NoError(t, a.Schedule(ctx, "b1", "lot-1", 2, entry, exit))

	claimed := jobs.claim(jobs.byDirection("b1", model.DirectionDecrement).ID)
	_, err := a.CancelAll(ctx, "b1", false)
	require.NoError(t, err)

	_, err = a.Fire(ctx, claimed)
	assert.ErrorIs(t, err, repository.ErrLeaseLost)
	assert.Equal(t, 800, lots.lots["lot-1"].AvailableSpaces)
}

func TestCancelAll_AfterEntryWithoutCompensation(t *testing.T) {
	jobs := newMemoryJobs()
	lots := newLots()
	a := newAdjuster(jobs, lots)
	ctx := context.Background()
	require.NoError(t, a.Schedule(ctx, "b1", "lot-1", 2, entry, exit))

	_, err := a.Fire(ctx, jobs.claim(jobs.byDirection("b1", model.DirectionDecrement).ID))
	require.NoError(t, err)

	res, err := a.CancelAll(ctx, "b1", false)
	require.NoError(t, err)
	assert.Equal(t, CancelResult{DecrementApplied: true}, res)

	inc := jobs.byDirection("b1", model.DirectionIncrement)
	assert.Equal(t, model.JobStatusScheduled, inc.Status)
	assert.Equal(t, exit, inc.FiresAt)
	assert.Equal(t, 798, lots.lots["lot-1"].AvailableSpaces)
}

func TestCancelAll_AfterEntryWithCompensation(t *testing.T) {
	jobs := newMemoryJobs()
	lots := newLots()
	a := newAdjuster(jobs, lots)
	ctx := context.Background()
	require.NoError(t, a.Schedule(ctx, "b1", "lot-1", 2, entry, exit))

	_, err := a.Fire(ctx, jobs.claim(jobs.byDirection("b1", model.DirectionDecrement).ID))
	require.NoError(t, err)

	res, err := a.CancelAll(ctx, "b1", true)
	require.NoError(t, err)
	assert.Equal(t, CancelResult{DecrementApplied: true, Compensated: true}, res)

	inc := jobs.byDirection("b1", model.DirectionIncrement)
	assert.Equal(t, now, inc.FiresAt)

	_, err = a.Fire(ctx, jobs.claim(inc.ID))
	require.NoError(t, err)
	assert.Equal(t, 800, lots.lots["lot-1"].AvailableSpaces)
}

func TestCancelAll_OnlyTouchesOutstandingPairs(t *testing.T) {
	jobs := newMemoryJobs()
	lots := newLots()
	a := newAdjuster(jobs, lots)
	ctx := context.Background()

	// First revision: decrement applied, then compensated by a modification.
	require.NoError(t, a.Schedule(ctx, "b1", "lot-1", 2, entry, exit))
	_, err := a.Fire(ctx, jobs.claim(jobs.byDirection("b1", model.DirectionDecrement).ID))
	require.NoError(t, err)
	_, err = a.CancelAll(ctx, "b1", true)
	require.NoError(t, err)
	oldInc := jobs.byDirection("b1", model.DirectionIncrement)
	_, err = a.Fire(ctx, jobs.claim(oldInc.ID))
	require.NoError(t, err)
	assert.Equal(t, 800, lots.lots["lot-1"].AvailableSpaces)

	// Second revision, not yet started.
	later := exit.Add(time.Hour)
	require.NoError(t, a.Schedule(ctx, "b1", "lot-1", 3, later, later.Add(time.Hour)))

	res, err := a.CancelAll(ctx, "b1", true)
	require.NoError(t, err)
	assert.Equal(t, CancelResult{Cancelled: 2}, res)
	assert.Equal(t, model.JobStatusCompleted, jobs.jobs[oldInc.ID].Status)
	assert.Equal(t, model.JobStatusCancelled, jobs.byDirection("b1", model.DirectionDecrement).Status)
	assert.Equal(t, 800, lots.lots["lot-1"].AvailableSpaces)
}
