// Package availability computes how many spaces of a parking lot are free for
// a time window, given the live bookings that overlap it.
//
// Windows are half-open: [entry, exit). Two bookings where one ends exactly
// when the other begins do not overlap.
package availability

import (
	"context"
	"errors"
	"sort"
	"time"

	bookingserrors "github.com/Developer-Square/Park254-Backend/internal/bookings/errors"
	apperrors "github.com/Developer-Square/Park254-Backend/pkg/errors"
	"github.com/Developer-Square/Park254-Backend/pkg/model"
)

// OverlapStore sums the spaces held by non-cancelled overlapping bookings.
type OverlapStore interface {
	SumOverlappingSpaces(ctx context.Context, lotID string, entry, exit time.Time, excludeID string) (int, error)
	SumOverlappingSpacesByLot(ctx context.Context, lotIDs []string, entry, exit time.Time) (map[string]int, error)
}

type Query struct {
	LotID           string
	EntryTime       time.Time
	ExitTime        time.Time
	RequestedSpaces int
	TotalCapacity   int
	// ExcludeBookingID leaves one booking out of the sum, so a booking being
	// modified does not compete with itself.
	ExcludeBookingID string
}

type Result struct {
	OccupiedSpaces  int  `json:"occupiedSpaces"`
	AvailableSpaces int  `json:"availableSpaces"`
	Available       bool `json:"available"`
}

type Evaluator struct {
	store OverlapStore
}

func NewEvaluator(store OverlapStore) *Evaluator {
	return &Evaluator{store: store}
}

// Overlaps reports whether [a1, a2) and [b1, b2) share any instant.
func Overlaps(a1, a2, b1, b2 time.Time) bool {
	return a1.Before(b2) && b1.Before(a2)
}

// ValidateWindow rejects windows whose exit is not strictly after entry.
func ValidateWindow(entry, exit time.Time) error {
	if !exit.After(entry) {
		return apperrors.InvalidTimeRange("exitTime must be after entryTime")
	}
	return nil
}

// Compute reports occupancy for q. A request larger than the lot itself fails
// before the store is consulted. The request fits when the remaining capacity
// is at least the requested spaces.
func (e *Evaluator) Compute(ctx context.Context, q Query) (Result, error) {
	if q.RequestedSpaces > q.TotalCapacity {
		return Result{}, apperrors.ExceedsCapacity(q.TotalCapacity, q.RequestedSpaces)
	}
	if err := ValidateWindow(q.EntryTime, q.ExitTime); err != nil {
		return Result{}, err
	}

	occupied, err := e.store.SumOverlappingSpaces(ctx, q.LotID, q.EntryTime, q.ExitTime, q.ExcludeBookingID)
	if err != nil {
		return Result{}, translateStoreError(err)
	}

	available := q.TotalCapacity - occupied
	return Result{
		OccupiedSpaces:  occupied,
		AvailableSpaces: available,
		Available:       available >= q.RequestedSpaces,
	}, nil
}

// ComputeBatch reports occupancy for several lots over one window, keyed by
// lot id to total capacity. Only lots with at least one overlapping booking
// appear in the result, ordered by lot id.
func (e *Evaluator) ComputeBatch(ctx context.Context, lotCapacities map[string]int, entry, exit time.Time) ([]model.LotAvailability, error) {
	if err := ValidateWindow(entry, exit); err != nil {
		return nil, err
	}
	if len(lotCapacities) == 0 {
		return []model.LotAvailability{}, nil
	}

	ids := make([]string, 0, len(lotCapacities))
	for id := range lotCapacities {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	sums, err := e.store.SumOverlappingSpacesByLot(ctx, ids, entry, exit)
	if err != nil {
		return nil, translateStoreError(err)
	}

	results := make([]model.LotAvailability, 0, len(sums))
	for _, id := range ids {
		occupied, ok := sums[id]
		if !ok {
			continue
		}
		total := lotCapacities[id]
		available := total - occupied
		results = append(results, model.LotAvailability{
			ParkingLotID:    id,
			TotalSpaces:     total,
			OccupiedSpaces:  occupied,
			AvailableSpaces: available,
			Available:       available > 0,
		})
	}
	return results, nil
}

func translateStoreError(err error) error {
	if errors.Is(err, bookingserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid parking lot ID format")
	}
	return apperrors.Internal("Failed to compute availability", err)
}
