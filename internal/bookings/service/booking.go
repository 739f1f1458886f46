package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Developer-Square/Park254-Backend/internal/bookings/availability"
	bookingserrors "github.com/Developer-Square/Park254-Backend/internal/bookings/errors"
	"github.com/Developer-Square/Park254-Backend/internal/bookings/lock"
	"github.com/Developer-Square/Park254-Backend/internal/bookings/repository"
	"github.com/Developer-Square/Park254-Backend/internal/bookings/validator"
	capacityservice "github.com/Developer-Square/Park254-Backend/internal/capacity/service"
	"github.com/Developer-Square/Park254-Backend/internal/events"
	parkinglotserrors "github.com/Developer-Square/Park254-Backend/internal/parkinglots/errors"
	"github.com/Developer-Square/Park254-Backend/pkg/auth"
	"github.com/Developer-Square/Park254-Backend/pkg/config"
	mongotx "github.com/Developer-Square/Park254-Backend/pkg/db/mongo"
	apperrors "github.com/Developer-Square/Park254-Backend/pkg/errors"
	"github.com/Developer-Square/Park254-Backend/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

const lockReleaseTimeout = 5 * time.Second

type BookingService interface {
	Book(ctx context.Context, actor auth.Principal, booking *model.Booking) (*model.Booking, error)
	GetByID(ctx context.Context, actor auth.Principal, id string) (*model.Booking, error)
	Query(ctx context.Context, actor auth.Principal, filter model.BookingFilter, page model.PageOptions) (*model.BookingPage, error)
	UpdateBookedParkingLot(ctx context.Context, actor auth.Principal, id string, update *model.BookingUpdate) (*model.Booking, error)
	CancelBooking(ctx context.Context, actor auth.Principal, id string) (*model.Booking, error)
	DeleteBooking(ctx context.Context, actor auth.Principal, id string) error
	FindAvailableSpaces(ctx context.Context, query *model.SpacesQuery) ([]model.LotAvailability, error)
}

// LotDirectory resolves parking lots. It returns the parking lot repository's
// sentinel errors.
type LotDirectory interface {
	FindByID(ctx context.Context, id string) (*model.ParkingLot, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.ParkingLot, error)
}

type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// CapacityScheduler owns the deferred capacity jobs of each booking.
type CapacityScheduler interface {
	Schedule(ctx context.Context, bookingID, lotID string, spaces int, entry, exit time.Time) error
	CancelAll(ctx context.Context, bookingID string, compensate bool) (capacityservice.CancelResult, error)
}

type Evaluator interface {
	Compute(ctx context.Context, q availability.Query) (availability.Result, error)
	ComputeBatch(ctx context.Context, capacities map[string]int, entry, exit time.Time) ([]model.LotAvailability, error)
}

type Params struct {
	Repo      repository.BookingRepository
	Validator *validator.BookingValidator
	Evaluator Evaluator
	Lots      LotDirectory
	Users     UserDirectory
	Capacity  CapacityScheduler
	Locker    lock.Locker
	Publisher events.Publisher
	Config    *config.Config
}

type bookingService struct {
	repo      repository.BookingRepository
	validator *validator.BookingValidator
	evaluator Evaluator
	lots      LotDirectory
	users     UserDirectory
	capacity  CapacityScheduler
	locker    lock.Locker
	publisher events.Publisher
	cfg       *config.Config
}

func NewBookingService(p Params) BookingService {
	publisher := p.Publisher
	if publisher == nil {
		publisher = events.NewNoopPublisher()
	}
	return &bookingService{
		repo:      p.Repo,
		validator: p.Validator,
		evaluator: p.Evaluator,
		lots:      p.Lots,
		users:     p.Users,
		capacity:  p.Capacity,
		locker:    p.Locker,
		publisher: publisher,
		cfg:       p.Config,
	}
}

// Book reserves spaces on a lot for a window. The capacity check, the insert
// and the scheduling of the booking's capacity jobs share one transaction and
// run under the lot's lock, so concurrent requests cannot both take the last
// spaces.
func (s *bookingService) Book(ctx context.Context, actor auth.Principal, booking *model.Booking) (*model.Booking, error) {
	booking.ID = ""
	booking.IsCancelled = false
	if err := s.validate(booking); err != nil {
		return nil, err
	}
	if err := availability.ValidateWindow(booking.EntryTime, booking.ExitTime); err != nil {
		return nil, err
	}
	if !actor.CanActFor(booking.ClientID) {
		return nil, apperrors.Forbidden("You can only book parking on your own behalf")
	}
	if _, err := s.users.GetByID(ctx, booking.ClientID); err != nil {
		return nil, err
	}

	lot, err := s.loadLot(ctx, booking.ParkingLotID)
	if err != nil {
		return nil, err
	}
	if booking.Spaces > lot.Spaces {
		return nil, apperrors.ExceedsCapacity(lot.Spaces, booking.Spaces)
	}

	lease, err := s.acquireLotLock(ctx, lot.ID)
	if err != nil {
		return nil, err
	}
	defer s.releaseLotLock(ctx, lease)

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.checkCapacity(sessCtx, booking, lot, ""); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		if err := s.capacity.Schedule(sessCtx, booking.ID, lot.ID, booking.Spaces, booking.EntryTime, booking.ExitTime); err != nil {
			return apperrors.Internal("Failed to schedule capacity updates", err)
		}
		return nil
	})
	if err != nil {
		s.logFailure("Failed to create booking", err, "parking_lot_id", booking.ParkingLotID, "client_id", booking.ClientID)
		return nil, err
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"parking_lot_id", booking.ParkingLotID,
		"client_id", booking.ClientID,
		"spaces", booking.Spaces,
		"entry_time", booking.EntryTime,
		"exit_time", booking.ExitTime,
	)
	s.publish(ctx, events.BookingEvent(events.TypeBookingCreated, booking, actor.UserID))
	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, actor auth.Principal, id string) (*model.Booking, error) {
	booking, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanActFor(booking.ClientID) {
		return nil, apperrors.Forbidden("You are not allowed to view this booking")
	}
	return booking, nil
}

// Query lists bookings. Admins see everything; a vendor may list the
// bookings of a lot they own; everyone else only sees their own bookings.
func (s *bookingService) Query(ctx context.Context, actor auth.Principal, filter model.BookingFilter, page model.PageOptions) (*model.BookingPage, error) {
	if err := s.scopeFilter(ctx, actor, &filter); err != nil {
		return nil, err
	}

	page.Limit = config.NormalizePaginationLimit(page.Limit)
	page.Page = config.NormalizePage(page.Page)

	bookings, total, err := s.repo.Query(ctx, filter, page)
	if err != nil {
		if errors.Is(err, mongotx.ErrInvalidSort) {
			return nil, apperrors.InvalidInput(err.Error())
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid parkingLotId or clientId format")
		}
		s.cfg.Log.Error("Failed to query bookings", "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}

	return &model.BookingPage{
		Results:      bookings,
		Page:         page.Page,
		Limit:        page.Limit,
		TotalPages:   totalPages(total, page.Limit),
		TotalResults: total,
	}, nil
}

// UpdateBookedParkingLot modifies a live booking. The merged booking is
// re-evaluated against the target lot without counting itself, its old
// capacity jobs are withdrawn with compensation and a fresh pair is
// scheduled, all in one transaction under the target lot's lock.
func (s *bookingService) UpdateBookedParkingLot(ctx context.Context, actor auth.Principal, id string, update *model.BookingUpdate) (*model.Booking, error) {
	if err := s.validator.ValidateUpdate(update); err != nil {
		return nil, s.validationError("Invalid update input", err)
	}

	existing, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanActFor(existing.ClientID) {
		return nil, apperrors.Forbidden("You are not allowed to modify this booking")
	}
	if existing.IsCancelled {
		return nil, apperrors.Conflict("Cannot modify a cancelled booking")
	}

	merged := update.Apply(*existing)
	if err := s.validate(&merged); err != nil {
		return nil, err
	}
	if err := availability.ValidateWindow(merged.EntryTime, merged.ExitTime); err != nil {
		return nil, err
	}

	lot, err := s.loadLot(ctx, merged.ParkingLotID)
	if err != nil {
		return nil, err
	}
	if merged.Spaces > lot.Spaces {
		return nil, apperrors.ExceedsCapacity(lot.Spaces, merged.Spaces)
	}

	lease, err := s.acquireLotLock(ctx, lot.ID)
	if err != nil {
		return nil, err
	}
	defer s.releaseLotLock(ctx, lease)

	var updated *model.Booking
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.checkCapacity(sessCtx, &merged, lot, id); err != nil {
			return err
		}
		if _, err := s.capacity.CancelAll(sessCtx, id, true); err != nil {
			return apperrors.Internal("Failed to withdraw capacity updates", err)
		}
		if err := s.capacity.Schedule(sessCtx, id, lot.ID, merged.Spaces, merged.EntryTime, merged.ExitTime); err != nil {
			return apperrors.Internal("Failed to schedule capacity updates", err)
		}
		result, err := s.repo.Update(sessCtx, id, update)
		if err != nil {
			return s.translateBookingError(err, id, "Failed to update booking")
		}
		updated = result
		return nil
	})
	if err != nil {
		s.logFailure("Failed to update booking", err, "id", id)
		return nil, err
	}

	s.cfg.Log.Info("Booking updated successfully",
		"id", id,
		"parking_lot_id", updated.ParkingLotID,
		"spaces", updated.Spaces,
	)
	s.publish(ctx, events.BookingEvent(events.TypeBookingUpdated, updated, actor.UserID))
	return updated, nil
}

// CancelBooking marks a booking cancelled and withdraws its capacity jobs.
// Cancelling an already cancelled booking returns it unchanged.
func (s *bookingService) CancelBooking(ctx context.Context, actor auth.Principal, id string) (*model.Booking, error) {
	existing, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanActFor(existing.ClientID) {
		return nil, apperrors.Forbidden("You are not allowed to cancel this booking")
	}
	if existing.IsCancelled {
		return existing, nil
	}

	var cancelled *model.Booking
	var result capacityservice.CancelResult
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		booking, err := s.repo.Cancel(sessCtx, id)
		if err != nil {
			return s.translateBookingError(err, id, "Failed to cancel booking")
		}
		res, err := s.capacity.CancelAll(sessCtx, id, s.cfg.CompensateOnCancel)
		if err != nil {
			return apperrors.Internal("Failed to withdraw capacity updates", err)
		}
		cancelled, result = booking, res
		return nil
	})
	if err != nil {
		s.logFailure("Failed to cancel booking", err, "id", id)
		return nil, err
	}

	s.cfg.Log.Info("Booking cancelled successfully",
		"id", id,
		"jobs_cancelled", result.Cancelled,
		"decrement_applied", result.DecrementApplied,
		"compensated", result.Compensated,
	)
	s.publish(ctx, events.BookingEvent(events.TypeBookingCancelled, cancelled, actor.UserID))
	return cancelled, nil
}

// DeleteBooking removes a booking outright. Any spaces it still holds are
// handed back immediately.
func (s *bookingService) DeleteBooking(ctx context.Context, actor auth.Principal, id string) error {
	if !actor.IsAdmin() {
		return apperrors.Forbidden("Only administrators can delete bookings")
	}

	existing, err := s.loadBooking(ctx, id)
	if err != nil {
		return err
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if _, err := s.capacity.CancelAll(sessCtx, id, true); err != nil {
			return apperrors.Internal("Failed to withdraw capacity updates", err)
		}
		if err := s.repo.Delete(sessCtx, id); err != nil {
			return s.translateBookingError(err, id, "Failed to delete booking")
		}
		return nil
	})
	if err != nil {
		s.logFailure("Failed to delete booking", err, "id", id)
		return err
	}

	s.cfg.Log.Info("Booking deleted successfully", "id", id)
	s.publish(ctx, events.BookingEvent(events.TypeBookingDeleted, existing, actor.UserID))
	return nil
}

// FindAvailableSpaces reports occupancy for each requested lot over one
// window. Unknown lots are skipped, and only lots with overlapping bookings
// are reported.
func (s *bookingService) FindAvailableSpaces(ctx context.Context, query *model.SpacesQuery) ([]model.LotAvailability, error) {
	if err := s.validator.ValidateSpacesQuery(query); err != nil {
		return nil, s.validationError("Invalid spaces query", err)
	}
	if err := availability.ValidateWindow(query.EntryTime, query.ExitTime); err != nil {
		return nil, err
	}

	ids := dedupe(query.ParkingLots)
	if len(ids) > s.cfg.MaxBatchLots {
		return nil, apperrors.InvalidInput(fmt.Sprintf("At most %d parking lots can be queried at once", s.cfg.MaxBatchLots))
	}

	lots, err := s.lots.FindByIDs(ctx, ids)
	if err != nil {
		if errors.Is(err, parkinglotserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid parking lot ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve parking lots", err)
	}

	capacities := make(map[string]int, len(lots))
	for _, lot := range lots {
		capacities[lot.ID] = lot.Spaces
	}

	results, err := s.evaluator.ComputeBatch(ctx, capacities, query.EntryTime, query.ExitTime)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, apperrors.NoAvailabilityFound("No bookings found for the requested parking lots in this window")
	}

	s.cfg.Log.Debug("Spaces lookup completed",
		"requested", len(ids),
		"found", len(lots),
		"reported", len(results),
	)
	return results, nil
}

// --- Helpers ---

func (s *bookingService) checkCapacity(ctx context.Context, booking *model.Booking, lot *model.ParkingLot, excludeID string) error {
	result, err := s.evaluator.Compute(ctx, availability.Query{
		LotID:            lot.ID,
		EntryTime:        booking.EntryTime,
		ExitTime:         booking.ExitTime,
		RequestedSpaces:  booking.Spaces,
		TotalCapacity:    lot.Spaces,
		ExcludeBookingID: excludeID,
	})
	if err != nil {
		return err
	}
	if !result.Available {
		return apperrors.InsufficientCapacity(result.AvailableSpaces, booking.Spaces)
	}
	return nil
}

func (s *bookingService) scopeFilter(ctx context.Context, actor auth.Principal, filter *model.BookingFilter) error {
	if actor.IsAdmin() {
		return nil
	}
	if filter.ClientID != "" && filter.ClientID != actor.UserID {
		if !s.ownsLot(ctx, actor, filter.ParkingLotID) {
			return apperrors.Forbidden("You can only list your own bookings")
		}
		return nil
	}
	if filter.ClientID == "" && s.ownsLot(ctx, actor, filter.ParkingLotID) {
		return nil
	}
	filter.ClientID = actor.UserID
	return nil
}

func (s *bookingService) ownsLot(ctx context.Context, actor auth.Principal, lotID string) bool {
	if actor.Role != auth.RoleVendor || lotID == "" {
		return false
	}
	lot, err := s.lots.FindByID(ctx, lotID)
	if err != nil {
		return false
	}
	return lot.Owner == actor.UserID
}

func (s *bookingService) loadBooking(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateBookingError(err, id, "Failed to retrieve booking")
	}
	return booking, nil
}

func (s *bookingService) loadLot(ctx context.Context, id string) (*model.ParkingLot, error) {
	lot, err := s.lots.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, parkinglotserrors.ErrNotFound) {
			return nil, apperrors.NotFound("Parking lot")
		}
		if errors.Is(err, parkinglotserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid parking lot ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve parking lot", err)
	}
	return lot, nil
}

func (s *bookingService) translateBookingError(err error, id, message string) error {
	if apperrors.IsAppError(err) {
		return err
	}
	if errors.Is(err, bookingserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Booking", id)
	}
	if errors.Is(err, bookingserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid booking ID format")
	}
	return apperrors.Internal(message, err)
}

func (s *bookingService) acquireLotLock(ctx context.Context, lotID string) (*lock.Lease, error) {
	lease, err := s.locker.Acquire(ctx, lotID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrLockHeld) {
			return nil, apperrors.Conflict("This parking lot is currently being booked by another request. Please try again.")
		}
		return nil, apperrors.Internal("Failed to acquire parking lot lock", err)
	}
	return lease, nil
}

func (s *bookingService) releaseLotLock(ctx context.Context, lease *lock.Lease) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lockReleaseTimeout)
	defer cancel()

	if err := s.locker.Release(ctx, lease); err != nil {
		s.cfg.Log.Warn("Failed to release parking lot lock", "lock_id", lease.Key, "error", err)
	}
}

func (s *bookingService) publish(ctx context.Context, evt events.Event) {
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event", "type", evt.Type, "key", evt.Key, "error", err)
	}
}

func (s *bookingService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		return s.validationError("Booking validation failed", err)
	}
	return nil
}

func (s *bookingService) validationError(message string, err error) error {
	s.cfg.Log.Warn(message, "error", err)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}

// logFailure keeps client errors at warn level so only server faults are
// reported as errors.
func (s *bookingService) logFailure(message string, err error, args ...any) {
	args = append(args, "error", err)
	if apperrors.AsAppError(err).StatusCode() < 500 {
		s.cfg.Log.Warn(message, args...)
		return
	}
	s.cfg.Log.Error(message, args...)
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
