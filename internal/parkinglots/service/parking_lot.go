package service

import (
	"context"
	"errors"

	parkinglotserrors "github.com/Developer-Square/Park254-Backend/internal/parkinglots/errors"
	"github.com/Developer-Square/Park254-Backend/internal/parkinglots/repository"
	"github.com/Developer-Square/Park254-Backend/internal/parkinglots/validator"
	"github.com/Developer-Square/Park254-Backend/pkg/auth"
	"github.com/Developer-Square/Park254-Backend/pkg/config"
	mongotx "github.com/Developer-Square/Park254-Backend/pkg/db/mongo"
	apperrors "github.com/Developer-Square/Park254-Backend/pkg/errors"
	"github.com/Developer-Square/Park254-Backend/pkg/model"
	"github.com/Developer-Square/Park254-Backend/pkg/sanitizer"
)

type ParkingLotService interface {
	Create(ctx context.Context, actor auth.Principal, lot *model.ParkingLot) error
	GetByID(ctx context.Context, id string) (*model.ParkingLot, error)
	GetAll(ctx context.Context, filter model.ParkingLotFilter, page model.PageOptions) ([]*model.ParkingLot, int64, error)
	Update(ctx context.Context, actor auth.Principal, id string, update *model.ParkingLotUpdate) (*model.ParkingLot, error)
	Delete(ctx context.Context, actor auth.Principal, id string) error
	Nearby(ctx context.Context, query model.NearbyQuery) ([]*model.ParkingLot, error)
}

type parkingLotService struct {
	repo      repository.ParkingLotRepository
	validator *validator.ParkingLotValidator
	cfg       *config.Config
}

func NewParkingLotService(
	repo repository.ParkingLotRepository,
	validator *validator.ParkingLotValidator,
	cfg *config.Config,
) ParkingLotService {
	return &parkingLotService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *parkingLotService) Create(ctx context.Context, actor auth.Principal, lot *model.ParkingLot) error {
	lot.ID = ""
	if lot.Owner == "" {
		lot.Owner = actor.UserID
	}
	if !actor.CanActFor(lot.Owner) {
		return apperrors.Forbidden("You can only register parking lots you own")
	}

	s.applyDefaults(lot)
	s.sanitize(lot)
	if err := s.validate(lot); err != nil {
		return err
	}
	if err := s.ensureUniqueName(ctx, lot.Name, ""); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, lot); err != nil {
		if errors.Is(err, parkinglotserrors.ErrDuplicateName) {
			return apperrors.Conflict("Parking lot name already taken")
		}
		if errors.Is(err, parkinglotserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid owner ID format")
		}
		s.cfg.Log.Error("Failed to create parking lot", "name", lot.Name, "error", err)
		return apperrors.Internal("Failed to create parking lot", err)
	}

	s.cfg.Log.Info("Parking lot created successfully",
		"id", lot.ID,
		"name", lot.Name,
		"owner", lot.Owner,
		"spaces", lot.Spaces,
	)
	return nil
}

func (s *parkingLotService) GetByID(ctx context.Context, id string) (*model.ParkingLot, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Parking lot ID cannot be empty")
	}

	lot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateError(err, id, "Failed to retrieve parking lot")
	}
	return lot, nil
}

func (s *parkingLotService) GetAll(ctx context.Context, filter model.ParkingLotFilter, page model.PageOptions) ([]*model.ParkingLot, int64, error) {
	filter.Name = sanitizer.SanitizeNameOrAddress(filter.Name)
	filter.City = sanitizer.SanitizeCity(filter.City)
	page.Limit = config.NormalizePaginationLimit(page.Limit)
	page.Page = config.NormalizePage(page.Page)

	lots, total, err := s.repo.Query(ctx, filter, page)
	if err != nil {
		if errors.Is(err, mongotx.ErrInvalidSort) {
			return nil, 0, apperrors.InvalidInput(err.Error())
		}
		if errors.Is(err, parkinglotserrors.ErrInvalidID) {
			return nil, 0, apperrors.InvalidInput("Invalid owner ID format")
		}
		s.cfg.Log.Error("Failed to list parking lots", "error", err)
		return nil, 0, apperrors.Internal("Failed to retrieve parking lots", err)
	}
	return lots, total, nil
}

func (s *parkingLotService) Update(ctx context.Context, actor auth.Principal, id string, update *model.ParkingLotUpdate) (*model.ParkingLot, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanActFor(existing.Owner) {
		return nil, apperrors.Forbidden("You are not allowed to modify this parking lot")
	}

	s.sanitizeUpdate(update)
	if err := s.validator.ValidateUpdate(update); err != nil {
		return nil, s.validationError("Invalid update input", err)
	}
	if update.Name != nil && *update.Name != existing.Name {
		if err := s.ensureUniqueName(ctx, *update.Name, id); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.Update(ctx, id, update)
	if err != nil {
		if errors.Is(err, parkinglotserrors.ErrDuplicateName) {
			return nil, apperrors.Conflict("Parking lot name already taken")
		}
		return nil, s.translateError(err, id, "Failed to update parking lot")
	}

	s.cfg.Log.Info("Parking lot updated successfully",
		"id", id,
		"spaces", updated.Spaces,
		"available_spaces", updated.AvailableSpaces,
	)
	return updated, nil
}

func (s *parkingLotService) Delete(ctx context.Context, actor auth.Principal, id string) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanActFor(existing.Owner) {
		return apperrors.Forbidden("You are not allowed to delete this parking lot")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.translateError(err, id, "Failed to delete parking lot")
	}

	s.cfg.Log.Info("Parking lot deleted successfully", "id", id)
	return nil
}

// Nearby lists lots within MaxDistanceKm of a point, nearest first. A zero
// radius falls back to the configured default.
func (s *parkingLotService) Nearby(ctx context.Context, query model.NearbyQuery) ([]*model.ParkingLot, error) {
	if query.MaxDistanceKm == 0 {
		query.MaxDistanceKm = s.cfg.NearbyDefaultDistanceKm
	}
	if err := s.validator.ValidateNearby(query); err != nil {
		return nil, s.validationError("Invalid nearby query", err)
	}

	lots, err := s.repo.Nearby(ctx, query, config.MaxPaginationLimit)
	if err != nil {
		s.cfg.Log.Error("Failed to search nearby parking lots",
			"longitude", query.Longitude,
			"latitude", query.Latitude,
			"max_distance_km", query.MaxDistanceKm,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to search nearby parking lots", err)
	}
	return lots, nil
}

// --- Helpers ---

func (s *parkingLotService) applyDefaults(lot *model.ParkingLot) {
	if lot.City == "" {
		lot.City = model.DefaultCity
	}
	if lot.Location.Type == "" {
		lot.Location.Type = model.GeoPointType
	}
	lot.AvailableSpaces = lot.Spaces
	lot.RatingValue = 0
	lot.RatingCount = 0
}

func (s *parkingLotService) sanitize(lot *model.ParkingLot) {
	lot.Name = sanitizer.SanitizeNameOrAddress(lot.Name)
	lot.Address = sanitizer.SanitizeNameOrAddress(lot.Address)
	lot.City = sanitizer.SanitizeCity(lot.City)
	if lot.Images != nil {
		lot.Images = sanitizer.SanitizeSlice(lot.Images, sanitizer.SanitizeURL)
	}
}

func (s *parkingLotService) sanitizeUpdate(u *model.ParkingLotUpdate) {
	if u.Name != nil {
		*u.Name = sanitizer.SanitizeNameOrAddress(*u.Name)
	}
	if u.Address != nil {
		*u.Address = sanitizer.SanitizeNameOrAddress(*u.Address)
	}
	if u.City != nil {
		*u.City = sanitizer.SanitizeCity(*u.City)
	}
	if u.Images != nil {
		images := sanitizer.SanitizeSlice(*u.Images, sanitizer.SanitizeURL)
		u.Images = &images
	}
}

func (s *parkingLotService) ensureUniqueName(ctx context.Context, name, excludeID string) error {
	exists, err := s.repo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return apperrors.Internal("Failed to check parking lot name", err)
	}
	if exists {
		return apperrors.Conflict("Parking lot name already taken")
	}
	return nil
}

func (s *parkingLotService) validate(lot *model.ParkingLot) error {
	if err := s.validator.Validate(lot); err != nil {
		return s.validationError("Parking lot validation failed", err)
	}
	return nil
}

func (s *parkingLotService) validationError(message string, err error) error {
	s.cfg.Log.Warn(message, "error", err)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}

func (s *parkingLotService) translateError(err error, id, message string) error {
	if errors.Is(err, parkinglotserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Parking lot", id)
	}
	if errors.Is(err, parkinglotserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid parking lot ID format")
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}
