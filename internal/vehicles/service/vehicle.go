package service

import (
	"context"
	"errors"

	vehicleserrors "github.com/Developer-Square/Park254-Backend/internal/vehicles/errors"
	"github.com/Developer-Square/Park254-Backend/internal/vehicles/repository"
	"github.com/Developer-Square/Park254-Backend/internal/vehicles/validator"
	"github.com/Developer-Square/Park254-Backend/pkg/auth"
	"github.com/Developer-Square/Park254-Backend/pkg/config"
	mongotx "github.com/Developer-Square/Park254-Backend/pkg/db/mongo"
	apperrors "github.com/Developer-Square/Park254-Backend/pkg/errors"
	"github.com/Developer-Square/Park254-Backend/pkg/model"
	"github.com/Developer-Square/Park254-Backend/pkg/sanitizer"
)

type VehicleService interface {
	Create(ctx context.Context, actor auth.Principal, vehicle *model.Vehicle) error
	GetByID(ctx context.Context, actor auth.Principal, id string) (*model.Vehicle, error)
	List(ctx context.Context, actor auth.Principal, filter model.VehicleFilter, page model.PageOptions) ([]*model.Vehicle, int64, error)
	Update(ctx context.Context, actor auth.Principal, id string, update *model.VehicleUpdate) (*model.Vehicle, error)
	Delete(ctx context.Context, actor auth.Principal, id string) error
}

// UserDirectory confirms that a vehicle owner exists.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

type vehicleService struct {
	repo      repository.VehicleRepository
	users     UserDirectory
	validator *validator.VehicleValidator
	cfg       *config.Config
}

func NewVehicleService(
	repo repository.VehicleRepository,
	users UserDirectory,
	validator *validator.VehicleValidator,
	cfg *config.Config,
) VehicleService {
	return &vehicleService{
		repo:      repo,
		users:     users,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *vehicleService) Create(ctx context.Context, actor auth.Principal, vehicle *model.Vehicle) error {
	vehicle.ID = ""
	if vehicle.Owner == "" {
		vehicle.Owner = actor.UserID
	}
	if !actor.CanActFor(vehicle.Owner) {
		return apperrors.Forbidden("You can only register vehicles you own")
	}

	vehicle.Plate = sanitizer.SanitizePlate(vehicle.Plate)
	vehicle.Model = sanitizer.SanitizeNameOrAddress(vehicle.Model)
	if err := s.validator.Validate(vehicle); err != nil {
		return s.validationError("Vehicle validation failed", err)
	}
	if _, err := s.users.GetByID(ctx, vehicle.Owner); err != nil {
		return err
	}
	if err := s.ensureUniquePlate(ctx, vehicle.Plate, ""); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, vehicle); err != nil {
		return s.translateError(err, "", "Failed to create vehicle")
	}

	s.cfg.Log.Info("Vehicle registered successfully",
		"id", vehicle.ID,
		"plate", vehicle.Plate,
		"owner", vehicle.Owner,
	)
	return nil
}

// GetByID returns a vehicle to its owner or an admin.
func (s *vehicleService) GetByID(ctx context.Context, actor auth.Principal, id string) (*model.Vehicle, error) {
	vehicle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateError(err, id, "Failed to retrieve vehicle")
	}
	if !actor.CanActFor(vehicle.Owner) {
		return nil, apperrors.Forbidden("You are not allowed to view this vehicle")
	}
	return vehicle, nil
}

// List pages through vehicles. Callers other than admins only ever see their
// own vehicles.
func (s *vehicleService) List(ctx context.Context, actor auth.Principal, filter model.VehicleFilter, page model.PageOptions) ([]*model.Vehicle, int64, error) {
	if !actor.IsAdmin() {
		if filter.Owner != "" && filter.Owner != actor.UserID {
			return nil, 0, apperrors.Forbidden("You can only list your own vehicles")
		}
		filter.Owner = actor.UserID
	}
	filter.Plate = sanitizer.SanitizePlate(filter.Plate)
	page.Limit = config.NormalizePaginationLimit(page.Limit)
	page.Page = config.NormalizePage(page.Page)

	vehicles, total, err := s.repo.Query(ctx, filter, page)
	if err != nil {
		if errors.Is(err, mongotx.ErrInvalidSort) {
			return nil, 0, apperrors.InvalidInput(err.Error())
		}
		return nil, 0, s.translateError(err, "", "Failed to retrieve vehicles")
	}
	return vehicles, total, nil
}

func (s *vehicleService) Update(ctx context.Context, actor auth.Principal, id string, update *model.VehicleUpdate) (*model.Vehicle, error) {
	existing, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if update.Plate != nil {
		*update.Plate = sanitizer.SanitizePlate(*update.Plate)
	}
	if update.Model != nil {
		*update.Model = sanitizer.SanitizeNameOrAddress(*update.Model)
	}
	if err := s.validator.ValidateUpdate(update); err != nil {
		return nil, s.validationError("Invalid update input", err)
	}
	if update.Owner != nil && *update.Owner != existing.Owner {
		if _, err := s.users.GetByID(ctx, *update.Owner); err != nil {
			return nil, err
		}
	}
	if update.Plate != nil && *update.Plate != existing.Plate {
		if err := s.ensureUniquePlate(ctx, *update.Plate, id); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.Update(ctx, id, update)
	if err != nil {
		return nil, s.translateError(err, id, "Failed to update vehicle")
	}

	s.cfg.Log.Info("Vehicle updated successfully", "id", id, "plate", updated.Plate, "owner", updated.Owner)
	return updated, nil
}

func (s *vehicleService) Delete(ctx context.Context, actor auth.Principal, id string) error {
	if _, err := s.GetByID(ctx, actor, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.translateError(err, id, "Failed to delete vehicle")
	}

	s.cfg.Log.Info("Vehicle deleted successfully", "id", id, "actor", actor.UserID)
	return nil
}

func (s *vehicleService) ensureUniquePlate(ctx context.Context, plate, excludeID string) error {
	taken, err := s.repo.ExistsByPlate(ctx, plate, excludeID)
	if err != nil {
		return s.translateError(err, excludeID, "Failed to check number plate")
	}
	if taken {
		return apperrors.Conflict("Number plate already taken")
	}
	return nil
}

func (s *vehicleService) validationError(message string, err error) error {
	s.cfg.Log.Warn(message, "error", err)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}

func (s *vehicleService) translateError(err error, id, message string) error {
	switch {
	case errors.Is(err, vehicleserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Vehicle", id)
	case errors.Is(err, vehicleserrors.ErrInvalidID):
		return apperrors.InvalidInput(err.Error())
	case errors.Is(err, vehicleserrors.ErrDuplicatePlate):
		return apperrors.Conflict("Number plate already taken")
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}
