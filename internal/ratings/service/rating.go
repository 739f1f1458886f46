package service

import (
	"context"
	"errors"

	parkinglotserrors "github.com/Developer-Square/Park254-Backend/internal/parkinglots/errors"
	ratingserrors "github.com/Developer-Square/Park254-Backend/internal/ratings/errors"
	"github.com/Developer-Square/Park254-Backend/internal/ratings/repository"
	"github.com/Developer-Square/Park254-Backend/internal/ratings/validator"
	"github.com/Developer-Square/Park254-Backend/pkg/auth"
	"github.com/Developer-Square/Park254-Backend/pkg/config"
	mongotx "github.com/Developer-Square/Park254-Backend/pkg/db/mongo"
	apperrors "github.com/Developer-Square/Park254-Backend/pkg/errors"
	"github.com/Developer-Square/Park254-Backend/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

type RatingService interface {
	Create(ctx context.Context, actor auth.Principal, rating *model.Rating) error
	GetByID(ctx context.Context, id string) (*model.Rating, error)
	List(ctx context.Context, filter model.RatingFilter, page model.PageOptions) ([]*model.Rating, int64, error)
	Update(ctx context.Context, actor auth.Principal, id string, update *model.RatingUpdate) (*model.Rating, error)
	Delete(ctx context.Context, actor auth.Principal, id string) error
}

// LotRatings is the slice of the parking lot store that keeps the lot's
// aggregated rating in step with the ratings collection.
type LotRatings interface {
	FindByID(ctx context.Context, id string) (*model.ParkingLot, error)
	AdjustRating(ctx context.Context, id string, valueDelta float64, countDelta int) error
}

type ratingService struct {
	repo      repository.RatingRepository
	lots      LotRatings
	validator *validator.RatingValidator
	cfg       *config.Config
}

func NewRatingService(repo repository.RatingRepository, lots LotRatings, validator *validator.RatingValidator, cfg *config.Config) RatingService {
	return &ratingService{
		repo:      repo,
		lots:      lots,
		validator: validator,
		cfg:       cfg,
	}
}

// Create records the actor's rating of a lot and folds it into the lot's
// rating totals in the same transaction. Rating a lot again replaces the
// earlier value and leaves the lot's rating count unchanged.
func (s *ratingService) Create(ctx context.Context, actor auth.Principal, rating *model.Rating) error {
	rating.ID = ""
	rating.UserID = actor.UserID

	if err := s.validator.Validate(rating); err != nil {
		return validationError(err)
	}

	replaced := false
	err := s.repo.ExecuteTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := s.lots.FindByID(sc, rating.ParkingLotID); err != nil {
			return err
		}

		previous, err := s.repo.FindByUserAndLot(sc, rating.UserID, rating.ParkingLotID)
		switch {
		case err == nil:
			updated, err := s.repo.UpdateValue(sc, previous.ID, rating.Value)
			if err != nil {
				return err
			}
			*rating = *updated
			replaced = true
			return s.lots.AdjustRating(sc, rating.ParkingLotID, float64(rating.Value-previous.Value), 0)
		case !errors.Is(err, ratingserrors.ErrNotFound):
			return err
		}

		if err := s.repo.Create(sc, rating); err != nil {
			return err
		}
		return s.lots.AdjustRating(sc, rating.ParkingLotID, float64(rating.Value), 1)
	})
	if err != nil {
		return s.translateError(err, rating.ParkingLotID, "Failed to create rating")
	}

	s.cfg.Log.Info("Rating recorded",
		"id", rating.ID,
		"parking_lot_id", rating.ParkingLotID,
		"user_id", rating.UserID,
		"value", rating.Value,
		"replaced", replaced,
	)
	return nil
}

func (s *ratingService) GetByID(ctx context.Context, id string) (*model.Rating, error) {
	rating, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateError(err, id, "Failed to retrieve rating")
	}
	return rating, nil
}

func (s *ratingService) List(ctx context.Context, filter model.RatingFilter, page model.PageOptions) ([]*model.Rating, int64, error) {
	page.Limit = config.NormalizePaginationLimit(page.Limit)
	page.Page = config.NormalizePage(page.Page)

	ratings, total, err := s.repo.Query(ctx, filter, page)
	if err != nil {
		if errors.Is(err, mongotx.ErrInvalidSort) {
			return nil, 0, apperrors.InvalidInput(err.Error())
		}
		return nil, 0, s.translateError(err, "", "Failed to retrieve ratings")
	}
	return ratings, total, nil
}

// Update changes the value of a rating and shifts the lot's rating total by
// the difference. Only the author or an admin may update.
func (s *ratingService) Update(ctx context.Context, actor auth.Principal, id string, update *model.RatingUpdate) (*model.Rating, error) {
	if err := s.validator.ValidateUpdate(update); err != nil {
		return nil, validationError(err)
	}

	var updated *model.Rating
	err := s.repo.ExecuteTransaction(ctx, func(sc mongo.SessionContext) error {
		previous, err := s.repo.FindByID(sc, id)
		if err != nil {
			return err
		}
		if !actor.CanActFor(previous.UserID) {
			return apperrors.Forbidden("You can only update your own ratings")
		}
		if updated, err = s.repo.UpdateValue(sc, id, *update.Value); err != nil {
			return err
		}
		err = s.lots.AdjustRating(sc, previous.ParkingLotID, float64(updated.Value-previous.Value), 0)
		if errors.Is(err, parkinglotserrors.ErrNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return nil, s.translateError(err, id, "Failed to update rating")
	}

	s.cfg.Log.Info("Rating updated", "id", id, "actor", actor.UserID, "value", updated.Value)
	return updated, nil
}

// Delete removes a rating and takes it back out of the lot's totals. Only the
// author or an admin may delete.
func (s *ratingService) Delete(ctx context.Context, actor auth.Principal, id string) error {
	err := s.repo.ExecuteTransaction(ctx, func(sc mongo.SessionContext) error {
		rating, err := s.repo.FindByID(sc, id)
		if err != nil {
			return err
		}
		if !actor.CanActFor(rating.UserID) {
			return apperrors.Forbidden("You can only delete your own ratings")
		}
		if err := s.repo.Delete(sc, id); err != nil {
			return err
		}
		err = s.lots.AdjustRating(sc, rating.ParkingLotID, -float64(rating.Value), -1)
		if errors.Is(err, parkinglotserrors.ErrNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return s.translateError(err, id, "Failed to delete rating")
	}

	s.cfg.Log.Info("Rating deleted", "id", id, "actor", actor.UserID)
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation("Rating validation failed", verrs.Details())
	}
	return apperrors.Validation("Rating validation failed", map[string]any{"error": err.Error()})
}

func (s *ratingService) translateError(err error, id, message string) error {
	switch {
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, ratingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Rating", id)
	case errors.Is(err, parkinglotserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Parking lot", id)
	case errors.Is(err, ratingserrors.ErrInvalidID), errors.Is(err, parkinglotserrors.ErrInvalidID):
		return apperrors.InvalidInput(err.Error())
	case errors.Is(err, ratingserrors.ErrAlreadyRated):
		return apperrors.Conflict("This parking lot is being rated by another request. Please try again.")
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}
