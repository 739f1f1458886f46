package repository

import (
	"fmt"
	"time"

	ratingserrors "github.com/Developer-Square/Park254-Backend/internal/ratings/errors"
	"github.com/Developer-Square/Park254-Backend/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ratingDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	UserID       primitive.ObjectID `bson:"user_id"`
	ParkingLotID primitive.ObjectID `bson:"parking_lot_id"`
	Value        int                `bson:"value"`
	CreatedAt    time.Time          `bson:"created_at"`
}

func toDocument(rating *model.Rating) (*ratingDocument, error) {
	userID, err := primitive.ObjectIDFromHex(rating.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: user %s", ratingserrors.ErrInvalidID, rating.UserID)
	}
	lotID, err := primitive.ObjectIDFromHex(rating.ParkingLotID)
	if err != nil {
		return nil, fmt.Errorf("%w: parking lot %s", ratingserrors.ErrInvalidID, rating.ParkingLotID)
	}
	return &ratingDocument{
		UserID:       userID,
		ParkingLotID: lotID,
		Value:        rating.Value,
		CreatedAt:    rating.CreatedAt,
	}, nil
}

func (d *ratingDocument) toModel() *model.Rating {
	return &model.Rating{
		ID:           d.ID.Hex(),
		UserID:       d.UserID.Hex(),
		ParkingLotID: d.ParkingLotID.Hex(),
		Value:        d.Value,
		CreatedAt:    d.CreatedAt,
	}
}
