package repository

import (
	"fmt"
	"time"

	parkinglotserrors "github.com/Developer-Square/Park254-Backend/internal/parkinglots/errors"
	"github.com/Developer-Square/Park254-Backend/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type lotDocument struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Name            string             `bson:"name"`
	Spaces          int                `bson:"spaces"`
	AvailableSpaces int                `bson:"available_spaces"`
	Images          []string           `bson:"images,omitempty"`
	Location        model.GeoPoint     `bson:"location"`
	Owner           primitive.ObjectID `bson:"owner"`
	Price           float64            `bson:"price"`
	RatingValue     float64            `bson:"rating_value"`
	RatingCount     int                `bson:"rating_count"`
	City            string             `bson:"city"`
	Address         string             `bson:"address"`
	CreatedAt       time.Time          `bson:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at"`
}

func toDocument(lot *model.ParkingLot) (*lotDocument, error) {
	owner, err := primitive.ObjectIDFromHex(lot.Owner)
	if err != nil {
		return nil, fmt.Errorf("%w: owner %s", parkinglotserrors.ErrInvalidID, lot.Owner)
	}
	return &lotDocument{
		Name:            lot.Name,
		Spaces:          lot.Spaces,
		AvailableSpaces: lot.AvailableSpaces,
		Images:          lot.Images,
		Location:        lot.Location,
		Owner:           owner,
		Price:           lot.Price,
		RatingValue:     lot.RatingValue,
		RatingCount:     lot.RatingCount,
		City:            lot.City,
		Address:         lot.Address,
		CreatedAt:       lot.CreatedAt,
		UpdatedAt:       lot.UpdatedAt,
	}, nil
}

func (d *lotDocument) toModel() *model.ParkingLot {
	return &model.ParkingLot{
		ID:              d.ID.Hex(),
		Name:            d.Name,
		Spaces:          d.Spaces,
		AvailableSpaces: d.AvailableSpaces,
		Images:          d.Images,
		Location:        d.Location,
		Owner:           d.Owner.Hex(),
		Price:           d.Price,
		RatingValue:     d.RatingValue,
		RatingCount:     d.RatingCount,
		City:            d.City,
		Address:         d.Address,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}
