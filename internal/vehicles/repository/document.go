package repository

import (
	"fmt"
	"time"

	vehicleserrors "github.com/Developer-Square/Park254-Backend/internal/vehicles/errors"
	"github.com/Developer-Square/Park254-Backend/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type vehicleDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Model     string             `bson:"model"`
	Plate     string             `bson:"plate"`
	Owner     primitive.ObjectID `bson:"owner"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func toDocument(vehicle *model.Vehicle) (*vehicleDocument, error) {
	owner, err := primitive.ObjectIDFromHex(vehicle.Owner)
	if err != nil {
		return nil, fmt.Errorf("%w: owner %s", vehicleserrors.ErrInvalidID, vehicle.Owner)
	}
	return &vehicleDocument{
		Model:     vehicle.Model,
		Plate:     vehicle.Plate,
		Owner:     owner,
		CreatedAt: vehicle.CreatedAt,
		UpdatedAt: vehicle.UpdatedAt,
	}, nil
}

func (d *vehicleDocument) toModel() *model.Vehicle {
	return &model.Vehicle{
		ID:        d.ID.Hex(),
		Model:     d.Model,
		Plate:     d.Plate,
		Owner:     d.Owner.Hex(),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
