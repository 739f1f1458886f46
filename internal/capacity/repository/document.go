package repository

import (
	"time"

	"github.com/Developer-Square/Park254-Backend/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type jobDocument struct {
	ID             primitive.ObjectID `bson:"_id"`
	PairID         string             `bson:"pair_id"`
	BookingID      string             `bson:"booking_id"`
	ParkingLotID   string             `bson:"parking_lot_id"`
	Spaces         int                `bson:"spaces"`
	Direction      string             `bson:"direction"`
	FiresAt        time.Time          `bson:"fires_at"`
	Status         string             `bson:"status"`
	Token          string             `bson:"token,omitempty"`
	LeaseExpiresAt *time.Time         `bson:"lease_expires_at,omitempty"`
	Attempts       int                `bson:"attempts"`
	LastError      string             `bson:"last_error,omitempty"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`
	CompletedAt    *time.Time         `bson:"completed_at,omitempty"`
}

func newJobDocument(j *model.CapacityJob) *jobDocument {
	return &jobDocument{
		ID:           primitive.NewObjectID(),
		PairID:       j.PairID,
		BookingID:    j.BookingID,
		ParkingLotID: j.ParkingLotID,
		Spaces:       j.Spaces,
		Direction:    j.Direction,
		FiresAt:      j.FiresAt.UTC(),
		Status:       j.Status,
		Attempts:     j.Attempts,
		CreatedAt:    j.CreatedAt,
		UpdatedAt:    j.UpdatedAt,
	}
}

func (d *jobDocument) toModel() *model.CapacityJob {
	return &model.CapacityJob{
		ID:             d.ID.Hex(),
		PairID:         d.PairID,
		BookingID:      d.BookingID,
		ParkingLotID:   d.ParkingLotID,
		Spaces:         d.Spaces,
		Direction:      d.Direction,
		FiresAt:        d.FiresAt,
		Status:         d.Status,
		Token:          d.Token,
		LeaseExpiresAt: d.LeaseExpiresAt,
		Attempts:       d.Attempts,
		LastError:      d.LastError,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
		CompletedAt:    d.CompletedAt,
	}
}
