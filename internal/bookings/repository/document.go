package repository

import (
	"fmt"
	"time"

	bookingserrors "github.com/Developer-Square/Park254-Backend/internal/bookings/errors"
	"github.com/Developer-Square/Park254-Backend/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// bookingDocument is the stored shape of a booking. References are kept as
// ObjectIDs so they can be matched and joined server side.
type bookingDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	ParkingLotID primitive.ObjectID `bson:"parking_lot_id"`
	ClientID     primitive.ObjectID `bson:"client_id"`
	EntryTime    time.Time          `bson:"entry_time"`
	ExitTime     time.Time          `bson:"exit_time"`
	Spaces       int                `bson:"spaces"`
	IsCancelled  bool               `bson:"is_cancelled"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func toDocument(b *model.Booking) (*bookingDocument, error) {
	lotID, err := primitive.ObjectIDFromHex(b.ParkingLotID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, b.ParkingLotID)
	}
	clientID, err := primitive.ObjectIDFromHex(b.ClientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, b.ClientID)
	}

	doc := &bookingDocument{
		ParkingLotID: lotID,
		ClientID:     clientID,
		EntryTime:    b.EntryTime.UTC(),
		ExitTime:     b.ExitTime.UTC(),
		Spaces:       b.Spaces,
		IsCancelled:  b.IsCancelled,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
	if b.ID != "" {
		id, err := primitive.ObjectIDFromHex(b.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, b.ID)
		}
		doc.ID = id
	}
	return doc, nil
}

func (d *bookingDocument) toModel() *model.Booking {
	return &model.Booking{
		ID:           d.ID.Hex(),
		ParkingLotID: d.ParkingLotID.Hex(),
		ClientID:     d.ClientID.Hex(),
		EntryTime:    d.EntryTime,
		ExitTime:     d.ExitTime,
		Spaces:       d.Spaces,
		IsCancelled:  d.IsCancelled,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}
