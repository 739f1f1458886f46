package model

import (
	"time"
)

type Booking struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ParkingLotID string    `json:"parkingLotId" bson:"parking_lot_id" validate:"required,mongodb"`
	ClientID     string    `json:"clientId" bson:"client_id" validate:"required,mongodb"`
	EntryTime    time.Time `json:"entryTime" bson:"entry_time" validate:"required"`
	ExitTime     time.Time `json:"exitTime" bson:"exit_time" validate:"required"`
	Spaces       int       `json:"spaces" bson:"spaces" validate:"required,min=1"`
	IsCancelled  bool      `json:"isCancelled" bson:"is_cancelled"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updated_at"`
}

// BookingUpdate is a partial patch. Nil fields keep their stored value.
type BookingUpdate struct {
	ParkingLotID *string    `json:"parkingLotId,omitempty" bson:"parking_lot_id,omitempty" validate:"omitempty,mongodb"`
	EntryTime    *time.Time `json:"entryTime,omitempty" bson:"entry_time,omitempty"`
	ExitTime     *time.Time `json:"exitTime,omitempty" bson:"exit_time,omitempty"`
	Spaces       *int       `json:"spaces,omitempty" bson:"spaces,omitempty" validate:"omitempty,min=1"`
}

func (u *BookingUpdate) IsEmpty() bool {
	return u.ParkingLotID == nil && u.EntryTime == nil && u.ExitTime == nil && u.Spaces == nil
}

// Apply returns a copy of b with the patch merged in.
func (u *BookingUpdate) Apply(b Booking) Booking {
	if u.ParkingLotID != nil {
		b.ParkingLotID = *u.ParkingLotID
	}
	if u.EntryTime != nil {
		b.EntryTime = *u.EntryTime
	}
	if u.ExitTime != nil {
		b.ExitTime = *u.ExitTime
	}
	if u.Spaces != nil {
		b.Spaces = *u.Spaces
	}
	return b
}

type BookingFilter struct {
	ParkingLotID string
	ClientID     string
	IsCancelled  *bool
}

type BookingPage struct {
	Results      []*Booking `json:"results"`
	Page         int        `json:"page"`
	Limit        int        `json:"limit"`
	TotalPages   int        `json:"totalPages"`
	TotalResults int64      `json:"totalResults"`
}

// SpacesQuery asks for occupancy across several lots for one window.
type SpacesQuery struct {
	ParkingLots []string  `json:"parkingLots" validate:"required,min=1,dive,mongodb"`
	EntryTime   time.Time `json:"entryTime" validate:"required"`
	ExitTime    time.Time `json:"exitTime" validate:"required"`
}

type LotAvailability struct {
	ParkingLotID    string `json:"parkingLotId"`
	TotalSpaces     int    `json:"totalSpaces"`
	OccupiedSpaces  int    `json:"occupiedSpaces"`
	AvailableSpaces int    `json:"availableSpaces"`
	Available       bool   `json:"available"`
}
