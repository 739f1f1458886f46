package model

import "time"

type Rating struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID       string    `json:"userId" bson:"user_id" validate:"required,mongodb"`
	ParkingLotID string    `json:"parkingLotId" bson:"parking_lot_id" validate:"required,mongodb"`
	Value        int       `json:"value" bson:"value" validate:"required,min=1,max=5"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
}

type RatingFilter struct {
	ParkingLotID string
	UserID       string
}

type RatingUpdate struct {
	Value *int `json:"value" validate:"required,min=1,max=5"`
}
