package model

import "time"

type Vehicle struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Model     string    `json:"model" bson:"model" validate:"required,min=1,max=100"`
	Plate     string    `json:"plate" bson:"plate" validate:"required,min=2,max=20"`
	Owner     string    `json:"owner" bson:"owner" validate:"required,mongodb"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

type VehicleUpdate struct {
	Model *string `json:"model,omitempty" validate:"omitempty,min=1,max=100"`
	Plate *string `json:"plate,omitempty" validate:"omitempty,min=2,max=20"`
	Owner *string `json:"owner,omitempty" validate:"omitempty,mongodb"`
}

type VehicleFilter struct {
	Plate string
	Owner string
}
