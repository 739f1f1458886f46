package model

import "time"

const (
	GeoPointType = "Point"
	DefaultCity  = "Nairobi"
)

// GeoPoint is a GeoJSON point. Coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string    `json:"type" bson:"type" validate:"required,eq=Point"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates" validate:"required,len=2,lng_lat"`
}

func NewGeoPoint(longitude, latitude float64) GeoPoint {
	return GeoPoint{Type: GeoPointType, Coordinates: []float64{longitude, latitude}}
}

type ParkingLot struct {
	ID              string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name            string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Spaces          int       `json:"spaces" bson:"spaces" validate:"required,min=1"`
	AvailableSpaces int       `json:"availableSpaces" bson:"available_spaces" validate:"min=0,ltefield=Spaces"`
	Images          []string  `json:"images,omitempty" bson:"images,omitempty" validate:"omitempty,dive,url"`
	Location        GeoPoint  `json:"location" bson:"location" validate:"required"`
	Owner           string    `json:"owner" bson:"owner" validate:"required,mongodb"`
	Price           float64   `json:"price" bson:"price" validate:"required,gte=1"`
	RatingValue     float64   `json:"ratingValue" bson:"rating_value"`
	RatingCount     int       `json:"ratingCount" bson:"rating_count"`
	City            string    `json:"city" bson:"city" validate:"required,min=2,max=50"`
	Address         string    `json:"address" bson:"address" validate:"required,min=2,max=200"`
	CreatedAt       time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" bson:"updated_at"`
}

type ParkingLotUpdate struct {
	Name     *string   `json:"name,omitempty" bson:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Spaces   *int      `json:"spaces,omitempty" bson:"spaces,omitempty" validate:"omitempty,min=1"`
	Images   *[]string `json:"images,omitempty" bson:"images,omitempty" validate:"omitempty,dive,url"`
	Location *GeoPoint `json:"location,omitempty" bson:"location,omitempty"`
	Price    *float64  `json:"price,omitempty" bson:"price,omitempty" validate:"omitempty,gte=1"`
	City     *string   `json:"city,omitempty" bson:"city,omitempty" validate:"omitempty,min=2,max=50"`
	Address  *string   `json:"address,omitempty" bson:"address,omitempty" validate:"omitempty,min=2,max=200"`
}

type ParkingLotFilter struct {
	Name  string
	Owner string
	City  string
}

type NearbyQuery struct {
	Longitude     float64
	Latitude      float64
	MaxDistanceKm float64
}
