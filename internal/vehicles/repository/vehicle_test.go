package repository

import (
	"testing"

	vehicleserrors "github.com/Developer-Square/Park254-Backend/internal/vehicles/errors"
	"github.com/Developer-Square/Park254-Backend/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuildFilter(t *testing.T) {
	owner := primitive.NewObjectID()

	got, err := buildFilter(model.VehicleFilter{Plate: "KLZ 675K", Owner: owner.Hex()})
	require.NoError(t, err)
	assert.Equal(t, bson.M{"plate": "KLZ 675K", "owner": owner}, got)

	_, err = buildFilter(model.VehicleFilter{Owner: "someone"})
	assert.ErrorIs(t, err, vehicleserrors.ErrInvalidID)
}

func TestBuildUpdate(t *testing.T) {
	owner := primitive.NewObjectID()
	plate, ownerHex := "KCA 123A", owner.Hex()

	got, err := buildUpdate(&model.VehicleUpdate{Plate: &plate, Owner: &ownerHex})
	require.NoError(t, err)
	assert.Equal(t, bson.M{"plate": plate, "owner": owner}, got)

	bad := "nope"
	_, err = buildUpdate(&model.VehicleUpdate{Owner: &bad})
	assert.ErrorIs(t, err, vehicleserrors.ErrInvalidID)
}

func TestToDocument(t *testing.T) {
	vehicle := &model.Vehicle{Model: "Toyota Axio", Plate: "KCA 123A", Owner: primitive.NewObjectID().Hex()}
	doc, err := toDocument(vehicle)
	require.NoError(t, err)
	doc.ID = primitive.NewObjectID()

	back := doc.toModel()
	assert.Equal(t, doc.ID.Hex(), back.ID)
	assert.Equal(t, vehicle.Owner, back.Owner)
	assert.Equal(t, vehicle.Plate, back.Plate)

	_, err = toDocument(&model.Vehicle{Owner: "x"})
	assert.ErrorIs(t, err, vehicleserrors.ErrInvalidID)
}
