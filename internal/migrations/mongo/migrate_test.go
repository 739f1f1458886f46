package mongo

import (
	"testing"

	bookingrepo "github.com/Developer-Square/Park254-Backend/internal/bookings/repository"
	lotrepo "github.com/Developer-Square/Park254-Backend/internal/parkinglots/repository"
	ratingrepo "github.com/Developer-Square/Park254-Backend/internal/ratings/repository"
	vehiclerepo "github.com/Developer-Square/Park254-Backend/internal/vehicles/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func findIndex(models []mongo.IndexModel, first string) *mongo.IndexModel {
	for i := range models {
		keys, ok := models[i].Keys.(bson.D)
		if ok && len(keys) > 0 && keys[0].Key == first {
			return &models[i]
		}
	}
	return nil
}

func TestCollections_CoverEveryStore(t *testing.T) {
	defs := collections()
	assert.Len(t, defs, 6)

	for name, def := range defs {
		assert.NotEmpty(t, def.Indexes, "collection %s has no indexes", name)
	}
	assert.Nil(t, defs[bookingrepo.LockCollectionName].Validator)
	assert.NotNil(t, defs[lotrepo.CollectionName].Validator)
}

func TestParkingLotIndexes(t *testing.T) {
	geo := findIndex(ParkingLotIndexes, "location")
	require.NotNil(t, geo)
	assert.Equal(t, "2dsphere", geo.Keys.(bson.D)[0].Value)

	name := findIndex(ParkingLotIndexes, "name")
	require.NotNil(t, name)
	require.NotNil(t, name.Options)
	assert.True(t, *name.Options.Unique)
}

func TestLotLockIndexExpires(t *testing.T) {
	idx := findIndex(LotLockIndexes, "expires_at")
	require.NotNil(t, idx)
	require.NotNil(t, idx.Options.ExpireAfterSeconds)
	assert.EqualValues(t, 0, *idx.Options.ExpireAfterSeconds)
}

func TestRatingIndexIsUniquePerUserAndLot(t *testing.T) {
	idx := findIndex(collections()[ratingrepo.CollectionName].Indexes, "user_id")
	require.NotNil(t, idx)
	assert.Equal(t, "parking_lot_id", idx.Keys.(bson.D)[1].Key)
	assert.True(t, *idx.Options.Unique)
}

func TestVehiclePlateIsUnique(t *testing.T) {
	def := collections()[vehiclerepo.CollectionName]
	require.NotNil(t, def.Validator)

	idx := findIndex(def.Indexes, "plate")
	require.NotNil(t, idx)
	require.NotNil(t, idx.Options)
	assert.True(t, *idx.Options.Unique)
}
