package mongo

import (
	"context"
	"fmt"

	bookingrepo "github.com/Developer-Square/Park254-Backend/internal/bookings/repository"
	capacityrepo "github.com/Developer-Square/Park254-Backend/internal/capacity/repository"
	"github.com/Developer-Square/Park254-Backend/internal/migrations/mongo/validators"
	lotrepo "github.com/Developer-Square/Park254-Backend/internal/parkinglots/repository"
	ratingrepo "github.com/Developer-Square/Park254-Backend/internal/ratings/repository"
	vehiclerepo "github.com/Developer-Square/Park254-Backend/internal/vehicles/repository"
	"github.com/Developer-Square/Park254-Backend/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ParkingLotIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "owner", Value: 1}}},
		{Keys: bson.D{{Key: "city", Value: 1}}},
	}

	BookingIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "parking_lot_id", Value: 1},
			{Key: "entry_time", Value: 1},
			{Key: "exit_time", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "client_id", Value: 1},
			{Key: "created_at", Value: -1},
		}},
	}

	CapacityJobIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "status", Value: 1},
			{Key: "fires_at", Value: 1},
		}},
		{Keys: bson.D{{Key: "booking_id", Value: 1}}},
		{Keys: bson.D{{Key: "pair_id", Value: 1}}},
	}

	RatingIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "parking_lot_id", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "parking_lot_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	VehicleIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "plate", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "created_at", Value: 1}}},
	}

	// Expired lot locks are reaped by Mongo once expires_at passes.
	LotLockIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
)

type collectionDef struct {
	Indexes   []mongo.IndexModel
	Validator bson.M
}

func collections() map[string]collectionDef {
	return map[string]collectionDef{
		lotrepo.CollectionName: {
			Indexes:   ParkingLotIndexes,
			Validator: validators.ParkingLotValidator,
		},
		bookingrepo.CollectionName: {
			Indexes:   BookingIndexes,
			Validator: validators.BookingValidator,
		},
		capacityrepo.CollectionName: {
			Indexes:   CapacityJobIndexes,
			Validator: validators.CapacityJobValidator,
		},
		ratingrepo.CollectionName: {
			Indexes:   RatingIndexes,
			Validator: validators.RatingValidator,
		},
		vehiclerepo.CollectionName: {
			Indexes:   VehicleIndexes,
			Validator: validators.VehicleValidator,
		},
		bookingrepo.LockCollectionName: {
			Indexes: LotLockIndexes,
		},
	}
}

func RunMigration(ctx context.Context, client *mongo.Client, dbName string, log *logger.Logger) error {
	db := client.Database(dbName)
	log.Info("Running Mongo migrations", "database", dbName)

	for name, def := range collections() {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
		log.Info("Ensured indexes", "collection", name, "count", len(def.Indexes))
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection()
		if validator != nil {
			opts.SetValidator(validator)
		}
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	if validator == nil {
		return nil
	}
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel) error {
	if len(models) == 0 {
		return nil
	}
	_, err := db.Collection(name).Indexes().CreateMany(ctx, models)
	return err
}
