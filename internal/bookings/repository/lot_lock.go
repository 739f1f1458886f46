package repository

import (
	"context"
	"fmt"
	"time"

	bookingserrors "github.com/Developer-Square/Park254-Backend/internal/bookings/errors"
	"github.com/Developer-Square/Park254-Backend/pkg/config"
	"github.com/Developer-Square/Park254-Backend/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const LockCollectionName = "Booking_locks"

// LotLockRepository stores advisory lock documents keyed by lock id.
type LotLockRepository interface {
	Create(ctx context.Context, lock *model.LotLock) error
	Delete(ctx context.Context, lockID, owner string) error
}

type mongoLotLockRepository struct {
	collection *mongo.Collection
}

func NewLotLockRepository(cfg *config.Config) LotLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoLotLockRepository{
		collection: db.Collection(LockCollectionName),
	}
}

// Create inserts the lock. An expired lock left by a crashed holder is
// replaced; a live one yields ErrLockHeld.
func (r *mongoLotLockRepository) Create(ctx context.Context, lock *model.LotLock) error {
	now := time.Now().UTC()
	lock.CreatedAt = now

	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lock.ID, "expires_at": bson.M{"$lte": now}})
	if err != nil {
		return fmt.Errorf("failed to clear expired lot lock: %w", err)
	}

	_, err = r.collection.InsertOne(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return bookingserrors.ErrLockHeld
		}
		return fmt.Errorf("failed to create lot lock: %w", err)
	}
	return nil
}

// Delete removes the lock only when owner still holds it.
func (r *mongoLotLockRepository) Delete(ctx context.Context, lockID, owner string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID, "owner": owner})
	if err != nil {
		return fmt.Errorf("failed to delete lot lock: %w", err)
	}
	if result.DeletedCount == 0 {
		return bookingserrors.ErrLockNotOwned
	}
	return nil
}
