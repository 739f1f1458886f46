package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	vehicleserrors "github.com/Developer-Square/Park254-Backend/internal/vehicles/errors"
	"github.com/Developer-Square/Park254-Backend/pkg/config"
	mongotx "github.com/Developer-Square/Park254-Backend/pkg/db/mongo"
	"github.com/Developer-Square/Park254-Backend/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

const (
	CollectionName = "Vehicles"

	DefaultSort = "createdAt:asc"
)

var sortFields = map[string]string{
	"plate":     "plate",
	"model":     "model",
	"createdAt": "created_at",
}

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *model.Vehicle) error
	FindByID(ctx context.Context, id string) (*model.Vehicle, error)
	ExistsByPlate(ctx context.Context, plate, excludeID string) (bool, error)
	Query(ctx context.Context, filter model.VehicleFilter, page model.PageOptions) ([]*model.Vehicle, int64, error)
	Update(ctx context.Context, id string, update *model.VehicleUpdate) (*model.Vehicle, error)
	Delete(ctx context.Context, id string) error
}

type mongoVehicleRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoVehicleRepository(cfg *config.Config) VehicleRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoVehicleRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoVehicleRepository) Create(ctx context.Context, vehicle *model.Vehicle) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	vehicle.CreatedAt = now
	vehicle.UpdatedAt = now

	doc, err := toDocument(vehicle)
	if err != nil {
		return err
	}
	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return vehicleserrors.ErrDuplicatePlate
		}
		return fmt.Errorf("failed to create vehicle: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		vehicle.ID = oid.Hex()
	}
	return nil
}

func (r *mongoVehicleRepository) FindByID(ctx context.Context, id string) (*model.Vehicle, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", vehicleserrors.ErrInvalidID, id)
	}

	var doc vehicleDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", vehicleserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find vehicle: %w", err)
	}
	return doc.toModel(), nil
}

func (r *mongoVehicleRepository) ExistsByPlate(ctx context.Context, plate, excludeID string) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"plate": plate}
	if excludeID != "" {
		oid, err := primitive.ObjectIDFromHex(excludeID)
		if err != nil {
			return false, fmt.Errorf("%w: %s", vehicleserrors.ErrInvalidID, excludeID)
		}
		filter["_id"] = bson.M{"$ne": oid}
	}

	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check number plate: %w", err)
	}
	return count > 0, nil
}

func (r *mongoVehicleRepository) Query(ctx context.Context, filter model.VehicleFilter, page model.PageOptions) ([]*model.Vehicle, int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	query, err := buildFilter(filter)
	if err != nil {
		return nil, 0, err
	}
	sort, err := mongotx.ParseSort(page.SortBy, sortFields, DefaultSort)
	if err != nil {
		return nil, 0, err
	}

	var (
		total    int64
		vehicles []*model.Vehicle
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		count, err := r.collection.CountDocuments(gctx, query)
		if err != nil {
			return fmt.Errorf("failed to count vehicles: %w", err)
		}
		total = count
		return nil
	})
	g.Go(func() error {
		opts := options.Find().SetSort(sort).SetLimit(int64(page.Limit)).SetSkip(page.Skip())
		cursor, err := r.collection.Find(gctx, query, opts)
		if err != nil {
			return fmt.Errorf("failed to find vehicles: %w", err)
		}
		defer cursor.Close(gctx)

		var docs []vehicleDocument
		if err := cursor.All(gctx, &docs); err != nil {
			return fmt.Errorf("failed to decode vehicles: %w", err)
		}
		vehicles = make([]*model.Vehicle, 0, len(docs))
		for i := range docs {
			vehicles = append(vehicles, docs[i].toModel())
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return vehicles, total, nil
}

func (r *mongoVehicleRepository) Update(ctx context.Context, id string, update *model.VehicleUpdate) (*model.Vehicle, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", vehicleserrors.ErrInvalidID, id)
	}

	set, err := buildUpdate(update)
	if err != nil {
		return nil, err
	}
	set["updated_at"] = time.Now().UTC().Truncate(time.Millisecond)

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc vehicleDocument
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", vehicleserrors.ErrNotFound, id)
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, vehicleserrors.ErrDuplicatePlate
		}
		return nil, fmt.Errorf("failed to update vehicle: %w", err)
	}
	return doc.toModel(), nil
}

func (r *mongoVehicleRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", vehicleserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete vehicle: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", vehicleserrors.ErrNotFound, id)
	}
	return nil
}

func buildFilter(filter model.VehicleFilter) (bson.M, error) {
	query := bson.M{}
	if filter.Plate != "" {
		query["plate"] = filter.Plate
	}
	if filter.Owner != "" {
		oid, err := primitive.ObjectIDFromHex(filter.Owner)
		if err != nil {
			return nil, fmt.Errorf("%w: owner %s", vehicleserrors.ErrInvalidID, filter.Owner)
		}
		query["owner"] = oid
	}
	return query, nil
}

func buildUpdate(update *model.VehicleUpdate) (bson.M, error) {
	set := bson.M{}
	if update.Model != nil {
		set["model"] = *update.Model
	}
	if update.Plate != nil {
		set["plate"] = *update.Plate
	}
	if update.Owner != nil {
		oid, err := primitive.ObjectIDFromHex(*update.Owner)
		if err != nil {
			return nil, fmt.Errorf("%w: owner %s", vehicleserrors.ErrInvalidID, *update.Owner)
		}
		set["owner"] = oid
	}
	return set, nil
}
