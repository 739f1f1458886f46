package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	parkinglotserrors "github.com/Developer-Square/Park254-Backend/internal/parkinglots/errors"
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
	CollectionName = "Parking_lots"

	DefaultSort = "createdAt:desc"

	metersPerKm = 1000
)

var sortFields = map[string]string{
	"name":        "name",
	"price":       "price",
	"spaces":      "spaces",
	"ratingValue": "rating_value",
	"createdAt":   "created_at",
}

type ParkingLotRepository interface {
	Create(ctx context.Context, lot *model.ParkingLot) error
	FindByID(ctx context.Context, id string) (*model.ParkingLot, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.ParkingLot, error)
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)
	Query(ctx context.Context, filter model.ParkingLotFilter, page model.PageOptions) ([]*model.ParkingLot, int64, error)
	Update(ctx context.Context, id string, update *model.ParkingLotUpdate) (*model.ParkingLot, error)
	Delete(ctx context.Context, id string) error
	Nearby(ctx context.Context, query model.NearbyQuery, limit int) ([]*model.ParkingLot, error)
	AdjustAvailableSpaces(ctx context.Context, id string, delta int) (*model.ParkingLot, error)
	AdjustRating(ctx context.Context, id string, valueDelta float64, countDelta int) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoParkingLotRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoParkingLotRepository(cfg *config.Config) ParkingLotRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoParkingLotRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoParkingLotRepository) Create(ctx context.Context, lot *model.ParkingLot) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	lot.CreatedAt = now
	lot.UpdatedAt = now

	doc, err := toDocument(lot)
	if err != nil {
		return err
	}
	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return parkinglotserrors.ErrDuplicateName
		}
		return fmt.Errorf("failed to create parking lot: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		lot.ID = oid.Hex()
	}
	return nil
}

func (r *mongoParkingLotRepository) FindByID(ctx context.Context, id string) (*model.ParkingLot, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", parkinglotserrors.ErrInvalidID, id)
	}

	var doc lotDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", parkinglotserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find parking lot: %w", err)
	}
	return doc.toModel(), nil
}

// FindByIDs returns the lots that exist among ids. Missing ids are skipped.
func (r *mongoParkingLotRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.ParkingLot, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", parkinglotserrors.ErrInvalidID, id)
		}
		oids = append(oids, oid)
	}

	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}}, options.Find())
}

func (r *mongoParkingLotRepository) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"name": name}
	if excludeID != "" {
		oid, err := primitive.ObjectIDFromHex(excludeID)
		if err != nil {
			return false, fmt.Errorf("%w: %s", parkinglotserrors.ErrInvalidID, excludeID)
		}
		filter["_id"] = bson.M{"$ne": oid}
	}

	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check parking lot name: %w", err)
	}
	return count > 0, nil
}

func (r *mongoParkingLotRepository) Query(ctx context.Context, filter model.ParkingLotFilter, page model.PageOptions) ([]*model.ParkingLot, int64, error) {
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
		total int64
		lots  []*model.ParkingLot
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		count, err := r.collection.CountDocuments(gctx, query)
		if err != nil {
			return fmt.Errorf("failed to count parking lots: %w", err)
		}
		total = count
		return nil
	})
	g.Go(func() error {
		opts := options.Find().SetSort(sort).SetLimit(int64(page.Limit)).SetSkip(page.Skip())
		found, err := r.find(gctx, query, opts)
		lots = found
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return lots, total, nil
}

// Update applies the non-nil fields of update. When spaces changes, the
// available count moves by the same difference, clamped to [0, spaces].
func (r *mongoParkingLotRepository) Update(ctx context.Context, id string, update *model.ParkingLotUpdate) (*model.ParkingLot, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", parkinglotserrors.ErrInvalidID, id)
	}

	set := bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)}
	if update.Name != nil {
		set["name"] = literal(*update.Name)
	}
	if update.Images != nil {
		set["images"] = literal(*update.Images)
	}
	if update.Location != nil {
		set["location"] = literal(*update.Location)
	}
	if update.Price != nil {
		set["price"] = *update.Price
	}
	if update.City != nil {
		set["city"] = literal(*update.City)
	}
	if update.Address != nil {
		set["address"] = literal(*update.Address)
	}
	if update.Spaces != nil {
		spaces := *update.Spaces
		set["spaces"] = spaces
		shifted := bson.M{"$add": bson.A{"$available_spaces", bson.M{"$subtract": bson.A{spaces, "$spaces"}}}}
		set["available_spaces"] = clamp(shifted, spaces)
	}

	pipeline := mongo.Pipeline{{{Key: "$set", Value: set}}}
	return r.findOneAndUpdate(ctx, bson.M{"_id": objectID}, pipeline, id)
}

func (r *mongoParkingLotRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", parkinglotserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete parking lot: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", parkinglotserrors.ErrNotFound, id)
	}
	return nil
}

// Nearby returns lots within query.MaxDistanceKm of the point, nearest first.
// It relies on the 2dsphere index on location.
func (r *mongoParkingLotRepository) Nearby(ctx context.Context, query model.NearbyQuery, limit int) ([]*model.ParkingLot, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	point := model.NewGeoPoint(query.Longitude, query.Latitude)
	filter := bson.M{
		"location": bson.M{
			"$nearSphere": bson.M{
				"$geometry":    point,
				"$maxDistance": query.MaxDistanceKm * metersPerKm,
			},
		},
	}
	return r.find(ctx, filter, options.Find().SetLimit(int64(limit)))
}

// AdjustAvailableSpaces applies delta to available_spaces in one server side
// update, clamped to [0, spaces]. Concurrent adjustments never lose updates.
func (r *mongoParkingLotRepository) AdjustAvailableSpaces(ctx context.Context, id string, delta int) (*model.ParkingLot, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", parkinglotserrors.ErrInvalidID, id)
	}

	pipeline := mongo.Pipeline{{{Key: "$set", Value: bson.M{
		"available_spaces": clamp(bson.M{"$add": bson.A{"$available_spaces", delta}}, "$spaces"),
		"updated_at":       time.Now().UTC().Truncate(time.Millisecond),
	}}}}
	return r.findOneAndUpdate(ctx, bson.M{"_id": objectID}, pipeline, id)
}

func (r *mongoParkingLotRepository) AdjustRating(ctx context.Context, id string, valueDelta float64, countDelta int) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", parkinglotserrors.ErrInvalidID, id)
	}

	update := bson.M{"$inc": bson.M{"rating_value": valueDelta, "rating_count": countDelta}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to adjust parking lot rating: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", parkinglotserrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoParkingLotRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

func (r *mongoParkingLotRepository) findOneAndUpdate(ctx context.Context, filter bson.M, update any, id string) (*model.ParkingLot, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc lotDocument
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", parkinglotserrors.ErrNotFound, id)
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, parkinglotserrors.ErrDuplicateName
		}
		return nil, fmt.Errorf("failed to update parking lot: %w", err)
	}
	return doc.toModel(), nil
}

func (r *mongoParkingLotRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.ParkingLot, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find parking lots: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []lotDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode parking lots: %w", err)
	}

	lots := make([]*model.ParkingLot, 0, len(docs))
	for i := range docs {
		lots = append(lots, docs[i].toModel())
	}
	return lots, nil
}

// literal keeps user supplied values from being read as expressions inside
// an update pipeline.
func literal(v any) bson.M {
	return bson.M{"$literal": v}
}

// clamp bounds expr to [0, upper]. upper may be a constant or a field path.
func clamp(expr any, upper any) bson.M {
	return bson.M{"$min": bson.A{upper, bson.M{"$max": bson.A{0, expr}}}}
}

func buildFilter(filter model.ParkingLotFilter) (bson.M, error) {
	query := bson.M{}
	if filter.Name != "" {
		query["name"] = bson.M{"$regex": regexp.QuoteMeta(filter.Name), "$options": "i"}
	}
	if filter.City != "" {
		query["city"] = bson.M{"$regex": "^" + regexp.QuoteMeta(filter.City) + "$", "$options": "i"}
	}
	if filter.Owner != "" {
		oid, err := primitive.ObjectIDFromHex(filter.Owner)
		if err != nil {
			return nil, fmt.Errorf("%w: owner %s", parkinglotserrors.ErrInvalidID, filter.Owner)
		}
		query["owner"] = oid
	}
	return query, nil
}
