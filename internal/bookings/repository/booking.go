package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "github.com/Developer-Square/Park254-Backend/internal/bookings/errors"
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
	CollectionName = "Bookings"

	DefaultSort = "createdAt:desc"
)

// sortFields maps the JSON names accepted in sortBy to stored field names.
var sortFields = map[string]string{
	"entryTime": "entry_time",
	"exitTime":  "exit_time",
	"spaces":    "spaces",
	"createdAt": "created_at",
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	Update(ctx context.Context, id string, update *model.BookingUpdate) (*model.Booking, error)
	Cancel(ctx context.Context, id string) (*model.Booking, error)
	Delete(ctx context.Context, id string) error
	Query(ctx context.Context, filter model.BookingFilter, page model.PageOptions) ([]*model.Booking, int64, error)
	SumOverlappingSpaces(ctx context.Context, lotID string, entry, exit time.Time, excludeID string) (int, error)
	SumOverlappingSpacesByLot(ctx context.Context, lotIDs []string, entry, exit time.Time) (map[string]int, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	booking.CreatedAt = now
	booking.UpdatedAt = now

	doc, err := toDocument(booking)
	if err != nil {
		return err
	}
	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var doc bookingDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return doc.toModel(), nil
}

func (r *mongoBookingRepository) Update(ctx context.Context, id string, update *model.BookingUpdate) (*model.Booking, error) {
	set := bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)}
	if update.ParkingLotID != nil {
		lotID, err := primitive.ObjectIDFromHex(*update.ParkingLotID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, *update.ParkingLotID)
		}
		set["parking_lot_id"] = lotID
	}
	if update.EntryTime != nil {
		set["entry_time"] = update.EntryTime.UTC()
	}
	if update.ExitTime != nil {
		set["exit_time"] = update.ExitTime.UTC()
	}
	if update.Spaces != nil {
		set["spaces"] = *update.Spaces
	}

	return r.findOneAndSet(ctx, id, set)
}

func (r *mongoBookingRepository) Cancel(ctx context.Context, id string) (*model.Booking, error) {
	return r.findOneAndSet(ctx, id, bson.M{
		"is_cancelled": true,
		"updated_at":   time.Now().UTC().Truncate(time.Millisecond),
	})
}

func (r *mongoBookingRepository) findOneAndSet(ctx context.Context, id string, set bson.M) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc bookingDocument
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}
	return doc.toModel(), nil
}

func (r *mongoBookingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	if result.DeletedCount == 0 {
		return bookingserrors.ErrNotFound
	}

	return nil
}

// Query returns one page of bookings matching filter and the total number of
// matches. The count and the page are fetched concurrently.
func (r *mongoBookingRepository) Query(ctx context.Context, filter model.BookingFilter, page model.PageOptions) ([]*model.Booking, int64, error) {
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
		docs  []bookingDocument
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		count, err := r.collection.CountDocuments(gctx, query)
		if err != nil {
			return fmt.Errorf("failed to count bookings: %w", err)
		}
		total = count
		return nil
	})
	g.Go(func() error {
		opts := options.Find().
			SetSort(sort).
			SetLimit(int64(page.Limit)).
			SetSkip(page.Skip())
		cursor, err := r.collection.Find(gctx, query, opts)
		if err != nil {
			return fmt.Errorf("failed to find bookings: %w", err)
		}
		defer cursor.Close(gctx)
		if err := cursor.All(gctx, &docs); err != nil {
			return fmt.Errorf("failed to decode bookings: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	bookings := make([]*model.Booking, 0, len(docs))
	for i := range docs {
		bookings = append(bookings, docs[i].toModel())
	}
	return bookings, total, nil
}

// SumOverlappingSpaces totals the spaces held by live bookings on lotID whose
// window overlaps [entry, exit). Bookings that end exactly at entry or begin
// exactly at exit do not count.
func (r *mongoBookingRepository) SumOverlappingSpaces(ctx context.Context, lotID string, entry, exit time.Time, excludeID string) (int, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	lotOID, err := primitive.ObjectIDFromHex(lotID)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, lotID)
	}

	match := overlapMatch(entry, exit)
	match["parking_lot_id"] = lotOID
	if excludeID != "" {
		excludeOID, err := primitive.ObjectIDFromHex(excludeID)
		if err != nil {
			return 0, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, excludeID)
		}
		match["_id"] = bson.M{"$ne": excludeOID}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "occupied", Value: bson.D{{Key: "$sum", Value: "$spaces"}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to sum overlapping bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Occupied int `bson:"occupied"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("failed to decode overlap sum: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Occupied, nil
}

// SumOverlappingSpacesByLot is the grouped form of SumOverlappingSpaces. Lots
// without overlapping bookings are absent from the result.
func (r *mongoBookingRepository) SumOverlappingSpacesByLot(ctx context.Context, lotIDs []string, entry, exit time.Time) (map[string]int, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	oids := make([]primitive.ObjectID, 0, len(lotIDs))
	for _, id := range lotIDs {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
		}
		oids = append(oids, oid)
	}

	match := overlapMatch(entry, exit)
	match["parking_lot_id"] = bson.M{"$in": oids}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$parking_lot_id"},
			{Key: "occupied", Value: bson.D{{Key: "$sum", Value: "$spaces"}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to sum overlapping bookings by lot: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		LotID    primitive.ObjectID `bson:"_id"`
		Occupied int                `bson:"occupied"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode overlap sums: %w", err)
	}

	sums := make(map[string]int, len(rows))
	for _, row := range rows {
		sums[row.LotID.Hex()] = row.Occupied
	}
	return sums, nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

func overlapMatch(entry, exit time.Time) bson.M {
	return bson.M{
		"is_cancelled": false,
		"entry_time":   bson.M{"$lt": exit.UTC()},
		"exit_time":    bson.M{"$gt": entry.UTC()},
	}
}

func buildFilter(filter model.BookingFilter) (bson.M, error) {
	query := bson.M{}
	if filter.ParkingLotID != "" {
		oid, err := primitive.ObjectIDFromHex(filter.ParkingLotID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, filter.ParkingLotID)
		}
		query["parking_lot_id"] = oid
	}
	if filter.ClientID != "" {
		oid, err := primitive.ObjectIDFromHex(filter.ClientID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, filter.ClientID)
		}
		query["client_id"] = oid
	}
	if filter.IsCancelled != nil {
		query["is_cancelled"] = *filter.IsCancelled
	}
	return query, nil
}
