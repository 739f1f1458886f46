package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	ratingserrors "github.com/Developer-Square/Park254-Backend/internal/ratings/errors"
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
	CollectionName = "Ratings"

	DefaultSort = "createdAt:desc"
)

var sortFields = map[string]string{
	"value":     "value",
	"createdAt": "created_at",
}

type RatingRepository interface {
	Create(ctx context.Context, rating *model.Rating) error
	FindByID(ctx context.Context, id string) (*model.Rating, error)
	FindByUserAndLot(ctx context.Context, userID, parkingLotID string) (*model.Rating, error)
	Query(ctx context.Context, filter model.RatingFilter, page model.PageOptions) ([]*model.Rating, int64, error)
	UpdateValue(ctx context.Context, id string, value int) (*model.Rating, error)
	Delete(ctx context.Context, id string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoRatingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoRatingRepository(cfg *config.Config) RatingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRatingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// Create inserts rating. The unique (user_id, parking_lot_id) index turns a
// concurrent second insert for the same pair into ErrAlreadyRated.
func (r *mongoRatingRepository) Create(ctx context.Context, rating *model.Rating) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	rating.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	doc, err := toDocument(rating)
	if err != nil {
		return err
	}

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ratingserrors.ErrAlreadyRated
		}
		return fmt.Errorf("failed to create rating: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		rating.ID = oid.Hex()
	}
	return nil
}

func (r *mongoRatingRepository) FindByID(ctx context.Context, id string) (*model.Rating, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ratingserrors.ErrInvalidID, id)
	}

	var doc ratingDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", ratingserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find rating: %w", err)
	}
	return doc.toModel(), nil
}

// FindByUserAndLot returns the user's rating of the lot, or ErrNotFound when
// the user has not rated it yet.
func (r *mongoRatingRepository) FindByUserAndLot(ctx context.Context, userID, parkingLotID string) (*model.Rating, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	query, err := buildFilter(model.RatingFilter{UserID: userID, ParkingLotID: parkingLotID})
	if err != nil {
		return nil, err
	}

	var doc ratingDocument
	if err := r.collection.FindOne(ctx, query).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: user %s lot %s", ratingserrors.ErrNotFound, userID, parkingLotID)
		}
		return nil, fmt.Errorf("failed to find rating: %w", err)
	}
	return doc.toModel(), nil
}

func (r *mongoRatingRepository) Query(ctx context.Context, filter model.RatingFilter, page model.PageOptions) ([]*model.Rating, int64, error) {
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
		total   int64
		ratings []*model.Rating
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		count, err := r.collection.CountDocuments(gctx, query)
		if err != nil {
			return fmt.Errorf("failed to count ratings: %w", err)
		}
		total = count
		return nil
	})
	g.Go(func() error {
		opts := options.Find().SetSort(sort).SetLimit(int64(page.Limit)).SetSkip(page.Skip())
		cursor, err := r.collection.Find(gctx, query, opts)
		if err != nil {
			return fmt.Errorf("failed to find ratings: %w", err)
		}
		defer cursor.Close(gctx)

		var docs []ratingDocument
		if err := cursor.All(gctx, &docs); err != nil {
			return fmt.Errorf("failed to decode ratings: %w", err)
		}
		ratings = make([]*model.Rating, 0, len(docs))
		for i := range docs {
			ratings = append(ratings, docs[i].toModel())
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return ratings, total, nil
}

func (r *mongoRatingRepository) UpdateValue(ctx context.Context, id string, value int) (*model.Rating, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ratingserrors.ErrInvalidID, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc ratingDocument
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$set": bson.M{"value": value}}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", ratingserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to update rating: %w", err)
	}
	return doc.toModel(), nil
}

func (r *mongoRatingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", ratingserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete rating: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", ratingserrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoRatingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

func buildFilter(filter model.RatingFilter) (bson.M, error) {
	query := bson.M{}
	if filter.ParkingLotID != "" {
		oid, err := primitive.ObjectIDFromHex(filter.ParkingLotID)
		if err != nil {
			return nil, fmt.Errorf("%w: parking lot %s", ratingserrors.ErrInvalidID, filter.ParkingLotID)
		}
		query["parking_lot_id"] = oid
	}
	if filter.UserID != "" {
		oid, err := primitive.ObjectIDFromHex(filter.UserID)
		if err != nil {
			return nil, fmt.Errorf("%w: user %s", ratingserrors.ErrInvalidID, filter.UserID)
		}
		query["user_id"] = oid
	}
	return query, nil
}
