package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Developer-Square/Park254-Backend/pkg/config"
	mongotx "github.com/Developer-Square/Park254-Backend/pkg/db/mongo"
	"github.com/Developer-Square/Park254-Backend/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Capacity_jobs"

// maxErrorLength bounds the stored last_error text.
const maxErrorLength = 512

type JobRepository interface {
	Schedule(ctx context.Context, jobs ...*model.CapacityJob) error
	FindByBooking(ctx context.Context, bookingID string) ([]*model.CapacityJob, error)
	CancelPending(ctx context.Context, pairID string) (int64, error)
	Reschedule(ctx context.Context, jobID string, fireAt time.Time) error
	ClaimDue(ctx context.Context, now time.Time, lease time.Duration) (*model.CapacityJob, error)
	Complete(ctx context.Context, jobID, token string) error
	Fail(ctx context.Context, jobID, token, reason string) error
	Retry(ctx context.Context, jobID, token, reason string, nextFire time.Time) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoJobRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoJobRepository(cfg *config.Config) JobRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoJobRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoJobRepository) Schedule(ctx context.Context, jobs ...*model.CapacityJob) error {
	if len(jobs) == 0 {
		return nil
	}
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	docs := make([]any, 0, len(jobs))
	for _, job := range jobs {
		job.Status = model.JobStatusScheduled
		job.Attempts = 0
		job.CreatedAt = now
		job.UpdatedAt = now
		doc := newJobDocument(job)
		job.ID = doc.ID.Hex()
		docs = append(docs, doc)
	}

	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to schedule capacity jobs: %w", err)
	}
	return nil
}

func (r *mongoJobRepository) FindByBooking(ctx context.Context, bookingID string) ([]*model.CapacityJob, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "fires_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"booking_id": bookingID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find capacity jobs: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []jobDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode capacity jobs: %w", err)
	}

	jobs := make([]*model.CapacityJob, 0, len(docs))
	for i := range docs {
		jobs = append(jobs, docs[i].toModel())
	}
	return jobs, nil
}

// CancelPending cancels every scheduled or running job of the pair. A running
// job loses its token, so a worker holding it can no longer complete.
func (r *mongoJobRepository) CancelPending(ctx context.Context, pairID string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"pair_id": pairID,
		"status":  bson.M{"$in": []string{model.JobStatusScheduled, model.JobStatusRunning}},
	}
	update := bson.M{
		"$set":   bson.M{"status": model.JobStatusCancelled, "updated_at": time.Now().UTC()},
		"$unset": bson.M{"token": "", "lease_expires_at": ""},
	}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel capacity jobs: %w", err)
	}
	return result.ModifiedCount, nil
}

func (r *mongoJobRepository) Reschedule(ctx context.Context, jobID string, fireAt time.Time) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(jobID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidID, jobID)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": oid, "status": model.JobStatusScheduled},
		bson.M{"$set": bson.M{"fires_at": fireAt.UTC(), "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("failed to reschedule capacity job: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotPending
	}
	return nil
}

// ClaimDue atomically leases the oldest due job. A job is due when it is
// scheduled with fires_at in the past, or running with an expired lease left
// behind by a crashed worker. Every claim issues a fresh token.
func (r *mongoJobRepository) ClaimDue(ctx context.Context, now time.Time, lease time.Duration) (*model.CapacityJob, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now = now.UTC()
	filter := bson.M{
		"$or": []bson.M{
			{"status": model.JobStatusScheduled, "fires_at": bson.M{"$lte": now}},
			{"status": model.JobStatusRunning, "lease_expires_at": bson.M{"$lt": now}},
		},
	}
	update := bson.M{
		"$set": bson.M{
			"status":           model.JobStatusRunning,
			"token":            uuid.NewString(),
			"lease_expires_at": now.Add(lease),
			"updated_at":       now,
		},
		"$inc": bson.M{"attempts": 1},
	}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "fires_at", Value: 1}}).
		SetReturnDocument(options.After)

	var doc jobDocument
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoDueJobs
		}
		return nil, fmt.Errorf("failed to claim capacity job: %w", err)
	}
	return doc.toModel(), nil
}

func (r *mongoJobRepository) Complete(ctx context.Context, jobID, token string) error {
	now := time.Now().UTC()
	return r.transition(ctx, jobID, token, bson.M{
		"$set":   bson.M{"status": model.JobStatusCompleted, "completed_at": now, "updated_at": now},
		"$unset": bson.M{"lease_expires_at": "", "last_error": ""},
	})
}

func (r *mongoJobRepository) Fail(ctx context.Context, jobID, token, reason string) error {
	return r.transition(ctx, jobID, token, bson.M{
		"$set": bson.M{
			"status":     model.JobStatusFailed,
			"last_error": truncate(reason),
			"updated_at": time.Now().UTC(),
		},
		"$unset": bson.M{"lease_expires_at": ""},
	})
}

func (r *mongoJobRepository) Retry(ctx context.Context, jobID, token, reason string, nextFire time.Time) error {
	return r.transition(ctx, jobID, token, bson.M{
		"$set": bson.M{
			"status":     model.JobStatusScheduled,
			"fires_at":   nextFire.UTC(),
			"last_error": truncate(reason),
			"updated_at": time.Now().UTC(),
		},
		"$unset": bson.M{"token": "", "lease_expires_at": ""},
	})
}

// transition applies update only while the job is running under token.
func (r *mongoJobRepository) transition(ctx context.Context, jobID, token string, update bson.M) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(jobID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidID, jobID)
	}

	filter := bson.M{"_id": oid, "status": model.JobStatusRunning, "token": token}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update capacity job: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrLeaseLost
	}
	return nil
}

func (r *mongoJobRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

func truncate(s string) string {
	if len(s) <= maxErrorLength {
		return s
	}
	return s[:maxErrorLength]
}
