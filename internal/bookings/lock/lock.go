package lock

import (
	"context"
	"fmt"
	"time"

	bookingserrors "github.com/Developer-Square/Park254-Backend/internal/bookings/errors"
	"github.com/Developer-Square/Park254-Backend/internal/bookings/repository"
	"github.com/Developer-Square/Park254-Backend/pkg/config"
	"github.com/Developer-Square/Park254-Backend/pkg/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Lease is a held lot lock. Only the owner recorded here can release it.
type Lease struct {
	Key   string
	Owner string
}

// Locker serializes booking writes per parking lot across API replicas.
// Acquire returns bookingserrors.ErrLockHeld when another holder is active.
type Locker interface {
	Acquire(ctx context.Context, lotID string) (*Lease, error)
	Release(ctx context.Context, lease *Lease) error
}

func LockID(lotID string) string {
	return "lot_lock_" + lotID
}

// New returns the locker selected by LOCK_BACKEND.
func New(cfg *config.Config) Locker {
	if cfg.UsesRedisLocks() {
		return NewRedisLocker(cfg.Client.Redis, cfg.LotLockTTL)
	}
	return NewMongoLocker(repository.NewLotLockRepository(cfg), cfg.LotLockTTL)
}

type mongoLocker struct {
	repo repository.LotLockRepository
	ttl  time.Duration
}

func NewMongoLocker(repo repository.LotLockRepository, ttl time.Duration) Locker {
	return &mongoLocker{repo: repo, ttl: ttl}
}

func (l *mongoLocker) Acquire(ctx context.Context, lotID string) (*Lease, error) {
	lease := &Lease{Key: LockID(lotID), Owner: uuid.NewString()}
	err := l.repo.Create(ctx, &model.LotLock{
		ID:        lease.Key,
		Owner:     lease.Owner,
		ExpiresAt: time.Now().UTC().Add(l.ttl),
	})
	if err != nil {
		return nil, err
	}
	return lease, nil
}

func (l *mongoLocker) Release(ctx context.Context, lease *Lease) error {
	return l.repo.Delete(ctx, lease.Key, lease.Owner)
}

// RedisStore is the subset of *redis.Client the Redis locker needs.
type RedisStore interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd
}

const redisKeyPrefix = "park254:"

// releaseScript deletes the key only while it still holds the caller's token.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

type redisLocker struct {
	store RedisStore
	ttl   time.Duration
}

func NewRedisLocker(store RedisStore, ttl time.Duration) Locker {
	return &redisLocker{store: store, ttl: ttl}
}

func (l *redisLocker) Acquire(ctx context.Context, lotID string) (*Lease, error) {
	lease := &Lease{Key: redisKeyPrefix + LockID(lotID), Owner: uuid.NewString()}
	ok, err := l.store.SetNX(ctx, lease.Key, lease.Owner, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lot lock: %w", err)
	}
	if !ok {
		return nil, bookingserrors.ErrLockHeld
	}
	return lease, nil
}

func (l *redisLocker) Release(ctx context.Context, lease *Lease) error {
	deleted, err := l.store.Eval(ctx, releaseScript, []string{lease.Key}, lease.Owner).Int64()
	if err != nil {
		return fmt.Errorf("failed to release lot lock: %w", err)
	}
	if deleted == 0 {
		return bookingserrors.ErrLockNotOwned
	}
	return nil
}
