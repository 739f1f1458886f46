package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017/?replicaSet=rs0"
	DefaultMongoDatabaseName = "park254"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort        = "8080"
	DefaultMetricsPort = "9090"
	DefaultLogLevel    = "info"

	DefaultJWTIssuer   = "park254"
	DefaultJWTTTL      = 24 * time.Hour
	MinJWTSecretLength = 16

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	LockBackendMongo   = "mongo"
	LockBackendRedis   = "redis"
	DefaultLockBackend = LockBackendMongo
	DefaultLotLockTTL  = 10 * time.Second
	DefaultRedisAddr   = "localhost:6379"

	DefaultCapacityPollInterval      = 5 * time.Second
	DefaultCapacityBatchSize         = 50
	DefaultCapacityWorkerConcurrency = 8
	DefaultCapacityLeaseDuration     = 30 * time.Second
	DefaultCapacityMaxAttempts       = 5
	DefaultCapacityRetryBackoff      = 10 * time.Second

	DefaultMaxBatchLots     = 50
	DefaultNearbyDistanceKm = 5.0

	DefaultPageLimit   = 10
	MaxPaginationLimit = 100
)
