package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort        = "PORT"
	EnvMetricsPort = "METRICS_PORT"
	EnvLogLevel    = "LOG_LEVEL"
	EnvLogFormat   = "LOG_FORMAT"

	EnvJWTSecret = "JWT_SECRET"
	EnvJWTIssuer = "JWT_ISSUER"
	EnvJWTTTL    = "JWT_TTL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvLockBackend   = "LOCK_BACKEND"
	EnvLotLockTTL    = "LOT_LOCK_TTL"
	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvCapacityPollInterval      = "CAPACITY_POLL_INTERVAL"
	EnvCapacityBatchSize         = "CAPACITY_BATCH_SIZE"
	EnvCapacityWorkerConcurrency = "CAPACITY_WORKER_CONCURRENCY"
	EnvCapacityLeaseDuration     = "CAPACITY_LEASE_DURATION"
	EnvCapacityMaxAttempts       = "CAPACITY_MAX_ATTEMPTS"
	EnvCapacityRetryBackoff      = "CAPACITY_RETRY_BACKOFF"
	EnvCompensateOnCancel        = "COMPENSATE_ON_CANCEL"

	EnvMaxBatchLots            = "MAX_BATCH_LOTS"
	EnvNearbyDefaultDistanceKm = "NEARBY_DEFAULT_DISTANCE_KM"

	EnvEventsEnabled = "EVENTS_ENABLED"
)
