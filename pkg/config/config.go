package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Developer-Square/Park254-Backend/pkg/client"
	"github.com/Developer-Square/Park254-Backend/pkg/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port        string
	MetricsPort string

	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	LockBackend   string
	LotLockTTL    time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CapacityPollInterval      time.Duration
	CapacityBatchSize         int
	CapacityWorkerConcurrency int
	CapacityLeaseDuration     time.Duration
	CapacityMaxAttempts       int
	CapacityRetryBackoff      time.Duration
	CompensateOnCancel        bool

	MaxBatchLots            int
	NearbyDefaultDistanceKm float64

	EventsEnabled bool

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port:        getEnvStr(EnvPort, DefaultPort),
		MetricsPort: getEnvStr(EnvMetricsPort, DefaultMetricsPort),

		JWTSecret: getEnvStr(EnvJWTSecret, ""),
		JWTIssuer: getEnvStr(EnvJWTIssuer, DefaultJWTIssuer),
		JWTTTL:    getEnvDuration(EnvJWTTTL, DefaultJWTTTL),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		LockBackend:   strings.ToLower(getEnvStr(EnvLockBackend, DefaultLockBackend)),
		LotLockTTL:    getEnvDuration(EnvLotLockTTL, DefaultLotLockTTL),
		RedisAddr:     getEnvStr(EnvRedisAddr, DefaultRedisAddr),
		RedisPassword: getEnvStr(EnvRedisPassword, ""),
		RedisDB:       getEnvNum(EnvRedisDB, 0),

		CapacityPollInterval:      getEnvDuration(EnvCapacityPollInterval, DefaultCapacityPollInterval),
		CapacityBatchSize:         getEnvNum(EnvCapacityBatchSize, DefaultCapacityBatchSize),
		CapacityWorkerConcurrency: getEnvNum(EnvCapacityWorkerConcurrency, DefaultCapacityWorkerConcurrency),
		CapacityLeaseDuration:     getEnvDuration(EnvCapacityLeaseDuration, DefaultCapacityLeaseDuration),
		CapacityMaxAttempts:       getEnvNum(EnvCapacityMaxAttempts, DefaultCapacityMaxAttempts),
		CapacityRetryBackoff:      getEnvDuration(EnvCapacityRetryBackoff, DefaultCapacityRetryBackoff),
		CompensateOnCancel:        getEnvBool(EnvCompensateOnCancel, false),

		MaxBatchLots:            getEnvNum(EnvMaxBatchLots, DefaultMaxBatchLots),
		NearbyDefaultDistanceKm: getEnvFloat(EnvNearbyDefaultDistanceKm, DefaultNearbyDistanceKm),

		EventsEnabled: getEnvBool(EnvEventsEnabled, false),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    getEnvStr(EnvLogFormat, logger.JSON),
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) SetRedis() {
	cfg.Client.SetRedis(cfg.Log, client.RedisOptions{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: cfg.MongoConnTimeout,
	})
}

func (cfg *Config) UsesRedisLocks() bool {
	return cfg.LockBackend == LockBackendRedis
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}
	if port, err := strconv.Atoi(cfg.MetricsPort); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("MetricsPort must be between 1 and 65535, got: %s", cfg.MetricsPort))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	if len(cfg.JWTSecret) < MinJWTSecretLength {
		errors = append(errors, fmt.Sprintf("JWTSecret must be at least %d characters", MinJWTSecretLength))
	}

	if cfg.LockBackend != LockBackendMongo && cfg.LockBackend != LockBackendRedis {
		errors = append(errors, fmt.Sprintf("LockBackend must be %q or %q, got: %s", LockBackendMongo, LockBackendRedis, cfg.LockBackend))
	}
	if cfg.UsesRedisLocks() && cfg.RedisAddr == "" {
		errors = append(errors, "RedisAddr cannot be empty when LockBackend is redis")
	}

	positiveDurations := []struct {
		name  string
		value time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"JWTTTL", cfg.JWTTTL},
		{"RateLimitWindow", cfg.RateLimitWindow},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
		{"LotLockTTL", cfg.LotLockTTL},
		{"CapacityPollInterval", cfg.CapacityPollInterval},
		{"CapacityLeaseDuration", cfg.CapacityLeaseDuration},
		{"CapacityRetryBackoff", cfg.CapacityRetryBackoff},
	}
	for _, d := range positiveDurations {
		if d.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", d.name, d.value))
		}
	}

	positiveInts := []struct {
		name  string
		value int
	}{
		{"RateLimitRequests", cfg.RateLimitRequests},
		{"MaxRequestSize", cfg.MaxRequestSize},
		{"CapacityBatchSize", cfg.CapacityBatchSize},
		{"CapacityWorkerConcurrency", cfg.CapacityWorkerConcurrency},
		{"CapacityMaxAttempts", cfg.CapacityMaxAttempts},
		{"MaxBatchLots", cfg.MaxBatchLots},
	}
	for _, n := range positiveInts {
		if n.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %d", n.name, n.value))
		}
	}

	if cfg.NearbyDefaultDistanceKm <= 0 {
		errors = append(errors, fmt.Sprintf("NearbyDefaultDistanceKm must be positive, got: %g", cfg.NearbyDefaultDistanceKm))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"metrics_port", cfg.MetricsPort,
		"jwt_secret_set", cfg.JWTSecret != "",
		"jwt_issuer", cfg.JWTIssuer,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"lock_backend", cfg.LockBackend,
		"lot_lock_ttl", cfg.LotLockTTL,
		"capacity_poll_interval", cfg.CapacityPollInterval,
		"capacity_batch_size", cfg.CapacityBatchSize,
		"capacity_worker_concurrency", cfg.CapacityWorkerConcurrency,
		"capacity_lease_duration", cfg.CapacityLeaseDuration,
		"capacity_max_attempts", cfg.CapacityMaxAttempts,
		"compensate_on_cancel", cfg.CompensateOnCancel,
		"max_batch_lots", cfg.MaxBatchLots,
		"events_enabled", cfg.EventsEnabled,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	if err := cfg.Client.GracefulShutdown(); err != nil {
		cfg.Log.Error("Failed to close backend connections", "error", err)
	}
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageLimit
	}
	return min(limit, MaxPaginationLimit)
}

func NormalizePage(page int) int {
	return max(1, page)
}
