package client

import (
	"context"
	"fmt"
	"time"

	"github.com/Developer-Square/Park254-Backend/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/multierr"
)

const shutdownTimeout = 10 * time.Second

// Client holds the process-wide connections to backing stores.
type Client struct {
	Mongo *mongo.Client
	Redis *redis.Client
}

func NewClient() *Client {
	return &Client{}
}

func (c *Client) SetMongo(log *logger.Logger, mongoURI string, mongoConnTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoConnTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		log.Fatal("Failed to ping MongoDB", "error", err)
	}

	log.Info("Successfully connected to MongoDB")
	c.Mongo = client
}

type RedisOptions struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration
}

func (c *Client) SetRedis(log *logger.Logger, opts RedisOptions) {
	raw := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: opts.DialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), opts.DialTimeout)
	defer cancel()

	if err := raw.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to ping Redis", "error", err, "addr", opts.Addr)
	}

	log.Info("Successfully connected to Redis", "addr", opts.Addr)
	c.Redis = raw
}

// Ping checks every configured backend.
func (c *Client) Ping(ctx context.Context) error {
	var err error
	if c.Mongo != nil {
		if pingErr := c.Mongo.Ping(ctx, readpref.Primary()); pingErr != nil {
			err = multierr.Append(err, fmt.Errorf("mongo: %w", pingErr))
		}
	}
	if c.Redis != nil {
		if pingErr := c.Redis.Ping(ctx).Err(); pingErr != nil {
			err = multierr.Append(err, fmt.Errorf("redis: %w", pingErr))
		}
	}
	return err
}

func (c *Client) GracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error
	if c.Mongo != nil {
		err = multierr.Append(err, c.Mongo.Disconnect(ctx))
	}
	if c.Redis != nil {
		err = multierr.Append(err, c.Redis.Close())
	}
	return err
}
