// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"mergington-activities/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// RedisClient wraps the Redis client and the stream registration events are
// appended to.
type RedisClient struct {
	Client    *redis.Client
	stream    string
	streamLen int64
}

// NewRedis creates a new Redis client
func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	return NewRedisFromClient(rdb, cfg.Stream, cfg.StreamLen), nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(rdb *redis.Client, stream string, streamLen int64) *RedisClient {
	return &RedisClient{Client: rdb, stream: stream, streamLen: streamLen}
}

// Ping tests the Redis connection
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

// Stream returns the stream key events are written to.
func (c *RedisClient) Stream() string {
	return c.stream
}

// AppendToStream adds one entry to the stream, trimming it to roughly
// streamLen entries. It returns the entry id.
func (c *RedisClient) AppendToStream(ctx context.Context, values map[string]interface{}) (string, error) {
	args := &redis.XAddArgs{
		Stream: c.stream,
		Values: values,
	}
	if c.streamLen > 0 {
		args.MaxLen = c.streamLen
		args.Approx = true
	}

	id, err := c.Client.XAdd(ctx, args).Result()
	if err != nil {
		return "", fmt.Errorf("redis xadd to %s failed: %w", c.stream, err)
	}
	return id, nil
}
