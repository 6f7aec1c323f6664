package conn

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisHost = "localhost"
	defaultRedisPort = 6379
)

// RedisOption defines connection options for Redis.
type RedisOption struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisClient wraps a Redis connection pool.
type RedisClient struct {
	opt RedisOption
	rdb *redis.Client
}

// NewRedis creates a Redis client and verifies the connection with a ping.
func NewRedis(ctx context.Context, option RedisOption) (*RedisClient, error) {
	host := option.Host
	if host == "" {
		host = defaultRedisHost
	}

	port := option.Port
	if port == 0 {
		port = defaultRedisPort
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: option.Password,
		DB:       option.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return &RedisClient{opt: option, rdb: rdb}, nil
}

// Redis returns the underlying redis.Client instance.
func (c *RedisClient) Redis() *redis.Client {
	if c == nil {
		return nil
	}
	return c.rdb
}

// Close closes the underlying connection pool.
func (c *RedisClient) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
