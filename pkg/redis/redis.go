package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/richxcame/pos-pricing/pkg/config"
)

// Client wraps the Redis client
type Client struct {
	*redis.Client
}

// NewRedisClient creates a new Redis client and verifies the connection
func NewRedisClient(cfg *config.RedisConfig) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("unable to connect to redis: %w", err)
	}

	return &Client{Client: client}, nil
}

// SetJSON stores value as a JSON string under key
func SetJSON(ctx context.Context, rdb redis.Cmdable, key string, value interface{}, expiration time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return rdb.Set(ctx, key, string(payload), expiration).Err()
}

// GetJSON decodes the JSON value under key into out. It reports false on a cache miss.
func GetJSON(ctx context.Context, rdb redis.Cmdable, key string, out interface{}) (bool, error) {
	raw, err := rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}

// Delete deletes keys
func Delete(ctx context.Context, rdb redis.Cmdable, keys ...string) error {
	return rdb.Del(ctx, keys...).Err()
}

// Close closes the Redis client
func (c *Client) Close() error {
	return c.Client.Close()
}
