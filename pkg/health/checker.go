package health

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
)

// DatabaseChecker returns a health check function for PostgreSQL database
func DatabaseChecker(pool *pgxpool.Pool) func() error {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return pool.Ping(ctx)
	}
}

// RedisChecker returns a health check function for Redis
func RedisChecker(client redis.Cmdable) func() error {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return client.Ping(ctx).Err()
	}
}

// NATSChecker returns a health check function for the event bus connection
func NATSChecker(conn *nats.Conn) func() error {
	return func() error {
		if conn == nil || !conn.IsConnected() {
			return errors.New("nats not connected")
		}
		return nil
	}
}
