// Package kv defines a small redis-like key-value interface with
// interchangeable in-memory and Redis backends. The portal uses it for
// session tokens and other ephemeral state that must survive a Redis
// outage by degrading to process memory.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key does not exist or has expired.
var ErrNotFound = errors.New("kv: not found")

// Store is the backend-agnostic key-value contract. TTLs are optional on
// Set; a zero or omitted TTL means the key never expires.
type Store interface {
	Set(ctx context.Context, key string, value []byte, ttl ...time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Del(ctx context.Context, keys ...string) (int64, error)
	Exists(ctx context.Context, keys ...string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	IncrBy(ctx context.Context, key string, n int64) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}
