package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/villagelink/village-backend/internal/metrics"
	"github.com/villagelink/village-backend/pkg/kv"
	memkv "github.com/villagelink/village-backend/pkg/kv/memory"
	"go.uber.org/zap"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Pubsub channels for live portal updates.
const (
	ChannelCommunity = "village:community"
	ChannelAffairs   = "village:affairs"
)

// Key prefixes.
const (
	KeyNewsList      = "village:news:list"
	KeySessionPrefix = "village:session:"
)

// Cache stores JSON values and fans out pubsub events. It prefers Redis and
// silently degrades to an in-process kv store plus an in-process pubsub hub
// when Redis is unreachable, so a single-node deployment needs no
// infrastructure at all.
type Cache struct {
	client  *redis.Client
	kvStore kv.Store
	hub     *PubSubHub

	logger  *zap.SugaredLogger
	metrics *metrics.Metrics
}

// NewCache connects to Redis at addr, or falls back to in-memory mode when
// the initial ping fails.
func NewCache(addr string, logger *zap.SugaredLogger, m *metrics.Metrics) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		if logger != nil {
			logger.Warnw("Redis unavailable; using in-memory cache and pubsub", "addr", addr, "error", err)
		}
		return &Cache{
			kvStore: memkv.NewStore(),
			hub:     NewPubSubHub(),
			logger:  logger,
			metrics: m,
		}, nil
	}

	return &Cache{
		client:  client,
		logger:  logger,
		metrics: m,
	}, nil
}

// IsInMemoryMode reports whether the cache fell back to process memory.
func (c *Cache) IsInMemoryMode() bool {
	return c.client == nil
}

// Get unmarshals the cached JSON value at key into dest.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	var raw []byte

	if c.client != nil {
		val, err := c.client.Get(ctx, key).Bytes()
		if err == redis.Nil {
			c.recordMiss(ctx, key)
			return ErrCacheMiss
		}
		if err != nil {
			return fmt.Errorf("cache get: %w", err)
		}
		raw = val
	} else {
		val, err := c.kvStore.Get(ctx, key)
		if err == kv.ErrNotFound {
			c.recordMiss(ctx, key)
			return ErrCacheMiss
		}
		if err != nil {
			return fmt.Errorf("cache get: %w", err)
		}
		raw = val
	}

	c.recordHit(ctx, key)
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("cache unmarshal: %w", err)
	}
	return nil
}

// Set marshals value to JSON and stores it with a TTL. Zero TTL means no
// expiration.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}
	if c.client != nil {
		return c.client.Set(ctx, key, raw, ttl).Err()
	}
	return c.kvStore.Set(ctx, key, raw, ttl)
}

// Del removes keys; missing keys are not an error.
func (c *Cache) Del(ctx context.Context, keys ...string) error {
	if c.client != nil {
		return c.client.Del(ctx, keys...).Err()
	}
	_, err := c.kvStore.Del(ctx, keys...)
	return err
}

// Publish sends a JSON-encoded event to a channel.
func (c *Cache) Publish(ctx context.Context, channel string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("publish marshal: %w", err)
	}
	if c.client != nil {
		return c.client.Publish(ctx, channel, raw).Err()
	}
	c.hub.Publish(channel, string(raw))
	return nil
}

// Subscribe returns a subscription delivering events from the given
// channels until ctx is done or Close is called.
func (c *Cache) Subscribe(ctx context.Context, channels ...string) *Subscription {
	if c.client != nil {
		pubsub := c.client.Subscribe(ctx, channels...)
		sub := &Subscription{
			events: make(chan Event, 64),
			close:  func() { pubsub.Close() },
		}
		go func() {
			defer close(sub.events)
			ch := pubsub.Channel()
			for {
				select {
				case <-ctx.Done():
					return
				case msg, ok := <-ch:
					if !ok {
						return
					}
					select {
					case sub.events <- Event{Channel: msg.Channel, Payload: msg.Payload}:
					default:
						// Slow consumer; drop rather than block the reader.
					}
				}
			}
		}()
		return sub
	}
	return c.hub.Subscribe(ctx, channels...)
}

// Ping verifies the backing store is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	if c.client != nil {
		return c.client.Ping(ctx).Err()
	}
	return c.kvStore.Ping(ctx)
}

// Close releases the Redis connection or the in-memory stores.
func (c *Cache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	c.hub.Close()
	return c.kvStore.Close()
}

func (c *Cache) recordHit(ctx context.Context, key string) {
	if c.metrics != nil {
		c.metrics.RecordCacheHit(ctx, key)
	}
}

func (c *Cache) recordMiss(ctx context.Context, key string) {
	if c.metrics != nil {
		c.metrics.RecordCacheMiss(ctx, key)
	}
}
