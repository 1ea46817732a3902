package kv

import (
	"fmt"
	"time"
)

// Backend identifies a storage backend implementation.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendRedis  Backend = "redis"
)

// Config selects and tunes a backend.
type Config struct {
	// Backend picks the implementation; defaults to memory.
	Backend Backend

	// RedisURL is the connection string when Backend is redis,
	// e.g. redis://localhost:6379/0.
	RedisURL string

	// JanitorInterval controls how often the memory backend sweeps expired
	// keys. Zero keeps the default of 30 seconds.
	JanitorInterval time.Duration
}

// StoreFactory builds a Store from a Config.
type StoreFactory func(cfg Config) (Store, error)

var factories = make(map[Backend]StoreFactory)

// RegisterBackend makes a backend constructible through New. Backend
// packages call this from init; importing them for side effects is enough.
func RegisterBackend(backend Backend, factory StoreFactory) {
	factories[backend] = factory
}

// New creates a Store for the configured backend.
func New(cfg Config) (Store, error) {
	if cfg.Backend == "" {
		cfg.Backend = BackendMemory
	}
	if cfg.JanitorInterval == 0 {
		cfg.JanitorInterval = 30 * time.Second
	}

	factory, ok := factories[cfg.Backend]
	if !ok {
		return nil, fmt.Errorf("kv: backend %q not registered (missing import?)", cfg.Backend)
	}
	return factory(cfg)
}
