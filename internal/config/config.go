package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config is the full runtime configuration, loaded from VLG_* environment
// variables with optional .env files.
type Config struct {
	Env      string `mapstructure:"VLG_ENV"`
	HTTPAddr string `mapstructure:"VLG_HTTP_ADDR"`

	Cache    CacheConfig    `mapstructure:",squash"`
	Session  SessionConfig  `mapstructure:",squash"`
	Security SecurityConfig `mapstructure:",squash"`
}

type CacheConfig struct {
	RedisAddr string `mapstructure:"VLG_REDIS_ADDR"`
	// KVBackend selects the session token store: "memory" or "redis".
	KVBackend string `mapstructure:"VLG_KV_BACKEND"`
	// KVRedisURL is the session store connection string when KVBackend is redis.
	KVRedisURL string `mapstructure:"VLG_KV_REDIS_URL"`
	// NewsTTL bounds how long the cached news list may lag behind writes
	// coming from other replicas. Single-node deployments invalidate
	// eagerly, so this only matters once the store is shared.
	NewsTTL time.Duration `mapstructure:"VLG_NEWS_CACHE_TTL"`
}

type SessionConfig struct {
	TTL time.Duration `mapstructure:"VLG_SESSION_TTL"`
}

type SecurityConfig struct {
	RateLimitRPM       int      `mapstructure:"VLG_RATE_LIMIT_RPM"`
	CORSAllowedOrigins []string `mapstructure:"VLG_CORS_ALLOWED_ORIGINS"`
}

func loadDotEnvFiles() {
	candidates := []string{
		".env",
		filepath.Join("..", ".env"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			_ = gotenv.Load(path) // env vars already set take precedence
		}
	}
}

// Load reads configuration from the environment, applying defaults that
// make a bare `go run ./cmd/api` work with no setup at all.
func Load() (*Config, error) {
	loadDotEnvFiles()

	viper.SetConfigType("env")
	viper.AutomaticEnv()

	viper.SetDefault("VLG_ENV", "dev")
	viper.SetDefault("VLG_HTTP_ADDR", ":8080")
	viper.SetDefault("VLG_REDIS_ADDR", "127.0.0.1:6379")
	viper.SetDefault("VLG_KV_BACKEND", "memory")
	viper.SetDefault("VLG_KV_REDIS_URL", "redis://127.0.0.1:6379/0")
	viper.SetDefault("VLG_NEWS_CACHE_TTL", "30s")
	viper.SetDefault("VLG_SESSION_TTL", "24h")
	viper.SetDefault("VLG_RATE_LIMIT_RPM", 120)
	viper.SetDefault("VLG_CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")

	if origins := viper.GetString("VLG_CORS_ALLOWED_ORIGINS"); origins != "" {
		viper.Set("VLG_CORS_ALLOWED_ORIGINS", strings.Split(origins, ","))
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("VLG_HTTP_ADDR is required")
	}
	switch c.Cache.KVBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("invalid VLG_KV_BACKEND %q (must be memory or redis)", c.Cache.KVBackend)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("VLG_SESSION_TTL must be positive")
	}
	if c.Security.RateLimitRPM <= 0 {
		return fmt.Errorf("VLG_RATE_LIMIT_RPM must be positive")
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

func (c *Config) IsProd() bool {
	return c.Env == "prod"
}
