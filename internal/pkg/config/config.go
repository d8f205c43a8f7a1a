package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Invalidation bus backends.
const (
	BackendRedis = "redis"
	BackendNATS  = "nats"
	BackendNone  = "none"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Schema       SchemaConfig
	Invalidation InvalidationConfig
	Mongo        MongoConfig
	Redis        RedisConfig
}

type SchemaConfig struct {
	CacheTTL      time.Duration `env:"SCHEMA_CACHE_TTL,     default=60s"`
	FetchTimeout  time.Duration `env:"SCHEMA_FETCH_TIMEOUT, default=5s"`
	CompatWorkers int           `env:"COMPAT_WORKERS,       default=4"`
}

type InvalidationConfig struct {
	Backend string `env:"INVALIDATION_BACKEND, default=redis"`
	Channel string `env:"INVALIDATION_CHANNEL, default=customfields.schema.changed"`
	NATSURL string `env:"NATS_URL,             default=nats://localhost:4222"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=action_plans"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := Process(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// Process resolves the configuration from l and checks the values envconfig
// cannot express.
func Process(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Invalidation.Backend {
	case BackendRedis, BackendNATS, BackendNone:
	default:
		return fmt.Errorf("INVALIDATION_BACKEND: unknown backend %q", c.Invalidation.Backend)
	}
	if c.Schema.CacheTTL <= 0 {
		return fmt.Errorf("SCHEMA_CACHE_TTL: must be positive, got %s", c.Schema.CacheTTL)
	}
	if c.Schema.FetchTimeout <= 0 {
		return fmt.Errorf("SCHEMA_FETCH_TIMEOUT: must be positive, got %s", c.Schema.FetchTimeout)
	}
	if c.Schema.CompatWorkers < 1 {
		return fmt.Errorf("COMPAT_WORKERS: must be at least 1, got %d", c.Schema.CompatWorkers)
	}
	return nil
}

// IsProduction reports whether ENV selects production behaviour (JSON logs,
// mandatory JWT secret).
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
