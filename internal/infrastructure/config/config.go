package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Store backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	SessionSecret   string        `env:"SESSION_SECRET, default=dev-only-session-secret"`
	SessionTTL      time.Duration `env:"SESSION_TTL,    default=720h"`
	PasswordHashing string        `env:"PASSWORD_HASHING, default=plain"`
	SubmissionTTL   time.Duration `env:"SUBMISSION_TTL, default=1h"`
	NotifyWorkers   int           `env:"NOTIFY_WORKERS, default=4"`

	Store StoreConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type StoreConfig struct {
	Backend  string `env:"STORE_BACKEND, default=file"`
	FilePath string `env:"STORE_FILE,    default=data/records.json"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=marketplace"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
	Prefix   string `env:"REDIS_PREFIX,   default=marketplace:"`
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	switch cfg.Store.Backend {
	case BackendFile, BackendMemory, BackendRedis, BackendMongo:
	default:
		return nil, fmt.Errorf("config: unknown STORE_BACKEND %q", cfg.Store.Backend)
	}
	if cfg.IsProduction() && cfg.SessionSecret == "dev-only-session-secret" {
		return nil, fmt.Errorf("config: SESSION_SECRET must be set in production")
	}
	return &cfg, nil
}
