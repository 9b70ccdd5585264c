package config

import (
	"context"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"        validate:"required"`
	Env       string `env:"ENV,       default=development" validate:"oneof=development staging production"`
	JWTSecret string `env:"JWT_SECRET"                     validate:"required,min=32"`
	LogLevel  string `env:"LOG_LEVEL, default=info"        validate:"oneof=trace debug info warn error"`

	Session SessionConfig
	Orders  OrdersConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

type SessionConfig struct {
	TTL          time.Duration `env:"SESSION_TTL,     default=720h" validate:"gt=0"`
	CookieSecure bool          `env:"COOKIE_SECURE,   default=false"`
	Timezone     string        `env:"TIMEZONE,        default=Asia/Tokyo" validate:"required,timezone"`
	Timeout      time.Duration `env:"STORAGE_TIMEOUT, default=3s" validate:"gt=0"`
}

type OrdersConfig struct {
	Holidays      []string `env:"HOLIDAYS"                  validate:"dive,datetime=2006-01-02"`
	RehashWorkers int      `env:"REHASH_WORKERS, default=2" validate:"min=1,max=64"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017" validate:"required"`
	Database string `env:"MONGO_DB,  default=lunch_order"               validate:"required"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379" validate:"required"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0" validate:"min=0"`
}

// Load reads configuration from the process environment and panics if it is
// missing or invalid.
func Load() *Config {
	cfg, err := Parse(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// Parse reads configuration through lookuper and validates it.
func Parse(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
