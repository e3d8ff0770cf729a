package config

import (
	"fmt"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the application configuration. JWTSecret and DatabasePath
// have no defaults on purpose: the process must not come up without them.
type Config struct {
	ServerPort     int           `env:"PORT" envDefault:"8080"`
	DatabasePath   string        `env:"DATABASE_PATH" validate:"required"`
	JWTSecret      string        `env:"JWT_SECRET" validate:"required"`
	AllowedOrigin  string        `env:"ALLOWED_ORIGIN" envDefault:"http://localhost:3000"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	StatsSchedule  string        `env:"STATS_SCHEDULE" envDefault:"@every 1m"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
}

// Load reads configuration from a .env file (if present) and the
// environment, then validates it.
func Load() (*Config, error) {
	// A missing .env file is fine; real deployments set the environment
	// directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
