// Package config loads the service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Store backends
const (
	StoreFile  = "file"
	StoreRedis = "redis"
)

// Config holds all runtime configuration values, read from SEATING_* variables.
type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	Store    string `envconfig:"STORE" default:"file"`
	SavePath string `envconfig:"SAVE_PATH" default:"seating_chart.bin"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`
	GinMode  string `envconfig:"GIN_MODE" default:"release"`
	// Seed fixes the shuffle order; 0 means a random seed.
	Seed uint64 `envconfig:"SEED" default:"0"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisKey      string `envconfig:"REDIS_KEY" default:"seating:chart"`
}

// Load reads an optional .env file and then the SEATING_* environment.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("seating", &cfg); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if cfg.Store != StoreFile && cfg.Store != StoreRedis {
		return Config{}, fmt.Errorf("config error: SEATING_STORE must be %q or %q, got %q", StoreFile, StoreRedis, cfg.Store)
	}
	return cfg, nil
}
