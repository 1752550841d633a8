// Package config loads server settings from the environment. A .env file
// in the working directory is read first when present.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StoreBadger   = "badger"
	StorePostgres = "postgres"
)

type Config struct {
	Addr             string        `env:"TEAMBOT_ADDR"              envDefault:":8080"`
	LogLevel         string        `env:"TEAMBOT_LOG_LEVEL"         envDefault:"info"`
	Store            string        `env:"TEAMBOT_STORE"             envDefault:"memory"`
	BadgerPath       string        `env:"TEAMBOT_BADGER_PATH"       envDefault:"data/sessions"`
	DatabaseURL      string        `env:"TEAMBOT_DATABASE_URL"`
	SnapshotInterval time.Duration `env:"TEAMBOT_SNAPSHOT_INTERVAL" envDefault:"30s"`
	CommandTimeout   time.Duration `env:"TEAMBOT_COMMAND_TIMEOUT"   envDefault:"5s"`
	SessionInbox     int           `env:"TEAMBOT_SESSION_INBOX"     envDefault:"64"`
}

// Load reads .env (if any) and parses the environment into a Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreBadger:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: TEAMBOT_DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("config: unknown store %q", c.Store)
	}
	if c.SnapshotInterval <= 0 {
		return fmt.Errorf("config: snapshot interval must be positive, got %s", c.SnapshotInterval)
	}
	if c.CommandTimeout <= 0 {
		return fmt.Errorf("config: command timeout must be positive, got %s", c.CommandTimeout)
	}
	if c.SessionInbox < 1 {
		return fmt.Errorf("config: session inbox must be at least 1, got %d", c.SessionInbox)
	}
	return nil
}
