// Package config loads process configuration from the environment and
// session rosters from files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the process settings.
type Config struct {
	Addr          string        `env:"WARGAME_ADDR" envDefault:":8080"`
	PublicURL     string        `env:"WARGAME_PUBLIC_URL" envDefault:"http://localhost:8080"`
	DBPath        string        `env:"WARGAME_DB_PATH" envDefault:"wargame.db"`
	LogLevel      string        `env:"WARGAME_LOG_LEVEL" envDefault:"info"`
	LogDev        bool          `env:"WARGAME_LOG_DEV" envDefault:"false"`
	RemoteTimeout time.Duration `env:"WARGAME_REMOTE_TIMEOUT" envDefault:"10s"`
	TurnSeconds   int           `env:"WARGAME_TURN_SECONDS" envDefault:"0"`
	OTelEndpoint  string        `env:"WARGAME_OTEL_ENDPOINT"`
}

// Load reads an optional .env file and parses the environment.
func Load(dotenvPaths ...string) (Config, error) {
	if err := godotenv.Load(dotenvPaths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return ParseEnv()
}

// ParseEnv parses the environment without touching .env files.
func ParseEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
