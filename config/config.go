// Package config loads the server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the server configuration.
type Config struct {
	Addr      string `env:"TICKKER_ADDR" envDefault:":8080"`
	DataDir   string `env:"TICKKER_DATA_DIR" envDefault:"data"`
	CachePath string `env:"TICKKER_CACHE_PATH" envDefault:"data/prices.db"`
	Benchmark string `env:"TICKKER_BENCHMARK" envDefault:"SPY"`
	// CORSOrigins are the origins allowed to call the API.
	CORSOrigins []string `env:"TICKKER_CORS_ORIGINS" envDefault:"*" envSeparator:","`
	Fetch       Fetch
	Yahoo       Yahoo
	Log         Log
}

type Fetch struct {
	Concurrency int           `env:"TICKKER_FETCH_CONCURRENCY" envDefault:"4"`
	Timeout     time.Duration `env:"TICKKER_FETCH_TIMEOUT" envDefault:"10s"`
}

type Yahoo struct {
	URL string `env:"TICKKER_YAHOO_URL" envDefault:"https://query1.finance.yahoo.com"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Pretty bool   `env:"LOG_PRETTY" envDefault:"false"`
}

// Load reads the optional dotenv files, then parses the environment. Variables
// already set take precedence over dotenv files.
func Load(dotenv ...string) (*Config, error) {
	if len(dotenv) == 0 {
		dotenv = []string{".env"}
	}
	for _, file := range dotenv {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", file, err)
		}
	}
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config error: %w", err)
	}
	if cfg.Fetch.Concurrency <= 0 {
		return nil, fmt.Errorf("TICKKER_FETCH_CONCURRENCY must be positive, got %d", cfg.Fetch.Concurrency)
	}
	return cfg, nil
}
