// Package config loads fhash defaults from the environment and an
// optional .env file. Command-line flags override these values.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"

	"github.com/drgo/fhash"
)

// Config holds the settings that can come from the environment.
type Config struct {
	Algorithm    string        `env:"FHASH_ALGORITHM,default=sha256"`
	ChunkSize    int           `env:"FHASH_CHUNK_SIZE,default=8192"`
	TickInterval time.Duration `env:"FHASH_TICK,default=100ms"`
	LogFile      string        `env:"FHASH_LOG_FILE"`
	NoColor      string        `env:"NO_COLOR"`
}

// Load reads dotenvFiles (a missing file is not an error; an unreadable
// one is), then the process environment. With no files given it looks
// for ./.env.
func Load(dotenvFiles ...string) (Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, file := range dotenvFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", file, err)
		}
	}

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the values that flags and the environment can set.
func (c Config) Validate() error {
	if _, err := fhash.ParseAlgorithm(c.Algorithm); err != nil {
		return err
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.ChunkSize)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", c.TickInterval)
	}
	return nil
}

// ColorDisabled follows the NO_COLOR convention: any non-empty value
// turns color off.
func (c Config) ColorDisabled() bool {
	return c.NoColor != ""
}

// ParsedAlgorithm returns the configured algorithm. Call Validate first.
func (c Config) ParsedAlgorithm() fhash.Algorithm {
	algorithm, _ := fhash.ParseAlgorithm(c.Algorithm)
	return algorithm
}
