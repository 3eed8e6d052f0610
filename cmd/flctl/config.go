package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/joshuapare/flalloc/internal/region"
)

// envPrefix namespaces every environment variable flctl reads.
const envPrefix = "FLCTL"

// Config is read from FLCTL_* environment variables, optionally seeded
// from a .env file. Command-line flags override it.
type Config struct {
	ArenaSize int    `envconfig:"ARENA_SIZE" default:"65536"`
	Backing   string `envconfig:"BACKING" default:"heap"`
	Scribble  bool   `envconfig:"SCRIBBLE" default:"false"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"warn"`
	LogFile   string `envconfig:"LOG_FILE"`
}

// loadConfig loads envFile (if present) into the environment and then
// processes FLCTL_* variables. Variables already set win over the file.
// The result is validated by the caller once flag overrides are applied.
func loadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process config: %w", err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.ArenaSize <= 0 {
		return fmt.Errorf("arena size must be positive, got %d", c.ArenaSize)
	}
	switch region.Kind(c.Backing) {
	case region.KindHeap, region.KindMmap:
	default:
		return fmt.Errorf("unknown backing %q (want heap or mmap)", c.Backing)
	}
	return nil
}
