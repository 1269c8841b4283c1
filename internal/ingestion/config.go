package ingestion

import (
	"fmt"
	"os"
	"strconv"
)

// Config controls how the exported dataset is split.
type Config struct {
	TrainRatio float64 `toml:"train_ratio"`
	Seed       uint64  `toml:"seed"`
}

// Env maps config fields to environment variable names.
type Env struct {
	TrainRatio string
	Seed       string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.TrainRatio != 0 {
		c.TrainRatio = overlay.TrainRatio
	}
	if overlay.Seed != 0 {
		c.Seed = overlay.Seed
	}
}

func (c *Config) loadDefaults() {
	if c.TrainRatio == 0 {
		c.TrainRatio = 0.8
	}
	if c.Seed == 0 {
		c.Seed = 42
	}
}

func (c *Config) loadEnv(env *Env) {
	if v := os.Getenv(env.TrainRatio); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.TrainRatio = f
		}
	}
	if v := os.Getenv(env.Seed); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.Seed = n
		}
	}
}

func (c *Config) validate() error {
	if !(c.TrainRatio > 0 && c.TrainRatio < 1) {
		return fmt.Errorf("train_ratio must be in (0,1): %v", c.TrainRatio)
	}
	return nil
}
