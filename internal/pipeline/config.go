package pipeline

import (
	"fmt"
	"os"

	"github.com/JaimeStill/propensity/internal/ingestion"
	"github.com/JaimeStill/propensity/internal/trainer"
)

// Config holds run placement, the schema location, and per-stage settings.
type Config struct {
	ArtifactDir string           `toml:"artifact_dir"`
	SchemaPath  string           `toml:"schema_path"`
	Ingestion   ingestion.Config `toml:"ingestion"`
	Trainer     trainer.Config   `toml:"trainer"`
}

// Env maps config fields to environment variable names.
type Env struct {
	ArtifactDir string
	SchemaPath  string
	Ingestion   *ingestion.Env
	Trainer     *trainer.Env
}

// Finalize applies defaults, environment variable overrides, and validation
// for the pipeline and each stage.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()

	var ingestionEnv *ingestion.Env
	var trainerEnv *trainer.Env
	if env != nil {
		c.loadEnv(env)
		ingestionEnv, trainerEnv = env.Ingestion, env.Trainer
	}

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Ingestion.Finalize(ingestionEnv); err != nil {
		return fmt.Errorf("ingestion: %w", err)
	}
	if err := c.Trainer.Finalize(trainerEnv); err != nil {
		return fmt.Errorf("trainer: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.ArtifactDir != "" {
		c.ArtifactDir = overlay.ArtifactDir
	}
	if overlay.SchemaPath != "" {
		c.SchemaPath = overlay.SchemaPath
	}
	c.Ingestion.Merge(&overlay.Ingestion)
	c.Trainer.Merge(&overlay.Trainer)
}

func (c *Config) loadDefaults() {
	if c.ArtifactDir == "" {
		c.ArtifactDir = "artifact"
	}
	if c.SchemaPath == "" {
		c.SchemaPath = "config/schema.yaml"
	}
}

func (c *Config) loadEnv(env *Env) {
	if v := os.Getenv(env.ArtifactDir); v != "" {
		c.ArtifactDir = v
	}
	if v := os.Getenv(env.SchemaPath); v != "" {
		c.SchemaPath = v
	}
}

func (c *Config) validate() error {
	if c.ArtifactDir == "" {
		return fmt.Errorf("artifact_dir required")
	}
	return nil
}
