// Package config loads the service configuration from config.toml, an
// optional per-environment overlay, and PROPENSITY_* environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/propensity/internal/ingestion"
	"github.com/JaimeStill/propensity/internal/pipeline"
	"github.com/JaimeStill/propensity/internal/trainer"
	"github.com/JaimeStill/propensity/pkg/database"
	"github.com/JaimeStill/propensity/pkg/docstore"
	"github.com/JaimeStill/propensity/pkg/registry"
	"github.com/JaimeStill/propensity/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvPropensityEnv             = "PROPENSITY_ENV"
	EnvPropensityShutdownTimeout = "PROPENSITY_SHUTDOWN_TIMEOUT"
	EnvPropensityVersion         = "PROPENSITY_VERSION"
)

var docstoreEnv = &docstore.Env{
	URL:         "PROPENSITY_MONGODB_URL",
	Database:    "PROPENSITY_MONGODB_DATABASE",
	Collection:  "PROPENSITY_MONGODB_COLLECTION",
	ConnTimeout: "PROPENSITY_MONGODB_CONN_TIMEOUT",
}

var databaseEnv = &database.Env{
	Host:            "PROPENSITY_DB_HOST",
	Port:            "PROPENSITY_DB_PORT",
	Name:            "PROPENSITY_DB_NAME",
	User:            "PROPENSITY_DB_USER",
	Password:        "PROPENSITY_DB_PASSWORD",
	SSLMode:         "PROPENSITY_DB_SSL_MODE",
	MaxOpenConns:    "PROPENSITY_DB_MAX_OPEN_CONNS",
	ConnMaxLifetime: "PROPENSITY_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "PROPENSITY_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "PROPENSITY_STORAGE_CONTAINER_NAME",
	ConnectionString: "PROPENSITY_STORAGE_CONNECTION_STRING",
	AccountURL:       "PROPENSITY_STORAGE_ACCOUNT_URL",
}

var registryEnv = &registry.Env{
	Kind:     "PROPENSITY_REGISTRY_KIND",
	Key:      "PROPENSITY_REGISTRY_KEY",
	Bucket:   "PROPENSITY_REGISTRY_BUCKET",
	Region:   "PROPENSITY_REGISTRY_REGION",
	Endpoint: "PROPENSITY_REGISTRY_ENDPOINT",
	Root:     "PROPENSITY_REGISTRY_ROOT",
}

var pipelineEnv = &pipeline.Env{
	ArtifactDir: "PROPENSITY_ARTIFACT_DIR",
	SchemaPath:  "PROPENSITY_SCHEMA_PATH",
	Ingestion: &ingestion.Env{
		TrainRatio: "PROPENSITY_TRAIN_RATIO",
		Seed:       "PROPENSITY_SPLIT_SEED",
	},
	Trainer: &trainer.Env{
		LearningRate:  "PROPENSITY_TRAINER_LEARNING_RATE",
		MaxIterations: "PROPENSITY_TRAINER_MAX_ITERATIONS",
		ExpectedScore: "PROPENSITY_TRAINER_EXPECTED_SCORE",
	},
}

// Config is the root configuration for the propensity service and CLI.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Docstore        docstore.Config `toml:"mongodb"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	Registry        registry.Config `toml:"registry"`
	Pipeline        pipeline.Config `toml:"pipeline"`
	API             APIConfig       `toml:"api"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the PROPENSITY_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvPropensityEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. Without a config.toml, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	return LoadFile(BaseConfigFile)
}

// LoadFile is Load with an explicit base config path. The overlay is looked
// up in the working directory.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(path); err == nil {
		loaded, err := load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if overlay := overlayPath(); overlay != "" {
		o, err := load(overlay)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", overlay, err)
		}
		cfg.Merge(o)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Docstore.Merge(&overlay.Docstore)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Registry.Merge(&overlay.Registry)
	c.Pipeline.Merge(&overlay.Pipeline)
	c.API.Merge(&overlay.API)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Docstore.Finalize(docstoreEnv); err != nil {
		return fmt.Errorf("mongodb: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Registry.Finalize(registryEnv); err != nil {
		return fmt.Errorf("registry: %w", err)
	}
	if c.Registry.Kind == registry.KindBlob {
		if err := c.Storage.Finalize(storageEnv); err != nil {
			return fmt.Errorf("storage: %w", err)
		}
	}
	if err := c.Pipeline.Finalize(pipelineEnv); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvPropensityShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvPropensityVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvPropensityEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
