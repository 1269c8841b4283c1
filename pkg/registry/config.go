package registry

import (
	"fmt"
	"os"
)

// Registry variants.
const (
	KindBlob  = "blob"
	KindS3    = "s3"
	KindLocal = "local"
)

// Config selects and parameterizes the registry variant.
// Blob registries take their container settings from storage.Config.
type Config struct {
	Kind     string `toml:"kind"`
	Key      string `toml:"key"`
	Bucket   string `toml:"bucket"`
	Region   string `toml:"region"`
	Endpoint string `toml:"endpoint"`
	Root     string `toml:"root"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Kind     string
	Key      string
	Bucket   string
	Region   string
	Endpoint string
	Root     string
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
	if overlay.Kind != "" {
		c.Kind = overlay.Kind
	}
	if overlay.Key != "" {
		c.Key = overlay.Key
	}
	if overlay.Bucket != "" {
		c.Bucket = overlay.Bucket
	}
	if overlay.Region != "" {
		c.Region = overlay.Region
	}
	if overlay.Endpoint != "" {
		c.Endpoint = overlay.Endpoint
	}
	if overlay.Root != "" {
		c.Root = overlay.Root
	}
}

func (c *Config) loadDefaults() {
	if c.Kind == "" {
		c.Kind = KindLocal
	}
	if c.Key == "" {
		c.Key = "model.gob"
	}
	if c.Region == "" {
		c.Region = "us-east-1"
	}
	if c.Root == "" {
		c.Root = "registry"
	}
}

func (c *Config) loadEnv(env *Env) {
	set := func(name string, dst *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	set(env.Kind, &c.Kind)
	set(env.Key, &c.Key)
	set(env.Bucket, &c.Bucket)
	set(env.Region, &c.Region)
	set(env.Endpoint, &c.Endpoint)
	set(env.Root, &c.Root)
}

func (c *Config) validate() error {
	switch c.Kind {
	case KindBlob, KindLocal:
	case KindS3:
		if c.Bucket == "" {
			return fmt.Errorf("bucket required for s3 registry")
		}
	default:
		return fmt.Errorf("unknown registry kind %q", c.Kind)
	}
	if c.Key == "" {
		return fmt.Errorf("key required")
	}
	return nil
}
