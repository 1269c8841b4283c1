package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/propensity/internal/config"
)

const baseConfig = `
version = "0.1.0"
shutdown_timeout = "30s"

[server]
port = 8000

[mongodb]
database = "Proj1"
collection = "Proj1-Data"

[database]
host = "localhost"
port = 5432

[registry]
kind = "local"
root = "registry"

[pipeline]
artifact_dir = "artifact"

[pipeline.ingestion]
train_ratio = 0.75
seed = 7

[api]
base_path = "/api"

[api.pagination]
default_page_size = 25
max_page_size = 50
`

const overlayConfig = `
[server]
port = 9090

[mongodb]
collection = "Proj1-Staging"
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("server port: got %d, want 8000", cfg.Server.Port)
	}
	if cfg.Docstore.Collection != "Proj1-Data" {
		t.Errorf("collection: got %s, want Proj1-Data", cfg.Docstore.Collection)
	}
	if cfg.Pipeline.Ingestion.TrainRatio != 0.75 {
		t.Errorf("train ratio: got %v, want 0.75", cfg.Pipeline.Ingestion.TrainRatio)
	}
	if cfg.Pipeline.Ingestion.Seed != 7 {
		t.Errorf("seed: got %d, want 7", cfg.Pipeline.Ingestion.Seed)
	}
	if cfg.API.Pagination.DefaultPageSize != 25 {
		t.Errorf("default page size: got %d, want 25", cfg.API.Pagination.DefaultPageSize)
	}
	if cfg.Registry.Key != "model.gob" {
		t.Errorf("registry key default: got %s, want model.gob", cfg.Registry.Key)
	}
	if cfg.ShutdownTimeoutDuration() != 30*time.Second {
		t.Errorf("shutdown timeout: got %v, want 30s", cfg.ShutdownTimeoutDuration())
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)
	chdir(t, dir)

	t.Setenv("PROPENSITY_ENV", "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090 (from overlay)", cfg.Server.Port)
	}
	if cfg.Docstore.Collection != "Proj1-Staging" {
		t.Errorf("collection: got %s, want Proj1-Staging (from overlay)", cfg.Docstore.Collection)
	}
	if cfg.Docstore.Database != "Proj1" {
		t.Errorf("database: got %s, want Proj1 (from base)", cfg.Docstore.Database)
	}
	if cfg.Env() != "staging" {
		t.Errorf("env: got %s, want staging", cfg.Env())
	}
}

func TestLoadEnvVarOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	t.Setenv("PROPENSITY_VERSION", "2.0.0")
	t.Setenv("PROPENSITY_SERVER_PORT", "3000")
	t.Setenv("PROPENSITY_MONGODB_URL", "mongodb://localhost:27017")
	t.Setenv("PROPENSITY_TRAIN_RATIO", "0.9")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Version != "2.0.0" {
		t.Errorf("version: got %s, want 2.0.0", cfg.Version)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("server port: got %d, want 3000", cfg.Server.Port)
	}
	if cfg.Docstore.URL != "mongodb://localhost:27017" {
		t.Errorf("mongodb url: got %s", cfg.Docstore.URL)
	}
	if cfg.Pipeline.Ingestion.TrainRatio != 0.9 {
		t.Errorf("train ratio: got %v, want 0.9", cfg.Pipeline.Ingestion.TrainRatio)
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load without config.toml failed: %v", err)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("server port default: got %d, want 8000", cfg.Server.Port)
	}
	if cfg.Server.WriteTimeout != "30m" {
		t.Errorf("write timeout default: got %s, want 30m", cfg.Server.WriteTimeout)
	}
	if cfg.Env() != "local" {
		t.Errorf("env default: got %s, want local", cfg.Env())
	}
	if cfg.Registry.Kind != "local" {
		t.Errorf("registry kind default: got %s, want local", cfg.Registry.Kind)
	}
	if cfg.Pipeline.SchemaPath != "config/schema.yaml" {
		t.Errorf("schema path default: got %s", cfg.Pipeline.SchemaPath)
	}
	if cfg.Docstore.URL != "" {
		t.Errorf("mongodb url should stay unset, got %s", cfg.Docstore.URL)
	}
}

func TestLoadBlobRegistryRequiresStorage(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PROPENSITY_REGISTRY_KIND", "blob")

	_, err := config.Load()
	if err == nil {
		t.Fatal("expected storage validation error")
	}
	if !strings.Contains(err.Error(), "storage") {
		t.Errorf("error should name the storage section: %v", err)
	}

	t.Setenv("PROPENSITY_STORAGE_CONNECTION_STRING", "UseDevelopmentStorage=true")
	if _, err := config.Load(); err != nil {
		t.Errorf("load with storage configured: %v", err)
	}
}

func TestServerHTTPServer(t *testing.T) {
	cfg := config.ServerConfig{Port: 8100}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	srv := cfg.HTTPServer(nil)
	if srv.Addr != "0.0.0.0:8100" {
		t.Errorf("addr: got %s, want 0.0.0.0:8100", srv.Addr)
	}
	if srv.ReadHeaderTimeout != 10*time.Second {
		t.Errorf("read header timeout: got %v, want 10s", srv.ReadHeaderTimeout)
	}
	if srv.ReadTimeout != time.Minute {
		t.Errorf("read timeout: got %v, want 1m", srv.ReadTimeout)
	}
	if srv.WriteTimeout != 30*time.Minute {
		t.Errorf("write timeout: got %v, want 30m", srv.WriteTimeout)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"malformed toml", "[server\nport = 1", "parse config"},
		{"bad shutdown timeout", `shutdown_timeout = "soon"`, "shutdown_timeout"},
		{"bad port", "[server]\nport = 70000", "invalid port"},
		{"bad ratio", "[pipeline.ingestion]\ntrain_ratio = 1.5", "pipeline"},
		{"write shorter than read", "[server]\nread_timeout = \"2m\"\nwrite_timeout = \"30s\"", "shorter than read_timeout"},
		{"zero write timeout", "[server]\nwrite_timeout = \"0s\"", "invalid write_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, "config.toml", tt.content)

			_, err := config.LoadFile(filepath.Join(dir, "config.toml"))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should contain %q", err, tt.want)
			}
		})
	}
}
