// Package infrastructure assembles the shared systems every entry point
// needs: lifecycle, logging, the document store, the model registry, and the
// optional run history database.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/propensity/internal/config"
	"github.com/JaimeStill/propensity/pkg/database"
	"github.com/JaimeStill/propensity/pkg/docstore"
	"github.com/JaimeStill/propensity/pkg/lifecycle"
	"github.com/JaimeStill/propensity/pkg/registry"
	"github.com/JaimeStill/propensity/pkg/storage"
)

// Infrastructure holds the systems shared across modules. Database and
// Storage are nil when not configured.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Docstore  docstore.System
	Database  database.System
	Storage   storage.System
	Registry  registry.Registry
}

// New creates every configured system without starting any of them.
func New(cfg *config.Config) (*Infrastructure, error) {
	return NewWithLogger(cfg, slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

// NewWithLogger is New with a caller-supplied logger.
func NewWithLogger(cfg *config.Config, logger *slog.Logger) (*Infrastructure, error) {
	infra := &Infrastructure{
		Lifecycle: lifecycle.New(),
		Logger:    logger,
	}

	ds, err := docstore.New(&cfg.Docstore, logger)
	if err != nil {
		return nil, fmt.Errorf("docstore init failed: %w", err)
	}
	infra.Docstore = ds

	if cfg.Database.Enabled() {
		db, err := database.New(&cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		infra.Database = db
	}

	if cfg.Registry.Kind == registry.KindBlob {
		store, err := storage.New(&cfg.Storage, logger)
		if err != nil {
			return nil, fmt.Errorf("storage init failed: %w", err)
		}
		infra.Storage = store
	}

	reg, err := registry.New(&cfg.Registry, infra.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("registry init failed: %w", err)
	}
	infra.Registry = reg

	return infra, nil
}

// Start registers every configured system with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Docstore.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("docstore start failed: %w", err)
	}
	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
	}
	if i.Storage != nil {
		if err := i.Storage.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("storage start failed: %w", err)
		}
	}
	i.Logger.Info("infrastructure started", "registry", i.Registry.Location())
	return nil
}
