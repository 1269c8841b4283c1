package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/JaimeStill/propensity/pkg/faults"
	"github.com/JaimeStill/propensity/pkg/model"
	"github.com/JaimeStill/propensity/pkg/storage"
)

// Local is a registry backed by a directory on local disk.
type Local struct {
	root   string
	key    string
	logger *slog.Logger
}

// NewLocal binds a local registry to key under root.
func NewLocal(root, key string, logger *slog.Logger) (*Local, error) {
	if err := storage.ValidateKey(key); err != nil {
		return nil, err
	}
	return &Local{
		root:   root,
		key:    key,
		logger: logger.With("system", "registry", "kind", KindLocal),
	}, nil
}

func (r *Local) path() string {
	return filepath.Join(r.root, filepath.FromSlash(r.key))
}

func (r *Local) Location() string {
	return fmt.Sprintf("file://%s", r.path())
}

func (r *Local) Exists(_ context.Context) (bool, error) {
	_, err := os.Stat(r.path())
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, faults.Wrap(faults.KindRegistry, err)
}

func (r *Local) Load(_ context.Context) (*model.Bundle, error) {
	b, err := model.LoadFile(r.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			r.logger.Info("no model in registry", "location", r.Location())
			return nil, nil
		}
		return nil, faults.Wrap(faults.KindRegistry, err)
	}
	return b, nil
}

// Save writes to a temporary file in the same directory and renames it over
// the key so readers never observe a partial bundle.
func (r *Local) Save(_ context.Context, b *model.Bundle) error {
	target := r.path()
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return faults.Wrap(faults.KindRegistry, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".model-*")
	if err != nil {
		return faults.Wrap(faults.KindRegistry, err)
	}
	defer os.Remove(tmp.Name())

	if err := b.Encode(tmp); err != nil {
		tmp.Close()
		return faults.Wrap(faults.KindRegistry, err)
	}
	if err := tmp.Close(); err != nil {
		return faults.Wrap(faults.KindRegistry, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return faults.Wrap(faults.KindRegistry, err)
	}

	r.logger.Info("model saved", "location", r.Location())
	return nil
}
