// Package registry stores and retrieves the promoted model bundle.
// Every variant is bound to a single key; a missing key is reported as an
// absent model rather than an error.
package registry

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/propensity/pkg/faults"
	"github.com/JaimeStill/propensity/pkg/model"
	"github.com/JaimeStill/propensity/pkg/storage"
)

// Registry is the capability set shared by all registry variants.
type Registry interface {
	// Exists reports whether a model is stored at the registry key.
	Exists(ctx context.Context) (bool, error)
	// Load returns the stored bundle, or nil with no error when the key does not exist.
	Load(ctx context.Context) (*model.Bundle, error)
	// Save stores b at the registry key, replacing any existing model.
	Save(ctx context.Context, b *model.Bundle) error
	// Location identifies the backing store and key, e.g. "s3://bucket/model.gob".
	Location() string
}

const contentType = "application/octet-stream"

func encode(b *model.Bundle) ([]byte, error) {
	var buf bytes.Buffer
	if err := b.Encode(&buf); err != nil {
		return nil, faults.Wrap(faults.KindRegistry, err)
	}
	return buf.Bytes(), nil
}

// New constructs the registry variant selected by cfg. store is required
// only for the blob variant.
func New(cfg *Config, store storage.System, logger *slog.Logger) (Registry, error) {
	switch cfg.Kind {
	case KindBlob:
		if store == nil {
			return nil, fmt.Errorf("blob registry requires a storage system")
		}
		return NewBlob(store, cfg.Key, logger), nil
	case KindS3:
		client, err := NewS3Client(cfg)
		if err != nil {
			return nil, err
		}
		return NewS3(client, cfg.Bucket, cfg.Key, logger), nil
	case KindLocal:
		local, err := NewLocal(cfg.Root, cfg.Key, logger)
		if err != nil {
			return nil, err
		}
		return local, nil
	default:
		return nil, fmt.Errorf("unknown registry kind %q", cfg.Kind)
	}
}
