package registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/propensity/pkg/faults"
	"github.com/JaimeStill/propensity/pkg/model"
	"github.com/JaimeStill/propensity/pkg/storage"
)

// Blob is a registry backed by a blob storage container.
type Blob struct {
	store  storage.System
	key    string
	logger *slog.Logger
}

// NewBlob binds a blob registry to key within store's container.
func NewBlob(store storage.System, key string, logger *slog.Logger) *Blob {
	return &Blob{
		store:  store,
		key:    key,
		logger: logger.With("system", "registry", "kind", KindBlob),
	}
}

func (r *Blob) Location() string {
	return fmt.Sprintf("blob://%s/%s", r.store.Container(), r.key)
}

func (r *Blob) Exists(ctx context.Context) (bool, error) {
	ok, err := r.store.Exists(ctx, r.key)
	if err != nil {
		return false, faults.Wrap(faults.KindRegistry, err)
	}
	return ok, nil
}

func (r *Blob) Load(ctx context.Context) (*model.Bundle, error) {
	body, err := r.store.Download(ctx, r.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			r.logger.Info("no model in registry", "location", r.Location())
			return nil, nil
		}
		return nil, faults.Wrap(faults.KindRegistry, err)
	}
	defer body.Close()

	b, err := model.Decode(body)
	if err != nil {
		return nil, faults.Wrap(faults.KindRegistry, err)
	}
	return b, nil
}

func (r *Blob) Save(ctx context.Context, b *model.Bundle) error {
	data, err := encode(b)
	if err != nil {
		return err
	}
	if err := r.store.Upload(ctx, r.key, bytes.NewReader(data), contentType); err != nil {
		return faults.Wrap(faults.KindRegistry, err)
	}
	r.logger.Info("model saved", "location", r.Location(), "bytes", len(data))
	return nil
}
