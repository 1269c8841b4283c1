// Package pusher promotes an accepted model to the registry.
package pusher

import (
	"context"
	"errors"
	"log/slog"

	"github.com/JaimeStill/propensity/internal/artifact"
	"github.com/JaimeStill/propensity/pkg/faults"
	"github.com/JaimeStill/propensity/pkg/model"
	"github.com/JaimeStill/propensity/pkg/registry"
)

// ErrNotAccepted indicates a push was attempted for a rejected model.
var ErrNotAccepted = errors.New("model was not accepted")

// Pusher runs the promotion stage.
type Pusher struct {
	registry registry.Registry
	logger   *slog.Logger
}

// New creates a Pusher that promotes into reg.
func New(reg registry.Registry, logger *slog.Logger) *Pusher {
	return &Pusher{
		registry: reg,
		logger:   logger.With("stage", "pusher"),
	}
}

// Push uploads the trained bundle named by ev to the registry.
func (p *Pusher) Push(ctx context.Context, ev artifact.ModelEvaluation) (artifact.ModelPusher, error) {
	if !ev.Accepted {
		return artifact.ModelPusher{}, faults.Wrap(faults.KindRegistry, ErrNotAccepted)
	}

	bundle, err := model.LoadFile(ev.TrainedModelPath)
	if err != nil {
		return artifact.ModelPusher{}, faults.Wrap(faults.KindRegistry, err)
	}
	if err := p.registry.Save(ctx, bundle); err != nil {
		return artifact.ModelPusher{}, faults.Wrap(faults.KindRegistry, err)
	}

	p.logger.Info("model promoted", "registry", p.registry.Location(), "f1", ev.TrainedF1)
	return artifact.ModelPusher{RegistryLocation: p.registry.Location()}, nil
}
