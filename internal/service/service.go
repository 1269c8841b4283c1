// Package service binds the training pipeline, the prediction classifier,
// and run history to the shared infrastructure. The web app, the JSON API,
// and the CLI all drive the domain through a Service.
package service

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/JaimeStill/propensity/internal/access"
	"github.com/JaimeStill/propensity/internal/config"
	"github.com/JaimeStill/propensity/internal/infrastructure"
	"github.com/JaimeStill/propensity/internal/pipeline"
	"github.com/JaimeStill/propensity/internal/prediction"
	"github.com/JaimeStill/propensity/internal/runs"
	"github.com/JaimeStill/propensity/pkg/schema"
)

const trainKey = "train"

// Trainer runs the training pipeline.
type Trainer interface {
	Train(ctx context.Context) (*pipeline.Result, error)
}

// Predictor classifies one customer.
type Predictor interface {
	Predict(ctx context.Context, v prediction.VehicleData) (int, error)
}

// Service is the domain facade shared by every entry point.
type Service struct {
	pipeline   *pipeline.Pipeline
	classifier *prediction.Classifier
	runs       runs.System
	group      singleflight.Group
	logger     *slog.Logger
}

// New builds the pipeline and classifier. Run history is recorded when the
// infrastructure has a database.
func New(cfg *config.Config, infra *infrastructure.Infrastructure) (*Service, error) {
	logger := infra.Logger.With("system", "service")

	s, err := schema.Load(cfg.Pipeline.SchemaPath)
	if err != nil {
		return nil, err
	}

	svc := &Service{
		classifier: prediction.New(infra.Registry, s, infra.Logger),
		logger:     logger,
	}

	var opts []pipeline.Option
	if infra.Database != nil {
		svc.runs = runs.New(infra.Database.Connection(), infra.Logger, cfg.API.Pagination)
		opts = append(opts, pipeline.WithRecorder(svc.runs))
	}

	src := pipeline.Source{
		Exporter:   access.New(infra.Docstore, infra.Logger),
		Collection: cfg.Docstore.Collection,
	}
	p, err := pipeline.New(cfg.Pipeline, src, infra.Registry, infra.Logger, opts...)
	if err != nil {
		return nil, err
	}
	svc.pipeline = p

	return svc, nil
}

// Runs returns the run history system, or nil when no database is configured.
func (s *Service) Runs() runs.System {
	return s.runs
}

// Train runs the pipeline. Concurrent calls share one run; a caller that
// gives up waiting does not cancel the run for the others.
func (s *Service) Train(ctx context.Context) (*pipeline.Result, error) {
	ch := s.group.DoChan(trainKey, func() (any, error) {
		return s.pipeline.Run(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Shared {
			s.logger.Info("training request joined an in-flight run")
		}
		res, _ := r.Val.(*pipeline.Result)
		return res, r.Err
	}
}

// Predict classifies v with the currently promoted model.
func (s *Service) Predict(ctx context.Context, v prediction.VehicleData) (int, error) {
	return s.classifier.Predict(ctx, v)
}
