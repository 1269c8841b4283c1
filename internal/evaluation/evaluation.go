// Package evaluation compares a freshly trained model against the promoted
// model on the same held-out partition.
package evaluation

import (
	"context"
	"log/slog"

	"github.com/JaimeStill/propensity/internal/artifact"
	"github.com/JaimeStill/propensity/pkg/dataset"
	"github.com/JaimeStill/propensity/pkg/faults"
	"github.com/JaimeStill/propensity/pkg/features"
	"github.com/JaimeStill/propensity/pkg/model"
	"github.com/JaimeStill/propensity/pkg/registry"
	"github.com/JaimeStill/propensity/pkg/schema"
)

// Response is the champion/challenger decision.
type Response struct {
	TrainedF1  float64
	BestF1     *float64
	Accepted   bool
	Difference float64
}

// Compare accepts trained when it beats the promoted score, treating an
// absent promoted model as a score of 0. Difference is measured against the
// promoted score as reported.
func Compare(trained float64, best *float64) Response {
	var previous float64
	if best != nil {
		previous = *best
	}
	return Response{
		TrainedF1:  trained,
		BestF1:     best,
		Accepted:   trained > max(previous, 0),
		Difference: trained - previous,
	}
}

// Evaluator runs the evaluation stage.
type Evaluator struct {
	registry    registry.Registry
	schema      *schema.Schema
	transformer *features.Transformer
	logger      *slog.Logger
}

// New creates an Evaluator against reg.
func New(reg registry.Registry, s *schema.Schema, logger *slog.Logger) *Evaluator {
	return &Evaluator{
		registry:    reg,
		schema:      s,
		transformer: features.New(s, logger),
		logger:      logger.With("stage", "evaluation"),
	}
}

// Evaluate scores the promoted model, if any, on the test partition of in
// and decides whether the model described by tr should replace it.
// The trained model is not refit or rescored.
func (e *Evaluator) Evaluate(ctx context.Context, in artifact.DataIngestion, tr artifact.ModelTrainer) (artifact.ModelEvaluation, error) {
	best, err := e.bestScore(ctx, in.TestFilePath)
	if err != nil {
		return artifact.ModelEvaluation{}, err
	}

	resp := Compare(tr.Metric.F1, best)

	attrs := []any{
		"trained_f1", resp.TrainedF1,
		"accepted", resp.Accepted,
		"difference", resp.Difference,
	}
	if best != nil {
		attrs = append(attrs, "best_f1", *best)
	}
	e.logger.Info("evaluation complete", attrs...)

	return artifact.ModelEvaluation{
		Accepted:         resp.Accepted,
		ChangedAccuracy:  resp.Difference,
		TrainedF1:        resp.TrainedF1,
		BestF1:           resp.BestF1,
		RegistryLocation: e.registry.Location(),
		TrainedModelPath: tr.ModelFilePath,
	}, nil
}

func (e *Evaluator) bestScore(ctx context.Context, testPath string) (*float64, error) {
	bundle, err := e.registry.Load(ctx)
	if err != nil {
		return nil, faults.Wrap(faults.KindEvaluation, err)
	}
	if bundle == nil {
		e.logger.Info("no promoted model", "registry", e.registry.Location())
		return nil, nil
	}

	test, err := dataset.LoadFile(testPath)
	if err != nil {
		return nil, faults.Wrap(faults.KindEvaluation, err)
	}
	inputs, labels, err := features.SplitTarget(test, e.schema.TargetColumn)
	if err != nil {
		return nil, faults.Wrap(faults.KindEvaluation, err)
	}
	x, err := e.transformer.Transform(inputs)
	if err != nil {
		return nil, faults.Wrap(faults.KindEvaluation, err)
	}

	predicted, err := model.NewEstimator(bundle, e.logger).Predict(x)
	if err != nil {
		return nil, faults.Wrap(faults.KindEvaluation, err)
	}
	f1, err := model.F1(labels, predicted)
	if err != nil {
		return nil, faults.Wrap(faults.KindEvaluation, err)
	}
	return &f1, nil
}
