// Package trainer fits the preprocessor and classifier on the ingested
// training partition and scores them on the held-out partition.
package trainer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/JaimeStill/propensity/internal/artifact"
	"github.com/JaimeStill/propensity/pkg/dataset"
	"github.com/JaimeStill/propensity/pkg/faults"
	"github.com/JaimeStill/propensity/pkg/features"
	"github.com/JaimeStill/propensity/pkg/model"
	"github.com/JaimeStill/propensity/pkg/schema"
)

var (
	// ErrEmptyTrainingSet indicates the training partition has no rows.
	ErrEmptyTrainingSet = errors.New("training partition is empty")
	// ErrBelowExpected indicates the trained model scored below the configured minimum.
	ErrBelowExpected = errors.New("model score below expected score")
)

// Trainer runs the training stage.
type Trainer struct {
	schema      *schema.Schema
	transformer *features.Transformer
	cfg         Config
	modelPath   string
	logger      *slog.Logger
}

// New creates a Trainer that persists its bundle to modelPath.
func New(s *schema.Schema, cfg Config, modelPath string, logger *slog.Logger) *Trainer {
	return &Trainer{
		schema:      s,
		transformer: features.New(s, logger),
		cfg:         cfg,
		modelPath:   modelPath,
		logger:      logger.With("stage", "trainer"),
	}
}

// Train fits a bundle on the training partition of in, scores it on the
// test partition, and saves it. Failures are TrainingErrors.
func (t *Trainer) Train(ctx context.Context, in artifact.DataIngestion) (artifact.ModelTrainer, error) {
	start := time.Now()

	train, err := dataset.LoadFile(in.TrainFilePath)
	if err != nil {
		return artifact.ModelTrainer{}, faults.Wrap(faults.KindTraining, err)
	}
	if train.Len() == 0 {
		return artifact.ModelTrainer{}, faults.Wrap(faults.KindTraining, ErrEmptyTrainingSet)
	}
	test, err := dataset.LoadFile(in.TestFilePath)
	if err != nil {
		return artifact.ModelTrainer{}, faults.Wrap(faults.KindTraining, err)
	}

	xTrain, yTrain, err := t.prepare(train)
	if err != nil {
		return artifact.ModelTrainer{}, faults.Wrapf(faults.KindTraining, err, "training partition")
	}
	if err := ctx.Err(); err != nil {
		return artifact.ModelTrainer{}, faults.Wrap(faults.KindTraining, err)
	}

	scaler := &model.Scaler{}
	if err := scaler.Fit(xTrain.matrix, xTrain.columns); err != nil {
		return artifact.ModelTrainer{}, faults.Wrap(faults.KindTraining, err)
	}
	scaled, err := scaler.Transform(xTrain.matrix)
	if err != nil {
		return artifact.ModelTrainer{}, faults.Wrap(faults.KindTraining, err)
	}

	clf := model.NewLogisticRegression(t.cfg.Params())
	if err := clf.Fit(scaled, yTrain); err != nil {
		return artifact.ModelTrainer{}, faults.Wrap(faults.KindTraining, err)
	}

	bundle := &model.Bundle{
		Preprocessor: scaler,
		Classifier:   clf,
		Metadata: model.Metadata{
			Name:      "logistic-regression",
			TrainRows: train.Len(),
			TestRows:  test.Len(),
			TrainedAt: time.Now().UTC(),
		},
	}

	scores, err := t.score(bundle, test)
	if err != nil {
		return artifact.ModelTrainer{}, faults.Wrapf(faults.KindTraining, err, "test partition")
	}
	bundle.Metadata.Scores = scores

	t.logger.Info(
		"model fitted",
		"features", len(xTrain.columns),
		"iterations", clf.Iterations,
		"f1", scores.F1,
		"precision", scores.Precision,
		"recall", scores.Recall,
	)

	if t.cfg.ExpectedScore > 0 && scores.F1 < t.cfg.ExpectedScore {
		return artifact.ModelTrainer{}, faults.Wrapf(
			faults.KindTraining, ErrBelowExpected,
			"f1 %.4f < %.4f", scores.F1, t.cfg.ExpectedScore,
		)
	}

	if err := bundle.SaveFile(t.modelPath); err != nil {
		return artifact.ModelTrainer{}, faults.Wrap(faults.KindTraining, err)
	}

	t.logger.Info("training complete", "model", t.modelPath, "duration", time.Since(start))

	return artifact.ModelTrainer{
		ModelFilePath: t.modelPath,
		Metric: artifact.Metric{
			F1:        scores.F1,
			Precision: scores.Precision,
			Recall:    scores.Recall,
		},
	}, nil
}

type design struct {
	columns []string
	matrix  *mat.Dense
}

// prepare transforms f into a design matrix and its labels.
func (t *Trainer) prepare(f dataset.Frame) (design, []int, error) {
	inputs, labels, err := features.SplitTarget(f, t.schema.TargetColumn)
	if err != nil {
		return design{}, nil, err
	}

	x, err := t.transformer.Transform(inputs)
	if err != nil {
		return design{}, nil, err
	}
	if x.Width() == 0 {
		return design{}, nil, fmt.Errorf("no feature columns after transform")
	}

	data, err := x.Matrix()
	if err != nil {
		return design{}, nil, err
	}
	return design{
		columns: x.Columns(),
		matrix:  mat.NewDense(x.Len(), x.Width(), data),
	}, labels, nil
}

// score evaluates b on the test partition through the same path prediction uses.
func (t *Trainer) score(b *model.Bundle, test dataset.Frame) (model.Scores, error) {
	if test.Len() == 0 {
		t.logger.Warn("test partition is empty; scores default to zero")
		return model.Scores{}, nil
	}

	inputs, labels, err := features.SplitTarget(test, t.schema.TargetColumn)
	if err != nil {
		return model.Scores{}, err
	}
	x, err := t.transformer.Transform(inputs)
	if err != nil {
		return model.Scores{}, err
	}

	predicted, err := model.NewEstimator(b, t.logger).Predict(x)
	if err != nil {
		return model.Scores{}, err
	}
	return model.Score(labels, predicted)
}
