// Package pipeline runs ingestion, validation, training, evaluation, and
// promotion in sequence. Each stage consumes only the artifacts produced
// before it, and the first failure ends the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/propensity/internal/artifact"
	"github.com/JaimeStill/propensity/internal/evaluation"
	"github.com/JaimeStill/propensity/internal/ingestion"
	"github.com/JaimeStill/propensity/internal/pusher"
	"github.com/JaimeStill/propensity/internal/trainer"
	"github.com/JaimeStill/propensity/internal/validation"
	"github.com/JaimeStill/propensity/pkg/faults"
	"github.com/JaimeStill/propensity/pkg/registry"
	"github.com/JaimeStill/propensity/pkg/schema"
)

// ErrValidationFailed indicates the ingested data did not conform to the schema.
var ErrValidationFailed = errors.New("data validation failed")

// State is a pipeline run state.
type State string

const (
	StateIngesting  State = "ingesting"
	StateValidating State = "validating"
	StateTraining   State = "training"
	StateEvaluating State = "evaluating"
	StatePushing    State = "pushing"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// StageError records the state a run was in when it failed.
type StageError struct {
	State State
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline %s: %v", e.State, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Result accumulates the artifacts of a run. Artifacts of stages that did
// not run are nil.
type Result struct {
	ID         uuid.UUID                 `json:"id"`
	Dir        string                    `json:"dir"`
	State      State                     `json:"state"`
	FailedAt   State                     `json:"failed_at,omitempty"`
	Error      string                    `json:"error,omitempty"`
	StartedAt  time.Time                 `json:"started_at"`
	FinishedAt time.Time                 `json:"finished_at"`
	Ingestion  *artifact.DataIngestion   `json:"ingestion,omitempty"`
	Validation *artifact.DataValidation  `json:"validation,omitempty"`
	Trainer    *artifact.ModelTrainer    `json:"trainer,omitempty"`
	Evaluation *artifact.ModelEvaluation `json:"evaluation,omitempty"`
	Pusher     *artifact.ModelPusher     `json:"pusher,omitempty"`
}

// Promoted reports whether the run pushed a new model.
func (r *Result) Promoted() bool {
	return r.Pusher != nil
}

// Recorder persists finished runs.
type Recorder interface {
	Record(ctx context.Context, r *Result) error
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRecorder records every finished run, successful or not.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// WithClock overrides the clock used to stamp runs.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// Source names the collection a run exports and the exporter reading it.
type Source struct {
	Exporter   ingestion.Exporter
	Collection string
}

// Pipeline wires the stages around a shared schema, data source, and registry.
type Pipeline struct {
	cfg      Config
	schema   *schema.Schema
	source   Source
	registry registry.Registry
	recorder Recorder
	now      func() time.Time
	logger   *slog.Logger
}

// New loads the schema once and returns a Pipeline ready to Run.
func New(cfg Config, src Source, reg registry.Registry, logger *slog.Logger, opts ...Option) (*Pipeline, error) {
	s, err := schema.Load(cfg.SchemaPath)
	if err != nil {
		return nil, faults.Wrap(faults.KindValidation, err)
	}

	p := &Pipeline{
		cfg:      cfg,
		schema:   s,
		source:   src,
		registry: reg,
		now:      time.Now,
		logger:   logger.With("system", "pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run executes one training run. The returned Result is never nil; on
// failure the error is a *StageError naming the failed state.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	started := p.now()
	layout := artifact.NewLayout(p.cfg.ArtifactDir, started, uuid.New())
	res := &Result{
		ID:        layout.ID,
		Dir:       layout.Dir,
		StartedAt: started,
	}

	logger := p.logger.With("run", layout.ID)
	logger.Info("pipeline started", "dir", layout.Dir)

	err := p.run(ctx, layout, res, logger)
	res.FinishedAt = p.now()

	var se *StageError
	if errors.As(err, &se) {
		res.FailedAt = se.State
		res.State = StateFailed
		res.Error = se.Err.Error()
		logger.Error("pipeline failed", "state", se.State, "error", se.Err)
	} else {
		res.State = StateDone
		logger.Info(
			"pipeline complete",
			"promoted", res.Promoted(),
			"duration", res.FinishedAt.Sub(res.StartedAt),
		)
	}

	if p.recorder != nil {
		if rerr := p.recorder.Record(context.WithoutCancel(ctx), res); rerr != nil {
			logger.Warn("run not recorded", "error", rerr)
		}
	}

	return res, err
}

func (p *Pipeline) run(ctx context.Context, layout artifact.Layout, res *Result, logger *slog.Logger) error {
	res.State = StateIngesting
	ing, err := ingestion.New(p.source.Exporter, p.source.Collection, p.cfg.Ingestion, layout, logger).Ingest(ctx)
	if err != nil {
		return &StageError{State: StateIngesting, Err: err}
	}
	res.Ingestion = &ing

	res.State = StateValidating
	val, err := validation.New(p.schema, layout.ValidationReport(), logger).Validate(ctx, ing)
	if err != nil {
		return &StageError{State: StateValidating, Err: err}
	}
	res.Validation = &val
	if !val.Status {
		return &StageError{
			State: StateValidating,
			Err:   faults.Wrapf(faults.KindValidation, ErrValidationFailed, "%s", val.Message),
		}
	}

	res.State = StateTraining
	tr, err := trainer.New(p.schema, p.cfg.Trainer, layout.ModelFile(), logger).Train(ctx, ing)
	if err != nil {
		return &StageError{State: StateTraining, Err: err}
	}
	res.Trainer = &tr

	res.State = StateEvaluating
	ev, err := evaluation.New(p.registry, p.schema, logger).Evaluate(ctx, ing, tr)
	if err != nil {
		return &StageError{State: StateEvaluating, Err: err}
	}
	res.Evaluation = &ev

	if !ev.Accepted {
		logger.Info("trained model not accepted; promoted model unchanged")
		return nil
	}

	res.State = StatePushing
	push, err := pusher.New(p.registry, logger).Push(ctx, ev)
	if err != nil {
		return &StageError{State: StatePushing, Err: err}
	}
	res.Pusher = &push

	return nil
}
