// Package ingestion exports the customer collection, persists it to the
// feature store, and splits it into train and test partitions.
package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"

	"github.com/JaimeStill/propensity/internal/artifact"
	"github.com/JaimeStill/propensity/pkg/dataset"
	"github.com/JaimeStill/propensity/pkg/faults"
)

// ErrEmptyDataset indicates the exported collection held no rows.
var ErrEmptyDataset = errors.New("exported dataset is empty")

// Exporter reads a named collection as a frame.
type Exporter interface {
	ExportCollection(ctx context.Context, name string) (dataset.Frame, error)
}

// Ingestor runs the ingestion stage for one run layout.
type Ingestor struct {
	exporter   Exporter
	collection string
	cfg        Config
	layout     artifact.Layout
	logger     *slog.Logger
}

// New creates an Ingestor that exports collection and writes under layout.
func New(exporter Exporter, collection string, cfg Config, layout artifact.Layout, logger *slog.Logger) *Ingestor {
	return &Ingestor{
		exporter:   exporter,
		collection: collection,
		cfg:        cfg,
		layout:     layout,
		logger:     logger.With("stage", "ingestion"),
	}
}

// Ingest exports the configured collection, writes it to the feature store,
// then writes a random train/test partition. Store faults keep their kind;
// everything else is an IngestionError.
func (i *Ingestor) Ingest(ctx context.Context) (artifact.DataIngestion, error) {
	i.logger.Info("ingestion started", "collection", i.collection)

	frame, err := i.exporter.ExportCollection(ctx, i.collection)
	if err != nil {
		if faults.KindOf(err) != "" {
			return artifact.DataIngestion{}, err
		}
		return artifact.DataIngestion{}, faults.Wrap(faults.KindIngestion, err)
	}
	if frame.Len() == 0 {
		return artifact.DataIngestion{}, faults.Wrapf(faults.KindIngestion, ErrEmptyDataset, "collection %s", i.collection)
	}

	if err := dataset.SaveFile(i.layout.FeatureStoreFile(), frame); err != nil {
		return artifact.DataIngestion{}, faults.Wrap(faults.KindIngestion, err)
	}

	rng := rand.New(rand.NewPCG(i.cfg.Seed, i.cfg.Seed))
	train, test, err := dataset.Split(frame, i.cfg.TrainRatio, rng)
	if err != nil {
		return artifact.DataIngestion{}, faults.Wrap(faults.KindIngestion, err)
	}

	out := artifact.DataIngestion{
		TrainFilePath: i.layout.TrainFile(),
		TestFilePath:  i.layout.TestFile(),
		FeatureStore:  i.layout.FeatureStoreFile(),
	}
	if err := dataset.SaveFile(out.TrainFilePath, train); err != nil {
		return artifact.DataIngestion{}, faults.Wrap(faults.KindIngestion, err)
	}
	if err := dataset.SaveFile(out.TestFilePath, test); err != nil {
		return artifact.DataIngestion{}, faults.Wrap(faults.KindIngestion, err)
	}

	i.logger.Info(
		"ingestion complete",
		"rows", frame.Len(),
		"train_rows", train.Len(),
		"test_rows", test.Len(),
	)
	return out, nil
}
