package ingestion_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/propensity/internal/artifact"
	"github.com/JaimeStill/propensity/internal/fixtures"
	"github.com/JaimeStill/propensity/internal/ingestion"
	"github.com/JaimeStill/propensity/pkg/dataset"
	"github.com/JaimeStill/propensity/pkg/faults"
)

func layout(t *testing.T) artifact.Layout {
	return artifact.NewLayout(t.TempDir(), time.Now(), uuid.New())
}

func config(t *testing.T) ingestion.Config {
	t.Helper()
	cfg := ingestion.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestIngest(t *testing.T) {
	l := layout(t)
	exporter := &fixtures.Exporter{Frame: fixtures.Customers(50)}

	out, err := ingestion.New(exporter, "vehicle", config(t), l, fixtures.Logger()).Ingest(context.Background())
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	if out.TrainFilePath != l.TrainFile() || out.TestFilePath != l.TestFile() {
		t.Errorf("paths: got %s and %s", out.TrainFilePath, out.TestFilePath)
	}

	store, err := dataset.LoadFile(out.FeatureStore)
	if err != nil {
		t.Fatalf("feature store: %v", err)
	}
	train, err := dataset.LoadFile(out.TrainFilePath)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	test, err := dataset.LoadFile(out.TestFilePath)
	if err != nil {
		t.Fatalf("test: %v", err)
	}

	if store.Len() != 50 {
		t.Errorf("feature store rows: got %d, want 50", store.Len())
	}
	if train.Len() != 40 || test.Len() != 10 {
		t.Errorf("split: got %d/%d, want 40/10", train.Len(), test.Len())
	}
	if train.Width() != len(fixtures.Columns) {
		t.Errorf("train columns: got %d, want %d", train.Width(), len(fixtures.Columns))
	}
}

func TestIngestDeterministicSplit(t *testing.T) {
	exporter := &fixtures.Exporter{Frame: fixtures.Customers(30)}

	var ids [2][]dataset.Value
	for i := range ids {
		out, err := ingestion.New(exporter, "vehicle", config(t), layout(t), fixtures.Logger()).Ingest(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		test, _ := dataset.LoadFile(out.TestFilePath)
		ids[i], _ = test.Column("id")
	}

	if len(ids[0]) != len(ids[1]) {
		t.Fatalf("test sizes differ: %d vs %d", len(ids[0]), len(ids[1]))
	}
	for i := range ids[0] {
		if ids[0][i] != ids[1][i] {
			t.Fatalf("same seed produced different partitions at %d", i)
		}
	}
}

func TestIngestEmptyCollection(t *testing.T) {
	exporter := &fixtures.Exporter{}

	_, err := ingestion.New(exporter, "vehicle", config(t), layout(t), fixtures.Logger()).Ingest(context.Background())
	if !errors.Is(err, ingestion.ErrEmptyDataset) {
		t.Errorf("got %v, want ErrEmptyDataset", err)
	}
	if !faults.Is(err, faults.KindIngestion) {
		t.Errorf("kind: got %s, want %s", faults.KindOf(err), faults.KindIngestion)
	}
}

func TestIngestKeepsStoreFaultKind(t *testing.T) {
	exporter := &fixtures.Exporter{Err: faults.New(faults.KindConnection, "store unreachable")}

	_, err := ingestion.New(exporter, "vehicle", config(t), layout(t), fixtures.Logger()).Ingest(context.Background())
	if faults.KindOf(err) != faults.KindConnection {
		t.Errorf("kind: got %s, want %s", faults.KindOf(err), faults.KindConnection)
	}
}

func TestConfigValidation(t *testing.T) {
	t.Setenv("TEST_TRAIN_RATIO", "1.5")

	cfg := ingestion.Config{}
	if err := cfg.Finalize(&ingestion.Env{TrainRatio: "TEST_TRAIN_RATIO"}); err == nil {
		t.Error("expected error for train_ratio outside (0,1)")
	}
}
