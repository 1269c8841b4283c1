package artifact

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const timestampFormat = "20060102T150405"

// Layout resolves the file locations of one pipeline run. Every artifact of
// a run lives under Dir.
type Layout struct {
	ID  uuid.UUID
	Dir string
}

// NewLayout scopes a run to <root>/<timestamp>-<id>.
func NewLayout(root string, at time.Time, id uuid.UUID) Layout {
	name := fmt.Sprintf("%s-%s", at.UTC().Format(timestampFormat), id)
	return Layout{ID: id, Dir: filepath.Join(root, name)}
}

// TrainFile is the persisted training partition.
func (l Layout) TrainFile() string {
	return filepath.Join(l.Dir, "ingested", "train.csv")
}

// TestFile is the persisted held-out partition.
func (l Layout) TestFile() string {
	return filepath.Join(l.Dir, "ingested", "test.csv")
}

// FeatureStoreFile is the full exported dataset before splitting.
func (l Layout) FeatureStoreFile() string {
	return filepath.Join(l.Dir, "feature_store", "data.csv")
}

// ValidationReport is the YAML validation report.
func (l Layout) ValidationReport() string {
	return filepath.Join(l.Dir, "data_validation", "report.yaml")
}

// ModelFile is the trained bundle.
func (l Layout) ModelFile() string {
	return filepath.Join(l.Dir, "model_trainer", "trained_model", "model.gob")
}
