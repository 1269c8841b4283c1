// Package model provides the fitted preprocessor and classifier pair that the
// pipeline trains, persists as a single unit, and serves for prediction.
package model

import (
	"encoding/gob"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/JaimeStill/propensity/pkg/dataset"
	"github.com/JaimeStill/propensity/pkg/features"
)

func init() {
	gob.Register(&LogisticRegression{})
}

// Metadata describes how and when a bundle was trained.
type Metadata struct {
	Name      string
	Scores    Scores
	TrainRows int
	TestRows  int
	TrainedAt time.Time
}

// Bundle is the persisted unit: a fitted preprocessor plus a fitted classifier.
type Bundle struct {
	Preprocessor *Scaler
	Classifier   Classifier
	Metadata     Metadata
}

// Encode writes the bundle in gob format.
func (b *Bundle) Encode(w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(b); err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}
	return nil
}

// Decode reads a gob-encoded bundle.
func Decode(r io.Reader) (*Bundle, error) {
	var b Bundle
	if err := gob.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	if b.Preprocessor == nil || b.Classifier == nil {
		return nil, fmt.Errorf("decode bundle: incomplete bundle")
	}
	return &b, nil
}

// SaveFile writes the bundle to path, creating parent directories.
func (b *Bundle) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := b.Encode(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// LoadFile reads a bundle from path.
func LoadFile(path string) (*Bundle, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Decode(file)
}

// Estimator serves predictions from a bundle over canonical feature frames.
type Estimator struct {
	bundle *Bundle
	logger *slog.Logger
}

// NewEstimator wraps a loaded bundle.
func NewEstimator(b *Bundle, logger *slog.Logger) *Estimator {
	return &Estimator{
		bundle: b,
		logger: logger.With("component", "estimator"),
	}
}

// Bundle returns the wrapped bundle.
func (e *Estimator) Bundle() *Bundle {
	return e.bundle
}

// Predict reconciles f with the preprocessor's fitted feature layout, scales it,
// and classifies each row. When reconciliation is not possible the frame is used
// as given and any shape mismatch surfaces from the preprocessor.
func (e *Estimator) Predict(f dataset.Frame) ([]int, error) {
	aligned, err := features.Align(f, e.bundle.Preprocessor.FeatureNames())
	if err != nil {
		e.logger.Warn("could not align input to preprocessor features; proceeding without alignment", "error", err)
		aligned = f
	}

	data, err := aligned.Matrix()
	if err != nil {
		return nil, fmt.Errorf("build feature matrix: %w", err)
	}
	if aligned.Len() == 0 {
		return []int{}, nil
	}
	if aligned.Width() == 0 {
		return nil, fmt.Errorf("build feature matrix: no columns")
	}

	x := mat.NewDense(aligned.Len(), aligned.Width(), data)
	scaled, err := e.bundle.Preprocessor.Transform(x)
	if err != nil {
		return nil, fmt.Errorf("preprocess: %w", err)
	}

	labels, err := e.bundle.Classifier.Predict(scaled)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	return labels, nil
}
