package model

import (
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ErrNotFitted indicates use of a preprocessor or classifier before Fit.
var ErrNotFitted = errors.New("model not fitted")

// Scaler standardizes each feature to zero mean and unit variance and
// remembers the feature names it was fitted on.
type Scaler struct {
	Features []string
	Mean     []float64
	Scale    []float64
}

// FeatureNames returns the fitted feature layout.
func (s *Scaler) FeatureNames() []string {
	return slices.Clone(s.Features)
}

// Fit computes per-column population mean and standard deviation.
// Constant columns get a scale of 1.
func (s *Scaler) Fit(x *mat.Dense, features []string) error {
	rows, cols := x.Dims()
	if rows == 0 {
		return fmt.Errorf("fit scaler: no rows")
	}
	if len(features) != cols {
		return fmt.Errorf("fit scaler: %d feature names for %d columns", len(features), cols)
	}

	s.Features = slices.Clone(features)
	s.Mean = make([]float64, cols)
	s.Scale = make([]float64, cols)

	col := make([]float64, rows)
	for j := range cols {
		mat.Col(col, j, x)
		mean, std := stat.PopMeanStdDev(col, nil)
		if std == 0 {
			std = 1
		}
		s.Mean[j] = mean
		s.Scale[j] = std
	}
	return nil
}

// Transform returns a standardized copy of x.
func (s *Scaler) Transform(x mat.Matrix) (*mat.Dense, error) {
	if len(s.Mean) == 0 {
		return nil, ErrNotFitted
	}

	rows, cols := x.Dims()
	if cols != len(s.Mean) {
		return nil, fmt.Errorf("scaler expects %d features, got %d", len(s.Mean), cols)
	}
	if rows == 0 {
		return nil, fmt.Errorf("transform: no rows")
	}

	out := mat.NewDense(rows, cols, nil)
	out.Apply(func(_, j int, v float64) float64 {
		return (v - s.Mean[j]) / s.Scale[j]
	}, x)
	return out, nil
}
