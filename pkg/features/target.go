package features

import (
	"errors"
	"fmt"

	"github.com/JaimeStill/propensity/pkg/dataset"
)

var (
	// ErrNoTarget indicates the target column is absent from a frame.
	ErrNoTarget = errors.New("target column not found")
	// ErrInvalidLabel indicates a target value other than 0 or 1.
	ErrInvalidLabel = errors.New("target value is not a binary label")
)

// SplitTarget separates the binary target column from the input features.
func SplitTarget(f dataset.Frame, target string) (dataset.Frame, []int, error) {
	values, err := f.Column(target)
	if err != nil {
		return dataset.Frame{}, nil, fmt.Errorf("%w: %s", ErrNoTarget, target)
	}

	labels := make([]int, len(values))
	for i, v := range values {
		n, ok := v.Float()
		if !ok || (n != 0 && n != 1) {
			return dataset.Frame{}, nil, fmt.Errorf("%w: row %d has %q", ErrInvalidLabel, i, v.String())
		}
		labels[i] = int(n)
	}

	return f.Drop(target), labels, nil
}
