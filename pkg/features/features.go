// Package features converts raw customer frames into the canonical numeric
// feature layout. The same Transformer runs at training, evaluation, and
// prediction time so that every consumer sees identical encodings.
package features

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sort"

	"github.com/JaimeStill/propensity/pkg/dataset"
	"github.com/JaimeStill/propensity/pkg/schema"
)

var (
	// ErrUnmappedLevel indicates a binary column value outside its declared mapping.
	ErrUnmappedLevel = errors.New("value not in binary mapping")
	// ErrNoExpectedColumns indicates alignment was requested without a target layout.
	ErrNoExpectedColumns = errors.New("no expected columns to align to")
)

// Transformer applies the schema-driven encoding steps in fixed order.
type Transformer struct {
	schema *schema.Schema
	logger *slog.Logger
}

// New creates a Transformer for the given schema.
func New(s *schema.Schema, logger *slog.Logger) *Transformer {
	return &Transformer{
		schema: s,
		logger: logger.With("component", "features"),
	}
}

// Transform maps binary columns to {0,1}, drops identifier columns, one-hot
// expands the remaining categorical columns, then renames indicators to their
// canonical identifiers and casts them to integer. Applying Transform to its
// own output returns an equal frame.
func (t *Transformer) Transform(f dataset.Frame) (dataset.Frame, error) {
	out, err := t.mapBinary(f)
	if err != nil {
		return dataset.Frame{}, err
	}

	out = t.dropIdentifiers(out)

	out, err = t.expandCategorical(out)
	if err != nil {
		return dataset.Frame{}, err
	}

	return t.canonicalize(out)
}

func (t *Transformer) mapBinary(f dataset.Frame) (dataset.Frame, error) {
	out := f
	for _, m := range t.schema.BinaryMappings {
		if !out.Has(m.Column) {
			continue
		}
		t.logger.Debug("mapping binary column", "column", m.Column)

		var err error
		out, err = out.Map(m.Column, func(v dataset.Value) (dataset.Value, error) {
			if n, ok := v.Float(); ok && (n == 0 || n == 1) {
				return v, nil
			}
			if v.IsString() {
				if code, ok := m.Values[v.Str]; ok {
					return dataset.Number(float64(code)), nil
				}
			}
			return dataset.Missing, fmt.Errorf("%w: %q", ErrUnmappedLevel, v.String())
		})
		if err != nil {
			return dataset.Frame{}, err
		}
	}
	return out, nil
}

func (t *Transformer) dropIdentifiers(f dataset.Frame) dataset.Frame {
	return f.Drop(t.schema.DropColumns...)
}

// expandCategorical replaces every string-valued column with indicator columns
// named <column>_<level>, appended after the remaining columns. Declared
// features fix the indicator set for their source column; otherwise levels are
// sorted and the first is dropped as the reference level.
func (t *Transformer) expandCategorical(f dataset.Frame) (dataset.Frame, error) {
	var categorical []string
	for _, c := range f.Columns() {
		values, _ := f.Column(c)
		if slices.ContainsFunc(values, dataset.Value.IsString) {
			categorical = append(categorical, c)
		}
	}
	if len(categorical) == 0 {
		return f, nil
	}

	t.logger.Debug("expanding categorical columns", "columns", categorical)

	out := f.Drop(categorical...)
	for _, c := range categorical {
		values, _ := f.Column(c)

		for _, level := range t.levels(c, values) {
			indicator := make([]dataset.Value, len(values))
			for i, v := range values {
				if v.IsString() && v.Str == level {
					indicator[i] = dataset.Number(1)
				} else {
					indicator[i] = dataset.Number(0)
				}
			}

			var err error
			out, err = out.WithColumn(c+"_"+level, indicator)
			if err != nil {
				return dataset.Frame{}, err
			}
		}
	}
	return out, nil
}

func (t *Transformer) levels(column string, values []dataset.Value) []string {
	if declared := t.schema.FeaturesFor(column); len(declared) > 0 {
		levels := make([]string, len(declared))
		for i, d := range declared {
			levels[i] = d.Level
		}
		return levels
	}

	seen := map[string]bool{}
	var levels []string
	for _, v := range values {
		if v.IsString() && !seen[v.Str] {
			seen[v.Str] = true
			levels = append(levels, v.Str)
		}
	}
	sort.Strings(levels)
	if len(levels) > 0 {
		levels = levels[1:]
	}
	return levels
}

func (t *Transformer) canonicalize(f dataset.Frame) (dataset.Frame, error) {
	renames := make(map[string]string, len(t.schema.Features))
	for _, feat := range t.schema.Features {
		renames[feat.Column+"_"+feat.Level] = feat.Name
	}

	out, err := f.Rename(renames)
	if err != nil {
		return dataset.Frame{}, err
	}

	for _, name := range t.schema.IndicatorNames() {
		if !out.Has(name) {
			continue
		}
		out, err = out.Map(name, castInt)
		if err != nil {
			return dataset.Frame{}, err
		}
	}
	return out, nil
}

func castInt(v dataset.Value) (dataset.Value, error) {
	n, ok := v.Float()
	if !ok {
		return dataset.Missing, fmt.Errorf("cannot cast %q to integer", v.String())
	}
	return dataset.Number(math.Trunc(n)), nil
}

// Align reconciles f against the column layout a fitted preprocessor expects:
// expected columns absent from f are filled with 0, columns not in expected
// are dropped, and the result follows expected's order.
func Align(f dataset.Frame, expected []string) (dataset.Frame, error) {
	if len(expected) == 0 {
		return dataset.Frame{}, ErrNoExpectedColumns
	}

	rows := make([][]dataset.Value, f.Len())
	for i := range rows {
		rows[i] = make([]dataset.Value, len(expected))
	}

	for j, name := range expected {
		if !f.Has(name) {
			for i := range rows {
				rows[i][j] = dataset.Number(0)
			}
			continue
		}
		values, _ := f.Column(name)
		for i, v := range values {
			rows[i][j] = v
		}
	}

	return dataset.New(expected, rows)
}
