// Package schema loads the declarative dataset schema: expected columns,
// identifier columns to drop, the target column, categorical encodings,
// and the canonical feature identifiers produced by one-hot expansion.
package schema

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ErrInvalidSchema indicates a schema declaration that fails validation.
var ErrInvalidSchema = errors.New("invalid schema")

// Column types accepted in a declaration.
const (
	TypeInt      = "int"
	TypeFloat    = "float"
	TypeCategory = "category"
)

// Column declares one expected dataset column.
type Column struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// BinaryMapping maps the two levels of a categorical column to 0 and 1.
type BinaryMapping struct {
	Column string         `yaml:"column"`
	Values map[string]int `yaml:"values"`
}

// Feature binds a canonical feature identifier to the source column and level
// whose one-hot indicator it names.
type Feature struct {
	Name   string `yaml:"name"`
	Column string `yaml:"column"`
	Level  string `yaml:"level"`
}

// Schema is the read-only dataset declaration for a run.
type Schema struct {
	Columns            []Column        `yaml:"columns"`
	TargetColumn       string          `yaml:"target_column"`
	DropColumns        []string        `yaml:"drop_columns"`
	NumericalColumns   []string        `yaml:"numerical_columns"`
	CategoricalColumns []string        `yaml:"categorical_columns"`
	BinaryMappings     []BinaryMapping `yaml:"binary_mappings"`
	Features           []Feature       `yaml:"features"`
}

// Load reads and validates a schema file.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a schema declaration.
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}
	return &s, nil
}

// ColumnNames returns the declared column names in declaration order.
func (s *Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// FeaturesFor returns the declared features sourced from column.
func (s *Schema) FeaturesFor(column string) []Feature {
	var out []Feature
	for _, f := range s.Features {
		if f.Column == column {
			out = append(out, f)
		}
	}
	return out
}

// IndicatorNames returns the canonical names of all declared indicator features.
func (s *Schema) IndicatorNames() []string {
	names := make([]string, len(s.Features))
	for i, f := range s.Features {
		names[i] = f.Name
	}
	return names
}

func (s *Schema) validate() error {
	if len(s.Columns) == 0 {
		return fmt.Errorf("no columns declared")
	}

	declared := make(map[string]string, len(s.Columns))
	for _, c := range s.Columns {
		if c.Name == "" {
			return fmt.Errorf("column with empty name")
		}
		if _, dup := declared[c.Name]; dup {
			return fmt.Errorf("duplicate column %s", c.Name)
		}
		switch c.Type {
		case TypeInt, TypeFloat, TypeCategory:
		default:
			return fmt.Errorf("column %s: unknown type %q", c.Name, c.Type)
		}
		declared[c.Name] = c.Type
	}

	if s.TargetColumn == "" {
		return fmt.Errorf("target_column required")
	}
	if _, ok := declared[s.TargetColumn]; !ok {
		return fmt.Errorf("target_column %s not declared", s.TargetColumn)
	}

	for _, group := range [][]string{s.DropColumns, s.NumericalColumns, s.CategoricalColumns} {
		for _, name := range group {
			if _, ok := declared[name]; !ok {
				return fmt.Errorf("column %s referenced but not declared", name)
			}
		}
	}

	for _, m := range s.BinaryMappings {
		if !slices.Contains(s.CategoricalColumns, m.Column) {
			return fmt.Errorf("binary mapping %s: not a categorical column", m.Column)
		}
		if len(m.Values) != 2 {
			return fmt.Errorf("binary mapping %s: want 2 levels, got %d", m.Column, len(m.Values))
		}
		seen := map[int]bool{}
		for _, v := range m.Values {
			if v != 0 && v != 1 {
				return fmt.Errorf("binary mapping %s: value %d not in {0,1}", m.Column, v)
			}
			seen[v] = true
		}
		if len(seen) != 2 {
			return fmt.Errorf("binary mapping %s: levels must map to distinct values", m.Column)
		}
	}

	names := make(map[string]bool, len(s.Features))
	for _, f := range s.Features {
		if f.Name == "" || f.Column == "" || f.Level == "" {
			return fmt.Errorf("feature requires name, column, and level")
		}
		if names[f.Name] {
			return fmt.Errorf("duplicate feature %s", f.Name)
		}
		if _, clash := declared[f.Name]; clash {
			return fmt.Errorf("feature %s collides with a declared column", f.Name)
		}
		if !slices.Contains(s.CategoricalColumns, f.Column) {
			return fmt.Errorf("feature %s: source %s is not a categorical column", f.Name, f.Column)
		}
		names[f.Name] = true
	}

	return nil
}
