package schema_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/JaimeStill/propensity/pkg/schema"
)

func TestLoadBundledSchema(t *testing.T) {
	s, err := schema.Load("../../config/schema.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if s.TargetColumn != "Response" {
		t.Errorf("target: got %s, want Response", s.TargetColumn)
	}
	if len(s.Columns) != 12 {
		t.Errorf("columns: got %d, want 12", len(s.Columns))
	}
	if !slices.Equal(s.DropColumns, []string{"id"}) {
		t.Errorf("drop columns: got %v", s.DropColumns)
	}

	want := []string{"Vehicle_Age_lt_1_Year", "Vehicle_Age_gt_2_Years", "Vehicle_Damage_Yes"}
	if got := s.IndicatorNames(); !slices.Equal(got, want) {
		t.Errorf("indicators: got %v, want %v", got, want)
	}
	if got := len(s.FeaturesFor("Vehicle_Age")); got != 2 {
		t.Errorf("Vehicle_Age features: got %d, want 2", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := schema.Load("does-not-exist.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no columns", "target_column: y\n"},
		{
			"unknown type",
			"columns:\n  - {name: y, type: bool}\ntarget_column: y\n",
		},
		{
			"duplicate column",
			"columns:\n  - {name: y, type: int}\n  - {name: y, type: int}\ntarget_column: y\n",
		},
		{
			"missing target",
			"columns:\n  - {name: x, type: int}\n",
		},
		{
			"undeclared target",
			"columns:\n  - {name: x, type: int}\ntarget_column: y\n",
		},
		{
			"undeclared drop column",
			"columns:\n  - {name: y, type: int}\ntarget_column: y\ndrop_columns: [id]\n",
		},
		{
			"binary mapping on numeric column",
			"columns:\n  - {name: g, type: int}\n  - {name: y, type: int}\ntarget_column: y\n" +
				"binary_mappings:\n  - {column: g, values: {a: 0, b: 1}}\n",
		},
		{
			"binary mapping same value",
			"columns:\n  - {name: g, type: category}\n  - {name: y, type: int}\ntarget_column: y\n" +
				"categorical_columns: [g]\nbinary_mappings:\n  - {column: g, values: {a: 1, b: 1}}\n",
		},
		{
			"feature clashes with column",
			"columns:\n  - {name: g, type: category}\n  - {name: y, type: int}\ntarget_column: y\n" +
				"categorical_columns: [g]\nfeatures:\n  - {name: y, column: g, level: a}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schema.Parse([]byte(tt.doc))
			if !errors.Is(err, schema.ErrInvalidSchema) {
				t.Errorf("got %v, want ErrInvalidSchema", err)
			}
		})
	}
}

func TestParseMalformedYAML(t *testing.T) {
	_, err := schema.Parse([]byte("columns: [unterminated"))
	if err == nil {
		t.Fatal("expected parse error")
	}
	if errors.Is(err, schema.ErrInvalidSchema) {
		t.Error("syntax errors should not be reported as invalid schema")
	}
}
