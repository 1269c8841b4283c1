package features_test

import (
	"errors"
	"io"
	"log/slog"
	"slices"
	"testing"

	"github.com/JaimeStill/propensity/pkg/dataset"
	"github.com/JaimeStill/propensity/pkg/features"
	"github.com/JaimeStill/propensity/pkg/schema"
)

var (
	num = dataset.Number
	str = dataset.String
)

func transformer(t *testing.T) *features.Transformer {
	t.Helper()
	s, err := schema.Load("../../config/schema.yaml")
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	return features.New(s, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func rawFrame() dataset.Frame {
	return dataset.MustNew(
		[]string{
			"id", "Gender", "Age", "Driving_License", "Region_Code", "Previously_Insured",
			"Vehicle_Age", "Vehicle_Damage", "Annual_Premium", "Policy_Sales_Channel", "Vintage", "Response",
		},
		[][]dataset.Value{
			{num(1), str("Male"), num(44), num(1), num(28), num(0), str("> 2 Years"), str("Yes"), num(40454), num(26), num(217), num(1)},
			{num(2), str("Female"), num(76), num(1), num(3), num(0), str("1-2 Year"), str("No"), num(33536), num(26), num(183), num(0)},
			{num(3), str("Male"), num(21), num(1), num(11), num(1), str("< 1 Year"), str("No"), num(2630), num(152), num(27), num(0)},
		},
	)
}

func TestTransform(t *testing.T) {
	out, err := transformer(t).Transform(rawFrame())
	if err != nil {
		t.Fatalf("transform: %v", err)
	}

	wantColumns := []string{
		"Gender", "Age", "Driving_License", "Region_Code", "Previously_Insured",
		"Annual_Premium", "Policy_Sales_Channel", "Vintage", "Response",
		"Vehicle_Age_lt_1_Year", "Vehicle_Age_gt_2_Years", "Vehicle_Damage_Yes",
	}
	if got := out.Columns(); !slices.Equal(got, wantColumns) {
		t.Fatalf("columns:\n got %v\nwant %v", got, wantColumns)
	}

	tests := []struct {
		row    int
		column string
		want   float64
	}{
		{0, "Gender", 1},
		{1, "Gender", 0},
		{0, "Vehicle_Age_gt_2_Years", 1},
		{0, "Vehicle_Age_lt_1_Year", 0},
		{1, "Vehicle_Age_gt_2_Years", 0},
		{1, "Vehicle_Age_lt_1_Year", 0},
		{2, "Vehicle_Age_lt_1_Year", 1},
		{0, "Vehicle_Damage_Yes", 1},
		{2, "Vehicle_Damage_Yes", 0},
	}

	for _, tt := range tests {
		v, _ := out.At(tt.row, tt.column)
		if n, ok := v.Float(); !ok || n != tt.want {
			t.Errorf("row %d %s: got %v, want %v", tt.row, tt.column, v, tt.want)
		}
	}
}

func TestTransformIdempotent(t *testing.T) {
	tr := transformer(t)

	once, err := tr.Transform(rawFrame())
	if err != nil {
		t.Fatal(err)
	}
	twice, err := tr.Transform(once)
	if err != nil {
		t.Fatal(err)
	}

	if !slices.Equal(once.Columns(), twice.Columns()) {
		t.Fatalf("columns changed: %v -> %v", once.Columns(), twice.Columns())
	}
	for i := range once.Len() {
		if !slices.Equal(once.Row(i), twice.Row(i)) {
			t.Errorf("row %d changed: %v -> %v", i, once.Row(i), twice.Row(i))
		}
	}
}

func TestTransformUnmappedBinaryLevel(t *testing.T) {
	f := dataset.MustNew([]string{"Gender"}, [][]dataset.Value{{str("Other")}})

	_, err := transformer(t).Transform(f)
	if !errors.Is(err, features.ErrUnmappedLevel) {
		t.Errorf("got %v, want ErrUnmappedLevel", err)
	}
}

func TestAlign(t *testing.T) {
	f := dataset.MustNew(
		[]string{"Vintage", "extra", "Age"},
		[][]dataset.Value{{num(10), num(99), num(30)}},
	)

	out, err := features.Align(f, []string{"Age", "Vehicle_Damage_Yes", "Vintage"})
	if err != nil {
		t.Fatal(err)
	}

	if got, want := out.Columns(), []string{"Age", "Vehicle_Damage_Yes", "Vintage"}; !slices.Equal(got, want) {
		t.Fatalf("columns: got %v, want %v", got, want)
	}
	if got, want := out.Row(0), []dataset.Value{num(30), num(0), num(10)}; !slices.Equal(got, want) {
		t.Errorf("row: got %v, want %v", got, want)
	}
}

func TestAlignNoExpected(t *testing.T) {
	_, err := features.Align(rawFrame(), nil)
	if !errors.Is(err, features.ErrNoExpectedColumns) {
		t.Errorf("got %v, want ErrNoExpectedColumns", err)
	}
}

func TestSplitTarget(t *testing.T) {
	x, y, err := features.SplitTarget(rawFrame(), "Response")
	if err != nil {
		t.Fatal(err)
	}

	if x.Has("Response") {
		t.Error("target should be removed from inputs")
	}
	if !slices.Equal(y, []int{1, 0, 0}) {
		t.Errorf("labels: got %v", y)
	}
}

func TestSplitTargetErrors(t *testing.T) {
	if _, _, err := features.SplitTarget(rawFrame(), "Missing"); !errors.Is(err, features.ErrNoTarget) {
		t.Errorf("absent target: got %v", err)
	}

	f := dataset.MustNew([]string{"Response"}, [][]dataset.Value{{num(2)}})
	if _, _, err := features.SplitTarget(f, "Response"); !errors.Is(err, features.ErrInvalidLabel) {
		t.Errorf("non-binary label: got %v", err)
	}
}
