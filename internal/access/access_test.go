package access_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/JaimeStill/propensity/internal/access"
	"github.com/JaimeStill/propensity/internal/fixtures"
	"github.com/JaimeStill/propensity/pkg/docstore"
	"github.com/JaimeStill/propensity/pkg/faults"
)

type finder struct {
	docs []bson.D
	err  error
}

func (f finder) FindAll(context.Context, string) ([]bson.D, error) {
	return f.docs, f.err
}

func TestExportCollection(t *testing.T) {
	docs := []bson.D{
		{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "id", Value: int32(1)},
			{Key: "Gender", Value: "Male"},
			{Key: "Age", Value: int64(44)},
			{Key: "Annual_Premium", Value: 40454.0},
			{Key: "Vehicle_Damage", Value: "na"},
		},
		{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "id", Value: int32(2)},
			{Key: "Gender", Value: "Female"},
			{Key: "Age", Value: nil},
			{Key: "Annual_Premium", Value: 33536.0},
			{Key: "Vehicle_Damage", Value: "Yes"},
		},
	}

	frame, err := access.New(finder{docs: docs}, fixtures.Logger()).ExportCollection(context.Background(), "vehicle")
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	want := []string{"id", "Gender", "Age", "Annual_Premium", "Vehicle_Damage"}
	if got := frame.Columns(); !slices.Equal(got, want) {
		t.Fatalf("columns: got %v, want %v", got, want)
	}
	if frame.Len() != 2 {
		t.Errorf("rows: got %d, want 2", frame.Len())
	}

	tests := []struct {
		row     int
		column  string
		missing bool
	}{
		{0, "Vehicle_Damage", true},
		{1, "Age", true},
		{0, "Age", false},
		{1, "Vehicle_Damage", false},
	}

	for _, tt := range tests {
		v, _ := frame.At(tt.row, tt.column)
		if v.IsMissing() != tt.missing {
			t.Errorf("row %d %s: missing %v, want %v", tt.row, tt.column, v.IsMissing(), tt.missing)
		}
	}

	age, _ := frame.At(0, "Age")
	if n, ok := age.Float(); !ok || n != 44 {
		t.Errorf("age: got %v, want 44", age)
	}
}

func TestExportEmptyCollection(t *testing.T) {
	frame, err := access.New(finder{}, fixtures.Logger()).ExportCollection(context.Background(), "vehicle")
	if err != nil {
		t.Fatal(err)
	}
	if frame.Len() != 0 || frame.Width() != 0 {
		t.Errorf("empty collection: got %d rows, %d columns", frame.Len(), frame.Width())
	}
}

func TestExportErrors(t *testing.T) {
	tests := []struct {
		name string
		f    finder
		kind faults.Kind
	}{
		{"unconfigured store", finder{err: docstore.ErrNoConnectionString}, faults.KindConnection},
		{"read failure", finder{err: errors.New("cursor closed")}, faults.KindDataAccess},
		{
			"unsupported field",
			finder{docs: []bson.D{{{Key: "blob", Value: primitive.Binary{Data: []byte{1}}}}}},
			faults.KindDataAccess,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := access.New(tt.f, fixtures.Logger()).ExportCollection(context.Background(), "vehicle")
			if !faults.Is(err, tt.kind) {
				t.Errorf("got %v, want %s", err, tt.kind)
			}
		})
	}
}
