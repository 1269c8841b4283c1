package pusher_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/JaimeStill/propensity/internal/artifact"
	"github.com/JaimeStill/propensity/internal/fixtures"
	"github.com/JaimeStill/propensity/internal/pusher"
	"github.com/JaimeStill/propensity/pkg/faults"
	"github.com/JaimeStill/propensity/pkg/model"
	"github.com/JaimeStill/propensity/pkg/registry"
)

func setup(t *testing.T) (*registry.Local, string) {
	t.Helper()
	reg, err := registry.NewLocal(t.TempDir(), "model.gob", fixtures.Logger())
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "model.gob")
	b := &model.Bundle{
		Preprocessor: &model.Scaler{Features: []string{"Age"}, Mean: []float64{40}, Scale: []float64{12}},
		Classifier:   &model.LogisticRegression{Params: model.DefaultParams(), Weights: []float64{0.4}},
		Metadata:     model.Metadata{Name: "challenger"},
	}
	if err := b.SaveFile(path); err != nil {
		t.Fatal(err)
	}
	return reg, path
}

func TestPush(t *testing.T) {
	reg, path := setup(t)

	out, err := pusher.New(reg, fixtures.Logger()).Push(context.Background(), artifact.ModelEvaluation{
		Accepted:         true,
		TrainedF1:        0.7,
		TrainedModelPath: path,
	})
	if err != nil {
		t.Fatalf("push: %v", err)
	}

	if out.RegistryLocation != reg.Location() {
		t.Errorf("location: got %s, want %s", out.RegistryLocation, reg.Location())
	}

	b, err := reg.Load(context.Background())
	if err != nil || b == nil {
		t.Fatalf("registry load: %v, %v", b, err)
	}
	if b.Metadata.Name != "challenger" {
		t.Errorf("promoted bundle: got %s", b.Metadata.Name)
	}
}

func TestPushRejected(t *testing.T) {
	reg, path := setup(t)

	_, err := pusher.New(reg, fixtures.Logger()).Push(context.Background(), artifact.ModelEvaluation{
		TrainedModelPath: path,
	})
	if !errors.Is(err, pusher.ErrNotAccepted) {
		t.Fatalf("got %v, want ErrNotAccepted", err)
	}

	if ok, _ := reg.Exists(context.Background()); ok {
		t.Error("rejected model should not reach the registry")
	}
}

func TestPushMissingBundle(t *testing.T) {
	reg, _ := setup(t)

	_, err := pusher.New(reg, fixtures.Logger()).Push(context.Background(), artifact.ModelEvaluation{
		Accepted:         true,
		TrainedModelPath: filepath.Join(t.TempDir(), "absent.gob"),
	})
	if !faults.Is(err, faults.KindRegistry) {
		t.Errorf("got %v, want RegistryError", err)
	}
}
