package faults_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/JaimeStill/propensity/pkg/faults"
)

var errSource = errors.New("source failure")

func TestWrapNil(t *testing.T) {
	if err := faults.Wrap(faults.KindIngestion, nil); err != nil {
		t.Errorf("got %v, want nil", err)
	}
	if err := faults.Wrapf(faults.KindIngestion, nil, "ctx"); err != nil {
		t.Errorf("got %v, want nil", err)
	}
}

func TestWrapProvenance(t *testing.T) {
	err := faults.Wrap(faults.KindTraining, errSource)

	var fe *faults.Error
	if !errors.As(err, &fe) {
		t.Fatalf("expected *faults.Error, got %T", err)
	}
	if fe.Kind != faults.KindTraining {
		t.Errorf("kind: got %s, want %s", fe.Kind, faults.KindTraining)
	}
	if fe.File != "faults_test.go" {
		t.Errorf("file: got %s, want faults_test.go", fe.File)
	}
	if fe.Line == 0 {
		t.Error("line should be populated")
	}
	if !errors.Is(err, errSource) {
		t.Error("wrapped error should match its cause")
	}

	want := fmt.Sprintf("TrainingError in [faults_test.go] at line [%d]: source failure", fe.Line)
	if err.Error() != want {
		t.Errorf("message: got %q, want %q", err.Error(), want)
	}
}

func TestWrapSameKindUnchanged(t *testing.T) {
	inner := faults.Wrap(faults.KindRegistry, errSource)
	outer := faults.Wrap(faults.KindRegistry, inner)

	if outer != inner {
		t.Error("rewrapping with the same kind should return the original fault")
	}
}

func TestWrapfMessage(t *testing.T) {
	err := faults.Wrapf(faults.KindDataAccess, errSource, "export %s", "vehicle")

	if !strings.Contains(err.Error(), "export vehicle: source failure") {
		t.Errorf("message: got %q", err.Error())
	}
	if !errors.Is(err, errSource) {
		t.Error("Wrapf should preserve the cause")
	}
}

func TestIsAndKindOf(t *testing.T) {
	inner := faults.Wrap(faults.KindConnection, errSource)
	outer := faults.Wrap(faults.KindIngestion, inner)

	tests := []struct {
		name string
		err  error
		kind faults.Kind
		want bool
	}{
		{"outer kind", outer, faults.KindIngestion, true},
		{"inner kind", outer, faults.KindConnection, true},
		{"absent kind", outer, faults.KindPrediction, false},
		{"plain error", errSource, faults.KindIngestion, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := faults.Is(tt.err, tt.kind); got != tt.want {
				t.Errorf("Is: got %v, want %v", got, tt.want)
			}
		})
	}

	if got := faults.KindOf(outer); got != faults.KindIngestion {
		t.Errorf("KindOf: got %s, want %s", got, faults.KindIngestion)
	}
	if got := faults.KindOf(errSource); got != "" {
		t.Errorf("KindOf plain: got %s, want empty", got)
	}
}

func TestNew(t *testing.T) {
	err := faults.New(faults.KindValidation, "missing column %s", "Age")

	if !faults.Is(err, faults.KindValidation) {
		t.Error("New should tag the kind")
	}
	if !strings.HasSuffix(err.Error(), ": missing column Age") {
		t.Errorf("message: got %q", err.Error())
	}
}
