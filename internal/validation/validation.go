// Package validation checks ingested partitions against the schema
// declaration and writes a report.
package validation

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/JaimeStill/propensity/internal/artifact"
	"github.com/JaimeStill/propensity/pkg/dataset"
	"github.com/JaimeStill/propensity/pkg/faults"
	"github.com/JaimeStill/propensity/pkg/schema"
)

// PartitionReport lists the checks for one partition file.
type PartitionReport struct {
	Path           string   `yaml:"path"`
	Columns        int      `yaml:"columns"`
	Expected       int      `yaml:"expected_columns"`
	MissingColumns []string `yaml:"missing_columns,omitempty"`
	ExtraColumns   []string `yaml:"extra_columns,omitempty"`
	Problems       []string `yaml:"problems,omitempty"`
}

// Report is the persisted validation outcome.
type Report struct {
	Status    bool            `yaml:"status"`
	Message   string          `yaml:"message"`
	CheckedAt time.Time       `yaml:"checked_at"`
	Train     PartitionReport `yaml:"train"`
	Test      PartitionReport `yaml:"test"`
}

// Validator holds the schema loaded at construction.
type Validator struct {
	schema     *schema.Schema
	reportPath string
	logger     *slog.Logger
}

// New creates a Validator that writes its report to reportPath.
func New(s *schema.Schema, reportPath string, logger *slog.Logger) *Validator {
	return &Validator{
		schema:     s,
		reportPath: reportPath,
		logger:     logger.With("stage", "validation"),
	}
}

// Validate checks both partitions of in. A non-conforming partition is
// reported through Status and Message; only unreadable inputs or report
// write failures return a ValidationError.
func (v *Validator) Validate(ctx context.Context, in artifact.DataIngestion) (artifact.DataValidation, error) {
	if err := ctx.Err(); err != nil {
		return artifact.DataValidation{}, faults.Wrap(faults.KindValidation, err)
	}

	train, err := dataset.LoadFile(in.TrainFilePath)
	if err != nil {
		return artifact.DataValidation{}, faults.Wrap(faults.KindValidation, err)
	}
	test, err := dataset.LoadFile(in.TestFilePath)
	if err != nil {
		return artifact.DataValidation{}, faults.Wrap(faults.KindValidation, err)
	}

	report := Report{
		CheckedAt: time.Now().UTC(),
		Train:     v.check(in.TrainFilePath, train),
		Test:      v.check(in.TestFilePath, test),
	}

	var messages []string
	for _, p := range []struct {
		name string
		r    PartitionReport
	}{{"training", report.Train}, {"testing", report.Test}} {
		for _, problem := range p.r.Problems {
			messages = append(messages, fmt.Sprintf("%s dataframe: %s.", p.name, problem))
		}
	}
	report.Message = strings.Join(messages, " ")
	report.Status = len(messages) == 0

	if err := writeReport(v.reportPath, report); err != nil {
		return artifact.DataValidation{}, faults.Wrap(faults.KindValidation, err)
	}

	if report.Status {
		v.logger.Info("validation passed", "report", v.reportPath)
	} else {
		v.logger.Warn("validation failed", "message", report.Message, "report", v.reportPath)
	}

	return artifact.DataValidation{
		Status:     report.Status,
		Message:    report.Message,
		ReportPath: v.reportPath,
	}, nil
}

func (v *Validator) check(path string, f dataset.Frame) PartitionReport {
	r := PartitionReport{
		Path:     path,
		Columns:  f.Width(),
		Expected: len(v.schema.Columns),
	}

	if r.Columns != r.Expected {
		r.Problems = append(r.Problems, fmt.Sprintf("column count %d does not match %d declared", r.Columns, r.Expected))
	}

	var numerical, categorical []string
	for _, name := range v.schema.NumericalColumns {
		if !f.Has(name) {
			numerical = append(numerical, name)
		}
	}
	for _, name := range v.schema.CategoricalColumns {
		if !f.Has(name) {
			categorical = append(categorical, name)
		}
	}
	if len(numerical) > 0 {
		r.Problems = append(r.Problems, "missing numerical columns "+strings.Join(numerical, ", "))
	}
	if len(categorical) > 0 {
		r.Problems = append(r.Problems, "missing categorical columns "+strings.Join(categorical, ", "))
	}
	r.MissingColumns = append(numerical, categorical...)

	grouped := make(map[string]bool, len(v.schema.NumericalColumns)+len(v.schema.CategoricalColumns))
	for _, name := range v.schema.NumericalColumns {
		grouped[name] = true
	}
	for _, name := range v.schema.CategoricalColumns {
		grouped[name] = true
	}

	var declared []string
	names := v.schema.ColumnNames()
	for _, name := range names {
		if !grouped[name] && !f.Has(name) {
			declared = append(declared, name)
		}
	}
	if len(declared) > 0 {
		r.Problems = append(r.Problems, "missing declared columns "+strings.Join(declared, ", "))
		r.MissingColumns = append(r.MissingColumns, declared...)
	}

	for _, name := range f.Columns() {
		if !slices.Contains(names, name) {
			r.ExtraColumns = append(r.ExtraColumns, name)
		}
	}
	if len(r.ExtraColumns) > 0 {
		r.Problems = append(r.Problems, "undeclared columns "+strings.Join(r.ExtraColumns, ", "))
	}

	return r
}

func writeReport(path string, r Report) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
