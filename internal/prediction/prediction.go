// Package prediction classifies a single customer with the promoted model.
package prediction

import (
	"context"
	"errors"
	"log/slog"

	"github.com/JaimeStill/propensity/pkg/dataset"
	"github.com/JaimeStill/propensity/pkg/faults"
	"github.com/JaimeStill/propensity/pkg/features"
	"github.com/JaimeStill/propensity/pkg/model"
	"github.com/JaimeStill/propensity/pkg/registry"
	"github.com/JaimeStill/propensity/pkg/schema"
)

// ErrNoModel indicates no model has been promoted yet.
var ErrNoModel = errors.New("no promoted model available")

const (
	LikelyMessage   = "Customer is likely to buy insurance"
	UnlikelyMessage = "Customer is not likely to buy insurance"
)

// VehicleData is one customer in canonical feature form.
type VehicleData struct {
	Gender             int     `json:"Gender"`
	Age                int     `json:"Age"`
	DrivingLicense     int     `json:"Driving_License"`
	RegionCode         float64 `json:"Region_Code"`
	PreviouslyInsured  int     `json:"Previously_Insured"`
	AnnualPremium      float64 `json:"Annual_Premium"`
	PolicySalesChannel float64 `json:"Policy_Sales_Channel"`
	Vintage            int     `json:"Vintage"`
	VehicleAgeLt1Year  int     `json:"Vehicle_Age_lt_1_Year"`
	VehicleAgeGt2Years int     `json:"Vehicle_Age_gt_2_Years"`
	VehicleDamageYes   int     `json:"Vehicle_Damage_Yes"`
}

// Frame returns v as a one-row frame with canonical column names.
func (v VehicleData) Frame() dataset.Frame {
	return dataset.FromRecords([]dataset.Record{{
		{Key: "Gender", Value: dataset.Number(float64(v.Gender))},
		{Key: "Age", Value: dataset.Number(float64(v.Age))},
		{Key: "Driving_License", Value: dataset.Number(float64(v.DrivingLicense))},
		{Key: "Region_Code", Value: dataset.Number(v.RegionCode)},
		{Key: "Previously_Insured", Value: dataset.Number(float64(v.PreviouslyInsured))},
		{Key: "Annual_Premium", Value: dataset.Number(v.AnnualPremium)},
		{Key: "Policy_Sales_Channel", Value: dataset.Number(v.PolicySalesChannel)},
		{Key: "Vintage", Value: dataset.Number(float64(v.Vintage))},
		{Key: "Vehicle_Age_lt_1_Year", Value: dataset.Number(float64(v.VehicleAgeLt1Year))},
		{Key: "Vehicle_Age_gt_2_Years", Value: dataset.Number(float64(v.VehicleAgeGt2Years))},
		{Key: "Vehicle_Damage_Yes", Value: dataset.Number(float64(v.VehicleDamageYes))},
	}})
}

// Message renders a predicted label for display.
func Message(label int) string {
	if label == 1 {
		return LikelyMessage
	}
	return UnlikelyMessage
}

// Classifier serves predictions from whatever model the registry holds at
// call time.
type Classifier struct {
	registry    registry.Registry
	transformer *features.Transformer
	logger      *slog.Logger
}

// New creates a Classifier reading from reg.
func New(reg registry.Registry, s *schema.Schema, logger *slog.Logger) *Classifier {
	return &Classifier{
		registry:    reg,
		transformer: features.New(s, logger),
		logger:      logger.With("system", "prediction"),
	}
}

// Predict returns 1 when the customer is predicted to buy insurance.
func (c *Classifier) Predict(ctx context.Context, v VehicleData) (int, error) {
	bundle, err := c.registry.Load(ctx)
	if err != nil {
		return 0, faults.Wrap(faults.KindPrediction, err)
	}
	if bundle == nil {
		return 0, faults.Wrap(faults.KindPrediction, ErrNoModel)
	}

	x, err := c.transformer.Transform(v.Frame())
	if err != nil {
		return 0, faults.Wrap(faults.KindPrediction, err)
	}

	labels, err := model.NewEstimator(bundle, c.logger).Predict(x)
	if err != nil {
		return 0, faults.Wrap(faults.KindPrediction, err)
	}
	if len(labels) != 1 {
		return 0, faults.New(faults.KindPrediction, "expected 1 label, got %d", len(labels))
	}

	c.logger.Info("prediction served", "label", labels[0])
	return labels[0], nil
}
