package app

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/JaimeStill/propensity/internal/prediction"
)

type fieldKind int

const (
	intField fieldKind = iota
	floatField
)

type formField struct {
	Name  string
	Label string
	kind  fieldKind
}

// fields lists the prediction form inputs in display order.
var fields = []formField{
	{"Gender", "Gender (Female 0, Male 1)", intField},
	{"Age", "Age", intField},
	{"Driving_License", "Driving license", intField},
	{"Region_Code", "Region code", floatField},
	{"Previously_Insured", "Previously insured", intField},
	{"Annual_Premium", "Annual premium", floatField},
	{"Policy_Sales_Channel", "Policy sales channel", floatField},
	{"Vintage", "Vintage (days)", intField},
	{"Vehicle_Age_lt_1_Year", "Vehicle age < 1 year", intField},
	{"Vehicle_Age_gt_2_Years", "Vehicle age > 2 years", intField},
	{"Vehicle_Damage_Yes", "Vehicle damaged", intField},
}

// fieldView is the template representation of one input.
type fieldView struct {
	Name  string
	Label string
	Step  string
	Value string
}

type pageData struct {
	Fields  []fieldView
	Verdict string
}

func newPageData(values url.Values, verdict string) pageData {
	views := make([]fieldView, len(fields))
	for i, f := range fields {
		step := "1"
		if f.kind == floatField {
			step = "any"
		}
		views[i] = fieldView{
			Name:  f.Name,
			Label: f.Label,
			Step:  step,
			Value: values.Get(f.Name),
		}
	}
	return pageData{Fields: views, Verdict: verdict}
}

// parseVehicleData converts the submitted form into a VehicleData. Every
// field is required.
func parseVehicleData(values url.Values) (prediction.VehicleData, error) {
	ints := make(map[string]int)
	floats := make(map[string]float64)

	for _, f := range fields {
		raw := values.Get(f.Name)
		if raw == "" {
			return prediction.VehicleData{}, fmt.Errorf("%s is required", f.Name)
		}
		switch f.kind {
		case intField:
			n, err := strconv.Atoi(raw)
			if err != nil {
				return prediction.VehicleData{}, fmt.Errorf("%s must be an integer: %q", f.Name, raw)
			}
			ints[f.Name] = n
		case floatField:
			n, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return prediction.VehicleData{}, fmt.Errorf("%s must be a number: %q", f.Name, raw)
			}
			floats[f.Name] = n
		}
	}

	return prediction.VehicleData{
		Gender:             ints["Gender"],
		Age:                ints["Age"],
		DrivingLicense:     ints["Driving_License"],
		RegionCode:         floats["Region_Code"],
		PreviouslyInsured:  ints["Previously_Insured"],
		AnnualPremium:      floats["Annual_Premium"],
		PolicySalesChannel: floats["Policy_Sales_Channel"],
		Vintage:            ints["Vintage"],
		VehicleAgeLt1Year:  ints["Vehicle_Age_lt_1_Year"],
		VehicleAgeGt2Years: ints["Vehicle_Age_gt_2_Years"],
		VehicleDamageYes:   ints["Vehicle_Damage_Yes"],
	}, nil
}
