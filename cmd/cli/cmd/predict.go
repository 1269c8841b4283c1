package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/propensity/internal/prediction"
	"github.com/JaimeStill/propensity/internal/service"
)

var customer prediction.VehicleData

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Classify one customer with the promoted model",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd.Context(), func(ctx context.Context, svc *service.Service) error {
			label, err := svc.Predict(ctx, customer)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), prediction.Message(label))
			return nil
		})
	},
}

func init() {
	f := predictCmd.Flags()
	f.IntVar(&customer.Gender, "gender", 0, "gender (0 female, 1 male)")
	f.IntVar(&customer.Age, "age", 0, "age in years")
	f.IntVar(&customer.DrivingLicense, "driving-license", 0, "holds a driving license (0/1)")
	f.Float64Var(&customer.RegionCode, "region-code", 0, "region code")
	f.IntVar(&customer.PreviouslyInsured, "previously-insured", 0, "previously insured (0/1)")
	f.Float64Var(&customer.AnnualPremium, "annual-premium", 0, "annual premium")
	f.Float64Var(&customer.PolicySalesChannel, "policy-sales-channel", 0, "policy sales channel")
	f.IntVar(&customer.Vintage, "vintage", 0, "days associated with the company")
	f.IntVar(&customer.VehicleAgeLt1Year, "vehicle-age-lt-1-year", 0, "vehicle younger than 1 year (0/1)")
	f.IntVar(&customer.VehicleAgeGt2Years, "vehicle-age-gt-2-years", 0, "vehicle older than 2 years (0/1)")
	f.IntVar(&customer.VehicleDamageYes, "vehicle-damage-yes", 0, "vehicle previously damaged (0/1)")

	for _, name := range []string{"age", "annual-premium", "vintage"} {
		predictCmd.MarkFlagRequired(name)
	}
}
