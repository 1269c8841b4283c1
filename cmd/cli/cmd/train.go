package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/propensity/internal/service"
)

var trainJSON bool

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Run the training pipeline once",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd.Context(), func(ctx context.Context, svc *service.Service) error {
			res, err := svc.Train(ctx)

			out := cmd.OutOrStdout()
			if trainJSON && res != nil {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if encErr := enc.Encode(res); encErr != nil {
					return encErr
				}
			}
			if err != nil {
				return err
			}

			if !trainJSON {
				fmt.Fprintf(out, "run %s finished: promoted=%t\n", res.ID, res.Promoted())
				if ev := res.Evaluation; ev != nil {
					fmt.Fprintf(out, "trained f1 %.4f, change %+.4f\n", ev.TrainedF1, ev.ChangedAccuracy)
				}
			}
			return nil
		})
	},
}

func init() {
	trainCmd.Flags().BoolVar(&trainJSON, "json", false, "print the run result as JSON")
}
