package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/propensity/internal/api"
	"github.com/JaimeStill/propensity/internal/config"
	"github.com/JaimeStill/propensity/pkg/openapi"
)

var openapiOut string

var openapiCmd = &cobra.Command{
	Use:   "openapi",
	Short: "Write the JSON API description to a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFile(cfgFile)
		if err != nil {
			return err
		}

		if err := openapi.WriteJSON(api.Spec(cfg, cfg.Database.Enabled()), openapiOut); err != nil {
			return fmt.Errorf("write %s: %w", openapiOut, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", openapiOut)
		return nil
	},
}

func init() {
	openapiCmd.Flags().StringVarP(&openapiOut, "output", "o", "openapi.json", "output file")
}
